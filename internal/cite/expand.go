package cite

import (
	"fmt"
	"strconv"

	"github.com/avolkov/byline/internal/model"
)

// ExpandMarkers rewrites [N] citations to the editorial long form
// [N, Publisher, Title, Date]. Markers that do not resolve to a source are
// left untouched so the validator's findings stay visible in the text.
func ExpandMarkers(text string, sources model.RankedSourceList) string {
	return markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		n, err := strconv.Atoi(marker[1 : len(marker)-1])
		if err != nil {
			return marker
		}
		source, ok := sources.ByCitation(n)
		if !ok {
			return marker
		}
		date := "undated"
		if source.PublishedAt != nil {
			date = source.PublishedAt.Format("2006-01-02")
		}
		publisher := source.Publisher
		if publisher == "" {
			publisher = string(source.Origin)
		}
		return fmt.Sprintf("[%d, %s, %s, %s]", n, publisher, source.Title, date)
	})
}

// SplitUsage partitions the ranked sources into those the text actually cites
// and those it never references
func SplitUsage(text string, sources model.RankedSourceList) (used, unused model.RankedSourceList) {
	cited := make(map[int]bool)
	for _, n := range ExtractMarkers(text) {
		cited[n] = true
	}
	for _, source := range sources {
		if cited[source.Citation] {
			used = append(used, source)
		} else {
			unused = append(unused, source)
		}
	}
	return used, unused
}
