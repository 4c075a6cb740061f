// Package rank implements the source ranking and quality gate that stands
// between retrieval and synthesis. Everything here is pure: the same inputs
// always yield the same ranked list and sufficiency verdict.
package rank

import (
	"sort"

	"github.com/avolkov/byline/internal/model"
)

// Merge concatenates the per-query result lists, drops items below minScore,
// deduplicates by locator keeping the highest observed score, sorts by
// descending relevance and assigns citation numbers 1..N in that order.
//
// sufficient is true when the surviving count reaches minCount and every
// origin in queried contributed at least one item. When a single origin was
// queried the cross-origin constraint relaxes to that origin alone. Callers
// must not invoke synthesis while sufficient is false.
func Merge(results [][]model.EvidenceItem, minScore float64, minCount int, queried []model.Origin) (model.RankedSourceList, bool) {
	best := make(map[string]model.EvidenceItem)
	order := make([]string, 0)

	for _, list := range results {
		for _, item := range list {
			if item.RelevanceScore < minScore {
				continue
			}
			prev, seen := best[item.Locator]
			if !seen {
				best[item.Locator] = item
				order = append(order, item.Locator)
				continue
			}
			if item.RelevanceScore > prev.RelevanceScore {
				best[item.Locator] = item
			}
		}
	}

	merged := make([]model.EvidenceItem, 0, len(best))
	for _, locator := range order {
		merged = append(merged, best[locator])
	}

	// Stable sort keeps first-retrieved order among equal scores, so citation
	// assignment is deterministic for identical inputs.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	ranked := make(model.RankedSourceList, 0, len(merged))
	for i, item := range merged {
		ranked = append(ranked, model.RankedSource{Citation: i + 1, EvidenceItem: item})
	}

	return ranked, Sufficient(ranked, minCount, queried)
}

// Sufficient reports whether a ranked list clears the quality gate for the
// origins that were actually queried
func Sufficient(ranked model.RankedSourceList, minCount int, queried []model.Origin) bool {
	if len(ranked) < minCount {
		return false
	}
	counts := ranked.Origins()
	for _, origin := range queried {
		if counts[origin] == 0 {
			return false
		}
	}
	return true
}

// CountAbove returns how many items in the list score at or above threshold
func CountAbove(items []model.EvidenceItem, threshold float64) int {
	n := 0
	for _, item := range items {
		if item.RelevanceScore >= threshold {
			n++
		}
	}
	return n
}
