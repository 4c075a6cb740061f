// Package cite checks generated text against the evidence it was given.
// Every check is syntactic: the validator proves that citations resolve and
// that claim-shaped sentences carry markers, not that any claim is true.
package cite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avolkov/byline/internal/model"
)

var (
	markerPattern    = regexp.MustCompile(`\[(\d+)\]`)
	statisticPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s*(?:%|percent)?`)
	quotePattern     = regexp.MustCompile(`"[^"]{2,}"|“[^”]{2,}”`)
	sentenceSplit    = regexp.MustCompile(`[.!?]+`)
)

// ExtractMarkers returns every bracketed-integer citation in the text, in
// order of appearance and including repeats
func ExtractMarkers(text string) []int {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	markers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue // cannot happen with this pattern, but stay safe
		}
		markers = append(markers, n)
	}
	return markers
}

// Validate checks text against the ranked sources it was generated from.
//
// A citation is invalid when its number falls outside [1, len(sources)].
// A sentence is an unsupported claim when it contains a numeric statistic or
// a quotation but no citation marker. The result is valid when no citation is
// invalid and the unsupported ratio stays within tolerance.
//
// Pure function: no side effects, deterministic for identical inputs.
func Validate(text string, sources model.RankedSourceList, tolerance float64) model.ValidationResult {
	markers := ExtractMarkers(text)

	var invalid []int
	seenInvalid := make(map[int]bool)
	unique := make(map[int]bool)
	for _, n := range markers {
		if n < 1 || n > len(sources) {
			if !seenInvalid[n] {
				seenInvalid[n] = true
				invalid = append(invalid, n)
			}
			continue
		}
		unique[n] = true
	}

	sentences := proseSentences(text)
	var unsupported []string
	for _, sentence := range sentences {
		if markerPattern.MatchString(sentence) {
			continue
		}
		if statisticPattern.MatchString(sentence) || quotePattern.MatchString(sentence) {
			unsupported = append(unsupported, strings.TrimSpace(sentence))
		}
	}

	result := model.ValidationResult{
		InvalidCitations:  invalid,
		UnsupportedClaims: unsupported,
		TotalSentences:    len(sentences),
		CitationCount:     len(markers),
		UniqueSources:     len(unique),
	}

	ratio := 0.0
	if len(sentences) > 0 {
		ratio = float64(len(unsupported)) / float64(len(sentences))
	}
	result.IsValid = len(invalid) == 0 && ratio <= tolerance

	return result
}

// proseSentences splits the body text into sentences, skipping markdown
// headings so section numbers are not mistaken for statistics
func proseSentences(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
	}

	joined := strings.Join(lines, " ")
	parts := sentenceSplit.Split(joined, -1)

	var sentences []string
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
