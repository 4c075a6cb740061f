package cite

import (
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`#+\s`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern  = regexp.MustCompile(`\*([^*]+)\*`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
	sectionPattern = regexp.MustCompile(`(?m)^##\s+(.+)$`)
)

var clickbaitMarkers = []string{
	"shocking", "amazing", "incredible", "unbelievable", "you won't believe",
}

// WordCount counts words in markdown text with syntax stripped
func WordCount(text string) int {
	clean := headingPattern.ReplaceAllString(text, "")
	clean = linkPattern.ReplaceAllString(clean, "$1")
	clean = boldPattern.ReplaceAllString(clean, "$1")
	clean = italicPattern.ReplaceAllString(clean, "$1")
	clean = codePattern.ReplaceAllString(clean, "$1")
	return len(strings.Fields(clean))
}

// Sections returns the H2 headings of a markdown draft, in order
func Sections(text string) []string {
	var sections []string
	for _, m := range sectionPattern.FindAllStringSubmatch(text, -1) {
		sections = append(sections, strings.TrimSpace(m[1]))
	}
	return sections
}

// StyleScore rates a draft against house style on a 0..1 scale. It checks
// average sentence length, paragraph density, citation density and clickbait
// vocabulary. The score feeds warnings, never hard failures.
func StyleScore(text string) float64 {
	score := 1.0

	var contentLines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			contentLines = append(contentLines, trimmed)
		}
	}
	content := strings.Join(contentLines, " ")

	sentences := proseSentences(text)
	if len(sentences) > 0 {
		total := 0
		for _, s := range sentences {
			total += len(strings.Fields(s))
		}
		avg := float64(total) / float64(len(sentences))
		// House style targets 15-20 words per sentence.
		switch {
		case avg < 10 || avg > 30:
			score -= 0.2
		case avg < 15 || avg > 20:
			score -= 0.1
		}
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	if len(paragraphs) > 0 {
		veryShort, veryLong := 0, 0
		for _, p := range paragraphs {
			n := len(proseSentences(p))
			if n < 2 {
				veryShort++
			}
			if n > 6 {
				veryLong++
			}
		}
		if float64(veryShort) > float64(len(paragraphs))*0.3 {
			score -= 0.15
		}
		if float64(veryLong) > float64(len(paragraphs))*0.2 {
			score -= 0.15
		}
	}

	words := WordCount(text)
	if words > 500 {
		perHundred := float64(len(ExtractMarkers(text))) / (float64(words) / 100)
		if perHundred < 0.5 {
			score -= 0.2
		}
	}

	lower := strings.ToLower(content)
	for _, marker := range clickbaitMarkers {
		if strings.Contains(lower, marker) {
			score -= 0.1
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// CleanResponse strips meta-commentary some models wrap around the article
// ("Here is the draft...") and re-anchors the text at its first heading
func CleanResponse(text, headline string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "# "+headline) {
		return trimmed
	}

	if idx := strings.Index(trimmed, "# "+headline); idx >= 0 {
		return strings.TrimSpace(trimmed[idx:])
	}

	// Fall back to the first markdown heading of any depth.
	if idx := strings.Index(trimmed, "\n#"); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}
