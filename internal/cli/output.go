package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/avolkov/byline/internal/model"
)

// writeJSON writes v as indented JSON to path
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeMarkdown writes text to path
func writeMarkdown(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// slugify turns a headline into a safe filename stem
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 80 {
		slug = strings.TrimSuffix(slug[:80], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// printTrail prints the reasoning trail to stderr for inspection
func printTrail(trail []model.AgentTurn) {
	for _, turn := range trail {
		fmt.Fprintf(os.Stderr, "  %2d [%s] %s", turn.Seq, turn.State, turn.Action.Kind)
		if turn.Action.Query != "" {
			fmt.Fprintf(os.Stderr, " %q", turn.Action.Query)
		}
		fmt.Fprintf(os.Stderr, " -> %s\n", turn.Observation)
	}
}

// printSources prints the ranked source list to stderr
func printSources(sources model.RankedSourceList) {
	for _, s := range sources {
		fmt.Fprintf(os.Stderr, "  [%d] %.2f %s (%s) %s\n",
			s.Citation, s.RelevanceScore, s.Title, s.Origin, s.Locator)
	}
}
