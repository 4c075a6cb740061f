package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MaxExcerptRunes bounds the excerpt text shown to the LLM. Longer retrieval
// hits are truncated at construction so prompt size stays proportional to the
// number of sources, not to document length.
const MaxExcerptRunes = 500

// Origin identifies which retrieval tool produced an evidence item
type Origin string

const (
	OriginArchive Origin = "archive" // previously ingested corpus, vector search
	OriginWeb     Origin = "web"     // live web search provider
)

// EvidenceItem is one retrievable unit of evidence. Items are immutable after
// construction and live only for the duration of a single request.
type EvidenceItem struct {
	ID             string     `json:"id"`
	Origin         Origin     `json:"origin"`
	Title          string     `json:"title"`
	Publisher      string     `json:"publisher,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	Locator        string     `json:"locator"`         // URL or archive path
	Excerpt        string     `json:"excerpt"`         // bounded, shown to the LLM
	RelevanceScore float64    `json:"relevance_score"` // [0,1] after normalization
}

// NewEvidenceItem builds an item with a stable ID, a bounded excerpt and a
// clamped relevance score. Scores from different providers must be normalized
// to [0,1] before this point; clamping here only guards against drift.
func NewEvidenceItem(origin Origin, title, publisher, locator, excerpt string, publishedAt *time.Time, score float64) EvidenceItem {
	return EvidenceItem{
		ID:             EvidenceID(origin, locator),
		Origin:         origin,
		Title:          title,
		Publisher:      publisher,
		PublishedAt:    publishedAt,
		Locator:        locator,
		Excerpt:        BoundExcerpt(excerpt),
		RelevanceScore: ClampScore(score),
	}
}

// EvidenceID derives a stable identifier from origin and locator
func EvidenceID(origin Origin, locator string) string {
	hash := sha256.Sum256([]byte(string(origin) + "|" + locator))
	return hex.EncodeToString(hash[:8])
}

// BoundExcerpt truncates text to MaxExcerptRunes, rune-safe
func BoundExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxExcerptRunes {
		return text
	}
	return string(runes[:MaxExcerptRunes])
}

// ClampScore forces a relevance score into [0,1]
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// RankedSource is an evidence item with its assigned citation number
type RankedSource struct {
	Citation int `json:"citation"` // 1-based, stable for the request
	EvidenceItem
}

// RankedSourceList is the ordered, deduplicated evidence handed to the
// synthesis client and the citation validator. Citation numbers are assigned
// exactly once, in descending relevance order, and never reused within a
// request.
type RankedSourceList []RankedSource

// ByCitation returns the source with the given citation number
func (l RankedSourceList) ByCitation(n int) (RankedSource, bool) {
	for _, s := range l {
		if s.Citation == n {
			return s, true
		}
	}
	return RankedSource{}, false
}

// Origins reports how many sources each origin contributed
func (l RankedSourceList) Origins() map[Origin]int {
	counts := make(map[Origin]int)
	for _, s := range l {
		counts[s.Origin]++
	}
	return counts
}

// Locators returns the locator of every source, in citation order
func (l RankedSourceList) Locators() []string {
	locators := make([]string, 0, len(l))
	for _, s := range l {
		locators = append(locators, s.Locator)
	}
	return locators
}
