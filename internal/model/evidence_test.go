package model

import (
	"strings"
	"testing"
	"time"
)

func TestNewEvidenceItem_StableID(t *testing.T) {
	a := NewEvidenceItem(OriginWeb, "Title A", "Pub", "https://example.com/a", "excerpt one", nil, 0.8)
	b := NewEvidenceItem(OriginWeb, "Different Title", "Other", "https://example.com/a", "excerpt two", nil, 0.3)

	if a.ID == "" {
		t.Fatal("Expected non-empty ID")
	}
	if a.ID != b.ID {
		t.Errorf("Expected same ID for same origin and locator, got %s and %s", a.ID, b.ID)
	}

	c := NewEvidenceItem(OriginArchive, "Title A", "Pub", "https://example.com/a", "excerpt one", nil, 0.8)
	if a.ID == c.ID {
		t.Error("Expected different IDs for different origins")
	}
}

func TestNewEvidenceItem_BoundsExcerpt(t *testing.T) {
	long := strings.Repeat("é", MaxExcerptRunes+100)
	item := NewEvidenceItem(OriginArchive, "T", "", "doc1", long, nil, 0.9)

	if got := len([]rune(item.Excerpt)); got != MaxExcerptRunes {
		t.Errorf("Expected excerpt bounded at %d runes, got %d", MaxExcerptRunes, got)
	}

	short := "a short excerpt"
	item = NewEvidenceItem(OriginArchive, "T", "", "doc2", short, nil, 0.9)
	if item.Excerpt != short {
		t.Errorf("Expected short excerpt untouched, got %q", item.Excerpt)
	}
}

func TestNewEvidenceItem_ClampsScore(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.75, 0.75},
		{1, 1},
		{1.7, 1},
	}

	for _, tc := range cases {
		item := NewEvidenceItem(OriginWeb, "T", "", "u", "e", nil, tc.in)
		if item.RelevanceScore != tc.want {
			t.Errorf("Score %v: expected %v, got %v", tc.in, tc.want, item.RelevanceScore)
		}
	}
}

func TestRankedSourceList_ByCitation(t *testing.T) {
	now := time.Now()
	list := RankedSourceList{
		{Citation: 1, EvidenceItem: NewEvidenceItem(OriginArchive, "First", "P1", "a", "x", &now, 0.9)},
		{Citation: 2, EvidenceItem: NewEvidenceItem(OriginWeb, "Second", "P2", "b", "y", nil, 0.8)},
	}

	s, ok := list.ByCitation(2)
	if !ok {
		t.Fatal("Expected citation 2 to resolve")
	}
	if s.Title != "Second" {
		t.Errorf("Expected Second, got %s", s.Title)
	}

	if _, ok := list.ByCitation(3); ok {
		t.Error("Expected citation 3 to be unresolved")
	}
	if _, ok := list.ByCitation(0); ok {
		t.Error("Expected citation 0 to be unresolved")
	}
}

func TestRankedSourceList_Origins(t *testing.T) {
	list := RankedSourceList{
		{Citation: 1, EvidenceItem: EvidenceItem{Origin: OriginArchive}},
		{Citation: 2, EvidenceItem: EvidenceItem{Origin: OriginArchive}},
		{Citation: 3, EvidenceItem: EvidenceItem{Origin: OriginWeb}},
	}

	counts := list.Origins()
	if counts[OriginArchive] != 2 || counts[OriginWeb] != 1 {
		t.Errorf("Expected archive=2 web=1, got %v", counts)
	}
}
