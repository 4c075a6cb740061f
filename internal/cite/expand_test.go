package cite

import (
	"strings"
	"testing"
	"time"

	"github.com/avolkov/byline/internal/model"
)

func TestExpandMarkers(t *testing.T) {
	published := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	list := model.RankedSourceList{
		{Citation: 1, EvidenceItem: model.EvidenceItem{
			Origin: model.OriginWeb, Title: "Grid Report", Publisher: "Reuters", PublishedAt: &published,
		}},
		{Citation: 2, EvidenceItem: model.EvidenceItem{
			Origin: model.OriginArchive, Title: "Archive Piece",
		}},
	}

	got := ExpandMarkers("Capacity doubled [1]. Earlier coverage [2].", list)

	if !strings.Contains(got, "[1, Reuters, Grid Report, 2024-03-15]") {
		t.Errorf("Expected expanded first marker, got %q", got)
	}
	// No publisher falls back to the origin; no date reads undated.
	if !strings.Contains(got, "[2, archive, Archive Piece, undated]") {
		t.Errorf("Expected origin fallback for second marker, got %q", got)
	}
}

func TestExpandMarkers_LeavesUnresolvableAlone(t *testing.T) {
	list := model.RankedSourceList{
		{Citation: 1, EvidenceItem: model.EvidenceItem{Title: "Only Source"}},
	}

	got := ExpandMarkers("Valid [1] and dangling [7].", list)
	if !strings.Contains(got, "[7]") {
		t.Errorf("Expected [7] left untouched, got %q", got)
	}
}

func TestSplitUsage(t *testing.T) {
	list := model.RankedSourceList{
		{Citation: 1, EvidenceItem: model.EvidenceItem{Title: "Used A"}},
		{Citation: 2, EvidenceItem: model.EvidenceItem{Title: "Never Cited"}},
		{Citation: 3, EvidenceItem: model.EvidenceItem{Title: "Used B"}},
	}

	used, unused := SplitUsage("Claim [1]. Another claim [3]. Repeat [1].", list)

	if len(used) != 2 {
		t.Fatalf("Expected 2 used sources, got %d", len(used))
	}
	if used[0].Citation != 1 || used[1].Citation != 3 {
		t.Errorf("Expected citations 1 and 3 used, got %v", used)
	}
	if len(unused) != 1 || unused[0].Citation != 2 {
		t.Errorf("Expected citation 2 unused, got %v", unused)
	}
}

func TestSplitUsage_NothingCited(t *testing.T) {
	list := model.RankedSourceList{
		{Citation: 1, EvidenceItem: model.EvidenceItem{Title: "A"}},
	}

	used, unused := SplitUsage("No markers at all.", list)
	if len(used) != 0 || len(unused) != 1 {
		t.Errorf("Expected all sources unused, got used=%d unused=%d", len(used), len(unused))
	}
}
