package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/avolkov/byline/internal/model"
)

func promptSources() model.RankedSourceList {
	published := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.RankedSourceList{
		{Citation: 1, EvidenceItem: model.EvidenceItem{
			Origin: model.OriginArchive, Title: "Archive Study", Publisher: "The Times",
			PublishedAt: &published, Locator: "archive://articles/1", Excerpt: "archived text",
			RelevanceScore: 0.92,
		}},
		{Citation: 2, EvidenceItem: model.EvidenceItem{
			Origin: model.OriginWeb, Title: "Web Report", Locator: "https://example.com/r",
			Excerpt: "web text", RelevanceScore: 0.81,
		}},
	}
}

func TestFormatSources(t *testing.T) {
	got := FormatSources(promptSources())

	if !strings.Contains(got, "Source [1] (archive, relevance 0.92)") {
		t.Errorf("Expected numbered archive block, got:\n%s", got)
	}
	if !strings.Contains(got, "Source [2] (web, relevance 0.81)") {
		t.Errorf("Expected numbered web block, got:\n%s", got)
	}
	if !strings.Contains(got, "Publisher: The Times") {
		t.Error("Expected publisher line for the first source")
	}
	if !strings.Contains(got, "Date: 2024-06-01") {
		t.Error("Expected formatted date")
	}
	if !strings.Contains(got, "Date: undated") {
		t.Error("Expected undated for the source without a date")
	}
}

func TestFormatSources_Empty(t *testing.T) {
	if got := FormatSources(nil); got != "No sources provided." {
		t.Errorf("Expected placeholder for empty sources, got %q", got)
	}
}

func TestBuildOutlinePrompt(t *testing.T) {
	task := model.OutlineTask{
		Headline: "The Headline",
		Thesis:   "The thesis statement",
		KeyFacts: []string{"fact one", "fact two"},
	}

	got := BuildOutlinePrompt(task, promptSources())

	for _, want := range []string{"The Headline", "The thesis statement", "- fact one", "- fact two", "Source [1]", "Never invent facts"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildOutlinePrompt_NoKeyFacts(t *testing.T) {
	task := model.OutlineTask{Headline: "H", Thesis: "T"}
	if got := BuildOutlinePrompt(task, nil); !strings.Contains(got, "None provided") {
		t.Error("Expected placeholder when no key facts given")
	}
}

func TestBuildDraftPrompt(t *testing.T) {
	task := model.DraftTask{
		Headline:        "The Headline",
		Thesis:          "The thesis",
		Outline:         "## Intro\n## Body",
		TargetWordCount: 1500,
	}

	got := BuildDraftPrompt(task, promptSources())

	for _, want := range []string{`starting with "# The Headline"`, "Target length: 1500 words", "## Intro", "Source [2]"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestCitationFixNote(t *testing.T) {
	got := CitationFixNote([]int{9, 12}, 5)

	for _, want := range []string{"[9]", "[12]", "[1] through [5]", "CORRECTION REQUIRED"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected note to contain %q, got:\n%s", want, got)
		}
	}
}
