package model

// OutlineTask is a request to research and outline an article
type OutlineTask struct {
	Headline string   `json:"headline" yaml:"headline"`
	Thesis   string   `json:"thesis" yaml:"thesis"`
	KeyFacts []string `json:"key_facts,omitempty" yaml:"key_facts,omitempty"`
	AllowWeb bool     `json:"allow_web" yaml:"allow_web"`
}

// DraftTask is a request to turn an approved outline into a full draft.
// Sources usually carry over from the outline step; when empty the
// orchestrator gathers fresh evidence before writing.
type DraftTask struct {
	Headline        string           `json:"headline" yaml:"headline"`
	Thesis          string           `json:"thesis" yaml:"thesis"`
	Outline         string           `json:"outline" yaml:"outline"`
	Sources         RankedSourceList `json:"sources,omitempty" yaml:"-"`
	TargetWordCount int              `json:"target_word_count" yaml:"target_word_count"`
	AllowWeb        bool             `json:"allow_web" yaml:"allow_web"`
}

// OutlineResult is the outcome of a successful outline request
type OutlineResult struct {
	Headline string           `json:"headline"`
	Thesis   string           `json:"thesis"`
	Text     string           `json:"text"`
	Sources  RankedSourceList `json:"sources"`
	Trail    []AgentTurn      `json:"trail"`
	Warning  string           `json:"warning,omitempty"`
}

// DraftResult is the outcome of a successful draft request
type DraftResult struct {
	Headline      string           `json:"headline"`
	Text          string           `json:"text"`
	WordCount     int              `json:"word_count"`
	Sections      []string         `json:"sections,omitempty"`
	SourcesUsed   RankedSourceList `json:"sources_used"`
	SourcesUnused RankedSourceList `json:"sources_unused,omitempty"`
	Validation    ValidationResult `json:"validation"`
	StyleScore    float64          `json:"style_score"`
	Trail         []AgentTurn      `json:"trail"`
	Warning       string           `json:"warning,omitempty"`
}

// ValidationResult is the output of the citation integrity validator.
// The unsupported-claim check is structural: it flags sentences that carry a
// statistic or quotation without a citation marker. It proves format
// compliance, never factual correctness.
type ValidationResult struct {
	IsValid           bool     `json:"is_valid"`
	InvalidCitations  []int    `json:"invalid_citations,omitempty"`
	UnsupportedClaims []string `json:"unsupported_claims,omitempty"`
	TotalSentences    int      `json:"total_sentences"`
	CitationCount     int      `json:"citation_count"`
	UniqueSources     int      `json:"unique_sources"`
}
