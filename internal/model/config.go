package model

import "time"

// Config carries every policy knob as explicit state. The orchestrator never
// reads ambient globals, so tests can exercise policy variants
// deterministically.
type Config struct {
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Synthesis   SynthesisConfig   `yaml:"synthesis"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Vector      VectorConfig      `yaml:"vector"`
	WebSearch   WebSearchConfig   `yaml:"web_search"`
	Validation  ValidationConfig  `yaml:"validation"`
	HTTP        HTTPConfig        `yaml:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// RetrievalConfig controls the gathering loop and the quality gate
type RetrievalConfig struct {
	ArchiveTopK int     `yaml:"archive_top_k"` // nearest-neighbor hits per archive query
	WebTopK     int     `yaml:"web_top_k"`     // results per web query
	MinScore    float64 `yaml:"min_score"`     // relevance floor for the gate
	HighScore   float64 `yaml:"high_score"`    // above this a source counts as strong
	MinSources  int     `yaml:"min_sources"`   // gate sufficiency threshold
	MaxTurns    int     `yaml:"max_turns"`     // hard cap on GATHERING turns
}

// SynthesisConfig selects and bounds the LLM call
type SynthesisConfig struct {
	Provider    string        `yaml:"provider"` // openai, anthropic, ollama
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"-"` // from environment only, never persisted
	BaseURL     string        `yaml:"base_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

// EmbeddingConfig controls the embedding client and its upstream cache
type EmbeddingConfig struct {
	Model    string        `yaml:"model"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// VectorConfig points at the vector store service holding the archive.
// The core only searches; ingestion owns writes.
type VectorConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"-"`
	Collection string `yaml:"collection"`
}

// WebSearchConfig points at the web search provider
type WebSearchConfig struct {
	APIKey      string `yaml:"-"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Depth       string `yaml:"depth"`        // basic or advanced
	ExpandPages bool   `yaml:"expand_pages"` // fetch result pages when snippets are thin
}

// ValidationConfig bounds the citation integrity check
type ValidationConfig struct {
	Tolerance      float64 `yaml:"tolerance"`        // allowed unsupported-claim ratio
	MaxFixAttempts int     `yaml:"max_fix_attempts"` // corrective re-synthesis budget
	MinWordCount   int     `yaml:"min_word_count"`
	MaxWordCount   int     `yaml:"max_word_count"`
	MinStyleScore  float64 `yaml:"min_style_score"`
	MinUniqueCited int     `yaml:"min_unique_cited"`
}

// HTTPConfig is shared by every outbound HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries"` // transient errors only
	RetryBase    time.Duration `yaml:"retry_base"`
	RatePerHost  float64       `yaml:"rate_per_host"` // requests per second per host
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// DefaultConfig returns the standard policy set
func DefaultConfig() Config {
	return Config{
		Retrieval: RetrievalConfig{
			ArchiveTopK: 10,
			WebTopK:     5,
			MinScore:    0.75,
			HighScore:   0.85,
			MinSources:  4,
			MaxTurns:    8,
		},
		Synthesis: SynthesisConfig{
			Provider:    "openai",
			Model:       "",
			Timeout:     60 * time.Second,
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			Model:    "text-embedding-3-small",
			CacheTTL: 15 * time.Minute,
		},
		Vector: VectorConfig{
			URL:        "http://localhost:6333",
			Collection: "articles",
		},
		WebSearch: WebSearchConfig{
			Depth:       "advanced",
			ExpandPages: false,
		},
		Validation: ValidationConfig{
			Tolerance:      0.1,
			MaxFixAttempts: 1,
			MinWordCount:   1000,
			MaxWordCount:   2000,
			MinStyleScore:  0.7,
			MinUniqueCited: 3,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Byline/0.1 (+https://github.com/avolkov/byline)",
			MaxBodyBytes: 2_000_000,
			MaxRetries:   2,
			RetryBase:    500 * time.Millisecond,
			RatePerHost:  4,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
	}
}
