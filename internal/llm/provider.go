// Package llm wraps the language-model collaborators behind two narrow
// interfaces: Synthesizer turns a prompt plus numbered sources into article
// text, Embedder turns text into vectors for archive search.
package llm

import (
	"context"
	"time"
)

// Synthesizer is the LLM call that produces outline or draft text
type Synthesizer interface {
	// Name returns the provider name
	Name() string

	// Synthesize generates text for the given prompt. Implementations must
	// honor ctx cancellation and their configured timeout.
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Embedder turns text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SynthesisRequest contains the input for one generation call
type SynthesisRequest struct {
	// System sets the provider-level system prompt
	System string

	// Prompt is the full task prompt including numbered sources
	Prompt string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; drafts use a higher value than fixes
	Temperature float64
}

// SynthesisResponse contains the generated text
type SynthesisResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, test servers)
	BaseURL string

	// Timeout per generation call
	Timeout time.Duration

	// MaxTokens default for responses
	MaxTokens int

	// Temperature default for sampling
	Temperature float64

	// EmbeddingModel used by providers that also embed
	EmbeddingModel string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "openai",
		Timeout:        60 * time.Second,
		MaxTokens:      4000,
		Temperature:    0.7,
		EmbeddingModel: "text-embedding-3-small",
	}
}
