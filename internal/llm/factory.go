package llm

import (
	"fmt"
	"strings"

	"github.com/avolkov/byline/internal/model"
)

// NewSynthesizer creates a synthesis provider from configuration
func NewSynthesizer(config Config) (Synthesizer, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// NewEmbedder creates an embedding client. Only OpenAI embeds today; other
// synthesis providers still pair with OpenAI embeddings for archive search.
func NewEmbedder(config Config) (Embedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	return NewOpenAIProvider(config)
}

// ConfigFromModel converts the application config into provider config
func ConfigFromModel(cfg model.Config) Config {
	return Config{
		Provider:       cfg.Synthesis.Provider,
		Model:          cfg.Synthesis.Model,
		APIKey:         cfg.Synthesis.APIKey,
		BaseURL:        cfg.Synthesis.BaseURL,
		Timeout:        cfg.Synthesis.Timeout,
		MaxTokens:      cfg.Synthesis.MaxTokens,
		Temperature:    cfg.Synthesis.Temperature,
		EmbeddingModel: cfg.Embedding.Model,
		HTTPProxy:      cfg.HTTP.HTTPProxy,
		HTTPSProxy:     cfg.HTTP.HTTPSProxy,
		NoProxy:        cfg.HTTP.NoProxy,
	}
}
