package cli

import (
	"fmt"
	"os"

	"github.com/avolkov/byline/internal/agent"
	"github.com/avolkov/byline/internal/cache"
	"github.com/avolkov/byline/internal/fetch"
	"github.com/avolkov/byline/internal/llm"
	"github.com/avolkov/byline/internal/model"
	"github.com/avolkov/byline/internal/retrieve"
	"github.com/avolkov/byline/internal/vector"
	"github.com/avolkov/byline/internal/websearch"
	"github.com/avolkov/byline/internal/worker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// loadConfig builds the effective configuration: defaults, then the config
// file, then environment variables. API keys come from the environment only.
func loadConfig() model.Config {
	cfg := model.DefaultConfig()

	setViperDefaults(cfg)

	cfg.Retrieval.ArchiveTopK = viper.GetInt("retrieval.archive_top_k")
	cfg.Retrieval.WebTopK = viper.GetInt("retrieval.web_top_k")
	cfg.Retrieval.MinScore = viper.GetFloat64("retrieval.min_score")
	cfg.Retrieval.MinSources = viper.GetInt("retrieval.min_sources")
	cfg.Retrieval.MaxTurns = viper.GetInt("retrieval.max_turns")

	cfg.Synthesis.Provider = viper.GetString("synthesis.provider")
	cfg.Synthesis.Model = viper.GetString("synthesis.model")
	cfg.Synthesis.BaseURL = viper.GetString("synthesis.base_url")
	cfg.Synthesis.Timeout = viper.GetDuration("synthesis.timeout")

	cfg.Embedding.Model = viper.GetString("embedding.model")
	cfg.Embedding.CacheTTL = viper.GetDuration("embedding.cache_ttl")

	cfg.Vector.URL = viper.GetString("vector.url")
	cfg.Vector.Collection = viper.GetString("vector.collection")

	cfg.WebSearch.BaseURL = viper.GetString("web_search.base_url")
	cfg.WebSearch.Depth = viper.GetString("web_search.depth")
	cfg.WebSearch.ExpandPages = viper.GetBool("web_search.expand_pages")

	cfg.Validation.Tolerance = viper.GetFloat64("validation.tolerance")
	cfg.Validation.MinWordCount = viper.GetInt("validation.min_word_count")
	cfg.Validation.MaxWordCount = viper.GetInt("validation.max_word_count")

	cfg.HTTP.Timeout = viper.GetDuration("http.timeout")
	cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	cfg.HTTP.MaxBodyBytes = viper.GetInt64("http.max_body_bytes")
	cfg.HTTP.RatePerHost = viper.GetFloat64("http.rate_per_host")
	cfg.HTTP.HTTPProxy = os.Getenv("HTTP_PROXY")
	cfg.HTTP.HTTPSProxy = os.Getenv("HTTPS_PROXY")
	cfg.HTTP.NoProxy = os.Getenv("NO_PROXY")

	cfg.Concurrency.BatchWorkers = viper.GetInt("concurrency.batch_workers")

	cfg.Vector.APIKey = os.Getenv("QDRANT_API_KEY")
	cfg.WebSearch.APIKey = os.Getenv("TAVILY_API_KEY")

	return cfg
}

func setViperDefaults(cfg model.Config) {
	viper.SetDefault("retrieval.archive_top_k", cfg.Retrieval.ArchiveTopK)
	viper.SetDefault("retrieval.web_top_k", cfg.Retrieval.WebTopK)
	viper.SetDefault("retrieval.min_score", cfg.Retrieval.MinScore)
	viper.SetDefault("retrieval.min_sources", cfg.Retrieval.MinSources)
	viper.SetDefault("retrieval.max_turns", cfg.Retrieval.MaxTurns)
	viper.SetDefault("synthesis.provider", cfg.Synthesis.Provider)
	viper.SetDefault("synthesis.model", cfg.Synthesis.Model)
	viper.SetDefault("synthesis.base_url", cfg.Synthesis.BaseURL)
	viper.SetDefault("synthesis.timeout", cfg.Synthesis.Timeout)
	viper.SetDefault("embedding.model", cfg.Embedding.Model)
	viper.SetDefault("embedding.cache_ttl", cfg.Embedding.CacheTTL)
	viper.SetDefault("vector.url", cfg.Vector.URL)
	viper.SetDefault("vector.collection", cfg.Vector.Collection)
	viper.SetDefault("web_search.base_url", cfg.WebSearch.BaseURL)
	viper.SetDefault("web_search.depth", cfg.WebSearch.Depth)
	viper.SetDefault("web_search.expand_pages", cfg.WebSearch.ExpandPages)
	viper.SetDefault("validation.tolerance", cfg.Validation.Tolerance)
	viper.SetDefault("validation.min_word_count", cfg.Validation.MinWordCount)
	viper.SetDefault("validation.max_word_count", cfg.Validation.MaxWordCount)
	viper.SetDefault("http.timeout", cfg.HTTP.Timeout)
	viper.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	viper.SetDefault("http.max_body_bytes", cfg.HTTP.MaxBodyBytes)
	viper.SetDefault("http.rate_per_host", cfg.HTTP.RatePerHost)
	viper.SetDefault("concurrency.batch_workers", cfg.Concurrency.BatchWorkers)
}

// resolveAPIKey pulls the synthesis provider's API key from the environment
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.Synthesis.Provider {
	case "openai":
		cfg.Synthesis.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Synthesis.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Synthesis.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Synthesis.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Synthesis.BaseURL = baseURL
		}
	}
	return nil
}

// buildOrchestrator assembles the full request path: synthesis provider,
// cached embedder, archive search, and the optional web tool when a web
// search key is configured.
func buildOrchestrator(cfg model.Config, logger *zap.Logger) (*agent.Orchestrator, error) {
	llmCfg := llm.ConfigFromModel(cfg)

	synth, err := llm.NewSynthesizer(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create synthesis provider: %w", err)
	}

	// Archive search embeds through OpenAI regardless of the synthesis
	// provider.
	embedCfg := llmCfg
	if embedCfg.Provider != "openai" {
		embedCfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	embedder, err := llm.NewEmbedder(embedCfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	store := cache.NewMemoryCache(cfg.Embedding.CacheTTL, cfg.Embedding.CacheTTL)
	cachedEmbedder := llm.NewCachedEmbedder(embedder, store, cfg.Embedding.CacheTTL)

	limiter := worker.NewLimiter(cfg.HTTP.RatePerHost, int(cfg.HTTP.RatePerHost))

	qdrant, err := vector.NewClient(vector.Options{
		URL:        cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey,
		Collection: cfg.Vector.Collection,
		Timeout:    cfg.HTTP.Timeout,
		Limiter:    limiter,
		MaxRetries: cfg.HTTP.MaxRetries,
		RetryBase:  cfg.HTTP.RetryBase,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("create vector client: %w", err)
	}

	archive := retrieve.NewArchiveTool(cachedEmbedder, qdrant)

	var web retrieve.Tool
	if cfg.WebSearch.APIKey != "" {
		tavily, err := websearch.NewClient(websearch.Options{
			APIKey:     cfg.WebSearch.APIKey,
			BaseURL:    cfg.WebSearch.BaseURL,
			Depth:      cfg.WebSearch.Depth,
			Timeout:    cfg.HTTP.Timeout,
			Limiter:    limiter,
			MaxRetries: cfg.HTTP.MaxRetries,
			RetryBase:  cfg.HTTP.RetryBase,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		})
		if err != nil {
			return nil, fmt.Errorf("create web search client: %w", err)
		}

		var expander retrieve.PageExpander
		if cfg.WebSearch.ExpandPages {
			expander = fetch.NewFetcher(fetch.Options{
				Timeout:    cfg.HTTP.Timeout,
				UserAgent:  cfg.HTTP.UserAgent,
				MaxBytes:   cfg.HTTP.MaxBodyBytes,
				Limiter:    limiter,
				HTTPProxy:  cfg.HTTP.HTTPProxy,
				HTTPSProxy: cfg.HTTP.HTTPSProxy,
				NoProxy:    cfg.HTTP.NoProxy,
			})
		}

		web = retrieve.NewWebTool(tavily, expander)
	}

	return agent.New(archive, web, synth, cfg, logger), nil
}
