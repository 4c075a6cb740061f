package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avolkov/byline/internal/agent"
	"github.com/avolkov/byline/internal/model"
	"github.com/spf13/cobra"
)

var (
	outlineHeadline string
	outlineThesis   string
	outlineFacts    []string
	outlineWeb      bool
	outlineJSON     string
	outlineMD       string
	outlineTimeout  time.Duration
	provider        string
	modelName       string
)

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Research a topic and generate a cited article outline",
	Long: `Outline researches the headline and thesis against the embedded archive
(and the live web with --web), gates the evidence for quality, and writes a
markdown outline where every planned claim cites a numbered source.

The JSON output carries the outline, the ranked sources and the full
reasoning trail; feed it to 'byline draft' to write the article.

Example:
  byline outline --headline "Grid storage quietly doubled" --thesis "Utility-scale batteries doubled in two years"
  byline outline --headline "..." --thesis "..." --fact "FERC reported 21GW in 2024" --web --json outline.json`,
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)

	outlineCmd.Flags().StringVar(&outlineHeadline, "headline", "", "article headline (required)")
	outlineCmd.Flags().StringVar(&outlineThesis, "thesis", "", "article thesis (required)")
	outlineCmd.Flags().StringArrayVar(&outlineFacts, "fact", nil, "key fact to incorporate (repeatable)")
	outlineCmd.Flags().BoolVar(&outlineWeb, "web", false, "also search the live web (needs TAVILY_API_KEY)")
	outlineCmd.Flags().StringVar(&outlineJSON, "json", "outline.json", "output JSON path")
	outlineCmd.Flags().StringVar(&outlineMD, "md", "", "output Markdown path (optional)")
	outlineCmd.Flags().DurationVar(&outlineTimeout, "timeout", 5*time.Minute, "overall request timeout")
	outlineCmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, ollama)")
	outlineCmd.Flags().StringVar(&modelName, "model", "", "LLM model name")

	_ = outlineCmd.MarkFlagRequired("headline")
	_ = outlineCmd.MarkFlagRequired("thesis")
}

func runOutline(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), outlineTimeout)
	defer cancel()

	cfg := loadConfig()
	if provider != "" {
		cfg.Synthesis.Provider = provider
	}
	if modelName != "" {
		cfg.Synthesis.Model = modelName
	}
	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}
	if outlineWeb && cfg.WebSearch.APIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY environment variable not set (needed for --web)")
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	task := model.OutlineTask{
		Headline: outlineHeadline,
		Thesis:   outlineThesis,
		KeyFacts: outlineFacts,
		AllowWeb: outlineWeb,
	}

	result, err := orch.GenerateOutline(ctx, task)
	if err != nil {
		var agentErr *agent.Error
		if errors.As(err, &agentErr) && verbose {
			fmt.Fprintf(os.Stderr, "Request failed after %d turns:\n", len(agentErr.Trail))
			printTrail(agentErr.Trail)
		}
		return fmt.Errorf("outline failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Sources (%d):\n", len(result.Sources))
		printSources(result.Sources)
		fmt.Fprintf(os.Stderr, "Trail (%d turns):\n", len(result.Trail))
		printTrail(result.Trail)
	}
	if result.Warning != "" {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", result.Warning)
	}

	if err := writeJSON(outlineJSON, result); err != nil {
		return err
	}
	if outlineMD != "" {
		if err := writeMarkdown(outlineMD, result.Text); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Outline written: %s (%d sources)\n", outlineJSON, len(result.Sources))
	return nil
}
