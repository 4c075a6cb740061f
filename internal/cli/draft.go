package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avolkov/byline/internal/agent"
	"github.com/avolkov/byline/internal/model"
	"github.com/spf13/cobra"
)

var (
	draftFrom     string
	draftHeadline string
	draftThesis   string
	draftOutline  string
	draftWords    int
	draftWeb      bool
	draftJSON     string
	draftMD       string
	draftTimeout  time.Duration
)

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Write a full cited article draft from an approved outline",
	Long: `Draft turns an approved outline into a complete article. The usual flow
carries the outline JSON from 'byline outline' so the draft reuses the exact
sources the outline was built on:

  byline outline --headline "..." --thesis "..." --json outline.json
  byline draft --from outline.json --words 1200 --md article.md

An outline can also be supplied directly with --headline, --thesis and
--outline-file; sources are then gathered fresh before writing.

Every draft is validated for citation integrity: invalid citation numbers
trigger one corrective rewrite, and remaining findings surface as warnings.`,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().StringVar(&draftFrom, "from", "", "outline JSON produced by 'byline outline'")
	draftCmd.Flags().StringVar(&draftHeadline, "headline", "", "article headline (with --outline-file)")
	draftCmd.Flags().StringVar(&draftThesis, "thesis", "", "article thesis (with --outline-file)")
	draftCmd.Flags().StringVar(&draftOutline, "outline-file", "", "markdown outline to follow (alternative to --from)")
	draftCmd.Flags().IntVar(&draftWords, "words", 1200, "target word count")
	draftCmd.Flags().BoolVar(&draftWeb, "web", false, "also search the live web when gathering fresh sources")
	draftCmd.Flags().StringVar(&draftJSON, "json", "draft.json", "output JSON path")
	draftCmd.Flags().StringVar(&draftMD, "md", "article.md", "output Markdown path")
	draftCmd.Flags().DurationVar(&draftTimeout, "timeout", 5*time.Minute, "overall request timeout")
	draftCmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, ollama)")
	draftCmd.Flags().StringVar(&modelName, "model", "", "LLM model name")
}

func runDraft(cmd *cobra.Command, args []string) error {
	task, err := draftTask()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftTimeout)
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

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	result, err := orch.GenerateDraft(ctx, task)
	if err != nil {
		var agentErr *agent.Error
		if errors.As(err, &agentErr) && verbose {
			fmt.Fprintf(os.Stderr, "Request failed after %d turns:\n", len(agentErr.Trail))
			printTrail(agentErr.Trail)
		}
		return fmt.Errorf("draft failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Trail (%d turns):\n", len(result.Trail))
		printTrail(result.Trail)
	}
	if result.Warning != "" {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", result.Warning)
	}

	if err := writeJSON(draftJSON, result); err != nil {
		return err
	}
	if err := writeMarkdown(draftMD, result.Text); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Draft written: %s (%d words, %d sources cited, style %.2f)\n",
		draftMD, result.WordCount, len(result.SourcesUsed), result.StyleScore)
	return nil
}

// draftTask builds the request from either a carried-over outline JSON or
// the explicit flags
func draftTask() (model.DraftTask, error) {
	if draftFrom != "" {
		data, err := os.ReadFile(draftFrom)
		if err != nil {
			return model.DraftTask{}, fmt.Errorf("read outline: %w", err)
		}
		var outline model.OutlineResult
		if err := json.Unmarshal(data, &outline); err != nil {
			return model.DraftTask{}, fmt.Errorf("parse outline: %w", err)
		}
		if outline.Text == "" {
			return model.DraftTask{}, fmt.Errorf("outline %s has no text", draftFrom)
		}
		return model.DraftTask{
			Headline:        outline.Headline,
			Thesis:          outline.Thesis,
			Outline:         outline.Text,
			Sources:         outline.Sources,
			TargetWordCount: draftWords,
			AllowWeb:        draftWeb,
		}, nil
	}

	if draftHeadline == "" || draftThesis == "" || draftOutline == "" {
		return model.DraftTask{}, fmt.Errorf("either --from or all of --headline, --thesis and --outline-file are required")
	}

	outlineText, err := os.ReadFile(draftOutline)
	if err != nil {
		return model.DraftTask{}, fmt.Errorf("read outline file: %w", err)
	}

	return model.DraftTask{
		Headline:        draftHeadline,
		Thesis:          draftThesis,
		Outline:         string(outlineText),
		TargetWordCount: draftWords,
		AllowWeb:        draftWeb,
	}, nil
}
