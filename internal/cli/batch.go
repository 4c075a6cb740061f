package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avolkov/byline/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchWeb         bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <tasks.yaml>",
	Short: "Research and outline multiple articles in parallel",
	Long: `Batch reads outline tasks from a YAML file and processes them with a
bounded worker pool. Each task is a full outline request; the pool size
bounds how many concurrent requests hit the retrieval and synthesis
providers.

The tasks file is a YAML list:

  - headline: "Grid storage quietly doubled"
    thesis: "Utility-scale batteries doubled in two years"
    key_facts:
      - "FERC reported 21GW installed in 2024"
  - headline: "..."
    thesis: "..."

Example:
  byline batch tasks.yaml
  byline batch tasks.yaml --concurrency 8 --output-dir ./outlines --web`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./byline-outlines", "output directory for outline JSON files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchWeb, "web", false, "also search the live web for every task")
	batchCmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&modelName, "model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
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
	if batchWeb && cfg.WebSearch.APIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY environment variable not set (needed for --web)")
	}

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.BatchWorkers
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

	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tasks, err := worker.ReadTasksFromFile(file)
	if err != nil {
		return err
	}
	if batchWeb {
		for i := range tasks {
			tasks[i].AllowWeb = true
		}
	}

	fmt.Fprintf(os.Stderr, "Processing %d tasks with %d workers...\n", len(tasks), concurrency)

	processor := worker.NewBatchProcessor(orch, concurrency)
	results := processor.ProcessTasks(ctx, tasks)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Task.Headline, result.Err)
			continue
		}

		successCount++
		path := filepath.Join(batchOutputDir, slugify(result.Task.Headline)+".json")
		if err := writeJSON(path, result.Outline); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Task.Headline, err)
			successCount--
			failureCount++
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d sources)\n", result.Task.Headline, len(result.Outline.Sources))
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d ok, %d failed, output in %s\n",
		successCount, failureCount, batchOutputDir)

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d tasks failed", failureCount)
	}
	return nil
}
