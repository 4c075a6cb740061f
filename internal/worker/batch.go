package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/avolkov/byline/internal/model"
	"gopkg.in/yaml.v3"
)

// OutlineRunner runs one outline request end to end
type OutlineRunner interface {
	GenerateOutline(ctx context.Context, task model.OutlineTask) (*model.OutlineResult, error)
}

// OutlineJob is one outline request queued for a pool worker
type OutlineJob struct {
	Task   model.OutlineTask
	Runner OutlineRunner
}

// Execute executes the outline job
func (j *OutlineJob) Execute(ctx context.Context) Result {
	outline, err := j.Runner.GenerateOutline(ctx, j.Task)
	return &OutlineJobResult{
		Task:    j.Task,
		Outline: outline,
		Err:     err,
	}
}

// OutlineJobResult represents the result of one batched outline request
type OutlineJobResult struct {
	Task    model.OutlineTask
	Outline *model.OutlineResult
	Err     error
}

// GetError returns the error from the job result
func (r *OutlineJobResult) GetError() error {
	return r.Err
}

// BatchProcessor processes multiple outline tasks concurrently
type BatchProcessor struct {
	runner      OutlineRunner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner OutlineRunner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessTasks runs all tasks through the worker pool
func (b *BatchProcessor) ProcessTasks(ctx context.Context, tasks []model.OutlineTask) []*OutlineJobResult {
	if len(tasks) == 0 {
		return []*OutlineJobResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Propagate caller cancellation into the pool's context so in-flight
	// requests abort instead of running to completion.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()
	defer close(done)

	for _, task := range tasks {
		pool.Submit(&OutlineJob{Task: task, Runner: b.runner})
	}

	results := pool.Wait()

	jobResults := make([]*OutlineJobResult, len(results))
	for i, result := range results {
		jobResults[i] = result.(*OutlineJobResult)
	}

	return jobResults
}

// ProcessFile reads outline tasks from a YAML file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*OutlineJobResult, error) {
	tasks, err := ReadTasksFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	return b.ProcessTasks(ctx, tasks), nil
}

// ReadTasksFromFile reads a YAML list of outline tasks
func ReadTasksFromFile(filePath string) ([]model.OutlineTask, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var tasks []model.OutlineTask
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	var valid []model.OutlineTask
	for _, task := range tasks {
		if task.Headline == "" || task.Thesis == "" {
			continue
		}
		valid = append(valid, task)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid tasks in %s (each needs headline and thesis)", filePath)
	}

	return valid, nil
}
