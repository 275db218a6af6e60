package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vinylcat/sleevescan/internal/evaluation"
	"github.com/vinylcat/sleevescan/internal/images"
	"github.com/vinylcat/sleevescan/internal/models"
)

// Analyzer runs the sleeve analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, uploads []models.Upload) models.AnalyzeResult
}

// Runner evaluates an analyzer over dataset items
type Runner struct {
	analyzer    Analyzer
	fetcher     *images.Fetcher
	concurrency int
}

// NewRunner creates a runner processing at most concurrency items at once
func NewRunner(analyzer Analyzer, fetcher *images.Fetcher, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{analyzer: analyzer, fetcher: fetcher, concurrency: concurrency}
}

// Run processes every item and returns results in dataset order
func (r *Runner) Run(ctx context.Context, items []evaluation.Item) []evaluation.Result {
	slog.Info("Processing items", "count", len(items), "concurrency", r.concurrency)

	results := make([]evaluation.Result, len(items))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, r.concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, item evaluation.Item) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing item", "id", item.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(items)))
			results[idx] = r.processItem(ctx, item)
		}(i, item)
	}

	wg.Wait()
	return results
}

func (r *Runner) processItem(ctx context.Context, item evaluation.Item) evaluation.Result {
	result := evaluation.Result{
		ID:       item.ID,
		Expected: item.Expected(),
	}
	start := time.Now()

	if item.Front == "" && item.Back == "" {
		result.Error = "no image available"
		result.ProcessingTime = time.Since(start)
		return result
	}

	uploads, err := r.fetcher.FetchPair(ctx, item.Front, item.Back)
	if err != nil {
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start)
		return result
	}

	res := r.analyzer.Analyze(ctx, uploads)
	result.Actual = res.Data
	result.Comparison = evaluation.Compare(result.Expected, res.Data)
	result.ProcessingTime = time.Since(start)
	return result
}

// RunOptions configures an evaluation run
type RunOptions struct {
	DatasetPath string
	SampleSize  int
	Engine      string
	Model       string
	OutputDir   string
	ReportPath  string
}

// Execute loads the dataset, runs the evaluation and writes the results
func Execute(ctx context.Context, runner *Runner, opts RunOptions, out io.Writer) (*evaluation.Report, error) {
	slog.Info("Starting evaluation run", "dataset", opts.DatasetPath, "engine", opts.Engine)

	items, err := evaluation.LoadDataset(opts.DatasetPath, opts.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "items", len(items))

	results := runner.Run(ctx, items)

	report := &evaluation.Report{
		Config: evaluation.RunConfig{
			Engine:      opts.Engine,
			Model:       opts.Model,
			DatasetPath: opts.DatasetPath,
			SampleSize:  len(items),
		},
		Summary: evaluation.Aggregate(results),
		Results: results,
	}

	path, err := evaluation.SaveToYAML(opts.OutputDir, report)
	if err != nil {
		return nil, fmt.Errorf("failed to save results: %w", err)
	}

	report.PrintSummary(out)
	fmt.Fprintf(out, "\nResults saved to: %s\n", path)

	if opts.ReportPath != "" {
		if err := writeReportFile(opts.ReportPath, report); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Detailed report saved to: %s\n", opts.ReportPath)
	}

	return report, nil
}
