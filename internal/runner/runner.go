package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/metrics"
)

// DefaultConcurrency bounds simultaneous judge calls so a batch run does
// not overwhelm the backend.
const DefaultConcurrency = 5

// Evaluator is the judgment capability the runner drives. It is satisfied
// by judge.Client; implementations must be safe for concurrent use and must
// always return a usable Judgment.
type Evaluator interface {
	Evaluate(ctx context.Context, question, response string) domain.Judgment
}

// Config controls one batch run.
type Config struct {
	// Concurrency limits simultaneous judge calls. Defaults to
	// DefaultConcurrency when zero.
	Concurrency int

	// Confidence selects the accuracy confidence level of the report.
	// Defaults to 95%.
	Confidence metrics.ConfidenceLevel
}

// Outcome is the result of running a judge over a labeled dataset.
type Outcome struct {
	// Results pairs each sample's ground-truth label with the judge's
	// prediction, in dataset order.
	Results []domain.LabeledResult

	// Judgments holds the full per-sample judgments, in dataset order.
	Judgments []domain.Judgment

	// Report is the agreement-quality report over Results.
	Report metrics.Report
}

// Runner evaluates labeled datasets against one judge. It holds no mutable
// state between runs.
type Runner struct {
	evaluator Evaluator
	config    Config
}

// New creates a Runner over the given evaluator.
func New(evaluator Evaluator, config Config) (*Runner, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator must not be nil")
	}

	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if config.Confidence == 0 {
		config.Confidence = metrics.Confidence95
	}

	return &Runner{evaluator: evaluator, config: config}, nil
}

// Run judges every sample in the dataset with bounded concurrency and
// computes the agreement report. Per-sample pairing is preserved
// regardless of completion order. The only error condition is context
// cancellation; individual judgment failures resolve to fail-safe verdicts
// inside the evaluator and still produce rows.
func (r *Runner) Run(ctx context.Context, dataset Dataset) (Outcome, error) {
	judgments := make([]domain.Judgment, len(dataset.Samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, sample := range dataset.Samples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			judgments[i] = r.evaluator.Evaluate(ctx, sample.Question, sample.Response)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, fmt.Errorf("batch run aborted: %w", err)
	}

	results := make([]domain.LabeledResult, len(dataset.Samples))
	for i, sample := range dataset.Samples {
		results[i] = domain.LabeledResult{
			Label:      sample.Label,
			Prediction: judgments[i].Verdict,
		}
	}

	return Outcome{
		Results:   results,
		Judgments: judgments,
		Report:    metrics.Compute(results, metrics.WithConfidenceLevel(r.config.Confidence)),
	}, nil
}
