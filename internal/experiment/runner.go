// Package experiment measures whether conditioning generation on similar
// stories improves consistency with the epic. Each prompt is generated twice,
// once per arm, and the consistency metrics of both arms are averaged.
package experiment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/story-context/internal/metrics"
	"github.com/jonathan/story-context/internal/types"
)

// defaultParallelism bounds concurrent generation calls per arm pair.
const defaultParallelism = 4

// storyGenerator produces a story for a requirement, optionally conditioned
// on reference stories.
type storyGenerator interface {
	Generate(ctx context.Context, requirement string, references []types.RankedStory) (types.GenerationResult, error)
}

// similarityRanker retrieves the stories of an epic most similar to a query.
type similarityRanker interface {
	RankSimilar(ctx context.Context, query types.Story, epic []types.Story, excludeID string) ([]types.RankedStory, error)
}

// Result holds per-arm mean metrics over all prompts.
type Result struct {
	Prompts        int                 `json:"prompts"`
	WithContext    types.MetricsReport `json:"with_context"`
	WithoutContext types.MetricsReport `json:"without_context"`
}

// Runner drives the two-arm comparison.
type Runner struct {
	generator   storyGenerator
	ranker      similarityRanker
	parallelism int
}

// Option configures a Runner.
type Option func(*Runner)

// WithParallelism overrides how many prompts run concurrently.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// NewRunner creates a Runner over the given generator and ranker.
func NewRunner(generator storyGenerator, ranker similarityRanker, opts ...Option) *Runner {
	r := &Runner{
		generator:   generator,
		ranker:      ranker,
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// armOutcome holds the metric reports for one prompt.
type armOutcome struct {
	withContext    types.MetricsReport
	withoutContext types.MetricsReport
}

// Run generates each prompt with and without epic context and returns the
// mean consistency metrics per arm. The first error from any prompt aborts
// the run.
func (r *Runner) Run(ctx context.Context, prompts []string, epic []types.Story) (*Result, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts provided")
	}
	if len(epic) == 0 {
		return nil, fmt.Errorf("epic has no stories")
	}

	outcomes := make([]armOutcome, len(prompts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, prompt := range prompts {
		g.Go(func() error {
			outcome, err := r.runPrompt(gctx, prompt, epic)
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Prompts: len(prompts)}
	for _, outcome := range outcomes {
		accumulate(&result.WithContext, outcome.withContext)
		accumulate(&result.WithoutContext, outcome.withoutContext)
	}
	scale(&result.WithContext, float64(len(prompts)))
	scale(&result.WithoutContext, float64(len(prompts)))
	return result, nil
}

func (r *Runner) runPrompt(ctx context.Context, prompt string, epic []types.Story) (armOutcome, error) {
	query := types.Story{Title: prompt, Description: prompt}
	references, err := r.ranker.RankSimilar(ctx, query, epic, "")
	if err != nil {
		return armOutcome{}, fmt.Errorf("ranking references: %w", err)
	}

	withCtx, err := r.generator.Generate(ctx, prompt, references)
	if err != nil {
		return armOutcome{}, fmt.Errorf("generating with context: %w", err)
	}

	withoutCtx, err := r.generator.Generate(ctx, prompt, nil)
	if err != nil {
		return armOutcome{}, fmt.Errorf("generating without context: %w", err)
	}

	return armOutcome{
		withContext:    metrics.CalculateAll(withCtx.Story, epic),
		withoutContext: metrics.CalculateAll(withoutCtx.Story, epic),
	}, nil
}

func accumulate(sum *types.MetricsReport, report types.MetricsReport) {
	sum.FormatConsistency += report.FormatConsistency
	sum.TerminologyOverlap += report.TerminologyOverlap
	sum.EditDistanceSimilarity += report.EditDistanceSimilarity
}

func scale(report *types.MetricsReport, n float64) {
	report.FormatConsistency /= n
	report.TerminologyOverlap /= n
	report.EditDistanceSimilarity /= n
}
