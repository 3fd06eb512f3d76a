package experiment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/story-context/internal/types"
)

// fakeGenerator emits checklist criteria when conditioned on references and
// free-text criteria otherwise, so the two arms are distinguishable.
type fakeGenerator struct {
	calls int64
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, requirement string, references []types.RankedStory) (types.GenerationResult, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return types.GenerationResult{}, f.err
	}

	story := types.Story{Title: requirement, Description: "As a shopper, I want " + requirement}
	if len(references) > 0 {
		story.AcceptanceCriteria = types.Criteria{Items: []string{"- step one", "- step two"}}
	} else {
		story.AcceptanceCriteria = types.Criteria{Text: "It should just work."}
	}
	return types.GenerationResult{Story: story}, nil
}

type fakeRanker struct {
	err error
}

func (f *fakeRanker) RankSimilar(_ context.Context, _ types.Story, epic []types.Story, _ string) ([]types.RankedStory, error) {
	if f.err != nil {
		return nil, f.err
	}
	ranked := make([]types.RankedStory, 0, len(epic))
	for _, story := range epic {
		ranked = append(ranked, types.RankedStory{Story: story, Scores: types.SimilarityScore{Combined: 0.8}})
	}
	return ranked, nil
}

func checklistEpic() []types.Story {
	return []types.Story{
		{ID: "s-1", Title: "Add to cart", AcceptanceCriteria: types.Criteria{Items: []string{"- item appears", "- total updates"}}},
		{ID: "s-2", Title: "Remove from cart", AcceptanceCriteria: types.Criteria{Items: []string{"- item disappears"}}},
	}
}

func TestRun_ContextArmScoresHigherFormatConsistency(t *testing.T) {
	runner := NewRunner(&fakeGenerator{}, &fakeRanker{})

	result, err := runner.Run(t.Context(), []string{"guest checkout", "order history"}, checklistEpic())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Prompts)
	assert.Equal(t, 1.0, result.WithContext.FormatConsistency, "checklist output matches checklist epic")
	assert.Equal(t, 0.0, result.WithoutContext.FormatConsistency, "free-text output never matches")
	assert.Greater(t, result.WithContext.EditDistanceSimilarity, 0.0)
}

func TestRun_GeneratesBothArmsPerPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	runner := NewRunner(gen, &fakeRanker{})

	prompts := []string{"a", "b", "c"}
	_, err := runner.Run(t.Context(), prompts, checklistEpic())
	require.NoError(t, err)

	assert.Equal(t, int64(2*len(prompts)), atomic.LoadInt64(&gen.calls))
}

func TestRun_BoundedParallelism(t *testing.T) {
	gen := &fakeGenerator{}
	runner := NewRunner(gen, &fakeRanker{}, WithParallelism(1))

	_, err := runner.Run(t.Context(), []string{"a", "b", "c", "d"}, checklistEpic())
	require.NoError(t, err)
}

func TestRun_NoPrompts(t *testing.T) {
	runner := NewRunner(&fakeGenerator{}, &fakeRanker{})

	_, err := runner.Run(t.Context(), nil, checklistEpic())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompts")
}

func TestRun_EmptyEpic(t *testing.T) {
	runner := NewRunner(&fakeGenerator{}, &fakeRanker{})

	_, err := runner.Run(t.Context(), []string{"a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stories")
}

func TestRun_GeneratorErrorAborts(t *testing.T) {
	genErr := errors.New("provider unavailable")
	runner := NewRunner(&fakeGenerator{err: genErr}, &fakeRanker{})

	_, err := runner.Run(t.Context(), []string{"a", "b"}, checklistEpic())
	require.Error(t, err)
	assert.ErrorIs(t, err, genErr)
}

func TestRun_RankerErrorAborts(t *testing.T) {
	rankErr := errors.New("embeddings unavailable")
	runner := NewRunner(&fakeGenerator{}, &fakeRanker{err: rankErr})

	_, err := runner.Run(t.Context(), []string{"a"}, checklistEpic())
	require.Error(t, err)
	assert.ErrorIs(t, err, rankErr)
}
