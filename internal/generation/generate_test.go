package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/story-context/internal/llm"
	"github.com/jonathan/story-context/internal/types"
)

// stubClient returns a canned response or error for every generation call.
type stubClient struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub-model" }
func (s *stubClient) Close() error                  { return nil }

func rankedRef(title string, combined float64) types.RankedStory {
	return types.RankedStory{
		Story: types.Story{
			ID:          "ref-" + strings.ToLower(title),
			Title:       title,
			Description: "As a shopper, I want " + strings.ToLower(title),
			AcceptanceCriteria: types.Criteria{
				Items: []string{"Given a cart", "When checking out", "Then it succeeds"},
			},
			Priority: types.PriorityHigh,
		},
		Scores: types.SimilarityScore{Combined: combined},
	}
}

func TestGenerate_ParsesWellFormedResponse(t *testing.T) {
	client := &stubClient{
		response: `{
			"title": "Guest checkout",
			"description": "As a guest, I want to check out without an account",
			"acceptanceCriteria": ["Given a full cart", "When I pay", "Then the order is placed"],
			"priority": "high",
			"storyPoints": 5
		}`,
	}
	gen := NewGenerator(client)

	result, err := gen.Generate(t.Context(), "guest checkout", nil)
	require.NoError(t, err)

	assert.Equal(t, "Guest checkout", result.Story.Title)
	assert.Equal(t, types.PriorityHigh, result.Story.Priority)
	assert.Equal(t, 5.0, result.Story.StoryPoints)
	assert.Len(t, result.Story.AcceptanceCriteria.Items, 3)
	assert.False(t, result.Metadata.ContextUsed)
	assert.Zero(t, result.Metadata.ContextStoryCount)
	assert.Empty(t, result.Metadata.Error)
	assert.Equal(t, "stub-model", result.Metadata.Model)
}

func TestGenerate_StripsCodeFences(t *testing.T) {
	client := &stubClient{
		response: "```json\n{\"title\": \"Fenced\", \"description\": \"d\", \"acceptanceCriteria\": [], \"priority\": \"low\", \"storyPoints\": 1}\n```",
	}
	gen := NewGenerator(client)

	result, err := gen.Generate(t.Context(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fenced", result.Story.Title)
	assert.Empty(t, result.Metadata.Error)
}

func TestGenerate_NormalizesPriorityCase(t *testing.T) {
	client := &stubClient{
		response: `{"title": "t", "description": "d", "acceptanceCriteria": [], "priority": "HIGH", "storyPoints": 2}`,
	}
	gen := NewGenerator(client)

	result, err := gen.Generate(t.Context(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, types.PriorityHigh, result.Story.Priority)
}

func TestGenerate_ParseFailureYieldsFallback(t *testing.T) {
	client := &stubClient{response: "Sorry, I cannot produce JSON today."}
	gen := NewGenerator(client)

	result, err := gen.Generate(t.Context(), "guest checkout", nil)
	require.NoError(t, err, "parse failures must not surface as errors")

	assert.Equal(t, "guest checkout", result.Story.Title)
	assert.Equal(t, "Failed to parse AI response", result.Story.Description)
	assert.Equal(t, types.PriorityMedium, result.Story.Priority)
	assert.Equal(t, 3.0, result.Story.StoryPoints)
	assert.NotEmpty(t, result.Metadata.Error)
	assert.Equal(t, "Sorry, I cannot produce JSON today.", result.Metadata.RawResponse)
}

func TestGenerate_TruncatesLongRawResponseOnFailure(t *testing.T) {
	client := &stubClient{response: "not json " + strings.Repeat("x", 2*maxRawResponse)}
	gen := NewGenerator(client)

	result, err := gen.Generate(t.Context(), "anything", nil)
	require.NoError(t, err)
	assert.Len(t, result.Metadata.RawResponse, maxRawResponse)
}

func TestGenerate_ProviderErrorPropagates(t *testing.T) {
	providerErr := errors.New("quota exhausted")
	client := &stubClient{err: providerErr}
	gen := NewGenerator(client)

	_, err := gen.Generate(t.Context(), "anything", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)
}

func TestGenerate_ReferencesConditionPromptAndMetadata(t *testing.T) {
	client := &stubClient{
		response: `{"title": "t", "description": "d", "acceptanceCriteria": [], "priority": "low", "storyPoints": 1}`,
	}
	gen := NewGenerator(client)
	refs := []types.RankedStory{rankedRef("Cart totals", 0.82), rankedRef("Apply coupon", 0.64)}

	result, err := gen.Generate(t.Context(), "guest checkout", refs)
	require.NoError(t, err)

	assert.True(t, result.Metadata.ContextUsed)
	assert.Equal(t, 2, result.Metadata.ContextStoryCount)
	assert.Contains(t, client.lastPrompt, "CONTEXTUAL REFERENCE STORIES")
	assert.Contains(t, client.lastPrompt, "Cart totals")
	assert.Contains(t, client.lastPrompt, "guest checkout")
}

func TestBuildContextBlock_Empty(t *testing.T) {
	assert.Empty(t, BuildContextBlock(nil))
}

func TestBuildContextBlock_RendersReferences(t *testing.T) {
	block := BuildContextBlock([]types.RankedStory{rankedRef("Cart totals", 0.825)})

	assert.Contains(t, block, "Top 1 Similar Stories")
	assert.Contains(t, block, "## Reference Story 1 (Similarity: 82.5%)")
	assert.Contains(t, block, "**Title:** Cart totals")
	assert.Contains(t, block, "  - Given a cart")
	assert.Contains(t, block, "**Priority:** high")
	assert.Contains(t, block, "Instructions for Consistency")
}

func TestBuildContextBlock_FreeTextCriteria(t *testing.T) {
	ref := rankedRef("Cart totals", 0.5)
	ref.Story.AcceptanceCriteria = types.Criteria{Text: "Totals update immediately."}

	block := BuildContextBlock([]types.RankedStory{ref})
	assert.Contains(t, block, "**Acceptance Criteria:** Totals update immediately.")
}

func TestBuildContextBlock_TruncatesToFive(t *testing.T) {
	refs := make([]types.RankedStory, 8)
	for i := range refs {
		refs[i] = rankedRef("Story", 0.9)
	}

	block := BuildContextBlock(refs)
	assert.Contains(t, block, "Reference Story 5")
	assert.NotContains(t, block, "Reference Story 6")
}

func TestBuildPrompt_OmitsContextWithoutReferences(t *testing.T) {
	prompt := BuildPrompt("guest checkout", nil)
	assert.Contains(t, prompt, "guest checkout")
	assert.Contains(t, prompt, "Format your response as JSON")
	assert.NotContains(t, prompt, "CONTEXTUAL REFERENCE STORIES")
}
