package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/story-context/internal/llm"
	"github.com/jonathan/story-context/internal/types"
)

// maxRawResponse limits how much unparseable provider output the fallback
// metadata carries.
const maxRawResponse = 500

// Generator produces user stories via the injected LLM client, optionally
// conditioned on reference stories retrieved from the epic.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewGenerator creates a Generator using the standard model tier.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, tier: llm.TierStandard}
}

// Generate produces one story for the requirement. When references are
// provided, the prompt is conditioned on them and the metadata records that.
//
// Provider errors are returned to the caller. Output that cannot be parsed as
// a story is not an error: it yields a fallback story whose metadata carries
// the parse failure and a truncated copy of the raw output.
func (g *Generator) Generate(ctx context.Context, requirement string, references []types.RankedStory) (types.GenerationResult, error) {
	prompt := BuildPrompt(requirement, references)

	raw, err := g.client.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return types.GenerationResult{}, fmt.Errorf("story generation failed: %w", err)
	}

	metadata := types.GenerationMetadata{
		ContextUsed:       len(references) > 0,
		ContextStoryCount: len(references),
		Model:             g.client.GetModel(g.tier),
	}

	cleaned := llm.CleanJSONBlock(raw)
	var story types.Story
	if err := json.Unmarshal([]byte(cleaned), &story); err != nil {
		metadata.Error = err.Error()
		metadata.RawResponse = truncate(raw, maxRawResponse)
		return types.GenerationResult{
			Story:    fallbackStory(requirement),
			Metadata: metadata,
		}, nil
	}

	story.Priority = types.Priority(strings.ToLower(string(story.Priority)))
	return types.GenerationResult{Story: story, Metadata: metadata}, nil
}

// fallbackStory is the typed stand-in returned when provider output cannot
// be parsed. The requirement becomes the title so downstream reports still
// identify which prompt failed.
func fallbackStory(requirement string) types.Story {
	return types.Story{
		Title:       requirement,
		Description: "Failed to parse AI response",
		Priority:    types.PriorityMedium,
		StoryPoints: 3,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
