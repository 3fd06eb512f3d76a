// Package generation turns ranked reference stories into a bounded prompt
// context block and drives story generation through the LLM provider.
package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/story-context/internal/prompts"
	"github.com/jonathan/story-context/internal/types"
)

// maxContextStories bounds the reference block handed to the generation
// provider, matching the retrieval top-K.
const maxContextStories = 5

// BuildContextBlock renders ranked reference stories as the contextual
// section of a generation prompt: title, description, acceptance criteria,
// and priority per reference, followed by consistency instructions. An empty
// reference list yields an empty string.
func BuildContextBlock(references []types.RankedStory) string {
	if len(references) == 0 {
		return ""
	}
	if len(references) > maxContextStories {
		references = references[:maxContextStories]
	}

	var sb strings.Builder
	sb.WriteString(prompts.Format(prompts.MustGet("generation.json", "context_intro"), map[string]string{
		"Count": strconv.Itoa(len(references)),
	}))

	for i, ref := range references {
		fmt.Fprintf(&sb, "\n## Reference Story %d (Similarity: %.1f%%)\n", i+1, ref.Scores.Combined*100)
		fmt.Fprintf(&sb, "**Title:** %s\n", orNA(ref.Story.Title))
		fmt.Fprintf(&sb, "**Description:** %s\n", orNA(ref.Story.Description))

		switch {
		case ref.Story.AcceptanceCriteria.IsList():
			sb.WriteString("**Acceptance Criteria:**\n")
			for _, criterion := range ref.Story.AcceptanceCriteria.Items {
				fmt.Fprintf(&sb, "  - %s\n", criterion)
			}
		case ref.Story.AcceptanceCriteria.Text != "":
			fmt.Fprintf(&sb, "**Acceptance Criteria:** %s\n", ref.Story.AcceptanceCriteria.Text)
		}

		if ref.Story.Priority != "" {
			fmt.Fprintf(&sb, "**Priority:** %s\n", ref.Story.Priority)
		}
	}

	sb.WriteString(prompts.MustGet("generation.json", "context_instructions"))
	return sb.String()
}

// BuildPrompt assembles the full generation prompt: base requirement,
// optional reference context, and the JSON output instructions.
func BuildPrompt(requirement string, references []types.RankedStory) string {
	var sb strings.Builder
	sb.WriteString(prompts.Format(prompts.MustGet("generation.json", "story_base"), map[string]string{
		"Prompt": requirement,
	}))
	if len(references) > 0 {
		sb.WriteString(BuildContextBlock(references))
	}
	sb.WriteString(prompts.MustGet("generation.json", "json_instructions"))
	return sb.String()
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
