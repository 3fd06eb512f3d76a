package metrics

import (
	"strings"

	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/textmatch"
	"github.com/jonathan/story-context/internal/types"
)

// EditDistanceSimilarity is the arithmetic mean of the character-level
// sequence ratio between the generated story's full text and each epic
// story's full text, lowercased. An empty generated text or an epic with no
// non-empty texts scores 0.0.
func EditDistanceSimilarity(generated types.Story, epic []types.Story) float64 {
	generatedText := strings.ToLower(similarity.ExtractText(generated))
	if generatedText == "" {
		return 0.0
	}

	total := 0.0
	compared := 0
	for _, story := range epic {
		storyText := strings.ToLower(similarity.ExtractText(story))
		if storyText == "" {
			continue
		}
		total += textmatch.Ratio(generatedText, storyText)
		compared++
	}

	if compared == 0 {
		return 0.0
	}
	return total / float64(compared)
}

// CalculateAll computes the full consistency report for a generated story
// against a reference epic. The three measures are independent and
// insensitive to epic iteration order.
func CalculateAll(generated types.Story, epic []types.Story) types.MetricsReport {
	return types.MetricsReport{
		FormatConsistency:      FormatConsistency(generated, epic),
		TerminologyOverlap:     TerminologyOverlap(generated, epic),
		EditDistanceSimilarity: EditDistanceSimilarity(generated, epic),
	}
}
