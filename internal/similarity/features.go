// Package similarity finds the stories most similar to a query story within
// an epic by combining semantic (embedding) and lexical similarity.
package similarity

import (
	"strings"

	"github.com/jonathan/story-context/internal/types"
)

// ExtractText concatenates a story's title, description, and acceptance
// criteria (in that order) into a single comparable text blob. Missing fields
// contribute nothing, so the result may be empty for an entirely empty story.
// No case or punctuation normalization happens here; each scorer normalizes
// to its own needs.
func ExtractText(story types.Story) string {
	var parts []string

	if story.Title != "" {
		parts = append(parts, story.Title)
	}
	if story.Description != "" {
		parts = append(parts, story.Description)
	}
	if story.AcceptanceCriteria.IsList() {
		parts = append(parts, story.AcceptanceCriteria.Items...)
	} else if story.AcceptanceCriteria.Text != "" {
		parts = append(parts, story.AcceptanceCriteria.Text)
	}

	return strings.Join(parts, " ")
}
