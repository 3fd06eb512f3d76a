package similarity

import (
	"testing"

	"github.com/jonathan/story-context/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestExtractText_AllFields(t *testing.T) {
	story := types.Story{
		Title:       "Add items to cart",
		Description: "As a customer, I want to add products to my cart.",
		AcceptanceCriteria: types.Criteria{
			Items: []string{"Given I browse the catalog", "Then the item is added"},
		},
	}

	text := ExtractText(story)
	assert.Equal(t,
		"Add items to cart As a customer, I want to add products to my cart. Given I browse the catalog Then the item is added",
		text)
}

func TestExtractText_CriteriaAsFreeText(t *testing.T) {
	story := types.Story{
		Title:              "Guest checkout",
		AcceptanceCriteria: types.Criteria{Text: "Guest users can check out without an account."},
	}

	assert.Equal(t, "Guest checkout Guest users can check out without an account.", ExtractText(story))
}

func TestExtractText_MissingFieldsContributeNothing(t *testing.T) {
	story := types.Story{Title: "Only a title"}
	assert.Equal(t, "Only a title", ExtractText(story))
}

func TestExtractText_EmptyStory(t *testing.T) {
	assert.Equal(t, "", ExtractText(types.Story{}))
}

func TestExtractText_DoesNotNormalize(t *testing.T) {
	story := types.Story{Title: "UPPER Case, Punctuation!"}
	assert.Equal(t, "UPPER Case, Punctuation!", ExtractText(story))
}
