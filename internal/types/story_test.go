package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteria_UnmarshalListForm(t *testing.T) {
	var story Story
	err := json.Unmarshal([]byte(`{
		"id": "story_1",
		"title": "Add to cart",
		"acceptanceCriteria": ["Given a product", "When I click add", "Then it is in the cart"]
	}`), &story)
	require.NoError(t, err)

	assert.True(t, story.AcceptanceCriteria.IsList())
	assert.Len(t, story.AcceptanceCriteria.Items, 3)
	assert.Equal(t, "Given a product", story.AcceptanceCriteria.Items[0])
}

func TestCriteria_UnmarshalStringForm(t *testing.T) {
	var story Story
	err := json.Unmarshal([]byte(`{
		"title": "Guest checkout",
		"acceptanceCriteria": "Guests can check out without an account."
	}`), &story)
	require.NoError(t, err)

	assert.False(t, story.AcceptanceCriteria.IsList())
	assert.Equal(t, "Guests can check out without an account.", story.AcceptanceCriteria.Text)
}

func TestCriteria_UnmarshalRejectsObjects(t *testing.T) {
	var criteria Criteria
	err := json.Unmarshal([]byte(`{"nested": true}`), &criteria)
	assert.Error(t, err)
}

func TestCriteria_MarshalRoundTrip(t *testing.T) {
	original := Story{
		ID:                 "story_1",
		Title:              "Add to cart",
		AcceptanceCriteria: Criteria{Items: []string{"- a", "- b"}},
		Priority:           PriorityHigh,
		StoryPoints:        3,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Story
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestCriteria_MarshalStringForm(t *testing.T) {
	data, err := json.Marshal(Criteria{Text: "free text"})
	require.NoError(t, err)
	assert.JSONEq(t, `"free text"`, string(data))
}

func TestCriteria_IsEmpty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{Items: []string{"x"}}.IsEmpty())
	assert.False(t, Criteria{Text: "x"}.IsEmpty())
}

func TestPriority_Valid(t *testing.T) {
	assert.True(t, Priority("").Valid())
	assert.True(t, PriorityCritical.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("urgent").Valid())
}
