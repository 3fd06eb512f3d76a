package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare json untouched",
			input: `{"title": "Add to cart"}`,
			want:  `{"title": "Add to cart"}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"title\": \"Add to cart\"}\n```",
			want:  `{"title": "Add to cart"}`,
		},
		{
			name:  "generic fence stripped",
			input: "```\n{\"title\": \"Add to cart\"}\n```",
			want:  `{"title": "Add to cart"}`,
		},
		{
			name:  "fence with language identifier",
			input: "```javascript\n{\"title\": \"Add to cart\"}\n```",
			want:  `{"title": "Add to cart"}`,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n```json\n{\"a\": 1}\n```\n  ",
			want:  `{"a": 1}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestConfig_GetModelFallbackChain(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "gemini-2.5-flash-lite"},
	}

	// Unconfigured tier falls back to lite when standard is also missing.
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierAdvanced))
}

func TestConfig_WithModelDoesNotMutateOriginal(t *testing.T) {
	original := DefaultGeminiConfig()
	modified := original.WithModel(TierStandard, "gemini-override")

	assert.Equal(t, "gemini-override", modified.GetModel(TierStandard))
	assert.NotEqual(t, "gemini-override", original.GetModel(TierStandard))
	assert.Equal(t, original.Temperature, modified.Temperature)
}
