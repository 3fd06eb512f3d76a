package similarity

import (
	"strings"
	"testing"

	"github.com/jonathan/story-context/internal/textmatch"
	"github.com/stretchr/testify/assert"
)

func TestLexicalScore_IdenticalText(t *testing.T) {
	text := "customer adds products to the shopping cart"
	assert.InDelta(t, 1.0, LexicalScore(text, text), 1e-9)
}

func TestLexicalScore_Symmetric(t *testing.T) {
	a := "apply discount code during checkout"
	b := "enter promotional code to receive discounts"
	assert.InDelta(t, LexicalScore(a, b), LexicalScore(b, a), 1e-9)
}

func TestLexicalScore_EmptyText(t *testing.T) {
	assert.Equal(t, 0.0, LexicalScore("", "customer checkout"))
	assert.Equal(t, 0.0, LexicalScore("customer checkout", ""))
	assert.Equal(t, 0.0, LexicalScore("", ""))
}

func TestLexicalScore_StopWordsOnly(t *testing.T) {
	// Every token filters out, so the score is defined as 0.0 rather than
	// dividing by an empty union.
	assert.Equal(t, 0.0, LexicalScore("the a an of", "checkout flow"))
	assert.Equal(t, 0.0, LexicalScore("the a an of", "the and or but"))
}

func TestLexicalScore_BlendWeights(t *testing.T) {
	a := "customer adds products to cart"
	b := "customer removes products from cart"

	// words(a) = {customer, adds, products, cart}
	// words(b) = {customer, removes, products, from... } minus stop words
	wantJaccard := 3.0 / 6.0 // {customer, products, cart} over 6 unique words
	wantSequence := textmatch.Ratio(strings.ToLower(a), strings.ToLower(b))

	assert.InDelta(t, 0.6*wantJaccard+0.4*wantSequence, LexicalScore(a, b), 1e-9)
}

func TestLexicalScore_SharedVocabularyScoresHigher(t *testing.T) {
	query := "shopping cart checkout"
	related := "customer views the shopping cart before checkout"
	unrelated := "password reset email delivery"

	assert.Greater(t, LexicalScore(query, related), LexicalScore(query, unrelated))
}

func TestLexicalScore_RangeIsZeroToOne(t *testing.T) {
	pairs := [][2]string{
		{"alpha beta", "gamma delta"},
		{"checkout", "checkout"},
		{"As a customer, I want to pay", "As a customer, I want to browse"},
	}
	for _, pair := range pairs {
		score := LexicalScore(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
