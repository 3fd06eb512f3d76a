package metrics

import (
	"strings"
	"unicode"

	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/types"
)

// terminologyStopWords are excluded from significant-term extraction. This
// list is deliberately separate from the lexical scorer's: it also drops
// domain filler words like "user" and "system" that appear in nearly every
// story without carrying epic-specific terminology.
var terminologyStopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true,
	"have": true, "will": true, "should": true, "would": true,
	"could": true, "when": true, "then": true, "given": true,
	"user": true, "customer": true, "system": true,
}

// minTermLength is the minimum word length for the repetition-based
// qualification path. Capitalized words qualify regardless of length.
const minTermLength = 4

// TerminologyOverlap measures shared domain vocabulary: the Jaccard
// similarity between the generated story's significant terms and the terms
// pooled across every epic story. An empty generated term set scores 0.0, as
// does an epic yielding no terms.
func TerminologyOverlap(generated types.Story, epic []types.Story) float64 {
	generatedTerms := significantTerms(similarity.ExtractText(generated))
	if len(generatedTerms) == 0 {
		return 0.0
	}

	epicTerms := make(map[string]bool)
	for _, story := range epic {
		for term := range significantTerms(similarity.ExtractText(story)) {
			epicTerms[term] = true
		}
	}
	if len(epicTerms) == 0 {
		return 0.0
	}

	intersection := 0
	for term := range generatedTerms {
		if epicTerms[term] {
			intersection++
		}
	}
	union := len(generatedTerms) + len(epicTerms) - intersection

	return float64(intersection) / float64(union)
}

// significantTerms extracts the lowercased term set of a text: words that are
// capitalized in the original text, or words of at least minTermLength
// letters appearing two or more times, minus stop words.
func significantTerms(text string) map[string]bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	counts := make(map[string]int, len(words))
	capitalized := make(map[string]bool)
	for _, word := range words {
		lower := strings.ToLower(word)
		counts[lower]++
		if isCapitalized(word) {
			capitalized[lower] = true
		}
	}

	terms := make(map[string]bool)
	for word, count := range counts {
		if terminologyStopWords[word] {
			continue
		}
		if capitalized[word] || (count >= 2 && len([]rune(word)) >= minTermLength) {
			terms[word] = true
		}
	}
	return terms
}

// isCapitalized reports whether a word is an uppercase initial followed by
// lowercase letters (at least two letters total).
func isCapitalized(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
