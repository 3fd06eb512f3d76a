package similarity

import (
	"strings"
	"unicode"

	"github.com/jonathan/story-context/internal/textmatch"
)

// Lexical blend weights. Jaccard rewards shared vocabulary regardless of
// order; the sequence ratio rewards shared phrasing such as the
// "As a customer, I want ..." boilerplate. Either alone misweights
// boilerplate-heavy stories.
const (
	jaccardWeight  = 0.6
	sequenceWeight = 0.4
)

// lexicalStopWords are excluded from Jaccard token sets. Articles,
// conjunctions, prepositions, and common auxiliary verbs only; the metrics
// engine keeps its own, separately tunable list.
var lexicalStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "should": true, "could": true,
	"may": true, "might": true, "can": true,
}

// LexicalScore computes the lexical similarity of two text blobs in [0, 1]:
// a 0.6/0.4 blend of Jaccard similarity over stop-word-filtered word sets and
// the character sequence ratio over the lowercased original texts. If either
// filtered word set is empty the score is 0.0, never NaN.
func LexicalScore(textA, textB string) float64 {
	wordsA := contentWords(textA)
	wordsB := contentWords(textB)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for word := range wordsA {
		if wordsB[word] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	jaccard := float64(intersection) / float64(union)

	sequence := textmatch.Ratio(strings.ToLower(textA), strings.ToLower(textB))

	return jaccardWeight*jaccard + sequenceWeight*sequence
}

// contentWords tokenizes text into lowercase alphabetic words (anything
// non-alphabetic separates) and drops stop words.
func contentWords(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	set := make(map[string]bool, len(words))
	for _, w := range words {
		if lexicalStopWords[w] {
			continue
		}
		set[w] = true
	}
	return set
}
