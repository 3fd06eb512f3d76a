package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/story-context/internal/embedding"
	"github.com/jonathan/story-context/internal/types"
)

// Combined-score weights. The 0.7/0.3 semantic/lexical split is a design
// invariant of the retrieval contract, not a runtime tunable.
const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
)

const (
	// topK is the maximum number of similar stories returned per query.
	topK = 5
	// lowConfidenceThreshold triggers the informational warning when even
	// the best candidate scores below it.
	lowConfidenceThreshold = 0.3
)

// Calculator scores and ranks story similarity. It is stateless apart from
// the injected embedding provider and may be shared across concurrent queries
// as long as the provider tolerates concurrent calls.
type Calculator struct {
	embedder embedding.Embedder
	warnf    func(format string, args ...any)
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithWarnFunc installs a sink for informational warnings, such as the
// low-confidence signal. Warnings never alter returned results.
func WithWarnFunc(warnf func(format string, args ...any)) Option {
	return func(c *Calculator) {
		c.warnf = warnf
	}
}

// NewCalculator creates a Calculator backed by the given embedding provider.
func NewCalculator(embedder embedding.Embedder, opts ...Option) *Calculator {
	c := &Calculator{
		embedder: embedder,
		warnf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score computes the similarity of one ordered story pair.
func (c *Calculator) Score(ctx context.Context, query, candidate types.Story) (types.SimilarityScore, error) {
	textA := ExtractText(query)
	textB := ExtractText(candidate)

	semantic, err := SemanticScore(ctx, c.embedder, textA, textB)
	if err != nil {
		return types.SimilarityScore{}, err
	}

	return combine(semantic, LexicalScore(textA, textB)), nil
}

// RankSimilar returns the up-to-five epic stories most similar to the query,
// sorted by combined score descending (stable on ties, preserving epic
// order). The query's own ID and excludeID are filtered from the candidate
// set. An empty candidate set returns an empty result, not an error: an empty
// epic is a valid starting state. Fewer than five candidates are all
// returned, never padded.
//
// Every candidate is scored against the query on each call. The linear scan
// is acceptable for the tens-to-low-hundreds of stories an epic holds; larger
// corpora would need a persistent vector index.
func (c *Calculator) RankSimilar(ctx context.Context, query types.Story, epic []types.Story, excludeID string) ([]types.RankedStory, error) {
	var candidates []types.Story
	for _, story := range epic {
		if query.ID != "" && story.ID == query.ID {
			continue
		}
		if excludeID != "" && story.ID == excludeID {
			continue
		}
		candidates = append(candidates, story)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	// One batched provider call covers the query and every candidate.
	queryText := ExtractText(query)
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, queryText)
	candidateTexts := make([]string, len(candidates))
	for i, story := range candidates {
		candidateTexts[i] = ExtractText(story)
		texts = append(texts, candidateTexts[i])
	}

	vectors, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, &embedding.UnavailableError{
			Message: fmt.Sprintf("expected %d vectors, got %d", len(texts), len(vectors)),
		}
	}

	queryVector := vectors[0]
	ranked := make([]types.RankedStory, 0, len(candidates))
	for i, story := range candidates {
		if len(vectors[i+1]) != len(queryVector) {
			return nil, &embedding.UnavailableError{
				Message: fmt.Sprintf("mismatched vector dimensionality: %d vs %d", len(vectors[i+1]), len(queryVector)),
			}
		}

		semantic := cosine(queryVector, vectors[i+1])
		lexical := LexicalScore(queryText, candidateTexts[i])
		ranked = append(ranked, types.RankedStory{
			Story:  story,
			Scores: combine(semantic, lexical),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.Combined > ranked[j].Scores.Combined
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	if ranked[0].Scores.Combined < lowConfidenceThreshold {
		c.warnf("highest similarity is %.2f, below the %.2f confidence threshold; references may not be representative",
			ranked[0].Scores.Combined, lowConfidenceThreshold)
	}

	return ranked, nil
}

// combine assembles the score triple for one pair.
func combine(semantic, lexical float64) types.SimilarityScore {
	return types.SimilarityScore{
		Semantic: semantic,
		Lexical:  lexical,
		Combined: semanticWeight*semantic + lexicalWeight*lexical,
	}
}
