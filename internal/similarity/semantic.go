package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/jonathan/story-context/internal/embedding"
)

// SemanticScore computes the embedding cosine similarity of two text blobs in
// [0, 1]. Both texts are vectorized in one batched provider call. Negative
// cosine values carry no discriminative meaning for story retrieval and are
// clamped to 0.0 rather than renormalized. Provider failures propagate as
// *embedding.UnavailableError.
func SemanticScore(ctx context.Context, embedder embedding.Embedder, textA, textB string) (float64, error) {
	vectors, err := embedder.EmbedTexts(ctx, []string{textA, textB})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 2 {
		return 0, &embedding.UnavailableError{
			Message: fmt.Sprintf("expected 2 vectors, got %d", len(vectors)),
		}
	}
	if len(vectors[0]) != len(vectors[1]) {
		return 0, &embedding.UnavailableError{
			Message: fmt.Sprintf("mismatched vector dimensionality: %d vs %d", len(vectors[0]), len(vectors[1])),
		}
	}

	return cosine(vectors[0], vectors[1]), nil
}

// cosine returns the cosine similarity of two equal-length vectors, clamped
// to a minimum of 0.0. A zero-magnitude vector scores 0.0.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0.0, score)
}
