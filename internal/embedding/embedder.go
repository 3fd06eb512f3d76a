// Package embedding provides the text-embedding provider boundary used by
// semantic similarity scoring.
package embedding

import (
	"context"
	"fmt"
)

// Embedder vectorizes text via an external provider. Implementations must
// tolerate concurrent calls; the similarity kernel performs no locking or
// retries of its own.
type Embedder interface {
	// EmbedTexts returns one fixed-dimensionality vector per input text,
	// in input order. It fails with *UnavailableError on any provider
	// error or malformed response.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// UnavailableError indicates the embedding provider could not produce usable
// vectors. It propagates to rank callers unchanged; the kernel never degrades
// to lexical-only scoring on its own, since that would silently distort the
// advertised semantic/lexical weighting.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
