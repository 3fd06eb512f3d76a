// Package types provides type definitions for structured data used throughout the story-context system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SimilarityScore holds the three scores produced for an ordered
// (query, candidate) story pair. All values are in [0, 1].
type SimilarityScore struct {
	// Semantic is the embedding cosine similarity, clamped at zero.
	Semantic float64 `json:"semantic_score"`
	// Lexical is the token-overlap plus sequence-alignment blend.
	Lexical float64 `json:"lexical_score"`
	// Combined is the ranking score: 0.7*Semantic + 0.3*Lexical.
	// The weighting is a design invariant, not a runtime tunable.
	Combined float64 `json:"combined_score"`
}

// RankedStory pairs a candidate story with its similarity scores against the query.
type RankedStory struct {
	Story  Story           `json:"story"`
	Scores SimilarityScore `json:"scores"`
}

// RankedSimilarStories is the ordered retrieval result for one query,
// sorted by combined score descending.
type RankedSimilarStories struct {
	Ranked []RankedStory `json:"ranked"`
}
