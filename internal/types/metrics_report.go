// Package types provides type definitions for structured data used throughout the story-context system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MetricsReport holds the consistency scores for one generated story measured
// against a whole reference epic. All values are in [0, 1].
type MetricsReport struct {
	// FormatConsistency is the fraction of epic stories whose
	// acceptance-criteria format matches the generated story's format.
	FormatConsistency float64 `json:"format_consistency"`
	// TerminologyOverlap is the Jaccard similarity between the generated
	// story's significant terms and the pooled epic terms.
	TerminologyOverlap float64 `json:"terminology_overlap"`
	// EditDistanceSimilarity is the mean character-level similarity ratio
	// against each epic story.
	EditDistanceSimilarity float64 `json:"edit_distance_similarity"`
}
