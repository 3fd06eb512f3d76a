// Package types provides type definitions for structured data used throughout the story-context system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// GenerationMetadata describes how a story was generated.
type GenerationMetadata struct {
	ContextUsed       bool   `json:"context_used"`
	ContextStoryCount int    `json:"context_story_count"`
	Model             string `json:"model,omitempty"`
	// Error is set when the provider output could not be parsed as a story.
	// A parse failure produces a fallback story plus this marker; it is
	// never surfaced as a Go error to callers.
	Error string `json:"error,omitempty"`
	// RawResponse carries a truncated copy of the unparseable output for
	// debugging. Empty on success.
	RawResponse string `json:"raw_response,omitempty"`
}

// GenerationResult is the outcome of one story-generation call.
type GenerationResult struct {
	Story    Story              `json:"story"`
	Metadata GenerationMetadata `json:"metadata"`
}
