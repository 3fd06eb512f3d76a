// Package types provides type definitions for structured data used throughout the story-context system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// Priority represents a story priority level
type Priority string

// Priority levels, highest to lowest
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether the priority is one of the known levels or unset.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Story represents a single user story within an epic.
// Stories are read-only once handed to the similarity pipeline; nothing
// downstream mutates them.
type Story struct {
	// ID is an opaque identifier. Empty for transient query stories that
	// are not epic members.
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	// AcceptanceCriteria holds either an ordered list of statements or a
	// single free-text block; both forms appear in real epics.
	AcceptanceCriteria Criteria `json:"acceptanceCriteria,omitempty"`
	Priority           Priority `json:"priority,omitempty"`
	StoryPoints        float64  `json:"storyPoints,omitempty"`
}

// Criteria is the acceptance-criteria field of a story. It accepts both a
// JSON array of statements and a plain JSON string, since epics imported from
// different tools use either representation.
type Criteria struct {
	// Items is the structured list form. Order is significant.
	Items []string
	// Text is the free-text block form. Set only when Items is empty.
	Text string
}

// IsList reports whether the criteria are in structured list form.
func (c Criteria) IsList() bool {
	return len(c.Items) > 0
}

// IsEmpty reports whether no acceptance criteria were provided.
func (c Criteria) IsEmpty() bool {
	return len(c.Items) == 0 && c.Text == ""
}

// UnmarshalJSON accepts either a JSON array of strings or a single JSON string.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		c.Items = items
		c.Text = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Items = nil
		c.Text = text
		return nil
	}

	return fmt.Errorf("acceptanceCriteria must be a string or an array of strings")
}

// MarshalJSON writes the list form when present, otherwise the text form.
func (c Criteria) MarshalJSON() ([]byte, error) {
	if len(c.Items) > 0 {
		return json.Marshal(c.Items)
	}
	if c.Text != "" {
		return json.Marshal(c.Text)
	}
	return json.Marshal([]string{})
}
