// Package server provides the HTTP REST API for story retrieval, consistency
// metrics, and generation.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/story-context/internal/embedding"
)

// ErrStoryNotFound indicates a story was not found
type ErrStoryNotFound struct {
	StoryID uuid.UUID
}

func (e *ErrStoryNotFound) Error() string {
	return fmt.Sprintf("story not found: %s", e.StoryID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var unavailable *embedding.UnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable
	}

	switch err.(type) {
	case *ErrStoryNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
