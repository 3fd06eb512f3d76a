package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/story-context/internal/embedding"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "story not found",
			err:  &ErrStoryNotFound{StoryID: uuid.New()},
			want: http.StatusNotFound,
		},
		{
			name: "validation error",
			err:  &ErrValidation{Field: "title", Message: "title is required"},
			want: http.StatusBadRequest,
		},
		{
			name: "embeddings unavailable",
			err:  &embedding.UnavailableError{Message: "provider down"},
			want: http.StatusServiceUnavailable,
		},
		{
			name: "wrapped embeddings unavailable",
			err:  fmt.Errorf("ranking: %w", &embedding.UnavailableError{Message: "provider down"}),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "unknown error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	id := uuid.New()
	assert.Contains(t, (&ErrStoryNotFound{StoryID: id}).Error(), id.String())
	assert.Contains(t, (&ErrValidation{Field: "priority", Message: "unknown"}).Error(), "priority")
}
