package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/story-context/internal/metrics"
	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/types"
)

// SimilarRequest represents the request body for /similar
type SimilarRequest struct {
	Query     types.Story   `json:"query"`
	Epic      []types.Story `json:"epic"`
	ExcludeID string        `json:"exclude_id,omitempty"`
}

// MetricsRequest represents the request body for /metrics
type MetricsRequest struct {
	Generated types.Story   `json:"generated"`
	Epic      []types.Story `json:"epic"`
}

// GenerateRequest represents the request body for /generate
type GenerateRequest struct {
	Prompt     string        `json:"prompt" validate:"required"`
	Epic       []types.Story `json:"epic,omitempty"`
	UseContext bool          `json:"use_context,omitempty"`
}

// CreateStoryResponse represents the response for story creation
type CreateStoryResponse struct {
	ID string `json:"id"`
}

// handleSimilar ranks the epic stories most similar to the query story.
// An empty epic is valid and yields an empty ranking.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if similarity.ExtractText(req.Query) == "" {
		err := &ErrValidation{Field: "query", Message: "query story has no text"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ranked, err := s.ranker.RankSimilar(r.Context(), req.Query, req.Epic, req.ExcludeID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RankedSimilarStories{Ranked: ranked})
}

// handleMetrics computes the consistency report for a generated story against
// an epic.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	report := metrics.CalculateAll(req.Generated, req.Epic)
	s.jsonResponse(w, http.StatusOK, report)
}

// handleGenerate generates a story for a prompt, optionally conditioned on
// the most similar stories of the supplied epic.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	var references []types.RankedStory
	if req.UseContext && len(req.Epic) > 0 {
		query := types.Story{Title: req.Prompt, Description: req.Prompt}
		ranked, err := s.ranker.RankSimilar(r.Context(), query, req.Epic, "")
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		references = ranked
	}

	result, err := s.generator.Generate(r.Context(), req.Prompt, references)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleListEpicStories returns all stories stored under an epic
func (s *Server) handleListEpicStories(w http.ResponseWriter, r *http.Request) {
	epicID := r.PathValue("id")
	if epicID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Epic ID is required")
		return
	}

	stories, err := s.store.ListStoriesByEpic(r.Context(), epicID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if stories == nil {
		stories = []types.Story{}
	}

	s.jsonResponse(w, http.StatusOK, stories)
}

// handleCreateEpicStory stores a new story under an epic
func (s *Server) handleCreateEpicStory(w http.ResponseWriter, r *http.Request) {
	epicID := r.PathValue("id")
	if epicID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Epic ID is required")
		return
	}

	var story types.Story
	if err := json.NewDecoder(r.Body).Decode(&story); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if story.Title == "" {
		err := &ErrValidation{Field: "title", Message: "title is required"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if !story.Priority.Valid() {
		err := &ErrValidation{Field: "priority", Message: fmt.Sprintf("unknown priority %q", story.Priority)}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	id, err := s.store.InsertStory(r.Context(), epicID, story)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, CreateStoryResponse{ID: id.String()})
}

// handleGetStory returns a stored story by ID
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	storyID, ok := s.parseStoryID(w, r)
	if !ok {
		return
	}

	story, err := s.store.GetStory(r.Context(), storyID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if story == nil {
		notFound := &ErrStoryNotFound{StoryID: storyID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, story)
}

// handleDeleteStory removes a stored story by ID
func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	storyID, ok := s.parseStoryID(w, r)
	if !ok {
		return
	}

	story, err := s.store.GetStory(r.Context(), storyID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if story == nil {
		notFound := &ErrStoryNotFound{StoryID: storyID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	if err := s.store.DeleteStory(r.Context(), storyID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) parseStoryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Story ID is required")
		return uuid.Nil, false
	}

	storyID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid story ID format")
		return uuid.Nil, false
	}
	return storyID, true
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
