package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/story-context/internal/types"
)

// storyRow mirrors the stories table. Acceptance criteria are stored as a
// JSONB column so both the list and free-text forms round-trip unchanged.
type storyRow struct {
	ID          uuid.UUID
	EpicID      string
	Title       string
	Description string
	Criteria    []byte
	Priority    string
	StoryPoints float64
}

func (r storyRow) toStory() (types.Story, error) {
	story := types.Story{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Priority:    types.Priority(r.Priority),
		StoryPoints: r.StoryPoints,
	}
	if len(r.Criteria) > 0 {
		if err := json.Unmarshal(r.Criteria, &story.AcceptanceCriteria); err != nil {
			return types.Story{}, fmt.Errorf("failed to unmarshal acceptance criteria: %w", err)
		}
	}
	return story, nil
}

// ListStoriesByEpic retrieves all stories belonging to an epic, oldest first.
func (db *DB) ListStoriesByEpic(ctx context.Context, epicID string) ([]types.Story, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, epic_id, title, description, acceptance_criteria, priority, story_points
		 FROM stories WHERE epic_id = $1 ORDER BY created_at ASC`,
		epicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	var stories []types.Story
	for rows.Next() {
		var row storyRow
		if err := rows.Scan(&row.ID, &row.EpicID, &row.Title, &row.Description, &row.Criteria, &row.Priority, &row.StoryPoints); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		story, err := row.toStory()
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// GetStory retrieves a single story by ID. Returns nil when not found.
func (db *DB) GetStory(ctx context.Context, storyID uuid.UUID) (*types.Story, error) {
	var row storyRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, epic_id, title, description, acceptance_criteria, priority, story_points
		 FROM stories WHERE id = $1`,
		storyID,
	).Scan(&row.ID, &row.EpicID, &row.Title, &row.Description, &row.Criteria, &row.Priority, &row.StoryPoints)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	story, err := row.toStory()
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// InsertStory stores a story under an epic and returns its assigned ID.
func (db *DB) InsertStory(ctx context.Context, epicID string, story types.Story) (uuid.UUID, error) {
	criteria, err := json.Marshal(story.AcceptanceCriteria)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal acceptance criteria: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO stories (epic_id, title, description, acceptance_criteria, priority, story_points)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		epicID, story.Title, story.Description, criteria, string(story.Priority), story.StoryPoints,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert story: %w", err)
	}
	return id, nil
}

// DeleteStory removes a story by ID
func (db *DB) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, storyID)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("story not found: %s", storyID)
	}
	return nil
}
