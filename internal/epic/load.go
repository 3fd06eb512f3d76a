package epic

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/story-context/internal/types"
)

// envelope is the object form of an epic file. Exported tools wrap the story
// list in an object; plain exports are a bare array.
type envelope struct {
	ID      string        `json:"id,omitempty"`
	Name    string        `json:"name,omitempty"`
	Stories []types.Story `json:"stories"`
}

// LoadStories loads the stories of an epic from a JSON file. The file may be
// either a bare array of stories or an object with a "stories" field.
func LoadStories(path string) ([]types.Story, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	var stories []types.Story
	if err := json.Unmarshal(content, &stories); err == nil {
		return stories, nil
	}

	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}
	if env.Stories == nil {
		return nil, &LoadError{
			Message: "epic file has no stories field and is not a story array",
		}
	}
	return env.Stories, nil
}

// LoadStory loads a single query story from a JSON file.
func LoadStory(path string) (types.Story, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Story{}, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	var story types.Story
	if err := json.Unmarshal(content, &story); err != nil {
		return types.Story{}, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}
	return story, nil
}
