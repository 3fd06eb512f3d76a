// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Epic  string `json:"epic,omitempty"`  // Path to epic JSON file
	Query string `json:"query,omitempty"` // Path to query story JSON file

	// Providers
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	Model          string `json:"model,omitempty"`           // Generation model override
	EmbeddingModel string `json:"embedding_model,omitempty"` // Embedding model override
	DatabaseURL    string `json:"database_url,omitempty"`    // PostgreSQL connection URL

	// Behavior
	TopK    int  `json:"top_k,omitempty"` // Number of similar stories to retrieve
	Port    int  `json:"port,omitempty"`  // HTTP server port
	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are enforced by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.Epic != "" {
		if _, err := os.Stat(c.Epic); os.IsNotExist(err) {
			return fmt.Errorf("config error: epic file not found: %s", c.Epic)
		}
	}
	if c.Query != "" {
		if _, err := os.Stat(c.Query); os.IsNotExist(err) {
			return fmt.Errorf("config error: query file not found: %s", c.Query)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Epic == "" {
		result.Epic = defaults.Epic
	}
	if result.Query == "" {
		result.Query = defaults.Query
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
