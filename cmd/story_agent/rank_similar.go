package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/story-context/internal/config"
	"github.com/jonathan/story-context/internal/embedding"
	"github.com/jonathan/story-context/internal/epic"
	"github.com/jonathan/story-context/internal/observability"
	"github.com/jonathan/story-context/internal/schemas"
	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/types"
)

var rankSimilarCmd = &cobra.Command{
	Use:   "rank-similar",
	Short: "Rank the epic stories most similar to a query story",
	Long:  "Scores every story in an epic against a query story (semantic embeddings blended with lexical overlap) and writes the top matches as RankedSimilarStories JSON.",
	RunE:  runRankSimilar,
}

var (
	rankSimilarConfigPath     string
	rankSimilarQuery          string
	rankSimilarEpic           string
	rankSimilarOutput         string
	rankSimilarExclude        string
	rankSimilarAPIKey         string
	rankSimilarEmbeddingModel string
	rankSimilarVerbose        bool
)

func init() {
	rankSimilarCmd.Flags().StringVar(&rankSimilarConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rankSimilarCmd.Flags().StringVarP(&rankSimilarQuery, "query", "q", "", "Path to query story JSON file (required)")
	rankSimilarCmd.Flags().StringVarP(&rankSimilarEpic, "epic", "e", "", "Path to epic JSON file (required)")
	rankSimilarCmd.Flags().StringVarP(&rankSimilarOutput, "out", "o", "", "Path to output RankedSimilarStories JSON file (required)")
	rankSimilarCmd.Flags().StringVar(&rankSimilarExclude, "exclude", "", "Story ID to exclude from the candidate set")
	rankSimilarCmd.Flags().StringVar(&rankSimilarAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	rankSimilarCmd.Flags().StringVar(&rankSimilarEmbeddingModel, "embedding-model", "", "Embedding model override")
	rankSimilarCmd.Flags().BoolVarP(&rankSimilarVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := rankSimilarCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}
	if err := rankSimilarCmd.MarkFlagRequired("epic"); err != nil {
		panic(fmt.Sprintf("failed to mark epic flag as required: %v", err))
	}
	if err := rankSimilarCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(rankSimilarCmd)
}

func runRankSimilar(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadCommandConfig(rankSimilarConfigPath, rankSimilarVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = rankSimilarAPIKey
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.EmbeddingModel = rankSimilarEmbeddingModel
	}
	cfg = cfg.MergeWithDefaults(config.Config{EmbeddingModel: embedding.DefaultModel})

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}

	// 1. Load query story and epic
	query, err := epic.LoadStory(rankSimilarQuery)
	if err != nil {
		return fmt.Errorf("failed to load query story: %w", err)
	}

	stories, err := epic.LoadStories(rankSimilarEpic)
	if err != nil {
		return fmt.Errorf("failed to load epic: %w", err)
	}

	// 2. Rank
	embedder, err := embedding.NewGeminiEmbedder(ctx, apiKey, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	calculator := similarity.NewCalculator(embedder, similarity.WithWarnFunc(func(format string, args ...any) {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}))

	ranked, err := calculator.RankSimilar(ctx, query, stories, rankSimilarExclude)
	if err != nil {
		return fmt.Errorf("failed to rank stories: %w", err)
	}

	result := types.RankedSimilarStories{Ranked: ranked}

	// 3. Write output
	if err := writeJSONFile(rankSimilarOutput, result); err != nil {
		return err
	}

	// 4. Validate output against schema (optional - non-fatal)
	validateOutputNonFatal("schemas/ranked_similar_stories.schema.json", rankSimilarOutput)

	if rankSimilarVerbose {
		observability.NewPrinter(os.Stdout).PrintRankedStories(&result)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Found %d similar stories, written to %s\n", len(ranked), rankSimilarOutput)
	return nil
}

// loadCommandConfig loads the optional config file for a command.
func loadCommandConfig(path string, verbose bool) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return config.Config{}, err
	}
	if verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", path)
	}
	return *loaded, nil
}

// resolveAPIKey returns the configured API key, falling back to the environment.
func resolveAPIKey(cfg config.Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
}

// writeJSONFile marshals data with indentation and writes it, creating the
// output directory when needed.
func writeJSONFile(path string, data any) error {
	jsonOutput, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// validateOutputNonFatal validates a written file against a schema when the
// schema can be located. Validation problems are warnings, not failures.
func validateOutputNonFatal(schemaRelPath, outputPath string) {
	schemaPath := schemas.ResolveSchemaPath(schemaRelPath)
	if schemaPath == "" {
		return
	}
	if err := schemas.ValidateJSON(schemaPath, outputPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Output validation failed: %v\n", err)
	}
}
