package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/story-context/internal/config"
	"github.com/jonathan/story-context/internal/embedding"
	"github.com/jonathan/story-context/internal/epic"
	"github.com/jonathan/story-context/internal/generation"
	"github.com/jonathan/story-context/internal/llm"
	"github.com/jonathan/story-context/internal/observability"
	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/types"
)

var generateStoryCmd = &cobra.Command{
	Use:   "generate-story",
	Short: "Generate a user story from a requirement prompt",
	Long:  "Generates a structured user story from a requirement. When an epic is provided, the prompt is conditioned on the epic's most similar stories so the output matches their format and terminology.",
	RunE:  runGenerateStory,
}

var (
	generateConfigPath     string
	generatePrompt         string
	generateEpic           string
	generateOutput         string
	generateNoContext      bool
	generateAPIKey         string
	generateModel          string
	generateEmbeddingModel string
	generateVerbose        bool
)

func init() {
	generateStoryCmd.Flags().StringVar(&generateConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	generateStoryCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "Requirement to generate a story for (required)")
	generateStoryCmd.Flags().StringVarP(&generateEpic, "epic", "e", "", "Path to epic JSON file for contextual generation")
	generateStoryCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Path to output GenerationResult JSON file (stdout if omitted)")
	generateStoryCmd.Flags().BoolVar(&generateNoContext, "no-context", false, "Skip contextual conditioning even when an epic is provided")
	generateStoryCmd.Flags().StringVar(&generateAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	generateStoryCmd.Flags().StringVar(&generateModel, "model", "", "Generation model override")
	generateStoryCmd.Flags().StringVar(&generateEmbeddingModel, "embedding-model", "", "Embedding model override")
	generateStoryCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := generateStoryCmd.MarkFlagRequired("prompt"); err != nil {
		panic(fmt.Sprintf("failed to mark prompt flag as required: %v", err))
	}

	rootCmd.AddCommand(generateStoryCmd)
}

func runGenerateStory(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadCommandConfig(generateConfigPath, generateVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = generateAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = generateModel
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.EmbeddingModel = generateEmbeddingModel
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("STORY_CONTEXT_MODEL")
	}
	cfg = cfg.MergeWithDefaults(config.Config{EmbeddingModel: embedding.DefaultModel})

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}

	// 1. Retrieve reference stories when an epic is provided
	var references []types.RankedStory
	if generateEpic != "" && !generateNoContext {
		stories, err := epic.LoadStories(generateEpic)
		if err != nil {
			return fmt.Errorf("failed to load epic: %w", err)
		}

		embedder, err := embedding.NewGeminiEmbedder(ctx, apiKey, cfg.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		defer func() { _ = embedder.Close() }()

		calculator := similarity.NewCalculator(embedder, similarity.WithWarnFunc(func(format string, args ...any) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		}))

		query := types.Story{Title: generatePrompt, Description: generatePrompt}
		references, err = calculator.RankSimilar(ctx, query, stories, "")
		if err != nil {
			return fmt.Errorf("failed to rank reference stories: %w", err)
		}
	}

	// 2. Generate
	modelConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		modelConfig = modelConfig.WithModel(llm.TierStandard, cfg.Model)
	}

	client, err := llm.NewClient(ctx, modelConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	generator := generation.NewGenerator(client)
	result, err := generator.Generate(ctx, generatePrompt, references)
	if err != nil {
		return fmt.Errorf("failed to generate story: %w", err)
	}

	if result.Metadata.Error != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: provider output could not be parsed: %s\n", result.Metadata.Error)
	}

	// 3. Write output
	if generateOutput != "" {
		if err := writeJSONFile(generateOutput, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Generated story written to %s\n", generateOutput)
	} else {
		jsonOutput, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output to JSON: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(jsonOutput))
	}

	if generateVerbose {
		observability.NewPrinter(os.Stdout).PrintGeneratedStory(&result)
	}

	return nil
}
