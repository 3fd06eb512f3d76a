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
	"github.com/jonathan/story-context/internal/experiment"
	"github.com/jonathan/story-context/internal/generation"
	"github.com/jonathan/story-context/internal/llm"
	"github.com/jonathan/story-context/internal/observability"
	"github.com/jonathan/story-context/internal/similarity"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare contextual against plain generation over a prompt set",
	Long:  "Generates every prompt twice, once conditioned on the epic's most similar stories and once without, and reports the mean consistency metrics of both arms side by side.",
	RunE:  runCompare,
}

var (
	compareConfigPath     string
	comparePrompts        string
	compareEpic           string
	compareOutput         string
	compareParallelism    int
	compareAPIKey         string
	compareModel          string
	compareEmbeddingModel string
	compareVerbose        bool
)

func init() {
	compareCmd.Flags().StringVar(&compareConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	compareCmd.Flags().StringVarP(&comparePrompts, "prompts", "p", "", "Path to JSON file holding an array of prompt strings (required)")
	compareCmd.Flags().StringVarP(&compareEpic, "epic", "e", "", "Path to epic JSON file (required)")
	compareCmd.Flags().StringVarP(&compareOutput, "out", "o", "", "Path to output comparison JSON file (stdout if omitted)")
	compareCmd.Flags().IntVar(&compareParallelism, "parallelism", 0, "Concurrent prompts (default 4)")
	compareCmd.Flags().StringVar(&compareAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	compareCmd.Flags().StringVar(&compareModel, "model", "", "Generation model override")
	compareCmd.Flags().StringVar(&compareEmbeddingModel, "embedding-model", "", "Embedding model override")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := compareCmd.MarkFlagRequired("prompts"); err != nil {
		panic(fmt.Sprintf("failed to mark prompts flag as required: %v", err))
	}
	if err := compareCmd.MarkFlagRequired("epic"); err != nil {
		panic(fmt.Sprintf("failed to mark epic flag as required: %v", err))
	}

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadCommandConfig(compareConfigPath, compareVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = compareAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = compareModel
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.EmbeddingModel = compareEmbeddingModel
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("STORY_CONTEXT_MODEL")
	}
	cfg = cfg.MergeWithDefaults(config.Config{EmbeddingModel: embedding.DefaultModel})

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}

	// 1. Load prompts and epic
	prompts, err := loadPromptList(comparePrompts)
	if err != nil {
		return err
	}

	stories, err := epic.LoadStories(compareEpic)
	if err != nil {
		return fmt.Errorf("failed to load epic: %w", err)
	}

	// 2. Build the two-arm runner
	embedder, err := embedding.NewGeminiEmbedder(ctx, apiKey, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	modelConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		modelConfig = modelConfig.WithModel(llm.TierStandard, cfg.Model)
	}

	client, err := llm.NewClient(ctx, modelConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	calculator := similarity.NewCalculator(embedder)
	generator := generation.NewGenerator(client)
	runner := experiment.NewRunner(generator, calculator, experiment.WithParallelism(compareParallelism))

	// 3. Run
	result, err := runner.Run(ctx, prompts, stories)
	if err != nil {
		return fmt.Errorf("comparison run failed: %w", err)
	}

	// 4. Write output
	if compareOutput != "" {
		if err := writeJSONFile(compareOutput, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Comparison over %d prompts written to %s\n", result.Prompts, compareOutput)
	} else {
		jsonOutput, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output to JSON: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(jsonOutput))
	}

	observability.NewPrinter(os.Stdout).PrintComparison(&result.WithContext, &result.WithoutContext)
	return nil
}

// loadPromptList reads a JSON array of prompt strings.
func loadPromptList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}

	var prompts []string
	if err := json.Unmarshal(content, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompts file %s holds no prompts", path)
	}
	return prompts, nil
}
