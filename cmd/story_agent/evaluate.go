package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/story-context/internal/epic"
	"github.com/jonathan/story-context/internal/metrics"
	"github.com/jonathan/story-context/internal/observability"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure how consistent a generated story is with an epic",
	Long:  "Computes format consistency, terminology overlap, and edit-distance similarity for a generated story against every story of an epic, producing a MetricsReport JSON. Runs fully offline.",
	RunE:  runEvaluate,
}

var (
	evaluateStory   string
	evaluateEpic    string
	evaluateOutput  string
	evaluateVerbose bool
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateStory, "story", "s", "", "Path to generated story JSON file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateEpic, "epic", "e", "", "Path to epic JSON file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "out", "o", "", "Path to output MetricsReport JSON file (stdout if omitted)")
	evaluateCmd.Flags().BoolVarP(&evaluateVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := evaluateCmd.MarkFlagRequired("story"); err != nil {
		panic(fmt.Sprintf("failed to mark story flag as required: %v", err))
	}
	if err := evaluateCmd.MarkFlagRequired("epic"); err != nil {
		panic(fmt.Sprintf("failed to mark epic flag as required: %v", err))
	}

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, _ []string) error {
	// 1. Load generated story and epic
	story, err := epic.LoadStory(evaluateStory)
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}

	stories, err := epic.LoadStories(evaluateEpic)
	if err != nil {
		return fmt.Errorf("failed to load epic: %w", err)
	}

	// 2. Compute metrics
	report := metrics.CalculateAll(story, stories)

	// 3. Write output
	if evaluateOutput != "" {
		if err := writeJSONFile(evaluateOutput, report); err != nil {
			return err
		}
		validateOutputNonFatal("schemas/metrics_report.schema.json", evaluateOutput)
		_, _ = fmt.Fprintf(os.Stdout, "Metrics report written to %s\n", evaluateOutput)
	} else {
		jsonOutput, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output to JSON: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(jsonOutput))
	}

	if evaluateVerbose {
		observability.NewPrinter(os.Stdout).PrintMetricsReport(&report)
	}

	return nil
}
