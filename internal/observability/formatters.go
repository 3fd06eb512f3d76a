// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/story-context/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRankedStories outputs the retrieved similar stories with their scores.
func (p *Printer) PrintRankedStories(result *types.RankedSimilarStories) {
	if result == nil || len(result.Ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Similar stories found: %d\n\n", len(result.Ranked)))

	count := min(len(result.Ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		ranked := result.Ranked[i]
		title := ranked.Story.Title
		if title == "" {
			title = ranked.Story.ID
		}
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    Combined: %.2f (semantic %.2f, lexical %.2f)\n",
			ranked.Scores.Combined, ranked.Scores.Semantic, ranked.Scores.Lexical))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(result.Ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more stories", len(result.Ranked)-maxItemsToShow))
	}

	p.printBox("SIMILAR STORIES", sb.String())
}

// PrintMetricsReport outputs the consistency scores for a generated story.
func (p *Printer) PrintMetricsReport(report *types.MetricsReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Format consistency:       %.2f\n", report.FormatConsistency))
	sb.WriteString(fmt.Sprintf("Terminology overlap:      %.2f\n", report.TerminologyOverlap))
	sb.WriteString(fmt.Sprintf("Edit-distance similarity: %.2f", report.EditDistanceSimilarity))

	p.printBox("CONSISTENCY METRICS", sb.String())
}

// PrintGeneratedStory outputs a generated story together with its metadata.
func (p *Printer) PrintGeneratedStory(result *types.GenerationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", result.Story.Title))
	if result.Story.Priority != "" {
		sb.WriteString(fmt.Sprintf("Priority: %s\n", result.Story.Priority))
	}
	if result.Story.StoryPoints > 0 {
		sb.WriteString(fmt.Sprintf("Points:   %.0f\n", result.Story.StoryPoints))
	}

	if result.Story.AcceptanceCriteria.IsList() {
		sb.WriteString("\nAcceptance Criteria:\n")
		count := min(len(result.Story.AcceptanceCriteria.Items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Story.AcceptanceCriteria.Items[i]))
		}
		if len(result.Story.AcceptanceCriteria.Items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Story.AcceptanceCriteria.Items)-maxItemsToShow))
		}
	}

	sb.WriteString("\n")
	if result.Metadata.ContextUsed {
		sb.WriteString(fmt.Sprintf("Context:  %d reference stories\n", result.Metadata.ContextStoryCount))
	} else {
		sb.WriteString("Context:  none\n")
	}
	sb.WriteString(fmt.Sprintf("Model:    %s", result.Metadata.Model))
	if result.Metadata.Error != "" {
		sb.WriteString(fmt.Sprintf("\nWarning:  %s", result.Metadata.Error))
	}

	p.printBox("GENERATED STORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComparison outputs side-by-side metric means for the with-context and
// without-context generation arms.
func (p *Printer) PrintComparison(withContext, withoutContext *types.MetricsReport) {
	if withContext == nil || withoutContext == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Metric                    With     Without  Delta\n\n")
	sb.WriteString(comparisonLine("Format consistency", withContext.FormatConsistency, withoutContext.FormatConsistency))
	sb.WriteString(comparisonLine("Terminology overlap", withContext.TerminologyOverlap, withoutContext.TerminologyOverlap))
	sb.WriteString(comparisonLine("Edit-distance sim.", withContext.EditDistanceSimilarity, withoutContext.EditDistanceSimilarity))

	p.printBox("CONTEXT COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

func comparisonLine(name string, with, without float64) string {
	return fmt.Sprintf("%-25s %.2f     %.2f     %+.2f\n", name, with, without, with-without)
}
