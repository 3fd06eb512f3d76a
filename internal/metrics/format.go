// Package metrics measures how consistent a generated story is with a
// reference epic: structural format match, terminology overlap, and
// character-level similarity. It is an offline evaluation layer, independent
// of similarity retrieval.
package metrics

import (
	"regexp"
	"strings"

	"github.com/jonathan/story-context/internal/types"
)

// Format classifies the structural style of acceptance criteria.
type Format string

// Acceptance-criteria format styles
const (
	FormatGivenWhenThen Format = "given_when_then"
	FormatChecklist     Format = "checklist"
	FormatNarrative     Format = "narrative"
	FormatUnknown       Format = "unknown"
)

// checklistMarker matches bullet ("- ", "* ", "• ") and numbered ("1.")
// statement prefixes.
var checklistMarker = regexp.MustCompile(`^([-*•]\s|\d+\.)`)

// ClassifyFormat detects the format of a list of acceptance statements by
// inspecting the first three. A first token of given/when/then marks
// Gherkin-style criteria; bullet or numeral prefixes on every statement mark a
// checklist; anything else is narrative. No statements means unknown.
func ClassifyFormat(statements []string) Format {
	if len(statements) == 0 {
		return FormatUnknown
	}

	head := statements
	if len(head) > 3 {
		head = head[:3]
	}

	for _, statement := range head {
		fields := strings.Fields(statement)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "given", "when", "then":
			return FormatGivenWhenThen
		}
	}

	checklist := false
	for _, statement := range head {
		trimmed := strings.TrimSpace(statement)
		if trimmed == "" {
			continue
		}
		if !checklistMarker.MatchString(trimmed) {
			checklist = false
			break
		}
		checklist = true
	}
	if checklist {
		return FormatChecklist
	}

	return FormatNarrative
}

// FormatConsistency scores how well the generated story's acceptance-criteria
// format matches the epic: the fraction of classifiable epic stories sharing
// the generated story's format. A generated story without list-form criteria
// scores 0.0. An epic with no classifiable stories scores a neutral 0.5,
// biasing the comparison toward neither consistent nor inconsistent.
func FormatConsistency(generated types.Story, epic []types.Story) float64 {
	if !generated.AcceptanceCriteria.IsList() {
		return 0.0
	}
	generatedFormat := ClassifyFormat(generated.AcceptanceCriteria.Items)

	matches := 0
	classified := 0
	for _, story := range epic {
		if !story.AcceptanceCriteria.IsList() {
			continue
		}
		classified++
		if ClassifyFormat(story.AcceptanceCriteria.Items) == generatedFormat {
			matches++
		}
	}

	if classified == 0 {
		return 0.5
	}
	return float64(matches) / float64(classified)
}
