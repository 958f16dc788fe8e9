package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvalim/lattice/pkg/domain"
)

// Overlay highlights a fill session's progress on the rendered graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid renders the form graph as a Mermaid flowchart.
// Step shapes follow the step type:
//   - text: [/Parallelogram/] (input)
//   - choice: {Diamond} (branch)
//   - quantity: [[Subroutine]]
//   - conclusion: ((Circle))
//
// Dangling edges render as a dotted arrow into a shared terminal marker, so an
// intentionally open branch is visible rather than silently absent.
func GenerateMermaid(g *domain.FormGraph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(g.Steps))
	for id := range g.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	needsEnd := false

	for _, id := range ids {
		step := g.Steps[id]
		if step == nil {
			continue
		}
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		label := step.Question
		switch step.Type {
		case domain.StepText:
			opener, closer = "[/", "/]"
		case domain.StepChoice:
			opener, closer = "{", "}"
		case domain.StepQuantity:
			opener, closer = "[[", "]]"
		case domain.StepConclusion:
			opener, closer = "((", "))"
			if label == "" {
				label = step.ThankYouMessage
			}
		}
		if label == "" {
			label = id
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))

		// primary edge
		if step.Type != domain.StepChoice && step.Type != domain.StepConclusion {
			if step.NextStepID != nil && stepExists(g, *step.NextStepID) {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(*step.NextStepID)))
			} else {
				sb.WriteString(fmt.Sprintf("    %s -.-> __end__\n", safeID))
				needsEnd = true
			}
		}

		for _, c := range step.Choices {
			arrowLabel := escapeMermaidLabel(c.Label)
			if c.NextStepID != nil && stepExists(g, *c.NextStepID) {
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, arrowLabel, sanitizeMermaidID(*c.NextStepID)))
			} else {
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> __end__\n", safeID, arrowLabel))
				needsEnd = true
			}
		}
	}

	if needsEnd {
		sb.WriteString("    __end__((\"end\"))\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !visitedSet[safeID] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func stepExists(g *domain.FormGraph, id string) bool {
	_, ok := g.Step(id)
	return ok
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
