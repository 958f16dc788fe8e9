// Package validator lints a form graph before publishing. Findings are
// advisory: a graph with warnings still runs, because dangling edges and
// unreachable steps are legal mid-edit states.
package validator

import (
	"fmt"
	"sort"

	"github.com/nvalim/lattice/internal/traversal"
	"github.com/nvalim/lattice/pkg/domain"
)

// Severity ranks a finding.
type Severity string

const (
	// SeverityError blocks publishing: the graph cannot collect a submission.
	SeverityError Severity = "error"
	// SeverityWarning flags a likely mistake that is still legal.
	SeverityWarning Severity = "warning"
)

// Finding is one lint result.
type Finding struct {
	Severity Severity
	StepID   string
	Message  string
}

func (f Finding) String() string {
	if f.StepID == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: step %q: %s", f.Severity, f.StepID, f.Message)
}

// Report is the full lint output for one graph.
type Report struct {
	Findings []Finding
}

// HasErrors reports whether any finding blocks publishing.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Report) add(sev Severity, stepID, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		StepID:   stepID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Validate lints the graph:
//
//   - missing or dangling root (error)
//   - dangling edges, primary and per-choice (warning)
//   - steps unreachable from the root (warning)
//   - duplicate choice ids within a step (error)
//   - no conclusion reachable (warning)
//   - choice steps without options (error)
func Validate(g *domain.FormGraph) *Report {
	report := &Report{}

	if g.RootStepID == "" {
		report.add(SeverityError, "", "no root step set")
		return report
	}
	if _, ok := g.Step(g.RootStepID); !ok {
		report.add(SeverityError, "", "root step %q does not exist", g.RootStepID)
		return report
	}

	reachable := make(map[string]bool)
	hasConclusion := false
	for _, step := range traversal.Enumerate(g) {
		reachable[step.ID] = true
		if step.Type == domain.StepConclusion {
			hasConclusion = true
		}
	}

	ids := make([]string, 0, len(g.Steps))
	for id := range g.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		step := g.Steps[id]
		if step == nil {
			report.add(SeverityError, id, "step entry is nil")
			continue
		}

		if !reachable[id] {
			report.add(SeverityWarning, id, "unreachable from root")
		}

		if step.NextStepID != nil {
			if _, ok := g.Step(*step.NextStepID); !ok {
				report.add(SeverityWarning, id, "edge points to missing step %q", *step.NextStepID)
			}
		}

		switch step.Type {
		case domain.StepChoice:
			if len(step.Choices) == 0 {
				report.add(SeverityError, id, "choice step has no options")
			}
			seen := make(map[string]bool, len(step.Choices))
			for _, c := range step.Choices {
				if seen[c.ID] {
					report.add(SeverityError, id, "duplicate choice id %q", c.ID)
				}
				seen[c.ID] = true
				if c.NextStepID != nil {
					if _, ok := g.Step(*c.NextStepID); !ok {
						report.add(SeverityWarning, id, "option %q points to missing step %q", c.Label, *c.NextStepID)
					}
				}
			}
		case domain.StepQuantity:
			if len(step.QuantityChoices) == 0 {
				report.add(SeverityWarning, id, "quantity step has no items")
			}
			seen := make(map[string]bool, len(step.QuantityChoices))
			for _, qc := range step.QuantityChoices {
				if seen[qc.ID] {
					report.add(SeverityError, id, "duplicate item id %q", qc.ID)
				}
				seen[qc.ID] = true
			}
		}
	}

	if !hasConclusion {
		report.add(SeverityWarning, "", "no conclusion step is reachable from the root")
	}

	return report
}
