// Package traversal implements the three walk modes over a form graph: the
// runtime walk driven by live answers, the ordered depth-first enumeration used
// for preview browsing, and the recursive tree build used for visualization.
//
// All three share one rule: a step id is never visited twice within a single
// traversal, so graphs containing cycles still terminate. Malformed graphs
// (dangling root, edges to missing steps) never error; they resolve to "no
// further steps", because a graph is allowed to be mid-edit.
package traversal

import (
	"github.com/nvalim/lattice/pkg/domain"
)

// DefaultMaxSteps caps the runtime walk. The cap is a safety valve against
// missed-cycle bugs, not a business rule.
const DefaultMaxSteps = 50

type walkConfig struct {
	maxSteps int
}

// WalkOption tunes a runtime walk.
type WalkOption func(*walkConfig)

// WithMaxSteps overrides the walk cap.
func WithMaxSteps(n int) WalkOption {
	return func(c *walkConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// Walk produces the ordered list of steps visited from the root, resolving
// each step's edge against the given branch selections (one chosen choice id
// per visited choice step). It stops at a nil edge, a missing step, a revisit,
// or the step cap.
func Walk(g *domain.FormGraph, selections map[string]string, opts ...WalkOption) []*domain.Step {
	cfg := walkConfig{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !g.IsUsable() {
		return nil
	}

	visited := make(map[string]bool)
	var path []*domain.Step

	currentID := g.RootStepID
	for len(path) < cfg.maxSteps {
		step, ok := g.Step(currentID)
		if !ok || visited[currentID] {
			break
		}
		visited[currentID] = true
		path = append(path, step)

		next := g.ResolveNext(step, selections[currentID])
		if next == nil {
			break
		}
		currentID = *next
	}

	return path
}
