package traversal

import (
	"github.com/nvalim/lattice/pkg/domain"
)

// Enumerate returns every step reachable from the root in depth-first
// discovery order, following a step's primary edge before any choice edges.
// The order is independent of which branch a filler would take, which lets an
// operator page forward and backward through "all steps" in a stable order.
func Enumerate(g *domain.FormGraph) []*domain.Step {
	if !g.IsUsable() {
		return nil
	}

	visited := make(map[string]bool)
	var order []*domain.Step

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		step, ok := g.Step(id)
		if !ok {
			return
		}
		visited[id] = true
		order = append(order, step)

		if step.Type == domain.StepConclusion {
			return
		}
		if step.NextStepID != nil {
			visit(*step.NextStepID)
		}
		for _, c := range step.Choices {
			if c.NextStepID != nil {
				visit(*c.NextStepID)
			}
		}
	}

	visit(g.RootStepID)
	return order
}
