package domain

// FormGraph is a directed graph of question steps keyed by step id.
//
// The graph is not required to be acyclic or fully connected. Edges may point
// at missing ids (treated as terminal by traversal) and unreachable steps may
// exist after edits. RootStepID should resolve to a step for the graph to be
// usable, but an editing session may transiently violate that.
type FormGraph struct {
	RootStepID string           `json:"rootStepId" yaml:"rootStepId" mapstructure:"rootStepId"`
	Steps      map[string]*Step `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// NewFormGraph creates an empty graph.
func NewFormGraph() *FormGraph {
	return &FormGraph{Steps: make(map[string]*Step)}
}

// IsUsable reports whether RootStepID resolves to a step.
func (g *FormGraph) IsUsable() bool {
	if g == nil || g.RootStepID == "" {
		return false
	}
	_, ok := g.Steps[g.RootStepID]
	return ok
}

// Step returns the step with the given id.
func (g *FormGraph) Step(id string) (*Step, bool) {
	if g == nil {
		return nil, false
	}
	s, ok := g.Steps[id]
	return s, ok
}

// ResolveNext returns the id of the step to follow from the given step, or nil
// when the step is terminal. For text and quantity steps the step's own edge is
// followed; for choice steps the edge of the selected choice. A conclusion
// step, an unknown choice id, and an unset edge all resolve to nil.
func (g *FormGraph) ResolveNext(step *Step, choiceID string) *string {
	if step == nil {
		return nil
	}
	switch step.Type {
	case StepText, StepQuantity:
		return step.NextStepID
	case StepChoice:
		if c := step.Choice(choiceID); c != nil {
			return c.NextStepID
		}
		return nil
	default:
		return nil
	}
}

// Clone returns a deep, independent copy of the graph.
func (g *FormGraph) Clone() *FormGraph {
	if g == nil {
		return nil
	}
	out := &FormGraph{
		RootStepID: g.RootStepID,
		Steps:      make(map[string]*Step, len(g.Steps)),
	}
	for id, s := range g.Steps {
		out.Steps[id] = s.Clone()
	}
	return out
}

// UpdateStep replaces (or adds) a step keyed by its id.
func (g *FormGraph) UpdateStep(step *Step) {
	if step == nil || step.ID == "" {
		return
	}
	if g.Steps == nil {
		g.Steps = make(map[string]*Step)
	}
	g.Steps[step.ID] = step
}

// InsertAfter splices a new step between an existing step (or one of its
// choices, when choiceID is non-empty) and that edge's previous target. The
// inserted step inherits the previous target as its own next edge. When the
// graph has no root yet, the step becomes the root.
func (g *FormGraph) InsertAfter(afterStepID, choiceID string, step *Step) {
	if step == nil || step.ID == "" {
		return
	}
	if g.Steps == nil {
		g.Steps = make(map[string]*Step)
	}
	if g.RootStepID == "" {
		g.RootStepID = step.ID
		g.Steps[step.ID] = step
		return
	}

	after, ok := g.Steps[afterStepID]
	if !ok {
		g.Steps[step.ID] = step
		return
	}

	id := step.ID
	if choiceID != "" {
		if c := after.Choice(choiceID); c != nil {
			step.NextStepID = c.NextStepID
			c.NextStepID = &id
		}
	} else {
		step.NextStepID = after.NextStepID
		after.NextStepID = &id
	}
	g.Steps[step.ID] = step
}

// DeleteStep removes a step and rewrites every edge pointing at it to nil.
// Leaving stale ids behind would make "missing target" and "intentionally
// terminal" indistinguishable for future edits, so the rewrite is part of the
// operation, not a cleanup.
func (g *FormGraph) DeleteStep(id string) {
	if g == nil || g.Steps == nil {
		return
	}
	delete(g.Steps, id)
	for _, s := range g.Steps {
		if s.NextStepID != nil && *s.NextStepID == id {
			s.NextStepID = nil
		}
		for i := range s.Choices {
			if s.Choices[i].NextStepID != nil && *s.Choices[i].NextStepID == id {
				s.Choices[i].NextStepID = nil
			}
		}
	}
}
