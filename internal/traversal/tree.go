package traversal

import (
	"github.com/nvalim/lattice/pkg/domain"
)

// NodeKind classifies a tree node for visualization.
type NodeKind string

const (
	// KindRoot marks the tree's single root node.
	KindRoot NodeKind = "root"
	// KindDecision marks any choice step, and any step with at least one live child.
	KindDecision NodeKind = "decision"
	// KindLeaf marks everything else, including synthetic dead-end leaves.
	KindLeaf NodeKind = "leaf"
)

// Node is one node of the visualization tree.
type Node struct {
	StepID   string   `json:"stepId,omitempty"`
	Question string   `json:"question"`
	Kind     NodeKind `json:"kind"`

	// BranchLabel is the label of the choice this node hangs off, when it does.
	BranchLabel string `json:"branchLabel,omitempty"`

	// Synthetic marks a leaf standing in for a choice with no outgoing edge,
	// so dead ends stay visible in the tree.
	Synthetic bool `json:"synthetic,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// BuildTree constructs the visualization tree for a graph. Each branch carries
// its own cloned visited set, so two branches may legally reconverge on a
// shared downstream step, while an actual cycle within one branch still
// terminates the recursion. An unusable graph yields a nil tree.
func BuildTree(g *domain.FormGraph) *Node {
	if !g.IsUsable() {
		return nil
	}
	return buildNode(g, g.RootStepID, "", map[string]bool{})
}

func buildNode(g *domain.FormGraph, stepID, branchLabel string, visited map[string]bool) *Node {
	step, ok := g.Step(stepID)
	if !ok || visited[stepID] {
		return nil
	}
	visited[stepID] = true

	node := &Node{
		StepID:      stepID,
		Question:    stepQuestion(step),
		BranchLabel: branchLabel,
	}

	switch step.Type {
	case domain.StepChoice:
		for _, c := range step.Choices {
			if c.NextStepID == nil {
				node.Children = append(node.Children, &Node{
					Question:    c.Label,
					Kind:        KindLeaf,
					BranchLabel: c.Label,
					Synthetic:   true,
				})
				continue
			}
			if child := buildNode(g, *c.NextStepID, c.Label, cloneVisited(visited)); child != nil {
				node.Children = append(node.Children, child)
			}
		}
	case domain.StepConclusion:
		// Terminal by construction.
	default:
		if step.NextStepID != nil {
			if child := buildNode(g, *step.NextStepID, "", cloneVisited(visited)); child != nil {
				node.Children = append(node.Children, child)
			}
		}
	}

	node.Kind = classify(g, step, node)
	return node
}

func classify(g *domain.FormGraph, step *domain.Step, node *Node) NodeKind {
	if step.ID == g.RootStepID {
		return KindRoot
	}
	if step.Type == domain.StepChoice {
		return KindDecision
	}
	for _, child := range node.Children {
		if !child.Synthetic {
			return KindDecision
		}
	}
	return KindLeaf
}

func stepQuestion(step *domain.Step) string {
	if step.Type == domain.StepConclusion {
		return step.ThankYouMessage
	}
	return step.Question
}

func cloneVisited(visited map[string]bool) map[string]bool {
	out := make(map[string]bool, len(visited))
	for k, v := range visited {
		out[k] = v
	}
	return out
}
