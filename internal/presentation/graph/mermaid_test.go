package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalim/lattice/pkg/domain"
)

func strPtr(s string) *string { return &s }

func sampleGraph() *domain.FormGraph {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{
		ID: "q1", Type: domain.StepChoice, Question: "Pickup or delivery?",
		Choices: []domain.Choice{
			{ID: "p", Label: "Pickup", NextStepID: strPtr("end")},
			{ID: "d", Label: "Delivery", NextStepID: nil},
		},
	}
	g.Steps["end"] = &domain.Step{ID: "end", Type: domain.StepConclusion, ThankYouMessage: "Thanks!"}
	return g
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := GenerateMermaid(sampleGraph(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `q1{"Pickup or delivery?"}`)
	assert.Contains(t, out, `end(("Thanks!"))`)
	assert.Contains(t, out, `q1 -- "Pickup" --> end`)
}

func TestGenerateMermaid_DanglingEdgeRendersDotted(t *testing.T) {
	out := GenerateMermaid(sampleGraph(), nil)

	assert.Contains(t, out, `q1 -. "Delivery" .-> __end__`)
	assert.Contains(t, out, `__end__(("end"))`)
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "step-1.a"
	g.Steps["step-1.a"] = &domain.Step{ID: "step-1.a", Type: domain.StepText, Question: "Hi"}

	out := GenerateMermaid(g, nil)
	assert.Contains(t, out, `step_1_a[/"Hi"/]`)
	assert.NotContains(t, out, "step-1.a[/")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	overlay := &Overlay{
		VisitedSteps: []string{"q1", "q1"},
		CurrentStep:  "end",
	}
	out := GenerateMermaid(sampleGraph(), overlay)

	require.Contains(t, out, "classDef visited")
	assert.Equal(t, 1, strings.Count(out, "class q1 visited;"))
	assert.Contains(t, out, "class end current;")
}
