package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalim/lattice/pkg/domain"
)

func strPtr(s string) *string { return &s }

func findingFor(r *Report, stepID string) *Finding {
	for i := range r.Findings {
		if r.Findings[i].StepID == stepID {
			return &r.Findings[i]
		}
	}
	return nil
}

func TestValidate_CleanGraph(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{ID: "q1", Type: domain.StepText, NextStepID: strPtr("end")}
	g.Steps["end"] = &domain.Step{ID: "end", Type: domain.StepConclusion}

	report := Validate(g)
	assert.Empty(t, report.Findings)
	assert.False(t, report.HasErrors())
}

func TestValidate_MissingRoot(t *testing.T) {
	t.Run("No Root Set", func(t *testing.T) {
		report := Validate(domain.NewFormGraph())
		require.Len(t, report.Findings, 1)
		assert.True(t, report.HasErrors())
	})

	t.Run("Root Does Not Exist", func(t *testing.T) {
		g := domain.NewFormGraph()
		g.RootStepID = "gone"
		report := Validate(g)
		require.Len(t, report.Findings, 1)
		assert.Equal(t, SeverityError, report.Findings[0].Severity)
		assert.Contains(t, report.Findings[0].Message, "gone")
	})
}

func TestValidate_DanglingEdgesAreWarnings(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{
		ID:   "q1",
		Type: domain.StepChoice,
		Choices: []domain.Choice{
			{ID: "a", Label: "A", NextStepID: strPtr("missing")},
			{ID: "b", Label: "B", NextStepID: nil},
		},
	}

	report := Validate(g)
	assert.False(t, report.HasErrors())

	f := findingFor(report, "q1")
	require.NotNil(t, f)
	assert.Equal(t, SeverityWarning, f.Severity)
	assert.Contains(t, f.Message, `"missing"`)
}

func TestValidate_UnreachableStep(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{ID: "q1", Type: domain.StepConclusion}
	g.Steps["orphan"] = &domain.Step{ID: "orphan", Type: domain.StepText}

	report := Validate(g)
	assert.False(t, report.HasErrors())
	f := findingFor(report, "orphan")
	require.NotNil(t, f)
	assert.Contains(t, f.Message, "unreachable")
}

func TestValidate_DuplicateChoiceIDs(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{
		ID:   "q1",
		Type: domain.StepChoice,
		Choices: []domain.Choice{
			{ID: "a", Label: "First"},
			{ID: "a", Label: "Second"},
		},
	}

	report := Validate(g)
	assert.True(t, report.HasErrors())
}

func TestValidate_NoConclusionWarning(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{ID: "q1", Type: domain.StepText}

	report := Validate(g)
	assert.False(t, report.HasErrors())
	require.NotEmpty(t, report.Findings)
	assert.Contains(t, report.Findings[len(report.Findings)-1].Message, "conclusion")
}

func TestValidate_EmptyChoiceStepIsError(t *testing.T) {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{ID: "q1", Type: domain.StepChoice}

	report := Validate(g)
	assert.True(t, report.HasErrors())
}
