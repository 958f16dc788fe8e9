package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestValidator_LookupsDefaultToUnlimited(t *testing.T) {
	v := NewValidator(memory.NewInventorySource(), "form-1")

	assert.Nil(t, v.Remaining("q1", "c1"))
	assert.False(t, v.IsSoldOut("q1", "c1"))
}

func TestValidator_Refresh_ClampsSelections(t *testing.T) {
	ctx := context.Background()
	source := memory.NewInventorySource()
	source.SetStatuses("form-1", []domain.InventoryStatus{
		{StepID: "q1", ChoiceID: "c1", Remaining: intPtr(2)},
		{StepID: "q1", ChoiceID: "c2", Remaining: nil},
		{StepID: "q1", ChoiceID: "c3", Remaining: intPtr(0), IsSoldOut: true},
	})

	v := NewValidator(source, "form-1")
	selections := map[string]int{"c1": 5, "c2": 10, "c3": 1, "c4": 3}

	adjustments, err := v.Refresh(ctx, "q1", selections)
	require.NoError(t, err)

	assert.Equal(t, 2, selections["c1"], "clamped to fresh remaining")
	assert.Equal(t, 10, selections["c2"], "unlimited stock never clamps")
	assert.Equal(t, 0, selections["c3"], "sold out clamps to zero")
	assert.Equal(t, 3, selections["c4"], "untracked choice is unlimited")

	require.Len(t, adjustments, 2)
	byChoice := map[string]Adjustment{}
	for _, a := range adjustments {
		byChoice[a.ChoiceID] = a
	}
	assert.Equal(t, Adjustment{StepID: "q1", ChoiceID: "c1", From: 5, To: 2}, byChoice["c1"])
	assert.Equal(t, Adjustment{StepID: "q1", ChoiceID: "c3", From: 1, To: 0}, byChoice["c3"])

	// The fresh snapshot becomes the cached one.
	assert.Equal(t, 2, *v.Remaining("q1", "c1"))
	assert.True(t, v.IsSoldOut("q1", "c3"))
}

func TestValidator_Refresh_SourceFailure(t *testing.T) {
	source := memory.NewInventorySource()
	source.FailWith(errors.New("inventory feed down"))

	v := NewValidator(source, "form-1")
	_, err := v.Refresh(context.Background(), "q1", map[string]int{"c1": 1})
	assert.Error(t, err)
}

func TestCheckStockIssues(t *testing.T) {
	answers := []domain.Answer{
		{StepID: "q1", Quantities: []domain.QuantityAnswer{
			{ChoiceID: "c1", Label: "Coffee", Quantity: 5},
			{ChoiceID: "c2", Label: "Tea", Quantity: 1},
			{ChoiceID: "c3", Label: "Cake", Quantity: 0},
		}},
		{StepID: "q2", Quantities: []domain.QuantityAnswer{
			{ChoiceID: "c4", Label: "Mug", Quantity: 2},
		}},
	}
	fresh := []domain.InventoryStatus{
		{StepID: "q1", ChoiceID: "c1", Remaining: intPtr(2)},
		{StepID: "q1", ChoiceID: "c2", Remaining: intPtr(3)},
		{StepID: "q2", ChoiceID: "c4", Remaining: intPtr(0), IsSoldOut: true},
	}

	issues := CheckStockIssues(answers, fresh)
	require.Len(t, issues, 2)

	assert.Equal(t, "c1", issues[0].ChoiceID)
	assert.False(t, issues[0].SoldOut)
	assert.Equal(t, 2, issues[0].Remaining)
	assert.Equal(t, 5, issues[0].Requested)
	assert.Contains(t, issues[0].String(), "only 2")

	assert.Equal(t, "c4", issues[1].ChoiceID)
	assert.True(t, issues[1].SoldOut)
	assert.Contains(t, issues[1].String(), "sold out")
}

func TestCheckStockIssues_NoViolations(t *testing.T) {
	answers := []domain.Answer{
		{StepID: "q1", Quantities: []domain.QuantityAnswer{
			{ChoiceID: "c1", Label: "Coffee", Quantity: 1},
		}},
	}

	assert.Empty(t, CheckStockIssues(answers, nil), "no snapshot means unlimited")
	assert.Empty(t, CheckStockIssues(answers, []domain.InventoryStatus{
		{StepID: "q1", ChoiceID: "c1", Remaining: intPtr(1)},
	}))
}
