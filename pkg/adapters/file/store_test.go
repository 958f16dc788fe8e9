package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/ports"
)

func strPtr(s string) *string { return &s }

func sampleTemplate() *ports.Template {
	g := domain.NewFormGraph()
	g.RootStepID = "q1"
	g.Steps["q1"] = &domain.Step{
		ID:         "q1",
		Type:       domain.StepText,
		Question:   "Name?",
		NextStepID: strPtr("q2"),
	}
	g.Steps["q2"] = &domain.Step{
		ID:              "q2",
		Type:            domain.StepConclusion,
		ThankYouMessage: "Thanks!",
	}
	return &ports.Template{Name: "Order Form", Graph: g}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	require.NoError(t, store.Save(ctx, "orders", sampleTemplate()))

	tpl, err := store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "Order Form", tpl.Name)
	assert.Equal(t, "q1", tpl.Graph.RootStepID)
	require.Len(t, tpl.Graph.Steps, 2)

	q1, ok := tpl.Graph.Step("q1")
	require.True(t, ok)
	assert.Equal(t, domain.StepText, q1.Type)
	require.NotNil(t, q1.NextStepID)
	assert.Equal(t, "q2", *q1.NextStepID)
}

func TestStore_LoadFillsStepIDsFromKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	doc := `name: Minimal
root: start
steps:
  start:
    type: conclusion
    thankYouMessage: Done
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal.yaml"), []byte(doc), 0644))

	tpl, err := New(dir).Load(ctx, "minimal")
	require.NoError(t, err)
	step, ok := tpl.Graph.Step("start")
	require.True(t, ok)
	assert.Equal(t, "start", step.ID)
}

func TestStore_LoadNotFound(t *testing.T) {
	_, err := New(t.TempDir()).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(dir)

	require.NoError(t, store.Save(ctx, "orders", sampleTemplate()))
	require.NoError(t, store.Save(ctx, "orders", sampleTemplate()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "orders.yaml", entries[0].Name())
}

func TestStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	require.NoError(t, store.Save(ctx, "a", sampleTemplate()))
	require.NoError(t, store.Save(ctx, "b", sampleTemplate()))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a")) // idempotent

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestStore_LoadMeta(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	doc := `name: Annotated
root: start
steps:
  start:
    type: conclusion
meta:
  author: bakery-team
  version: "2"
  tags: [orders, seasonal]
  campaign: easter
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "annotated.yaml"), []byte(doc), 0644))

	meta, err := New(dir).LoadMeta(ctx, "annotated")
	require.NoError(t, err)
	assert.Equal(t, "bakery-team", meta.Author)
	assert.Equal(t, "2", meta.Version)
	assert.Equal(t, []string{"orders", "seasonal"}, meta.Tags)
	assert.Equal(t, "easter", meta.Extra["campaign"])
}
