package draft

import (
	"context"
	"testing"
	"time"

	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fillGraph() *domain.FormGraph {
	return &domain.FormGraph{
		RootStepID: "q1",
		Steps: map[string]*domain.Step{
			"q1": {ID: "q1", Type: domain.StepText, NextStepID: strPtr("q2")},
			"q2": {ID: "q2", Type: domain.StepText},
		},
	}
}

func sampleDraft(savedAt time.Time) *domain.Draft {
	return &domain.Draft{
		Answers:       map[string]domain.Answer{"q1": {StepID: "q1", Text: "hello"}},
		History:       []string{"q1"},
		CurrentStepID: "q2",
		SavedAt:       savedAt,
	}
}

func TestStore_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	now := time.Now()

	s := NewStore(storage, "form-1", WithClock(func() time.Time { return now }))
	s.FlushSync(ctx, sampleDraft(now))

	loaded, err := s.Load(ctx, fillGraph())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "hello", loaded.Answers["q1"].Text)
	assert.Equal(t, "q2", loaded.CurrentStepID)
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("25 hours old is discarded", func(t *testing.T) {
		storage := memory.NewStorage()
		s := NewStore(storage, "form-1", WithClock(func() time.Time { return now.Add(-25 * time.Hour) }))
		s.FlushSync(ctx, sampleDraft(now))

		s2 := NewStore(storage, "form-1", WithClock(func() time.Time { return now }))
		loaded, err := s2.Load(ctx, fillGraph())
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// The expired draft is deleted, not just ignored.
		_, ok, _ := storage.GetItem(ctx, "lattice:draft:form-1")
		assert.False(t, ok)
	})

	t.Run("23 hours old is retained", func(t *testing.T) {
		storage := memory.NewStorage()
		s := NewStore(storage, "form-1", WithClock(func() time.Time { return now.Add(-23 * time.Hour) }))
		s.FlushSync(ctx, sampleDraft(now))

		s2 := NewStore(storage, "form-1", WithClock(func() time.Time { return now }))
		loaded, err := s2.Load(ctx, fillGraph())
		require.NoError(t, err)
		assert.NotNil(t, loaded)
	})
}

func TestStore_ChangedTemplateDiscardsDraft(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	now := time.Now()

	s := NewStore(storage, "form-1", WithClock(func() time.Time { return now }))
	s.FlushSync(ctx, sampleDraft(now))

	// The template lost q2 since the draft was written.
	g := &domain.FormGraph{
		RootStepID: "q1",
		Steps:      map[string]*domain.Step{"q1": {ID: "q1", Type: domain.StepText}},
	}

	loaded, err := s.Load(ctx, g)
	require.NoError(t, err)
	assert.Nil(t, loaded, "draft referencing missing steps is discarded silently")
}

func TestStore_RecordSuspendedWhileDecisionOutstanding(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	now := time.Now()

	s := NewStore(storage, "form-1",
		WithClock(func() time.Time { return now }),
		WithInterval(5*time.Millisecond),
	)
	s.FlushSync(ctx, sampleDraft(now))

	loaded, err := s.Load(ctx, fillGraph())
	require.NoError(t, err)
	require.NotNil(t, loaded, "a valid draft is surfaced for a decision")

	// While the resume/discard decision is outstanding, recording is a no-op.
	s.Record(sampleDraft(now))
	time.Sleep(30 * time.Millisecond)
	raw, ok, _ := storage.GetItem(ctx, "lattice:draft:form-1")
	require.True(t, ok)
	assert.Contains(t, raw, "hello", "surfaced draft not overwritten")

	s.Discard(ctx)
	_, ok, _ = storage.GetItem(ctx, "lattice:draft:form-1")
	assert.False(t, ok)

	// After the decision, recording works again.
	d := sampleDraft(now)
	d.Answers["q1"] = domain.Answer{StepID: "q1", Text: "fresh"}
	s.Record(d)
	time.Sleep(30 * time.Millisecond)
	raw, ok, _ = storage.GetItem(ctx, "lattice:draft:form-1")
	require.True(t, ok)
	assert.Contains(t, raw, "fresh")
}

func TestStore_MeaninglessDraftNotWritten(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	s := NewStore(storage, "form-1", WithInterval(time.Millisecond))

	s.Record(&domain.Draft{})
	s.Record(&domain.Draft{CustomerPhone: "---"})
	time.Sleep(20 * time.Millisecond)

	_, ok, _ := storage.GetItem(ctx, "lattice:draft:form-1")
	assert.False(t, ok)
}

func TestMeaningful(t *testing.T) {
	tests := []struct {
		name  string
		draft *domain.Draft
		want  bool
	}{
		{"nil", nil, false},
		{"empty", &domain.Draft{}, false},
		{"answer", &domain.Draft{Answers: map[string]domain.Answer{"q1": {}}}, true},
		{"phone digits", &domain.Draft{CustomerPhone: "(555) 123"}, true},
		{"phone punctuation only", &domain.Draft{CustomerPhone: "()-"}, false},
		{"typed input", &domain.Draft{InputValue: "hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Meaningful(tt.draft))
		})
	}
}

func TestStore_StorageFailuresAreNonFatal(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	storage.FailWrites(true)

	s := NewStore(storage, "form-1", WithInterval(time.Millisecond))
	s.FlushSync(ctx, sampleDraft(time.Now()))

	loaded, err := s.Load(ctx, fillGraph())
	assert.NoError(t, err, "storage trouble degrades to no draft")
	assert.Nil(t, loaded)
}
