package lattice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nvalim/lattice/internal/autosave"
	"github.com/nvalim/lattice/internal/history"
	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/internal/runtime"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/observability"
	"github.com/nvalim/lattice/pkg/ports"
)

// Version is the lattice release version. Overridden at build time via ldflags.
var Version = "0.1.0"

// FillSession collects one end user's answers for a published form.
// See NewFillSession.
type FillSession = runtime.Session

// Fill session phases, re-exported for callers driving a session loop.
const (
	PhaseQuestion  = runtime.PhaseQuestion
	PhaseContact   = runtime.PhaseContact
	PhaseReview    = runtime.PhaseReview
	PhaseSubmitted = runtime.PhaseSubmitted
)

// NewFillSession starts a fill session over the given graph.
func NewFillSession(formID string, g *domain.FormGraph, sink ports.SubmissionSink, source ports.InventorySource, opts ...runtime.Option) *FillSession {
	return runtime.NewSession(formID, g, sink, source, opts...)
}

// Fill session options, re-exported at the facade.
var (
	WithDraftStore  = runtime.WithDraftStore
	WithFillLogger  = runtime.WithLogger
	WithFillMetrics = runtime.WithMetrics
	WithRetryPolicy = runtime.WithRetryPolicy
)

// Editor is the form-building surface: it owns the working graph, the
// undo/redo log, and the autosave loop that keeps the template store current.
// An Editor is single-writer; it is not safe for concurrent use.
type Editor struct {
	templateID string
	name       string
	graph      *domain.FormGraph

	history  *history.Manager
	autosave *autosave.Coordinator

	selected string
	logger   *slog.Logger
}

// EditorOption configures a new Editor.
type EditorOption func(*editorConfig)

type editorConfig struct {
	name     string
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	onStatus func(autosave.Status)
}

// WithFormName names the form when the template does not exist yet, and
// renames it when it does.
func WithFormName(name string) EditorOption {
	return func(c *editorConfig) {
		c.name = name
	}
}

// WithAutosaveInterval overrides the debounce interval of the autosave loop.
func WithAutosaveInterval(d time.Duration) EditorOption {
	return func(c *editorConfig) {
		c.interval = d
	}
}

// WithEditorLogger configures a logger.
func WithEditorLogger(logger *slog.Logger) EditorOption {
	return func(c *editorConfig) {
		c.logger = logger
	}
}

// WithEditorMetrics reports autosave outcomes to the given metric set.
func WithEditorMetrics(m *observability.Metrics) EditorOption {
	return func(c *editorConfig) {
		c.metrics = m
	}
}

// WithSaveStatusFunc observes autosave status transitions, for a status
// indicator in a UI.
func WithSaveStatusFunc(fn func(autosave.Status)) EditorOption {
	return func(c *editorConfig) {
		c.onStatus = fn
	}
}

// NewEditor opens the template for editing, creating a fresh empty form when
// the template does not exist yet.
func NewEditor(ctx context.Context, templateID string, store ports.TemplateStore, opts ...EditorOption) (*Editor, error) {
	cfg := editorConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := cfg.name
	g := domain.NewFormGraph()

	tpl, err := store.Load(ctx, templateID)
	switch {
	case err == nil:
		if tpl.Graph != nil {
			g = tpl.Graph.Clone()
		}
		if name == "" {
			name = tpl.Name
		}
	case errors.Is(err, domain.ErrTemplateNotFound):
		if name == "" {
			name = "Untitled form"
		}
	default:
		return nil, err
	}

	e := &Editor{
		templateID: templateID,
		name:       name,
		graph:      g,
		logger:     cfg.logger,
	}
	e.history = history.NewManager(history.WithRestoreHook(func() {
		e.selected = ""
	}))
	e.history.Load(g)

	saveOpts := []autosave.Option{autosave.WithLogger(cfg.logger)}
	if cfg.interval > 0 {
		saveOpts = append(saveOpts, autosave.WithInterval(cfg.interval))
	}
	if cfg.metrics != nil {
		saveOpts = append(saveOpts, autosave.WithMetrics(cfg.metrics))
	}
	if cfg.onStatus != nil {
		saveOpts = append(saveOpts, autosave.WithStatusFunc(cfg.onStatus))
	}
	e.autosave = autosave.NewCoordinator(templateID, store, name, g, saveOpts...)

	return e, nil
}

// Graph returns the working graph. Callers must treat it as read-only and go
// through the editing methods for changes.
func (e *Editor) Graph() *domain.FormGraph {
	return e.graph
}

// Name returns the form's display name.
func (e *Editor) Name() string {
	return e.name
}

// Rename changes the form's display name.
func (e *Editor) Rename(name string) {
	if name == e.name {
		return
	}
	e.name = name
	e.commit()
}

// SelectStep marks a step as selected. Selecting an id that is not in the
// graph clears the selection.
func (e *Editor) SelectStep(id string) {
	if _, ok := e.graph.Step(id); !ok {
		e.selected = ""
		return
	}
	e.selected = id
}

// SelectedStep returns the currently selected step, if any.
func (e *Editor) SelectedStep() (*domain.Step, bool) {
	if e.selected == "" {
		return nil, false
	}
	return e.graph.Step(e.selected)
}

// UpdateStep replaces a step in place and records an undo snapshot.
func (e *Editor) UpdateStep(step *domain.Step) {
	e.graph.UpdateStep(step)
	e.commit()
}

// InsertAfter splices a new step in behind an existing one. The new step
// inherits the edge the splice point previously had. For a choice step,
// choiceID selects which option's edge is spliced.
func (e *Editor) InsertAfter(afterStepID, choiceID string, step *domain.Step) {
	if step != nil && step.ID == "" {
		step.ID = uuid.NewString()
	}
	e.graph.InsertAfter(afterStepID, choiceID, step)
	e.commit()
}

// DeleteStep removes a step. Every edge that pointed at it becomes an
// intentional dead end rather than an error.
func (e *Editor) DeleteStep(id string) {
	e.graph.DeleteStep(id)
	if e.selected == id {
		e.selected = ""
	}
	e.commit()
}

// Undo restores the previous snapshot. Returns false when at the oldest state.
func (e *Editor) Undo() bool {
	g, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.graph = g
	e.autosave.Update(e.name, e.graph)
	return true
}

// Redo restores the next snapshot. Returns false when at the newest state.
func (e *Editor) Redo() bool {
	g, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.graph = g
	e.autosave.Update(e.name, e.graph)
	return true
}

// CanUndo reports whether Undo would succeed.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// SaveStatus returns the autosave indicator state.
func (e *Editor) SaveStatus() autosave.Status {
	return e.autosave.Status()
}

// Flush forces any pending autosave to complete now.
func (e *Editor) Flush(ctx context.Context) {
	e.autosave.Flush(ctx)
}

// FlushAdvisory kicks off a fire-and-forget save, for teardown paths that
// cannot wait on the result.
func (e *Editor) FlushAdvisory() {
	e.autosave.FlushAdvisory()
}

// Close stops the autosave loop. Pending changes are not flushed; call Flush
// first for a clean shutdown.
func (e *Editor) Close() {
	e.autosave.Close()
}

func (e *Editor) commit() {
	if diff := domain.DiffGraphs(e.history.Current(), e.graph); diff != nil {
		e.logger.Debug("graph edited",
			"added", len(diff.Added),
			"removed", len(diff.Removed),
			"changed", len(diff.Changed))
	}
	e.history.Push(e.graph)
	e.autosave.Update(e.name, e.graph)
}
