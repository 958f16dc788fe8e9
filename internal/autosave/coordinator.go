// Package autosave implements the editor-side persistence coordinator: a
// debounced, idempotence-checked background save of the editable name+graph
// pair against the template store.
package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nvalim/lattice/internal/debounce"
	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/observability"
	"github.com/nvalim/lattice/pkg/ports"
)

// Status is the user-visible save state of the editing session.
type Status string

const (
	// StatusSaved means the store holds the current state.
	StatusSaved Status = "saved"
	// StatusPending means there are unsaved edits waiting for the debounce window.
	StatusPending Status = "pending"
	// StatusSaving means a save is in flight.
	StatusSaving Status = "saving"
)

// DefaultInterval is the debounce window between an edit and the save attempt.
const DefaultInterval = 1500 * time.Millisecond

// envelope is the serialized form compared for idempotence. Equality is
// checked on content, not on timestamps, so a stale save response can never
// make newer local state look saved.
type envelope struct {
	Name  string            `json:"name"`
	Graph *domain.FormGraph `json:"graph"`
}

// Coordinator watches the editable {name, graph} pair and keeps the template
// store in sync with it, one save at a time.
type Coordinator struct {
	templateID string
	store      ports.TemplateStore
	interval   time.Duration
	timer      debounce.Timer
	logger     *slog.Logger
	metrics    *observability.Metrics
	onStatus   func(Status)
	onError    func(error)

	mu        sync.Mutex
	lastSaved []byte
	pending   *envelope
	inFlight  bool
	status    Status
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithInterval overrides the debounce window.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics reports save outcomes to the given metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithStatusFunc registers a callback for status changes (the editor's
// passive saved/pending indicator).
func WithStatusFunc(fn func(Status)) Option {
	return func(c *Coordinator) {
		c.onStatus = fn
	}
}

// WithErrorFunc registers a callback for save failures. Failures are
// retryable, never fatal to the in-memory session.
func WithErrorFunc(fn func(error)) Option {
	return func(c *Coordinator) {
		c.onError = fn
	}
}

// NewCoordinator creates a coordinator for one template's editing session.
// The given name and graph seed the last-saved state, so an unedited session
// starts as saved.
func NewCoordinator(templateID string, store ports.TemplateStore, name string, g *domain.FormGraph, opts ...Option) *Coordinator {
	c := &Coordinator{
		templateID: templateID,
		store:      store,
		interval:   DefaultInterval,
		logger:     logging.NewNop(),
		status:     StatusSaved,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastSaved, _ = json.Marshal(envelope{Name: name, Graph: g})
	return c
}

// Update observes a change to the editable pair. A no-op change (serializing
// identically to the last saved state, e.g. an undo back to it) is marked
// saved immediately and never issues a save call.
func (c *Coordinator) Update(name string, g *domain.FormGraph) {
	env := &envelope{Name: name, Graph: g.Clone()}
	serialized, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("failed to serialize editor state", "err", err)
		return
	}

	c.mu.Lock()
	if bytes.Equal(serialized, c.lastSaved) {
		c.pending = nil
		c.setStatusLocked(StatusSaved)
		c.mu.Unlock()
		c.timer.Stop()
		if c.metrics != nil {
			c.metrics.AutosaveTotal.WithLabelValues("noop").Inc()
		}
		return
	}
	c.pending = env
	c.setStatusLocked(StatusPending)
	c.mu.Unlock()

	c.timer.Schedule(c.interval, c.flush)
}

// Flush saves any pending state immediately, bypassing the debounce window.
func (c *Coordinator) Flush(ctx context.Context) {
	c.timer.Stop()
	c.flushWith(ctx)
}

// FlushAdvisory is the teardown/page-hide path: one best-effort, fire-and-forget
// save that must not block navigation. There is no success callback and no
// durability guarantee.
func (c *Coordinator) FlushAdvisory() {
	c.timer.Stop()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c.flushWith(ctx)
	}()
}

// Status returns the current save status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close stops the debounce timer. Pending state is not flushed; callers that
// care should Flush first.
func (c *Coordinator) Close() {
	c.timer.Stop()
}

func (c *Coordinator) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.flushWith(ctx)
}

func (c *Coordinator) flushWith(ctx context.Context) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		// One save at a time. The pending state stays put and is picked up by
		// the next debounce firing, never dropped and never duplicated.
		c.mu.Unlock()
		c.timer.Schedule(c.interval, c.flush)
		return
	}
	env := c.pending
	serialized, _ := json.Marshal(env)
	c.inFlight = true
	c.setStatusLocked(StatusSaving)
	c.mu.Unlock()

	err := c.store.Save(ctx, c.templateID, &ports.Template{Name: env.Name, Graph: env.Graph})

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.setStatusLocked(StatusPending)
		c.mu.Unlock()
		c.logger.Warn("autosave failed, will retry on next debounce window", "template", c.templateID, "err", err)
		if c.metrics != nil {
			c.metrics.AutosaveTotal.WithLabelValues("error").Inc()
		}
		if c.onError != nil {
			c.onError(err)
		}
		c.timer.Schedule(c.interval, c.flush)
		return
	}

	c.lastSaved = serialized
	if c.pending == env {
		c.pending = nil
		c.setStatusLocked(StatusSaved)
	}
	// If a newer edit arrived during the save, its own debounce is already
	// scheduled; the content comparison will sort out what still needs saving.
	c.mu.Unlock()

	c.logger.Debug("autosaved template", "template", c.templateID)
	if c.metrics != nil {
		c.metrics.AutosaveTotal.WithLabelValues("ok").Inc()
	}
}

func (c *Coordinator) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.status = s
	if c.onStatus != nil {
		go c.onStatus(s)
	}
}
