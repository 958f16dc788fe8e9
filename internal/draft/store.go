// Package draft implements the filler-side persistence coordinator: a TTL'd,
// debounced mirror of an in-progress fill session kept in the Storage
// collaborator. Drafts are a best-effort convenience; every storage failure
// degrades to "no draft available" rather than interrupting the session.
package draft

import (
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

const (
	// DefaultTTL is how long a draft stays resumable.
	DefaultTTL = 24 * time.Hour
	// DefaultInterval is the debounce window between a change and its write.
	DefaultInterval = 500 * time.Millisecond

	keyPrefix = "lattice:draft:"
)

// Store persists one form's in-progress draft.
type Store struct {
	storage  ports.Storage
	formID   string
	ttl      time.Duration
	interval time.Duration
	timer    debounce.Timer
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time

	mu sync.Mutex
	// awaitingDecision is set while a loaded draft waits for an explicit
	// resume/discard choice; recording is suspended until then so the
	// surfaced draft cannot be overwritten from under the user.
	awaitingDecision bool
}

// Option configures the Store.
type Option func(*Store)

// WithTTL overrides the draft time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithInterval overrides the debounce window.
func WithInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics reports draft writes to the given metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a draft store keyed by form id.
func NewStore(storage ports.Storage, formID string, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		formID:   formID,
		ttl:      DefaultTTL,
		interval: DefaultInterval,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key() string {
	return keyPrefix + s.formID
}

// Load reads any existing draft and checks it against the current graph.
// An expired draft, a draft referencing steps the template no longer has, and
// every storage failure all yield (nil, nil): the fill session simply starts
// fresh. A returned draft is surfaced for an explicit resume/discard decision;
// it is never auto-applied, and recording stays suspended until Resume or
// Discard is called.
func (s *Store) Load(ctx context.Context, g *domain.FormGraph) (*domain.Draft, error) {
	raw, ok, err := s.storage.GetItem(ctx, s.key())
	if err != nil {
		s.logger.Debug("draft storage unavailable, starting fresh", "form", s.formID, "err", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	var d domain.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.logger.Debug("discarding unreadable draft", "form", s.formID, "err", err)
		s.remove(ctx)
		return nil, nil
	}

	if s.now().Sub(d.SavedAt) > s.ttl {
		s.logger.Debug("discarding expired draft", "form", s.formID, "savedAt", d.SavedAt)
		s.remove(ctx)
		return nil, nil
	}

	// The template may have changed since the draft was written. Resuming
	// into steps that no longer exist would leave the session inconsistent,
	// so the draft is dropped silently.
	for _, id := range d.StepIDs() {
		if _, exists := g.Step(id); !exists {
			s.logger.Debug("discarding draft for changed template", "form", s.formID, "missingStep", id)
			s.remove(ctx)
			return nil, nil
		}
	}

	s.mu.Lock()
	s.awaitingDecision = true
	s.mu.Unlock()
	return &d, nil
}

// Resume accepts the surfaced draft and re-enables recording.
func (s *Store) Resume() {
	s.mu.Lock()
	s.awaitingDecision = false
	s.mu.Unlock()
}

// Discard rejects the surfaced draft, deletes it, and re-enables recording.
func (s *Store) Discard(ctx context.Context) {
	s.mu.Lock()
	s.awaitingDecision = false
	s.mu.Unlock()
	s.remove(ctx)
}

// Record schedules a debounced write of the draft. Drafts without meaningful
// content are not written, and nothing is written while a resume/discard
// decision is outstanding.
func (s *Store) Record(d *domain.Draft) {
	s.mu.Lock()
	waiting := s.awaitingDecision
	s.mu.Unlock()
	if waiting || !Meaningful(d) {
		return
	}

	snapshot := *d
	s.timer.Schedule(s.interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.write(ctx, &snapshot)
	})
}

// FlushSync writes the draft immediately (the tab-hide/unload path), if it has
// any answer or phone content. Failures are swallowed; an unload save is
// advisory.
func (s *Store) FlushSync(ctx context.Context, d *domain.Draft) {
	s.timer.Stop()
	if len(d.Answers) == 0 && digitsOf(d.CustomerPhone) == "" {
		return
	}
	snapshot := *d
	s.write(ctx, &snapshot)
}

// Delete removes the draft. Called on successful submission and on explicit
// "start fresh"; a draft must never outlive the submission it described.
func (s *Store) Delete(ctx context.Context) {
	s.timer.Stop()
	s.remove(ctx)
}

// Close stops the debounce timer without writing.
func (s *Store) Close() {
	s.timer.Stop()
}

func (s *Store) write(ctx context.Context, d *domain.Draft) {
	d.SavedAt = s.now()
	raw, err := json.Marshal(d)
	if err != nil {
		s.logger.Debug("failed to serialize draft", "form", s.formID, "err", err)
		return
	}
	if err := s.storage.SetItem(ctx, s.key(), string(raw)); err != nil {
		// Quota exhaustion and connectivity problems are expected here.
		s.logger.Debug("draft write failed", "form", s.formID, "err", err)
		return
	}
	if s.metrics != nil {
		s.metrics.DraftWritesTotal.Inc()
	}
}

func (s *Store) remove(ctx context.Context) {
	if err := s.storage.RemoveItem(ctx, s.key()); err != nil {
		s.logger.Debug("draft delete failed", "form", s.formID, "err", err)
	}
}

// Meaningful reports whether the draft has content worth persisting: at least
// one answer, or a non-empty phone or input field.
func Meaningful(d *domain.Draft) bool {
	if d == nil {
		return false
	}
	return len(d.Answers) > 0 || digitsOf(d.CustomerPhone) != "" || d.InputValue != ""
}

func digitsOf(s string) string {
	var out []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
