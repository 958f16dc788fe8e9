// Package history maintains the editing session's linear undo/redo log of
// graph snapshots.
package history

import (
	"github.com/nvalim/lattice/pkg/domain"
)

// Manager holds an ordered list of deep graph snapshots plus a cursor.
// Entries are immutable once pushed: a fresh deep copy is taken on every push
// and handed out on every undo/redo, so continuing to edit after an undo
// cannot corrupt a future-redo snapshot.
type Manager struct {
	snapshots []*domain.FormGraph
	cursor    int
	onRestore func()
}

// Option configures the Manager.
type Option func(*Manager)

// WithRestoreHook registers a callback invoked on every undo and redo. The
// editor uses it to clear its selected-step pointer, since the restored graph
// may no longer contain that id.
func WithRestoreHook(fn func()) Option {
	return func(m *Manager) {
		m.onRestore = fn
	}
}

// NewManager creates an empty history.
func NewManager(opts ...Option) *Manager {
	m := &Manager{cursor: -1}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load seeds the history with a single snapshot at cursor 0, discarding any
// previous entries. CanUndo is false right after a load.
func (m *Manager) Load(g *domain.FormGraph) {
	m.snapshots = []*domain.FormGraph{g.Clone()}
	m.cursor = 0
}

// Push records a new snapshot. Any redo tail past the cursor is discarded,
// which is standard linear-undo semantics.
func (m *Manager) Push(g *domain.FormGraph) {
	m.snapshots = append(m.snapshots[:m.cursor+1], g.Clone())
	m.cursor = len(m.snapshots) - 1
}

// Undo steps the cursor back and returns a deep copy of that snapshot.
// Returns false when there is nothing to undo.
func (m *Manager) Undo() (*domain.FormGraph, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	m.cursor--
	if m.onRestore != nil {
		m.onRestore()
	}
	return m.snapshots[m.cursor].Clone(), true
}

// Redo steps the cursor forward and returns a deep copy of that snapshot.
// Returns false when there is nothing to redo.
func (m *Manager) Redo() (*domain.FormGraph, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.cursor++
	if m.onRestore != nil {
		m.onRestore()
	}
	return m.snapshots[m.cursor].Clone(), true
}

// Current returns the snapshot under the cursor, or nil when the history is
// empty. The returned graph is the stored copy and must not be mutated.
func (m *Manager) Current() *domain.FormGraph {
	if m.cursor < 0 {
		return nil
	}
	return m.snapshots[m.cursor]
}

// CanUndo reports whether an earlier snapshot exists.
func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (m *Manager) CanRedo() bool {
	return m.cursor >= 0 && m.cursor < len(m.snapshots)-1
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int {
	return len(m.snapshots)
}
