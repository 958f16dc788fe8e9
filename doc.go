// Package lattice is a branching-form engine: forms are directed graphs of
// steps rather than flat question lists, so an answer can decide which
// question comes next.
//
// The package splits into two surfaces. The Editor builds and maintains a
// form graph with linear undo/redo and debounced autosave into a template
// store. A FillSession walks a published graph with one end user, keeping a
// recoverable draft, re-validating live inventory at every gate, and handing
// the finished submission to a sink with bounded retries.
//
// Storage, inventory, and submission delivery are ports; adapters for memory,
// the filesystem, Redis, and HTTP live under pkg/adapters.
package lattice
