// Package middleware wraps a ports.Storage with at-rest transformations:
// encryption and PII masking for stored drafts.
package middleware

import "github.com/nvalim/lattice/pkg/ports"

// Middleware wraps a storage backend with additional behavior.
type Middleware func(ports.Storage) ports.Storage

// Chain applies middlewares left to right: the first one sees calls first.
func Chain(base ports.Storage, mws ...Middleware) ports.Storage {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
