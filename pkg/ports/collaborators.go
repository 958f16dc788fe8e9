package ports

import (
	"context"

	"github.com/nvalim/lattice/pkg/domain"
)

// InventorySource provides a fresh stock snapshot for a form.
// Used by the inventory validator at every re-validation checkpoint.
type InventorySource interface {
	FetchStatus(ctx context.Context, formID string) ([]domain.InventoryStatus, error)
}

// SubmissionSink accepts a finished submission. Idempotency is not guaranteed
// by the sink; the fill session must not submit twice for one user action.
type SubmissionSink interface {
	Submit(ctx context.Context, sub *domain.Submission) error
}
