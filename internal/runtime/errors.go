package runtime

import (
	"strings"

	"github.com/nvalim/lattice/internal/inventory"
)

// StockError aborts an advance or submit when live inventory no longer covers
// the user's selections. Callers surface the individual issues and send the
// user back to adjust quantities.
type StockError struct {
	Issues []inventory.StockIssue
}

func (e *StockError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return "stock changed: " + strings.Join(msgs, "; ")
}
