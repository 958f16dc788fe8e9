// Package inventory compares locally held stock snapshots against fresh ones
// from the inventory source. The fill session re-validates at every checkpoint
// that precedes a commit: leaving a quantity step, leaving contact capture,
// and immediately before final submit.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/observability"
	"github.com/nvalim/lattice/pkg/ports"
)

// Validator holds the last known stock snapshot for one form.
type Validator struct {
	source  ports.InventorySource
	formID  string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.RWMutex
	statuses []domain.InventoryStatus
}

// Option configures the Validator.
type Option func(*Validator)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMetrics reports clamps to the given metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// NewValidator creates a validator for one form. Until the first refresh,
// every choice reports unlimited stock.
func NewValidator(source ports.InventorySource, formID string, opts ...Option) *Validator {
	v := &Validator{
		source: source,
		formID: formID,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Remaining returns the remaining count for a choice, or nil for unlimited.
// A choice without a status entry is unlimited.
func (v *Validator) Remaining(stepID, choiceID string) *int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if st := v.lookup(stepID, choiceID); st != nil {
		return st.Remaining
	}
	return nil
}

// IsSoldOut reports whether a choice is sold out; missing entries are not.
func (v *Validator) IsSoldOut(stepID, choiceID string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if st := v.lookup(stepID, choiceID); st != nil {
		return st.IsSoldOut
	}
	return false
}

// Statuses returns a copy of the last known snapshot.
func (v *Validator) Statuses() []domain.InventoryStatus {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.InventoryStatus(nil), v.statuses...)
}

func (v *Validator) lookup(stepID, choiceID string) *domain.InventoryStatus {
	for i := range v.statuses {
		if v.statuses[i].StepID == stepID && v.statuses[i].ChoiceID == choiceID {
			return &v.statuses[i]
		}
	}
	return nil
}

// Adjustment records a selection clamped down after a refresh.
type Adjustment struct {
	StepID   string
	ChoiceID string
	From     int
	To       int
}

// Refresh fetches a fresh snapshot and clamps any in-progress selection for
// stepID that now exceeds remaining stock, reporting each clamp. Selections
// are never silently left over-limit. The selections map is mutated in place.
func (v *Validator) Refresh(ctx context.Context, stepID string, selections map[string]int) ([]Adjustment, error) {
	fresh, err := v.source.FetchStatus(ctx, v.formID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	v.mu.Lock()
	v.statuses = fresh
	v.mu.Unlock()

	var adjustments []Adjustment
	for choiceID, qty := range selections {
		if qty <= 0 {
			continue
		}
		remaining := remainingIn(fresh, stepID, choiceID)
		if remaining == nil || qty <= *remaining {
			continue
		}
		selections[choiceID] = *remaining
		adjustments = append(adjustments, Adjustment{
			StepID:   stepID,
			ChoiceID: choiceID,
			From:     qty,
			To:       *remaining,
		})
		v.logger.Debug("clamped selection to live stock",
			"form", v.formID, "step", stepID, "choice", choiceID, "from", qty, "to", *remaining)
		if v.metrics != nil {
			v.metrics.StockClampsTotal.Inc()
		}
	}
	return adjustments, nil
}

// StockIssue is one recorded quantity that live stock can no longer cover.
// SoldOut and Remaining are kept apart because they drive different
// corrective UI.
type StockIssue struct {
	StepID    string
	ChoiceID  string
	Label     string
	Requested int
	Remaining int
	SoldOut   bool
}

func (i StockIssue) String() string {
	if i.SoldOut {
		return fmt.Sprintf("%q is now sold out", i.Label)
	}
	return fmt.Sprintf("only %d of %q left (you selected %d)", i.Remaining, i.Label, i.Requested)
}

// CheckStockIssues compares every recorded positive-quantity answer against a
// fresh snapshot and returns one issue per violation.
func CheckStockIssues(answers []domain.Answer, fresh []domain.InventoryStatus) []StockIssue {
	var issues []StockIssue
	for _, a := range answers {
		for _, qa := range a.Quantities {
			if qa.Quantity <= 0 {
				continue
			}
			remaining := remainingIn(fresh, a.StepID, qa.ChoiceID)
			if remaining == nil || qa.Quantity <= *remaining {
				continue
			}
			issues = append(issues, StockIssue{
				StepID:    a.StepID,
				ChoiceID:  qa.ChoiceID,
				Label:     qa.Label,
				Requested: qa.Quantity,
				Remaining: *remaining,
				SoldOut:   *remaining == 0,
			})
		}
	}
	return issues
}

func remainingIn(statuses []domain.InventoryStatus, stepID, choiceID string) *int {
	for i := range statuses {
		if statuses[i].StepID == stepID && statuses[i].ChoiceID == choiceID {
			if statuses[i].IsSoldOut && statuses[i].Remaining == nil {
				zero := 0
				return &zero
			}
			return statuses[i].Remaining
		}
	}
	return nil
}
