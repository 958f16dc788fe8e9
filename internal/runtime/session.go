// Package runtime drives a single end user through a form graph: answer
// collection, contact capture, inventory re-validation, review, and
// submit-with-retry.
package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/nvalim/lattice/internal/draft"
	"github.com/nvalim/lattice/internal/inventory"
	"github.com/nvalim/lattice/internal/logging"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/observability"
	"github.com/nvalim/lattice/pkg/ports"
)

// Phases of a fill session. Submitted is the only true terminal; a conclusion
// step behaves as a special question that carries its own submit affordance.
const (
	PhaseQuestion  = "question"
	PhaseContact   = "contact"
	PhaseReview    = "review"
	PhaseSubmitted = "submitted"
)

const (
	evAdvance = "advance"
	evReview  = "review"
	evBack    = "back"
	evEdit    = "edit"
	evSubmit  = "submit"
)

// MinPhoneDigits is the least number of digits a contact phone must contain
// after stripping everything that is not a digit.
const MinPhoneDigits = 7

// Session owns one fill session's state exclusively. It is not safe for
// concurrent use; a session belongs to a single user interaction loop.
type Session struct {
	formID string
	graph  *domain.FormGraph
	sink   ports.SubmissionSink
	inv    *inventory.Validator
	drafts *draft.Store

	machine *fsm.FSM

	current    string
	history    []string
	answers    map[string]domain.Answer
	name       string
	phone      string
	selections map[string]int
	input      string
	showPhone  bool

	inFlight   bool
	submission *domain.Submission

	attempts   int
	retryBase  time.Duration
	retryMax   time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics reports submission outcomes to the given metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithDraftStore mirrors session state into the given draft store.
func WithDraftStore(store *draft.Store) Option {
	return func(s *Session) {
		s.drafts = store
	}
}

// WithRetryPolicy tunes the bounded exponential backoff used by Submit.
func WithRetryPolicy(attempts int, base, max time.Duration) Option {
	return func(s *Session) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if base > 0 {
			s.retryBase = base
		}
		if max > 0 {
			s.retryMax = max
		}
	}
}

// NewSession starts a fill session at the graph's root. An unusable graph is
// not an error: the session simply has no questions and opens at contact
// capture, because the graph may be mid-edit.
func NewSession(formID string, g *domain.FormGraph, sink ports.SubmissionSink, source ports.InventorySource, opts ...Option) *Session {
	s := &Session{
		formID:     formID,
		graph:      g,
		sink:       sink,
		inv:        inventory.NewValidator(source, formID),
		answers:    make(map[string]domain.Answer),
		selections: make(map[string]int),
		attempts:   3,
		retryBase:  200 * time.Millisecond,
		retryMax:   2 * time.Second,
		sleep:      time.Sleep,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial := PhaseQuestion
	if g.IsUsable() {
		s.current = g.RootStepID
	} else {
		initial = PhaseContact
	}

	s.machine = fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: evAdvance, Src: []string{PhaseQuestion}, Dst: PhaseContact},
			{Name: evReview, Src: []string{PhaseContact}, Dst: PhaseReview},
			{Name: evBack, Src: []string{PhaseContact, PhaseReview}, Dst: PhaseQuestion},
			{Name: evEdit, Src: []string{PhaseReview}, Dst: PhaseQuestion},
			{Name: evSubmit, Src: []string{PhaseReview, PhaseQuestion}, Dst: PhaseSubmitted},
		},
		fsm.Callbacks{},
	)
	return s
}

// Phase returns the session's current phase.
func (s *Session) Phase() string {
	return s.machine.Current()
}

// CurrentStep returns the active step, or nil when none resolves.
func (s *Session) CurrentStep() *domain.Step {
	step, _ := s.graph.Step(s.current)
	return step
}

// History returns the visited step ids in order.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Answers returns the recorded answers in visited order.
func (s *Session) Answers() []domain.Answer {
	out := make([]domain.Answer, 0, len(s.history))
	for _, id := range s.history {
		if a, ok := s.answers[id]; ok {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Input returns the in-progress text widget value.
func (s *Session) Input() string { return s.input }

// SetInput updates the in-progress text widget value.
func (s *Session) SetInput(v string) {
	s.input = v
	s.recordDraft()
}

// Selections returns a copy of the in-progress quantity selections.
func (s *Session) Selections() map[string]int {
	out := make(map[string]int, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}

// ContactName returns the captured customer name.
func (s *Session) ContactName() string { return s.name }

// ContactPhone returns the captured customer phone.
func (s *Session) ContactPhone() string { return s.phone }

// AwaitingContact reports whether the active conclusion step still needs a
// phone number before Submit can proceed.
func (s *Session) AwaitingContact() bool { return s.showPhone }

// Submission returns the accepted submission once the session is submitted.
func (s *Session) Submission() *domain.Submission { return s.submission }

// Inventory exposes the session's inventory validator for status lookups.
func (s *Session) Inventory() *inventory.Validator { return s.inv }

// AnswerText records a text step's answer and advances.
func (s *Session) AnswerText(ctx context.Context, value string) error {
	step, err := s.expectStep(domain.StepText)
	if err != nil {
		return err
	}
	s.record(domain.Answer{StepID: step.ID, Text: value})
	return s.advance(ctx, step, "")
}

// ChooseOption records a choice step's answer (the chosen label) and follows
// that choice's edge.
func (s *Session) ChooseOption(ctx context.Context, choiceID string) error {
	step, err := s.expectStep(domain.StepChoice)
	if err != nil {
		return err
	}
	choice := step.Choice(choiceID)
	if choice == nil {
		return domain.Invalid("unknown option")
	}
	s.record(domain.Answer{StepID: step.ID, Text: choice.Label})
	return s.advance(ctx, step, choiceID)
}

// SetQuantity updates the in-progress count for one quantity choice.
func (s *Session) SetQuantity(choiceID string, qty int) error {
	step, err := s.expectStep(domain.StepQuantity)
	if err != nil {
		return err
	}
	if step.QuantityChoice(choiceID) == nil {
		return domain.Invalid("unknown item")
	}
	if qty < 0 {
		return domain.Invalid("quantity cannot be negative")
	}
	s.selections[choiceID] = qty
	s.recordDraft()
	return nil
}

// RefreshInventory fetches a fresh stock snapshot and clamps any in-progress
// selection that now exceeds it. Call it when a quantity step is shown.
func (s *Session) RefreshInventory(ctx context.Context) ([]inventory.Adjustment, error) {
	return s.inv.Refresh(ctx, s.current, s.selections)
}

// ConfirmQuantities validates the in-progress selections against the last
// known stock and, if they hold, records the quantity answer and advances.
// This is a local optimistic check, not a reservation: the same quantities are
// re-checked at contact capture and again at submit time, because stock can
// change between steps.
func (s *Session) ConfirmQuantities(ctx context.Context) error {
	step, err := s.expectStep(domain.StepQuantity)
	if err != nil {
		return err
	}

	var issues []inventory.StockIssue
	for _, qc := range step.QuantityChoices {
		if qc.IsNoThanks {
			continue
		}
		qty := s.selections[qc.ID]
		if qty <= 0 {
			continue
		}
		remaining := s.inv.Remaining(step.ID, qc.ID)
		if remaining == nil && s.inv.IsSoldOut(step.ID, qc.ID) {
			zero := 0
			remaining = &zero
		}
		if remaining != nil && qty > *remaining {
			issues = append(issues, inventory.StockIssue{
				StepID:    step.ID,
				ChoiceID:  qc.ID,
				Label:     qc.Label,
				Requested: qty,
				Remaining: *remaining,
				SoldOut:   *remaining == 0,
			})
		}
	}
	if len(issues) > 0 {
		return &StockError{Issues: issues}
	}

	quantities := make([]domain.QuantityAnswer, 0, len(step.QuantityChoices))
	for _, qc := range step.QuantityChoices {
		if qc.IsNoThanks {
			continue
		}
		quantities = append(quantities, domain.QuantityAnswer{
			ChoiceID: qc.ID,
			Label:    qc.Label,
			Quantity: s.selections[qc.ID],
			Price:    qc.Price,
		})
	}
	s.record(domain.Answer{StepID: step.ID, Quantities: quantities})
	return s.advance(ctx, step, "")
}

// SetContact captures name and phone without a phase transition; conclusion
// steps use it to fold contact capture into themselves.
func (s *Session) SetContact(name, phone string) error {
	if digits := digitsOf(phone); len(digits) < MinPhoneDigits {
		return domain.Invalid("phone number needs at least %d digits", MinPhoneDigits)
	}
	s.name = name
	s.phone = phone
	s.showPhone = false
	s.recordDraft()
	return nil
}

// SubmitContact captures contact details and, after a fresh inventory sweep
// over every already-answered quantity step, advances to review. Any recorded
// quantity that live stock no longer covers aborts the transition; the caller
// reports the issues and returns the user to adjust selections.
func (s *Session) SubmitContact(ctx context.Context, name, phone string) error {
	if s.Phase() != PhaseContact {
		return domain.Invalid("not at contact capture")
	}
	if err := s.SetContact(name, phone); err != nil {
		return err
	}
	if err := s.revalidate(ctx); err != nil {
		return err
	}
	return s.machine.Event(ctx, evReview)
}

// EditAnswer jumps back from review to the visited step at index. Everything
// answered after that step is discarded: editing an earlier answer invalidates
// all later answers, which must be re-collected.
func (s *Session) EditAnswer(ctx context.Context, index int) error {
	if s.Phase() != PhaseReview {
		return domain.Invalid("not at review")
	}
	if index < 0 || index >= len(s.history) {
		return domain.Invalid("no such step")
	}

	for _, id := range s.history[index+1:] {
		delete(s.answers, id)
	}
	s.history = s.history[:index+1]
	s.current = s.history[index]
	s.restoreWidget(s.current)
	s.recordDraft()
	return s.machine.Event(ctx, evEdit)
}

// Back steps to the immediately preceding visited step. The step's recorded
// answer moves back into the in-progress widget state and is removed from the
// answer set; the step must be re-submitted to count again.
func (s *Session) Back(ctx context.Context) error {
	if len(s.history) == 0 {
		return domain.Invalid("nothing to go back to")
	}

	last := s.history[len(s.history)-1]
	phase := s.Phase()
	if phase == PhaseContact || phase == PhaseReview {
		if err := s.machine.Event(ctx, evBack); err != nil {
			return err
		}
	}

	s.history = s.history[:len(s.history)-1]
	s.current = last
	s.restoreWidget(last)
	delete(s.answers, last)
	s.recordDraft()
	return nil
}

// Submit re-validates inventory one final time and hands the submission to the
// sink, retrying with bounded exponential backoff. A failed submit leaves all
// collected state intact and can simply be retried. The in-flight guard makes
// sure one user action never reaches the sink twice.
func (s *Session) Submit(ctx context.Context) error {
	phase := s.Phase()
	if phase == PhaseQuestion {
		step := s.CurrentStep()
		if step == nil || step.Type != domain.StepConclusion {
			return domain.Invalid("not ready to submit")
		}
		if digitsOf(s.phone) == "" {
			return domain.Invalid("contact phone is required")
		}
	} else if phase != PhaseReview {
		return domain.Invalid("not ready to submit")
	}

	if s.inFlight {
		return domain.Invalid("submission already in progress")
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	// Stock can change between review and the submit click.
	if err := s.revalidate(ctx); err != nil {
		return err
	}

	sub := &domain.Submission{
		ID:            uuid.NewString(),
		FormID:        s.formID,
		CustomerName:  s.name,
		CustomerPhone: s.phone,
		Answers:       s.Answers(),
		SubmittedAt:   time.Now(),
	}

	start := time.Now()
	err := s.submitWithRetry(ctx, sub)
	if s.metrics != nil {
		s.metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		}
		s.logger.Warn("submission failed, state kept for retry", "form", s.formID, "err", err)
		return err
	}

	s.submission = sub
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	}
	if s.drafts != nil {
		// A draft must never outlive the submission it described.
		s.drafts.Delete(ctx)
	}
	return s.machine.Event(ctx, evSubmit)
}

// Snapshot builds the serializable draft mirror of the session's state.
func (s *Session) Snapshot() *domain.Draft {
	answers := make(map[string]domain.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a.Clone()
	}
	return &domain.Draft{
		Answers:            answers,
		History:            s.History(),
		CurrentStepID:      s.current,
		CustomerName:       s.name,
		CustomerPhone:      s.phone,
		QuantitySelections: s.Selections(),
		ShowPhoneInput:     s.showPhone,
		InputValue:         s.input,
	}
}

// Restore resumes the session from a draft. The caller has already made the
// explicit resume decision; drafts are never auto-applied.
func (s *Session) Restore(d *domain.Draft) {
	s.answers = make(map[string]domain.Answer, len(d.Answers))
	for id, a := range d.Answers {
		s.answers[id] = a.Clone()
	}
	s.history = append([]string(nil), d.History...)
	if d.CurrentStepID != "" {
		s.current = d.CurrentStepID
	}
	s.name = d.CustomerName
	s.phone = d.CustomerPhone
	s.selections = make(map[string]int, len(d.QuantitySelections))
	for k, v := range d.QuantitySelections {
		s.selections[k] = v
	}
	s.showPhone = d.ShowPhoneInput
	s.input = d.InputValue
}

func (s *Session) expectStep(typ domain.StepType) (*domain.Step, error) {
	if s.Phase() != PhaseQuestion {
		return nil, domain.Invalid("no question is active")
	}
	step := s.CurrentStep()
	if step == nil || step.Type != typ {
		return nil, domain.Invalid("unexpected step type")
	}
	return step, nil
}

// record stores an answer and appends the step to the visited history, unless
// the step is already the most recent entry (re-submission after back/edit).
func (s *Session) record(a domain.Answer) {
	s.answers[a.StepID] = a
	if n := len(s.history); n == 0 || s.history[n-1] != a.StepID {
		s.history = append(s.history, a.StepID)
	}
}

// advance resolves the step's edge. A nil edge, a missing target, and a
// revisit all mean the question flow is over; a conclusion target becomes the
// active step since it carries its own submit affordance.
func (s *Session) advance(ctx context.Context, step *domain.Step, choiceID string) error {
	s.input = ""
	s.selections = make(map[string]int)

	next := s.graph.ResolveNext(step, choiceID)
	if next != nil && !s.visited(*next) {
		if target, ok := s.graph.Step(*next); ok {
			s.current = target.ID
			if target.Type == domain.StepConclusion {
				s.showPhone = digitsOf(s.phone) == ""
			}
			s.recordDraft()
			return nil
		}
	}

	s.current = ""
	s.recordDraft()
	return s.machine.Event(ctx, evAdvance)
}

func (s *Session) visited(id string) bool {
	for _, h := range s.history {
		if h == id {
			return true
		}
	}
	return false
}

func (s *Session) restoreWidget(stepID string) {
	s.input = ""
	s.selections = make(map[string]int)

	a, ok := s.answers[stepID]
	if !ok {
		return
	}
	step, ok := s.graph.Step(stepID)
	if !ok {
		return
	}
	switch step.Type {
	case domain.StepText:
		s.input = a.Text
	case domain.StepQuantity:
		for _, qa := range a.Quantities {
			s.selections[qa.ChoiceID] = qa.Quantity
		}
	}
}

// revalidate runs a fresh inventory sweep over every recorded quantity answer.
func (s *Session) revalidate(ctx context.Context) error {
	if _, err := s.inv.Refresh(ctx, "", nil); err != nil {
		return err
	}
	if issues := inventory.CheckStockIssues(s.Answers(), s.inv.Statuses()); len(issues) > 0 {
		return &StockError{Issues: issues}
	}
	return nil
}

func (s *Session) submitWithRetry(ctx context.Context, sub *domain.Submission) error {
	delay := s.retryBase
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = s.sink.Submit(ctx, sub)
		if err == nil {
			return nil
		}
		s.logger.Debug("submit attempt failed", "form", s.formID, "attempt", attempt, "err", err)
		if attempt == s.attempts {
			break
		}
		s.sleep(delay)
		delay *= 2
		if delay > s.retryMax {
			delay = s.retryMax
		}
	}
	return err
}

func (s *Session) recordDraft() {
	if s.drafts != nil {
		s.drafts.Record(s.Snapshot())
	}
}

func digitsOf(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
