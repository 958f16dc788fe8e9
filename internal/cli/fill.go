package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nvalim/lattice/internal/config"
	"github.com/nvalim/lattice/internal/draft"
	"github.com/nvalim/lattice/internal/presentation/tui"
	"github.com/nvalim/lattice/internal/runtime"
	httpadapter "github.com/nvalim/lattice/pkg/adapters/http"
	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/ports"
)

// RunFill drives one interactive fill session over a stored template.
// When serverURL is set, inventory and submissions go through a remote lattice
// server; otherwise both stay in-process.
func RunFill(templateID, serverURL string, debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := createLogger(debug)

	sc := NewSignalContext(context.Background())
	defer sc.Cancel()
	ctx := sc.Context

	tpl, err := buildTemplateStore(cfg).Load(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load template %q: %w", templateID, err)
	}

	storage, closeStorage := buildStorage(cfg, logger)
	defer closeStorage()
	drafts := draft.NewStore(storage, templateID,
		draft.WithTTL(cfg.DraftTTL),
		draft.WithLogger(logger),
	)
	defer drafts.Close()

	var source ports.InventorySource
	var sink ports.SubmissionSink
	if serverURL != "" {
		client := httpadapter.NewClient(serverURL)
		source, sink = client, client
	} else {
		source = memory.NewInventorySource()
		sink = memory.NewSubmissionSink()
		printSystemMessage("No server configured; submissions stay local.")
	}

	session := runtime.NewSession(templateID, tpl.Graph, sink, source,
		runtime.WithLogger(logger),
		runtime.WithDraftStore(drafts),
	)

	render := renderFunc()
	reader := bufio.NewScanner(os.Stdin)

	if d, _ := drafts.Load(ctx, tpl.Graph); d != nil {
		printSystemMessage("Found an unfinished draft from %s.", d.SavedAt.Format("Jan 2 15:04"))
		if promptYesNo(reader, "Resume it?") {
			drafts.Resume()
			session.Restore(d)
		} else {
			drafts.Discard(ctx)
		}
	}

	for session.Phase() != runtime.PhaseSubmitted {
		if ctx.Err() != nil {
			// Flush whatever was in flight so the draft survives the exit.
			drafts.FlushSync(context.Background(), session.Snapshot())
			fmt.Println()
			printSystemMessage("Interrupted; draft saved.")
			return nil
		}

		var stepErr error
		switch session.Phase() {
		case runtime.PhaseQuestion:
			stepErr = runQuestion(ctx, session, reader, render)
		case runtime.PhaseContact:
			stepErr = runContact(ctx, session, reader)
		case runtime.PhaseReview:
			stepErr = runReview(ctx, session, reader, render, tpl.Graph)
		}

		if stepErr != nil {
			if errors.Is(stepErr, errQuit) {
				drafts.FlushSync(context.Background(), session.Snapshot())
				printSystemMessage("Draft saved. Bye!")
				return nil
			}
			var stockErr *runtime.StockError
			if errors.As(stepErr, &stockErr) {
				for _, issue := range stockErr.Issues {
					printSystemMessage("Stock changed: %s", issue.String())
				}
				continue
			}
			if domain.IsValidation(stepErr) {
				printSystemMessage("%v", stepErr)
				continue
			}
			return stepErr
		}
	}

	fmt.Print(render(tui.SubmittedMarkdown(session.Submission())))
	return nil
}

var errQuit = errors.New("quit")

func runQuestion(ctx context.Context, session *runtime.Session, reader *bufio.Scanner, render func(string) string) error {
	step := session.CurrentStep()
	if step == nil {
		// Nothing to ask; the session falls through to contact capture.
		return session.AnswerText(ctx, "")
	}

	fmt.Print(render(tui.QuestionMarkdown(step)))

	switch step.Type {
	case domain.StepText:
		line, err := promptLine(reader, "> ")
		if err != nil {
			return err
		}
		return session.AnswerText(ctx, line)

	case domain.StepChoice:
		line, err := promptLine(reader, "Choose an option: ")
		if err != nil {
			return err
		}
		idx, convErr := strconv.Atoi(line)
		if convErr != nil || idx < 1 || idx > len(step.Choices) {
			return domain.Invalid("enter a number between 1 and %d", len(step.Choices))
		}
		return session.ChooseOption(ctx, step.Choices[idx-1].ID)

	case domain.StepQuantity:
		if adjustments, err := session.RefreshInventory(ctx); err == nil {
			for _, adj := range adjustments {
				printSystemMessage("Adjusted %s from %d to %d (stock changed).", adj.ChoiceID, adj.From, adj.To)
			}
		}
		for _, qc := range step.QuantityChoices {
			if qc.IsNoThanks {
				continue
			}
			line, err := promptLine(reader, fmt.Sprintf("%s%s: ", qc.Label, remainingLabel(session, step.ID, qc.ID)))
			if err != nil {
				return err
			}
			if line == "" {
				continue
			}
			qty, convErr := strconv.Atoi(line)
			if convErr != nil {
				return domain.Invalid("enter a number for %s", qc.Label)
			}
			if err := session.SetQuantity(qc.ID, qty); err != nil {
				return err
			}
		}
		return session.ConfirmQuantities(ctx)

	case domain.StepConclusion:
		if session.AwaitingContact() {
			name, err := promptLine(reader, "Your name: ")
			if err != nil {
				return err
			}
			phone, err := promptLine(reader, "Your phone: ")
			if err != nil {
				return err
			}
			if err := session.SetContact(name, phone); err != nil {
				return err
			}
		}
		return session.Submit(ctx)
	}
	return nil
}

func runContact(ctx context.Context, session *runtime.Session, reader *bufio.Scanner) error {
	printSystemMessage("Almost done. We need your contact details.")
	name, err := promptLine(reader, "Your name: ")
	if err != nil {
		return err
	}
	if name == "back" {
		return session.Back(ctx)
	}
	phone, err := promptLine(reader, "Your phone: ")
	if err != nil {
		return err
	}
	return session.SubmitContact(ctx, name, phone)
}

func runReview(ctx context.Context, session *runtime.Session, reader *bufio.Scanner, render func(string) string, g *domain.FormGraph) error {
	fmt.Print(render(tui.ReviewMarkdown(session.ContactName(), session.ContactPhone(), session.Answers(), g)))

	line, err := promptLine(reader, "submit, edit <n>, or back: ")
	if err != nil {
		return err
	}
	switch {
	case line == "submit":
		return session.Submit(ctx)
	case line == "back":
		return session.Back(ctx)
	case strings.HasPrefix(line, "edit "):
		n, convErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "edit ")))
		if convErr != nil {
			return domain.Invalid("edit needs a step number")
		}
		return session.EditAnswer(ctx, n-1)
	default:
		return domain.Invalid("unknown command %q", line)
	}
}

func remainingLabel(session *runtime.Session, stepID, choiceID string) string {
	if r := session.Inventory().Remaining(stepID, choiceID); r != nil {
		return fmt.Sprintf(" (%d left)", *r)
	}
	return ""
}

func promptLine(reader *bufio.Scanner, prompt string) (string, error) {
	fmt.Print(prompt)
	if !reader.Scan() {
		return "", errQuit
	}
	line := strings.TrimSpace(reader.Text())
	if line == "quit" || line == "exit" {
		return "", errQuit
	}
	return line, nil
}

func promptYesNo(reader *bufio.Scanner, prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	if !reader.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(reader.Text()))
	return answer == "y" || answer == "yes"
}

// renderFunc returns a markdown renderer: glamour for terminals, passthrough
// for pipes.
func renderFunc() func(string) string {
	if !isTerminal() {
		return func(md string) string { return md }
	}
	render := tui.NewRenderer()
	return func(md string) string {
		out, err := render(md)
		if err != nil {
			return md
		}
		return out
	}
}
