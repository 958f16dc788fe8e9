package tui

import (
	"fmt"
	"strings"

	"github.com/nvalim/lattice/pkg/domain"
)

// QuestionMarkdown builds the markdown view for an active step.
func QuestionMarkdown(step *domain.Step) string {
	var sb strings.Builder

	switch step.Type {
	case domain.StepConclusion:
		msg := step.ThankYouMessage
		if msg == "" {
			msg = "All done."
		}
		sb.WriteString("## " + msg + "\n")
	default:
		sb.WriteString("## " + step.Question + "\n")
	}

	switch step.Type {
	case domain.StepText:
		if step.Placeholder != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", step.Placeholder))
		}
	case domain.StepChoice:
		sb.WriteString("\n")
		for i, c := range step.Choices {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Label))
		}
	case domain.StepQuantity:
		sb.WriteString("\n")
		for _, qc := range step.QuantityChoices {
			if qc.IsNoThanks {
				sb.WriteString(fmt.Sprintf("- %s\n", qc.Label))
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s (%.2f)\n", qc.Label, qc.Price))
		}
	}
	return sb.String()
}

// ReviewMarkdown builds the markdown summary shown before submitting.
func ReviewMarkdown(name, phone string, answers []domain.Answer, g *domain.FormGraph) string {
	var sb strings.Builder
	sb.WriteString("## Review your order\n\n")
	sb.WriteString(fmt.Sprintf("**Name:** %s  \n**Phone:** %s\n\n", name, phone))

	for i, a := range answers {
		question := a.StepID
		if step, ok := g.Step(a.StepID); ok && step.Question != "" {
			question = step.Question
		}
		sb.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, question))
		if len(a.Quantities) > 0 {
			total := 0.0
			for _, qa := range a.Quantities {
				if qa.Quantity == 0 {
					continue
				}
				sb.WriteString(fmt.Sprintf("   - %s x%d\n", qa.Label, qa.Quantity))
				total += float64(qa.Quantity) * qa.Price
			}
			if total > 0 {
				sb.WriteString(fmt.Sprintf("   - total %.2f\n", total))
			}
		} else {
			sb.WriteString(fmt.Sprintf("   - %s\n", a.Text))
		}
	}
	return sb.String()
}

// SubmittedMarkdown builds the confirmation view for an accepted submission.
func SubmittedMarkdown(sub *domain.Submission) string {
	return fmt.Sprintf("## Order received\n\nReference: `%s`\n\nThank you, %s!\n", sub.ID, sub.CustomerName)
}
