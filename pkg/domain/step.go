package domain

// StepType discriminates the four step variants of a form graph.
type StepType string

const (
	// StepText asks for free text and follows a single outgoing edge.
	StepText StepType = "text"
	// StepChoice branches on a selected option; each option carries its own edge.
	StepChoice StepType = "choice"
	// StepQuantity collects per-item counts and follows a single outgoing edge.
	StepQuantity StepType = "quantity"
	// StepConclusion is terminal by construction and carries the submit affordance.
	StepConclusion StepType = "conclusion"
)

// Step is one node of the form graph. Which fields are meaningful depends on Type.
//
// An absent next-step pointer always means "intentionally terminal", never an
// error; a pointer to an id that is not in the graph is treated the same way.
type Step struct {
	ID   string   `json:"id" yaml:"id" mapstructure:"id"`
	Type StepType `json:"type" yaml:"type" mapstructure:"type"`

	Question    string  `json:"question,omitempty" yaml:"question,omitempty" mapstructure:"question"`
	Placeholder string  `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	NextStepID  *string `json:"nextStepId,omitempty" yaml:"nextStepId,omitempty" mapstructure:"nextStepId"`

	// Choices is meaningful for StepChoice only. Labels need not be unique,
	// ids must be unique within the step.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`

	// QuantityChoices is meaningful for StepQuantity only, in declared order.
	QuantityChoices []QuantityChoice `json:"quantityChoices,omitempty" yaml:"quantityChoices,omitempty" mapstructure:"quantityChoices"`

	// Conclusion fields.
	ThankYouMessage  string `json:"thankYouMessage,omitempty" yaml:"thankYouMessage,omitempty" mapstructure:"thankYouMessage"`
	SubmitButtonText string `json:"submitButtonText,omitempty" yaml:"submitButtonText,omitempty" mapstructure:"submitButtonText"`
}

// Choice is a labeled branch option on a choice step.
type Choice struct {
	ID         string  `json:"id" yaml:"id" mapstructure:"id"`
	Label      string  `json:"label" yaml:"label" mapstructure:"label"`
	NextStepID *string `json:"nextStepId,omitempty" yaml:"nextStepId,omitempty" mapstructure:"nextStepId"`
}

// QuantityChoice is a purchasable line item on a quantity step.
// Limit == nil means unlimited stock. At most one IsNoThanks entry is
// meaningful; it carries no price or limit.
type QuantityChoice struct {
	ID         string  `json:"id" yaml:"id" mapstructure:"id"`
	Label      string  `json:"label" yaml:"label" mapstructure:"label"`
	Price      float64 `json:"price" yaml:"price" mapstructure:"price"`
	Limit      *int    `json:"limit,omitempty" yaml:"limit,omitempty" mapstructure:"limit"`
	IsNoThanks bool    `json:"isNoThanks,omitempty" yaml:"isNoThanks,omitempty" mapstructure:"isNoThanks"`
}

// Choice returns the choice with the given id, or nil if the step has none.
func (s *Step) Choice(choiceID string) *Choice {
	for i := range s.Choices {
		if s.Choices[i].ID == choiceID {
			return &s.Choices[i]
		}
	}
	return nil
}

// QuantityChoice returns the quantity choice with the given id, or nil.
func (s *Step) QuantityChoice(choiceID string) *QuantityChoice {
	for i := range s.QuantityChoices {
		if s.QuantityChoices[i].ID == choiceID {
			return &s.QuantityChoices[i]
		}
	}
	return nil
}

// Clone returns a deep, independent copy of the step.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	out := *s
	out.NextStepID = cloneStringPtr(s.NextStepID)
	if s.Choices != nil {
		out.Choices = make([]Choice, len(s.Choices))
		for i, c := range s.Choices {
			c.NextStepID = cloneStringPtr(c.NextStepID)
			out.Choices[i] = c
		}
	}
	if s.QuantityChoices != nil {
		out.QuantityChoices = make([]QuantityChoice, len(s.QuantityChoices))
		for i, qc := range s.QuantityChoices {
			qc.Limit = cloneIntPtr(qc.Limit)
			out.QuantityChoices[i] = qc
		}
	}
	return &out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
