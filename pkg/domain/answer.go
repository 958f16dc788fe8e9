package domain

import "time"

// Answer records one step's collected input, keyed by step id.
// Text and choice steps fill Text (the typed value or the chosen label);
// quantity steps fill Quantities, one entry per non-"no thanks" choice in the
// step's declared order.
type Answer struct {
	StepID     string           `json:"stepId"`
	Text       string           `json:"text,omitempty"`
	Quantities []QuantityAnswer `json:"quantities,omitempty"`
}

// QuantityAnswer is one line of a quantity step's answer.
type QuantityAnswer struct {
	ChoiceID string  `json:"choiceId"`
	Label    string  `json:"label"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Clone returns a deep copy of the answer.
func (a Answer) Clone() Answer {
	out := a
	if a.Quantities != nil {
		out.Quantities = make([]QuantityAnswer, len(a.Quantities))
		copy(out.Quantities, a.Quantities)
	}
	return out
}

// Submission is the finished result of one fill session.
type Submission struct {
	ID            string    `json:"id"`
	FormID        string    `json:"formId"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	Answers       []Answer  `json:"answers"`
	SubmittedAt   time.Time `json:"submittedAt"`
}
