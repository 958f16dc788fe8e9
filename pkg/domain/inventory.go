package domain

// InventoryStatus is the live stock state of one quantity choice.
// Remaining == nil means unlimited stock.
type InventoryStatus struct {
	StepID    string `json:"stepId"`
	ChoiceID  string `json:"choiceId"`
	Remaining *int   `json:"remaining"`
	IsSoldOut bool   `json:"isSoldOut"`
}
