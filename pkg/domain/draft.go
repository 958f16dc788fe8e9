package domain

import "time"

// Draft is the serializable snapshot of an in-progress fill session. It mirrors
// a prefix of the session's state and lives in the Storage collaborator with a
// TTL; it is a best-effort convenience, never a durability guarantee.
type Draft struct {
	Answers            map[string]Answer `json:"answers"`
	History            []string          `json:"history"`
	CurrentStepID      string            `json:"currentStepId"`
	CustomerName       string            `json:"customerName"`
	CustomerPhone      string            `json:"customerPhone"`
	QuantitySelections map[string]int    `json:"quantitySelections"`
	ShowPhoneInput     bool              `json:"showPhoneInput"`
	InputValue         string            `json:"inputValue"`
	SavedAt            time.Time         `json:"savedAt"`
}

// StepIDs returns every step id the draft references: visited history, the
// current step, and answer keys. Used to check the draft still matches the
// template it was written against.
func (d *Draft) StepIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range d.History {
		add(id)
	}
	add(d.CurrentStepID)
	for id := range d.Answers {
		add(id)
	}
	return ids
}
