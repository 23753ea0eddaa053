package managers

import "time"

// Mapping assigns an evaluator to a collaborator. A nil PeriodID is a global
// default; a period-scoped mapping overrides it for that period.
type Mapping struct {
	ID             string    `json:"id"`
	CollaboratorID string    `json:"collaboratorId"`
	ManagerID      string    `json:"managerId"`
	PeriodID       *string   `json:"periodId,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
