package periods

import "time"

type Period struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Description            string     `json:"description"`
	StartDate              time.Time  `json:"startDate"`
	EndDate                time.Time  `json:"endDate"`
	SelfAssessmentDeadline time.Time  `json:"selfAssessmentDeadline"`
	ApprovalDeadline       time.Time  `json:"approvalDeadline"`
	Active                 bool       `json:"active"`
	OpenedAt               *time.Time `json:"openedAt,omitempty"`
	EvaluationsCreated     int        `json:"evaluationsCreated"`
	CreatedAt              time.Time  `json:"createdAt"`
}

// OpenForSelfAssessment reports whether employee-side actions are allowed at now.
// The window runs from the period start through the self-assessment deadline,
// bounded by the period's hard end date.
func (p Period) OpenForSelfAssessment(now time.Time) bool {
	if !p.Active || now.After(p.EndDate) {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.SelfAssessmentDeadline)
}

// OpenForManagerReview reports whether evaluator-side actions are allowed at now.
// The window runs from the self-assessment deadline through the approval
// deadline, bounded by the period's hard end date.
func (p Period) OpenForManagerReview(now time.Time) bool {
	if !p.Active || now.After(p.EndDate) {
		return false
	}
	return !now.Before(p.SelfAssessmentDeadline) && !now.After(p.ApprovalDeadline)
}
