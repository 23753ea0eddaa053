package evaluation

import "time"

type Evaluation struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	EvaluatorID      *string         `json:"evaluatorId,omitempty"`
	PeriodID         *string         `json:"periodId,omitempty"`
	StartDate        *time.Time      `json:"startDate,omitempty"`
	EndDate          *time.Time      `json:"endDate,omitempty"`
	Status           string          `json:"status"`
	SelfAssessment   *SelfAssessment `json:"selfAssessment,omitempty"`
	ManagerReview    *ManagerReview  `json:"managerReview,omitempty"`
	FinalScore       *float64        `json:"finalScore,omitempty"`
	EvaluatorComment string          `json:"evaluatorComment,omitempty"`
	DeletedAt        *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Answer is one self-assessment entry. Kind selects which value field is
// meaningful: a rating answer carries Rating, a text answer carries Text.
type Answer struct {
	CriterionID string `json:"criterionId"`
	Kind        string `json:"kind"`
	Rating      int    `json:"rating,omitempty"`
	Text        string `json:"text,omitempty"`
}

type SelfAssessment struct {
	Answers []Answer `json:"answers"`
	Comment string   `json:"comment,omitempty"`
}

type CompetencyScore struct {
	CriterionID string `json:"criterionId"`
	Score       int    `json:"score"`
	Comment     string `json:"comment,omitempty"`
}

type ManagerReview struct {
	Scores  []CompetencyScore `json:"scores"`
	Comment string            `json:"comment,omitempty"`
}

// ActionPayload is the actor-supplied body for a workflow action. Fields are
// optional; each action validates the subset it needs.
type ActionPayload struct {
	SelfAssessment *SelfAssessment `json:"selfAssessment,omitempty"`
	ManagerReview  *ManagerReview  `json:"managerReview,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

// ActionResult reports the outcome of a workflow action. Status always holds
// the record's actual status, including on rejection, so a client can
// resynchronize without another round trip.
type ActionResult struct {
	Success    bool       `json:"success"`
	Status     string     `json:"status"`
	Evaluation Evaluation `json:"evaluation"`
}
