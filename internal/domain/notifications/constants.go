package notifications

const (
	KindPeriodOpened            = "period_opened"
	KindEvaluationCreated       = "evaluation_created"
	KindSelfAssessmentCompleted = "self_assessment_completed"
	KindManagerReviewPending    = "manager_review_pending"
	KindEvaluationReturned      = "evaluation_returned"
	KindEvaluationRevised       = "evaluation_revised"
	KindEvaluationCompleted     = "evaluation_completed"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// RetentionDays is how long an in-app notification stays before it expires.
const RetentionDays = 30
