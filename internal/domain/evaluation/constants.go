package evaluation

const (
	StatusDraft         = "draft"
	StatusSelfSubmitted = "self_submitted"
	StatusReturned      = "returned"
	StatusCompleted     = "completed"

	ActionSaveSelfAssessment   = "save_self_assessment"
	ActionSubmitSelfAssessment = "submit_self_assessment"
	ActionSaveManagerReview    = "save_manager_review"
	ActionApprove              = "approve"
	ActionReturn               = "return"
	ActionResubmit             = "resubmit"

	AnswerKindRating = "rating"
	AnswerKindText   = "text"

	ScoreMin = 1
	ScoreMax = 5
)
