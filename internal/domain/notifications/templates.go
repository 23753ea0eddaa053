package notifications

import "fmt"

// Event carries everything a notification template needs. Kind decides the
// template and the recipient side (employee or evaluator); names and period
// are presentation parameters only.
type Event struct {
	Kind         string
	RecipientID  string
	EvaluationID string
	PeriodID     string
	EmployeeName string
	ManagerName  string
	PeriodName   string
	Comments     string
}

type rendered struct {
	Title      string
	Message    string
	Priority   string
	ActionLink string
}

func render(evt Event) (rendered, bool) {
	switch evt.Kind {
	case KindPeriodOpened:
		return rendered{
			Title:      "New Evaluation Period",
			Message:    fmt.Sprintf("The evaluation period %q is open. Start your self-assessment.", evt.PeriodName),
			Priority:   PriorityHigh,
			ActionLink: "/evaluations",
		}, true
	case KindEvaluationCreated:
		return rendered{
			Title:      "New Evaluation Available",
			Message:    fmt.Sprintf("A performance evaluation was created for the period %q. Start your self-assessment.", evt.PeriodName),
			Priority:   PriorityHigh,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	case KindSelfAssessmentCompleted:
		return rendered{
			Title:      "Self-Assessment Completed",
			Message:    fmt.Sprintf("%s completed the self-assessment and is waiting for your review.", evt.EmployeeName),
			Priority:   PriorityHigh,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	case KindManagerReviewPending:
		return rendered{
			Title:      "Manager Review Pending",
			Message:    fmt.Sprintf("An evaluation from %s is waiting for your review and approval.", evt.EmployeeName),
			Priority:   PriorityHigh,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	case KindEvaluationReturned:
		msg := fmt.Sprintf("Your evaluation was returned by %s for adjustments. Review the comments and resubmit.", evt.ManagerName)
		if evt.Comments != "" {
			msg += " Comments: " + evt.Comments
		}
		return rendered{
			Title:      "Evaluation Returned for Adjustments",
			Message:    msg,
			Priority:   PriorityUrgent,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	case KindEvaluationRevised:
		return rendered{
			Title:      "Evaluation Revised",
			Message:    fmt.Sprintf("%s revised the evaluation after your return. It is back in your review queue.", evt.EmployeeName),
			Priority:   PriorityHigh,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	case KindEvaluationCompleted:
		return rendered{
			Title:      "Evaluation Completed",
			Message:    fmt.Sprintf("Your performance evaluation was completed by %s. See the results and feedback.", evt.ManagerName),
			Priority:   PriorityNormal,
			ActionLink: "/evaluations/" + evt.EvaluationID,
		}, true
	}
	return rendered{}, false
}
