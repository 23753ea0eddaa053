package evaluation

import (
	"fmt"

	"intranet/internal/domain/auth"
)

type actorSide int

const (
	sideEmployee actorSide = iota
	sideEvaluator
)

type transition struct {
	side actorSide
	from map[string]bool
	// to is empty for idempotent saves that leave the status unchanged.
	to string
	// gate names which period window must be open, if any.
	gate gateKind
}

type gateKind int

const (
	gateNone gateKind = iota
	gateSelfAssessment
	gateManagerReview
)

// transitions is total over the action set: every action maps to exactly one
// rule, and a rule admits exactly one resulting state. There is no fallback.
var transitions = map[string]transition{
	ActionSaveSelfAssessment: {
		side: sideEmployee,
		from: map[string]bool{StatusDraft: true, StatusReturned: true},
	},
	ActionSubmitSelfAssessment: {
		side: sideEmployee,
		from: map[string]bool{StatusDraft: true, StatusReturned: true},
		to:   StatusSelfSubmitted,
		gate: gateSelfAssessment,
	},
	ActionSaveManagerReview: {
		side: sideEvaluator,
		from: map[string]bool{StatusSelfSubmitted: true},
	},
	ActionApprove: {
		side: sideEvaluator,
		from: map[string]bool{StatusSelfSubmitted: true},
		to:   StatusCompleted,
		gate: gateManagerReview,
	},
	ActionReturn: {
		side: sideEvaluator,
		from: map[string]bool{StatusSelfSubmitted: true},
		to:   StatusReturned,
		gate: gateManagerReview,
	},
	ActionResubmit: {
		side: sideEmployee,
		from: map[string]bool{StatusReturned: true},
		to:   StatusSelfSubmitted,
	},
}

// CanAct is the single ownership check: the caller must be the record's
// employee or evaluator depending on the action's side. Admins bypass
// ownership but never state legality.
func CanAct(actor auth.UserContext, eval Evaluation, action string) bool {
	rule, ok := transitions[action]
	if !ok {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	switch rule.side {
	case sideEmployee:
		return actor.UserID == eval.EmployeeID
	case sideEvaluator:
		return eval.EvaluatorID != nil && actor.UserID == *eval.EvaluatorID
	}
	return false
}

// nextStatus resolves the one legal outcome for {current state, action}, or
// rejects. An empty string means the action is a save and the status stays.
func nextStatus(current, action string) (string, error) {
	rule, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrValidationFailed, action)
	}
	if !rule.from[current] {
		return "", fmt.Errorf("%w: action %s is not allowed from status %s", ErrInvalidTransition, action, current)
	}
	return rule.to, nil
}
