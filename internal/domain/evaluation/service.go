package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/managers"
	"intranet/internal/domain/notifications"
	"intranet/internal/domain/periods"
)

// Notifier delivers workflow events. Delivery runs after the conditional
// update commits and is best-effort; the engine never waits on it.
type Notifier interface {
	Dispatch(ctx context.Context, evt notifications.Event) bool
	DispatchBulk(ctx context.Context, recipientIDs []string, evt notifications.Event) int
}

type ManagerResolver interface {
	Resolve(ctx context.Context, collaboratorID, periodID string) (string, error)
}

type PeriodAPI interface {
	Get(ctx context.Context, periodID string) (periods.Period, error)
	IsOpenForSelfAssessment(ctx context.Context, periodID string) (bool, error)
	IsOpenForManagerReview(ctx context.Context, periodID string) (bool, error)
	EligibleUserIDs(ctx context.Context, periodID string) ([]string, error)
	PeriodsDueToOpen(ctx context.Context) ([]periods.Period, error)
	MarkOpened(ctx context.Context, periodID string, created int) error
}

type Service struct {
	store    StoreAPI
	resolver ManagerResolver
	periods  PeriodAPI
	notifier Notifier
}

func NewService(store StoreAPI, resolver ManagerResolver, periodAPI PeriodAPI, notifier Notifier) *Service {
	return &Service{store: store, resolver: resolver, periods: periodAPI, notifier: notifier}
}

// Apply runs one workflow action against one evaluation. Ownership is checked
// before state legality, the period gate before payload validation, and the
// write is a compare-and-swap on the status read here; nothing is persisted
// when any check fails.
func (s *Service) Apply(ctx context.Context, actor auth.UserContext, evaluationID, action string, payload ActionPayload) (ActionResult, error) {
	eval, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return ActionResult{}, err
	}
	failed := ActionResult{Status: eval.Status, Evaluation: eval}

	if _, known := transitions[action]; !known {
		return failed, fmt.Errorf("%w: unknown action %q", ErrValidationFailed, action)
	}
	if !CanAct(actor, eval, action) {
		return failed, ErrPermissionDenied
	}

	next, err := nextStatus(eval.Status, action)
	if err != nil {
		return failed, err
	}
	if next == "" {
		next = eval.Status
	}

	if err := s.checkGate(ctx, eval, action); err != nil {
		return failed, err
	}

	patch := Patch{Status: next}
	switch action {
	case ActionSaveSelfAssessment:
		if err := ValidateSelfAssessment(payload.SelfAssessment); err != nil {
			return failed, err
		}
		patch.SelfAssessment = MergeSelfAssessment(eval.SelfAssessment, payload.SelfAssessment)

	case ActionSubmitSelfAssessment:
		merged := eval.SelfAssessment
		if payload.SelfAssessment != nil {
			if err := ValidateSelfAssessment(payload.SelfAssessment); err != nil {
				return failed, err
			}
			merged = MergeSelfAssessment(eval.SelfAssessment, payload.SelfAssessment)
		}
		if err := ValidateSelfAssessment(merged); err != nil {
			return failed, err
		}
		patch.SelfAssessment = merged

	case ActionSaveManagerReview:
		if payload.ManagerReview == nil {
			return failed, fmt.Errorf("%w: manager review payload is required", ErrValidationFailed)
		}
		if err := ValidateManagerReview(payload.ManagerReview, false); err != nil {
			return failed, err
		}
		patch.ManagerReview = MergeManagerReview(eval.ManagerReview, payload.ManagerReview)

	case ActionApprove:
		review := eval.ManagerReview
		if payload.ManagerReview != nil {
			if err := ValidateManagerReview(payload.ManagerReview, false); err != nil {
				return failed, err
			}
			review = MergeManagerReview(eval.ManagerReview, payload.ManagerReview)
		}
		comment := strings.TrimSpace(payload.Comment)
		if comment == "" && review != nil {
			comment = strings.TrimSpace(review.Comment)
		}
		if comment == "" {
			return failed, fmt.Errorf("%w: evaluator comment is required to approve", ErrValidationFailed)
		}
		if err := ValidateManagerReview(review, true); err != nil {
			return failed, err
		}
		score := FinalScore(review.Scores)
		patch.ManagerReview = review
		patch.FinalScore = &score
		patch.EvaluatorComment = &comment

	case ActionReturn:
		comment := strings.TrimSpace(payload.Comment)
		if comment == "" {
			return failed, fmt.Errorf("%w: comments explaining the return are required", ErrValidationFailed)
		}
		patch.EvaluatorComment = &comment

	case ActionResubmit:
		// No payload: the answers revised while returned travel as-is.
	}

	updated, err := s.store.ConditionalUpdate(ctx, evaluationID, eval.Status, patch)
	if err != nil {
		return failed, err
	}

	s.notifyTransition(ctx, action, updated)
	return ActionResult{Success: true, Status: updated.Status, Evaluation: updated}, nil
}

func (s *Service) checkGate(ctx context.Context, eval Evaluation, action string) error {
	if eval.PeriodID == nil {
		return nil
	}
	var open bool
	var err error
	switch transitions[action].gate {
	case gateSelfAssessment:
		open, err = s.periods.IsOpenForSelfAssessment(ctx, *eval.PeriodID)
	case gateManagerReview:
		open, err = s.periods.IsOpenForManagerReview(ctx, *eval.PeriodID)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if !open {
		return ErrPeriodClosed
	}
	return nil
}

// notifyTransition emits the post-commit event for a transition. It runs in a
// detached goroutine so delivery can neither block nor fail the action.
func (s *Service) notifyTransition(ctx context.Context, action string, eval Evaluation) {
	var kind, recipientID string
	switch action {
	case ActionSubmitSelfAssessment:
		kind = notifications.KindSelfAssessmentCompleted
	case ActionApprove:
		kind, recipientID = notifications.KindEvaluationCompleted, eval.EmployeeID
	case ActionReturn:
		kind, recipientID = notifications.KindEvaluationReturned, eval.EmployeeID
	case ActionResubmit:
		kind = notifications.KindEvaluationRevised
	default:
		return
	}
	if recipientID == "" {
		if eval.EvaluatorID == nil {
			slog.Warn("transition has no evaluator to notify", "evaluationId", eval.ID, "action", action)
			return
		}
		recipientID = *eval.EvaluatorID
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 10*time.Second)
		defer cancel()

		evt := notifications.Event{
			Kind:         kind,
			RecipientID:  recipientID,
			EvaluationID: eval.ID,
			Comments:     eval.EvaluatorComment,
		}
		if eval.PeriodID != nil {
			evt.PeriodID = *eval.PeriodID
		}
		if name, err := s.store.UserName(ctx, eval.EmployeeID); err == nil {
			evt.EmployeeName = name
		}
		if eval.EvaluatorID != nil {
			if name, err := s.store.UserName(ctx, *eval.EvaluatorID); err == nil {
				evt.ManagerName = name
			}
		}
		s.notifier.Dispatch(ctx, evt)
	}()
}

// Create starts a draft evaluation for an employee, resolving the evaluator
// through the manager mapping. Creation fails explicitly when no mapping
// resolves; an evaluator is never guessed.
func (s *Service) Create(ctx context.Context, employeeID string, periodID *string) (Evaluation, error) {
	eval := Evaluation{EmployeeID: employeeID, PeriodID: periodID, Status: StatusDraft}

	resolvePeriod := ""
	if periodID != nil {
		resolvePeriod = *periodID
		exists, err := s.store.ExistsForPeriod(ctx, employeeID, resolvePeriod)
		if err != nil {
			return Evaluation{}, err
		}
		if exists {
			return Evaluation{}, ErrAlreadyExists
		}
		period, err := s.periods.Get(ctx, resolvePeriod)
		if err != nil {
			return Evaluation{}, err
		}
		eval.StartDate = &period.StartDate
		eval.EndDate = &period.EndDate
	}

	managerID, err := s.resolver.Resolve(ctx, employeeID, resolvePeriod)
	if err != nil {
		return Evaluation{}, err
	}
	eval.EvaluatorID = &managerID

	created, err := s.store.Insert(ctx, eval)
	if err != nil {
		return Evaluation{}, err
	}

	periodName := ""
	if periodID != nil {
		if period, pErr := s.periods.Get(ctx, *periodID); pErr == nil {
			periodName = period.Name
		}
	}
	evt := notifications.Event{
		Kind:         notifications.KindEvaluationCreated,
		RecipientID:  employeeID,
		EvaluationID: created.ID,
		PeriodID:     resolvePeriod,
		PeriodName:   periodName,
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 10*time.Second)
		defer cancel()
		s.notifier.Dispatch(ctx, evt)
	}()

	return created, nil
}

type OpenPeriodResult struct {
	PeriodID         string   `json:"periodId"`
	PeriodName       string   `json:"periodName"`
	Eligible         int      `json:"eligible"`
	Created          int      `json:"created"`
	SkippedNoManager []string `json:"skippedNoManager,omitempty"`
}

// OpenPeriod creates draft evaluations for every eligible employee with a
// resolvable manager and broadcasts the period-opened notification. It is
// idempotent per employee: existing evaluations for the period are skipped.
func (s *Service) OpenPeriod(ctx context.Context, periodID string) (OpenPeriodResult, error) {
	period, err := s.periods.Get(ctx, periodID)
	if err != nil {
		return OpenPeriodResult{}, err
	}

	userIDs, err := s.periods.EligibleUserIDs(ctx, periodID)
	if err != nil {
		return OpenPeriodResult{}, err
	}

	result := OpenPeriodResult{PeriodID: periodID, PeriodName: period.Name, Eligible: len(userIDs)}
	var notifyIDs []string
	for _, userID := range userIDs {
		exists, err := s.store.ExistsForPeriod(ctx, userID, periodID)
		if err != nil {
			return result, err
		}
		if exists {
			continue
		}

		managerID, err := s.resolver.Resolve(ctx, userID, periodID)
		if errors.Is(err, managers.ErrNoManager) {
			result.SkippedNoManager = append(result.SkippedNoManager, userID)
			slog.Warn("skipping employee without manager mapping", "employeeId", userID, "periodId", periodID)
			continue
		}
		if err != nil {
			return result, err
		}

		eval := Evaluation{
			EmployeeID:  userID,
			EvaluatorID: &managerID,
			PeriodID:    &periodID,
			StartDate:   &period.StartDate,
			EndDate:     &period.EndDate,
			Status:      StatusDraft,
		}
		created, err := s.store.Insert(ctx, eval)
		if err != nil {
			return result, err
		}
		result.Created++
		notifyIDs = append(notifyIDs, userID)

		s.notifier.Dispatch(ctx, notifications.Event{
			Kind:         notifications.KindEvaluationCreated,
			RecipientID:  userID,
			EvaluationID: created.ID,
			PeriodID:     periodID,
			PeriodName:   period.Name,
		})
	}

	if len(notifyIDs) > 0 {
		s.notifier.DispatchBulk(ctx, notifyIDs, notifications.Event{
			Kind:       notifications.KindPeriodOpened,
			PeriodID:   periodID,
			PeriodName: period.Name,
		})
	}

	if err := s.periods.MarkOpened(ctx, periodID, result.Created); err != nil {
		slog.Warn("mark period opened failed", "periodId", periodID, "err", err)
	}
	return result, nil
}

// SweepDuePeriods opens every active period whose start date has arrived and
// which has not been opened yet. Called from the background sweep job.
func (s *Service) SweepDuePeriods(ctx context.Context) (int, error) {
	due, err := s.periods.PeriodsDueToOpen(ctx)
	if err != nil {
		return 0, err
	}
	opened := 0
	for _, period := range due {
		if _, err := s.OpenPeriod(ctx, period.ID); err != nil {
			slog.Warn("period open failed", "periodId", period.ID, "err", err)
			continue
		}
		opened++
	}
	return opened, nil
}

// RemindPendingReviews nudges evaluators about submitted evaluations whose
// period has entered the manager-review window. Called from the sweep job.
func (s *Service) RemindPendingReviews(ctx context.Context) (int, error) {
	pending, err := s.store.ListAll(ctx, StatusSelfSubmitted)
	if err != nil {
		return 0, err
	}
	reminded := 0
	for _, eval := range pending {
		if eval.EvaluatorID == nil || eval.PeriodID == nil {
			continue
		}
		open, err := s.periods.IsOpenForManagerReview(ctx, *eval.PeriodID)
		if err != nil || !open {
			continue
		}
		evt := notifications.Event{
			Kind:         notifications.KindManagerReviewPending,
			RecipientID:  *eval.EvaluatorID,
			EvaluationID: eval.ID,
			PeriodID:     *eval.PeriodID,
		}
		if name, nErr := s.store.UserName(ctx, eval.EmployeeID); nErr == nil {
			evt.EmployeeName = name
		}
		if s.notifier.Dispatch(ctx, evt) {
			reminded++
		}
	}
	return reminded, nil
}

func (s *Service) Get(ctx context.Context, actor auth.UserContext, evaluationID string) (Evaluation, error) {
	eval, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !canView(actor, eval) {
		return Evaluation{}, ErrPermissionDenied
	}
	return eval, nil
}

func canView(actor auth.UserContext, eval Evaluation) bool {
	if actor.IsAdmin() || actor.UserID == eval.EmployeeID {
		return true
	}
	return eval.EvaluatorID != nil && actor.UserID == *eval.EvaluatorID
}

// List returns the caller's evaluations, on either side of the table; admins
// see everything.
func (s *Service) List(ctx context.Context, actor auth.UserContext, status string) ([]Evaluation, error) {
	if actor.IsAdmin() {
		return s.store.ListAll(ctx, status)
	}
	return s.store.ListForUser(ctx, actor.UserID, status)
}

func (s *Service) SoftDelete(ctx context.Context, actor auth.UserContext, evaluationID string) error {
	eval, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.UserID != eval.EmployeeID {
		return ErrPermissionDenied
	}
	return s.store.SoftDelete(ctx, evaluationID)
}

func (s *Service) Restore(ctx context.Context, actor auth.UserContext, evaluationID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return s.store.Restore(ctx, evaluationID)
}

func (s *Service) ListTrash(ctx context.Context, actor auth.UserContext) ([]Evaluation, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.store.ListTrash(ctx)
}

// PurgeTrash hard-deletes evaluations soft-deleted more than retentionDays
// ago. Called from the background purge job.
func (s *Service) PurgeTrash(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.store.PurgeDeletedBefore(ctx, cutoff)
}
