package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/managers"
	"intranet/internal/domain/notifications"
	"intranet/internal/domain/periods"
)

type fakeStore struct {
	mu    sync.Mutex
	evals map[string]Evaluation
	seq   int
	names map[string]string

	// beforeUpdate runs inside ConditionalUpdate, before the status check,
	// to simulate a concurrent writer.
	beforeUpdate func(*fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{evals: map[string]Evaluation{}, names: map[string]string{}}
}

func (f *fakeStore) put(eval Evaluation) Evaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if eval.ID == "" {
		f.seq++
		eval.ID = fmt.Sprintf("ev-%d", f.seq)
	}
	f.evals[eval.ID] = eval
	return eval
}

func (f *fakeStore) Get(ctx context.Context, id string) (Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[id]
	if !ok || eval.DeletedAt != nil {
		return Evaluation{}, ErrNotFound
	}
	return eval, nil
}

func (f *fakeStore) Insert(ctx context.Context, eval Evaluation) (Evaluation, error) {
	eval.CreatedAt = time.Now()
	eval.UpdatedAt = eval.CreatedAt
	return f.put(eval), nil
}

func (f *fakeStore) ConditionalUpdate(ctx context.Context, id, expectedStatus string, patch Patch) (Evaluation, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[id]
	if !ok || eval.DeletedAt != nil {
		return Evaluation{}, ErrNotFound
	}
	if eval.Status != expectedStatus {
		return Evaluation{}, ErrStaleState
	}
	eval.Status = patch.Status
	if patch.SelfAssessment != nil {
		eval.SelfAssessment = patch.SelfAssessment
	}
	if patch.ManagerReview != nil {
		eval.ManagerReview = patch.ManagerReview
	}
	if patch.FinalScore != nil {
		eval.FinalScore = patch.FinalScore
	}
	if patch.EvaluatorComment != nil {
		eval.EvaluatorComment = *patch.EvaluatorComment
	}
	eval.UpdatedAt = time.Now()
	f.evals[id] = eval
	return eval, nil
}

func (f *fakeStore) ListForUser(ctx context.Context, userID, status string) ([]Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Evaluation
	for _, eval := range f.evals {
		if eval.DeletedAt != nil {
			continue
		}
		if eval.EmployeeID != userID && (eval.EvaluatorID == nil || *eval.EvaluatorID != userID) {
			continue
		}
		if status != "" && eval.Status != status {
			continue
		}
		out = append(out, eval)
	}
	return out, nil
}

func (f *fakeStore) ListAll(ctx context.Context, status string) ([]Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Evaluation
	for _, eval := range f.evals {
		if eval.DeletedAt != nil {
			continue
		}
		if status != "" && eval.Status != status {
			continue
		}
		out = append(out, eval)
	}
	return out, nil
}

func (f *fakeStore) ExistsForPeriod(ctx context.Context, employeeID, periodID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, eval := range f.evals {
		if eval.DeletedAt == nil && eval.EmployeeID == employeeID &&
			eval.PeriodID != nil && *eval.PeriodID == periodID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[id]
	if !ok || eval.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	eval.DeletedAt = &now
	f.evals[id] = eval
	return nil
}

func (f *fakeStore) Restore(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[id]
	if !ok || eval.DeletedAt == nil {
		return ErrNotFound
	}
	eval.DeletedAt = nil
	f.evals[id] = eval
	return nil
}

func (f *fakeStore) ListTrash(ctx context.Context) ([]Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Evaluation
	for _, eval := range f.evals {
		if eval.DeletedAt != nil {
			out = append(out, eval)
		}
	}
	return out, nil
}

func (f *fakeStore) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, eval := range f.evals {
		if eval.DeletedAt != nil && eval.DeletedAt.Before(cutoff) {
			delete(f.evals, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeStore) UserName(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.names[userID]; ok {
		return name, nil
	}
	return "", errors.New("no such user")
}

type fakeResolver struct {
	byUser map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, collaboratorID, periodID string) (string, error) {
	if managerID, ok := f.byUser[collaboratorID]; ok {
		return managerID, nil
	}
	return "", fmt.Errorf("%w for collaborator %s", managers.ErrNoManager, collaboratorID)
}

type fakePeriods struct {
	period       periods.Period
	selfOpen     bool
	reviewOpen   bool
	eligible     []string
	due          []periods.Period
	markedOpened map[string]int
}

func (f *fakePeriods) Get(ctx context.Context, periodID string) (periods.Period, error) {
	if f.period.ID != periodID {
		return periods.Period{}, periods.ErrNotFound
	}
	return f.period, nil
}

func (f *fakePeriods) IsOpenForSelfAssessment(ctx context.Context, periodID string) (bool, error) {
	return f.selfOpen, nil
}

func (f *fakePeriods) IsOpenForManagerReview(ctx context.Context, periodID string) (bool, error) {
	return f.reviewOpen, nil
}

func (f *fakePeriods) EligibleUserIDs(ctx context.Context, periodID string) ([]string, error) {
	return f.eligible, nil
}

func (f *fakePeriods) PeriodsDueToOpen(ctx context.Context) ([]periods.Period, error) {
	return f.due, nil
}

func (f *fakePeriods) MarkOpened(ctx context.Context, periodID string, created int) error {
	if f.markedOpened == nil {
		f.markedOpened = map[string]int{}
	}
	f.markedOpened[periodID] = created
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events chan notifications.Event
	bulk   [][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan notifications.Event, 32)}
}

func (f *fakeNotifier) Dispatch(ctx context.Context, evt notifications.Event) bool {
	f.events <- evt
	return true
}

func (f *fakeNotifier) DispatchBulk(ctx context.Context, recipientIDs []string, evt notifications.Event) int {
	f.mu.Lock()
	f.bulk = append(f.bulk, recipientIDs)
	f.mu.Unlock()
	f.events <- evt
	return len(recipientIDs)
}

func (f *fakeNotifier) waitFor(t *testing.T, kind string) notifications.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-f.events:
			if evt.Kind == kind {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

const (
	testEmployee  = "u-employee"
	testManager   = "u-manager"
	testAdmin     = "u-admin"
	testPeriodID  = "p-2026-h1"
	testStrangerU = "u-stranger"
)

func newTestService(open bool) (*Service, *fakeStore, *fakePeriods, *fakeNotifier) {
	store := newFakeStore()
	store.names[testEmployee] = "Ana Souza"
	store.names[testManager] = "Bruno Lima"
	p := &fakePeriods{
		period: periods.Period{
			ID:        testPeriodID,
			Name:      "2026 H1",
			StartDate: time.Now().AddDate(0, -1, 0),
			EndDate:   time.Now().AddDate(0, 1, 0),
			Active:    true,
		},
		selfOpen:   open,
		reviewOpen: open,
	}
	notifier := newFakeNotifier()
	resolver := &fakeResolver{byUser: map[string]string{testEmployee: testManager}}
	return NewService(store, resolver, p, notifier), store, p, notifier
}

func seedDraft(store *fakeStore, periodID *string) Evaluation {
	managerID := testManager
	return store.put(Evaluation{
		EmployeeID:  testEmployee,
		EvaluatorID: &managerID,
		PeriodID:    periodID,
		Status:      StatusDraft,
	})
}

func employeeCtx() auth.UserContext { return auth.UserContext{UserID: testEmployee, Role: auth.RoleEmployee} }
func managerCtx() auth.UserContext  { return auth.UserContext{UserID: testManager, Role: auth.RoleManager} }
func adminCtx() auth.UserContext    { return auth.UserContext{UserID: testAdmin, Role: auth.RoleAdmin} }

func ratingAnswers() *SelfAssessment {
	return &SelfAssessment{
		Answers: []Answer{
			{CriterionID: "quality", Kind: AnswerKindRating, Rating: 4},
			{CriterionID: "growth", Kind: AnswerKindText, Text: "Led the billing migration."},
		},
	}
}

func TestHappyPathToCompleted(t *testing.T) {
	svc, store, _, notifier := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	ctx := context.Background()

	res, err := svc.Apply(ctx, employeeCtx(), eval.ID, ActionSaveSelfAssessment, ActionPayload{SelfAssessment: ratingAnswers()})
	if err != nil {
		t.Fatalf("save self-assessment: %v", err)
	}
	if res.Status != StatusDraft {
		t.Fatalf("save must keep status draft, got %s", res.Status)
	}

	res, err = svc.Apply(ctx, employeeCtx(), eval.ID, ActionSubmitSelfAssessment, ActionPayload{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != StatusSelfSubmitted {
		t.Fatalf("status after submit = %s, want %s", res.Status, StatusSelfSubmitted)
	}
	evt := notifier.waitFor(t, notifications.KindSelfAssessmentCompleted)
	if evt.RecipientID != testManager {
		t.Fatalf("submit notifies %s, want the evaluator %s", evt.RecipientID, testManager)
	}

	review := &ManagerReview{
		Scores: []CompetencyScore{
			{CriterionID: "quality", Score: 5},
			{CriterionID: "growth", Score: 4},
		},
		Comment: "Strong half.",
	}
	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionSaveManagerReview, ActionPayload{ManagerReview: review}); err != nil {
		t.Fatalf("save manager review: %v", err)
	}

	res, err = svc.Apply(ctx, managerCtx(), eval.ID, ActionApprove, ActionPayload{Comment: "Approved."})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Fatalf("status after approve = %s, want %s", res.Status, StatusCompleted)
	}
	if res.Evaluation.FinalScore == nil || *res.Evaluation.FinalScore != 4.5 {
		t.Fatalf("final score = %v, want 4.5", res.Evaluation.FinalScore)
	}
	evt = notifier.waitFor(t, notifications.KindEvaluationCompleted)
	if evt.RecipientID != testEmployee {
		t.Fatalf("approve notifies %s, want the employee %s", evt.RecipientID, testEmployee)
	}

	// Completed is terminal.
	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionReturn, ActionPayload{Comment: "too late"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("return after completion should be %v, got %v", ErrInvalidTransition, err)
	}
}

func TestReturnAndResubmit(t *testing.T) {
	svc, store, _, notifier := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	eval.Status = StatusSelfSubmitted
	eval.SelfAssessment = ratingAnswers()
	store.put(eval)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionReturn, ActionPayload{}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("return without comments should fail validation, got %v", err)
	}

	res, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionReturn, ActionPayload{Comment: "Please expand the growth answer."})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if res.Status != StatusReturned {
		t.Fatalf("status after return = %s, want %s", res.Status, StatusReturned)
	}
	evt := notifier.waitFor(t, notifications.KindEvaluationReturned)
	if evt.RecipientID != testEmployee || evt.Comments == "" {
		t.Fatalf("returned event = %+v, want employee recipient and the comments", evt)
	}

	// Employee revises while returned, then resubmits.
	revision := &SelfAssessment{Answers: []Answer{{CriterionID: "growth", Kind: AnswerKindText, Text: "Expanded with metrics."}}}
	if _, err := svc.Apply(ctx, employeeCtx(), eval.ID, ActionSaveSelfAssessment, ActionPayload{SelfAssessment: revision}); err != nil {
		t.Fatalf("save while returned: %v", err)
	}

	res, err = svc.Apply(ctx, employeeCtx(), eval.ID, ActionResubmit, ActionPayload{})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if res.Status != StatusSelfSubmitted {
		t.Fatalf("status after resubmit = %s, want %s", res.Status, StatusSelfSubmitted)
	}
	if got := res.Evaluation.SelfAssessment.Answers; len(got) != 2 || got[1].Text != "Expanded with metrics." {
		t.Fatalf("resubmit must carry the revised answers, got %+v", got)
	}
	if evt := notifier.waitFor(t, notifications.KindEvaluationRevised); evt.RecipientID != testManager {
		t.Fatalf("resubmit notifies %s, want the evaluator", evt.RecipientID)
	}
}

func TestOwnershipEnforcement(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	ctx := context.Background()
	payload := ActionPayload{SelfAssessment: ratingAnswers()}

	stranger := auth.UserContext{UserID: testStrangerU, Role: auth.RoleEmployee}
	if _, err := svc.Apply(ctx, stranger, eval.ID, ActionSaveSelfAssessment, payload); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("stranger save should be %v, got %v", ErrPermissionDenied, err)
	}

	// The evaluator cannot act on the employee side, nor the other way round.
	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionSubmitSelfAssessment, payload); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("evaluator submit should be %v, got %v", ErrPermissionDenied, err)
	}
	eval.Status = StatusSelfSubmitted
	store.put(eval)
	if _, err := svc.Apply(ctx, employeeCtx(), eval.ID, ActionApprove, ActionPayload{Comment: "self approve"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("employee approve should be %v, got %v", ErrPermissionDenied, err)
	}
}

func TestAdminBypassesOwnershipNotState(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	ctx := context.Background()

	// Ownership is bypassed, but approve is still illegal from draft.
	_, err := svc.Apply(ctx, adminCtx(), eval.ID, ActionApprove, ActionPayload{Comment: "forced"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("admin approve from draft should be %v, got %v", ErrInvalidTransition, err)
	}

	eval.Status = StatusSelfSubmitted
	store.put(eval)
	res, err := svc.Apply(ctx, adminCtx(), eval.ID, ActionApprove, ActionPayload{
		ManagerReview: &ManagerReview{Scores: []CompetencyScore{{CriterionID: "quality", Score: 3}}},
		Comment:       "Approved on the manager's behalf.",
	})
	if err != nil {
		t.Fatalf("admin approve from self_submitted: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s", res.Status, StatusCompleted)
	}
}

func TestPeriodGate(t *testing.T) {
	svc, store, periodsAPI, _ := newTestService(false)
	pid := testPeriodID
	gated := seedDraft(store, &pid)
	ctx := context.Background()
	payload := ActionPayload{SelfAssessment: ratingAnswers()}

	res, err := svc.Apply(ctx, employeeCtx(), gated.ID, ActionSubmitSelfAssessment, payload)
	if !errors.Is(err, ErrPeriodClosed) {
		t.Fatalf("submit outside the window should be %v, got %v", ErrPeriodClosed, err)
	}
	if res.Status != StatusDraft {
		t.Fatalf("rejection must report the actual status, got %s", res.Status)
	}

	// Saving a draft is never gated.
	if _, err := svc.Apply(ctx, employeeCtx(), gated.ID, ActionSaveSelfAssessment, payload); err != nil {
		t.Fatalf("save with window closed: %v", err)
	}

	// Ad-hoc evaluations have no period and skip the gate entirely.
	adHoc := seedDraft(store, nil)
	if _, err := svc.Apply(ctx, employeeCtx(), adHoc.ID, ActionSubmitSelfAssessment, payload); err != nil {
		t.Fatalf("ad-hoc submit: %v", err)
	}

	periodsAPI.reviewOpen = false
	gatedEval, _ := store.Get(ctx, gated.ID)
	gatedEval.Status = StatusSelfSubmitted
	store.put(gatedEval)
	if _, err := svc.Apply(ctx, managerCtx(), gated.ID, ActionApprove, ActionPayload{
		ManagerReview: &ManagerReview{Scores: []CompetencyScore{{CriterionID: "quality", Score: 4}}},
		Comment:       "ok",
	}); !errors.Is(err, ErrPeriodClosed) {
		t.Fatalf("approve outside the window should be %v, got %v", ErrPeriodClosed, err)
	}
}

func TestStaleStateOnConcurrentTransition(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	eval.Status = StatusSelfSubmitted
	eval.SelfAssessment = ratingAnswers()
	store.put(eval)

	// Another evaluator session returns the record between this caller's read
	// and its write.
	store.beforeUpdate = func(f *fakeStore) {
		f.mu.Lock()
		defer f.mu.Unlock()
		e := f.evals[eval.ID]
		e.Status = StatusReturned
		f.evals[eval.ID] = e
		f.beforeUpdate = nil
	}

	_, err := svc.Apply(context.Background(), managerCtx(), eval.ID, ActionApprove, ActionPayload{
		ManagerReview: &ManagerReview{Scores: []CompetencyScore{{CriterionID: "quality", Score: 4}}},
		Comment:       "ok",
	})
	if !errors.Is(err, ErrStaleState) {
		t.Fatalf("lost race should be %v, got %v", ErrStaleState, err)
	}
}

func TestManagerReviewPartialSavesMerge(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, employeeCtx(), eval.ID, ActionSubmitSelfAssessment, ActionPayload{SelfAssessment: ratingAnswers()}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	first := &ManagerReview{Scores: []CompetencyScore{{CriterionID: "quality", Score: 5}}}
	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionSaveManagerReview, ActionPayload{ManagerReview: first}); err != nil {
		t.Fatalf("first partial save: %v", err)
	}

	second := &ManagerReview{Scores: []CompetencyScore{{CriterionID: "growth", Score: 4}}}
	res, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionSaveManagerReview, ActionPayload{ManagerReview: second})
	if err != nil {
		t.Fatalf("second partial save: %v", err)
	}
	saved := res.Evaluation.ManagerReview
	if saved == nil || len(saved.Scores) != 2 {
		t.Fatalf("after two partial saves, scores = %d, want 2", len(saved.Scores))
	}
	if saved.Scores[0].CriterionID != "quality" || saved.Scores[0].Score != 5 {
		t.Fatalf("first save's score must survive the second, got %+v", saved.Scores[0])
	}

	// Approve with only the comment in the payload; the stored scores carry.
	res, err = svc.Apply(ctx, managerCtx(), eval.ID, ActionApprove, ActionPayload{
		ManagerReview: &ManagerReview{Scores: []CompetencyScore{{CriterionID: "growth", Score: 3}}},
		Comment:       "Approved.",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	final := res.Evaluation.ManagerReview
	if len(final.Scores) != 2 {
		t.Fatalf("approve must merge the payload onto the stored review, scores = %d", len(final.Scores))
	}
	if res.Evaluation.FinalScore == nil || *res.Evaluation.FinalScore != 4 {
		t.Fatalf("final score = %v, want 4 from quality 5 and revised growth 3", res.Evaluation.FinalScore)
	}
}

func TestApproveRequiresScoresAndComment(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	eval.Status = StatusSelfSubmitted
	store.put(eval)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionApprove, ActionPayload{Comment: "no scores"}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("approve without scores should fail validation, got %v", err)
	}
	if _, err := svc.Apply(ctx, managerCtx(), eval.ID, ActionApprove, ActionPayload{
		ManagerReview: &ManagerReview{Scores: []CompetencyScore{{CriterionID: "quality", Score: 4}}},
	}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("approve without a comment should fail validation, got %v", err)
	}
}

func TestUnknownActionRejected(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)

	_, err := svc.Apply(context.Background(), employeeCtx(), eval.ID, "escalate", ActionPayload{})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("unknown action should be %v, got %v", ErrValidationFailed, err)
	}
}

func TestCreateResolvesEvaluator(t *testing.T) {
	svc, _, _, notifier := newTestService(true)
	ctx := context.Background()
	pid := testPeriodID

	created, err := svc.Create(ctx, testEmployee, &pid)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.EvaluatorID == nil || *created.EvaluatorID != testManager {
		t.Fatalf("evaluator = %v, want %s", created.EvaluatorID, testManager)
	}
	if created.Status != StatusDraft {
		t.Fatalf("new evaluation status = %s, want %s", created.Status, StatusDraft)
	}
	if created.StartDate == nil || created.EndDate == nil {
		t.Fatalf("period evaluations must inherit the period dates")
	}
	notifier.waitFor(t, notifications.KindEvaluationCreated)

	if _, err := svc.Create(ctx, testEmployee, &pid); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second create for period should be %v, got %v", ErrAlreadyExists, err)
	}

	if _, err := svc.Create(ctx, testStrangerU, nil); !errors.Is(err, managers.ErrNoManager) {
		t.Fatalf("create without manager mapping should be %v, got %v", managers.ErrNoManager, err)
	}
}

func TestOpenPeriod(t *testing.T) {
	svc, store, periodsAPI, notifier := newTestService(true)
	ctx := context.Background()
	pid := testPeriodID

	// One employee already has an evaluation, one lacks a manager mapping,
	// one is fresh.
	store.put(Evaluation{EmployeeID: "u-existing", PeriodID: &pid, Status: StatusDraft})
	periodsAPI.eligible = []string{"u-existing", testStrangerU, testEmployee}

	result, err := svc.OpenPeriod(ctx, pid)
	if err != nil {
		t.Fatalf("open period: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("created = %d, want 1", result.Created)
	}
	if result.Eligible != 3 {
		t.Fatalf("eligible = %d, want 3", result.Eligible)
	}
	if len(result.SkippedNoManager) != 1 || result.SkippedNoManager[0] != testStrangerU {
		t.Fatalf("skipped = %v, want [%s]", result.SkippedNoManager, testStrangerU)
	}
	if periodsAPI.markedOpened[pid] != 1 {
		t.Fatalf("period not marked opened with created count, got %v", periodsAPI.markedOpened)
	}

	evt := notifier.waitFor(t, notifications.KindPeriodOpened)
	if evt.PeriodName != "2026 H1" {
		t.Fatalf("broadcast period name = %q", evt.PeriodName)
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.bulk) != 1 || len(notifier.bulk[0]) != 1 || notifier.bulk[0][0] != testEmployee {
		t.Fatalf("broadcast recipients = %v, want only the newly created employee", notifier.bulk)
	}
}

func TestRemindPendingReviews(t *testing.T) {
	svc, store, _, notifier := newTestService(true)
	ctx := context.Background()
	pid := testPeriodID

	submitted := seedDraft(store, &pid)
	submitted.Status = StatusSelfSubmitted
	store.put(submitted)
	seedDraft(store, &pid) // still a draft, no reminder

	reminded, err := svc.RemindPendingReviews(ctx)
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if reminded != 1 {
		t.Fatalf("reminded = %d, want 1", reminded)
	}
	evt := notifier.waitFor(t, notifications.KindManagerReviewPending)
	if evt.RecipientID != testManager {
		t.Fatalf("reminder recipient = %s, want the evaluator", evt.RecipientID)
	}
}

func TestTrashLifecycle(t *testing.T) {
	svc, store, _, _ := newTestService(true)
	pid := testPeriodID
	eval := seedDraft(store, &pid)
	ctx := context.Background()

	stranger := auth.UserContext{UserID: testStrangerU, Role: auth.RoleEmployee}
	if err := svc.SoftDelete(ctx, stranger, eval.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("stranger delete should be %v, got %v", ErrPermissionDenied, err)
	}

	if err := svc.SoftDelete(ctx, employeeCtx(), eval.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, employeeCtx(), eval.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted evaluation should read as %v, got %v", ErrNotFound, err)
	}

	if _, err := svc.ListTrash(ctx, employeeCtx()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-admin trash listing should be %v, got %v", ErrPermissionDenied, err)
	}
	trash, err := svc.ListTrash(ctx, adminCtx())
	if err != nil || len(trash) != 1 {
		t.Fatalf("trash = %v (%v), want one entry", trash, err)
	}

	if err := svc.Restore(ctx, adminCtx(), eval.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := svc.Get(ctx, employeeCtx(), eval.ID); err != nil {
		t.Fatalf("restored evaluation should read back, got %v", err)
	}

	// Purge only touches records past the retention cutoff.
	old := seedDraft(store, nil)
	past := time.Now().AddDate(0, 0, -45)
	store.mu.Lock()
	e := store.evals[old.ID]
	e.DeletedAt = &past
	store.evals[old.ID] = e
	store.mu.Unlock()

	purged, err := svc.PurgeTrash(ctx, 30)
	if err != nil || purged != 1 {
		t.Fatalf("purged = %d (%v), want 1", purged, err)
	}
}
