package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/periods"
)

type fakeEvals struct {
	eval evaluation.Evaluation
	err  error
}

func (f *fakeEvals) Get(ctx context.Context, actor auth.UserContext, evaluationID string) (evaluation.Evaluation, error) {
	return f.eval, f.err
}

type fakeNames struct{}

func (fakeNames) UserName(ctx context.Context, userID string) (string, error) {
	return "Name of " + userID, nil
}

type fakePeriods struct{}

func (fakePeriods) Get(ctx context.Context, periodID string) (periods.Period, error) {
	return periods.Period{ID: periodID, Name: "2026 H1"}, nil
}

func completedEvaluation() evaluation.Evaluation {
	manager := "u-manager"
	pid := "p-1"
	score := 4.5
	return evaluation.Evaluation{
		ID:          "ev-1",
		EmployeeID:  "u-employee",
		EvaluatorID: &manager,
		PeriodID:    &pid,
		Status:      evaluation.StatusCompleted,
		SelfAssessment: &evaluation.SelfAssessment{
			Answers: []evaluation.Answer{
				{CriterionID: "quality", Kind: evaluation.AnswerKindRating, Rating: 4},
				{CriterionID: "growth", Kind: evaluation.AnswerKindText, Text: "Led the migration."},
			},
		},
		ManagerReview: &evaluation.ManagerReview{
			Scores: []evaluation.CompetencyScore{
				{CriterionID: "quality", Score: 5, Comment: "consistently strong"},
				{CriterionID: "growth", Score: 4},
			},
		},
		FinalScore:       &score,
		EvaluatorComment: "Approved.",
	}
}

func TestEvaluationPDF(t *testing.T) {
	svc := NewService(&fakeEvals{eval: completedEvaluation()}, fakeNames{}, fakePeriods{})

	data, err := svc.EvaluationPDF(context.Background(), auth.UserContext{UserID: "u-employee"}, "ev-1")
	if err != nil {
		t.Fatalf("EvaluationPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF, first bytes %q", data[:8])
	}
}

func TestEvaluationPDFRequiresCompletion(t *testing.T) {
	eval := completedEvaluation()
	eval.Status = evaluation.StatusSelfSubmitted
	svc := NewService(&fakeEvals{eval: eval}, fakeNames{}, fakePeriods{})

	if _, err := svc.EvaluationPDF(context.Background(), auth.UserContext{UserID: "u-employee"}, "ev-1"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("want ErrNotCompleted, got %v", err)
	}
}

func TestEvaluationPDFPropagatesAccessErrors(t *testing.T) {
	svc := NewService(&fakeEvals{err: evaluation.ErrPermissionDenied}, fakeNames{}, fakePeriods{})

	if _, err := svc.EvaluationPDF(context.Background(), auth.UserContext{UserID: "u-other"}, "ev-1"); !errors.Is(err, evaluation.ErrPermissionDenied) {
		t.Fatalf("want ErrPermissionDenied, got %v", err)
	}
}
