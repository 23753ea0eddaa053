package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/periods"
)

var ErrNotCompleted = errors.New("evaluation is not completed")

type EvaluationSource interface {
	Get(ctx context.Context, actor auth.UserContext, evaluationID string) (evaluation.Evaluation, error)
}

type NameSource interface {
	UserName(ctx context.Context, userID string) (string, error)
}

type PeriodSource interface {
	Get(ctx context.Context, periodID string) (periods.Period, error)
}

type Service struct {
	evals   EvaluationSource
	names   NameSource
	periods PeriodSource
}

func NewService(evals EvaluationSource, names NameSource, periodSource PeriodSource) *Service {
	return &Service{evals: evals, names: names, periods: periodSource}
}

// EvaluationPDF renders a completed evaluation as a PDF document. Access
// control is the read rule: the employee, the evaluator, or an admin.
func (s *Service) EvaluationPDF(ctx context.Context, actor auth.UserContext, evaluationID string) ([]byte, error) {
	eval, err := s.evals.Get(ctx, actor, evaluationID)
	if err != nil {
		return nil, err
	}
	if eval.Status != evaluation.StatusCompleted {
		return nil, ErrNotCompleted
	}

	employeeName := s.lookupName(ctx, eval.EmployeeID)
	evaluatorName := ""
	if eval.EvaluatorID != nil {
		evaluatorName = s.lookupName(ctx, *eval.EvaluatorID)
	}
	periodName := "Ad-hoc"
	if eval.PeriodID != nil {
		if period, pErr := s.periods.Get(ctx, *eval.PeriodID); pErr == nil {
			periodName = period.Name
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Evaluator: %s", evaluatorName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", periodName))
	if eval.StartDate != nil && eval.EndDate != nil {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Window: %s to %s",
			eval.StartDate.Format("2006-01-02"), eval.EndDate.Format("2006-01-02")))
	}
	pdf.Ln(12)

	if eval.SelfAssessment != nil && len(eval.SelfAssessment.Answers) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Self-Assessment")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, answer := range eval.SelfAssessment.Answers {
			switch answer.Kind {
			case evaluation.AnswerKindRating:
				pdf.Cell(0, 7, fmt.Sprintf("%s: %d / %d", answer.CriterionID, answer.Rating, evaluation.ScoreMax))
				pdf.Ln(6)
			default:
				pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", answer.CriterionID, answer.Text), "", "L", false)
				pdf.Ln(1)
			}
		}
		if eval.SelfAssessment.Comment != "" {
			pdf.MultiCell(0, 6, fmt.Sprintf("Comment: %s", eval.SelfAssessment.Comment), "", "L", false)
		}
		pdf.Ln(6)
	}

	if eval.ManagerReview != nil && len(eval.ManagerReview.Scores) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Manager Review")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, score := range eval.ManagerReview.Scores {
			line := fmt.Sprintf("%s: %d / %d", score.CriterionID, score.Score, evaluation.ScoreMax)
			if score.Comment != "" {
				line += " - " + score.Comment
			}
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	if eval.FinalScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Final Score: %.2f", *eval.FinalScore))
		pdf.Ln(8)
	}
	if eval.EvaluatorComment != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Evaluator Comment: %s", eval.EvaluatorComment), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) lookupName(ctx context.Context, userID string) string {
	name, err := s.names.UserName(ctx, userID)
	if err != nil {
		return userID
	}
	return name
}
