package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const evaluationColumns = `
    id, employee_id, evaluator_id, period_id, start_date, end_date, status,
    self_assessment, manager_review, final_score, COALESCE(evaluator_comment, ''),
    deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var e Evaluation
	var selfJSON, reviewJSON []byte
	err := row.Scan(&e.ID, &e.EmployeeID, &e.EvaluatorID, &e.PeriodID, &e.StartDate, &e.EndDate,
		&e.Status, &selfJSON, &reviewJSON, &e.FinalScore, &e.EvaluatorComment,
		&e.DeletedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Evaluation{}, err
	}
	if len(selfJSON) > 0 {
		if err := json.Unmarshal(selfJSON, &e.SelfAssessment); err != nil {
			return Evaluation{}, fmt.Errorf("decode self assessment: %w", err)
		}
	}
	if len(reviewJSON) > 0 {
		if err := json.Unmarshal(reviewJSON, &e.ManagerReview); err != nil {
			return Evaluation{}, fmt.Errorf("decode manager review: %w", err)
		}
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+evaluationColumns+`
    FROM evaluations
    WHERE id = $1 AND deleted_at IS NULL
  `, evaluationID)
	eval, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return eval, err
}

func (s *Store) Insert(ctx context.Context, eval Evaluation) (Evaluation, error) {
	var selfJSON, reviewJSON []byte
	var err error
	if eval.SelfAssessment != nil {
		if selfJSON, err = json.Marshal(eval.SelfAssessment); err != nil {
			return Evaluation{}, err
		}
	}
	if eval.ManagerReview != nil {
		if reviewJSON, err = json.Marshal(eval.ManagerReview); err != nil {
			return Evaluation{}, err
		}
	}
	row := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations
      (employee_id, evaluator_id, period_id, start_date, end_date, status, self_assessment, manager_review)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING`+evaluationColumns+`
  `, eval.EmployeeID, eval.EvaluatorID, eval.PeriodID, eval.StartDate, eval.EndDate, eval.Status, selfJSON, reviewJSON)
	return scanEvaluation(row)
}

// ConditionalUpdate is the optimistic-concurrency write: the status column is
// the compare-and-swap token. Zero rows updated means the record is gone,
// soft-deleted, or its status moved; a re-read disambiguates.
func (s *Store) ConditionalUpdate(ctx context.Context, evaluationID, expectedStatus string, patch Patch) (Evaluation, error) {
	sets := []string{"status = $3", "updated_at = now()"}
	args := []any{evaluationID, expectedStatus, patch.Status}

	if patch.SelfAssessment != nil {
		selfJSON, err := json.Marshal(patch.SelfAssessment)
		if err != nil {
			return Evaluation{}, err
		}
		args = append(args, selfJSON)
		sets = append(sets, fmt.Sprintf("self_assessment = $%d", len(args)))
	}
	if patch.ManagerReview != nil {
		reviewJSON, err := json.Marshal(patch.ManagerReview)
		if err != nil {
			return Evaluation{}, err
		}
		args = append(args, reviewJSON)
		sets = append(sets, fmt.Sprintf("manager_review = $%d", len(args)))
	}
	if patch.FinalScore != nil {
		args = append(args, *patch.FinalScore)
		sets = append(sets, fmt.Sprintf("final_score = $%d", len(args)))
	}
	if patch.EvaluatorComment != nil {
		args = append(args, *patch.EvaluatorComment)
		sets = append(sets, fmt.Sprintf("evaluator_comment = $%d", len(args)))
	}

	query := "UPDATE evaluations SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = $1 AND status = $2 AND deleted_at IS NULL RETURNING" + evaluationColumns

	// The status write and the score mirror commit together, so a failed
	// action never leaves a half-applied record behind.
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, query, args...)
	eval, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := s.Get(ctx, evaluationID); errors.Is(getErr, ErrNotFound) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, ErrStaleState
	}
	if err != nil {
		return Evaluation{}, err
	}
	if patch.ManagerReview != nil {
		if err := syncScores(ctx, tx, eval.ID, patch.ManagerReview.Scores); err != nil {
			return Evaluation{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

// syncScores mirrors the review's competency scores into evaluation_scores,
// the normalized rows reporting queries read. Runs inside the caller's
// transaction.
func syncScores(ctx context.Context, tx pgx.Tx, evaluationID string, scores []CompetencyScore) error {
	if _, err := tx.Exec(ctx, "DELETE FROM evaluation_scores WHERE evaluation_id = $1", evaluationID); err != nil {
		return err
	}
	for _, score := range scores {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluation_scores (evaluation_id, criterion_id, score, comment)
      VALUES ($1,$2,$3,$4)
    `, evaluationID, score.CriterionID, score.Score, score.Comment); err != nil {
			return err
		}
	}
	return nil
}

// ListForUser returns evaluations where the user is the employee or the
// evaluator, so managers see their team's records next to their own.
func (s *Store) ListForUser(ctx context.Context, userID, status string) ([]Evaluation, error) {
	query := `
    SELECT` + evaluationColumns + `
    FROM evaluations
    WHERE deleted_at IS NULL AND (employee_id = $1 OR evaluator_id = $1)
  `
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	return s.queryEvaluations(ctx, query, args...)
}

func (s *Store) ListAll(ctx context.Context, status string) ([]Evaluation, error) {
	query := `
    SELECT` + evaluationColumns + `
    FROM evaluations
    WHERE deleted_at IS NULL
  `
	var args []any
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	return s.queryEvaluations(ctx, query, args...)
}

func (s *Store) ExistsForPeriod(ctx context.Context, employeeID, periodID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM evaluations
    WHERE employee_id = $1 AND period_id = $2 AND deleted_at IS NULL
  `, employeeID, periodID).Scan(&count)
	return count > 0, err
}

func (s *Store) SoftDelete(ctx context.Context, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations SET deleted_at = now(), updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Restore(ctx context.Context, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations SET deleted_at = NULL, updated_at = now()
    WHERE id = $1 AND deleted_at IS NOT NULL
  `, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListTrash(ctx context.Context) ([]Evaluation, error) {
	query := `
    SELECT` + evaluationColumns + `
    FROM evaluations
    WHERE deleted_at IS NOT NULL
    ORDER BY deleted_at DESC
  `
	return s.queryEvaluations(ctx, query)
}

// PurgeDeletedBefore hard-deletes soft-deleted evaluations past the retention
// window, together with their scoring detail rows.
func (s *Store) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM evaluation_scores
    WHERE evaluation_id IN (SELECT id FROM evaluations WHERE deleted_at IS NOT NULL AND deleted_at < $1)
  `, cutoff); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
    DELETE FROM evaluations WHERE deleted_at IS NOT NULL AND deleted_at < $1
  `, cutoff)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) UserName(ctx context.Context, userID string) (string, error) {
	var name string
	if err := s.DB.QueryRow(ctx, "SELECT name FROM users WHERE id = $1", userID).Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) queryEvaluations(ctx context.Context, query string, args ...any) ([]Evaluation, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, eval)
	}
	return out, rows.Err()
}
