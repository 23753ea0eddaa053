package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description, ''), start_date, end_date,
           self_assessment_deadline, approval_deadline, active, opened_at,
           evaluations_created, created_at
    FROM evaluation_periods
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
			&p.SelfAssessmentDeadline, &p.ApprovalDeadline, &p.Active, &p.OpenedAt,
			&p.EvaluationsCreated, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description, ''), start_date, end_date,
           self_assessment_deadline, approval_deadline, active, opened_at,
           evaluations_created, created_at
    FROM evaluation_periods
    WHERE id = $1
  `, periodID).Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
		&p.SelfAssessmentDeadline, &p.ApprovalDeadline, &p.Active, &p.OpenedAt,
		&p.EvaluationsCreated, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNotFound
	}
	return p, err
}

func (s *Store) CreatePeriod(ctx context.Context, p Period) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_periods
      (name, description, start_date, end_date, self_assessment_deadline, approval_deadline, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, p.Name, p.Description, p.StartDate, p.EndDate, p.SelfAssessmentDeadline, p.ApprovalDeadline, p.Active).Scan(&id)
	return id, err
}

func (s *Store) SetActive(ctx context.Context, periodID string, active bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE evaluation_periods SET active = $1, updated_at = now() WHERE id = $2
  `, active, periodID)
	return err
}

func (s *Store) DeletePeriod(ctx context.Context, periodID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM evaluation_periods WHERE id = $1", periodID)
	return err
}

func (s *Store) PeriodsDueToOpen(ctx context.Context, now time.Time) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description, ''), start_date, end_date,
           self_assessment_deadline, approval_deadline, active, opened_at,
           evaluations_created, created_at
    FROM evaluation_periods
    WHERE active = true AND opened_at IS NULL AND start_date <= $1 AND end_date >= $1
  `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
			&p.SelfAssessmentDeadline, &p.ApprovalDeadline, &p.Active, &p.OpenedAt,
			&p.EvaluationsCreated, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) MarkOpened(ctx context.Context, periodID string, evaluationsCreated int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE evaluation_periods
    SET opened_at = now(), evaluations_created = $1, updated_at = now()
    WHERE id = $2
  `, evaluationsCreated, periodID)
	return err
}

// EligibleUserIDs returns the period's explicit eligibility list when one is
// configured, otherwise every active user.
func (s *Store) EligibleUserIDs(ctx context.Context, periodID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id FROM period_eligible_users WHERE period_id = $1
  `, periodID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return nil, rowsErr
	}
	if len(ids) > 0 {
		return ids, nil
	}

	rows, err = s.DB.Query(ctx, "SELECT id FROM users WHERE active = true")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) HasEvaluations(ctx context.Context, periodID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluations WHERE period_id = $1", periodID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
