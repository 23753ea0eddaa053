package managers

import "context"

// ActiveMappings returns active mappings for a collaborator that are either
// scoped to the given period or global. periodID may be empty, in which case
// only global mappings match.
func (s *Store) ActiveMappings(ctx context.Context, collaboratorID, periodID string) ([]Mapping, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, collaborator_id, manager_id, period_id, active, created_at, updated_at
    FROM manager_mappings
    WHERE collaborator_id = $1
      AND active = true
      AND (period_id IS NULL OR ($2 <> '' AND period_id = $2::uuid))
    ORDER BY period_id NULLS LAST, updated_at DESC
  `, collaboratorID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.CollaboratorID, &m.ManagerID, &m.PeriodID, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListMappings(ctx context.Context, collaboratorID string) ([]Mapping, error) {
	query := `
    SELECT id, collaborator_id, manager_id, period_id, active, created_at, updated_at
    FROM manager_mappings
  `
	args := []any{}
	if collaboratorID != "" {
		query += " WHERE collaborator_id = $1"
		args = append(args, collaboratorID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.CollaboratorID, &m.ManagerID, &m.PeriodID, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMapping deactivates any previous active mapping for the same
// (collaborator, period) scope before inserting, so at most one resolves.
func (s *Store) CreateMapping(ctx context.Context, collaboratorID, managerID string, periodID *string) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if periodID == nil {
		if _, err := tx.Exec(ctx, `
      UPDATE manager_mappings SET active = false, updated_at = now()
      WHERE collaborator_id = $1 AND period_id IS NULL AND active = true
    `, collaboratorID); err != nil {
			return "", err
		}
	} else {
		if _, err := tx.Exec(ctx, `
      UPDATE manager_mappings SET active = false, updated_at = now()
      WHERE collaborator_id = $1 AND period_id = $2 AND active = true
    `, collaboratorID, *periodID); err != nil {
			return "", err
		}
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO manager_mappings (collaborator_id, manager_id, period_id, active)
    VALUES ($1,$2,$3,true)
    RETURNING id
  `, collaboratorID, managerID, periodID).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeactivateMapping(ctx context.Context, mappingID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE manager_mappings SET active = false, updated_at = now() WHERE id = $1
  `, mappingID)
	return err
}

func (s *Store) IsEvaluationManager(ctx context.Context, userID string) (bool, error) {
	var enabled bool
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(is_evaluation_manager, false) FROM users WHERE id = $1
  `, userID).Scan(&enabled)
	return enabled, err
}

func (s *Store) SetEvaluationManager(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET is_evaluation_manager = $1, updated_at = now() WHERE id = $2
  `, enabled, userID)
	return err
}
