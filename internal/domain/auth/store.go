package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthUser struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	Active       bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, name, role, password_hash, active
    FROM users
    WHERE lower(email) = lower($1) AND active = true
  `, email).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash, &user.Active)
	return user, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}

func (s *Store) UserName(ctx context.Context, userID string) (string, error) {
	var name string
	if err := s.DB.QueryRow(ctx, "SELECT name FROM users WHERE id = $1", userID).Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE active = true")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
