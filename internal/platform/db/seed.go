package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"intranet/internal/domain/auth"
	"intranet/internal/platform/config"
)

// Seed ensures a bootstrap admin account exists so a fresh install can be
// configured through the API.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", cfg.SeedAdminEmail).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, name, role, password_hash, active)
    VALUES ($1, $2, $3, $4, true)
  `, cfg.SeedAdminEmail, "Administrator", auth.RoleAdmin, hash)
	return err
}
