package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"calibra/internal/auth"
	domainauth "calibra/internal/domain/auth"
	"calibra/internal/platform/config"
)

// Seed provisions the default tenant with an HR admin and a small department
// tree so a fresh environment is usable immediately. It is idempotent: an
// existing tenant short-circuits everything.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var tenantID string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", cfg.SeedTenantName).Scan(&tenantID)
	if err == nil {
		return nil
	}

	adminEmail := cfg.SeedAdminEmail
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminPassword := cfg.SeedAdminPassword
	if adminPassword == "" {
		adminPassword = "changeme"
		slog.Warn("seeding admin with default password; set SEED_ADMIN_PASSWORD")
	}
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		"INSERT INTO tenants (name) VALUES ($1) RETURNING id", cfg.SeedTenantName,
	).Scan(&tenantID); err != nil {
		return err
	}

	var rootDept string
	if err := tx.QueryRow(ctx,
		"INSERT INTO departments (tenant_id, name) VALUES ($1, $2) RETURNING id",
		tenantID, "Operations",
	).Scan(&rootDept); err != nil {
		return err
	}
	for _, name := range []string{"Engineering", "Sales"} {
		if _, err := tx.Exec(ctx,
			"INSERT INTO departments (tenant_id, name, parent_id) VALUES ($1, $2, $3)",
			tenantID, name, rootDept,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role, status)
    VALUES ($1, $2, $3, $4, 'active')
  `, tenantID, adminEmail, passwordHash, domainauth.RoleHR); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	slog.Info("seeded default tenant", "tenant", cfg.SeedTenantName, "admin", adminEmail)
	return nil
}
