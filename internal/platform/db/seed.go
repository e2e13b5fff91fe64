package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain/auth"
	"talentflow/internal/platform/config"
)

// Seed provisions the tenant and admin account from the environment, and
// optionally a set of demo approvers and subjects for local development.
// It is idempotent: existing rows are left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var tenantID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO tenants (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, cfg.SeedTenantName).Scan(&tenantID); err != nil {
		return err
	}

	if _, err := ensureUser(ctx, pool, tenantID, "Administrator", cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin); err != nil {
		return err
	}

	if !cfg.SeedDemoData {
		return nil
	}
	return seedDemo(ctx, pool, tenantID)
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, tenantID, name, email, password, role string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (tenant_id, name, email, password_hash, role, active)
    VALUES ($1,$2,$3,$4,$5,TRUE)
    RETURNING id
  `, tenantID, name, email, hash, role).Scan(&id)
	return id, err
}

func seedDemo(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	demoApprovers := []struct {
		name string
		role string
	}{
		{"Direct Manager", auth.RoleApprover},
		{"Compensation Specialist", auth.RoleApprover},
		{"HR Manager", auth.RoleApprover},
		{"People Director", auth.RoleApprover},
		{"CFO", auth.RoleApprover},
	}
	var employeeID string
	for i, a := range demoApprovers {
		email := fmt.Sprintf("approver%d@example.com", i+1)
		if _, err := ensureUser(ctx, pool, tenantID, a.name, email, "Approver123!", a.role); err != nil {
			return err
		}
	}
	var err error
	employeeID, err = ensureUser(ctx, pool, tenantID, "Demo Employee", "employee@example.com", "Employee123!", auth.RoleEmployee)
	if err != nil {
		return err
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM bonus_calculations WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := pool.Exec(ctx, `
    INSERT INTO bonus_calculations (tenant_id, employee_id, total_amount_cents, status)
    VALUES ($1,$2,250000,'draft')
  `, tenantID, employeeID); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO job_descriptions (tenant_id, position_title, status)
    VALUES ($1,'Senior Analyst','draft')
  `, tenantID); err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO evaluations (tenant_id, employee_id, cycle, status)
    VALUES ($1,$2,'2026-H1','draft')
  `, tenantID, employeeID)
	return err
}
