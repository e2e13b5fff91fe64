package workflow_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain/directory"
	"talentflow/internal/domain/workflow"
	"talentflow/internal/platform/db"
)

// Exercises the Postgres store end to end: creation, both decision paths,
// the optimistic guard, and the audit/outbox rows the transitions write.
func TestPostgresStoreJourney(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	var tenantID string
	if err := pool.QueryRow(ctx,
		"INSERT INTO tenants (name) VALUES ($1) RETURNING id",
		"journey-"+uuid.NewString(),
	).Scan(&tenantID); err != nil {
		t.Fatalf("tenant insert failed: %v", err)
	}

	newUser := func(name, role string) string {
		var id string
		if err := pool.QueryRow(ctx, `
      INSERT INTO users (tenant_id, name, email, password_hash, role, active)
      VALUES ($1,$2,$3,'x',$4,TRUE)
      RETURNING id
    `, tenantID, name, uuid.NewString()+"@example.com", role).Scan(&id); err != nil {
			t.Fatalf("user insert failed: %v", err)
		}
		return id
	}
	ownerID := newUser("Owner", "employee")
	firstID := newUser("First Approver", "approver")
	secondID := newUser("Second Approver", "approver")

	var jdID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO job_descriptions (tenant_id, position_title, status)
    VALUES ($1,'Senior Analyst','draft')
    RETURNING id
  `, tenantID).Scan(&jdID); err != nil {
		t.Fatalf("subject insert failed: %v", err)
	}

	svc := workflow.NewService(workflow.NewStore(pool), directory.NewStore(pool))

	inst, err := svc.Create(ctx, tenantID, ownerID, workflow.SubjectJobDescription, jdID, true,
		[]workflow.ApproverRef{
			{ApproverID: firstID, RoleLabel: "Immediate Leader"},
			{ApproverID: secondID, RoleLabel: "HR Manager"},
		}, "req-journey")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	pending, err := svc.PendingFor(ctx, tenantID, firstID)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending item for the first approver, got %d (err %v)", len(pending), err)
	}

	// Stale action against level 2 loses to the guard.
	if _, err := svc.Approve(ctx, tenantID, inst.ID, 2, secondID, "", "req-stale"); err == nil {
		t.Fatal("expected a stale level-2 approval to fail")
	}

	if _, err := svc.Approve(ctx, tenantID, inst.ID, 1, firstID, "fine by me", "req-a1"); err != nil {
		t.Fatalf("level 1 approve failed: %v", err)
	}
	final, err := svc.Approve(ctx, tenantID, inst.ID, 2, secondID, "", "req-a2")
	if err != nil {
		t.Fatalf("level 2 approve failed: %v", err)
	}
	if final.OverallStatus != workflow.StatusApproved || final.CompletedAt == nil {
		t.Fatalf("expected terminal approval, got %+v", final)
	}

	history, err := svc.History(ctx, tenantID, inst.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 || history[0].Action != workflow.ActionCreated {
		t.Fatalf("expected created + two approvals, got %+v", history)
	}

	var outboxCount int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(1) FROM workflow_outbox WHERE tenant_id = $1", tenantID,
	).Scan(&outboxCount); err != nil {
		t.Fatalf("outbox count failed: %v", err)
	}
	// activation + level advance + terminal approval
	if outboxCount != 3 {
		t.Fatalf("expected 3 outbox events, got %d", outboxCount)
	}

	reloaded, err := svc.Get(ctx, tenantID, inst.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.Levels[0].Comments != "fine by me" {
		t.Fatalf("level 1 comments not persisted: %+v", reloaded.Levels[0])
	}
}
