package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain/notifications"
	"talentflow/internal/domain/subjects"
	"talentflow/internal/platform/config"
)

// Dispatcher drains the workflow_outbox table written by the transition
// engine: it creates in-app notifications, sends best-effort email, and
// applies subject-status listeners. Transitions are already committed by
// the time a row is visible here, so nothing in this path can undo one;
// failed rows are retried until MaxAttempts and then parked.
type Dispatcher struct {
	DB          *pgxpool.Pool
	Notifier    *notifications.Service
	Subjects    *subjects.Registry
	Interval    time.Duration
	MaxAttempts int
	BatchSize   int
}

type row struct {
	ID       string
	TenantID string
	Type     string
	TargetID string
	Payload  map[string]any
	Attempts int
}

func New(db *pgxpool.Pool, notifier *notifications.Service, registry *subjects.Registry, cfg config.Config) *Dispatcher {
	return &Dispatcher{
		DB:          db,
		Notifier:    notifier,
		Subjects:    registry,
		Interval:    cfg.OutboxPollInterval,
		MaxAttempts: cfg.OutboxMaxAttempts,
		BatchSize:   50,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.RunOnce(ctx); err != nil {
					slog.Warn("outbox dispatch failed", "err", err)
				}
			}
		}
	}()
}

// RunOnce claims and processes one batch of undelivered events, returning
// how many were handled. Rows are locked with SKIP LOCKED so concurrent
// dispatchers never double-deliver.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	tx, err := d.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
    SELECT id, tenant_id, event_type, target_id, payload, attempts
    FROM workflow_outbox
    WHERE delivered_at IS NULL
    ORDER BY created_at
    LIMIT $1
    FOR UPDATE SKIP LOCKED
  `, d.BatchSize)
	if err != nil {
		return 0, err
	}

	var claimed []row
	for rows.Next() {
		var r row
		var payload []byte
		if err := rows.Scan(&r.ID, &r.TenantID, &r.Type, &r.TargetID, &payload, &r.Attempts); err != nil {
			rows.Close()
			return 0, err
		}
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			slog.Warn("outbox payload malformed", "id", r.ID, "err", err)
			r.Payload = map[string]any{}
		}
		claimed = append(claimed, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	processed := 0
	for _, r := range claimed {
		if err := d.process(ctx, r); err != nil {
			slog.Warn("outbox event delivery failed", "id", r.ID, "type", r.Type, "err", err)
			if r.Attempts+1 >= d.MaxAttempts {
				slog.Error("outbox event parked after max attempts", "id", r.ID, "type", r.Type)
				if _, err := tx.Exec(ctx, "UPDATE workflow_outbox SET attempts = attempts + 1, delivered_at = now() WHERE id = $1", r.ID); err != nil {
					return processed, err
				}
			} else if _, err := tx.Exec(ctx, "UPDATE workflow_outbox SET attempts = attempts + 1 WHERE id = $1", r.ID); err != nil {
				return processed, err
			}
			continue
		}
		if _, err := tx.Exec(ctx, "UPDATE workflow_outbox SET attempts = attempts + 1, delivered_at = now() WHERE id = $1", r.ID); err != nil {
			return processed, err
		}
		processed++
	}

	return processed, tx.Commit(ctx)
}

func (d *Dispatcher) process(ctx context.Context, r row) error {
	ntype, title, body := notifications.RenderWorkflowEvent(r.Type, r.Payload)
	if err := d.Notifier.Create(ctx, r.TenantID, r.TargetID, ntype, title, body); err != nil {
		return err
	}

	subjectType, _ := r.Payload["subjectType"].(string)
	subjectID, _ := r.Payload["subjectId"].(string)
	if subjectType == "" || subjectID == "" {
		return nil
	}
	return d.Subjects.Apply(ctx, r.TenantID, subjectType, subjectID, r.Type)
}
