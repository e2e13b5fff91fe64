package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one immutable record of a workflow transition. Entries are only
// ever inserted, in the same transaction as the transition they describe.
type Entry struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instanceId"`
	SlotIndex  int       `json:"slotIndex"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actorId"`
	Comments   string    `json:"comments,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Execer is the slice of pgx satisfied by both a pool and an open
// transaction, so transitions can record inside their own tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Record inserts one audit entry using the caller's querier (pool or tx).
func Record(ctx context.Context, db Execer, tenantID, instanceID string, slotIndex int, action, actorID, comments, requestID string) error {
	_, err := db.Exec(ctx, `
    INSERT INTO workflow_audit_events (tenant_id, instance_id, slot_index, action, actor_id, comments, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, instanceID, slotIndex, action, actorID, comments, requestID)
	return err
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// ListByInstance returns the full transition history of one instance in
// chronological order.
func (s *Service) ListByInstance(ctx context.Context, tenantID, instanceID string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, instance_id, slot_index, action, actor_id, comments, request_id, created_at
    FROM workflow_audit_events
    WHERE tenant_id = $1 AND instance_id = $2
    ORDER BY created_at ASC, id ASC
  `, tenantID, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.InstanceID, &e.SlotIndex, &e.Action, &e.ActorID, &e.Comments, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
