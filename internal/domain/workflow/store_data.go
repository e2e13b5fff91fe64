package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"talentflow/internal/domain/audit"
)

func (s *Store) CreateInstance(ctx context.Context, inst *Instance, events []Event, requestID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
    INSERT INTO workflow_instances (tenant_id, subject_type, subject_id, require_all_levels, current_level, overall_status, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at
  `, inst.TenantID, inst.SubjectType, inst.SubjectID, inst.RequireAllLevels, inst.CurrentLevel, inst.OverallStatus, inst.CreatedBy).Scan(&inst.ID, &inst.CreatedAt); err != nil {
		return err
	}

	for i, slot := range inst.Slots {
		if _, err := tx.Exec(ctx, `
      INSERT INTO workflow_slots (instance_id, slot_index, approver_id, role_label, status)
      VALUES ($1,$2,$3,$4,$5)
    `, inst.ID, slot.Index, slot.ApproverID, slot.RoleLabel, inst.Levels[i].Status); err != nil {
			return err
		}
	}

	if err := audit.Record(ctx, tx, inst.TenantID, inst.ID, 0, ActionCreated, inst.CreatedBy, "", requestID); err != nil {
		return err
	}

	for i := range events {
		events[i].Payload["instanceId"] = inst.ID
	}
	if err := insertEvents(ctx, tx, inst.TenantID, events); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetInstance(ctx context.Context, tenantID, instanceID string) (Instance, error) {
	var inst Instance
	inst.TenantID = tenantID
	err := s.DB.QueryRow(ctx, `
    SELECT id, subject_type, subject_id, require_all_levels, current_level, overall_status, created_by, created_at, completed_at
    FROM workflow_instances
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, instanceID).Scan(&inst.ID, &inst.SubjectType, &inst.SubjectID, &inst.RequireAllLevels, &inst.CurrentLevel, &inst.OverallStatus, &inst.CreatedBy, &inst.CreatedAt, &inst.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Instance{}, ErrNotFound
	}
	if err != nil {
		return Instance{}, err
	}

	if err := s.loadSlots(ctx, &inst); err != nil {
		return Instance{}, err
	}
	return inst, nil
}

func (s *Store) loadSlots(ctx context.Context, inst *Instance) error {
	rows, err := s.DB.Query(ctx, `
    SELECT slot_index, approver_id, role_label, status, decided_at, COALESCE(comments, '')
    FROM workflow_slots
    WHERE instance_id = $1
    ORDER BY slot_index
  `, inst.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	inst.Slots = nil
	inst.Levels = nil
	for rows.Next() {
		var slot Slot
		var level LevelState
		if err := rows.Scan(&slot.Index, &slot.ApproverID, &slot.RoleLabel, &level.Status, &level.DecidedAt, &level.Comments); err != nil {
			return err
		}
		if level.DecidedAt != nil {
			level.ApproverID = slot.ApproverID
		}
		inst.Slots = append(inst.Slots, slot)
		inst.Levels = append(inst.Levels, level)
	}
	return rows.Err()
}

func (s *Store) ApplyDecision(ctx context.Context, inst Instance, action Action, events []Event, requestID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE workflow_instances
    SET current_level = $1, overall_status = $2, completed_at = $3
    WHERE tenant_id = $4 AND id = $5 AND current_level = $6 AND overall_status = 'pending'
  `, inst.CurrentLevel, inst.OverallStatus, inst.CompletedAt, inst.TenantID, inst.ID, action.SlotIndex)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Lost to a concurrent writer; re-read to report the precise reason.
		_ = tx.Rollback(ctx)
		current, err := s.GetInstance(ctx, inst.TenantID, inst.ID)
		if err != nil {
			return err
		}
		if current.OverallStatus != StatusPending {
			return ErrAlreadyTerminal
		}
		return ErrWrongLevel
	}

	level := inst.Levels[action.SlotIndex-1]
	if _, err := tx.Exec(ctx, `
    UPDATE workflow_slots
    SET status = $1, decided_at = $2, comments = $3
    WHERE instance_id = $4 AND slot_index = $5
  `, level.Status, level.DecidedAt, level.Comments, inst.ID, action.SlotIndex); err != nil {
		return err
	}

	auditAction := ActionApproved
	if action.Decision == DecisionReject {
		auditAction = ActionRejected
	}
	if err := audit.Record(ctx, tx, inst.TenantID, inst.ID, action.SlotIndex, auditAction, action.ApproverID, action.Comments, requestID); err != nil {
		return err
	}

	if err := insertEvents(ctx, tx, inst.TenantID, events); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListPendingFor(ctx context.Context, tenantID, approverID string) ([]Instance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT wi.id
    FROM workflow_instances wi
    JOIN workflow_slots ws ON ws.instance_id = wi.id AND ws.slot_index = wi.current_level
    WHERE wi.tenant_id = $1 AND wi.overall_status = 'pending' AND ws.approver_id = $2
    ORDER BY wi.created_at ASC
  `, tenantID, approverID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []Instance
	for _, id := range ids {
		inst, err := s.GetInstance(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *Store) History(ctx context.Context, tenantID, instanceID string) ([]audit.Entry, error) {
	return audit.New(s.DB).ListByInstance(ctx, tenantID, instanceID)
}

func insertEvents(ctx context.Context, tx pgx.Tx, tenantID string, events []Event) error {
	for _, evt := range events {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO workflow_outbox (tenant_id, event_type, target_id, payload)
      VALUES ($1,$2,$3,$4)
    `, tenantID, evt.Type, evt.TargetID, payload); err != nil {
			return err
		}
	}
	return nil
}
