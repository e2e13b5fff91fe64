package workflow

import (
	"context"
	"time"

	"talentflow/internal/domain/audit"
)

// Service is the caller-facing surface of the approval engine: template
// resolution, single transitions, batches, and the pending/history reads.
// The state machine itself is domain-agnostic; subject-specific effects are
// applied by outbox listeners keyed by subject type.
type Service struct {
	store    StoreAPI
	dir      Directory
	MaxSlots int
}

func NewService(store StoreAPI, dir Directory) *Service {
	return &Service{store: store, dir: dir, MaxSlots: DefaultMaxSlots}
}

// Create resolves and validates the approver chain, then persists a fresh
// instance at level 1 with every slot pending. The level-1 approver is
// notified through the outbox written in the same transaction.
func (s *Service) Create(ctx context.Context, tenantID, createdBy, subjectType, subjectID string, requireAllLevels bool, approvers []ApproverRef, requestID string) (Instance, error) {
	slots, err := ResolveTemplate(ctx, s.dir, tenantID, approvers, s.MaxSlots, requireAllLevels)
	if err != nil {
		return Instance{}, err
	}

	inst := Instance{
		TenantID:         tenantID,
		SubjectType:      subjectType,
		SubjectID:        subjectID,
		RequireAllLevels: requireAllLevels,
		CurrentLevel:     1,
		OverallStatus:    StatusPending,
		Slots:            slots,
		Levels:           make([]LevelState, len(slots)),
		CreatedBy:        createdBy,
	}
	for i := range inst.Levels {
		inst.Levels[i].Status = StatusPending
	}

	first := slots[0]
	events := []Event{{
		Type:     EventLevelAdvanced,
		TargetID: first.ApproverID,
		Payload: map[string]any{
			"subjectType": subjectType,
			"subjectId":   subjectID,
			"slotIndex":   first.Index,
			"roleLabel":   first.RoleLabel,
		},
	}}

	if err := s.store.CreateInstance(ctx, &inst, events, requestID); err != nil {
		return Instance{}, err
	}
	return inst, nil
}

// Decide applies one approval action. Validation runs against the loaded
// instance and is re-checked by the store's conditional write, so two
// concurrent actions on the same slot serialize: the loser sees
// ErrWrongLevel or ErrAlreadyTerminal. Events reach the outbox only when
// the transition commits.
func (s *Service) Decide(ctx context.Context, tenantID string, action Action, requestID string) (Instance, error) {
	inst, err := s.store.GetInstance(ctx, tenantID, action.InstanceID)
	if err != nil {
		return Instance{}, err
	}
	if err := validateAction(&inst, action); err != nil {
		return Instance{}, err
	}

	events := applyDecision(&inst, action, time.Now().UTC())
	if err := s.store.ApplyDecision(ctx, inst, action, events, requestID); err != nil {
		return Instance{}, err
	}
	return inst, nil
}

func (s *Service) Approve(ctx context.Context, tenantID, instanceID string, slotIndex int, approverID, comments, requestID string) (Instance, error) {
	return s.Decide(ctx, tenantID, Action{
		InstanceID: instanceID,
		SlotIndex:  slotIndex,
		ApproverID: approverID,
		Decision:   DecisionApprove,
		Comments:   comments,
	}, requestID)
}

func (s *Service) Reject(ctx context.Context, tenantID, instanceID string, slotIndex int, approverID, comments, requestID string) (Instance, error) {
	return s.Decide(ctx, tenantID, Action{
		InstanceID: instanceID,
		SlotIndex:  slotIndex,
		ApproverID: approverID,
		Decision:   DecisionReject,
		Comments:   comments,
	}, requestID)
}

func (s *Service) Get(ctx context.Context, tenantID, instanceID string) (Instance, error) {
	return s.store.GetInstance(ctx, tenantID, instanceID)
}

func (s *Service) PendingFor(ctx context.Context, tenantID, approverID string) ([]Instance, error) {
	return s.store.ListPendingFor(ctx, tenantID, approverID)
}

func (s *Service) History(ctx context.Context, tenantID, instanceID string) ([]audit.Entry, error) {
	if _, err := s.store.GetInstance(ctx, tenantID, instanceID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, tenantID, instanceID)
}
