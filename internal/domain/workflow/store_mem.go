package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talentflow/internal/domain/audit"
)

// MemStore is an in-memory StoreAPI with the same optimistic guard as the
// SQL store. It backs the engine's unit tests and has no durability.
type MemStore struct {
	mu        sync.Mutex
	seq       int
	instances map[string]Instance
	history   map[string][]audit.Entry
	outbox    []Event
}

func NewMemStore() *MemStore {
	return &MemStore{
		instances: make(map[string]Instance),
		history:   make(map[string][]audit.Entry),
	}
}

func (m *MemStore) CreateInstance(ctx context.Context, inst *Instance, events []Event, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	inst.ID = fmt.Sprintf("wf-%d", m.seq)
	inst.CreatedAt = time.Now().UTC()

	m.instances[inst.ID] = cloneInstance(*inst)
	m.appendHistory(inst.TenantID, inst.ID, 0, ActionCreated, inst.CreatedBy, "", requestID)
	for i := range events {
		events[i].Payload["instanceId"] = inst.ID
		m.outbox = append(m.outbox, events[i])
	}
	return nil
}

func (m *MemStore) GetInstance(ctx context.Context, tenantID, instanceID string) (Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok || inst.TenantID != tenantID {
		return Instance{}, ErrNotFound
	}
	return cloneInstance(inst), nil
}

func (m *MemStore) ApplyDecision(ctx context.Context, inst Instance, action Action, events []Event, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.instances[inst.ID]
	if !ok || current.TenantID != inst.TenantID {
		return ErrNotFound
	}
	if current.OverallStatus != StatusPending {
		return ErrAlreadyTerminal
	}
	if current.CurrentLevel != action.SlotIndex {
		return ErrWrongLevel
	}

	m.instances[inst.ID] = cloneInstance(inst)

	auditAction := ActionApproved
	if action.Decision == DecisionReject {
		auditAction = ActionRejected
	}
	m.appendHistory(inst.TenantID, inst.ID, action.SlotIndex, auditAction, action.ApproverID, action.Comments, requestID)
	m.outbox = append(m.outbox, events...)
	return nil
}

func (m *MemStore) ListPendingFor(ctx context.Context, tenantID, approverID string) ([]Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Instance
	for _, inst := range m.instances {
		if inst.TenantID != tenantID || inst.OverallStatus != StatusPending {
			continue
		}
		if inst.Slots[inst.CurrentLevel-1].ApproverID == approverID {
			out = append(out, cloneInstance(inst))
		}
	}
	return out, nil
}

func (m *MemStore) History(ctx context.Context, tenantID, instanceID string) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history[instanceID]
	out := make([]audit.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Outbox returns a copy of every event recorded so far.
func (m *MemStore) Outbox() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.outbox))
	copy(out, m.outbox)
	return out
}

func (m *MemStore) appendHistory(tenantID, instanceID string, slotIndex int, action, actorID, comments, requestID string) {
	m.history[instanceID] = append(m.history[instanceID], audit.Entry{
		ID:         fmt.Sprintf("audit-%d", len(m.history[instanceID])+1),
		InstanceID: instanceID,
		SlotIndex:  slotIndex,
		Action:     action,
		ActorID:    actorID,
		Comments:   comments,
		RequestID:  requestID,
		CreatedAt:  time.Now().UTC(),
	})
}

func cloneInstance(inst Instance) Instance {
	out := inst
	out.Slots = make([]Slot, len(inst.Slots))
	copy(out.Slots, inst.Slots)
	out.Levels = make([]LevelState, len(inst.Levels))
	copy(out.Levels, inst.Levels)
	return out
}
