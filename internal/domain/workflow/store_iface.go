package workflow

import (
	"context"

	"talentflow/internal/domain/audit"
)

type StoreAPI interface {
	// CreateInstance persists the instance, its slots, the "created" audit
	// entry, and the level-1 activation event in one transaction. ID and
	// CreatedAt are assigned by the store.
	CreateInstance(ctx context.Context, inst *Instance, events []Event, requestID string) error

	GetInstance(ctx context.Context, tenantID, instanceID string) (Instance, error)

	// ApplyDecision persists an already-validated transition together with
	// its audit entry and outbox events, all-or-nothing. The write is
	// guarded on (current_level, overall_status) so a losing concurrent
	// writer gets ErrWrongLevel or ErrAlreadyTerminal instead of corrupting
	// state.
	ApplyDecision(ctx context.Context, inst Instance, action Action, events []Event, requestID string) error

	ListPendingFor(ctx context.Context, tenantID, approverID string) ([]Instance, error)

	History(ctx context.Context, tenantID, instanceID string) ([]audit.Entry, error)
}
