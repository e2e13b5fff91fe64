package workflow

import (
	"context"
	"fmt"
	"strings"
)

// Directory resolves approver identities to active principals. Implemented
// by the directory store; faked in tests.
type Directory interface {
	ResolveActive(ctx context.Context, tenantID string, ids []string) (map[string]bool, error)
}

// ResolveTemplate validates a caller-supplied ordered approver list and
// returns the slot sequence for a new instance. Order is significant and is
// never re-sorted; indices are assigned 1..N in the order given.
func ResolveTemplate(ctx context.Context, dir Directory, tenantID string, approvers []ApproverRef, maxSlots int, requireAllLevels bool) ([]Slot, error) {
	if len(approvers) == 0 {
		return nil, fmt.Errorf("%w: at least one approver is required", ErrInvalidTemplate)
	}
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	if len(approvers) > maxSlots {
		return nil, fmt.Errorf("%w: at most %d approval levels are supported", ErrInvalidTemplate, maxSlots)
	}
	if !requireAllLevels {
		// Partial-chain mode has no defined completion rule; refuse
		// rather than silently mis-run the chain.
		return nil, fmt.Errorf("%w: requireAllLevels=false is not supported", ErrInvalidTemplate)
	}

	ids := make([]string, 0, len(approvers))
	for _, ref := range approvers {
		if strings.TrimSpace(ref.ApproverID) == "" {
			return nil, fmt.Errorf("%w: approver id must not be empty", ErrInvalidTemplate)
		}
		ids = append(ids, ref.ApproverID)
	}

	active, err := dir.ResolveActive(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(approvers))
	for i, ref := range approvers {
		if !active[ref.ApproverID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownApprover, ref.ApproverID)
		}
		slots = append(slots, Slot{
			Index:      i + 1,
			ApproverID: ref.ApproverID,
			RoleLabel:  ref.RoleLabel,
		})
	}
	return slots, nil
}
