package workflow

import (
	"fmt"
	"strings"
	"time"
)

// validateAction enforces the transition preconditions against the loaded
// instance: the instance must still be pending, the action must target the
// current level, and the actor must be the approver bound to that slot.
func validateAction(inst *Instance, action Action) error {
	if inst.OverallStatus != StatusPending {
		return ErrAlreadyTerminal
	}
	if action.SlotIndex != inst.CurrentLevel {
		return ErrWrongLevel
	}
	if inst.CurrentLevel < 1 || inst.CurrentLevel > len(inst.Slots) {
		return fmt.Errorf("%w: current level %d out of range", ErrNotFound, inst.CurrentLevel)
	}
	if inst.Slots[inst.CurrentLevel-1].ApproverID != action.ApproverID {
		return ErrNotAuthorizedApprover
	}

	switch action.Decision {
	case DecisionApprove:
		return nil
	case DecisionReject:
		if strings.TrimSpace(action.Comments) == "" {
			return ErrCommentsRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidTemplate, action.Decision)
	}
}

// applyDecision mutates the instance in memory and returns the events the
// transition emits. Rejection is terminal: later slots are never touched and
// a retry means a new instance. Approving the final slot completes the
// instance in the same step.
func applyDecision(inst *Instance, action Action, now time.Time) []Event {
	level := &inst.Levels[inst.CurrentLevel-1]
	level.ApproverID = action.ApproverID
	level.Comments = action.Comments
	level.DecidedAt = &now

	if action.Decision == DecisionReject {
		level.Status = StatusRejected
		inst.OverallStatus = StatusRejected
		inst.CompletedAt = &now
		return []Event{{
			Type:     EventRejected,
			TargetID: inst.CreatedBy,
			Payload: map[string]any{
				"instanceId":  inst.ID,
				"subjectType": inst.SubjectType,
				"subjectId":   inst.SubjectID,
				"slotIndex":   action.SlotIndex,
				"roleLabel":   inst.Slots[action.SlotIndex-1].RoleLabel,
				"comments":    action.Comments,
			},
		}}
	}

	level.Status = StatusApproved
	if inst.CurrentLevel == len(inst.Slots) {
		inst.OverallStatus = StatusApproved
		inst.CompletedAt = &now
		return []Event{{
			Type:     EventApproved,
			TargetID: inst.CreatedBy,
			Payload: map[string]any{
				"instanceId":  inst.ID,
				"subjectType": inst.SubjectType,
				"subjectId":   inst.SubjectID,
			},
		}}
	}

	inst.CurrentLevel++
	next := inst.Slots[inst.CurrentLevel-1]
	return []Event{{
		Type:     EventLevelAdvanced,
		TargetID: next.ApproverID,
		Payload: map[string]any{
			"instanceId":  inst.ID,
			"subjectType": inst.SubjectType,
			"subjectId":   inst.SubjectID,
			"slotIndex":   next.Index,
			"roleLabel":   next.RoleLabel,
		},
	}}
}

// NextApprover returns the approver bound to the current level, or empty
// when the instance is terminal.
func NextApprover(inst Instance) string {
	if inst.OverallStatus != StatusPending {
		return ""
	}
	return inst.Slots[inst.CurrentLevel-1].ApproverID
}
