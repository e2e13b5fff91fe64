package workflow

import (
	"errors"
	"testing"
	"time"
)

func newTestInstance(approvers ...string) Instance {
	inst := Instance{
		ID:               "wf-test",
		TenantID:         "tenant-1",
		SubjectType:      SubjectJobDescription,
		SubjectID:        "jd-1",
		RequireAllLevels: true,
		CurrentLevel:     1,
		OverallStatus:    StatusPending,
		CreatedBy:        "owner-1",
		CreatedAt:        time.Now().UTC(),
	}
	for i, id := range approvers {
		inst.Slots = append(inst.Slots, Slot{Index: i + 1, ApproverID: id, RoleLabel: "Approver"})
		inst.Levels = append(inst.Levels, LevelState{Status: StatusPending})
	}
	return inst
}

// checkInvariants asserts the only three reachable shapes: pending with
// exactly one pending slot at currentLevel, all approved, or one rejection
// with every later slot untouched.
func checkInvariants(t *testing.T, inst Instance) {
	t.Helper()

	switch inst.OverallStatus {
	case StatusPending:
		for i, level := range inst.Levels {
			idx := i + 1
			switch {
			case idx < inst.CurrentLevel:
				if level.Status != StatusApproved {
					t.Fatalf("slot %d should be approved, got %s", idx, level.Status)
				}
			default:
				if level.Status != StatusPending {
					t.Fatalf("slot %d should be pending, got %s", idx, level.Status)
				}
			}
		}
	case StatusApproved:
		for i, level := range inst.Levels {
			if level.Status != StatusApproved {
				t.Fatalf("approved instance has non-approved slot %d: %s", i+1, level.Status)
			}
		}
		if inst.CompletedAt == nil {
			t.Fatal("approved instance missing completedAt")
		}
	case StatusRejected:
		rejected := 0
		seenRejection := false
		for i, level := range inst.Levels {
			switch level.Status {
			case StatusRejected:
				rejected++
				seenRejection = true
			case StatusPending:
				if !seenRejection && i+1 < inst.CurrentLevel {
					t.Fatalf("pending slot %d before rejection point", i+1)
				}
			}
			if seenRejection && level.Status == StatusApproved {
				t.Fatalf("slot %d approved after rejection", i+1)
			}
		}
		if rejected != 1 {
			t.Fatalf("rejected instance has %d rejected slots", rejected)
		}
		if inst.CompletedAt == nil {
			t.Fatal("rejected instance missing completedAt")
		}
	default:
		t.Fatalf("unreachable overall status %q", inst.OverallStatus)
	}
}

func TestValidateActionErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Instance)
		action Action
		want   error
	}{
		{
			name:   "terminal instance",
			mutate: func(inst *Instance) { inst.OverallStatus = StatusRejected },
			action: Action{SlotIndex: 1, ApproverID: "a1", Decision: DecisionApprove},
			want:   ErrAlreadyTerminal,
		},
		{
			name:   "wrong level approve",
			action: Action{SlotIndex: 2, ApproverID: "a2", Decision: DecisionApprove},
			want:   ErrWrongLevel,
		},
		{
			name:   "wrong level reject",
			action: Action{SlotIndex: 3, ApproverID: "a3", Decision: DecisionReject, Comments: "no"},
			want:   ErrWrongLevel,
		},
		{
			name:   "unassigned approver",
			action: Action{SlotIndex: 1, ApproverID: "intruder", Decision: DecisionApprove},
			want:   ErrNotAuthorizedApprover,
		},
		{
			name:   "reject without comments",
			action: Action{SlotIndex: 1, ApproverID: "a1", Decision: DecisionReject, Comments: "   "},
			want:   ErrCommentsRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inst := newTestInstance("a1", "a2", "a3")
			if tc.mutate != nil {
				tc.mutate(&inst)
			}
			err := validateAction(&inst, tc.action)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApproveAdvancesToNextLevel(t *testing.T) {
	inst := newTestInstance("a1", "a2", "a3")
	now := time.Now().UTC()

	events := applyDecision(&inst, Action{SlotIndex: 1, ApproverID: "a1", Decision: DecisionApprove}, now)

	if inst.CurrentLevel != 2 {
		t.Fatalf("expected currentLevel 2, got %d", inst.CurrentLevel)
	}
	if inst.OverallStatus != StatusPending {
		t.Fatalf("expected pending, got %s", inst.OverallStatus)
	}
	if len(events) != 1 || events[0].Type != EventLevelAdvanced {
		t.Fatalf("expected one level_advanced event, got %+v", events)
	}
	if events[0].TargetID != "a2" {
		t.Fatalf("advance event should target next approver, got %s", events[0].TargetID)
	}
	checkInvariants(t, inst)
}

func TestApprovingFinalSlotCompletesInSameAction(t *testing.T) {
	inst := newTestInstance("x", "y")

	applyDecision(&inst, Action{SlotIndex: 1, ApproverID: "x", Decision: DecisionApprove}, time.Now().UTC())
	events := applyDecision(&inst, Action{SlotIndex: 2, ApproverID: "y", Decision: DecisionApprove}, time.Now().UTC())

	if inst.OverallStatus != StatusApproved {
		t.Fatalf("expected approved, got %s", inst.OverallStatus)
	}
	if inst.CompletedAt == nil {
		t.Fatal("expected completedAt to be set")
	}
	if len(events) != 1 || events[0].Type != EventApproved {
		t.Fatalf("expected one approved event, got %+v", events)
	}
	if events[0].TargetID != "owner-1" {
		t.Fatalf("approved event should target the owner, got %s", events[0].TargetID)
	}
	checkInvariants(t, inst)
}

func TestRejectionIsTerminalAndLeavesLaterSlotsUntouched(t *testing.T) {
	inst := newTestInstance("a", "b", "c")

	applyDecision(&inst, Action{SlotIndex: 1, ApproverID: "a", Decision: DecisionApprove}, time.Now().UTC())
	events := applyDecision(&inst, Action{SlotIndex: 2, ApproverID: "b", Decision: DecisionReject, Comments: "insufficient budget"}, time.Now().UTC())

	if inst.OverallStatus != StatusRejected {
		t.Fatalf("expected rejected, got %s", inst.OverallStatus)
	}
	if inst.Levels[2].Status != StatusPending {
		t.Fatalf("slot 3 must remain pending forever, got %s", inst.Levels[2].Status)
	}
	if len(events) != 1 || events[0].Type != EventRejected {
		t.Fatalf("expected one rejected event, got %+v", events)
	}
	if comments, _ := events[0].Payload["comments"].(string); comments != "insufficient budget" {
		t.Fatalf("rejection event must carry the comments, got %q", comments)
	}
	checkInvariants(t, inst)

	// A later approval attempt by the slot-3 approver fails terminally.
	err := validateAction(&inst, Action{SlotIndex: 3, ApproverID: "c", Decision: DecisionApprove})
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestNextApprover(t *testing.T) {
	inst := newTestInstance("a1", "a2")
	if got := NextApprover(inst); got != "a1" {
		t.Fatalf("expected a1, got %s", got)
	}

	applyDecision(&inst, Action{SlotIndex: 1, ApproverID: "a1", Decision: DecisionApprove}, time.Now().UTC())
	if got := NextApprover(inst); got != "a2" {
		t.Fatalf("expected a2, got %s", got)
	}

	applyDecision(&inst, Action{SlotIndex: 2, ApproverID: "a2", Decision: DecisionApprove}, time.Now().UTC())
	if got := NextApprover(inst); got != "" {
		t.Fatalf("terminal instance has no next approver, got %s", got)
	}
}
