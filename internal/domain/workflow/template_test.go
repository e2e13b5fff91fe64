package workflow

import (
	"context"
	"errors"
	"testing"
)

type fakeDirectory struct {
	active map[string]bool
	err    error
}

func (f *fakeDirectory) ResolveActive(ctx context.Context, tenantID string, ids []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool)
	for _, id := range ids {
		if f.active[id] {
			out[id] = true
		}
	}
	return out, nil
}

func activeDirectory(ids ...string) *fakeDirectory {
	active := make(map[string]bool)
	for _, id := range ids {
		active[id] = true
	}
	return &fakeDirectory{active: active}
}

func TestResolveTemplatePreservesCallerOrder(t *testing.T) {
	dir := activeDirectory("lead", "specialist", "hr", "director")
	refs := []ApproverRef{
		{ApproverID: "lead", RoleLabel: "Immediate Leader"},
		{ApproverID: "specialist", RoleLabel: "Compensation Specialist"},
		{ApproverID: "hr", RoleLabel: "HR Manager"},
		{ApproverID: "director", RoleLabel: "People Director"},
	}

	slots, err := ResolveTemplate(context.Background(), dir, "tenant-1", refs, 5, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for i, slot := range slots {
		if slot.Index != i+1 {
			t.Fatalf("slot %d has index %d", i, slot.Index)
		}
		if slot.ApproverID != refs[i].ApproverID {
			t.Fatalf("slot %d order changed: %s", i+1, slot.ApproverID)
		}
	}
}

func TestResolveTemplateRejectsEmptyList(t *testing.T) {
	_, err := ResolveTemplate(context.Background(), activeDirectory(), "tenant-1", nil, 5, true)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestResolveTemplateRejectsTooManyLevels(t *testing.T) {
	dir := activeDirectory("a", "b", "c")
	refs := []ApproverRef{{ApproverID: "a"}, {ApproverID: "b"}, {ApproverID: "c"}}

	_, err := ResolveTemplate(context.Background(), dir, "tenant-1", refs, 2, true)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestResolveTemplateRejectsUnknownApprover(t *testing.T) {
	dir := activeDirectory("known")
	refs := []ApproverRef{{ApproverID: "known"}, {ApproverID: "ghost"}}

	_, err := ResolveTemplate(context.Background(), dir, "tenant-1", refs, 5, true)
	if !errors.Is(err, ErrUnknownApprover) {
		t.Fatalf("expected ErrUnknownApprover, got %v", err)
	}
}

func TestResolveTemplateRejectsOptionalLevelsMode(t *testing.T) {
	dir := activeDirectory("a")
	refs := []ApproverRef{{ApproverID: "a"}}

	_, err := ResolveTemplate(context.Background(), dir, "tenant-1", refs, 5, false)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for requireAllLevels=false, got %v", err)
	}
}
