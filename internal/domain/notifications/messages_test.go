package notifications

import (
	"strings"
	"testing"

	"talentflow/internal/domain/workflow"
)

func TestRenderLevelAdvanced(t *testing.T) {
	ntype, title, body := RenderWorkflowEvent(workflow.EventLevelAdvanced, map[string]any{
		"subjectType": workflow.SubjectBonusCalculation,
		"subjectId":   "bonus-7",
		"slotIndex":   3,
		"roleLabel":   "HR Manager",
	})

	if ntype != TypeApprovalPending {
		t.Fatalf("expected %s, got %s", TypeApprovalPending, ntype)
	}
	if !strings.Contains(title, "Bonus calculation") {
		t.Fatalf("title should name the subject, got %q", title)
	}
	if !strings.Contains(body, "level 3") || !strings.Contains(body, "HR Manager") {
		t.Fatalf("body should mention level and role, got %q", body)
	}
}

func TestRenderRejectedCarriesComments(t *testing.T) {
	ntype, _, body := RenderWorkflowEvent(workflow.EventRejected, map[string]any{
		"subjectType": workflow.SubjectJobDescription,
		"subjectId":   "jd-2",
		"slotIndex":   2,
		"comments":    "insufficient budget",
	})

	if ntype != TypeWorkflowRejected {
		t.Fatalf("expected %s, got %s", TypeWorkflowRejected, ntype)
	}
	if !strings.Contains(body, "insufficient budget") {
		t.Fatalf("rejection body must carry the comments, got %q", body)
	}
}

func TestRenderUnknownSubjectFallsBack(t *testing.T) {
	_, title, _ := RenderWorkflowEvent(workflow.EventApproved, map[string]any{
		"subjectType": "something_else",
		"subjectId":   "x-1",
	})
	if !strings.Contains(title, "Item") {
		t.Fatalf("unknown subject should fall back to a generic name, got %q", title)
	}
}
