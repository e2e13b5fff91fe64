package notifications

import (
	"fmt"

	"talentflow/internal/domain/workflow"
)

var subjectNames = map[string]string{
	workflow.SubjectBonusCalculation: "Bonus calculation",
	workflow.SubjectJobDescription:   "Job description",
	workflow.SubjectEvaluation:       "Performance evaluation",
}

// RenderWorkflowEvent maps an outbox event to the notification shown to its
// target: the next approver on a level advance, the subject owner on a
// terminal outcome.
func RenderWorkflowEvent(eventType string, payload map[string]any) (ntype, title, body string) {
	subject := subjectNames[str(payload["subjectType"])]
	if subject == "" {
		subject = "Item"
	}

	switch eventType {
	case workflow.EventLevelAdvanced:
		role := str(payload["roleLabel"])
		if role == "" {
			role = "you"
		}
		return TypeApprovalPending,
			fmt.Sprintf("%s awaiting your approval", subject),
			fmt.Sprintf("%s %s is awaiting approval at level %v (%s).", subject, str(payload["subjectId"]), payload["slotIndex"], role)
	case workflow.EventApproved:
		return TypeWorkflowApproved,
			fmt.Sprintf("%s approved", subject),
			fmt.Sprintf("%s %s was approved at every level.", subject, str(payload["subjectId"]))
	case workflow.EventRejected:
		return TypeWorkflowRejected,
			fmt.Sprintf("%s rejected", subject),
			fmt.Sprintf("%s %s was rejected at level %v: %s", subject, str(payload["subjectId"]), payload["slotIndex"], str(payload["comments"]))
	default:
		return eventType, subject, fmt.Sprintf("%s %s changed state.", subject, str(payload["subjectId"]))
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
