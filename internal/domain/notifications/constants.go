package notifications

const (
	TypeApprovalPending  = "approval_pending"
	TypeWorkflowApproved = "workflow_approved"
	TypeWorkflowRejected = "workflow_rejected"
)
