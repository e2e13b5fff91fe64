package workflow

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	DecisionApprove = "approve"
	DecisionReject  = "reject"

	EventLevelAdvanced = "level_advanced"
	EventApproved      = "approved"
	EventRejected      = "rejected"

	ActionCreated  = "created"
	ActionApproved = "approved"
	ActionRejected = "rejected"

	SubjectBonusCalculation = "bonus_calculation"
	SubjectJobDescription   = "job_description"
	SubjectEvaluation       = "evaluation"

	// DefaultMaxSlots is the longest chain any subject type configures
	// (bonus uses 5, job descriptions 4, evaluations 2).
	DefaultMaxSlots = 5
)
