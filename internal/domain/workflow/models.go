package workflow

import "time"

// Slot is one position in the ordered approval chain, fixed at instance
// creation. Indices are 1-based and contiguous.
type Slot struct {
	Index      int    `json:"index"`
	ApproverID string `json:"approverId"`
	RoleLabel  string `json:"roleLabel"`
}

// LevelState is the live decision state of one slot.
type LevelState struct {
	Status     string     `json:"status"`
	ApproverID string     `json:"approverId,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	Comments   string     `json:"comments,omitempty"`
}

type Instance struct {
	ID               string       `json:"id"`
	TenantID         string       `json:"-"`
	SubjectType      string       `json:"subjectType"`
	SubjectID        string       `json:"subjectId"`
	RequireAllLevels bool         `json:"requireAllLevels"`
	CurrentLevel     int          `json:"currentLevel"`
	OverallStatus    string       `json:"overallStatus"`
	Slots            []Slot       `json:"slots"`
	Levels           []LevelState `json:"levels"`
	CreatedBy        string       `json:"createdBy"`
	CreatedAt        time.Time    `json:"createdAt"`
	CompletedAt      *time.Time   `json:"completedAt,omitempty"`
}

// ApproverRef is the caller-supplied input to the template resolver.
type ApproverRef struct {
	ApproverID string `json:"approverId"`
	RoleLabel  string `json:"roleLabel"`
}

// Action is one approve/reject attempt against the current slot.
type Action struct {
	InstanceID string
	SlotIndex  int
	ApproverID string
	Decision   string
	Comments   string
}

// Event is a side effect of a committed transition, written to the outbox
// in the same transaction as the instance mutation.
type Event struct {
	Type     string
	TargetID string
	Payload  map[string]any
}

type BatchFailure struct {
	InstanceID string `json:"instanceId"`
	Reason     string `json:"reason"`
}

type BatchResult struct {
	SucceededIDs []string       `json:"succeededIds"`
	Failures     []BatchFailure `json:"failures"`
}
