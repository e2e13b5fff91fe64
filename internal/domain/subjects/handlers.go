package subjects

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain/workflow"
)

const (
	StatusInReview = "in_review"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func statusForEvent(eventType string) string {
	switch eventType {
	case workflow.EventApproved:
		return StatusApproved
	case workflow.EventRejected:
		return StatusRejected
	default:
		return StatusInReview
	}
}

type bonusCalculations struct {
	db *pgxpool.Pool
}

func (h bonusCalculations) Apply(ctx context.Context, tenantID, subjectID, eventType string) error {
	_, err := h.db.Exec(ctx, `
    UPDATE bonus_calculations SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, statusForEvent(eventType), tenantID, subjectID)
	return err
}

type jobDescriptions struct {
	db *pgxpool.Pool
}

func (h jobDescriptions) Apply(ctx context.Context, tenantID, subjectID, eventType string) error {
	_, err := h.db.Exec(ctx, `
    UPDATE job_descriptions SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, statusForEvent(eventType), tenantID, subjectID)
	return err
}

type evaluations struct {
	db *pgxpool.Pool
}

func (h evaluations) Apply(ctx context.Context, tenantID, subjectID, eventType string) error {
	_, err := h.db.Exec(ctx, `
    UPDATE evaluations SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, statusForEvent(eventType), tenantID, subjectID)
	return err
}

// DefaultRegistry wires the three subject types that are gated behind
// approval chains.
func DefaultRegistry(db *pgxpool.Pool) *Registry {
	r := NewRegistry()
	r.Register(workflow.SubjectBonusCalculation, bonusCalculations{db: db})
	r.Register(workflow.SubjectJobDescription, jobDescriptions{db: db})
	r.Register(workflow.SubjectEvaluation, evaluations{db: db})
	return r
}
