package subjects

import (
	"context"
	"log/slog"
)

// Handler applies a terminal (or advance) workflow event to the business
// entity the workflow gates. The engine never touches subject tables
// itself; these listeners are the only writers of subject status.
type Handler interface {
	Apply(ctx context.Context, tenantID, subjectID, eventType string) error
}

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(subjectType string, h Handler) {
	r.handlers[subjectType] = h
}

// Apply dispatches to the handler for the subject type. Unknown subject
// types are skipped: the workflow itself stays correct even when no
// listener cares about the subject.
func (r *Registry) Apply(ctx context.Context, tenantID, subjectType, subjectID, eventType string) error {
	h, ok := r.handlers[subjectType]
	if !ok {
		slog.Warn("no subject handler registered", "subjectType", subjectType)
		return nil
	}
	return h.Apply(ctx, tenantID, subjectID, eventType)
}
