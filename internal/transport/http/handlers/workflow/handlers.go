package workflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentflow/internal/domain/auth"
	wf "talentflow/internal/domain/workflow"
	"talentflow/internal/transport/http/api"
	"talentflow/internal/transport/http/middleware"
)

type Handler struct {
	Service *wf.Service
}

func NewHandler(service *wf.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workflows", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/pending", h.handleListPending)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleApprover))
			r.Post("/batch/approve", h.handleBatchApprove)
			r.Post("/batch/reject", h.handleBatchReject)
		})
		r.Get("/{instanceID}", h.handleGet)
		r.Get("/{instanceID}/history", h.handleHistory)
		r.Post("/{instanceID}/approve", h.handleApprove)
		r.Post("/{instanceID}/reject", h.handleReject)
	})
}

type createPayload struct {
	SubjectType      string           `json:"subjectType"`
	SubjectID        string           `json:"subjectId"`
	RequireAllLevels *bool            `json:"requireAllLevels"`
	Approvers        []wf.ApproverRef `json:"approvers"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.SubjectType == "" || payload.SubjectID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "subjectType and subjectId are required", middleware.GetRequestID(r.Context()))
		return
	}
	requireAll := true
	if payload.RequireAllLevels != nil {
		requireAll = *payload.RequireAllLevels
	}

	inst, err := h.Service.Create(r.Context(), user.TenantID, user.UserID, payload.SubjectType, payload.SubjectID, requireAll, payload.Approvers, middleware.GetRequestID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, inst, middleware.GetRequestID(r.Context()))
}

type decisionPayload struct {
	SlotIndex int    `json:"slotIndex"`
	Comments  string `json:"comments"`
}

type decisionResponse struct {
	Instance     wf.Instance `json:"instance"`
	Status       string      `json:"status"`
	NextApprover string      `json:"nextApprover,omitempty"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, wf.DecisionApprove)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, wf.DecisionReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	inst, err := h.Service.Decide(r.Context(), user.TenantID, wf.Action{
		InstanceID: chi.URLParam(r, "instanceID"),
		SlotIndex:  payload.SlotIndex,
		ApproverID: user.UserID,
		Decision:   decision,
		Comments:   payload.Comments,
	}, middleware.GetRequestID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	api.Success(w, decisionResponse{
		Instance:     inst,
		Status:       inst.OverallStatus,
		NextApprover: wf.NextApprover(inst),
	}, middleware.GetRequestID(r.Context()))
}

type batchPayload struct {
	InstanceIDs []string `json:"instanceIds"`
	SlotIndex   int      `json:"slotIndex"`
	Comments    string   `json:"comments"`
}

func (h *Handler) handleBatchApprove(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, wf.DecisionApprove)
}

func (h *Handler) handleBatchReject(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, wf.DecisionReject)
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request, decision string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload batchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.BatchDecide(r.Context(), user.TenantID, payload.InstanceIDs, payload.SlotIndex, user.UserID, decision, payload.Comments, middleware.GetRequestID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	instances, err := h.Service.PendingFor(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, instances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	inst, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "instanceID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, inst, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	entries, err := h.Service.History(r.Context(), user.TenantID, chi.URLParam(r, "instanceID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, wf.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "workflow instance not found", reqID)
	case errors.Is(err, wf.ErrUnknownApprover):
		api.Fail(w, http.StatusUnprocessableEntity, "unknown_approver", err.Error(), reqID)
	case errors.Is(err, wf.ErrInvalidTemplate):
		api.Fail(w, http.StatusBadRequest, "invalid_template", err.Error(), reqID)
	case errors.Is(err, wf.ErrCommentsRequired):
		api.Fail(w, http.StatusBadRequest, "comments_required", "rejection requires comments", reqID)
	case errors.Is(err, wf.ErrEmptyBatch):
		api.Fail(w, http.StatusBadRequest, "empty_batch", "instanceIds must not be empty", reqID)
	case errors.Is(err, wf.ErrWrongLevel):
		api.Fail(w, http.StatusConflict, "wrong_level", "this item was already processed at this level", reqID)
	case errors.Is(err, wf.ErrAlreadyTerminal):
		api.Fail(w, http.StatusConflict, "workflow_already_terminal", "workflow instance is already terminal", reqID)
	case errors.Is(err, wf.ErrNotAuthorizedApprover):
		api.Fail(w, http.StatusForbidden, "not_authorized_approver", "you are not the assigned approver for this level", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "workflow_error", "workflow operation failed", reqID)
	}
}
