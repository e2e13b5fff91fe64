package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentflow/internal/domain/directory"
	"talentflow/internal/transport/http/api"
	"talentflow/internal/transport/http/middleware"
)

type Handler struct {
	Store *directory.Store
}

func NewHandler(store *directory.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/directory/principals", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	principals, err := h.Store.List(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "principal_list_failed", "failed to list principals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, principals, middleware.GetRequestID(r.Context()))
}
