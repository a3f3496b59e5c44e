package handler

import (
	"log/slog"
	"net/http"

	"playbook/internal/httputil"
	"playbook/internal/service/users"
)

// UserHandler serves the user directory routes.
type UserHandler struct {
	svc    *users.Service
	logger *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *users.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Register mounts the user routes on the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users/search", h.Search)
}

// Search finds share targets by email prefix.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("email")

	list, err := h.svc.Search(r.Context(), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}
