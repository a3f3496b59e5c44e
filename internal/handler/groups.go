package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"playbook/internal/httputil"
	"playbook/internal/service/groups"
)

type addMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// GroupHandler serves the group directory routes.
type GroupHandler struct {
	svc    *groups.Service
	logger *slog.Logger
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(svc *groups.Service, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{svc: svc, logger: logger}
}

// Register mounts the group routes on the mux.
func (h *GroupHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/groups", h.ListMine)
	mux.HandleFunc("POST /api/groups", h.Create)
	mux.HandleFunc("GET /api/groups/{id}", h.Get)
	mux.HandleFunc("POST /api/groups/{id}/members", h.AddMember)
	mux.HandleFunc("DELETE /api/groups/{id}/members/{userId}", h.RemoveMember)
}

// ListMine returns the groups the principal belongs to.
func (h *GroupHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	list, err := h.svc.ListForUser(r.Context(), principalID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// Create stores a new group with the principal as first member.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	var req groups.CreateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.svc.Create(r.Context(), principalID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, group)
}

// Get returns a group with its members.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	detail, err := h.svc.Get(r.Context(), principalID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, detail)
}

// AddMember adds a user to the group.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req addMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.AddMember(r.Context(), principalID, id, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember removes a user from the group.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	userID, err := pathUUID(r, "userId")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.svc.RemoveMember(r.Context(), principalID, id, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
