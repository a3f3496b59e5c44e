package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"playbook/internal/domain/models"
	"playbook/internal/httputil"
	"playbook/internal/kinds"
	"playbook/internal/service/sharing"
)

type shareWithUserRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type shareWithGroupRequest struct {
	GroupID uuid.UUID `json:"group_id"`
	Role    string    `json:"role"`
}

// SharingHandler serves the share management routes for one kind.
type SharingHandler struct {
	svc    *sharing.Service
	kind   kinds.Kind
	logger *slog.Logger
}

// NewSharingHandler creates a sharing handler for one kind.
func NewSharingHandler(svc *sharing.Service, kind kinds.Kind, logger *slog.Logger) *SharingHandler {
	return &SharingHandler{svc: svc, kind: kind, logger: logger}
}

// Register mounts the kind's sharing routes on the mux.
func (h *SharingHandler) Register(mux *http.ServeMux) {
	base := "/api/" + h.kind.Slug
	mux.HandleFunc(fmt.Sprintf("POST %s/{id}/share/user", base), h.ShareWithUser)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/{id}/share/user/{userId}", base), h.RevokeFromUser)
	mux.HandleFunc(fmt.Sprintf("POST %s/{id}/share/group", base), h.ShareWithGroup)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/{id}/share/group/{groupId}", base), h.RevokeFromGroup)
	mux.HandleFunc(fmt.Sprintf("GET %s/{id}/collaborators", base), h.ListCollaborators)
}

// ShareWithUser grants or updates a user's role on the resource.
func (h *SharingHandler) ShareWithUser(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	var req shareWithUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := models.ParseAccessRole(req.Role)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.ShareWithUser(r.Context(), principalID, h.kind.Kind, id, req.UserID, role); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevokeFromUser removes a user's grant.
func (h *SharingHandler) RevokeFromUser(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	targetID, err := pathUUID(r, "userId")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.svc.RevokeFromUser(r.Context(), principalID, h.kind.Kind, id, targetID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareWithGroup grants or updates a group's role on the resource.
func (h *SharingHandler) ShareWithGroup(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	var req shareWithGroupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := models.ParseAccessRole(req.Role)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.ShareWithGroup(r.Context(), principalID, h.kind.Kind, id, req.GroupID, role); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevokeFromGroup removes a group's grant.
func (h *SharingHandler) RevokeFromGroup(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	groupID, err := pathUUID(r, "groupId")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.svc.RevokeFromGroup(r.Context(), principalID, h.kind.Kind, id, groupID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCollaborators returns everyone the resource is shared with.
func (h *SharingHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	collaborators, err := h.svc.ListCollaborators(r.Context(), principalID, h.kind.Kind, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collaborators)
}
