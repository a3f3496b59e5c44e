package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"playbook/internal/httputil"
	"playbook/internal/kinds"
	"playbook/internal/service/planning"
)

// PlanningHandler serves one planning-document kind. The same handler type
// is registered once per catalog entry under that entry's slug.
type PlanningHandler struct {
	svc    *planning.Service
	kind   kinds.Kind
	logger *slog.Logger
}

// NewPlanningHandler creates a handler for one kind.
func NewPlanningHandler(svc *planning.Service, kind kinds.Kind, logger *slog.Logger) *PlanningHandler {
	return &PlanningHandler{svc: svc, kind: kind, logger: logger}
}

// Register mounts the kind's routes on the mux.
func (h *PlanningHandler) Register(mux *http.ServeMux) {
	base := "/api/" + h.kind.Slug
	mux.HandleFunc(fmt.Sprintf("GET %s", base), h.ListForTabs)
	mux.HandleFunc(fmt.Sprintf("POST %s", base), h.Create)
	mux.HandleFunc(fmt.Sprintf("GET %s/{id}", base), h.Get)
	mux.HandleFunc(fmt.Sprintf("PUT %s/{id}", base), h.Update)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/{id}", base), h.Delete)
}

// ListForTabs returns the principal's three-bucket listing for the kind.
func (h *PlanningHandler) ListForTabs(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	tabs, err := h.svc.ListForTabs(r.Context(), principalID, h.kind.Kind)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tabs)
}

// Create stores a new resource owned by the principal.
func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	var req planning.CreateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resource, err := h.svc.Create(r.Context(), principalID, h.kind.Kind, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// Get returns the full resource.
func (h *PlanningHandler) Get(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	groupID, err := queryGroupID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid groupId")
		return
	}

	resource, err := h.svc.Get(r.Context(), principalID, h.kind.Kind, id, groupID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// Update overwrites the resource.
func (h *PlanningHandler) Update(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	groupID, err := queryGroupID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid groupId")
		return
	}

	var req planning.UpdateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resource, err := h.svc.Update(r.Context(), principalID, h.kind.Kind, id, &req, groupID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resource)
}

// Delete removes the resource and its grants.
func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principalID := httputil.GetUserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	groupID, err := queryGroupID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid groupId")
		return
	}

	if err := h.svc.Delete(r.Context(), principalID, h.kind.Kind, id, groupID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
