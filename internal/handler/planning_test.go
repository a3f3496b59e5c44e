package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"playbook/internal/domain/models"
	"playbook/internal/httputil"
	"playbook/internal/kinds"
	"playbook/internal/repository/memory"
	"playbook/internal/service/access"
	"playbook/internal/service/planning"
	"playbook/internal/service/sharing"
)

type testServer struct {
	mux   *http.ServeMux
	users *memory.UserRepository
}

// newTestServer wires the full handler stack over the in-memory stores.
// Requests carry the principal id directly in the context, standing in for
// the auth middleware.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	groups := memory.NewGroupRepository(users)
	resources := memory.NewResourceRepository()
	userGrants := memory.NewUserGrantRepository()
	groupGrants := memory.NewGroupGrantRepository(groups)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := memory.NewTransactionManager()
	resolver := access.NewResolver(resources, userGrants, groupGrants, groups)
	sharingSvc := sharing.NewService(resources, users, groups, userGrants, groupGrants, tx, logger)
	planningSvc := planning.NewService(resources, userGrants, groupGrants, resolver, sharingSvc, tx, logger)

	registry, err := kinds.NewRegistry()
	require.NoError(t, err)

	mux := http.NewServeMux()
	for _, kind := range registry.All() {
		NewPlanningHandler(planningSvc, kind, logger).Register(mux)
		NewSharingHandler(sharingSvc, kind, logger).Register(mux)
	}

	return &testServer{mux: mux, users: users}
}

func (ts *testServer) addUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
	require.NoError(t, ts.users.Ensure(t.Context(), user))
	return user.ID
}

func (ts *testServer) do(t *testing.T, principalID uuid.UUID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req = httputil.WithUserID(req, principalID)
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPlanningCRUD(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/sessions", map[string]interface{}{
		"name":        "Tuesday conditioning",
		"description": "Track work",
		"step_count":  4,
		"content":     map[string]interface{}{"steps": []string{"a", "b"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[models.Resource](t, rec)
	require.Equal(t, models.KindSession, created.Kind)

	rec = ts.do(t, owner, http.MethodGet, "/api/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, owner, http.MethodPut, "/api/sessions/"+created.ID.String(), map[string]interface{}{
		"name":       "Wednesday conditioning",
		"step_count": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeJSON[models.Resource](t, rec)
	require.Equal(t, "Wednesday conditioning", updated.Name)

	rec = ts.do(t, owner, http.MethodDelete, "/api/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, owner, http.MethodGet, "/api/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanningCreateValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/practices", map[string]interface{}{
		"name": "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestPlanningKindsAreSeparate(t *testing.T) {
	t.Parallel()

	// A session id is not reachable under the practice routes.
	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/sessions", map[string]interface{}{"name": "s"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[models.Resource](t, rec)

	rec = ts.do(t, owner, http.MethodGet, "/api/practices/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharingOverHTTP(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")
	target := ts.addUser(t, "target@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/game-tactics", map[string]interface{}{"name": "press"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[models.Resource](t, rec)
	base := "/api/game-tactics/" + created.ID.String()

	// Target cannot see it yet.
	rec = ts.do(t, target, http.MethodGet, base, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, owner, http.MethodPost, base+"/share/user", map[string]interface{}{
		"user_id": target, "role": "viewer",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, target, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Shared listings place it in the user-shared bucket.
	rec = ts.do(t, target, http.MethodGet, "/api/game-tactics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tabs := decodeJSON[models.TabbedList](t, rec)
	require.Empty(t, tabs.Personal)
	require.Len(t, tabs.UserShared, 1)
	require.Equal(t, models.RoleViewer, tabs.UserShared[0].Role)

	rec = ts.do(t, owner, http.MethodGet, base+"/collaborators", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	collaborators := decodeJSON[[]models.Collaborator](t, rec)
	require.Len(t, collaborators, 1)
	require.Equal(t, "target@example.com", collaborators[0].Name)

	rec = ts.do(t, owner, http.MethodDelete, base+"/share/user/"+target.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, target, http.MethodGet, base, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// A second revoke has nothing to remove.
	rec = ts.do(t, owner, http.MethodDelete, base+"/share/user/"+target.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareRejectsBadRole(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")
	target := ts.addUser(t, "target@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/sessions", map[string]interface{}{"name": "s"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[models.Resource](t, rec)
	base := "/api/sessions/" + created.ID.String()

	// Unknown role names fail at the boundary.
	rec = ts.do(t, owner, http.MethodPost, base+"/share/user", map[string]interface{}{
		"user_id": target, "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Known but unshareable roles fail in the service.
	rec = ts.do(t, owner, http.MethodPost, base+"/share/user", map[string]interface{}{
		"user_id": target, "role": "owner",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareRequiresOwnerOverHTTP(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	owner := ts.addUser(t, "owner@example.com")
	editor := ts.addUser(t, "editor@example.com")
	target := ts.addUser(t, "target@example.com")

	rec := ts.do(t, owner, http.MethodPost, "/api/sessions", map[string]interface{}{"name": "s"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[models.Resource](t, rec)
	base := "/api/sessions/" + created.ID.String()

	rec = ts.do(t, owner, http.MethodPost, base+"/share/user", map[string]interface{}{
		"user_id": editor, "role": "editor",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, editor, http.MethodPost, base+"/share/user", map[string]interface{}{
		"user_id": target, "role": "viewer",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, editor, http.MethodGet, base+"/collaborators", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
