package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/httputil"
	"playbook/internal/repository/memory"
	"playbook/internal/service/users"
)

// stubVerifier accepts exactly one token string.
type stubVerifier struct {
	token  string
	claims *models.Claims
}

func (v *stubVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	if tokenString != v.token {
		return nil, domain.ErrUnauthorized
	}
	return v.claims, nil
}

func newAuthStack(t *testing.T, verifier *stubVerifier) (http.Handler, *memory.UserRepository) {
	t.Helper()

	repo := memory.NewUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userSvc := users.NewService(repo, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httputil.GetUserID(r)
		w.Header().Set("X-Principal", id.String())
		w.WriteHeader(http.StatusOK)
	})

	return Auth(verifier, userSvc, logger)(next), repo
}

func TestAuthAcceptsValidToken(t *testing.T) {
	t.Parallel()

	principalID := uuid.New()
	verifier := &stubVerifier{
		token: "good-token",
		claims: &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: principalID.String()},
			Email:            "coach@example.com",
		},
	}
	stack, repo := newAuthStack(t, verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, principalID.String(), rec.Header().Get("X-Principal"))

	// The directory row was provisioned on the way through.
	user, err := repo.GetByID(t.Context(), principalID)
	require.NoError(t, err)
	require.Equal(t, "coach@example.com", user.Email)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{
		token: "good-token",
		claims: &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
		},
	}
	stack, _ := newAuthStack(t, verifier)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"unknown token", "Bearer wrong-token"},
		{"non-uuid subject", "Bearer good-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			stack.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthSkipsHealth(t *testing.T) {
	t.Parallel()

	stack, _ := newAuthStack(t, &stubVerifier{token: "good-token"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
