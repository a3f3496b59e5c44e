package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"playbook/internal/auth"
	"playbook/internal/httputil"
	"playbook/internal/service/users"
)

// Auth verifies the bearer token, provisions the principal's directory row
// and stores the principal id in the request context. Every call into the
// engine receives that id explicitly; there is no ambient identity below
// this middleware.
func Auth(verifier auth.TokenVerifier, userSvc *users.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			principalID, err := uuid.Parse(claims.Subject)
			if err != nil {
				logger.Warn("token subject is not a uuid", "subject", claims.Subject)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			if err := userSvc.Ensure(r.Context(), principalID, claims.Email); err != nil {
				logger.Error("ensure user failed", "user_id", principalID, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, principalID))
		})
	}
}
