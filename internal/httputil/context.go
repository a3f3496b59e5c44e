package httputil

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID adds the authenticated principal's id to the request context.
func WithUserID(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves the principal id from the context; uuid.Nil means the
// request never passed the auth middleware.
func GetUserID(r *http.Request) uuid.UUID {
	userID, _ := r.Context().Value(userIDKey).(uuid.UUID)
	return userID
}
