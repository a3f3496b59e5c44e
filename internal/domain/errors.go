package domain

import "errors"

// Sentinel errors for the engine's failure taxonomy. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is() while
// the message keeps its context.
var (
	// ErrNotFound indicates a resource, user, group or grant is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input (e.g. an unshareable role).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the request carries no valid identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the principal lacks the role required for the
	// attempted operation. Existence is always checked before role, so a
	// Forbidden failure never hides a missing resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness violation surfaced by the store.
	ErrConflict = errors.New("conflict")
)
