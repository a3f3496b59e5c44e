package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a member of the directory. Identity is established upstream by the
// token verifier; rows exist so grants have a target and collaborators a name.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Group is a named set of users. Membership lives in its own relation; the
// struct holds no member references to keep the entity graph acyclic.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
