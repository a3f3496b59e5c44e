package models

import (
	"time"

	"github.com/google/uuid"
)

// UserGrant links one user to one resource with one role. At most one live
// row exists per (kind, user, resource); repeated shares update the role in
// place. Grants reference their endpoints by id only.
type UserGrant struct {
	ID         uuid.UUID    `json:"id"`
	Kind       ResourceKind `json:"kind"`
	UserID     uuid.UUID    `json:"user_id"`
	ResourceID uuid.UUID    `json:"resource_id"`
	Role       AccessRole   `json:"role"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// GroupGrant links one group to one resource with one role, keyed like
// UserGrant on (kind, group, resource).
type GroupGrant struct {
	ID         uuid.UUID    `json:"id"`
	Kind       ResourceKind `json:"kind"`
	GroupID    uuid.UUID    `json:"group_id"`
	ResourceID uuid.UUID    `json:"resource_id"`
	Role       AccessRole   `json:"role"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CollaboratorKind tells user rows from group rows in a collaborator listing.
type CollaboratorKind string

const (
	CollaboratorUser  CollaboratorKind = "USER"
	CollaboratorGroup CollaboratorKind = "GROUP"
)

// Collaborator is one row of the owner-facing flat listing of everyone a
// resource is shared with.
type Collaborator struct {
	ID   uuid.UUID        `json:"id"`
	Name string           `json:"name"`
	Kind CollaboratorKind `json:"kind"`
	Role AccessRole       `json:"role"`
}
