package repositories

import (
	"context"

	"github.com/google/uuid"

	"playbook/internal/domain/models"
)

// ResourceRepository stores planning documents of every kind.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error

	// GetByID returns ErrNotFound when no resource of the kind has the id.
	GetByID(ctx context.Context, kind models.ResourceKind, id uuid.UUID) (*models.Resource, error)

	// ListByOwner returns the resources of one kind owned by a user.
	ListByOwner(ctx context.Context, kind models.ResourceKind, ownerID uuid.UUID) ([]models.Resource, error)

	// GetManyByIDs returns the resources that still exist among ids. Missing
	// ids are silently dropped; listing code uses this to skip grants whose
	// resource has been deleted.
	GetManyByIDs(ctx context.Context, kind models.ResourceKind, ids []uuid.UUID) ([]models.Resource, error)

	Update(ctx context.Context, resource *models.Resource) error

	// Delete removes the resource row only. Grant cleanup is the service's
	// job and must run in the same transaction.
	Delete(ctx context.Context, kind models.ResourceKind, id uuid.UUID) error
}

// UserRepository is the thin user directory behind grant targets and
// collaborator display names.
type UserRepository interface {
	// Ensure upserts the row for an authenticated principal.
	Ensure(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)

	// SearchByEmail finds share targets by email prefix.
	SearchByEmail(ctx context.Context, query string, limit int) ([]models.User, error)
}

// GroupRepository stores groups and their membership relation.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)

	AddMember(ctx context.Context, groupID, userID uuid.UUID) error

	// RemoveMember returns ErrNotFound when the user is not a member.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error)
}
