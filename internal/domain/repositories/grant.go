package repositories

import (
	"context"

	"github.com/google/uuid"

	"playbook/internal/domain/models"
)

// UserGrantRepository stores direct user-to-resource grants for every
// resource kind. Implementations must keep at most one live row per
// (kind, user, resource), backed by a unique index.
type UserGrantRepository interface {
	// Find returns ErrNotFound when no grant row exists. A row with role
	// none is still a row and is returned as-is.
	Find(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) (*models.UserGrant, error)

	ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.UserGrant, error)

	ListByUser(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.UserGrant, error)

	// Upsert creates the grant or overwrites the role of the existing row.
	Upsert(ctx context.Context, grant *models.UserGrant) error

	// Delete returns ErrNotFound when there is nothing to revoke.
	Delete(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) error

	DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error
}

// GroupGrantRepository is the group-target counterpart, keyed on
// (kind, group, resource).
type GroupGrantRepository interface {
	Find(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) (*models.GroupGrant, error)

	ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.GroupGrant, error)

	// ListByMemberOf returns all grants of the kind held by groups the user
	// currently belongs to.
	ListByMemberOf(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.GroupGrant, error)

	Upsert(ctx context.Context, grant *models.GroupGrant) error

	Delete(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) error

	DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error
}
