package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

type grantKey struct {
	kind       models.ResourceKind
	targetID   uuid.UUID
	resourceID uuid.UUID
}

// UserGrantRepository is an in-memory user grant store keyed on
// (kind, user, resource), so upserts can never produce duplicates.
type UserGrantRepository struct {
	mu     sync.RWMutex
	grants map[grantKey]models.UserGrant
}

// NewUserGrantRepository creates an empty in-memory user grant store.
func NewUserGrantRepository() *UserGrantRepository {
	return &UserGrantRepository{grants: make(map[grantKey]models.UserGrant)}
}

var _ repositories.UserGrantRepository = (*UserGrantRepository)(nil)

func (r *UserGrantRepository) Find(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) (*models.UserGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grant, ok := r.grants[grantKey{kind: kind, targetID: userID, resourceID: resourceID}]
	if !ok {
		return nil, fmt.Errorf("user grant: %w", domain.ErrNotFound)
	}

	copied := grant
	return &copied, nil
}

func (r *UserGrantRepository) ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.UserGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.UserGrant
	for key, grant := range r.grants {
		if key.kind == kind && key.resourceID == resourceID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *UserGrantRepository) ListByUser(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.UserGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.UserGrant
	for key, grant := range r.grants {
		if key.kind == kind && key.targetID == userID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *UserGrantRepository) Upsert(ctx context.Context, grant *models.UserGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey{kind: grant.Kind, targetID: grant.UserID, resourceID: grant.ResourceID}
	if existing, ok := r.grants[key]; ok {
		existing.Role = grant.Role
		existing.UpdatedAt = grant.UpdatedAt
		r.grants[key] = existing
		grant.ID = existing.ID
		grant.CreatedAt = existing.CreatedAt
		return nil
	}

	r.grants[key] = *grant
	return nil
}

func (r *UserGrantRepository) Delete(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey{kind: kind, targetID: userID, resourceID: resourceID}
	if _, ok := r.grants[key]; !ok {
		return fmt.Errorf("user grant: %w", domain.ErrNotFound)
	}

	delete(r.grants, key)
	return nil
}

func (r *UserGrantRepository) DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.grants {
		if key.kind == kind && key.resourceID == resourceID {
			delete(r.grants, key)
		}
	}
	return nil
}

// GroupGrantRepository is the in-memory group grant store.
type GroupGrantRepository struct {
	mu     sync.RWMutex
	grants map[grantKey]models.GroupGrant
	groups *GroupRepository
}

// NewGroupGrantRepository creates an empty in-memory group grant store.
// Membership joins are resolved against the given group store.
func NewGroupGrantRepository(groups *GroupRepository) *GroupGrantRepository {
	return &GroupGrantRepository{
		grants: make(map[grantKey]models.GroupGrant),
		groups: groups,
	}
}

var _ repositories.GroupGrantRepository = (*GroupGrantRepository)(nil)

func (r *GroupGrantRepository) Find(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) (*models.GroupGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grant, ok := r.grants[grantKey{kind: kind, targetID: groupID, resourceID: resourceID}]
	if !ok {
		return nil, fmt.Errorf("group grant: %w", domain.ErrNotFound)
	}

	copied := grant
	return &copied, nil
}

func (r *GroupGrantRepository) ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.GroupGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.GroupGrant
	for key, grant := range r.grants {
		if key.kind == kind && key.resourceID == resourceID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *GroupGrantRepository) ListByMemberOf(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.GroupGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.GroupGrant
	for key, grant := range r.grants {
		if key.kind != kind {
			continue
		}
		member, err := r.groups.IsMember(ctx, grant.GroupID, userID)
		if err != nil {
			return nil, err
		}
		if member {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *GroupGrantRepository) Upsert(ctx context.Context, grant *models.GroupGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey{kind: grant.Kind, targetID: grant.GroupID, resourceID: grant.ResourceID}
	if existing, ok := r.grants[key]; ok {
		existing.Role = grant.Role
		existing.UpdatedAt = grant.UpdatedAt
		r.grants[key] = existing
		grant.ID = existing.ID
		grant.CreatedAt = existing.CreatedAt
		return nil
	}

	r.grants[key] = *grant
	return nil
}

func (r *GroupGrantRepository) Delete(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey{kind: kind, targetID: groupID, resourceID: resourceID}
	if _, ok := r.grants[key]; !ok {
		return fmt.Errorf("group grant: %w", domain.ErrNotFound)
	}

	delete(r.grants, key)
	return nil
}

func (r *GroupGrantRepository) DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.grants {
		if key.kind == kind && key.resourceID == resourceID {
			delete(r.grants, key)
		}
	}
	return nil
}
