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

// ResourceRepository is an in-memory resource store.
type ResourceRepository struct {
	mu        sync.RWMutex
	resources map[uuid.UUID]models.Resource
}

// NewResourceRepository creates an empty in-memory resource store.
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{resources: make(map[uuid.UUID]models.Resource)}
}

var _ repositories.ResourceRepository = (*ResourceRepository)(nil)

func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resources[resource.ID] = *resource
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, kind models.ResourceKind, id uuid.UUID) (*models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[id]
	if !ok || resource.Kind != kind {
		return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}

	copied := resource
	return &copied, nil
}

func (r *ResourceRepository) ListByOwner(ctx context.Context, kind models.ResourceKind, ownerID uuid.UUID) ([]models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Resource
	for _, resource := range r.resources {
		if resource.Kind == kind && resource.OwnerID == ownerID {
			out = append(out, resource)
		}
	}
	return out, nil
}

func (r *ResourceRepository) GetManyByIDs(ctx context.Context, kind models.ResourceKind, ids []uuid.UUID) ([]models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Resource
	for _, id := range ids {
		resource, ok := r.resources[id]
		if ok && resource.Kind == kind {
			out = append(out, resource)
		}
	}
	return out, nil
}

func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.resources[resource.ID]
	if !ok || existing.Kind != resource.Kind {
		return fmt.Errorf("%s %s: %w", resource.Kind, resource.ID, domain.ErrNotFound)
	}

	r.resources[resource.ID] = *resource
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, kind models.ResourceKind, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.resources[id]
	if !ok || existing.Kind != kind {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}

	delete(r.resources, id)
	return nil
}
