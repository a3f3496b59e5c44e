package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

// UserRepository is an in-memory user directory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

// NewUserRepository creates an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]models.User)}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Ensure(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[user.ID]; ok {
		existing.Email = user.Email
		r.users[user.ID] = existing
		user.CreatedAt = existing.CreatedAt
		return nil
	}

	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	copied := user
	return &copied, nil
}

func (r *UserRepository) GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *UserRepository) SearchByEmail(ctx context.Context, query string, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, user := range r.users {
		if strings.HasPrefix(strings.ToLower(user.Email), strings.ToLower(query)) {
			out = append(out, user)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
