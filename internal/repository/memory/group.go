package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

type membership struct {
	groupID uuid.UUID
	userID  uuid.UUID
}

// GroupRepository is an in-memory group and membership store.
type GroupRepository struct {
	mu      sync.RWMutex
	groups  map[uuid.UUID]models.Group
	members map[membership]struct{}
	users   *UserRepository
}

// NewGroupRepository creates an empty in-memory group store. Members are
// resolved against the given user store.
func NewGroupRepository(users *UserRepository) *GroupRepository {
	return &GroupRepository{
		groups:  make(map[uuid.UUID]models.Group),
		members: make(map[membership]struct{}),
		users:   users,
	}
}

var _ repositories.GroupRepository = (*GroupRepository)(nil)

func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups[group.ID] = *group
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}

	copied := group
	return &copied, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[groupID]; !ok {
		return fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
	}

	r.members[membership{groupID: groupID, userID: userID}] = struct{}{}
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membership{groupID: groupID, userID: userID}
	if _, ok := r.members[key]; !ok {
		return fmt.Errorf("membership of %s in group %s: %w", userID, groupID, domain.ErrNotFound)
	}

	delete(r.members, key)
	return nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[membership{groupID: groupID, userID: userID}]
	return ok, nil
}

func (r *GroupRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Group
	for key := range r.members {
		if key.userID != userID {
			continue
		}
		if group, ok := r.groups[key.groupID]; ok {
			out = append(out, group)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0)
	for key := range r.members {
		if key.groupID == groupID {
			ids = append(ids, key.userID)
		}
	}
	r.mu.RUnlock()

	users, err := r.users.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}
