// Package groups is the thin membership directory behind group-based
// sharing: create a group, manage its members, answer membership queries.
package groups

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

const maxNameLength = 255

// CreateRequest carries the fields for a new group.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupDetail is a group with its resolved member list.
type GroupDetail struct {
	models.Group
	Members []models.User `json:"members"`
}

// Service implements group management.
type Service struct {
	groups repositories.GroupRepository
	users  repositories.UserRepository
	logger *slog.Logger
}

// NewService creates a new group service.
func NewService(groups repositories.GroupRepository, users repositories.UserRepository, logger *slog.Logger) *Service {
	return &Service{groups: groups, users: users, logger: logger}
}

// Create stores a new group with the creator as its first member.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateRequest) (*models.Group, error) {
	err := validation.Errors{
		"name": validation.Validate(req.Name, validation.Required, validation.Length(1, maxNameLength)),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	group := &models.Group{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	if err := s.groups.AddMember(ctx, group.ID, creatorID); err != nil {
		return nil, err
	}

	s.logger.Info("group created", "id", group.ID, "name", group.Name, "creator_id", creatorID)
	return group, nil
}

// Get returns a group with its members. Member-only.
func (s *Service) Get(ctx context.Context, principalID, groupID uuid.UUID) (*GroupDetail, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, groupID, principalID); err != nil {
		return nil, err
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupDetail{Group: *group, Members: members}, nil
}

// ListForUser returns the groups the principal belongs to.
func (s *Service) ListForUser(ctx context.Context, principalID uuid.UUID) ([]models.Group, error) {
	return s.groups.ListForUser(ctx, principalID)
}

// AddMember adds a user to a group. Only current members can add.
func (s *Service) AddMember(ctx context.Context, principalID, groupID, userID uuid.UUID) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMember(ctx, groupID, principalID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return err
	}

	s.logger.Info("group member added", "group_id", groupID, "user_id", userID)
	return nil
}

// RemoveMember removes a user from a group. Members can remove anyone,
// including themselves (leaving the group).
func (s *Service) RemoveMember(ctx context.Context, principalID, groupID, userID uuid.UUID) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMember(ctx, groupID, principalID); err != nil {
		return err
	}

	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	s.logger.Info("group member removed", "group_id", groupID, "user_id", userID)
	return nil
}

func (s *Service) requireMember(ctx context.Context, groupID, principalID uuid.UUID) error {
	member, err := s.groups.IsMember(ctx, groupID, principalID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("you are not a member of this group: %w", domain.ErrForbidden)
	}
	return nil
}
