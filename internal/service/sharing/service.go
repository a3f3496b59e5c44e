// Package sharing maintains the grant records behind shared planning
// resources: who a resource is shared with, at what role, and the cleanup
// contract invoked when a resource goes away.
package sharing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

// Service implements share and revoke for user and group targets. All
// operations are owner-exclusive: holding an editor grant does not allow
// managing shares.
type Service struct {
	resources   repositories.ResourceRepository
	users       repositories.UserRepository
	groups      repositories.GroupRepository
	userGrants  repositories.UserGrantRepository
	groupGrants repositories.GroupGrantRepository
	tx          repositories.TransactionManager
	logger      *slog.Logger
}

// NewService creates a new sharing service.
func NewService(
	resources repositories.ResourceRepository,
	users repositories.UserRepository,
	groups repositories.GroupRepository,
	userGrants repositories.UserGrantRepository,
	groupGrants repositories.GroupGrantRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		resources:   resources,
		users:       users,
		groups:      groups,
		userGrants:  userGrants,
		groupGrants: groupGrants,
		tx:          tx,
		logger:      logger,
	}
}

// ShareWithUser grants targetUserID the role on a resource, or updates the
// existing grant's role in place. Only viewer and editor can be shared.
func (s *Service) ShareWithUser(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID, targetUserID uuid.UUID, role models.AccessRole) error {
	if !role.IsShareable() {
		return fmt.Errorf("%w: share role must be viewer or editor", domain.ErrValidation)
	}

	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.requireOwner(ctx, ownerID, kind, resourceID, "share"); err != nil {
			return err
		}

		if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
			return err
		}

		now := time.Now()
		grant := &models.UserGrant{
			ID:         uuid.New(),
			Kind:       kind,
			UserID:     targetUserID,
			ResourceID: resourceID,
			Role:       role,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.userGrants.Upsert(ctx, grant)
	})
	if err != nil {
		return err
	}

	s.logger.Info("resource shared with user",
		"kind", kind,
		"resource_id", resourceID,
		"target_user_id", targetUserID,
		"role", role,
	)
	return nil
}

// RevokeFromUser deletes the user's grant on a resource.
func (s *Service) RevokeFromUser(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID, targetUserID uuid.UUID) error {
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.requireOwner(ctx, ownerID, kind, resourceID, "revoke"); err != nil {
			return err
		}

		if _, err := s.userGrants.Find(ctx, kind, targetUserID, resourceID); err != nil {
			return fmt.Errorf("no shared access found: %w", domain.ErrNotFound)
		}

		return s.userGrants.Delete(ctx, kind, targetUserID, resourceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user access revoked",
		"kind", kind,
		"resource_id", resourceID,
		"target_user_id", targetUserID,
	)
	return nil
}

// ShareWithGroup grants a group the role on a resource, upserting like
// ShareWithUser.
func (s *Service) ShareWithGroup(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID, groupID uuid.UUID, role models.AccessRole) error {
	if !role.IsShareable() {
		return fmt.Errorf("%w: share role must be viewer or editor", domain.ErrValidation)
	}

	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.requireOwner(ctx, ownerID, kind, resourceID, "share"); err != nil {
			return err
		}

		if _, err := s.groups.GetByID(ctx, groupID); err != nil {
			return err
		}

		now := time.Now()
		grant := &models.GroupGrant{
			ID:         uuid.New(),
			Kind:       kind,
			GroupID:    groupID,
			ResourceID: resourceID,
			Role:       role,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.groupGrants.Upsert(ctx, grant)
	})
	if err != nil {
		return err
	}

	s.logger.Info("resource shared with group",
		"kind", kind,
		"resource_id", resourceID,
		"group_id", groupID,
		"role", role,
	)
	return nil
}

// RevokeFromGroup deletes the group's grant on a resource.
func (s *Service) RevokeFromGroup(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID, groupID uuid.UUID) error {
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.requireOwner(ctx, ownerID, kind, resourceID, "revoke"); err != nil {
			return err
		}

		if _, err := s.groupGrants.Find(ctx, kind, groupID, resourceID); err != nil {
			return fmt.Errorf("no shared access found: %w", domain.ErrNotFound)
		}

		return s.groupGrants.Delete(ctx, kind, groupID, resourceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("group access revoked",
		"kind", kind,
		"resource_id", resourceID,
		"group_id", groupID,
	)
	return nil
}

// ListCollaborators returns every user and group grant on a resource as one
// flat list. Owner-only; a grant row for the owner itself is skipped.
func (s *Service) ListCollaborators(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID uuid.UUID) ([]models.Collaborator, error) {
	resource, err := s.resources.GetByID(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.OwnerID != ownerID {
		return nil, fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}

	userGrants, err := s.userGrants.ListByResource(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(userGrants))
	for _, grant := range userGrants {
		userIDs = append(userIDs, grant.UserID)
	}
	users, err := s.users.GetManyByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		emails[user.ID] = user.Email
	}

	collaborators := make([]models.Collaborator, 0, len(userGrants))
	for _, grant := range userGrants {
		if grant.UserID == resource.OwnerID {
			continue
		}
		email, ok := emails[grant.UserID]
		if !ok {
			continue
		}
		collaborators = append(collaborators, models.Collaborator{
			ID:   grant.UserID,
			Name: email,
			Kind: models.CollaboratorUser,
			Role: grant.Role,
		})
	}

	groupGrants, err := s.groupGrants.ListByResource(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}
	for _, grant := range groupGrants {
		group, err := s.groups.GetByID(ctx, grant.GroupID)
		if err != nil {
			// A grant row pointing at a deleted group yields no entry.
			continue
		}
		collaborators = append(collaborators, models.Collaborator{
			ID:   group.ID,
			Name: group.Name,
			Kind: models.CollaboratorGroup,
			Role: grant.Role,
		})
	}

	return collaborators, nil
}

// DeleteAllGrantsFor removes every grant row referencing a resource. The
// content service calls this inside the same transaction that deletes the
// resource, so no orphaned rows are ever visible.
func (s *Service) DeleteAllGrantsFor(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error {
	if err := s.userGrants.DeleteAllForResource(ctx, kind, resourceID); err != nil {
		return err
	}
	return s.groupGrants.DeleteAllForResource(ctx, kind, resourceID)
}

func (s *Service) requireOwner(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, resourceID uuid.UUID, action string) error {
	resource, err := s.resources.GetByID(ctx, kind, resourceID)
	if err != nil {
		return err
	}
	if resource.OwnerID != ownerID {
		return fmt.Errorf("only the owner can %s this %s: %w", action, kind, domain.ErrForbidden)
	}
	return nil
}
