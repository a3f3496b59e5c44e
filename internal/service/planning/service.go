// Package planning owns the planning-document lifecycle and the categorized
// listings. It enforces the access policy at every boundary: owner and editor
// mutate, anyone with a role reads, none does neither. Existence is always
// checked before authorization.
package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
	"playbook/internal/service/access"
	"playbook/internal/service/sharing"
)

const maxNameLength = 255

// CreateRequest carries the fields for a new planning resource.
type CreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StepCount   int             `json:"step_count"`
	Content     json.RawMessage `json:"content"`
}

// UpdateRequest mirrors CreateRequest for full updates.
type UpdateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StepCount   int             `json:"step_count"`
	Content     json.RawMessage `json:"content"`
}

// Service implements the planning-resource operations for all kinds.
type Service struct {
	resources repositories.ResourceRepository
	uGrants   repositories.UserGrantRepository
	gGrants   repositories.GroupGrantRepository
	resolver  *access.Resolver
	sharing   *sharing.Service
	tx        repositories.TransactionManager
	logger    *slog.Logger
}

// NewService creates a new planning service.
func NewService(
	resources repositories.ResourceRepository,
	uGrants repositories.UserGrantRepository,
	gGrants repositories.GroupGrantRepository,
	resolver *access.Resolver,
	sharingSvc *sharing.Service,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		resources: resources,
		uGrants:   uGrants,
		gGrants:   gGrants,
		resolver:  resolver,
		sharing:   sharingSvc,
		tx:        tx,
		logger:    logger,
	}
}

// Create stores a new resource owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, kind models.ResourceKind, req *CreateRequest) (*models.Resource, error) {
	if err := validateRequest(req.Name, req.StepCount); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	resource := &models.Resource{
		ID:          uuid.New(),
		Kind:        kind,
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		StepCount:   req.StepCount,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.logger.Info("resource created",
		"kind", kind,
		"id", resource.ID,
		"owner_id", ownerID,
	)
	return resource, nil
}

// Get returns the full resource if the principal has any access to it.
func (s *Service) Get(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, id uuid.UUID, contextGroupID *uuid.UUID) (*models.Resource, error) {
	role, err := s.resolver.ResolveRole(ctx, principalID, kind, id, contextGroupID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleNone {
		return nil, fmt.Errorf("you do not have access to this %s: %w", kind, domain.ErrForbidden)
	}

	return s.resources.GetByID(ctx, kind, id)
}

// Update overwrites a resource. Owner and editor only.
func (s *Service) Update(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, id uuid.UUID, req *UpdateRequest, contextGroupID *uuid.UUID) (*models.Resource, error) {
	if err := validateRequest(req.Name, req.StepCount); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	role, err := s.resolver.ResolveRole(ctx, principalID, kind, id, contextGroupID)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, fmt.Errorf("you do not have permission to edit this %s: %w", kind, domain.ErrForbidden)
	}

	resource, err := s.resources.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	resource.Name = req.Name
	resource.Description = req.Description
	resource.StepCount = req.StepCount
	resource.Content = req.Content
	resource.UpdatedAt = time.Now()

	if err := s.resources.Update(ctx, resource); err != nil {
		return nil, err
	}

	s.logger.Info("resource updated",
		"kind", kind,
		"id", id,
		"principal_id", principalID,
		"role", role,
	)
	return resource, nil
}

// Delete removes a resource and, in the same transaction, every grant row
// referencing it, so listings never see orphaned grants.
func (s *Service) Delete(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, id uuid.UUID, contextGroupID *uuid.UUID) error {
	role, err := s.resolver.ResolveRole(ctx, principalID, kind, id, contextGroupID)
	if err != nil {
		return err
	}
	if !role.CanEdit() {
		return fmt.Errorf("you do not have permission to delete this %s: %w", kind, domain.ErrForbidden)
	}

	err = s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.sharing.DeleteAllGrantsFor(ctx, kind, id); err != nil {
			return err
		}
		return s.resources.Delete(ctx, kind, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("resource deleted",
		"kind", kind,
		"id", id,
		"principal_id", principalID,
	)
	return nil
}

// ListForTabs aggregates the principal's visible resources of one kind into
// the three buckets: owned, shared directly, shared via a group.
func (s *Service) ListForTabs(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind) (*models.TabbedList, error) {
	personal, err := s.listPersonal(ctx, principalID, kind)
	if err != nil {
		return nil, err
	}

	userShared, err := s.listUserShared(ctx, principalID, kind)
	if err != nil {
		return nil, err
	}

	groupShared, err := s.listGroupShared(ctx, principalID, kind)
	if err != nil {
		return nil, err
	}

	return &models.TabbedList{
		Personal:    personal,
		UserShared:  userShared,
		GroupShared: groupShared,
	}, nil
}

func (s *Service) listPersonal(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind) ([]models.ResourceSummary, error) {
	owned, err := s.resources.ListByOwner(ctx, kind, principalID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ResourceSummary, 0, len(owned))
	for i := range owned {
		summaries = append(summaries, owned[i].Summary(models.RoleOwner))
	}
	return summaries, nil
}

func (s *Service) listUserShared(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind) ([]models.ResourceSummary, error) {
	grants, err := s.uGrants.ListByUser(ctx, kind, principalID)
	if err != nil {
		return nil, err
	}

	// An explicit none grant blocks access and must not surface here.
	roles := make(map[uuid.UUID]models.AccessRole, len(grants))
	ids := make([]uuid.UUID, 0, len(grants))
	for _, grant := range grants {
		if grant.Role == models.RoleNone {
			continue
		}
		roles[grant.ResourceID] = grant.Role
		ids = append(ids, grant.ResourceID)
	}

	return s.loadSummaries(ctx, kind, ids, roles)
}

func (s *Service) listGroupShared(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind) ([]models.ResourceSummary, error) {
	grants, err := s.gGrants.ListByMemberOf(ctx, kind, principalID)
	if err != nil {
		return nil, err
	}

	// Dedupe by resource; a resource reachable through several groups is
	// listed once with the highest of its roles.
	roles := make(map[uuid.UUID]models.AccessRole, len(grants))
	ids := make([]uuid.UUID, 0, len(grants))
	for _, grant := range grants {
		if grant.Role == models.RoleNone {
			continue
		}
		current, seen := roles[grant.ResourceID]
		if !seen {
			ids = append(ids, grant.ResourceID)
		}
		if !seen || grant.Role.Outranks(current) {
			roles[grant.ResourceID] = grant.Role
		}
	}

	return s.loadSummaries(ctx, kind, ids, roles)
}

// loadSummaries projects the still-existing resources among ids; grants whose
// resource has been deleted produce no summary.
func (s *Service) loadSummaries(ctx context.Context, kind models.ResourceKind, ids []uuid.UUID, roles map[uuid.UUID]models.AccessRole) ([]models.ResourceSummary, error) {
	resources, err := s.resources.GetManyByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ResourceSummary, 0, len(resources))
	for i := range resources {
		summaries = append(summaries, resources[i].Summary(roles[resources[i].ID]))
	}
	return summaries, nil
}

func validateRequest(name string, stepCount int) error {
	return validation.Errors{
		"name": validation.Validate(name,
			validation.Required,
			validation.Length(1, maxNameLength),
		),
		"step_count": validation.Validate(stepCount, validation.Min(0)),
	}.Filter()
}
