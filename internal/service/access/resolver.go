// Package access computes the effective role a principal holds on a planning
// resource. Resolution is read-only; everything it reads is written by the
// sharing service and the group directory.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

// Resolver resolves effective access roles. Precedence is fixed: ownership
// short-circuits everything, then a direct user grant (returned literally,
// including a persisted none), then group grants.
type Resolver struct {
	resources   repositories.ResourceRepository
	userGrants  repositories.UserGrantRepository
	groupGrants repositories.GroupGrantRepository
	groups      repositories.GroupRepository
}

// NewResolver creates a new access resolver.
func NewResolver(
	resources repositories.ResourceRepository,
	userGrants repositories.UserGrantRepository,
	groupGrants repositories.GroupGrantRepository,
	groups repositories.GroupRepository,
) *Resolver {
	return &Resolver{
		resources:   resources,
		userGrants:  userGrants,
		groupGrants: groupGrants,
		groups:      groups,
	}
}

// ResolveRole computes the role principalID holds on the resource. The only
// failure besides store errors is ErrNotFound for a missing resource; every
// other path terminates in a role, with RoleNone meaning no access.
//
// When contextGroupID is set, only that group's grant is considered and it
// counts only if the principal is currently a member; a stale or forged
// group id resolves to no access. Without a context group, the highest role
// across all groups the principal belongs to wins.
func (r *Resolver) ResolveRole(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, resourceID uuid.UUID, contextGroupID *uuid.UUID) (models.AccessRole, error) {
	resource, err := r.resources.GetByID(ctx, kind, resourceID)
	if err != nil {
		return models.RoleNone, err
	}

	if resource.OwnerID == principalID {
		return models.RoleOwner, nil
	}

	grant, err := r.userGrants.Find(ctx, kind, principalID, resourceID)
	if err == nil {
		return grant.Role, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return models.RoleNone, err
	}

	if contextGroupID != nil {
		return r.resolveContextGroup(ctx, principalID, kind, resourceID, *contextGroupID)
	}

	return r.resolveAnyGroup(ctx, principalID, kind, resourceID)
}

func (r *Resolver) resolveContextGroup(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, resourceID, groupID uuid.UUID) (models.AccessRole, error) {
	grant, err := r.groupGrants.Find(ctx, kind, groupID, resourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return models.RoleNone, nil
		}
		return models.RoleNone, err
	}

	member, err := r.groups.IsMember(ctx, grant.GroupID, principalID)
	if err != nil {
		return models.RoleNone, err
	}
	if !member {
		return models.RoleNone, nil
	}

	return grant.Role, nil
}

func (r *Resolver) resolveAnyGroup(ctx context.Context, principalID uuid.UUID, kind models.ResourceKind, resourceID uuid.UUID) (models.AccessRole, error) {
	grants, err := r.groupGrants.ListByResource(ctx, kind, resourceID)
	if err != nil {
		return models.RoleNone, err
	}

	// Highest role across qualifying groups; store order must not matter.
	role := models.RoleNone
	for _, grant := range grants {
		member, err := r.groups.IsMember(ctx, grant.GroupID, principalID)
		if err != nil {
			return models.RoleNone, err
		}
		if member && grant.Role.Outranks(role) {
			role = grant.Role
		}
	}

	return role, nil
}
