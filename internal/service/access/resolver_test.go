package access

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/repository/memory"
)

type resolverFixture struct {
	resources   *memory.ResourceRepository
	users       *memory.UserRepository
	groups      *memory.GroupRepository
	userGrants  *memory.UserGrantRepository
	groupGrants *memory.GroupGrantRepository
	resolver    *Resolver
}

func newResolverFixture() *resolverFixture {
	users := memory.NewUserRepository()
	groups := memory.NewGroupRepository(users)
	f := &resolverFixture{
		resources:   memory.NewResourceRepository(),
		users:       users,
		groups:      groups,
		userGrants:  memory.NewUserGrantRepository(),
		groupGrants: memory.NewGroupGrantRepository(groups),
	}
	f.resolver = NewResolver(f.resources, f.userGrants, f.groupGrants, f.groups)
	return f
}

func (f *resolverFixture) addResource(t *testing.T, kind models.ResourceKind, ownerID uuid.UUID) uuid.UUID {
	t.Helper()
	resource := &models.Resource{
		ID:      uuid.New(),
		Kind:    kind,
		OwnerID: ownerID,
		Name:    "fixture",
	}
	require.NoError(t, f.resources.Create(context.Background(), resource))
	return resource.ID
}

func (f *resolverFixture) addGroup(t *testing.T, members ...uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	group := &models.Group{ID: uuid.New(), Name: "fixture group"}
	require.NoError(t, f.groups.Create(ctx, group))
	for _, m := range members {
		require.NoError(t, f.groups.AddMember(ctx, group.ID, m))
	}
	return group.ID
}

func (f *resolverFixture) grantUser(t *testing.T, kind models.ResourceKind, userID, resourceID uuid.UUID, role models.AccessRole) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.userGrants.Upsert(context.Background(), &models.UserGrant{
		ID: uuid.New(), Kind: kind, UserID: userID, ResourceID: resourceID,
		Role: role, CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *resolverFixture) grantGroup(t *testing.T, kind models.ResourceKind, groupID, resourceID uuid.UUID, role models.AccessRole) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.groupGrants.Upsert(context.Background(), &models.GroupGrant{
		ID: uuid.New(), Kind: kind, GroupID: groupID, ResourceID: resourceID,
		Role: role, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestResolveRoleOwner(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	owner := uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)

	role, err := f.resolver.ResolveRole(context.Background(), owner, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, role)
}

func TestResolveRoleOwnerBeatsGrants(t *testing.T) {
	t.Parallel()

	// A leftover grant row for the owner must not demote ownership.
	f := newResolverFixture()
	owner := uuid.New()
	resourceID := f.addResource(t, models.KindPractice, owner)
	f.grantUser(t, models.KindPractice, owner, resourceID, models.RoleViewer)

	role, err := f.resolver.ResolveRole(context.Background(), owner, models.KindPractice, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, role)
}

func TestResolveRoleMissingResource(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()

	_, err := f.resolver.ResolveRole(context.Background(), uuid.New(), models.KindSession, uuid.New(), nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveRoleWrongKind(t *testing.T) {
	t.Parallel()

	// The same id under another kind does not exist.
	f := newResolverFixture()
	owner := uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)

	_, err := f.resolver.ResolveRole(context.Background(), owner, models.KindPractice, resourceID, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveRoleDirectGrant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role models.AccessRole
	}{
		{"editor", models.RoleEditor},
		{"viewer", models.RoleViewer},
		{"explicit none", models.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newResolverFixture()
			owner, reader := uuid.New(), uuid.New()
			resourceID := f.addResource(t, models.KindGameTactic, owner)
			f.grantUser(t, models.KindGameTactic, reader, resourceID, tt.role)

			role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindGameTactic, resourceID, nil)
			require.NoError(t, err)
			require.Equal(t, tt.role, role)
		})
	}
}

func TestResolveRoleDirectGrantShadowsGroup(t *testing.T) {
	t.Parallel()

	// An explicit none user grant wins over an editor grant held through a
	// group the principal belongs to.
	f := newResolverFixture()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	groupID := f.addGroup(t, reader)
	f.grantGroup(t, models.KindSession, groupID, resourceID, models.RoleEditor)
	f.grantUser(t, models.KindSession, reader, resourceID, models.RoleNone)

	role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestResolveRoleViaGroupMembership(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	groupID := f.addGroup(t, reader)
	f.grantGroup(t, models.KindSession, groupID, resourceID, models.RoleViewer)

	role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleViewer, role)
}

func TestResolveRoleHighestAcrossGroups(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindPractice, owner)

	viewers := f.addGroup(t, reader)
	editors := f.addGroup(t, reader)
	strangers := f.addGroup(t)
	f.grantGroup(t, models.KindPractice, viewers, resourceID, models.RoleViewer)
	f.grantGroup(t, models.KindPractice, editors, resourceID, models.RoleEditor)
	f.grantGroup(t, models.KindPractice, strangers, resourceID, models.RoleOwner)

	role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindPractice, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleEditor, role)
}

func TestResolveRoleNonMemberGroupGrant(t *testing.T) {
	t.Parallel()

	// A grant held by a group the principal is not in confers nothing.
	f := newResolverFixture()
	owner, outsider := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	groupID := f.addGroup(t)
	f.grantGroup(t, models.KindSession, groupID, resourceID, models.RoleEditor)

	role, err := f.resolver.ResolveRole(context.Background(), outsider, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestResolveRoleAfterMembershipRemoved(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	ctx := context.Background()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	groupID := f.addGroup(t, reader)
	f.grantGroup(t, models.KindSession, groupID, resourceID, models.RoleViewer)

	role, err := f.resolver.ResolveRole(ctx, reader, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleViewer, role)

	require.NoError(t, f.groups.RemoveMember(ctx, groupID, reader))

	role, err = f.resolver.ResolveRole(ctx, reader, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestResolveRoleContextGroup(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindGameTactic, owner)
	granted := f.addGroup(t, reader)
	ungranted := f.addGroup(t, reader)
	f.grantGroup(t, models.KindGameTactic, granted, resourceID, models.RoleEditor)

	tests := []struct {
		name    string
		groupID uuid.UUID
		want    models.AccessRole
	}{
		{"granted group", granted, models.RoleEditor},
		{"member group without grant", ungranted, models.RoleNone},
		{"forged group id", uuid.New(), models.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindGameTactic, resourceID, &tt.groupID)
			require.NoError(t, err)
			require.Equal(t, tt.want, role)
		})
	}
}

func TestResolveRoleContextGroupIgnoresOtherGroups(t *testing.T) {
	t.Parallel()

	// With a context group the resolver must not fall back to other group
	// grants the principal could reach.
	f := newResolverFixture()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	granted := f.addGroup(t, reader)
	empty := f.addGroup(t, reader)
	f.grantGroup(t, models.KindSession, granted, resourceID, models.RoleEditor)

	role, err := f.resolver.ResolveRole(context.Background(), reader, models.KindSession, resourceID, &empty)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestResolveRoleContextGroupStaleMembership(t *testing.T) {
	t.Parallel()

	// Naming a group that holds a grant is worthless once the principal has
	// left it.
	f := newResolverFixture()
	ctx := context.Background()
	owner, reader := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)
	groupID := f.addGroup(t, reader)
	f.grantGroup(t, models.KindSession, groupID, resourceID, models.RoleEditor)
	require.NoError(t, f.groups.RemoveMember(ctx, groupID, reader))

	role, err := f.resolver.ResolveRole(ctx, reader, models.KindSession, resourceID, &groupID)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}

func TestResolveRoleDefaultNone(t *testing.T) {
	t.Parallel()

	f := newResolverFixture()
	owner, stranger := uuid.New(), uuid.New()
	resourceID := f.addResource(t, models.KindSession, owner)

	role, err := f.resolver.ResolveRole(context.Background(), stranger, models.KindSession, resourceID, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleNone, role)
}
