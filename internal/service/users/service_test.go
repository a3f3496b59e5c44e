package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"playbook/internal/domain"
	"playbook/internal/repository/memory"
)

func newService() (*Service, *memory.UserRepository) {
	repo := memory.NewUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func TestEnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, repo := newService()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.Ensure(ctx, id, "coach@example.com"))
	require.NoError(t, svc.Ensure(ctx, id, "coach@example.com"))

	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "coach@example.com", user.Email)
}

func TestEnsureUpdatesEmail(t *testing.T) {
	t.Parallel()

	svc, repo := newService()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.Ensure(ctx, id, "old@example.com"))
	require.NoError(t, svc.Ensure(ctx, id, "new@example.com"))

	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	svc, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.Ensure(ctx, uuid.New(), "anna@example.com"))
	require.NoError(t, svc.Ensure(ctx, uuid.New(), "andrew@example.com"))
	require.NoError(t, svc.Ensure(ctx, uuid.New(), "bella@example.com"))

	found, err := svc.Search(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "anna@example.com", found[0].Email)

	found, err = svc.Search(ctx, "an")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Nil(t, found)

	_, err = svc.Search(ctx, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}
