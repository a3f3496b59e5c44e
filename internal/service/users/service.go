// Package users provisions directory rows for authenticated principals and
// answers share-target searches.
package users

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

const searchLimit = 20

// Service implements the user directory operations.
type Service struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(users repositories.UserRepository, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Ensure upserts the directory row for a verified principal. Called by the
// auth middleware on every authenticated request; grants can only target
// users that have shown up at least once.
func (s *Service) Ensure(ctx context.Context, id uuid.UUID, email string) error {
	user := &models.User{ID: id, Email: email, CreatedAt: time.Now()}
	if err := s.users.Ensure(ctx, user); err != nil {
		return err
	}
	return nil
}

// Search finds share targets by email prefix. Requires at least three
// characters so the directory cannot be enumerated wholesale.
func (s *Service) Search(ctx context.Context, query string) ([]models.User, error) {
	err := validation.Errors{
		"email": validation.Validate(query, validation.Required, validation.Length(3, 0)),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.users.SearchByEmail(ctx, query, searchLimit)
}
