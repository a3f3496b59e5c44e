package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

// PostgresUserGrantRepository implements the UserGrantRepository interface.
// The UNIQUE (kind, user_id, resource_id) index makes Upsert race-safe: two
// concurrent shares for the same pair serialize to a single row.
type PostgresUserGrantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserGrantRepository creates a new user grant repository.
func NewUserGrantRepository(config *RepositoryConfig) repositories.UserGrantRepository {
	return &PostgresUserGrantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Find retrieves the grant for (kind, user, resource).
func (r *PostgresUserGrantRepository) Find(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) (*models.UserGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, user_id, resource_id, role, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND user_id = $2 AND resource_id = $3
	`, r.tables.UserGrants)

	var grant models.UserGrant
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, kind, userID, resourceID).Scan(
		&grant.ID,
		&grant.Kind,
		&grant.UserID,
		&grant.ResourceID,
		&grant.Role,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user grant: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find user grant: %w", err)
	}

	return &grant, nil
}

// ListByResource retrieves all user grants on a resource.
func (r *PostgresUserGrantRepository) ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.UserGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, user_id, resource_id, role, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND resource_id = $2
	`, r.tables.UserGrants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list user grants by resource: %w", err)
	}
	defer rows.Close()

	return scanUserGrants(rows)
}

// ListByUser retrieves all grants of one kind held directly by a user.
func (r *PostgresUserGrantRepository) ListByUser(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.UserGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, user_id, resource_id, role, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND user_id = $2
	`, r.tables.UserGrants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, userID)
	if err != nil {
		return nil, fmt.Errorf("list user grants by user: %w", err)
	}
	defer rows.Close()

	return scanUserGrants(rows)
}

// Upsert creates the grant or overwrites the existing row's role in place.
func (r *PostgresUserGrantRepository) Upsert(ctx context.Context, grant *models.UserGrant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, user_id, resource_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, user_id, resource_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.UserGrants)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		grant.ID,
		grant.Kind,
		grant.UserID,
		grant.ResourceID,
		grant.Role,
		grant.CreatedAt,
		grant.UpdatedAt,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user grant: %w", err)
	}

	return nil
}

// Delete removes the grant for (kind, user, resource).
func (r *PostgresUserGrantRepository) Delete(ctx context.Context, kind models.ResourceKind, userID, resourceID uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE kind = $1 AND user_id = $2 AND resource_id = $3
	`, r.tables.UserGrants)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, kind, userID, resourceID)
	if err != nil {
		return fmt.Errorf("delete user grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user grant: %w", domain.ErrNotFound)
	}

	return nil
}

// DeleteAllForResource removes every user grant referencing a resource.
func (r *PostgresUserGrantRepository) DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE kind = $1 AND resource_id = $2
	`, r.tables.UserGrants)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, kind, resourceID); err != nil {
		return fmt.Errorf("delete user grants for resource: %w", err)
	}

	return nil
}

func scanUserGrants(rows pgx.Rows) ([]models.UserGrant, error) {
	var grants []models.UserGrant
	for rows.Next() {
		var grant models.UserGrant
		err := rows.Scan(
			&grant.ID,
			&grant.Kind,
			&grant.UserID,
			&grant.ResourceID,
			&grant.Role,
			&grant.CreatedAt,
			&grant.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user grants: %w", err)
	}

	return grants, nil
}
