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

// PostgresGroupGrantRepository implements the GroupGrantRepository interface.
type PostgresGroupGrantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewGroupGrantRepository creates a new group grant repository.
func NewGroupGrantRepository(config *RepositoryConfig) repositories.GroupGrantRepository {
	return &PostgresGroupGrantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Find retrieves the grant for (kind, group, resource).
func (r *PostgresGroupGrantRepository) Find(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) (*models.GroupGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, group_id, resource_id, role, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND group_id = $2 AND resource_id = $3
	`, r.tables.GroupGrants)

	var grant models.GroupGrant
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, kind, groupID, resourceID).Scan(
		&grant.ID,
		&grant.Kind,
		&grant.GroupID,
		&grant.ResourceID,
		&grant.Role,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("group grant: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find group grant: %w", err)
	}

	return &grant, nil
}

// ListByResource retrieves all group grants on a resource.
func (r *PostgresGroupGrantRepository) ListByResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) ([]models.GroupGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, group_id, resource_id, role, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND resource_id = $2
	`, r.tables.GroupGrants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list group grants by resource: %w", err)
	}
	defer rows.Close()

	return scanGroupGrants(rows)
}

// ListByMemberOf retrieves all grants of one kind held by groups the user
// currently belongs to. Membership is evaluated at read time, so leaving a
// group immediately removes its grants from the result.
func (r *PostgresGroupGrantRepository) ListByMemberOf(ctx context.Context, kind models.ResourceKind, userID uuid.UUID) ([]models.GroupGrant, error) {
	query := fmt.Sprintf(`
		SELECT g.id, g.kind, g.group_id, g.resource_id, g.role, g.created_at, g.updated_at
		FROM %s g
		JOIN %s m ON m.group_id = g.group_id
		WHERE g.kind = $1 AND m.user_id = $2
	`, r.tables.GroupGrants, r.tables.GroupMembers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, userID)
	if err != nil {
		return nil, fmt.Errorf("list group grants by membership: %w", err)
	}
	defer rows.Close()

	return scanGroupGrants(rows)
}

// Upsert creates the grant or overwrites the existing row's role in place.
func (r *PostgresGroupGrantRepository) Upsert(ctx context.Context, grant *models.GroupGrant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, group_id, resource_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, group_id, resource_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.GroupGrants)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		grant.ID,
		grant.Kind,
		grant.GroupID,
		grant.ResourceID,
		grant.Role,
		grant.CreatedAt,
		grant.UpdatedAt,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert group grant: %w", err)
	}

	return nil
}

// Delete removes the grant for (kind, group, resource).
func (r *PostgresGroupGrantRepository) Delete(ctx context.Context, kind models.ResourceKind, groupID, resourceID uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE kind = $1 AND group_id = $2 AND resource_id = $3
	`, r.tables.GroupGrants)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, kind, groupID, resourceID)
	if err != nil {
		return fmt.Errorf("delete group grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group grant: %w", domain.ErrNotFound)
	}

	return nil
}

// DeleteAllForResource removes every group grant referencing a resource.
func (r *PostgresGroupGrantRepository) DeleteAllForResource(ctx context.Context, kind models.ResourceKind, resourceID uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE kind = $1 AND resource_id = $2
	`, r.tables.GroupGrants)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, kind, resourceID); err != nil {
		return fmt.Errorf("delete group grants for resource: %w", err)
	}

	return nil
}

func scanGroupGrants(rows pgx.Rows) ([]models.GroupGrant, error) {
	var grants []models.GroupGrant
	for rows.Next() {
		var grant models.GroupGrant
		err := rows.Scan(
			&grant.ID,
			&grant.Kind,
			&grant.GroupID,
			&grant.ResourceID,
			&grant.Role,
			&grant.CreatedAt,
			&grant.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan group grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group grants: %w", err)
	}

	return grants, nil
}
