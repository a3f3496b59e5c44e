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

// PostgresResourceRepository implements the ResourceRepository interface.
type PostgresResourceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(config *RepositoryConfig) repositories.ResourceRepository {
	return &PostgresResourceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new planning resource.
func (r *PostgresResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, owner_id, name, description, step_count, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		resource.ID,
		resource.Kind,
		resource.OwnerID,
		resource.Name,
		resource.Description,
		resource.StepCount,
		resource.Content,
		resource.CreatedAt,
		resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", resource.Kind, err)
	}

	return nil
}

// GetByID retrieves a resource by kind and id.
func (r *PostgresResourceRepository) GetByID(ctx context.Context, kind models.ResourceKind, id uuid.UUID) (*models.Resource, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, owner_id, name, description, step_count, content, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND id = $2
	`, r.tables.Resources)

	var resource models.Resource
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, kind, id).Scan(
		&resource.ID,
		&resource.Kind,
		&resource.OwnerID,
		&resource.Name,
		&resource.Description,
		&resource.StepCount,
		&resource.Content,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}

	return &resource, nil
}

// ListByOwner retrieves all resources of one kind owned by a user.
func (r *PostgresResourceRepository) ListByOwner(ctx context.Context, kind models.ResourceKind, ownerID uuid.UUID) ([]models.Resource, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, owner_id, name, description, step_count, content, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND owner_id = $2
		ORDER BY updated_at DESC
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %ss by owner: %w", kind, err)
	}
	defer rows.Close()

	return scanResources(rows, kind)
}

// GetManyByIDs retrieves the still-existing resources among ids.
func (r *PostgresResourceRepository) GetManyByIDs(ctx context.Context, kind models.ResourceKind, ids []uuid.UUID) ([]models.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, kind, owner_id, name, description, step_count, content, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND id = ANY($2)
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("get %ss by ids: %w", kind, err)
	}
	defer rows.Close()

	return scanResources(rows, kind)
}

// Update overwrites the mutable fields of a resource.
func (r *PostgresResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, step_count = $3, content = $4, updated_at = $5
		WHERE kind = $6 AND id = $7
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		resource.Name,
		resource.Description,
		resource.StepCount,
		resource.Content,
		resource.UpdatedAt,
		resource.Kind,
		resource.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", resource.Kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", resource.Kind, resource.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a resource row.
func (r *PostgresResourceRepository) Delete(ctx context.Context, kind models.ResourceKind, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = $1 AND id = $2`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}

	return nil
}

func scanResources(rows pgx.Rows, kind models.ResourceKind) ([]models.Resource, error) {
	var resources []models.Resource
	for rows.Next() {
		var resource models.Resource
		err := rows.Scan(
			&resource.ID,
			&resource.Kind,
			&resource.OwnerID,
			&resource.Name,
			&resource.Description,
			&resource.StepCount,
			&resource.Content,
			&resource.CreatedAt,
			&resource.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %ss: %w", kind, err)
	}

	return resources, nil
}
