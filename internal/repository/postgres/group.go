package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/domain/repositories"
)

// PostgresGroupRepository implements the GroupRepository interface.
type PostgresGroupRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(config *RepositoryConfig) repositories.GroupRepository {
	return &PostgresGroupRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new group.
func (r *PostgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.Groups)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, group.ID, group.Name, group.Description, group.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("group %s: %w", group.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by id.
func (r *PostgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, created_at FROM %s WHERE id = $1
	`, r.tables.Groups)

	var group models.Group
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	return &group, nil
}

// AddMember inserts a membership row. Adding an existing member is a no-op.
func (r *PostgresGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, r.tables.GroupMembers)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row.
func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE group_id = $1 AND user_id = $2
	`, r.tables.GroupMembers)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership of %s in group %s: %w", userID, groupID, domain.ErrNotFound)
	}

	return nil
}

// IsMember reports current membership of a user in a group.
func (r *PostgresGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE group_id = $1 AND user_id = $2)
	`, r.tables.GroupMembers)

	var member bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, groupID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}

	return member, nil
}

// ListForUser retrieves all groups a user belongs to.
func (r *PostgresGroupRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	query := fmt.Sprintf(`
		SELECT g.id, g.name, g.description, g.created_at
		FROM %s g
		JOIN %s m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.name
	`, r.tables.Groups, r.tables.GroupMembers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

// ListMembers retrieves the users belonging to a group.
func (r *PostgresGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.created_at
		FROM %s u
		JOIN %s m ON m.user_id = u.id
		WHERE m.group_id = $1
		ORDER BY u.email
	`, r.tables.Users, r.tables.GroupMembers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return users, nil
}
