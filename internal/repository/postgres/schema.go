package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSchema creates all tables and indexes if they do not exist. The
// unique indexes on the grant tables are what upholds "at most one live grant
// row per (kind, target, resource)" under concurrent writers.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Groups),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				group_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				PRIMARY KEY (group_id, user_id)
			)
		`, tables.GroupMembers, tables.Groups, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				kind TEXT NOT NULL,
				owner_id UUID NOT NULL REFERENCES %s(id),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				step_count INT NOT NULL DEFAULT 0,
				content JSONB,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Resources, tables.Users),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (kind, owner_id)
		`, tables.Resources, tables.Resources),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				kind TEXT NOT NULL,
				user_id UUID NOT NULL REFERENCES %s(id),
				resource_id UUID NOT NULL,
				role TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (kind, user_id, resource_id)
			)
		`, tables.UserGrants, tables.Users),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_resource_idx ON %s (kind, resource_id)
		`, tables.UserGrants, tables.UserGrants),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				kind TEXT NOT NULL,
				group_id UUID NOT NULL REFERENCES %s(id),
				resource_id UUID NOT NULL,
				role TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (kind, group_id, resource_id)
			)
		`, tables.GroupGrants, tables.Groups),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_resource_idx ON %s (kind, resource_id)
		`, tables.GroupGrants, tables.GroupGrants),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// DropSchema drops all tables. Used by the seed tool for fresh starts; the
// tool refuses to run this in prod.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	names := []string{
		tables.UserGrants,
		tables.GroupGrants,
		tables.GroupMembers,
		tables.Resources,
		tables.Groups,
		tables.Users,
	}

	for _, name := range names {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}

	return nil
}
