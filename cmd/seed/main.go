package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"playbook/internal/config"
	"playbook/internal/domain"
	"playbook/internal/domain/models"
	"playbook/internal/repository/postgres"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.CreateSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	if err := seedDemoData(ctx, repoConfig); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// seedDemoData creates two coaches, a shared staff group and a handful of
// planning documents with grants, enough to click through every tab.
func seedDemoData(ctx context.Context, repoConfig *postgres.RepositoryConfig) error {
	users := postgres.NewUserRepository(repoConfig)
	groups := postgres.NewGroupRepository(repoConfig)
	resources := postgres.NewResourceRepository(repoConfig)
	userGrants := postgres.NewUserGrantRepository(repoConfig)
	groupGrants := postgres.NewGroupGrantRepository(repoConfig)

	now := time.Now()

	headCoach := &models.User{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Email:     "head.coach@example.com",
		CreatedAt: now,
	}
	assistant := &models.User{
		ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Email:     "assistant.coach@example.com",
		CreatedAt: now,
	}
	for _, u := range []*models.User{headCoach, assistant} {
		if err := users.Ensure(ctx, u); err != nil {
			return fmt.Errorf("ensure user %s: %w", u.Email, err)
		}
		log.Printf("✅ User ready: %s", u.Email)
	}

	staff := &models.Group{
		ID:          uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Name:        "Coaching staff",
		Description: "Everyone on the bench",
		CreatedAt:   now,
	}
	// Reruns find the group already present.
	if err := groups.Create(ctx, staff); err != nil && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("create group: %w", err)
	}
	for _, u := range []*models.User{headCoach, assistant} {
		if err := groups.AddMember(ctx, staff.ID, u.ID); err != nil {
			return fmt.Errorf("add member %s: %w", u.Email, err)
		}
	}
	log.Printf("✅ Group ready: %s (2 members)", staff.Name)

	seeds := []struct {
		kind      models.ResourceKind
		name      string
		desc      string
		stepCount int
		content   string
	}{
		{models.KindSession, "Tuesday conditioning", "Interval work on the track", 4, `{"steps":["warm up","400m repeats","core circuit","cool down"]}`},
		{models.KindPractice, "Passing under pressure", "Small-sided possession drills", 3, `{"drills":["rondo 5v2","transition game","finishing"]}`},
		{models.KindGameTactic, "High press vs back three", "Trigger on the first pass wide", 2, `{"phases":["press trigger","recovery shape"]}`},
	}

	for i, s := range seeds {
		resource := &models.Resource{
			ID:          uuid.New(),
			Kind:        s.kind,
			OwnerID:     headCoach.ID,
			Name:        s.name,
			Description: s.desc,
			StepCount:   s.stepCount,
			Content:     json.RawMessage(s.content),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := resources.Create(ctx, resource); err != nil {
			return fmt.Errorf("create resource %q: %w", s.name, err)
		}
		log.Printf("✅ Created %s %d/%d: %s", s.kind, i+1, len(seeds), s.name)

		// First document shared directly, the rest through the group.
		if i == 0 {
			grant := &models.UserGrant{
				ID:         uuid.New(),
				Kind:       s.kind,
				UserID:     assistant.ID,
				ResourceID: resource.ID,
				Role:       models.RoleEditor,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := userGrants.Upsert(ctx, grant); err != nil {
				return fmt.Errorf("grant user access: %w", err)
			}
		} else {
			grant := &models.GroupGrant{
				ID:         uuid.New(),
				Kind:       s.kind,
				GroupID:    staff.ID,
				ResourceID: resource.ID,
				Role:       models.RoleViewer,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := groupGrants.Upsert(ctx, grant); err != nil {
				return fmt.Errorf("grant group access: %w", err)
			}
		}
	}

	return nil
}
