package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"playbook/internal/auth"
	"playbook/internal/config"
	"playbook/internal/handler"
	"playbook/internal/kinds"
	"playbook/internal/middleware"
	"playbook/internal/repository/postgres"
	"playbook/internal/service/access"
	"playbook/internal/service/groups"
	"playbook/internal/service/planning"
	"playbook/internal/service/sharing"
	"playbook/internal/service/users"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	resourceRepo := postgres.NewResourceRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	groupRepo := postgres.NewGroupRepository(repoConfig)
	userGrantRepo := postgres.NewUserGrantRepository(repoConfig)
	groupGrantRepo := postgres.NewGroupGrantRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load the kind catalog
	registry, err := kinds.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load kind catalog: %v", err)
	}

	// Create services
	userService := users.NewService(userRepo, logger)
	groupService := groups.NewService(groupRepo, userRepo, logger)
	resolver := access.NewResolver(resourceRepo, userGrantRepo, groupGrantRepo, groupRepo)
	sharingService := sharing.NewService(resourceRepo, userRepo, groupRepo, userGrantRepo, groupGrantRepo, txManager, logger)
	planningService := planning.NewService(resourceRepo, userGrantRepo, groupGrantRepo, resolver, sharingService, txManager, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// One planning and one sharing surface per catalog kind
	for _, kind := range registry.All() {
		handler.NewPlanningHandler(planningService, kind, logger).Register(mux)
		handler.NewSharingHandler(sharingService, kind, logger).Register(mux)
	}

	handler.NewGroupHandler(groupService, logger).Register(mux)
	handler.NewUserHandler(userService, logger).Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.Auth(verifier, userService, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
