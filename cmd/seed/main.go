package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"agora/internal/auth"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/repository/postgres"
	"agora/internal/search"
	"agora/internal/seed"
	"agora/internal/service"
	serviceAuth "agora/internal/service/auth"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the catalogue")
	adminEmail := flag.String("admin-email", "", "Create an admin account with this email if it doesn't exist")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables, logger); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables, triggers and functions exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.RealtimeChannel, logger); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	providerTypeRepo := postgres.NewProviderTypeRepository(repoConfig)
	providerRepo := postgres.NewProviderRepository(repoConfig)
	followRepo := postgres.NewFollowRepository(repoConfig)
	rpcRepo := postgres.NewRPCRepository(repoConfig)
	postRepo := postgres.NewPostRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	portfolioRepo := postgres.NewPortfolioRepository(repoConfig)

	// Create services (writes go through validation like API requests)
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(postRepo, commentRepo, providerRepo, portfolioRepo)
	categoryService := service.NewCategoryService(categoryRepo, cache.Noop{}, logger)
	providerService := service.NewProviderService(
		providerTypeRepo, providerRepo, followRepo, rpcRepo,
		search.NewService(nil, search.NewPgFTS(pool, tables.Providers), logger),
		authorizer, logger,
	)

	catalogue, err := seed.LoadCatalogue()
	if err != nil {
		log.Fatalf("Failed to load catalogue: %v", err)
	}

	log.Println("📝 Seeding categories and provider types...")
	res, err := seed.NewSeeder(categoryService, providerService, logger).Seed(ctx, catalogue)
	if err != nil {
		log.Fatalf("Failed to seed catalogue: %v", err)
	}
	log.Printf("✅ Created %d categories and %d provider types", res.Categories, res.ProviderTypes)

	if *adminEmail != "" {
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
		id, created, err := seed.EnsureAdmin(ctx, admin, *adminEmail, os.Getenv("SEED_ADMIN_PASSWORD"))
		if err != nil {
			log.Fatalf("Failed to ensure admin account: %v", err)
		}
		if created {
			log.Printf("👤 Created admin %s (ID: %s)", *adminEmail, id)
		} else {
			log.Printf("👤 Admin %s already exists (ID: %s)", *adminEmail, id)
		}
	}

	log.Println("🎉 Seeding complete!")
}
