package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agora/internal/auth"
	"agora/internal/badges"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/handler"
	"agora/internal/middleware"
	"agora/internal/realtime"
	"agora/internal/repository/postgres"
	"agora/internal/search"
	"agora/internal/service"
	serviceAuth "agora/internal/service/auth"
	"agora/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg, maxLogFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	profileRepo := postgres.NewProfileRepository(repoConfig)
	followRepo := postgres.NewFollowRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	postRepo := postgres.NewPostRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	voteRepo := postgres.NewVoteRepository(repoConfig)
	providerTypeRepo := postgres.NewProviderTypeRepository(repoConfig)
	providerRepo := postgres.NewProviderRepository(repoConfig)
	portfolioRepo := postgres.NewPortfolioRepository(repoConfig)
	rpcRepo := postgres.NewRPCRepository(repoConfig)
	adminRepo := postgres.NewAdminRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Cache: Redis when configured, otherwise every read goes to the database
	var readCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.TablePrefix, cfg.CacheTTL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		readCache = redisCache
	} else {
		logger.Warn("REDIS_URL not set, caching disabled")
	}

	// Search: Meilisearch when configured, Postgres full-text search as fallback
	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, cfg.TablePrefix, logger)
		defer meili.Close()
	}
	providerSearch := search.NewService(meili, search.NewPgFTS(pool, tables.Providers), logger)

	// Media storage
	var media service.MediaStore
	if cfg.StorageEndpoint != "" {
		store, err := storage.New(cfg, logger)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}
		if err := store.EnsureBuckets(ctx); err != nil {
			logger.Error("bucket setup failed, uploads may fail", "error", err)
		}
		media = store
	} else {
		logger.Warn("STORAGE_ENDPOINT not set, uploads disabled")
	}

	badgeRegistry, err := badges.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load badge catalogue: %v", err)
	}

	// Realtime: LISTEN on the change channel and fan out to subscribers
	hub := realtime.NewHub(realtime.DefaultBuffer, logger)
	defer hub.Close()
	listener := realtime.NewListener(cfg.SupabaseDBURL, cfg.RealtimeChannel, cfg.TablePrefix, hub, logger)
	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("realtime listener stopped", "error", err)
		}
	}()

	invalidator, err := service.StartCacheInvalidator(hub, readCache, logger)
	if err != nil {
		log.Fatalf("Failed to start cache invalidation: %v", err)
	}
	defer invalidator.Close()

	// Create services
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(postRepo, commentRepo, providerRepo, portfolioRepo)
	userAdmin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

	postService := service.NewPostService(postRepo, voteRepo, txManager, authorizer, logger)
	commentService := service.NewCommentService(commentRepo, postRepo, voteRepo, txManager, authorizer, logger)
	categoryService := service.NewCategoryService(categoryRepo, readCache, logger)
	profileService := service.NewProfileService(profileRepo, followRepo, rpcRepo, postRepo, portfolioRepo, badgeRegistry, readCache, media, logger)
	providerService := service.NewProviderService(providerTypeRepo, providerRepo, followRepo, rpcRepo, providerSearch, authorizer, logger)
	portfolioService := service.NewPortfolioService(portfolioRepo, providerRepo, rpcRepo, authorizer, media, logger)
	adminService := service.NewAdminService(adminRepo, profileRepo, userAdmin, logger)

	// Create handlers
	healthHandler := handler.NewHealthHandler(pool.Ping)
	postHandler := handler.NewPostHandler(postService, commentService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	providerHandler := handler.NewProviderHandler(providerService, logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	realtimeHandler := handler.NewRealtimeHandler(hub, nil, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	authed := middleware.RequireAuth
	admin := middleware.RequireAdmin

	// Health check
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Category routes
	mux.HandleFunc("GET /api/categories", categoryHandler.ListCategories)
	mux.HandleFunc("GET /api/categories/tree", categoryHandler.GetTree)

	// Post routes
	mux.HandleFunc("GET /api/posts", postHandler.ListPosts)
	mux.HandleFunc("POST /api/posts", authed(postHandler.CreatePost))
	mux.HandleFunc("GET /api/posts/{id}", postHandler.GetPost)
	mux.HandleFunc("PATCH /api/posts/{id}", authed(postHandler.UpdatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", authed(postHandler.DeletePost))
	mux.HandleFunc("PUT /api/posts/{id}/vote", authed(postHandler.VotePost))
	mux.HandleFunc("GET /api/posts/{id}/comments", postHandler.GetThread)
	mux.HandleFunc("POST /api/posts/{id}/comments", authed(postHandler.CreateComment))

	// Comment routes
	mux.HandleFunc("DELETE /api/comments/{id}", authed(commentHandler.DeleteComment))
	mux.HandleFunc("PUT /api/comments/{id}/vote", authed(commentHandler.VoteComment))

	// Profile routes ("me" routes must not be shadowed by {id})
	mux.HandleFunc("PATCH /api/profiles/me", authed(profileHandler.UpdateMe))
	mux.HandleFunc("POST /api/profiles/me/avatar", authed(profileHandler.UploadAvatar))
	mux.HandleFunc("GET /api/profiles/{id}", profileHandler.GetProfile)
	mux.HandleFunc("GET /api/profiles/{id}/page", profileHandler.GetProfilePage)
	mux.HandleFunc("GET /api/profiles/{id}/badges", profileHandler.GetBadges)
	mux.HandleFunc("PUT /api/profiles/{id}/follow", authed(profileHandler.Follow))
	mux.HandleFunc("DELETE /api/profiles/{id}/follow", authed(profileHandler.Unfollow))

	// Provider directory routes
	mux.HandleFunc("GET /api/provider-types", providerHandler.ListTypes)
	mux.HandleFunc("GET /api/providers", providerHandler.SearchProviders)
	mux.HandleFunc("POST /api/providers", authed(providerHandler.CreateProvider))
	mux.HandleFunc("GET /api/providers/{id}", providerHandler.GetProvider)
	mux.HandleFunc("PATCH /api/providers/{id}", authed(providerHandler.UpdateProvider))
	mux.HandleFunc("PUT /api/providers/{id}/follow", authed(providerHandler.Follow))
	mux.HandleFunc("DELETE /api/providers/{id}/follow", authed(providerHandler.Unfollow))

	// Portfolio routes
	mux.HandleFunc("GET /api/portfolios", portfolioHandler.ListPortfolios)
	mux.HandleFunc("POST /api/portfolios", authed(portfolioHandler.CreatePortfolio))
	mux.HandleFunc("GET /api/portfolios/{id}", portfolioHandler.GetPortfolio)
	mux.HandleFunc("PATCH /api/portfolios/{id}", authed(portfolioHandler.UpdatePortfolio))
	mux.HandleFunc("DELETE /api/portfolios/{id}", authed(portfolioHandler.DeletePortfolio))
	mux.HandleFunc("POST /api/portfolios/{id}/media", authed(portfolioHandler.AddMedia))
	mux.HandleFunc("PUT /api/portfolios/{id}/collect", authed(portfolioHandler.Collect))
	mux.HandleFunc("DELETE /api/portfolios/{id}/collect", authed(portfolioHandler.Uncollect))

	// Realtime routes
	mux.HandleFunc("GET /api/realtime", realtimeHandler.WebSocket)
	mux.HandleFunc("GET /api/realtime/stream", realtimeHandler.Stream)

	// Admin routes
	mux.HandleFunc("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.HandleFunc("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.HandleFunc("POST /api/admin/users/{id}/ban", admin(adminHandler.BanUser))
	mux.HandleFunc("POST /api/admin/users/{id}/unban", admin(adminHandler.UnbanUser))
	mux.HandleFunc("POST /api/admin/categories", admin(categoryHandler.CreateCategory))
	mux.HandleFunc("PATCH /api/admin/categories/{id}", admin(categoryHandler.UpdateCategory))
	mux.HandleFunc("DELETE /api/admin/categories/{id}", admin(categoryHandler.DeleteCategory))
	mux.HandleFunc("POST /api/admin/provider-types", admin(providerHandler.CreateType))
	mux.HandleFunc("PUT /api/admin/providers/{id}/verified", admin(providerHandler.SetVerified))
	mux.HandleFunc("DELETE /api/admin/posts/{id}", admin(postHandler.DeletePost))
	mux.HandleFunc("DELETE /api/admin/comments/{id}", admin(commentHandler.DeleteComment))

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Auth → RejectBanned → Routes
	handler = middleware.RejectBanned(profileService, logger)(handler)
	handler = middleware.AuthMiddleware(jwtVerifier, logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams and websockets
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; closing
	// the hub ends their subscriptions.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
