package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/config"
	"agora/internal/repository/postgres"
	"agora/internal/search"
	"agora/internal/service"
	serviceAuth "agora/internal/service/auth"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage the provider search index",
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the provider index from Postgres",
	Long: `Rebuild the Meilisearch provider index from the database.

Connects directly to SUPABASE_DB_URL and MEILI_URL from the environment
(or .env); the API server does not need to be running.`,
	Args: cobra.NoArgs,
	RunE: runSearchReindex,
}

func init() {
	searchCmd.AddCommand(searchReindexCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchReindex(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.MeiliURL == "" {
		return fmt.Errorf("MEILI_URL is not set")
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	providerRepo := postgres.NewProviderRepository(repoConfig)

	meili := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, cfg.TablePrefix, logger)
	defer meili.Close()

	providers := service.NewProviderService(
		postgres.NewProviderTypeRepository(repoConfig),
		providerRepo,
		postgres.NewFollowRepository(repoConfig),
		postgres.NewRPCRepository(repoConfig),
		search.NewService(meili, search.NewPgFTS(pool, tables.Providers), logger),
		serviceAuth.NewOwnerBasedAuthorizer(
			postgres.NewPostRepository(repoConfig),
			postgres.NewCommentRepository(repoConfig),
			providerRepo,
			postgres.NewPortfolioRepository(repoConfig),
		),
		logger,
	)

	n, err := providers.Reindex(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "indexed %d providers\n", n)
	return nil
}
