package setup

import (
	"context"
	"fmt"
	"log/slog"

	"repo-browser/app"
	"repo-browser/config"
	"repo-browser/database"
	"repo-browser/fetch"
	"repo-browser/githubapi"
	"repo-browser/models"
	"repo-browser/services"
	"repo-browser/session"
	"repo-browser/warmup"

	"github.com/gofiber/fiber/v2"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitApp wires the application. The returned worker is nil unless the
// ttl cache policy is enabled; it is not started yet.
func InitApp(ctx context.Context, db *database.DB, logger *slog.Logger) (*app.App, *warmup.Worker, error) {
	cfg := config.AppConfig

	repo := database.NewRepository(db)

	sessionStore := session.NewStore(db.DB)
	sessionStore.StartCleanupRoutine(ctx)
	logger.Info("session cleanup routine started")

	authService := services.NewAuthService(repo, sessionStore)

	source, err := githubapi.NewClient(ctx, cfg.GitHubToken, cfg.GitHubAPIURL, cfg.FetchTimeout)
	if err != nil {
		return nil, nil, err
	}
	repositoryService := services.NewRepositoryService(source, cfg.SearchPerPage)
	logger.Info("repository source configured", "github_api_url", cfg.GitHubAPIURL, "authenticated", cfg.GitHubToken != "")

	cache, err := fetch.NewCache(cfg.CachePolicy, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("cache policy: %w", err)
	}
	fetcher := fetch.NewClient(cfg.APIBaseURL,
		fetch.WithCache(cache),
		fetch.WithLogger(logger),
	)
	logger.Info("fetch client configured", "api_base_url", cfg.APIBaseURL, "cache_policy", cfg.CachePolicy)

	var worker *warmup.Worker
	if cfg.CachePolicy == "ttl" {
		queries := make([]string, 0, len(models.HomeLanguages))
		for _, language := range models.HomeLanguages {
			queries = append(queries, models.LanguageQuery(language))
		}
		worker = warmup.NewWorker(fetcher, queries, cfg.CacheTTL, logger)
	}

	application := app.New(authService, repositoryService, sessionStore, fetcher, logger, app.Options{
		FetchTimeout:     cfg.FetchTimeout,
		FetchConcurrency: cfg.FetchConcurrency,
		SecureCookies:    cfg.Env == "production",
	})
	logger.Info("application initialized with dependency injection")

	return application, worker, nil
}

// StartWorkerOnListen starts the warmup worker once the server accepts
// connections, since the worker prefetches through our own API.
func StartWorkerOnListen(app *fiber.App, worker *warmup.Worker) {
	if worker == nil {
		return
	}
	app.Hooks().OnListen(func(fiber.ListenData) error {
		worker.Start()
		return nil
	})
}

// Shutdown performs graceful shutdown of all services
func Shutdown(worker *warmup.Worker, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if worker != nil {
		worker.Stop()
		logger.Info("warmup worker stopped")
	}

	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
