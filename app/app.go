package app

import (
	"log/slog"
	"time"

	"repo-browser/fetch"
	"repo-browser/services"
	"repo-browser/session"
	"repo-browser/validator"
)

// Options tunes how pages read from the API
type Options struct {
	FetchTimeout     time.Duration
	FetchConcurrency int
	SecureCookies    bool
}

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	AuthService       *services.AuthService
	RepositoryService *services.RepositoryService
	SessionStore      *session.Store
	Fetcher           fetch.Fetcher
	Validator         *validator.Validator
	Logger            *slog.Logger
	Options           Options
}

// New creates a new App instance with all dependencies
func New(
	authService *services.AuthService,
	repositoryService *services.RepositoryService,
	sessionStore *session.Store,
	fetcher fetch.Fetcher,
	logger *slog.Logger,
	opts Options,
) *App {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.FetchConcurrency < 1 {
		opts.FetchConcurrency = 1
	}

	return &App{
		AuthService:       authService,
		RepositoryService: repositoryService,
		SessionStore:      sessionStore,
		Fetcher:           fetcher,
		Validator:         validator.New(),
		Logger:            logger,
		Options:           opts,
	}
}
