package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/events"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/anthropic"
	"github.com/phrazzld/thinkforge-api/internal/platform/gemini"
	"github.com/phrazzld/thinkforge-api/internal/platform/openai"
	"github.com/phrazzld/thinkforge-api/internal/platform/postgres"
	"github.com/phrazzld/thinkforge-api/internal/redact"
	"github.com/phrazzld/thinkforge-api/internal/service"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/session"
)

// application holds the shared dependencies of the server so they can be
// torn down together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	jwtService      auth.JWTService
	userService     *service.UserService
	pathService     *service.PathService
	progressService *service.ProgressService
	sessions        *session.Manager
	janitor         *session.Janitor
	emitter         *events.InMemoryEventEmitter
}

// newApplication wires stores, the content generator, services and the
// session manager. The janitor is created but not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	progressStore := postgres.NewPostgresProgressStore(db, logger)
	pathStore := postgres.NewPostgresPathStore(db, logger)

	generator, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewLogHandler(logger))

	app.userService, err = service.NewUserService(
		userStore,
		progressStore,
		auth.NewBcryptVerifier(),
		service.DBTxRunner(db),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.pathService, err = service.NewPathService(pathStore, generator, app.emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create path service: %w", err)
	}

	app.progressService, err = service.NewProgressService(
		progressStore,
		pathStore,
		app.emitter,
		cfg.Analytics.Location(),
		cfg.Analytics.CacheTTL(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}
	app.emitter.RegisterHandler(app.progressService.CacheInvalidator())

	app.sessions = session.NewManager(generator, progressStore, app.emitter, logger)
	app.janitor, err = session.NewJanitor(
		app.sessions,
		cfg.Session.SweepInterval(),
		cfg.Session.IdleTimeout(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session janitor: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// newGenerator builds the content generator for the configured provider,
// wrapped with retries.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*generation.LLMGenerator, error) {
	completer, err := newCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s completer: %w", cfg.Provider, err)
	}

	templates, err := generation.LoadTemplates(cfg.FlashcardPromptPath, cfg.PathPromptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	retrying := generation.WithRetry(completer, generation.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryDelay(),
	}, logger)

	generator, err := generation.NewLLMGenerator(retrying, templates, cfg.Timeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}
	logger.Info("content generator initialized", slog.String("provider", cfg.Provider))
	return generator, nil
}

func newCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Completer, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(ctx, cfg, logger)
	case "openai":
		return openai.New(cfg, logger)
	case "anthropic":
		return anthropic.New(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	app.janitor.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases background workers and the database.
func (app *application) cleanup() {
	if app.janitor != nil {
		app.janitor.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", redact.Attr(err))
		}
	}
	app.logger.Info("application shutdown completed")
}
