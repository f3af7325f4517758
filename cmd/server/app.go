package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/focus-api/internal/config"
	"github.com/phrazzld/focus-api/internal/domain/focus"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/phrazzld/focus-api/internal/metrics"
	"github.com/phrazzld/focus-api/internal/platform/cache"
	"github.com/phrazzld/focus-api/internal/platform/gemini"
	"github.com/phrazzld/focus-api/internal/platform/postgres"
	"github.com/phrazzld/focus-api/internal/platform/sqlite"
	"github.com/phrazzld/focus-api/internal/service"
	"github.com/phrazzld/focus-api/internal/service/auth"
	"github.com/phrazzld/focus-api/internal/session"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/phrazzld/focus-api/internal/task"
	"github.com/redis/go-redis/v9"
)

const dbPingTimeout = 5 * time.Second

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB       // nil without a database URL
	redis *redis.Client // nil without a cache address
	local *sqlite.LocalStore

	tasks    *task.TaskRunner
	emitter  *events.InMemoryEventEmitter
	metrics  *metrics.Metrics
	tokens   auth.JWTService
	accounts *auth.Service // nil without a database

	registry *service.WorkspaceRegistry
	rules    focus.Service
	planner  *service.PlannerService
	shop     *service.ShopService
	prefs    *service.PreferencesService
	mentor   *service.MentorService
	progress *service.ProgressService
}

// newApplication connects storage and builds every service. On error,
// whatever was already opened is closed again.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	app := &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Server.Timezone, err)
	}
	app.rules = focus.NewServiceWithParams(focus.NewParams(focus.ParamsConfig{Location: loc}))

	app.metrics = metrics.New()
	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(app.metrics)
	app.emitter.RegisterHandler(events.HandlerFunc(auditEvent(logger)))

	app.local, err = sqlite.Open(cfg.Local.Path, cfg.Local.StorageKey, logger)
	if err != nil {
		return nil, err
	}

	remote, err := app.connectRemote(ctx)
	if err != nil {
		return nil, err
	}

	app.tokens, err = auth.NewJWTService(cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	if app.db != nil {
		app.accounts = auth.NewService(postgres.NewAccountStore(app.db, logger),
			auth.NewBcryptHasher(cfg.Auth.BCryptCost), app.tokens, logger)
	}

	app.tasks = task.NewTaskRunner(task.TaskRunnerConfig{
		// One worker keeps snapshot writes in mutation order.
		WorkerCount: 1,
		QueueSize:   cfg.Task.QueueSize,
		TaskTimeout: 10 * time.Second,
	}, logger)
	app.tasks.Start()

	gateway := service.NewPersistenceGateway(remote, app.local, app.tasks, app.emitter, logger)
	app.registry = service.NewWorkspaceRegistry(service.RegistryConfig{
		Session: session.Config{DefaultMinutes: cfg.Session.DefaultMinutes},
		Rules:   app.rules,
		Emitter: app.emitter,
	}, gateway, logger)

	gen, err := app.newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	app.planner = service.NewPlannerService(gen, logger)
	app.mentor = service.NewMentorService(gen, logger)
	app.shop = service.NewShopService(app.emitter, logger)
	app.prefs = service.NewPreferencesService()
	app.progress = service.NewProgressService(app.rules)

	return app, nil
}

// connectRemote opens the account database and, when configured, puts the
// Redis cache in front of it. It returns nil when no database is configured.
func (app *application) connectRemote(ctx context.Context) (store.UserStatsStore, error) {
	cfg := app.config
	if cfg.Database.URL == "" {
		app.logger.Info("no database configured, accounts are disabled")
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.db = db

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	var remote store.UserStatsStore = postgres.NewPostgresStatsStore(db, app.logger)
	if cfg.Cache.RedisAddr == "" {
		return remote, nil
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	client, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		TTL:      ttl,
	})
	if err != nil {
		app.logger.Warn("cache unavailable, continuing without it", slog.String("error", err.Error()))
		return remote, nil
	}
	app.redis = client
	return cache.NewStatsCache(remote, client, ttl, app.logger), nil
}

// newGenerator picks Gemini when an API key is configured and the offline
// generator otherwise. Either way callers never see a generation error.
func (app *application) newGenerator(ctx context.Context) (generation.Generator, error) {
	cfg := app.config.LLM
	if cfg.GeminiAPIKey == "" {
		app.logger.Info("no Gemini API key, using offline tips")
		return generation.WithFallback(generation.Static{}, app.logger), nil
	}

	gen, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.ModelName,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini generator: %w", err)
	}
	return generation.WithFallback(gen, app.logger), nil
}

// auditEvent logs every emitted event at debug level.
func auditEvent(logger *slog.Logger) func(context.Context, *events.Event) error {
	log := logger.With(slog.String("component", "audit"))
	return func(ctx context.Context, ev *events.Event) error {
		log.DebugContext(ctx, "event",
			slog.String("type", ev.Type),
			slog.String("identity", ev.Identity),
			slog.String("event_id", ev.ID.String()))
		return nil
	}
}

// tokenValidator returns what the auth middleware checks bearer tokens with.
func (app *application) tokenValidator() jwtValidator {
	return jwtValidator{tokens: app.tokens}
}

// jwtValidator adapts auth.JWTService to the middleware's TokenValidator.
type jwtValidator struct {
	tokens auth.JWTService
}

func (v jwtValidator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return v.tokens.ValidateToken(ctx, token)
}

// cleanup stops the sessions, flushes queued saves and closes storage.
func (app *application) cleanup() {
	if app.registry != nil {
		app.registry.Close()
	}
	if app.tasks != nil {
		app.tasks.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close cache", slog.String("error", err.Error()))
		}
	}
	if app.local != nil {
		if err := app.local.Close(); err != nil {
			app.logger.Error("failed to close local store", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

// runMigrations applies a goose command to the account database.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("migrate needs a database URL (FOCUS_DATABASE_URL)")
	}
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, command, logger)
}
