package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"task-assistant/internal/api"
	"task-assistant/internal/chat"
	"task-assistant/internal/classifier"
	"task-assistant/internal/config"
	"task-assistant/internal/logging"
	"task-assistant/internal/notify"
	"task-assistant/internal/observability"
	"task-assistant/internal/repository/sqlstore"
	"task-assistant/internal/services"
	"task-assistant/internal/validation"
)

// App represents the main CLI application
type App struct {
	businessAPI api.BusinessAPI
	registry    *CommandRegistry
	out         io.Writer
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(businessAPI api.BusinessAPI) *App {
	app := &App{
		businessAPI: businessAPI,
		out:         os.Stdout,
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// WithOutput redirects command output.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// Runtime is the object graph built from one Config.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *sqlstore.Store
	Metrics *observability.Metrics
	Hub     *notify.Hub
	API     api.BusinessAPI
}

// NewRuntime opens the store and wires services, classifier, orchestrator
// and push hub. Metrics register on reg.
func NewRuntime(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Runtime, error) {
	level := cfg.Logging.Level
	if cfg.Application.Verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Format: cfg.Logging.Format})

	if err := ensureDatabaseDir(cfg); err != nil {
		return nil, err
	}

	store, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.DataSource(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	logging.Debugf("opened %s store", cfg.Database.Driver)

	cls, err := classifier.New(cfg.Classifier, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	metrics := observability.MustNewMetrics(reg)
	hub := notify.NewHub(
		notify.WithBufferSize(cfg.Notify.BufferSize),
		notify.WithWriteTimeout(cfg.Notify.WriteTimeout),
		notify.WithMetrics(metrics),
		notify.WithLogger(logger),
	)

	container := services.NewServiceContainer(store,
		services.WithLogger(logger),
		services.WithTimeouts(cfg.Database.QueryTimeout, cfg.Database.WriteTimeout),
		services.WithValidator(validation.NewTaskValidatorWith(validation.NewValidatorWithConfig(cfg))),
	)
	orchestrator := chat.New(container.Tasks, cls,
		chat.WithNotifier(hub),
		chat.WithMetrics(metrics),
		chat.WithLogger(logger),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Metrics: metrics,
		Hub:     hub,
		API:     api.NewBusinessAPI(container.Tasks, orchestrator),
	}, nil
}

// Close releases the hub and the store.
func (r *Runtime) Close() error {
	r.Hub.Close()
	return r.Store.Close()
}

// ensureDatabaseDir creates the SQLite directory when the path comes from
// Dir/Filename.
func ensureDatabaseDir(cfg *config.Config) error {
	driver := strings.ToLower(cfg.Database.Driver)
	if driver != "sqlite" && driver != "sqlite3" {
		return nil
	}
	if cfg.Database.DSN != "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Database.Dir, os.FileMode(cfg.Database.DirPermissions)); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
