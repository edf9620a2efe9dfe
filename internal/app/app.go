package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	registry   *workflow.Registry
	httpServer *http.Server
	lastRun    atomic.Pointer[workflow.RunContext]
}

// NewApp is the constructor for the main application. It loads the pipeline
// configuration and registers the workflow modules; with no modules given
// the built-in ones are used.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...workflow.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := workflow.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All workflow modules registered.", "count", len(modules), "workflows", reg.Names())

	for name := range model.Workflows {
		if _, ok := reg.Get(name); !ok {
			logger.Warn("Configuration refers to an unknown workflow; ignoring it.", "workflow", name)
		}
	}

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		model:    model,
		registry: reg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (app *App) Registry() *workflow.Registry {
	return app.registry
}

// Model returns the loaded configuration model.
func (app *App) Model() *config.Model {
	return app.model
}

// LastRun returns the run context of the most recent Run, or nil.
func (app *App) LastRun() *workflow.RunContext {
	return app.lastRun.Load()
}
