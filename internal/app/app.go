package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/buildprop/internal/ctxlog"
	"github.com/vk/buildprop/internal/engine"
	"github.com/vk/buildprop/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader *pipeline.Loader
}

// NewApp is the constructor for the main application. It returns a
// fully initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
		loader: pipeline.NewLoader(),
	}
}

// Run loads the pipeline definition, compiles it into an engine, and
// executes it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	a.logger.Debug("Pipeline loaded.", "tasks", len(model.Tasks))

	if len(model.Tasks) == 0 {
		a.logger.Warn("No tasks found in pipeline, execution not required.")
		return nil
	}

	eng, err := engine.New(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to compile pipeline: %w", err)
	}
	a.logger.Debug("Engine compiled.", "order", eng.Order())

	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
