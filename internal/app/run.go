package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/pipeline"
	"github.com/specialistvlad/stepflow/internal/runcache"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// Run executes one pipeline run: it seeds the configured inputs into a fresh
// runtime cache, runs every enabled workflow and tears the run down.
func (app *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	logger := app.logger
	logger.Debug("App.Run method started.")

	app.healthCheckServer()
	defer func() {
		err = errors.Join(err, app.closeHealthCheckServer())
	}()

	store, err := newStorage(ctx, app.model.Storage)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}
	formats, err := snapshotFormats(app.model.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to configure snapshot formats: %w", err)
	}

	rc := workflow.NewRunContext(runcache.New(), store, formats)
	if app.config.RunID != "" {
		rc.RunID = app.config.RunID
	}
	rc.Callbacks = workflow.LogCallbacks{}
	app.lastRun.Store(rc)
	defer func() {
		if cerr := rc.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to clear runtime cache: %w", cerr))
		}
	}()

	ctx = ctxlog.With(ctx, "run_id", rc.RunID)
	if err := app.seedInputs(ctx, rc); err != nil {
		return err
	}

	runner := pipeline.NewRunner(app.registry)
	for name, wf := range app.model.Workflows {
		if !wf.Enabled {
			runner.Disabled[name] = true
		}
		if wf.Retry != nil {
			runner.Policies[name] = pipeline.RetryPolicy{
				MaxAttempts:     wf.Retry.MaxAttempts,
				InitialInterval: wf.Retry.InitialInterval,
				MaxInterval:     wf.Retry.MaxInterval,
			}
		}
	}

	logger.Info("🚀 Starting run...", "run_id", rc.RunID, "formats", rc.Formats)
	runErr := runner.Run(ctx, rc)
	app.logSummary(ctx, rc)
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	logger.Info("🏁 Execution finished.", "run_id", rc.RunID, "duration", rc.Stats.TotalRuntime())
	return nil
}

// seedInputs reads each configured input file and publishes it in the cache.
func (app *App) seedInputs(ctx context.Context, rc *workflow.RunContext) error {
	logger := ctxlog.FromContext(ctx)
	for _, in := range app.model.Inputs {
		if err := app.checkInputSource(in); err != nil {
			return err
		}
		t, err := readInput(in)
		if err != nil {
			return fmt.Errorf("failed to read input %q: %w", in.Name, err)
		}
		if err := rc.Cache.Set(ctx, in.Name, t); err != nil {
			return fmt.Errorf("failed to seed input %q: %w", in.Name, err)
		}
		logger.Info("Seeded input.", "artifact", in.Name, "source_step", in.SourceStep, "rows", t.NumRows())
	}
	return nil
}

// checkInputSource rejects an input whose declared source step differs from
// the one an enabled consumer expects the artifact from.
func (app *App) checkInputSource(in *config.Input) error {
	if in.SourceStep == "" {
		return nil
	}
	for _, name := range app.registry.Names() {
		if !app.model.IsEnabled(name) {
			continue
		}
		d, _ := app.registry.Get(name)
		for _, dep := range d.DependencyList() {
			if dep.Artifact == in.Name && dep.SourceStep != in.SourceStep {
				return fmt.Errorf("input %q declares source_step %q, but workflow %q expects it from %q",
					in.Name, in.SourceStep, name, dep.SourceStep)
			}
		}
	}
	return nil
}

func readInput(in *config.Input) (*table.Table, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	columns := make([]table.Column, len(in.Columns))
	for i, col := range in.Columns {
		columns[i] = table.Column{Name: col.Name, Type: col.Type}
	}
	return table.ReadJSON(f, columns)
}

func (app *App) logSummary(ctx context.Context, rc *workflow.RunContext) {
	logger := ctxlog.FromContext(ctx)
	for _, name := range rc.Stats.Names() {
		ws, _ := rc.Stats.Workflow(name)
		logger.Info("Workflow summary.",
			"workflow", name,
			"state", ws.State,
			"attempts", ws.Attempts,
			"rows", ws.Rows,
			"storage_errors", ws.StorageErrors,
			"duration", ws.Duration,
		)
	}
}
