package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/executor"
	"github.com/specialistvlad/stepflow/internal/runcache"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// RetryPolicy controls how often a failing workflow is re-executed.
type RetryPolicy struct {
	// MaxAttempts is the total number of executions, including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy runs every workflow once.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 1}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	// Attempts bound the retries, not wall-clock time.
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Runner executes the workflows of a registry in dependency order.
type Runner struct {
	Registry *workflow.Registry
	Executor *executor.Executor
	// Policies overrides DefaultRetryPolicy per workflow name.
	Policies map[string]RetryPolicy
	// Disabled workflows are left out of the plan.
	Disabled map[string]bool
}

// NewRunner creates a Runner with a fresh executor.
func NewRunner(reg *workflow.Registry) *Runner {
	return &Runner{
		Registry: reg,
		Executor: executor.New(),
		Policies: make(map[string]RetryPolicy),
		Disabled: make(map[string]bool),
	}
}

// Plan builds the execution plan for rc, treating artifacts already in its
// cache as available inputs.
func (r *Runner) Plan(ctx context.Context, rc *workflow.RunContext) (*Plan, error) {
	return BuildPlan(r.Registry, rc.Cache.Keys(ctx), func(name string) bool { return !r.Disabled[name] })
}

// Run plans and executes every enabled workflow once, in order.
//
// A workflow error stops the run and is returned wrapped with the workflow
// name. Storage write failures do not stop the run: later workflows read the
// cached output, and all storage errors are returned joined once every
// workflow has finished.
func (r *Runner) Run(ctx context.Context, rc *workflow.RunContext) error {
	ctx = ctxlog.With(ctx, "run_id", rc.RunID)
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	defer func() { rc.Stats.SetTotalRuntime(time.Since(start)) }()

	plan, err := r.Plan(ctx, rc)
	if err != nil {
		return fmt.Errorf("failed to plan pipeline: %w", err)
	}
	logger.Info("▶️ Starting pipeline", "workflows", len(plan.Steps), "order", plan.Names())

	var storageErrs []error
	for _, d := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := r.runWorkflow(ctx, rc, d)
		var swe *storage.StorageWriteError
		switch {
		case err == nil:
		case errors.As(err, &swe):
			storageErrs = append(storageErrs, err)
		default:
			logger.Error("❌ Pipeline stopped", "workflow", d.Name, "error", err)
			return fmt.Errorf("workflow %q failed: %w", d.Name, err)
		}
	}

	logger.Info("✅ Finished pipeline", "duration", time.Since(start), "storage_errors", len(storageErrs))
	return errors.Join(storageErrs...)
}

// runWorkflow executes one workflow under its retry policy.
func (r *Runner) runWorkflow(ctx context.Context, rc *workflow.RunContext, d workflow.Descriptor) (*table.Table, error) {
	policy, ok := r.Policies[d.Name]
	if !ok {
		policy = DefaultRetryPolicy
	}

	start := time.Now()
	var out *table.Table
	var storageErr error
	operation := func() error {
		rc.Stats.Update(d.Name, func(ws *workflow.WorkflowStats) { ws.Attempts++ })
		var err error
		out, err = r.Executor.Run(ctx, rc, d)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		var swe *storage.StorageWriteError
		if errors.As(err, &swe) {
			// Published already; re-running would only repeat the write.
			storageErr = err
			return nil
		}
		ctxlog.FromContext(ctx).Warn("Workflow attempt failed.", "workflow", d.Name, "error", err)
		return err
	}

	err := backoff.Retry(operation, policy.backOff(ctx))
	rc.Stats.Update(d.Name, func(ws *workflow.WorkflowStats) { ws.Duration = time.Since(start) })
	if err != nil {
		return nil, err
	}
	return out, storageErr
}

// isPermanent reports errors that re-execution cannot fix.
func isPermanent(err error) bool {
	var missing *runcache.MissingArtifactError
	var schemaErr *table.SchemaError
	return errors.As(err, &missing) ||
		errors.As(err, &schemaErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
