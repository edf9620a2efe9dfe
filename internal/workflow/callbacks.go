package workflow

import (
	"context"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/table"
)

// Callbacks receives progress notifications for workflows in a run.
// Implementations must not block and must be safe for concurrent use.
type Callbacks interface {
	OnWorkflowStart(ctx context.Context, name string)
	OnStateChange(ctx context.Context, name string, from, to State)
	OnWorkflowEnd(ctx context.Context, name string, output *table.Table, err error)
	OnStorageError(ctx context.Context, name string, err error)
}

// NoopCallbacks ignores every notification.
type NoopCallbacks struct{}

func (NoopCallbacks) OnWorkflowStart(context.Context, string)                     {}
func (NoopCallbacks) OnStateChange(context.Context, string, State, State)         {}
func (NoopCallbacks) OnWorkflowEnd(context.Context, string, *table.Table, error) {}
func (NoopCallbacks) OnStorageError(context.Context, string, error)               {}

// LogCallbacks reports progress through the context logger.
type LogCallbacks struct{}

// OnWorkflowStart logs the start of a workflow.
func (LogCallbacks) OnWorkflowStart(ctx context.Context, name string) {
	ctxlog.FromContext(ctx).Info("▶️ Starting workflow", "workflow", name)
}

// OnStateChange logs state transitions at debug level.
func (LogCallbacks) OnStateChange(ctx context.Context, name string, from, to State) {
	ctxlog.FromContext(ctx).Debug("Workflow state changed.", "workflow", name, "from", from, "to", to)
}

// OnWorkflowEnd logs the outcome of a workflow.
func (LogCallbacks) OnWorkflowEnd(ctx context.Context, name string, output *table.Table, err error) {
	logger := ctxlog.FromContext(ctx)
	switch {
	case err != nil:
		logger.Error("❌ Workflow failed", "workflow", name, "error", err)
	case output == nil:
		logger.Info("✅ Finished workflow (no output)", "workflow", name)
	default:
		logger.Info("✅ Finished workflow", "workflow", name, "rows", output.NumRows())
	}
}

// OnStorageError logs a persistence failure. The run continues.
func (LogCallbacks) OnStorageError(ctx context.Context, name string, err error) {
	ctxlog.FromContext(ctx).Warn("Workflow output was not persisted; downstream workflows will use the cached copy.", "workflow", name, "error", err)
}
