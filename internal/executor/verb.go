package executor

import (
	"context"

	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// VerbInput is what a generic runner hands to a verb.
type VerbInput struct {
	Run *workflow.RunContext
}

// VerbResult is what a verb hands back. Output is nil when nothing was
// published.
type VerbResult struct {
	Output *table.Table
}

// VerbFunc is the adapter form of a workflow step.
type VerbFunc func(ctx context.Context, in VerbInput) (VerbResult, error)

// AsVerb adapts d into a VerbFunc that delegates to e.Run.
func AsVerb(e *Executor, d workflow.Descriptor) VerbFunc {
	return func(ctx context.Context, in VerbInput) (VerbResult, error) {
		out, err := e.Run(ctx, in.Run, d)
		return VerbResult{Output: out}, err
	}
}
