package executor

import (
	"context"
	"errors"
	"reflect"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// Executor runs workflow steps against a run context.
type Executor struct{}

// New creates an Executor.
func New() *Executor {
	return &Executor{}
}

// Run executes d once against rc and returns its output, or nil when the
// transformation produced nothing.
func (e *Executor) Run(ctx context.Context, rc *workflow.RunContext, d workflow.Descriptor) (*table.Table, error) {
	ctx = ctxlog.With(ctx, "workflow", d.Name, "run_id", rc.RunID)
	logger := ctxlog.FromContext(ctx)
	hooks := rc.Hooks()

	st := &stepState{ctx: ctx, rc: rc, name: d.Name, hooks: hooks, current: workflow.Pending}
	hooks.OnWorkflowStart(ctx, d.Name)

	out, err := e.run(ctx, rc, d, st)
	if err != nil {
		var swe *storage.StorageWriteError
		if errors.As(err, &swe) {
			// The output is already visible in the cache.
			hooks.OnStorageError(ctx, d.Name, err)
			rc.Stats.Update(d.Name, func(ws *workflow.WorkflowStats) { ws.StorageErrors++ })
			st.enter(workflow.Done)
		} else {
			st.enter(workflow.Failed)
		}
	} else {
		st.enter(workflow.Done)
	}

	hooks.OnWorkflowEnd(ctx, d.Name, out, err)
	logger.Debug("Workflow execution returned.", "state", st.current, "error", err)
	return out, err
}

func (e *Executor) run(ctx context.Context, rc *workflow.RunContext, d workflow.Descriptor, st *stepState) (*table.Table, error) {
	logger := ctxlog.FromContext(ctx)

	// 1. Resolve inputs.
	st.enter(workflow.ResolvingInputs)
	inputs, err := e.resolveInputs(ctx, rc, d)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Transform.
	st.enter(workflow.Transforming)
	out, err := d.Transform(inputs)
	if err != nil {
		return nil, err
	}

	// 3. Nothing to publish.
	if out == nil {
		logger.Debug("Transformation returned no output; nothing to publish.")
		return nil, nil
	}

	if len(d.Schema) > 0 {
		err = out.Conforms(d.Schema)
	} else {
		err = out.Validate()
	}
	if err != nil {
		return nil, err
	}

	// Cancellation discards the output before anything becomes visible.
	if err := ctx.Err(); err != nil {
		logger.Debug("Run cancelled; discarding output.", "rows", out.NumRows())
		return nil, err
	}

	// 4. Publish.
	st.enter(workflow.Publishing)
	if err := rc.Cache.Set(ctx, d.Name, out); err != nil {
		return nil, err
	}
	rc.Stats.Update(d.Name, func(ws *workflow.WorkflowStats) {
		ws.Published = true
		ws.Rows = out.NumRows()
	})
	logger.Debug("Output published to runtime cache.", "rows", out.NumRows())

	if !hasStorage(rc.Storage) {
		logger.Debug("No persistent storage configured; skipping write.")
		return out, nil
	}
	if err := rc.Storage.Write(ctx, out, d.Name, rc.Formats); err != nil {
		var swe *storage.StorageWriteError
		if !errors.As(err, &swe) {
			err = storage.WriteError(d.Name, "", err)
		}
		return out, err
	}
	logger.Debug("Output persisted.", "formats", rc.Formats)
	return out, nil
}

// hasStorage reports whether s is a usable backend. A nil pointer stored in
// the interface counts as no backend.
func hasStorage(s storage.Storage) bool {
	if s == nil {
		return false
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return !v.IsNil()
	default:
		return true
	}
}

// resolveInputs fetches every declared dependency from the cache, in
// declaration order.
func (e *Executor) resolveInputs(ctx context.Context, rc *workflow.RunContext, d workflow.Descriptor) (*workflow.Inputs, error) {
	inputs := workflow.NewInputs()
	for _, dep := range d.DependencyList() {
		t, err := rc.Cache.Get(ctx, dep.Artifact)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Resolved input.", "dependency", dep.String(), "rows", t.NumRows())
		inputs.Add(dep.Artifact, t)
	}
	return inputs, nil
}

// stepState tracks the current state of one execution and reports
// transitions.
type stepState struct {
	ctx     context.Context
	rc      *workflow.RunContext
	name    string
	hooks   workflow.Callbacks
	current workflow.State
}

func (s *stepState) enter(next workflow.State) {
	if s.current == next {
		return
	}
	prev := s.current
	s.current = next
	s.hooks.OnStateChange(s.ctx, s.name, prev, next)
	if next.Terminal() {
		s.rc.Stats.Update(s.name, func(ws *workflow.WorkflowStats) { ws.State = next })
	}
}
