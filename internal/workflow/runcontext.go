package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepflow/internal/runcache"
	"github.com/specialistvlad/stepflow/internal/storage"
)

// RunContext bundles the handles shared by every workflow in one pipeline
// run. It is created when the run starts and closed when it ends; closing
// clears the runtime cache but leaves persistent storage untouched.
type RunContext struct {
	RunID     string
	Cache     runcache.Cache
	Storage   storage.Storage
	Formats   []storage.Format
	Callbacks Callbacks
	Stats     *Stats
}

// NewRunContext creates a run context with a fresh run id. An empty formats
// list falls back to storage.DefaultFormats.
func NewRunContext(cache runcache.Cache, store storage.Storage, formats []storage.Format) *RunContext {
	if len(formats) == 0 {
		formats = storage.DefaultFormats
	}
	return &RunContext{
		RunID:     uuid.NewString(),
		Cache:     cache,
		Storage:   store,
		Formats:   append([]storage.Format(nil), formats...),
		Callbacks: NoopCallbacks{},
		Stats:     NewStats(),
	}
}

// Hooks returns the configured callbacks, or NoopCallbacks when none are set.
func (rc *RunContext) Hooks() Callbacks {
	if rc.Callbacks == nil {
		return NoopCallbacks{}
	}
	return rc.Callbacks
}

// Close tears the run down by clearing the runtime cache.
func (rc *RunContext) Close(ctx context.Context) error {
	if rc.Cache == nil {
		return nil
	}
	return rc.Cache.Clear(ctx)
}
