package workflow

import (
	"context"
	"testing"

	"github.com/specialistvlad/stepflow/internal/runcache"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "b_step", Transform: passthrough})
	r.Register(Descriptor{Name: "a_step", Transform: passthrough})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a_step", "b_step"}, r.Names())

	d, ok := r.Get("a_step")
	require.True(t, ok)
	assert.Equal(t, "a_step", d.Name)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_PanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "dup", Transform: passthrough})
	assert.Panics(t, func() {
		r.Register(Descriptor{Name: "dup", Transform: passthrough})
	})
}

func TestRegistry_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry().Register(Descriptor{Name: "no_transform"})
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "resolving_inputs", ResolvingInputs.String())
	assert.Equal(t, "transforming", Transforming.String())
	assert.Equal(t, "publishing", Publishing.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, Done.Terminal())
	assert.True(t, Failed.Terminal())
	assert.False(t, Publishing.Terminal())
}

func TestRunContext(t *testing.T) {
	ctx := context.Background()
	cache := runcache.New()
	rc := NewRunContext(cache, nil, nil)

	assert.NotEmpty(t, rc.RunID)
	assert.Equal(t, storage.DefaultFormats, rc.Formats)
	assert.IsType(t, NoopCallbacks{}, rc.Hooks())

	other := NewRunContext(cache, nil, []storage.Format{storage.JSON})
	assert.NotEqual(t, rc.RunID, other.RunID)
	assert.Equal(t, []storage.Format{storage.JSON}, other.Formats)

	require.NoError(t, cache.Set(ctx, "nodes", table.MustNew(table.Column{Name: "id", Type: cty.Number})))
	require.NoError(t, rc.Close(ctx))
	assert.Empty(t, cache.Keys(ctx))

	rc.Callbacks = nil
	assert.IsType(t, NoopCallbacks{}, rc.Hooks())
}

func TestStats(t *testing.T) {
	s := NewStats()
	s.Update("b", func(ws *WorkflowStats) { ws.Attempts++ })
	s.Update("a", func(ws *WorkflowStats) { ws.Rows = 2 })
	s.Update("b", func(ws *WorkflowStats) { ws.Attempts++ })

	assert.Equal(t, []string{"a", "b"}, s.Names())
	b, ok := s.Workflow("b")
	require.True(t, ok)
	assert.Equal(t, 2, b.Attempts)

	_, ok = s.Workflow("missing")
	assert.False(t, ok)
}
