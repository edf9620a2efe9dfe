package runcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newNodes(t *testing.T, names ...string) *table.Table {
	t.Helper()
	tbl := table.MustNew(
		table.Column{Name: "id", Type: cty.Number},
		table.Column{Name: "name", Type: cty.String},
	)
	for i, name := range names {
		require.NoError(t, tbl.AppendRow(cty.NumberIntVal(int64(i+1)), cty.StringVal(name)))
	}
	return tbl
}

func TestGet_MissingArtifact(t *testing.T) {
	c := New()
	ctx := context.Background()

	got, err := c.Get(ctx, "base_entity_nodes")
	require.Error(t, err)
	assert.Nil(t, got)

	var missing *MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "base_entity_nodes", missing.Name)
	assert.False(t, c.Has(ctx, "base_entity_nodes"))
}

func TestSetAndGet(t *testing.T) {
	c := New()
	ctx := context.Background()
	nodes := newNodes(t, "A", "B", "A")

	require.NoError(t, c.Set(ctx, "base_entity_nodes", nodes))
	assert.True(t, c.Has(ctx, "base_entity_nodes"))

	// Every subsequent read observes the published value.
	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, "base_entity_nodes")
		require.NoError(t, err)
		assert.True(t, nodes.Equal(got))
	}
}

func TestSet_Overwrites(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "entities", newNodes(t, "A")))
	require.NoError(t, c.Set(ctx, "entities", newNodes(t, "B", "C")))

	got, err := c.Get(ctx, "entities")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, []string{"entities"}, c.Keys(ctx))
}

func TestCopyOnReadAndWrite(t *testing.T) {
	c := New()
	ctx := context.Background()
	nodes := newNodes(t, "A")
	require.NoError(t, c.Set(ctx, "nodes", nodes))

	// Mutating the producer's table after publication does not leak in.
	require.NoError(t, nodes.AppendRow(cty.NumberIntVal(9), cty.StringVal("Z")))

	first, err := c.Get(ctx, "nodes")
	require.NoError(t, err)
	assert.Equal(t, 1, first.NumRows())

	// Mutating a consumer's copy does not leak into the cache either.
	require.NoError(t, first.AppendRow(cty.NumberIntVal(10), cty.StringVal("Y")))
	second, err := c.Get(ctx, "nodes")
	require.NoError(t, err)
	assert.Equal(t, 1, second.NumRows())
}

func TestSet_RejectsInvalidInput(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.Error(t, c.Set(ctx, "", newNodes(t)))
	require.Error(t, c.Set(ctx, "nodes", nil))
}

func TestDeleteAndClear(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "b", newNodes(t, "B")))
	require.NoError(t, c.Set(ctx, "a", newNodes(t, "A")))
	assert.Equal(t, []string{"a", "b"}, c.Keys(ctx))

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "never-set"))
	assert.Equal(t, []string{"b"}, c.Keys(ctx))

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.Keys(ctx))
	_, err := c.Get(ctx, "b")
	var missing *MissingArtifactError
	assert.ErrorAs(t, err, &missing)
}

// TestFreshCacheDoesNotSeePriorRun verifies that names published in one run
// are invisible to the next.
func TestFreshCacheDoesNotSeePriorRun(t *testing.T) {
	ctx := context.Background()
	previous := New()
	require.NoError(t, previous.Set(ctx, "create_final_entities", newNodes(t, "A")))

	current := New()
	_, err := current.Get(ctx, "create_final_entities")
	var missing *MissingArtifactError
	assert.ErrorAs(t, err, &missing)
}

// TestConcurrentAccess verifies that the cache can be used from many
// goroutines without races or lost writes.
func TestConcurrentAccess(t *testing.T) {
	c := New()
	ctx := context.Background()
	numGoroutines := 50
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			names := make([]string, i+1)
			for j := range names {
				names[j] = fmt.Sprintf("n%d", j)
			}
			if err := c.Set(ctx, fmt.Sprintf("artifact_%d", i), newNodes(t, names...)); err != nil {
				t.Errorf("set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			got, err := c.Get(ctx, fmt.Sprintf("artifact_%d", i))
			assert.NoError(t, err)
			if got != nil {
				assert.Equal(t, i+1, got.NumRows(), "mismatched rows for artifact %d", i)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, c.Keys(ctx), numGoroutines)
}
