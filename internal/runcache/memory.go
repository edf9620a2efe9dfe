package runcache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/table"
)

// Memory is an in-memory Cache backed by sync.Map. Keys are independent and
// written once per step, which is the access pattern sync.Map is built for.
type Memory struct {
	artifacts sync.Map // Key: artifact name, Value: *table.Table
}

// New creates a new, empty in-memory cache for a single run.
func New() Cache {
	return &Memory{}
}

// Get returns a copy of the published artifact.
func (m *Memory) Get(ctx context.Context, name string) (*table.Table, error) {
	v, ok := m.artifacts.Load(name)
	if !ok {
		return nil, &MissingArtifactError{Name: name}
	}
	return v.(*table.Table).Clone(), nil
}

// Set stores a copy of t under name.
func (m *Memory) Set(ctx context.Context, name string, t *table.Table) error {
	if name == "" {
		return fmt.Errorf("artifact name cannot be empty")
	}
	if t == nil {
		return fmt.Errorf("artifact %q: table cannot be nil", name)
	}
	_, replaced := m.artifacts.Swap(name, t.Clone())
	ctxlog.FromContext(ctx).Debug("Artifact published to runtime cache.", "artifact", name, "rows", t.NumRows(), "replaced", replaced)
	return nil
}

// Has reports whether name has been published.
func (m *Memory) Has(ctx context.Context, name string) bool {
	_, ok := m.artifacts.Load(name)
	return ok
}

// Keys returns the published names, sorted.
func (m *Memory) Keys(ctx context.Context) []string {
	var keys []string
	m.artifacts.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Delete removes name from the cache.
func (m *Memory) Delete(ctx context.Context, name string) error {
	m.artifacts.Delete(name)
	return nil
}

// Clear removes every artifact.
func (m *Memory) Clear(ctx context.Context) error {
	m.artifacts.Clear()
	return nil
}
