// Package runcache defines the Runtime Cache: the run-scoped store through
// which pipeline steps hand artifacts to each other.
//
// # Why a Runtime Cache Exists
//
// Steps never hold references to one another. A step publishes its output
// under its own name and downstream steps look it up by that name. The cache
// is the only shared mutable state in a run, and the discipline is simple: a
// name is written by its owning step, then read-only for everyone else.
//
// # Lifecycle
//
//  1. Created when a pipeline run starts (one cache per run)
//  2. Seeded with any external inputs the run was given
//  3. Written by each step's executor after a successful transformation
//  4. Read by downstream executors while resolving declared dependencies
//  5. Cleared when the run ends
//
// # Ordering
//
// The cache does not resolve dependencies and never waits for a producer. A
// Get for a name that has not been published is a planning bug and fails
// immediately with *MissingArtifactError.
package runcache

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stepflow/internal/table"
)

// Cache is the interface for the run-scoped artifact store.
//
// Implementations MUST be safe for concurrent use. Tables handed to Set and
// returned from Get must not alias each other: a consumer mutating its copy
// cannot affect the published artifact.
type Cache interface {
	// Get returns the artifact published under name. It returns
	// *MissingArtifactError if name was never published in this run.
	Get(ctx context.Context, name string) (*table.Table, error)

	// Set publishes or overwrites the artifact under name. Every later Get in
	// the same run observes this value.
	Set(ctx context.Context, name string, t *table.Table) error

	// Has reports whether name has been published in this run.
	Has(ctx context.Context, name string) bool

	// Keys returns the published names in lexical order.
	Keys(ctx context.Context) []string

	// Delete removes a published artifact. Deleting a missing name is a no-op.
	Delete(ctx context.Context, name string) error

	// Clear drops every artifact. It is called when the run is torn down.
	Clear(ctx context.Context) error
}

// MissingArtifactError is returned when an artifact is requested before any
// step has published it. It signals a dependency ordering bug and must never
// be retried.
type MissingArtifactError struct {
	Name string
}

// Error implements the error interface for MissingArtifactError.
func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("artifact %q has not been published in this run", e.Name)
}
