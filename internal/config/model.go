package config

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a pipeline
// configuration.
type Model struct {
	Storage   *Storage
	Snapshot  *Snapshot
	Inputs    []*Input
	Workflows map[string]*Workflow
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Workflows: make(map[string]*Workflow)}
}

// Storage kinds.
const (
	StorageFile   = "file"
	StorageHTTP   = "http"
	StorageMemory = "memory"
)

// Storage selects and configures the persistent storage backend.
type Storage struct {
	Kind string
	// BaseDir is resolved relative to the file that declared the block.
	BaseDir string
	BaseURL string
	Headers map[string]string
}

// Snapshot lists the formats every published artifact is written in.
type Snapshot struct {
	Formats []string
}

// Input is an external artifact seeded into the runtime cache before any
// workflow runs.
type Input struct {
	Name string
	// SourceStep is the step the input stands in for. When set, it must match
	// the source step of every enabled workflow that consumes the input.
	SourceStep string
	// Path is resolved relative to the file that declared the input.
	Path    string
	Columns []*Column
}

// Column declares one typed column of an input table.
type Column struct {
	Name string
	Type cty.Type
}

// Workflow holds per-workflow run settings.
type Workflow struct {
	Name    string
	Enabled bool
	Retry   *Retry
}

// Retry configures re-execution of a failing workflow.
type Retry struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// IsEnabled reports whether the named workflow should run. Workflows without
// a block are enabled.
func (m *Model) IsEnabled(name string) bool {
	w, ok := m.Workflows[name]
	return !ok || w.Enabled
}
