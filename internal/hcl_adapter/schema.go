// This file contains the Go structs that pipeline HCL files are decoded into
// with gohcl.

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Storage   []*StorageBlock  `hcl:"storage,block"`
	Snapshot  []*SnapshotBlock `hcl:"snapshot,block"`
	Inputs    []*InputBlock    `hcl:"input,block"`
	Workflows []*WorkflowBlock `hcl:"workflow,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// StorageBlock maps to a `storage "<kind>" { ... }` block.
type StorageBlock struct {
	Kind    string            `hcl:"kind,label"`
	BaseDir *string           `hcl:"base_dir,optional"`
	BaseURL *string           `hcl:"base_url,optional"`
	Headers map[string]string `hcl:"headers,optional"`
}

// SnapshotBlock maps to a `snapshot { ... }` block.
type SnapshotBlock struct {
	Formats []string `hcl:"formats,optional"`
}

// InputBlock maps to an `input "<artifact>" { ... }` block.
type InputBlock struct {
	Name       string         `hcl:"name,label"`
	SourceStep *string        `hcl:"source_step,optional"`
	Path       string         `hcl:"path"`
	Columns    []*ColumnBlock `hcl:"column,block"`
}

// ColumnBlock maps to a `column "<name>" { type = ... }` block.
type ColumnBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type,optional"`
}

// WorkflowBlock maps to a `workflow "<name>" { ... }` block.
type WorkflowBlock struct {
	Name    string      `hcl:"name,label"`
	Enabled *bool       `hcl:"enabled,optional"`
	Retry   *RetryBlock `hcl:"retry,block"`
}

// RetryBlock maps to a `retry { ... }` block.
type RetryBlock struct {
	MaxAttempts     *int    `hcl:"max_attempts,optional"`
	InitialInterval *string `hcl:"initial_interval,optional"`
	MaxInterval     *string `hcl:"max_interval,optional"`
}
