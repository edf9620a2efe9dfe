// Package finalentities provides the create_final_entities workflow: it
// collapses the extracted entity nodes into one row per distinct name and
// assigns each a sequential entity id.
package finalentities

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stepflow/internal/executor"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
	"github.com/zclconf/go-cty/cty"
)

const (
	// Name is the workflow name and the artifact it publishes.
	Name = "create_final_entities"
	// SourceStep produces the input artifact.
	SourceStep = "extract_graph"
	// InputArtifact is the table of entity nodes this workflow consumes.
	InputArtifact = "base_entity_nodes"
)

// Module implements the workflow.Module interface for this package.
type Module struct{}

// Register registers the workflow with the registry.
func (m *Module) Register(r *workflow.Registry) {
	r.Register(New())
}

// New returns the workflow descriptor.
func New() workflow.Descriptor {
	return workflow.Descriptor{
		Name:        Name,
		Description: "Deduplicates entity nodes by name and assigns sequential entity ids.",
		Dependencies: func() []workflow.Dependency {
			return []workflow.Dependency{workflow.OnArtifact(SourceStep, InputArtifact)}
		},
		Transform: transform,
	}
}

// RunWorkflow is the direct entry point: it executes the workflow once
// against rc and returns the published table.
func RunWorkflow(ctx context.Context, rc *workflow.RunContext) (*table.Table, error) {
	return executor.New().Run(ctx, rc, New())
}

func transform(in *workflow.Inputs) (*table.Table, error) {
	nodes, ok := in.Get(InputArtifact)
	if !ok {
		return nil, fmt.Errorf("input %q was not resolved", InputArtifact)
	}
	return DeduplicateByName(nodes)
}

// DeduplicateByName keeps the first row for every distinct name, in input
// order, and numbers the kept rows from 0 in a new entity_id column. The
// input's id column is dropped; any other columns are carried through after
// entity_id and name. Rows with a null name are skipped.
func DeduplicateByName(nodes *table.Table) (*table.Table, error) {
	nameCol, ok := nodes.Column("name")
	if !ok {
		return nil, &table.SchemaError{Column: "name", Row: -1, Reason: "input has no name column"}
	}
	if !nameCol.Type.Equals(cty.String) {
		return nil, &table.SchemaError{Column: "name", Row: -1, Reason: "name column must be a string"}
	}

	columns := []table.Column{
		{Name: "entity_id", Type: cty.Number},
		{Name: "name", Type: cty.String},
	}
	var carried []table.Column
	for _, col := range nodes.Columns() {
		switch col.Name {
		case "id", "name", "entity_id":
		default:
			carried = append(carried, col)
		}
	}
	columns = append(columns, carried...)

	out, err := table.New(columns...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for i := 0; i < nodes.NumRows(); i++ {
		name, _ := nodes.Value(i, "name")
		if name.IsNull() {
			continue
		}
		key := name.AsString()
		if _, dup := seen[key]; dup {
			continue
		}

		row := make([]cty.Value, 0, len(columns))
		row = append(row, cty.NumberIntVal(int64(len(seen))), name)
		for _, col := range carried {
			v, _ := nodes.Value(i, col.Name)
			row = append(row, v)
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
	}
	return out, nil
}
