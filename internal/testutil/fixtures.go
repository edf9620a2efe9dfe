package testutil

import (
	"testing"

	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// EntityNodeColumns is the layout of the base_entity_nodes fixture.
var EntityNodeColumns = []table.Column{
	{Name: "id", Type: cty.Number},
	{Name: "name", Type: cty.String},
}

// FinalEntityColumns is the layout create_final_entities produces from
// base_entity_nodes.
var FinalEntityColumns = []table.Column{
	{Name: "entity_id", Type: cty.Number},
	{Name: "name", Type: cty.String},
}

// EntityNodes builds a base_entity_nodes table with ids starting at 1.
func EntityNodes(t *testing.T, names ...string) *table.Table {
	t.Helper()
	tbl, err := table.New(EntityNodeColumns...)
	require.NoError(t, err)
	for i, name := range names {
		require.NoError(t, tbl.AppendRow(cty.NumberIntVal(int64(i+1)), cty.StringVal(name)))
	}
	return tbl
}

// FinalEntities builds the expected create_final_entities table, numbering
// entity_id from 0.
func FinalEntities(t *testing.T, names ...string) *table.Table {
	t.Helper()
	tbl, err := table.New(FinalEntityColumns...)
	require.NoError(t, err)
	for i, name := range names {
		require.NoError(t, tbl.AppendRow(cty.NumberIntVal(int64(i)), cty.StringVal(name)))
	}
	return tbl
}
