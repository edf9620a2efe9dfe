package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func entitiesTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew(
		table.Column{Name: "entity_id", Type: cty.Number},
		table.Column{Name: "name", Type: cty.String},
		table.Column{Name: "rank", Type: cty.Number},
		table.Column{Name: "is_person", Type: cty.Bool},
		table.Column{Name: "text_unit_ids", Type: cty.List(cty.String)},
	)
	require.NoError(t, tbl.AppendRow(
		cty.NumberIntVal(0), cty.StringVal("A"), cty.NumberFloatVal(0.5), cty.True,
		cty.ListVal([]cty.Value{cty.StringVal("t1"), cty.StringVal("t2")}),
	))
	require.NoError(t, tbl.AppendRow(
		cty.NumberIntVal(1), cty.StringVal("B, Inc."), cty.NullVal(cty.Number), cty.False,
		cty.ListValEmpty(cty.String),
	))
	return tbl
}

func TestParseFormats(t *testing.T) {
	testCases := []struct {
		name      string
		input     []string
		expected  []Format
		expectErr bool
	}{
		{name: "empty uses default", input: nil, expected: []Format{Parquet}},
		{name: "case and whitespace", input: []string{" Parquet", "JSON"}, expected: []Format{Parquet, JSON}},
		{name: "duplicates removed", input: []string{"csv", "parquet", "csv"}, expected: []Format{CSV, Parquet}},
		{name: "unknown format", input: []string{"xlsx"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormats(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFileNameAndContentType(t *testing.T) {
	assert.Equal(t, "create_final_entities.parquet", FileName("create_final_entities", Parquet))
	assert.Equal(t, "text/csv", CSV.ContentType())
	assert.Equal(t, "application/octet-stream", Format("bin").ContentType())
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entitiesTable(t), JSON))
	assert.JSONEq(t, `[
		{"entity_id":0,"name":"A","rank":0.5,"is_person":true,"text_unit_ids":["t1","t2"]},
		{"entity_id":1,"name":"B, Inc.","rank":null,"is_person":false,"text_unit_ids":[]}
	]`, buf.String())
}

func TestEncode_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entitiesTable(t), CSV))
	expected := "entity_id,name,rank,is_person,text_unit_ids\n" +
		"0,A,0.5,true,\"[\"\"t1\"\",\"\"t2\"\"]\"\n" +
		"1,\"B, Inc.\",,false,[]\n"
	assert.Equal(t, expected, buf.String())
}

func TestEncode_Parquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entitiesTable(t), Parquet))

	data := buf.Bytes()
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.NumRows())

	var names []string
	for _, field := range f.Schema().Fields() {
		names = append(names, field.Name())
	}
	assert.Equal(t, []string{"entity_id", "name", "rank", "is_person", "text_unit_ids"}, names)
}

func TestEncode_ParquetKeepsColumnOrder(t *testing.T) {
	tbl := table.MustNew(
		table.Column{Name: "name", Type: cty.String},
		table.Column{Name: "entity_id", Type: cty.Number},
		table.Column{Name: "description", Type: cty.String},
	)
	require.NoError(t, tbl.AppendRow(cty.StringVal("A"), cty.NumberIntVal(0), cty.NullVal(cty.String)))
	require.NoError(t, tbl.AppendRow(cty.StringVal("B"), cty.NumberIntVal(1), cty.StringVal("second")))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tbl, Parquet))

	data := buf.Bytes()
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, field := range f.Schema().Fields() {
		names = append(names, field.Name())
	}
	assert.Equal(t, []string{"name", "entity_id", "description"}, names)

	rows := make([]parquet.Row, 2)
	reader := parquet.NewReader(bytes.NewReader(data))
	defer reader.Close()
	n, _ := reader.ReadRows(rows)
	require.Equal(t, 2, n)
	assert.Equal(t, "B", rows[1][0].String())
	assert.Equal(t, int64(1), rows[1][1].Int64())
	assert.Equal(t, "second", rows[1][2].String())
	assert.True(t, rows[0][2].IsNull())
}

func TestEncode_ParquetRejectsUnencodableColumnName(t *testing.T) {
	tbl := table.MustNew(table.Column{Name: "a,b", Type: cty.String})
	var buf bytes.Buffer
	require.Error(t, Encode(&buf, tbl, Parquet))
}

func TestEncode_ParquetEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := table.MustNew(table.Column{Name: "name", Type: cty.String})
	require.NoError(t, Encode(&buf, tbl, Parquet))

	data := buf.Bytes()
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.NumRows())
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Encode(&buf, entitiesTable(t), Format("xlsx")))
}

func TestStorageWriteError(t *testing.T) {
	cause := errors.New("disk full")
	err := WriteError("create_final_entities", Parquet, cause)

	var writeErr *StorageWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "create_final_entities", writeErr.Name)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "as parquet")
}
