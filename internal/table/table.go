package table

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Column describes a single named, typed column.
type Column struct {
	Name string
	Type cty.Type
}

// Table is an ordered set of typed columns and the rows conforming to them.
// A Table is not safe for concurrent mutation; once published to a cache it
// must be treated as read-only.
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]cty.Value
}

// supportedTypes lists the element types a column may declare.
var supportedTypes = []cty.Type{
	cty.String,
	cty.Number,
	cty.Bool,
	cty.List(cty.String),
}

// IsSupportedType reports whether ty can be used as a column type.
func IsSupportedType(ty cty.Type) bool {
	for _, st := range supportedTypes {
		if ty.Equals(st) {
			return true
		}
	}
	return false
}

// New creates an empty table with the given columns.
func New(columns ...Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table must declare at least one column")
	}

	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		if _, exists := t.index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if col.Type == cty.NilType || !IsSupportedType(col.Type) {
			return nil, fmt.Errorf("column %q has unsupported type %s", col.Name, friendlyName(col.Type))
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is like New but panics on an invalid schema. It is meant for
// package-level schema declarations.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds a table from native Go records, converting each value
// into its column's type with gocty. Missing keys and nil values become nulls.
func FromRecords(columns []Column, records []map[string]any) (*Table, error) {
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		for key := range rec {
			if _, ok := t.index[key]; !ok {
				return nil, fmt.Errorf("record %d: unknown column %q", i, key)
			}
		}
		row := make([]cty.Value, len(t.columns))
		for c, col := range t.columns {
			raw, ok := rec[col.Name]
			if !ok || raw == nil {
				row[c] = cty.NullVal(col.Type)
				continue
			}
			v, err := gocty.ToCtyValue(raw, col.Type)
			if err != nil {
				return nil, fmt.Errorf("record %d, column %q: %w", i, col.Name, err)
			}
			row[c] = v
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return t, nil
}

// Columns returns a copy of the table's column declarations.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column declaration by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Row returns a copy of the cells of row i in column order.
func (t *Table) Row(i int) []cty.Value {
	out := make([]cty.Value, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, name string) (cty.Value, bool) {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return cty.NilVal, false
	}
	return t.rows[i][c], true
}

// AppendRow appends a row given in column order. Null values of any type are
// normalised to a null of the column type.
func (t *Table) AppendRow(values ...cty.Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]cty.Value, len(values))
	for c, v := range values {
		col := t.columns[c]
		if v.IsNull() {
			row[c] = cty.NullVal(col.Type)
			continue
		}
		if err := conforms(v, col); err != nil {
			return &SchemaError{Column: col.Name, Row: len(t.rows), Reason: err.Error()}
		}
		row[c] = v
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendRecord appends a row given as a column-name map. Absent columns are
// filled with nulls.
func (t *Table) AppendRecord(rec map[string]cty.Value) error {
	row := make([]cty.Value, len(t.columns))
	for key := range rec {
		if _, ok := t.index[key]; !ok {
			return fmt.Errorf("unknown column %q", key)
		}
	}
	for c, col := range t.columns {
		v, ok := rec[col.Name]
		if !ok {
			v = cty.NullVal(col.Type)
		}
		row[c] = v
	}
	return t.AppendRow(row...)
}

// Records returns every row as a column-name map.
func (t *Table) Records() []map[string]cty.Value {
	out := make([]map[string]cty.Value, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(map[string]cty.Value, len(t.columns))
		for c, col := range t.columns {
			rec[col.Name] = row[c]
		}
		out = append(out, rec)
	}
	return out
}

// Clone returns a copy that shares no mutable state with t. cty values are
// immutable, so copying the row slices is sufficient.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]cty.Value, len(t.rows)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, row := range t.rows {
		out.rows[i] = make([]cty.Value, len(row))
		copy(out.rows[i], row)
	}
	return out
}

// Equal reports whether both tables have the same schema and the same cells
// in the same order.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !sameColumns(t.columns, other.columns) || len(t.rows) != len(other.rows) {
		return false
	}
	for i := range t.rows {
		for c := range t.rows[i] {
			if !t.rows[i][c].RawEquals(other.rows[i][c]) {
				return false
			}
		}
	}
	return true
}

// Validate checks that every cell conforms to its column type. Tables built
// through this package's constructors always validate; the check guards the
// boundary where a transformation hands its result back to the executor.
func (t *Table) Validate() error {
	if t == nil {
		return &SchemaError{Row: -1, Reason: "table is nil"}
	}
	if len(t.columns) == 0 {
		return &SchemaError{Row: -1, Reason: "table has no columns"}
	}
	for i, row := range t.rows {
		if len(row) != len(t.columns) {
			return &SchemaError{Row: i, Reason: fmt.Sprintf("row has %d cells, want %d", len(row), len(t.columns))}
		}
		for c, v := range row {
			col := t.columns[c]
			if v.IsNull() {
				if !v.Type().Equals(col.Type) {
					return &SchemaError{Column: col.Name, Row: i, Reason: "null has wrong type"}
				}
				continue
			}
			if err := conforms(v, col); err != nil {
				return &SchemaError{Column: col.Name, Row: i, Reason: err.Error()}
			}
		}
	}
	return nil
}

// Conforms checks that the table declares exactly the expected columns, in
// order and with matching types, and that its cells are valid.
func (t *Table) Conforms(expected []Column) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !sameColumns(t.columns, expected) {
		return &SchemaError{Row: -1, Reason: fmt.Sprintf("columns %s do not match declared schema %s", describe(t.columns), describe(expected))}
	}
	return nil
}

func conforms(v cty.Value, col Column) error {
	if !v.IsKnown() {
		return fmt.Errorf("value is unknown")
	}
	if !v.Type().Equals(col.Type) {
		return fmt.Errorf("expected %s, got %s", friendlyName(col.Type), friendlyName(v.Type()))
	}
	if col.Type.IsListType() {
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.IsNull() {
				return fmt.Errorf("list elements cannot be null")
			}
		}
	}
	return nil
}

func sameColumns(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Type.Equals(b[i].Type) {
			return false
		}
	}
	return true
}

func describe(cols []Column) string {
	s := "["
	for i, c := range cols {
		if i > 0 {
			s += ", "
		}
		s += c.Name + ":" + friendlyName(c.Type)
	}
	return s + "]"
}

func friendlyName(ty cty.Type) string {
	if ty == cty.NilType {
		return "nil"
	}
	return ty.FriendlyName()
}
