package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// MarshalJSON encodes the table as an array of row objects. Keys follow the
// column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, col := range t.columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			cell, err := ctyjson.Marshal(row[c], col.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i, col.Name, err)
			}
			buf.Write(cell)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// ReadJSON decodes an array of row objects into a table with the given
// columns. Attributes that are not declared as columns are ignored, and
// declared columns missing from a row are null.
func ReadJSON(r io.Reader, columns []Column) (*Table, error) {
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}

	var rows []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}

	for i, raw := range rows {
		row := make([]cty.Value, len(t.columns))
		for c, col := range t.columns {
			cell, ok := raw[col.Name]
			if !ok {
				row[c] = cty.NullVal(col.Type)
				continue
			}
			v, err := ctyjson.Unmarshal(cell, col.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i, col.Name, err)
			}
			row[c] = v
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
