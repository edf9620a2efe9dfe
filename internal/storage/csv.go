package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// encodeCSV writes a header row and one record per table row. Nulls are empty
// fields; list cells are JSON arrays.
func encodeCSV(w io.Writer, t *table.Table) error {
	columns := t.Columns()
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for c, col := range columns {
		header[c] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for i := 0; i < t.NumRows(); i++ {
		for c, v := range t.Row(i) {
			s, err := csvField(v, columns[c].Type)
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, columns[c].Name, err)
			}
			record[c] = s
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvField(v cty.Value, ty cty.Type) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Number):
		return v.AsBigFloat().Text('f', -1), nil
	case ty.Equals(cty.Bool):
		if v.True() {
			return "true", nil
		}
		return "false", nil
	default:
		data, err := ctyjson.Marshal(v, ty)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
