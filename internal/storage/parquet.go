package storage

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// leafKind is the physical encoding chosen for a table column.
type leafKind int

const (
	leafString leafKind = iota
	leafInt64
	leafDouble
	leafBool
	leafStringList
)

// encodeParquet writes t as a single-row-group parquet file. Scalar columns
// are optional leaves; list columns are repeated string leaves. Number columns
// whose values are all integral are stored as INT64, otherwise as DOUBLE.
func encodeParquet(w io.Writer, t *table.Table) error {
	columns := t.Columns()
	kinds := make([]leafKind, len(columns))
	for c, col := range columns {
		kind, err := columnKind(t, col)
		if err != nil {
			return err
		}
		kinds[c] = kind
	}

	schema, err := parquetSchema(columns, kinds)
	if err != nil {
		return err
	}

	rows := make([]parquet.Row, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		cells := t.Row(i)
		row := make(parquet.Row, 0, len(columns))
		for c, col := range columns {
			values, err := parquetValues(cells[c], kinds[c], c)
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, col.Name, err)
			}
			row = append(row, values...)
		}
		rows = append(rows, row)
	}

	pw := parquet.NewWriter(w, schema)
	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func columnKind(t *table.Table, col table.Column) (leafKind, error) {
	switch {
	case col.Type.Equals(cty.String):
		return leafString, nil
	case col.Type.Equals(cty.Bool):
		return leafBool, nil
	case col.Type.Equals(cty.List(cty.String)):
		return leafStringList, nil
	case col.Type.Equals(cty.Number):
		sawValue := false
		for i := 0; i < t.NumRows(); i++ {
			v, _ := t.Value(i, col.Name)
			if v.IsNull() {
				continue
			}
			sawValue = true
			bf := v.AsBigFloat()
			if !bf.IsInt() {
				return leafDouble, nil
			}
			if _, acc := bf.Int64(); acc != 0 {
				return leafDouble, nil
			}
		}
		if !sawValue {
			return leafDouble, nil
		}
		return leafInt64, nil
	default:
		return 0, fmt.Errorf("column %q: type %s cannot be stored as parquet", col.Name, col.Type.FriendlyName())
	}
}

// parquetSchema builds a schema whose fields follow the table's column order.
// parquet.Group would sort them by name, so the schema is derived from a
// struct type generated for the columns instead.
func parquetSchema(columns []table.Column, kinds []leafKind) (*parquet.Schema, error) {
	fields := make([]reflect.StructField, len(columns))
	for c, col := range columns {
		if col.Name == "-" || strings.ContainsAny(col.Name, `,"`) {
			return nil, fmt.Errorf("column %q cannot be stored as parquet", col.Name)
		}
		tag := col.Name + ",optional"
		if kinds[c] == leafStringList {
			tag = col.Name
		}
		fields[c] = reflect.StructField{
			Name: fmt.Sprintf("Column%d", c),
			Type: goType(kinds[c]),
			Tag:  reflect.StructTag(`parquet:` + strconv.Quote(tag)),
		}
	}
	model := reflect.New(reflect.StructOf(fields)).Interface()
	return parquet.NewSchema("artifact", parquet.SchemaOf(model)), nil
}

func goType(kind leafKind) reflect.Type {
	switch kind {
	case leafInt64:
		return reflect.TypeOf(int64(0))
	case leafDouble:
		return reflect.TypeOf(float64(0))
	case leafBool:
		return reflect.TypeOf(false)
	case leafStringList:
		return reflect.TypeOf([]string(nil))
	default:
		return reflect.TypeOf("")
	}
}

// parquetValues returns the leaf values for one cell. Optional leaves use
// definition level 1 for present values; repeated leaves use repetition level
// 1 for every element after the first.
func parquetValues(v cty.Value, kind leafKind, leaf int) ([]parquet.Value, error) {
	if kind == leafStringList {
		if v.IsNull() || v.LengthInt() == 0 {
			return []parquet.Value{parquet.NullValue().Level(0, 0, leaf)}, nil
		}
		values := make([]parquet.Value, 0, v.LengthInt())
		rep := 0
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			values = append(values, parquet.ByteArrayValue([]byte(elem.AsString())).Level(rep, 1, leaf))
			rep = 1
		}
		return values, nil
	}

	if v.IsNull() {
		return []parquet.Value{parquet.NullValue().Level(0, 0, leaf)}, nil
	}

	var pv parquet.Value
	switch kind {
	case leafString:
		pv = parquet.ByteArrayValue([]byte(v.AsString()))
	case leafBool:
		pv = parquet.BooleanValue(v.True())
	case leafInt64:
		i, _ := v.AsBigFloat().Int64()
		pv = parquet.Int64Value(i)
	case leafDouble:
		f, _ := v.AsBigFloat().Float64()
		pv = parquet.DoubleValue(f)
	default:
		return nil, fmt.Errorf("unknown leaf kind %d", kind)
	}
	return []parquet.Value{pv.Level(0, 1, leaf)}, nil
}
