package table

import "fmt"

// SchemaError reports a table whose shape or cells do not match its declared
// columns. Row is -1 for errors that concern the schema as a whole.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

// Error implements the error interface for SchemaError.
func (e *SchemaError) Error() string {
	switch {
	case e.Row < 0:
		return fmt.Sprintf("table schema: %s", e.Reason)
	case e.Column == "":
		return fmt.Sprintf("table schema: row %d: %s", e.Row, e.Reason)
	default:
		return fmt.Sprintf("table schema: row %d, column %q: %s", e.Row, e.Column, e.Reason)
	}
}
