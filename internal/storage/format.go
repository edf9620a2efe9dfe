package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/stepflow/internal/table"
)

// Format identifies a serialization kind for persisted artifacts.
type Format string

const (
	// Parquet is the columnar on-disk format. It is the default.
	Parquet Format = "parquet"
	// JSON writes the table as an array of row objects.
	JSON Format = "json"
	// CSV writes a header row followed by one line per row.
	CSV Format = "csv"
)

// DefaultFormats is used when a run does not configure any format.
var DefaultFormats = []Format{Parquet}

// ParseFormat converts a user-provided name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Parquet, JSON, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported storage format %q: must be 'parquet', 'json' or 'csv'", s)
	}
}

// ParseFormats parses and de-duplicates a list of format names, preserving
// the first occurrence order. An empty list yields DefaultFormats.
func ParseFormats(names []string) ([]Format, error) {
	if len(names) == 0 {
		return append([]Format(nil), DefaultFormats...), nil
	}
	seen := make(map[Format]struct{}, len(names))
	out := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

// Extension returns the file extension for the format, without a dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type used when uploading the format.
func (f Format) ContentType() string {
	switch f {
	case Parquet:
		return "application/vnd.apache.parquet"
	case JSON:
		return "application/json"
	case CSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// FileName returns the object name an artifact is stored under.
func FileName(name string, f Format) string {
	return name + "." + f.Extension()
}

// Encode serializes t into w using the given format.
func Encode(w io.Writer, t *table.Table, f Format) error {
	switch f {
	case Parquet:
		return encodeParquet(w, t)
	case JSON:
		data, err := t.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case CSV:
		return encodeCSV(w, t)
	default:
		return fmt.Errorf("unsupported storage format %q", f)
	}
}
