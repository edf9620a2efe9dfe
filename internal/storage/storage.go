// Package storage defines the Persistent Storage contract: a durable,
// format-parameterised sink for artifacts that outlives a pipeline run.
//
// The executor only knows this interface. Whether artifacts land on a local
// disk, an object store or in memory is decided by the concrete backend
// (see internal/filestorage, internal/objectstorage, internal/memstorage).
package storage

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stepflow/internal/table"
)

// Storage is a durable artifact sink.
//
// Write MUST be idempotent: writing the same name again replaces the previous
// content for every requested format, it never appends. A failure is reported
// as *StorageWriteError.
type Storage interface {
	Write(ctx context.Context, t *table.Table, name string, formats []Format) error
}

// StorageWriteError reports a failed durable write for one artifact format.
type StorageWriteError struct {
	Name   string
	Format Format
	Err    error
}

// Error implements the error interface for StorageWriteError.
func (e *StorageWriteError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("failed to persist artifact %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("failed to persist artifact %q as %s: %v", e.Name, e.Format, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// WriteError builds a *StorageWriteError.
func WriteError(name string, format Format, err error) error {
	return &StorageWriteError{Name: name, Format: format, Err: err}
}
