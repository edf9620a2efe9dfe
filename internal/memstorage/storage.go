// Package memstorage provides an in-memory implementation of storage.Storage.
// It encodes every requested format exactly like a durable backend would but
// keeps the bytes in memory, which makes it suitable for tests and dry runs.
package memstorage

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
)

// Entry is the last successful write for an artifact name.
type Entry struct {
	Table   *table.Table
	Formats []storage.Format
	Data    map[storage.Format][]byte
}

// Storage keeps the latest write per artifact name.
type Storage struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	writes  int
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{entries: make(map[string]*Entry)}
}

// Write encodes t in every format and replaces any previous entry for name.
func (s *Storage) Write(ctx context.Context, t *table.Table, name string, formats []storage.Format) error {
	entry := &Entry{
		Table:   t.Clone(),
		Formats: append([]storage.Format(nil), formats...),
		Data:    make(map[storage.Format][]byte, len(formats)),
	}
	for _, f := range formats {
		var buf bytes.Buffer
		if err := storage.Encode(&buf, t, f); err != nil {
			return storage.WriteError(name, f, err)
		}
		entry.Data[f] = buf.Bytes()
	}

	s.mu.Lock()
	s.entries[name] = entry
	s.writes++
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Artifact written to memory storage.", "artifact", name, "formats", formats)
	return nil
}

// Get returns the last entry written under name.
func (s *Storage) Get(name string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// Names returns the stored artifact names, sorted.
func (s *Storage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Writes returns the number of successful Write calls.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
