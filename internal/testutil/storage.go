package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
)

// WriteCall is one observed storage.Write invocation.
type WriteCall struct {
	Name    string
	Table   *table.Table
	Formats []storage.Format
}

// RecordingStorage records writes and optionally fails them.
type RecordingStorage struct {
	mu    sync.Mutex
	calls []WriteCall
	// Err, when set, is returned from every Write after it is recorded.
	Err error
}

var _ storage.Storage = (*RecordingStorage)(nil)

// Write records the call. It returns a *storage.StorageWriteError wrapping
// Err when Err is set.
func (s *RecordingStorage) Write(_ context.Context, t *table.Table, name string, formats []storage.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, WriteCall{Name: name, Table: t.Clone(), Formats: append([]storage.Format(nil), formats...)})
	if s.Err != nil {
		var f storage.Format
		if len(formats) > 0 {
			f = formats[0]
		}
		return storage.WriteError(name, f, s.Err)
	}
	return nil
}

// Calls returns the recorded writes in order.
func (s *RecordingStorage) Calls() []WriteCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WriteCall(nil), s.calls...)
}
