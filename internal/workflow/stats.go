package workflow

import (
	"sort"
	"sync"
	"time"
)

// WorkflowStats summarises one workflow's execution in a run.
type WorkflowStats struct {
	Attempts      int
	Duration      time.Duration
	Rows          int
	Published     bool
	StorageErrors int
	State         State
}

// Stats collects per-workflow statistics for a run.
type Stats struct {
	mu           sync.Mutex
	totalRuntime time.Duration
	workflows    map[string]*WorkflowStats
}

// NewStats creates an empty statistics collector.
func NewStats() *Stats {
	return &Stats{workflows: make(map[string]*WorkflowStats)}
}

// Update applies fn to the named workflow's stats, creating them on first use.
// It is a no-op on a nil *Stats.
func (s *Stats) Update(name string, fn func(ws *WorkflowStats)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workflows[name]
	if !ok {
		ws = &WorkflowStats{}
		s.workflows[name] = ws
	}
	fn(ws)
}

// Workflow returns a copy of the named workflow's stats.
func (s *Stats) Workflow(name string) (WorkflowStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workflows[name]
	if !ok {
		return WorkflowStats{}, false
	}
	return *ws, true
}

// Names returns the workflows that have stats, sorted.
func (s *Stats) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.workflows))
	for name := range s.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTotalRuntime records the wall-clock duration of the whole run.
func (s *Stats) SetTotalRuntime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRuntime = d
}

// TotalRuntime returns the wall-clock duration of the whole run.
func (s *Stats) TotalRuntime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRuntime
}
