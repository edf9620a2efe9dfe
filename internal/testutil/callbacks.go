package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/stepflow/internal/table"
	"github.com/specialistvlad/stepflow/internal/workflow"
)

// RecordingCallbacks captures every notification for later assertions.
type RecordingCallbacks struct {
	mu            sync.Mutex
	Started       []string
	Ended         []string
	Transitions   []Transition
	StorageErrors []error
	Executions    map[string][]*ExecutionRecord
}

// NewRecordingCallbacks creates an empty recorder.
func NewRecordingCallbacks() *RecordingCallbacks {
	return &RecordingCallbacks{Executions: make(map[string][]*ExecutionRecord)}
}

var _ workflow.Callbacks = (*RecordingCallbacks)(nil)

func (r *RecordingCallbacks) OnWorkflowStart(_ context.Context, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, name)
	r.Executions[name] = append(r.Executions[name], &ExecutionRecord{Start: time.Now()})
}

func (r *RecordingCallbacks) OnStateChange(_ context.Context, name string, from, to workflow.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transitions = append(r.Transitions, Transition{Workflow: name, From: from, To: to})
}

func (r *RecordingCallbacks) OnWorkflowEnd(_ context.Context, name string, _ *table.Table, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ended = append(r.Ended, name)
	if recs := r.Executions[name]; len(recs) > 0 {
		last := recs[len(recs)-1]
		last.End = time.Now()
		last.Err = err
	}
}

func (r *RecordingCallbacks) OnStorageError(_ context.Context, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StorageErrors = append(r.StorageErrors, err)
}

// States returns the sequence of states a workflow entered, in order.
func (r *RecordingCallbacks) States(name string) []workflow.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []workflow.State
	for _, tr := range r.Transitions {
		if tr.Workflow == name {
			out = append(out, tr.To)
		}
	}
	return out
}
