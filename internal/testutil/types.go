package testutil

import (
	"time"

	"github.com/specialistvlad/stepflow/internal/workflow"
)

// ExecutionRecord holds the start and end times for a single workflow execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
	Err   error
}

// Transition is one observed state change.
type Transition struct {
	Workflow string
	From     workflow.State
	To       workflow.State
}
