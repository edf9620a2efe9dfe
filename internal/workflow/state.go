package workflow

// State is the execution state of a single workflow within a run.
//
//	Pending -> ResolvingInputs -> Transforming -> Publishing -> Done
//	Pending/ResolvingInputs/Transforming/Publishing -> Failed
type State int32

const (
	// Pending indicates the workflow has not started.
	Pending State = iota
	// ResolvingInputs indicates dependency artifacts are being read from the cache.
	ResolvingInputs
	// Transforming indicates the transformation is running.
	Transforming
	// Publishing indicates the output is being written to the cache and storage.
	Publishing
	// Done indicates the workflow completed.
	Done
	// Failed indicates the workflow stopped with an error.
	Failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case ResolvingInputs:
		return "resolving_inputs"
	case Transforming:
		return "transforming"
	case Publishing:
		return "publishing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
