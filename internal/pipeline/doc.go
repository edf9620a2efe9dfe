// Package pipeline orders and runs the registered workflows of one run.
//
// The planner turns the registry into a deterministic execution order:
// a workflow runs after every workflow whose output it reads, ties are broken
// by name, and artifacts seeded into the runtime cache before the run count
// as already available. The runner then executes the plan sequentially
// through the executor, layering a retry policy on top of idempotent
// re-execution.
package pipeline
