// Package workflow defines the static description of a pipeline step and the
// run-scoped state every step receives.
//
// # Core Concepts
//
//   - Descriptor: a step's name, the artifacts it depends on and its pure
//     transformation. Descriptors are plain values registered at startup;
//     there is no implicit binding.
//
//   - Dependency: a reference to an artifact published by an upstream step,
//     written as `workflow:<step>` or `workflow:<step>/<artifact>`.
//
//   - RunContext: the handles a step needs during one pipeline run (runtime
//     cache, persistent storage, formats, callbacks, statistics). It is
//     passed explicitly; no step reaches for global state.
//
// Dependencies are declared, not executed, so a planner can build the whole
// graph before anything runs.
package workflow
