// Package executor runs a single workflow step.
//
// # Execution
//
// Run is the one canonical implementation. For a descriptor and a run
// context it:
//
//  1. Resolves every declared dependency from the runtime cache. A miss
//     fails immediately with *runcache.MissingArtifactError and nothing is
//     written anywhere.
//  2. Calls the transformation with the resolved inputs. Its error is
//     returned as-is so callers can tell transformation failures apart from
//     orchestration failures.
//  3. Treats a nil output as "nothing to publish".
//  4. Validates the output, publishes it to the cache under the step's own
//     name, then persists it to storage in the run's formats. A storage
//     failure is returned as *storage.StorageWriteError together with the
//     output; the cache entry is kept.
//
// If ctx is cancelled before publication, the computed output is discarded
// and ctx.Err() is returned.
//
// # Verb Adapter
//
// AsVerb wraps Run for generic multi-step runners that deal in opaque
// inputs and results. It carries no logic of its own.
package executor
