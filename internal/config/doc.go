// Package config defines the format-agnostic model of a pipeline
// configuration file and the Loader interface that produces it.
//
// The model describes where artifacts are persisted, which formats are
// written, which external inputs are seeded into the runtime cache and how
// individual workflows are run. Concrete loaders, such as the HCL one, live
// in separate packages.
package config
