// Package table defines the Artifact type exchanged between pipeline steps: an
// immutable, statically typed table with ordered named columns.
//
// Cells are cty.Value instances so that the same type system used to decode
// configuration also describes pipeline data. Every cell is either a known
// value of its column's type or a typed null.
package table
