// Package lesson is the declarative front-end: it loads lesson HCL files,
// validates them, and compiles them into a timeline runtime with its bound
// processes. The package is split along the same seams as the rest of the
// loading pipeline:
//
//   - schema.go defines the gohcl decoding targets for the lesson grammar.
//   - loader.go discovers and parses .hcl files into a single lesson.
//   - value.go converts HCL expression values (cty) into plain Go values.
//   - compile.go turns a validated lesson into a timeline.Runtime.
//
// Authoring errors are reported as wrapped errors carrying the offending
// block's identity; nothing in this package panics on bad input.
package lesson
