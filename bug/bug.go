// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bug implements the fatal half of spec.md §7's two-category
// error split: compiler bugs and unimplemented paths, as opposed to
// user ownership violations (which flow to package diag instead).
//
// It exists as its own small leaf package, rather than living in
// package pass directly, so that frame and xfer — which both detect
// preconditions failures deep inside a single transfer function, far
// from pass's top-level recover — can raise them without importing
// pass and creating an import cycle (pass necessarily imports both).
// Package pass re-exports Bug and Precondition under its own name, so
// callers outside this module see a single, conventional surface.
package bug

import "fmt"

// Precondition is the panic value Bug raises. pass.NormalizeObjectStates recovers
// exactly this type at its top level and turns it into a returned
// error; any other panic is a genuine bug in the pass itself and is
// left to crash the process.
type Precondition struct {
	Msg string
}

func (p *Precondition) Error() string { return p.Msg }

// Bug panics with a *Precondition built from format and args. Call
// this for every condition spec.md §7 lists as fatal: a constant where
// a location is expected, a static-branch predicate other than
// initialized, a yielded convention at a function boundary, a
// non-canonical partial value, a stack leak, an unexpected opcode.
func Bug(format string, args ...interface{}) {
	panic(&Precondition{Msg: fmt.Sprintf(format, args...)})
}
