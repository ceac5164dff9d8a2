// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag is the diagnostic sink consumed by the normalization
// pass (spec.md §6's DiagnosticSet). It holds user-facing ownership
// violations in insertion order; it performs no deduplication itself —
// the transfer functions in package xfer gate each insertion through
// frame.Context.ShouldReport, per spec.md §9.
package diag

import (
	"fmt"

	"github.com/ownlang/objnorm/ir"
)

// Kind identifies the shape of a diagnostic, independent of wording.
type Kind int

const (
	IllegalMove Kind = iota
	UseOfUninitialized
	UseOfConsumed
	UseOfPartiallyInitialized
	UseOfPartiallyConsumed
)

func (k Kind) String() string {
	switch k {
	case IllegalMove:
		return "illegal move"
	case UseOfUninitialized:
		return "use of uninitialized object"
	case UseOfConsumed:
		return "use of consumed object"
	case UseOfPartiallyInitialized:
		return "use of partially initialized object"
	case UseOfPartiallyConsumed:
		return "use of partially consumed object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is one ownership violation, carrying a source range in
// the only form this pass has available: the offending instruction and
// the function it belongs to.
type Diagnostic struct {
	Kind  Kind
	Func  ir.FuncID
	Instr ir.InstID // the instruction whose transfer function detected the violation
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("f%d:%%%d: %s", d.Func, d.Instr, d.Kind)
}

// Set is an insertion-ordered log of Diagnostics.
type Set struct {
	diags []Diagnostic
}

// NewSet returns a new, empty Set.
func NewSet() *Set { return &Set{} }

// Insert appends d to the set.
func (s *Set) Insert(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Diagnostics returns every diagnostic inserted so far, in insertion
// order. The caller must not modify the returned slice.
func (s *Set) Diagnostics() []Diagnostic {
	return s.diags
}

// Len reports how many diagnostics have been inserted.
func (s *Set) Len() int {
	return len(s.diags)
}
