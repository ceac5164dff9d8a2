// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout models the AbstractTypeLayout query consumed interface
// of spec.md §6: given a type, how many storage slots it has and what
// each slot's type is. The pass never needs more than this to build
// partial Values (state.Value's Partial case has one child per slot).
package layout

import "github.com/ownlang/objnorm/ir"

// AbstractTypeLayout answers slot-count and child-layout queries for a
// type, as needed to build a partial state.Value with the right shape.
// A scalar (non-aggregate) type has NumSlots == 0.
type AbstractTypeLayout interface {
	NumSlots(t ir.Type) int
	Slot(t ir.Type, i int) ir.Type
}

// aggregate describes one multi-slot type.
type aggregate struct {
	slots []ir.Type
}

// Program is a simple, in-memory AbstractTypeLayout: a table from type to
// its slot layout, built up by Define. It plays the role the teacher's
// obj/internal/symtab table of symbols played for object-file layout,
// generalized to IR value types instead of linker symbols.
type Program struct {
	aggregates map[ir.Type]aggregate
}

// NewProgram returns a Program with no aggregate types defined; every
// type is treated as scalar until Define is called for it.
func NewProgram() *Program {
	return &Program{aggregates: make(map[ir.Type]aggregate)}
}

// Define records that t is an aggregate with the given slot types, in
// order.
func (p *Program) Define(t ir.Type, slots ...ir.Type) {
	p.aggregates[t] = aggregate{slots: append([]ir.Type(nil), slots...)}
}

// NumSlots returns the number of storage slots that a value of type t
// occupies. Scalars return 0.
func (p *Program) NumSlots(t ir.Type) int {
	return len(p.aggregates[t].slots)
}

// Slot returns the type of t's i'th slot.
func (p *Program) Slot(t ir.Type, i int) ir.Type {
	return p.aggregates[t].slots[i]
}
