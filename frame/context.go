// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// Cell is one live storage slot: memory : Location → (layout, Value).
type Cell struct {
	Layout ir.Type
	Value  state.Value
}

// diagKey gates duplicate diagnostics: a transfer function reports a
// given (instruction, site, kind) triple to the sink at most once
// across the whole fixed-point computation for a function, not once
// per revisit (spec.md §9). Site disambiguates multiple call-site
// operands (e.g. which sink argument of a call) sharing one
// instruction and kind.
type diagKey struct {
	Instr ir.InstID
	Site  int
	Kind  diag.Kind
}

// Context is the pair (locals, memory) of spec.md §3: the abstract
// state a transfer function reads and mutates.
type Context struct {
	Locals map[ir.Local]Entry
	Memory map[loc.ID]Cell

	// reported is shared (not deep-copied) across every Context
	// derived from the same function's fixed-point computation via
	// Clone, so that ShouldReport's dedup holds across block
	// revisits — see package pass's driver.
	reported map[diagKey]bool
}

// NewContext returns a new, empty Context with a fresh reported set.
// Call this once per function at the start of normalization; every
// other Context for that function should descend from it via Clone or
// Merge so the reported set stays shared.
func NewContext() *Context {
	return &Context{
		Locals:   make(map[ir.Local]Entry),
		Memory:   make(map[loc.ID]Cell),
		reported: make(map[diagKey]bool),
	}
}

// Clone returns a copy of c whose Locals and Memory maps can be
// mutated independently, but which shares c's reported set.
func (c *Context) Clone() *Context {
	locals := make(map[ir.Local]Entry, len(c.Locals))
	for k, v := range c.Locals {
		locals[k] = v
	}
	memory := make(map[loc.ID]Cell, len(c.Memory))
	for k, v := range c.Memory {
		memory[k] = v
	}
	return &Context{Locals: locals, Memory: memory, reported: c.reported}
}

// ShouldReport reports whether this is the first time the triple
// (instr, site, kind) has been seen across this function's whole
// computation, recording it if so. A transfer function must call this
// immediately before diag.Set.Insert, never after, so a revisit that
// reconfirms the same violation is silently skipped.
func (c *Context) ShouldReport(instr ir.InstID, site int, kind diag.Kind) bool {
	key := diagKey{instr, site, kind}
	if c.reported[key] {
		return false
	}
	c.reported[key] = true
	return true
}

// Equal reports whether c and o represent the same Context, the check
// the driver uses to decide whether a block's before or after Context
// actually changed (spec.md §4.1 step 3).
func (c *Context) Equal(o *Context) bool {
	if len(c.Locals) != len(o.Locals) || len(c.Memory) != len(o.Memory) {
		return false
	}
	for k, v := range c.Locals {
		v2, ok := o.Locals[k]
		if !ok || !v.Equal(v2) {
			return false
		}
	}
	for k, v := range c.Memory {
		v2, ok := o.Memory[k]
		if !ok || v.Layout != v2.Layout || !v.Value.Equal(v2.Value) {
			return false
		}
	}
	return true
}

// Merge computes the before-Context of a join block from the
// after-Contexts of its visited predecessors (spec.md §4.2). It
// panics (a plain panic, not a bug.Precondition) if preds is empty — the driver must never call
// Merge for a block with no visited predecessor.
func Merge(preds []*Context) *Context {
	if len(preds) == 0 {
		panic("frame: Merge called with no predecessor contexts")
	}
	out := preds[0].Clone()
	for _, p := range preds[1:] {
		out = mergeTwo(out, p)
	}
	return out
}

// mergeTwo merges two Contexts sharing the same reported set. Locals
// and memory entries present in only one of the two are dropped: they
// did not dominate the join (spec.md §4.2's "locations present in
// only some predecessors are dropped").
func mergeTwo(a, b *Context) *Context {
	out := &Context{
		Locals:   make(map[ir.Local]Entry, len(a.Locals)),
		Memory:   make(map[loc.ID]Cell, len(a.Memory)),
		reported: a.reported,
	}
	for k, av := range a.Locals {
		if bv, ok := b.Locals[k]; ok {
			out.Locals[k] = MergeEntry(av, bv)
		}
	}
	for l, ac := range a.Memory {
		if bc, ok := b.Memory[l]; ok {
			out.Memory[l] = Cell{Layout: ac.Layout, Value: state.MergeValue(ac.Value, bc.Value)}
		}
	}
	return out
}
