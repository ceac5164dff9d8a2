// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xfer

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/frame"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// requireLocations resolves o to its bound location set. A constant
// operand, or a local not bound as Locations, is the "unimplemented"
// / malformed-IR path of spec.md §4.4 and §9: fatal, never a
// diagnostic.
func (in *Interpreter) requireLocations(ctx *frame.Context, o ir.Operand, instrID ir.InstID) []loc.ID {
	if o.IsConst {
		bug.Bug("xfer: instruction %%%d: constant %q used where a location is required (unimplemented, spec.md §9)", instrID, o.ConstName)
	}
	e, ok := ctx.Locals[o.Local]
	if !ok {
		bug.Bug("xfer: instruction %%%d: local %v is not bound", instrID, o.Local)
	}
	if e.Kind != frame.EntryLocations {
		bug.Bug("xfer: instruction %%%d: local %v does not hold a location set", instrID, o.Local)
	}
	return e.Locs
}

// commonValue reads every location in locs and asserts they observe
// equal Values (invariant 4): divergence is a borrowing-discipline bug
// upstream, not a user diagnostic.
func (in *Interpreter) commonValue(ctx *frame.Context, locs []loc.ID, instrID ir.InstID) state.Value {
	var v state.Value
	for i, l := range locs {
		cell, ok := in.cellOf(ctx, l)
		if !ok {
			bug.Bug("xfer: instruction %%%d: location %v not present in memory", instrID, in.Locs.Location(l))
		}
		if i == 0 {
			v = cell.Value
			continue
		}
		if !v.Equal(cell.Value) {
			bug.Bug("xfer: instruction %%%d: locations in the same set observed divergent values (%v vs %v)", instrID, v, cell.Value)
		}
	}
	return v
}

// report gates a diagnostic behind ShouldReport's first-transition
// check before inserting it.
func (in *Interpreter) report(ctx *frame.Context, instrID ir.InstID, site int, kind diag.Kind) {
	if ctx.ShouldReport(instrID, site, kind) {
		in.Diags.Insert(diag.Diagnostic{Kind: kind, Func: in.Func, Instr: instrID})
	}
}

// reportUse classifies v as a use target the way borrow(let|inout) and
// load both do, reporting the matching diagnostic kind and reporting
// whether v was usable (full(initialized)).
func (in *Interpreter) reportUse(ctx *frame.Context, instrID ir.InstID, site int, v state.Value) bool {
	if v.IsFull {
		switch v.Full.Atom {
		case state.Initialized:
			return true
		case state.Uninitialized:
			in.report(ctx, instrID, site, diag.UseOfUninitialized)
		case state.Consumed:
			in.report(ctx, instrID, site, diag.UseOfConsumed)
		}
		return false
	}
	paths := v.PathsOf()
	if len(paths.Consumed) > 0 {
		in.report(ctx, instrID, site, diag.UseOfPartiallyConsumed)
	} else {
		in.report(ctx, instrID, site, diag.UseOfPartiallyInitialized)
	}
	return false
}
