// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xfer

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/frame"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// allocStack implements spec.md §4.4's alloc-stack: allocate a fresh
// location, require it absent from memory (a stack leak is fatal,
// never a diagnostic), insert full(uninitialized), bind the result.
func (in *Interpreter) allocStack(ctx *frame.Context, instr *ir.Instruction) {
	l := in.Locs.Intern(loc.Instruction(instr.Block, instr.ID))
	if _, exists := ctx.Memory[l]; exists {
		bug.Bug("xfer: instruction %%%d: alloc-stack location %v already live (stack leak)", instr.ID, in.Locs.Location(l))
	}
	ctx.Memory[l] = frame.Cell{Layout: instr.ResultTypes[0], Value: state.NewFull(state.Uninit())}
	ctx.Locals[instr.Result(0)] = frame.LocationsEntry(l)
}

// borrow implements spec.md §4.4's borrow k from addr.
func (in *Interpreter) borrow(ctx *frame.Context, instr *ir.Instruction) Result {
	locs := in.requireLocations(ctx, instr.Operands[0], instr.ID)
	v := in.commonValue(ctx, locs, instr.ID)
	result := Result{}
	switch instr.Conv {
	case ir.ConvLet, ir.ConvInout:
		in.reportUse(ctx, instr.ID, 0, v)
	case ir.ConvSet:
		paths := v.InitializedPaths()
		rootType := in.cellLayoutOf(ctx, locs[0])
		if in.InsertDeinit(instr.Operands[0], rootType, paths, instr.ID) {
			result.Edited = true
		}
		for _, l := range locs {
			in.setCellValue(ctx, l, state.NewFull(state.Uninit()))
		}
	default:
		bug.Bug("xfer: instruction %%%d: borrow convention %v is invalid (yielded|sink, fatal)", instr.ID, instr.Conv)
	}
	ctx.Locals[instr.Result(0)] = frame.LocationsEntry(locs...)
	return result
}

// cellLayoutOf returns the declared type of location l's live cell,
// required by InsertDeinit to compute projected slot types.
func (in *Interpreter) cellLayoutOf(ctx *frame.Context, l loc.ID) ir.Type {
	cell, ok := in.cellOf(ctx, l)
	if !ok {
		bug.Bug("xfer: location %v not present in memory", in.Locs.Location(l))
	}
	return cell.Layout
}

// call implements spec.md §4.4's call f(a0..an). The callee convention
// reuses Instruction.Conv (ConvSink means f itself is consumed; any
// other value means f must resolve to a borrow or a constant), since
// the IR otherwise has no separate notion of "receiver effect".
func (in *Interpreter) call(ctx *frame.Context, instr *ir.Instruction) {
	callee := instr.Operands[0]
	if instr.Conv == ir.ConvSink {
		in.consume(ctx, callee, instr.ID, 0)
	} else if !callee.IsConst {
		e, ok := ctx.Locals[callee.Local]
		if !ok || e.Kind != frame.EntryLocations {
			bug.Bug("xfer: instruction %%%d: call callee %v is neither a borrow nor a constant", instr.ID, callee)
		}
	}
	for i, a := range instr.Operands[1:] {
		conv := instr.ArgConvs[i]
		site := i + 1
		switch conv {
		case ir.ConvLet, ir.ConvInout:
			if !a.IsConst {
				e, ok := ctx.Locals[a.Local]
				if !ok || e.Kind != frame.EntryLocations {
					bug.Bug("xfer: instruction %%%d: call argument %v is neither a borrow nor a constant", instr.ID, a)
				}
			}
		case ir.ConvSet:
			locs := in.requireLocations(ctx, a, instr.ID)
			for _, l := range locs {
				cell, ok := in.cellOf(ctx, l)
				if !ok {
					bug.Bug("xfer: instruction %%%d: call set-argument location %v not present in memory", instr.ID, in.Locs.Location(l))
				}
				in.requireOverwritable(cell.Value, instr.ID)
				in.setCellValue(ctx, l, state.NewFull(state.Init()))
			}
		case ir.ConvSink:
			in.consume(ctx, a, instr.ID, site)
		case ir.ConvYielded:
			bug.Bug("xfer: instruction %%%d: yielded argument convention is invalid at a call", instr.ID)
		default:
			bug.Bug("xfer: instruction %%%d: unknown argument convention %v", instr.ID, conv)
		}
	}
	in.bindResultsInitialized(ctx, instr)
}

// requireOverwritable asserts that v holds no initialized parts before
// a set-style overwrite (store, set-argument), per spec.md §4.4: this
// is an internal precondition, not a user diagnostic, since a
// well-formed frontend only emits such a write once the prior content
// has been deinitialized (directly or via a preceding set-borrow
// acquisition). Consumed or uninitialized content may always be
// overwritten; only a live initialized part violates the precondition.
func (in *Interpreter) requireOverwritable(v state.Value, instrID ir.InstID) {
	if v.IsFull {
		if v.Full.Atom == state.Initialized {
			bug.Bug("xfer: instruction %%%d: overwrite target still holds an initialized value", instrID)
		}
		return
	}
	if paths := v.PathsOf(); len(paths.Initialized) > 0 {
		bug.Bug("xfer: instruction %%%d: overwrite target still holds a partially initialized value", instrID)
	}
}

// deallocStack implements spec.md §4.4's dealloc-stack addr.
func (in *Interpreter) deallocStack(ctx *frame.Context, instr *ir.Instruction) Result {
	locs := in.requireLocations(ctx, instr.Operands[0], instr.ID)
	if len(locs) != 1 {
		bug.Bug("xfer: instruction %%%d: dealloc-stack address does not resolve to a unique location", instr.ID)
	}
	l := locs[0]
	cell, ok := ctx.Memory[l]
	if !ok {
		bug.Bug("xfer: instruction %%%d: dealloc-stack location %v not live", instr.ID, in.Locs.Location(l))
	}
	paths := cell.Value.InitializedPaths()
	edited := in.InsertDeinit(instr.Operands[0], cell.Layout, paths, instr.ID)
	delete(ctx.Memory, l)
	return Result{Edited: edited}
}

// destructure implements spec.md §4.4's destructure whole → r0..rn.
func (in *Interpreter) destructure(ctx *frame.Context, instr *ir.Instruction) {
	in.consume(ctx, instr.Operands[0], instr.ID, 0)
	in.bindResultsInitialized(ctx, instr)
}

// elementAddr implements spec.md §4.4's element-addr base.path: a pure
// projection of the bound location set, never touching memory.
func (in *Interpreter) elementAddr(ctx *frame.Context, instr *ir.Instruction) {
	base := in.requireLocations(ctx, instr.Operands[0], instr.ID)
	result := make([]loc.ID, len(base))
	for i, l := range base {
		result[i] = in.Locs.Intern(loc.Extend(l, instr.Path))
	}
	ctx.Locals[instr.Result(0)] = frame.LocationsEntry(result...)
}

// load implements spec.md §4.4's load addr.
func (in *Interpreter) load(ctx *frame.Context, instr *ir.Instruction) {
	locs := in.requireLocations(ctx, instr.Operands[0], instr.ID)
	v := in.commonValue(ctx, locs, instr.ID)
	if in.reportUse(ctx, instr.ID, 0, v) {
		for _, l := range locs {
			in.setCellValue(ctx, l, state.NewFull(state.ConsumedBy(int(instr.ID))))
		}
	}
	in.bindResultsInitialized(ctx, instr)
}

// record implements spec.md §4.4's record op0..opn → r.
func (in *Interpreter) record(ctx *frame.Context, instr *ir.Instruction) {
	for i, o := range instr.Operands {
		in.consume(ctx, o, instr.ID, i)
	}
	in.bindResultsInitialized(ctx, instr)
}

// staticBranch implements spec.md §4.4's static-branch predicate
// subject → tIfTrue | tIfFalse. Only the initialized predicate is
// handled; everything else, including an undecidable subject value, is
// the "not implemented" fatal path.
func (in *Interpreter) staticBranch(ctx *frame.Context, instr *ir.Instruction) Result {
	if instr.Predicate != ir.PredInitialized {
		bug.Bug("xfer: instruction %%%d: static-branch predicate %v not implemented", instr.ID, instr.Predicate)
	}
	locs := in.requireLocations(ctx, instr.Operands[0], instr.ID)
	v := in.commonValue(ctx, locs, instr.ID)

	var keep, drop ir.BlockID
	switch {
	case v.IsFull && v.Full.Atom == state.Initialized:
		keep, drop = instr.Targets[0], instr.Targets[1]
	case v.IsFull && v.Full.Atom == state.Uninitialized:
		keep, drop = instr.Targets[1], instr.Targets[0]
	default:
		bug.Bug("xfer: instruction %%%d: static-branch subject state %v not implemented", instr.ID, v)
	}

	in.Edit.Replace(instr.ID, in.Edit.MakeBranch(keep, instr.ID))
	in.Edit.RemoveBlock(drop)
	return Result{BranchFolded: true, RemovedBlock: drop}
}

// store implements spec.md §4.4's store source → target.
func (in *Interpreter) store(ctx *frame.Context, instr *ir.Instruction) {
	source, target := instr.Operands[0], instr.Operands[1]
	in.consume(ctx, source, instr.ID, 0)
	locs := in.requireLocations(ctx, target, instr.ID)
	for _, l := range locs {
		cell, ok := in.cellOf(ctx, l)
		if !ok {
			bug.Bug("xfer: instruction %%%d: store target location %v not present in memory", instr.ID, in.Locs.Location(l))
		}
		in.requireOverwritable(cell.Value, instr.ID)
		in.setCellValue(ctx, l, state.NewFull(state.Init()))
	}
}
