// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"golang.org/x/tools/container/intsets"

	"github.com/ownlang/objnorm/cfg"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/frame"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/layout"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/xfer"
)

// blockContexts is the cached (before, after) pair the driver keeps for
// one block (spec.md §4.1's "contexts[b] = (before, after)").
type blockContexts struct {
	before *frame.Context
	after  *frame.Context
}

// driver is the fixed-point work-list driver of spec.md §4.1, scoped to
// a single function for the duration of one run (spec.md §5).
type driver struct {
	fn    *ir.Function
	entry ir.BlockID
	in    *xfer.Interpreter

	dom *cfg.DominatorTree

	contexts map[ir.BlockID]*blockContexts
	done     intsets.Sparse

	queue  []ir.BlockID
	queued intsets.Sparse
}

// run drives fn's object-state normalization to a fixed point, per
// spec.md §4.1, mutating fn in place (deinitialization insertion,
// static-branch folding) and appending diagnostics to diags. It
// returns the driver so tests in this package can inspect the final
// contexts/done state directly (invariants I3/I4 of spec.md §8);
// NormalizeObjectStates itself ignores the return value.
func run(fn *ir.Function, types layout.AbstractTypeLayout, diags *diag.Set, funcID ir.FuncID) *driver {
	d := &driver{
		fn:       fn,
		entry:    fn.Blocks[0].ID,
		contexts: make(map[ir.BlockID]*blockContexts),
		dom:      cfg.BuildDominatorTree(fn),
	}
	d.in = &xfer.Interpreter{
		Types: types,
		Locs:  loc.NewTable(),
		Diags: diags,
		Edit:  fn,
		Func:  funcID,
	}
	d.seed(d.dom.BFS())
	d.drain()
	return d
}

// seed enqueues every block in order that is not already done, the
// way the driver (re)populates its work list both at start-up and
// after a static-branch fold (spec.md §4.1's "rewriter interaction").
func (d *driver) seed(order []ir.BlockID) {
	for _, b := range order {
		if d.done.Has(int(b)) {
			continue
		}
		d.enqueue(b)
	}
}

// enqueue appends b to the tail of the work list, unless it is already
// present — the work list is a set, per spec.md §9's open question
// ("implementers should assert the work list is a set").
func (d *driver) enqueue(b ir.BlockID) {
	if d.queued.Has(int(b)) {
		return
	}
	d.queued.Insert(int(b))
	d.queue = append(d.queue, b)
}

// drain pops blocks off the work list until it is empty, visiting
// each one.
func (d *driver) drain() {
	for len(d.queue) > 0 {
		b := d.queue[0]
		d.queue = d.queue[1:]
		d.queued.Remove(int(b))
		d.visit(b)
	}
}

// visit processes one pop of the work list for block b, per spec.md
// §4.1 steps 1–5.
func (d *driver) visit(b ir.BlockID) {
	if !d.visitable(b) {
		d.enqueue(b)
		return
	}

	block := d.fn.Block(b)

	if b == d.entry {
		d.visitEntry(b, block)
		return
	}

	visited := d.visitedPredAfters(block)
	if len(visited) == 0 {
		// No predecessor has been visited yet even though the gate
		// passed (can only happen transiently right after a fold);
		// come back once one has.
		d.enqueue(b)
		return
	}
	newBefore := frame.Merge(visited)

	prev, existed := d.contexts[b]
	changed := !existed || !newBefore.Equal(prev.before)

	var after *frame.Context
	var edited bool
	sameAfter := false
	if changed {
		after, edited = d.interpretBlock(block, newBefore)
		if existed {
			sameAfter = after.Equal(prev.after)
		}
	} else {
		after = prev.after
		sameAfter = true
	}
	d.contexts[b] = &blockContexts{before: newBefore, after: after}

	allPredsDone := true
	onlySelfUnfinished := true
	for _, p := range block.Preds {
		if d.done.Has(int(p)) {
			continue
		}
		allPredsDone = false
		if p != b {
			onlySelfUnfinished = false
		}
	}

	finished := !edited && (allPredsDone || (onlySelfUnfinished && sameAfter))
	if finished {
		d.done.Insert(int(b))
		return
	}
	d.enqueue(b)
}

// visitEntry handles the entry block's special case (spec.md §4.1 step
// 2): before comes from the function signature on the first visit and
// never changes afterward; a revisit (triggered only by a deinit
// insertion on the prior visit, see xfer.Result.Edited) reinterprets
// the same before against the block's now-longer instruction list.
func (d *driver) visitEntry(b ir.BlockID, block *ir.Block) {
	prev, existed := d.contexts[b]
	var before *frame.Context
	if existed {
		before = prev.before
	} else {
		before = frame.NewEntryContext(d.fn.Sig, d.in.Locs)
	}
	after, edited := d.interpretBlock(block, before)
	d.contexts[b] = &blockContexts{before: before, after: after}
	if edited {
		d.enqueue(b)
		return
	}
	d.done.Insert(int(b))
}

// interpretBlock reinterprets block's entire current instruction list
// from scratch against a fresh clone of before. The instruction-id
// list is snapshotted up front: instructions spliced in by this same
// call's own deinitialization insertions are deliberately left for the
// next visit to interpret (spec.md §4.6's "interpreted on the next
// iteration of the driver"), which is also what makes a revisit of
// dealloc-stack or a set-borrow safe — by the time either instruction
// re-runs on the next visit, the just-inserted element-addr/load/deinit
// sequence ahead of it in the snapshot has already consumed the
// content it is about to discard.
func (d *driver) interpretBlock(block *ir.Block, before *frame.Context) (after *frame.Context, edited bool) {
	ctx := before.Clone()
	ids := append([]ir.InstID(nil), block.Instrs...)
	for _, id := range ids {
		instr := d.fn.Instr(id)
		res := d.in.Transfer(ctx, instr)
		if res.Edited {
			edited = true
		}
		if res.BranchFolded {
			d.onFold(res.RemovedBlock)
		}
	}
	return ctx, edited
}

// visitedPredAfters returns the after-Context of every predecessor of
// block that has been visited at least once, per spec.md §4.1 step 3's
// "merging the after of every visited predecessor".
func (d *driver) visitedPredAfters(block *ir.Block) []*frame.Context {
	var out []*frame.Context
	for _, p := range block.Preds {
		if c, ok := d.contexts[p]; ok {
			out = append(out, c.after)
		}
	}
	return out
}

// visitable implements spec.md §4.1 step 1: b is visitable iff its
// immediate dominator is done and every predecessor is either done or
// dominated by b (a back-edge from a descendant, not yet stable).
func (d *driver) visitable(b ir.BlockID) bool {
	if b == d.entry {
		return true
	}
	if idom, ok := d.dom.ImmediateDominator(b); ok && !d.done.Has(int(idom)) {
		return false
	}
	block := d.fn.Block(b)
	for _, p := range block.Preds {
		if d.done.Has(int(p)) {
			continue
		}
		if d.dom.Dominates(b, p) {
			continue
		}
		return false
	}
	return true
}
