// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import "github.com/ownlang/objnorm/ir"

// blockGraph adapts an *ir.Function's basic blocks to the biGraph
// interface. Node positions are assigned densely over the blocks
// actually present in fn.Blocks at construction time and translated
// back to ir.BlockID via ids; this indirection is what lets the graph
// algorithms below assume dense 0-based nodes even though RemoveBlock
// leaves surviving blocks' ids stable but not necessarily dense (spec.md
// §4.6's fold leaves a hole where the removed block's id used to be).
type blockGraph struct {
	fn    *ir.Function
	ids   []ir.BlockID       // position -> block id
	toPos map[ir.BlockID]int // block id -> position
}

func newBlockGraph(fn *ir.Function) blockGraph {
	g := blockGraph{
		fn:    fn,
		ids:   make([]ir.BlockID, len(fn.Blocks)),
		toPos: make(map[ir.BlockID]int, len(fn.Blocks)),
	}
	for i, b := range fn.Blocks {
		g.ids[i] = b.ID
		g.toPos[b.ID] = i
	}
	return g
}

func (g blockGraph) numNodes() int { return len(g.ids) }

func (g blockGraph) out(i int) []int {
	succs := g.fn.Block(g.ids[i]).Succs
	out := make([]int, len(succs))
	for j, s := range succs {
		out[j] = g.toPos[s]
	}
	return out
}

func (g blockGraph) in(i int) []int {
	preds := g.fn.Block(g.ids[i]).Preds
	in := make([]int, len(preds))
	for j, p := range preds {
		in[j] = g.toPos[p]
	}
	return in
}

// idom returns the immediate dominator of each node of g, or -1 for
// nodes (including root) that have no immediate dominator.
//
// This implements the "engineered algorithm" of Cooper, Harvey, and
// Kennedy, "A Simple, Fast Dominance Algorithm", 2001.
func idom(g biGraph, root int) []int {
	po := postOrder(g, root)

	// poNum maps from node to post-order name, for the "intersect"
	// routine below.
	poNum := make([]int, g.numNodes())
	for i, n := range po {
		poNum[n] = i
	}

	rpo := reverseInts(po)

	idom := make([]int, g.numNodes())
	for i := range idom {
		idom[i] = -1
	}
	idom[root] = root

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == root {
				continue
			}

			newIdom := -1
			for _, p := range g.in(b) {
				if idom[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, poNum, p, newIdom)
			}

			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	idom[root] = -1 // clear root's self-loop

	return idom
}

func intersect(idom, poNum []int, b1, b2 int) int {
	for b1 != b2 {
		for poNum[b1] < poNum[b2] {
			b1 = idom[b1]
		}
		for poNum[b2] < poNum[b1] {
			b2 = idom[b2]
		}
	}
	return b1
}

// DominatorTree is the dominator tree of a single ir.Function's CFG,
// the consumed interface of spec.md §6.
type DominatorTree struct {
	ids      []ir.BlockID
	toPos    map[ir.BlockID]int
	idom     []int
	children [][]int
}

// BuildDominatorTree computes fn's dominator tree, rooted at block 0.
// Callers must call it again after any edit that adds, removes, or
// reroutes blocks (spec.md §4.6's CFG-edit-then-recompute discipline).
func BuildDominatorTree(fn *ir.Function) *DominatorTree {
	g := newBlockGraph(fn)
	root := g.toPos[0]
	id := idom(g, root)

	children := make([][]int, len(id))
	cspace := make([]int, len(id))
	for _, parent := range id {
		if parent != -1 {
			cspace[parent]++
		}
	}
	used := 0
	for i, n := range cspace {
		children[i] = cspace[used:used : used+n]
		used += n
	}
	for node, parent := range id {
		if parent != -1 {
			children[parent] = append(children[parent], node)
		}
	}

	return &DominatorTree{ids: g.ids, toPos: g.toPos, idom: id, children: children}
}

// ImmediateDominator returns of's immediate dominator, or false if of
// has none (of is the root, is unreachable, or no longer exists).
func (t *DominatorTree) ImmediateDominator(of ir.BlockID) (ir.BlockID, bool) {
	pos, ok := t.toPos[of]
	if !ok {
		return 0, false
	}
	d := t.idom[pos]
	if d == -1 {
		return 0, false
	}
	return t.ids[d], true
}

// Dominates reports whether a dominates b (reflexively: a dominates
// itself). Reports false if either block no longer exists in the tree.
func (t *DominatorTree) Dominates(a, b ir.BlockID) bool {
	n, ok := t.toPos[b]
	if !ok {
		return false
	}
	target, ok := t.toPos[a]
	if !ok {
		return false
	}
	for {
		if n == target {
			return true
		}
		p := t.idom[n]
		if p == -1 || p == n {
			return n == target
		}
		n = p
	}
}

// BFS returns every block reachable from the root in dominator-tree
// breadth-first order: the root first, then its children, then their
// children, and so on. This is the traversal the pass's work-list
// driver seeds its initial queue from (spec.md §4.1), so that a block
// is never processed before at least one of its dominator-tree
// ancestors has been.
func (t *DominatorTree) BFS() []ir.BlockID {
	order := make([]ir.BlockID, 0, len(t.idom))
	queue := []int{t.toPos[0]}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, t.ids[n])
		queue = append(queue, t.children[n]...)
	}
	return order
}
