// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"testing"

	"github.com/ownlang/objnorm/ir"
)

// buildCFG builds a function whose blocks have the given successor
// lists, wiring up Preds to match.
func buildCFG(succs [][]int) *ir.Function {
	mod := ir.NewModule()
	fn := mod.NewFunction(ir.Signature{})
	for range succs {
		fn.NewBlock()
	}
	for i, out := range succs {
		b := fn.Block(ir.BlockID(i))
		for _, s := range out {
			b.Succs = append(b.Succs, ir.BlockID(s))
			sb := fn.Block(ir.BlockID(s))
			sb.Preds = append(sb.Preds, ir.BlockID(i))
		}
	}
	return fn
}

// graphMuchnick is the example graph from Muchnick, "Advanced Compiler
// Design & Implementation", figure 8.21.
func graphMuchnick() *ir.Function {
	return buildCFG([][]int{
		0: {1},
		1: {2},
		2: {3, 4},
		3: {2},
		4: {5, 6},
		5: {7},
		6: {7},
		7: {},
	})
}

// graphCS252 is the example graph from
// https://www.seas.harvard.edu/courses/cs252/2011sp/slides/Lec04-SSA.pdf
// slide 24.
func graphCS252() *ir.Function {
	return buildCFG([][]int{
		0: {1},
		1: {2, 5},
		2: {3, 4},
		3: {6},
		4: {6},
		5: {1, 7},
		6: {7},
		7: {8},
		8: {},
	})
}

func TestBuildDominatorTreeMuchnick(t *testing.T) {
	tree := BuildDominatorTree(graphMuchnick())
	want := []int{0: -1, 1: 0, 2: 1, 3: 2, 4: 2, 5: 4, 6: 4, 7: 4}
	for n, wantP := range want {
		got, ok := tree.ImmediateDominator(ir.BlockID(n))
		if wantP == -1 {
			if ok {
				t.Errorf("block %d: want no immediate dominator, got %d", n, got)
			}
			continue
		}
		if !ok || int(got) != wantP {
			t.Errorf("block %d: want idom %d, got %d (ok=%v)", n, wantP, got, ok)
		}
	}
}

func TestBuildDominatorTreeCS252(t *testing.T) {
	tree := BuildDominatorTree(graphCS252())
	want := []int{0: -1, 1: 0, 2: 1, 3: 2, 4: 2, 5: 1, 6: 2, 7: 1, 8: 7}
	for n, wantP := range want {
		got, ok := tree.ImmediateDominator(ir.BlockID(n))
		if wantP == -1 {
			if ok {
				t.Errorf("block %d: want no immediate dominator, got %d", n, got)
			}
			continue
		}
		if !ok || int(got) != wantP {
			t.Errorf("block %d: want idom %d, got %d (ok=%v)", n, wantP, got, ok)
		}
	}
}

func TestDominates(t *testing.T) {
	tree := BuildDominatorTree(graphCS252())
	// Block 1 dominates everything except block 0 (1 sits on every
	// path from the entry since 0's only successor is 1).
	for n := 1; n <= 8; n++ {
		if !tree.Dominates(1, ir.BlockID(n)) {
			t.Errorf("want block 1 to dominate block %d", n)
		}
	}
	if tree.Dominates(3, 4) {
		t.Errorf("block 3 must not dominate block 4 (siblings under block 2)")
	}
	if !tree.Dominates(0, 8) {
		t.Errorf("want block 0 (root) to dominate block 8")
	}
}

func TestDominatorTreeBFSOrdersParentsBeforeChildren(t *testing.T) {
	tree := BuildDominatorTree(graphCS252())
	order := tree.BFS()
	if len(order) != 9 {
		t.Fatalf("want 9 blocks in BFS order, got %d: %v", len(order), order)
	}
	pos := make(map[ir.BlockID]int, len(order))
	for i, b := range order {
		pos[b] = i
	}
	for n := 1; n <= 8; n++ {
		b := ir.BlockID(n)
		parent, ok := tree.ImmediateDominator(b)
		if !ok {
			continue
		}
		if pos[parent] >= pos[b] {
			t.Errorf("block %d (pos %d) must come after its dominator %d (pos %d) in BFS order", b, pos[b], parent, pos[parent])
		}
	}
}
