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

// memory keys only ever hold a root location's (Argument or
// Instruction-kind) Cell; an Extend location never gets an entry of
// its own. Reads and writes to extend(l, path) resolve through l's own
// Cell, indexed by the accumulated path — a single source of truth
// instead of keeping a root Cell and its extend-derived Cells in sync
// by hand. See DESIGN.md's xfer entry for the rationale.

// rootAndPath walks id's Extend chain back to its root location,
// accumulating the combined slot path.
func rootAndPath(tab *loc.Table, id loc.ID) (loc.ID, []int) {
	l := tab.Location(id)
	if l.Kind != loc.KindExtend {
		return id, nil
	}
	root, parentPath := rootAndPath(tab, l.Parent)
	path := make([]int, 0, len(parentPath)+len(l.Path))
	path = append(path, parentPath...)
	path = append(path, l.Path...)
	return root, path
}

// cellOf resolves id (root or extend) to its current Cell by reading
// through to the root's Cell and indexing by the accumulated path.
func (in *Interpreter) cellOf(ctx *frame.Context, id loc.ID) (frame.Cell, bool) {
	root, path := rootAndPath(in.Locs, id)
	rootCell, ok := ctx.Memory[root]
	if !ok {
		return frame.Cell{}, false
	}
	if len(path) == 0 {
		return rootCell, true
	}
	return frame.Cell{Layout: in.typeAtPath(rootCell.Layout, path), Value: valueAtPath(rootCell.Value, path)}, true
}

// setCellValue writes leaf as the Value observed at id (root or
// extend), widening any Full ancestor to Partial as needed.
func (in *Interpreter) setCellValue(ctx *frame.Context, id loc.ID, leaf state.Value) {
	root, path := rootAndPath(in.Locs, id)
	rootCell, ok := ctx.Memory[root]
	if !ok {
		bug.Bug("xfer: write to location %v with no live root cell", in.Locs.Location(root))
	}
	rootCell.Value = in.setValueAtPath(rootCell.Value, rootCell.Layout, path, leaf)
	ctx.Memory[root] = rootCell
}

// typeAtPath walks layout.Slot down path starting from root's type.
func (in *Interpreter) typeAtPath(root ir.Type, path []int) ir.Type {
	t := root
	for _, p := range path {
		t = in.Types.Slot(t, p)
	}
	return t
}

// valueAtPath reads the sub-Value at path. A Full value's sub-value at
// any path is itself: every byte shares one state, so there is nothing
// to descend into.
func valueAtPath(v state.Value, path []int) state.Value {
	cur := v
	for _, i := range path {
		if cur.IsFull {
			return cur
		}
		cur = cur.Children[i]
	}
	return cur
}

// setValueAtPath returns a copy of v with the sub-value at path
// replaced by leaf, widening any Full ancestor along the way into a
// Partial with rootType's slot count before descending.
func (in *Interpreter) setValueAtPath(v state.Value, rootType ir.Type, path []int, leaf state.Value) state.Value {
	if len(path) == 0 {
		return leaf
	}
	n := in.Types.NumSlots(rootType)
	if n == 0 {
		bug.Bug("xfer: element path %v indexes a scalar type", path)
	}
	children := make([]state.Value, n)
	for i := 0; i < n; i++ {
		if v.IsFull {
			children[i] = v
		} else {
			children[i] = v.Children[i]
		}
	}
	childType := in.Types.Slot(rootType, path[0])
	children[path[0]] = in.setValueAtPath(children[path[0]], childType, path[1:], leaf)
	return state.NewPartial(children)
}
