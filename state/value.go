// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "fmt"

// Value is an object's state: either Full (every byte shares one
// State) or Partial (one Value per sub-object slot). A Partial whose
// children are all Full with the same State is non-canonical; use
// NewPartial (never construct Value{} literals with Children set)
// so that canonicalization is never skipped.
type Value struct {
	IsFull   bool
	Full     State
	Children []Value // valid iff !IsFull
}

// NewFull returns the Full value with state s.
func NewFull(s State) Value {
	return Value{IsFull: true, Full: s}
}

// NewPartial returns the canonical form of a Partial value with the
// given per-slot children. If every child is Full with an equal State,
// the result collapses to that Full value (the canonical-collapse law
// of spec.md §8).
func NewPartial(children []Value) Value {
	if len(children) == 0 {
		panic("state: NewPartial called with no children")
	}
	if allEqualFull(children) {
		return children[0]
	}
	return Value{Children: append([]Value(nil), children...)}
}

func allEqualFull(children []Value) bool {
	if !children[0].IsFull {
		return false
	}
	first := children[0].Full
	for _, c := range children[1:] {
		if !c.IsFull || !c.Full.Equal(first) {
			return false
		}
	}
	return true
}

// Equal reports whether v and o are the same canonical Value.
func (v Value) Equal(o Value) bool {
	if v.IsFull != o.IsFull {
		return false
	}
	if v.IsFull {
		return v.Full.Equal(o.Full)
	}
	if len(v.Children) != len(o.Children) {
		return false
	}
	for i := range v.Children {
		if !v.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.IsFull {
		return v.Full.String()
	}
	return fmt.Sprintf("partial%v", v.Children)
}

// Merge computes a ⊓ b over Values, recursing per slot for Partial
// values. A Value that reached the join Full while the other reached
// it Partial (one path touched a sub-object slot, the other never
// split the object at all — spec.md §8 scenario 3's shape) is widened
// to the Partial side's arity first, repeating the Full side's one
// atom at every slot; the widened form is never stored, only merged
// per-slot and re-canonicalized by NewPartial below. A genuine arity
// mismatch between two Partial values, which a well-typed IR never
// produces at a join, remains a bug in the pass.
func MergeValue(a, b Value) Value {
	if a.IsFull && !b.IsFull {
		a = widenTo(a, b)
	} else if b.IsFull && !a.IsFull {
		b = widenTo(b, a)
	}
	if a.IsFull {
		return NewFull(Merge(a.Full, b.Full))
	}
	if len(a.Children) != len(b.Children) {
		panic(fmt.Sprintf("state: MergeValue: arity mismatch between %v and %v", a, b))
	}
	children := make([]Value, len(a.Children))
	for i := range children {
		children[i] = MergeValue(a.Children[i], b.Children[i])
	}
	return NewPartial(children)
}

// widenTo reshapes full (which must be IsFull) into an uncanonicalized
// Partial matching shape's structure, so that a per-slot merge against
// shape can proceed. full's one atom is repeated at every leaf.
func widenTo(full, shape Value) Value {
	if shape.IsFull {
		return full
	}
	children := make([]Value, len(shape.Children))
	for i, c := range shape.Children {
		children[i] = widenTo(full, c)
	}
	return Value{Children: children}
}

// InitializedPaths returns the slot-path vectors pointing to
// full(initialized) leaves. If v itself is full(initialized), the
// result is the single empty path.
func (v Value) InitializedPaths() [][]int {
	if v.IsFull {
		if v.Full.Atom == Initialized {
			return [][]int{{}}
		}
		return nil
	}
	var out [][]int
	for i, c := range v.Children {
		for _, p := range c.InitializedPaths() {
			out = append(out, prepend(i, p))
		}
	}
	return out
}

// Paths is the {initialized, uninitialized, consumed} leaf-path view
// of a Partial Value, used by borrow(let) to distinguish
// "partially consumed" from "partially initialized".
type Paths struct {
	Initialized   [][]int
	Uninitialized [][]int
	Consumed      [][]int
}

// PathsOf returns v's leaf classification, or nil if v is Full (per
// spec.md §4.5, populated only for Partial values).
func (v Value) PathsOf() *Paths {
	if v.IsFull {
		return nil
	}
	init, uninit, consumed := pathsOfWalk(v)
	return &Paths{Initialized: init, Uninitialized: uninit, Consumed: consumed}
}

// pathsOfWalk returns cur's leaf paths bucketed by atom, recursing into
// children before prepending each child's index onto its paths — the
// same recurse-then-prepend order InitializedPaths builds paths in, so
// the two path-producing functions agree on outermost-index-first
// ordering for the same leaf.
func pathsOfWalk(cur Value) (init, uninit, consumed [][]int) {
	if cur.IsFull {
		switch cur.Full.Atom {
		case Initialized:
			return [][]int{{}}, nil, nil
		case Uninitialized:
			return nil, [][]int{{}}, nil
		case Consumed:
			return nil, nil, [][]int{{}}
		}
		return nil, nil, nil
	}
	for i, c := range cur.Children {
		ci, cu, cc := pathsOfWalk(c)
		for _, p := range ci {
			init = append(init, prepend(i, p))
		}
		for _, p := range cu {
			uninit = append(uninit, prepend(i, p))
		}
		for _, p := range cc {
			consumed = append(consumed, prepend(i, p))
		}
	}
	return
}

// Difference returns the paths initialized in v but not in o: used
// when a set-borrow encounters memory that is only partially
// initialized, to know which slots need a deinitialization sequence.
func (v Value) Difference(o Value) [][]int {
	oSet := make(map[string]bool)
	for _, p := range o.InitializedPaths() {
		oSet[pathKey(p)] = true
	}
	var out [][]int
	for _, p := range v.InitializedPaths() {
		if !oSet[pathKey(p)] {
			out = append(out, p)
		}
	}
	return out
}

func prepend(i int, path []int) []int {
	out := make([]int, 0, len(path)+1)
	out = append(out, i)
	out = append(out, path...)
	return out
}

func pathKey(p []int) string {
	b := make([]byte, 0, len(p)*2)
	for _, x := range p {
		b = append(b, byte(x), ':')
	}
	return string(b)
}
