// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state implements the State atom lattice and the Value lattice
// built on top of it (spec.md §3). A Value is either Full (one State
// shared by every byte of an object) or Partial (one Value per
// sub-object slot, fixed by the type's layout).
package state

import (
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// Atom is one of the three initialization states an object's storage
// can be in.
type Atom int

const (
	Uninitialized Atom = iota
	Initialized
	Consumed
)

func (a Atom) String() string {
	switch a {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Consumed:
		return "consumed"
	default:
		return fmt.Sprintf("Atom(%d)", int(a))
	}
}

// State is one atom of the lattice. By is only meaningful when Atom ==
// Consumed, and must then be non-empty: the instruction ids that moved
// the object (more than one only after a merge unions two consumer
// sets).
type State struct {
	Atom Atom
	By   intsets.Sparse
}

// Init returns the initialized State.
func Init() State { return State{Atom: Initialized} }

// Uninit returns the uninitialized State.
func Uninit() State { return State{Atom: Uninitialized} }

// ConsumedBy returns the state "consumed by instruction i".
func ConsumedBy(i int) State {
	var s State
	s.Atom = Consumed
	s.By.Insert(i)
	return s
}

// Equal reports whether s and o are the same State, including an equal
// consumer set when both are Consumed.
func (s State) Equal(o State) bool {
	if s.Atom != o.Atom {
		return false
	}
	if s.Atom == Consumed {
		return s.By.Equals(&o.By)
	}
	return true
}

func (s State) String() string {
	if s.Atom == Consumed {
		return fmt.Sprintf("consumed(by %s)", s.By.String())
	}
	return s.Atom.String()
}

// Merge computes a ⊓ b, the conservative-superposition merge of
// spec.md §3: Consumed dominates Initialized and Uninitialized (union
// of consumer sets when both sides are Consumed); otherwise
// Uninitialized dominates Initialized. This is deliberately not a
// classical lattice join — an object live on only one incoming path is
// conservatively treated as uninitialized on the merged path, so that
// use-after-partial-init is caught. Preserve this asymmetry; do not
// "fix" it into a symmetric join.
func Merge(a, b State) State {
	if a.Atom == Consumed && b.Atom == Consumed {
		var by intsets.Sparse
		by.Copy(&a.By)
		by.UnionWith(&b.By)
		return State{Atom: Consumed, By: by}
	}
	if a.Atom == Consumed {
		return a
	}
	if b.Atom == Consumed {
		return b
	}
	if a.Atom == Uninitialized || b.Atom == Uninitialized {
		return Uninit()
	}
	return Init()
}
