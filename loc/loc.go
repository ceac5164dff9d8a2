// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loc implements abstract locations: opaque identifiers for
// storage, as defined in spec.md §3. Two operations observing the same
// location are known to alias; two observing different locations are
// known not to.
package loc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ownlang/objnorm/ir"
)

// Kind distinguishes the three location shapes.
type Kind int

const (
	KindArgument Kind = iota
	KindInstruction
	KindExtend
)

// ID is a location interned into a small int by a Table.
type ID int

// Location is an abstract location: argument(index) | instruction(block,
// address) | extend(parent, path). Equality is structural.
type Location struct {
	Kind Kind

	// Arg is valid iff Kind == KindArgument.
	Arg int

	// Block and Addr are valid iff Kind == KindInstruction: Addr is the
	// alloc-stack instruction that created this location.
	Block ir.BlockID
	Addr  ir.InstID

	// Parent and Path are valid iff Kind == KindExtend.
	Parent ID
	Path   []int
}

// Argument constructs the location bound to parameter i at function
// entry.
func Argument(i int) Location { return Location{Kind: KindArgument, Arg: i} }

// Instruction constructs the location allocated by the alloc-stack
// instruction addr in block b.
func Instruction(b ir.BlockID, addr ir.InstID) Location {
	return Location{Kind: KindInstruction, Block: b, Addr: addr}
}

// Extend constructs the location reached by projecting path out of
// parent, as element-addr does.
func Extend(parent ID, path []int) Location {
	return Location{Kind: KindExtend, Parent: parent, Path: append([]int(nil), path...)}
}

// key returns a string uniquely identifying l, such that two Locations
// have equal keys iff they are structurally equal. This is the
// generalization of rtcheck's StringSpace from interning strings to
// interning Location values: Table below interns on this key.
func (l Location) key() string {
	var b strings.Builder
	switch l.Kind {
	case KindArgument:
		b.WriteString("arg:")
		b.WriteString(strconv.Itoa(l.Arg))
	case KindInstruction:
		b.WriteString("inst:")
		b.WriteString(strconv.Itoa(int(l.Block)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(l.Addr)))
	case KindExtend:
		b.WriteString("ext:")
		b.WriteString(strconv.Itoa(int(l.Parent)))
		for _, p := range l.Path {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(p))
		}
	default:
		panic(fmt.Sprintf("loc: unknown Kind %d", l.Kind))
	}
	return b.String()
}

func (l Location) String() string {
	switch l.Kind {
	case KindArgument:
		return fmt.Sprintf("argument(%d)", l.Arg)
	case KindInstruction:
		return fmt.Sprintf("instruction(b%d, %%%d)", l.Block, l.Addr)
	case KindExtend:
		return fmt.Sprintf("extend(%d, %v)", l.Parent, l.Path)
	default:
		return fmt.Sprintf("Location(kind=%d)", l.Kind)
	}
}

// Table interns Locations into small, dense IDs, the way rtcheck's
// StringSpace interns strings into small ints (main.go's StringSpace).
type Table struct {
	m map[string]ID
	s []Location
}

// NewTable returns a new, empty Table.
func NewTable() *Table {
	return &Table{m: make(map[string]ID)}
}

// Intern turns l into a small integer where Intern(x) == Intern(y) iff
// x == y.
func (t *Table) Intern(l Location) ID {
	if id, ok := t.m[l.key()]; ok {
		return id
	}
	id := ID(len(t.s))
	t.s = append(t.s, l)
	t.m[l.key()] = id
	return id
}

// TryIntern interns l if it has been interned before. Otherwise it does
// not intern l and returns 0, false.
func (t *Table) TryIntern(l Location) (ID, bool) {
	id, ok := t.m[l.key()]
	return id, ok
}

// Location returns the Location that interned to id.
func (t *Table) Location(id ID) Location {
	return t.s[id]
}
