// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame implements the Context model of spec.md §3–§4.2: the
// pair of maps a transfer function reads and mutates, and the merge
// operator the fixed-point driver applies at join blocks.
package frame

import (
	"fmt"

	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// EntryKind distinguishes the two shapes a local can be bound to.
type EntryKind int

const (
	EntryObject EntryKind = iota
	EntryLocations
)

// Entry is a Context.Locals value: either an owned Object value or a
// non-empty set of Locations, per spec.md §3's "An SSA result of
// pointer/address type yields Locations; any other result yields
// Object".
type Entry struct {
	Kind EntryKind
	Obj  state.Value // valid iff Kind == EntryObject
	Locs []loc.ID    // valid iff Kind == EntryLocations; never empty
}

// ObjectEntry wraps an owned object value.
func ObjectEntry(v state.Value) Entry {
	return Entry{Kind: EntryObject, Obj: v}
}

// LocationsEntry wraps a non-empty set of locations. It is a
// precondition failure to call this with no locations (invariant 2).
func LocationsEntry(ls ...loc.ID) Entry {
	if len(ls) == 0 {
		bug.Bug("frame: LocationsEntry called with no locations")
	}
	return Entry{Kind: EntryLocations, Locs: append([]loc.ID(nil), ls...)}
}

// Equal reports whether e and o are the same Entry, treating Locs as a
// set.
func (e Entry) Equal(o Entry) bool {
	if e.Kind != o.Kind {
		return false
	}
	if e.Kind == EntryObject {
		return e.Obj.Equal(o.Obj)
	}
	if len(e.Locs) != len(o.Locs) {
		return false
	}
	have := make(map[loc.ID]bool, len(e.Locs))
	for _, l := range e.Locs {
		have[l] = true
	}
	for _, l := range o.Locs {
		if !have[l] {
			return false
		}
	}
	return true
}

func (e Entry) String() string {
	if e.Kind == EntryObject {
		return fmt.Sprintf("Object(%v)", e.Obj)
	}
	return fmt.Sprintf("Locations(%v)", e.Locs)
}

// MergeEntry computes e ⊓ o, per spec.md §4.2: Object merges the
// underlying Value, Locations merges by set union. Mixing Object and
// Locations at the same local is a pass invariant violation.
func MergeEntry(e, o Entry) Entry {
	if e.Kind != o.Kind {
		bug.Bug("frame: cannot merge an Object entry with a Locations entry (%v, %v)", e, o)
	}
	if e.Kind == EntryObject {
		return ObjectEntry(state.MergeValue(e.Obj, o.Obj))
	}
	return LocationsEntry(unionLocs(e.Locs, o.Locs)...)
}

func unionLocs(a, b []loc.ID) []loc.ID {
	seen := make(map[loc.ID]bool, len(a)+len(b))
	out := make([]loc.ID, 0, len(a)+len(b))
	for _, l := range a {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, l := range b {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
