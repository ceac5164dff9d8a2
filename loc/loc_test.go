// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loc

import (
	"reflect"
	"testing"

	"github.com/ownlang/objnorm/ir"
)

func TestTableInternIsStable(t *testing.T) {
	tab := NewTable()
	a := tab.Intern(Argument(0))
	b := tab.Intern(Instruction(1, 4))
	a2 := tab.Intern(Argument(0))
	if a != a2 {
		t.Errorf("Intern(Argument(0)) not stable: %d vs %d", a, a2)
	}
	if a == b {
		t.Errorf("distinct locations interned to the same id")
	}
	if !reflect.DeepEqual(tab.Location(a), Location{Kind: KindArgument, Arg: 0}) {
		t.Errorf("Table.Location round-trip failed for argument")
	}
}

func TestTableTryIntern(t *testing.T) {
	tab := NewTable()
	if _, ok := tab.TryIntern(Argument(0)); ok {
		t.Errorf("TryIntern found an id before Intern was ever called")
	}
	want := tab.Intern(Argument(0))
	got, ok := tab.TryIntern(Argument(0))
	if !ok || got != want {
		t.Errorf("TryIntern after Intern: got (%d, %v), want (%d, true)", got, ok, want)
	}
}

func TestExtendDistinguishesPaths(t *testing.T) {
	tab := NewTable()
	root := tab.Intern(Instruction(ir.BlockID(0), ir.InstID(1)))
	a := tab.Intern(Extend(root, []int{0}))
	b := tab.Intern(Extend(root, []int{1}))
	c := tab.Intern(Extend(root, []int{0}))
	if a == b {
		t.Errorf("extend(root, [0]) and extend(root, [1]) interned to the same id")
	}
	if a != c {
		t.Errorf("extend(root, [0]) interned twice to different ids: %d vs %d", a, c)
	}
}
