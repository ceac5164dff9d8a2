// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"reflect"
	"testing"
)

func TestCanonicalCollapse(t *testing.T) {
	v := NewPartial([]Value{NewFull(Init()), NewFull(Init()), NewFull(Init())})
	want := NewFull(Init())
	if !v.Equal(want) {
		t.Errorf("partial([full(i), full(i), full(i)]) = %v, want %v", v, want)
	}
}

func TestNoCollapseOnMixedChildren(t *testing.T) {
	v := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	if v.IsFull {
		t.Errorf("partial([full(i), full(u)]) incorrectly collapsed to %v", v)
	}
}

func TestInitializedPaths(t *testing.T) {
	if got := NewFull(Init()).InitializedPaths(); !reflect.DeepEqual(got, [][]int{{}}) {
		t.Errorf("full(initialized).InitializedPaths() = %v, want [[]]", got)
	}
	if got := NewFull(Uninit()).InitializedPaths(); got != nil {
		t.Errorf("full(uninitialized).InitializedPaths() = %v, want nil", got)
	}

	v := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	got := v.InitializedPaths()
	want := [][]int{{0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("partial([full(i), full(u)]).InitializedPaths() = %v, want %v", got, want)
	}
}

func TestPathsOfClassifiesLeaves(t *testing.T) {
	if p := NewFull(Init()).PathsOf(); p != nil {
		t.Errorf("PathsOf on a Full value = %v, want nil", p)
	}

	v := NewPartial([]Value{NewFull(Init()), NewFull(ConsumedBy(7))})
	p := v.PathsOf()
	if p == nil {
		t.Fatal("PathsOf on a Partial value returned nil")
	}
	if !reflect.DeepEqual(p.Initialized, [][]int{{0}}) {
		t.Errorf("Initialized = %v, want [[0]]", p.Initialized)
	}
	if !reflect.DeepEqual(p.Consumed, [][]int{{1}}) {
		t.Errorf("Consumed = %v, want [[1]]", p.Consumed)
	}
	if len(p.Uninitialized) != 0 {
		t.Errorf("Uninitialized = %v, want empty", p.Uninitialized)
	}
}

func TestDifference(t *testing.T) {
	before := NewPartial([]Value{NewFull(Uninit()), NewFull(Uninit())})
	after := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	got := after.Difference(before)
	want := [][]int{{0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Difference = %v, want %v", got, want)
	}
	if got := before.Difference(after); len(got) != 0 {
		t.Errorf("reverse Difference = %v, want empty", got)
	}
}

// TestPathsOfNestedOrderingMatchesInitializedPaths pins outermost-index-
// first path ordering for a nested Partial, the same ordering
// InitializedPaths produces: index 2 at the top level holds a nested
// Partial whose index 1 is full(initialized), so the leaf's path must
// be [2, 1] from both functions, not [1, 2].
func TestPathsOfNestedOrderingMatchesInitializedPaths(t *testing.T) {
	nested := NewPartial([]Value{NewFull(Uninit()), NewFull(Init())})
	v := NewPartial([]Value{NewFull(Uninit()), NewFull(Uninit()), nested})

	wantPath := []int{2, 1}

	ip := v.InitializedPaths()
	if !reflect.DeepEqual(ip, [][]int{wantPath}) {
		t.Fatalf("InitializedPaths() = %v, want %v", ip, [][]int{wantPath})
	}

	got := v.PathsOf()
	if !reflect.DeepEqual(got.Initialized, [][]int{wantPath}) {
		t.Errorf("PathsOf().Initialized = %v, want %v", got.Initialized, [][]int{wantPath})
	}
}

func TestMergeValueRecursesIntoPartial(t *testing.T) {
	a := NewPartial([]Value{NewFull(Init()), NewFull(Init())})
	b := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	got := MergeValue(a, b)
	want := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	if !got.Equal(want) {
		t.Errorf("MergeValue(%v, %v) = %v, want %v", a, b, got, want)
	}
}

// TestMergeValueWidensFullAgainstPartial covers the join shape spec.md
// §8 scenario 3 produces: one arm never splits the object (stays
// Full), the other narrows one slot to Partial. The Full side widens
// to the Partial side's arity, repeating its one atom at every slot,
// before the per-slot merge proceeds.
func TestMergeValueWidensFullAgainstPartial(t *testing.T) {
	full := NewFull(Init())
	partial := NewPartial([]Value{NewFull(ConsumedBy(1)), NewFull(Init())})
	got := MergeValue(full, partial)
	want := NewPartial([]Value{NewFull(ConsumedBy(1)), NewFull(Init())})
	if !got.Equal(want) {
		t.Errorf("MergeValue(%v, %v) = %v, want %v", full, partial, got, want)
	}
}

func TestMergeValuePartialArityMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MergeValue with mismatched Partial arities did not panic")
		}
	}()
	// Mixed children keep both values Partial; equal children would
	// collapse to Full and merge without any arity check.
	a := NewPartial([]Value{NewFull(Init()), NewFull(Uninit())})
	b := NewPartial([]Value{NewFull(Init()), NewFull(Uninit()), NewFull(Init())})
	MergeValue(a, b)
}
