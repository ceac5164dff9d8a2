// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfg builds dominator trees over an ir.Function's control-flow
// graph, and provides the block-visitation order the pass's work-list
// driver seeds itself from (spec.md §4.1).
package cfg

// graph and biGraph are the node-agnostic shapes the dominance and
// ordering algorithms below are written against; blockGraph (in
// dom.go) implements them over an *ir.Function's blocks. Nodes are
// densely numbered starting at 0; blockGraph maps each node position
// to its ir.BlockID, which need not equal the position.
type graph interface {
	numNodes() int
	out(i int) []int
}

type biGraph interface {
	graph
	in(i int) []int
}
