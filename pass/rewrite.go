// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"github.com/ownlang/objnorm/cfg"
	"github.com/ownlang/objnorm/ir"
)

// onFold reacts to a static-branch fold reported by xfer.Result
// (spec.md §4.1's "rewriter interaction"): the doomed successor is
// purged from every piece of driver state that might still name it,
// the CFG's dominator tree is rebuilt against the now-shorter block
// list, and the work list is reseeded from the new BFS order, skipping
// every block already done — "the re-seeded traversal preserves
// already-finished blocks".
func (d *driver) onFold(removed ir.BlockID) {
	d.purge(removed)
	d.dom = cfg.BuildDominatorTree(d.fn)
	d.seed(d.dom.BFS())
}

// purge drops removed from every work-list-adjacent set the driver
// keeps, by identity: the cached contexts, the done set, and the
// pending queue (and its membership set), so a stale reference to a
// block that no longer exists in fn.Blocks can never be visited.
func (d *driver) purge(removed ir.BlockID) {
	delete(d.contexts, removed)
	d.done.Remove(int(removed))
	d.queued.Remove(int(removed))
	j := 0
	for _, b := range d.queue {
		if b != removed {
			d.queue[j] = b
			j++
		}
	}
	d.queue = d.queue[:j]
}
