// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xfer

import "github.com/ownlang/objnorm/ir"

// InsertDeinit implements spec.md §4.6: for each path in paths, insert
// immediately before the instruction `before`, in order, an
// element-addr root.path, a load of that address, and a deinit of the
// loaded value. rootType is root's declared type, used to compute each
// path's projected slot type. dealloc-stack and set-borrow are the
// only two callers; the instructions inserted here are themselves
// interpreted the next time the driver revisits this block, not by
// this call.
func (in *Interpreter) InsertDeinit(root ir.Operand, rootType ir.Type, paths [][]int, before ir.InstID) bool {
	for _, p := range paths {
		elemType := in.typeAtPath(rootType, p)
		addrID := in.Edit.InsertBefore(in.Edit.MakeElementAddr(root, p, elemType, before), before)
		addrLocal := ir.ResultLocal(addrID, 0)
		loadID := in.Edit.InsertBefore(in.Edit.MakeLoad(ir.Ref(addrLocal), elemType, before), before)
		loadLocal := ir.ResultLocal(loadID, 0)
		in.Edit.InsertBefore(in.Edit.MakeDeinit(ir.Ref(loadLocal), before), before)
	}
	return len(paths) > 0
}
