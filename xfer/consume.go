// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xfer

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/frame"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/state"
)

// consume is the shared helper of spec.md §4.4: a constant is never
// consumed; an owned object in full(initialized) transitions to
// full(consumed by {i}); anything else is an "illegal move" at site.
func (in *Interpreter) consume(ctx *frame.Context, o ir.Operand, instrID ir.InstID, site int) {
	if o.IsConst {
		return
	}
	e, ok := ctx.Locals[o.Local]
	if !ok {
		bug.Bug("xfer: instruction %%%d: local %v is not bound", instrID, o.Local)
	}
	if e.Kind != frame.EntryObject {
		bug.Bug("xfer: instruction %%%d: consume expects an owned object, local %v holds a location set", instrID, o.Local)
	}
	if e.Obj.IsFull && e.Obj.Full.Atom == state.Initialized {
		ctx.Locals[o.Local] = frame.ObjectEntry(state.NewFull(state.ConsumedBy(int(instrID))))
		return
	}
	in.report(ctx, instrID, site, diag.IllegalMove)
}
