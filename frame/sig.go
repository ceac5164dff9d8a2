// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/loc"
	"github.com/ownlang/objnorm/state"
)

// NewEntryContext builds the Context a function starts with, per
// spec.md §4.3: one fresh location per let/inout/set parameter, bound
// into Locals as Locations; sink parameters bound directly as an owned
// Object. A yielded parameter convention is invalid at a function
// boundary and is fatal.
//
// Named NewEntryContext rather than Entry to avoid colliding with the
// Entry type above — spec.md's own external-interfaces listing names
// this constructor "frame.Entry(sig)", but Go has no overloading, so
// the type keeps the shorter name since it is referenced far more
// often.
func NewEntryContext(sig ir.Signature, tab *loc.Table) *Context {
	ctx := NewContext()
	for i, p := range sig.Params {
		local := ir.ParamLocal(i)
		switch p.Conv {
		case ir.ConvLet, ir.ConvInout:
			l := tab.Intern(loc.Argument(i))
			ctx.Memory[l] = Cell{Layout: p.Type, Value: state.NewFull(state.Init())}
			ctx.Locals[local] = LocationsEntry(l)
		case ir.ConvSet:
			l := tab.Intern(loc.Argument(i))
			ctx.Memory[l] = Cell{Layout: p.Type, Value: state.NewFull(state.Uninit())}
			ctx.Locals[local] = LocationsEntry(l)
		case ir.ConvSink:
			ctx.Locals[local] = ObjectEntry(state.NewFull(state.Init()))
		case ir.ConvYielded:
			bug.Bug("frame: yielded convention is invalid at a function boundary (parameter %d)", i)
		default:
			bug.Bug("frame: unknown parameter convention %v (parameter %d)", p.Conv, i)
		}
	}
	return ctx
}
