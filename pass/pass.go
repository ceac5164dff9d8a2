// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pass implements the object-state normalization pass:
// spec.md §4.1's fixed-point work-list driver (driver.go) and the
// rewriter it calls back into on a static-branch fold (rewrite.go).
// NormalizeObjectStates is the single entry point a host compiler (or
// this module's own cmd/objnorm) calls.
package pass

import (
	"github.com/ownlang/objnorm/bug"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/layout"
)

// Precondition is the error type returned when the pass hits one of
// spec.md §7's category-2 compiler bugs: a precondition the analysis
// assumes a well-formed function satisfies, never a user ownership
// violation. Re-exported from package bug, the leaf package frame and
// xfer both raise it from, so that this package's public surface has a
// single name for it regardless of which collaborator detected the
// failure.
type Precondition = bug.Precondition

// Bug panics with a *Precondition built from format and args. Exposed
// so test code in this module can trigger the same failure path
// NormalizeObjectStates recovers, without importing package bug
// directly.
var Bug = bug.Bug

// NormalizeObjectStates runs the object-state normalization pass over
// function fn of mod: it verifies definite initialization and
// exclusive consumption of every object, inserts deinitialization
// where storage is overwritten or freed, and folds decidable
// static-branch instructions, appending any ownership diagnostics to
// diags in visit order.
//
// types answers the AbstractTypeLayout query spec.md §6 lists as an
// external collaborator; unlike Module, DominatorTree, and
// DiagnosticSet, a function's type layout cannot be derived from
// anything already reachable through mod, so it is threaded in here
// explicitly rather than constructed internally.
//
// A nil error with an empty diags means the rewrite succeeded and may
// be trusted. A nil error with a non-empty diags means category-1
// (user ownership) violations were found; the function's rewrite may
// be partially applied and must not be relied on further, exactly as
// spec.md §6 specifies. A non-nil error means a category-2 compiler
// bug — a *Precondition — aborted the run before it could give a
// reliable answer either way; any panic other than a *Precondition
// propagates uncaught.
func NormalizeObjectStates(mod *ir.Module, fn ir.FuncID, types layout.AbstractTypeLayout, diags *diag.Set) (err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if p, ok := r.(*Precondition); ok {
			err = p
		} else {
			panic(r)
		}
	}()
	run(mod.Func(fn), types, diags, fn)
	return nil
}
