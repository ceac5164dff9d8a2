// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command objnorm builds a toy function with package ir's own builder,
// runs the object-state normalization pass over it, and prints the
// resulting function and any diagnostics. It exists so the pass can be
// exercised end to end without a host compiler, the way obj/objbrowse
// exercises the teacher's obj/internal/ssa package standalone.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ownlang/objnorm/cfg"
	"github.com/ownlang/objnorm/diag"
	"github.com/ownlang/objnorm/ir"
	"github.com/ownlang/objnorm/layout"
	"github.com/ownlang/objnorm/pass"
)

var (
	dotFlag      = flag.Bool("dot", false, "print the function's CFG in Graphviz Dot form after normalization")
	scenarioFlag = flag.String("scenario", "overwrite", "toy function to build and normalize: overwrite, uninitialized, doublemove")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	build, ok := scenarios[*scenarioFlag]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -scenario %q\n", *scenarioFlag)
		flag.Usage()
		os.Exit(2)
	}

	mod, fn, types := build()
	diags := diag.NewSet()

	if err := pass.NormalizeObjectStates(mod, fn.ID, types, diags); err != nil {
		fmt.Fprintf(os.Stderr, "objnorm: %v\n", err)
		os.Exit(1)
	}

	printFunc(fn)

	if diags.Len() == 0 {
		fmt.Println("no diagnostics")
	}
	for _, d := range diags.Diagnostics() {
		fmt.Println(d)
	}

	if *dotFlag {
		if err := (cfg.Dot{}).Fprint(fn, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "objnorm: writing dot graph: %v\n", err)
			os.Exit(1)
		}
	}
}

// scalarType and recordType are the two toy ir.Types every scenario
// below is built from: a plain scalar, and a two-slot record of
// scalars (matching the shape layout.Program.Define registers for
// recordType in each builder).
const (
	scalarType ir.Type = 1
	recordType ir.Type = 2
)

var scenarios = map[string]func() (*ir.Module, *ir.Function, layout.AbstractTypeLayout){
	"overwrite":     buildOverwrite,
	"uninitialized": buildUninitialized,
	"doublemove":    buildDoubleMove,
}

func newToy() (*ir.Module, *ir.Function, layout.AbstractTypeLayout) {
	mod := ir.NewModule()
	fn := mod.NewFunction(ir.Signature{})
	fn.NewBlock()
	types := layout.NewProgram()
	types.Define(recordType, scalarType, scalarType)
	return mod, fn, types
}

// buildOverwrite allocates a scalar, stores into it twice with a
// set-convention borrow in between, and expects the pass to insert a
// deinitialization sequence ahead of the second store (spec.md §8
// scenario 2).
func buildOverwrite() (*ir.Module, *ir.Function, layout.AbstractTypeLayout) {
	mod, fn, types := newToy()
	alloc := fn.Instr(fn.Emit(0, &ir.Instruction{Op: ir.OpAllocStack, ResultTypes: []ir.Type{scalarType}}))
	fn.Emit(0, &ir.Instruction{Op: ir.OpStore, Operands: []ir.Operand{ir.Const("1"), ir.Ref(alloc.Result(0))}})
	borrow := fn.Instr(fn.Emit(0, &ir.Instruction{Op: ir.OpBorrow, Conv: ir.ConvSet, Operands: []ir.Operand{ir.Ref(alloc.Result(0))}}))
	fn.Emit(0, &ir.Instruction{Op: ir.OpStore, Operands: []ir.Operand{ir.Const("2"), ir.Ref(borrow.Result(0))}})
	fn.Emit(0, &ir.Instruction{Op: ir.OpUnreachable})
	return mod, fn, types
}

// buildUninitialized allocates a scalar and loads it without ever
// storing into it, expecting a use-of-uninitialized-object diagnostic
// (spec.md §8 scenario 1).
func buildUninitialized() (*ir.Module, *ir.Function, layout.AbstractTypeLayout) {
	mod, fn, types := newToy()
	alloc := fn.Emit(0, &ir.Instruction{Op: ir.OpAllocStack, ResultTypes: []ir.Type{scalarType}})
	b := fn.Emit(0, &ir.Instruction{Op: ir.OpBorrow, Conv: ir.ConvLet, Operands: []ir.Operand{ir.Ref(fn.Instr(alloc).Result(0))}})
	fn.Emit(0, &ir.Instruction{Op: ir.OpLoad, ResultTypes: []ir.Type{scalarType}, Operands: []ir.Operand{ir.Ref(fn.Instr(b).Result(0))}})
	fn.Emit(0, &ir.Instruction{Op: ir.OpUnreachable})
	return mod, fn, types
}

// buildDoubleMove takes one let-convention parameter and loads it
// twice, expecting a use-of-consumed-object diagnostic on the second
// load (spec.md §8 scenario 6).
func buildDoubleMove() (*ir.Module, *ir.Function, layout.AbstractTypeLayout) {
	mod := ir.NewModule()
	fn := mod.NewFunction(ir.Signature{Params: []ir.ParamSig{{Conv: ir.ConvLet, Type: scalarType}}})
	fn.NewBlock()
	types := layout.NewProgram()
	types.Define(recordType, scalarType, scalarType)
	fn.Emit(0, &ir.Instruction{Op: ir.OpLoad, ResultTypes: []ir.Type{scalarType}, Operands: []ir.Operand{ir.Ref(ir.ParamLocal(0))}})
	fn.Emit(0, &ir.Instruction{Op: ir.OpLoad, ResultTypes: []ir.Type{scalarType}, Operands: []ir.Operand{ir.Ref(ir.ParamLocal(0))}})
	fn.Emit(0, &ir.Instruction{Op: ir.OpUnreachable})
	return mod, fn, types
}

// printFunc prints fn's blocks and instructions in source order, the
// way a compiler's -S flag would, so a user running this command can
// see what the pass rewrote.
func printFunc(fn *ir.Function) {
	for _, b := range fn.Blocks {
		fmt.Printf("b%d:\n", int(b.ID))
		for _, id := range b.Instrs {
			instr := fn.Instr(id)
			fmt.Printf("  %%%d = %s", int(id), instr.Op)
			for _, o := range instr.Operands {
				fmt.Printf(" %s", o)
			}
			for _, t := range instr.Targets {
				fmt.Printf(" ->b%d", int(t))
			}
			fmt.Println()
		}
	}
}
