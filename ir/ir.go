// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir is the minimal intermediate representation consumed by the
// object-state normalization pass. IR construction, the type system, and
// the driver that feeds functions into the pass are all out of scope for
// the pass itself (see the package doc of objnorm/pass); this package
// exists only so the pass can be built and tested standalone, the way
// obj/internal/asm stands in for a real assembler in front of
// obj/internal/ssa.
package ir

import "fmt"

// Opcode identifies the operation an Instruction performs.
type Opcode int

const (
	OpAllocStack Opcode = iota
	OpBorrow
	OpBranch
	OpCondBranch
	OpCall
	OpDeallocStack
	OpDeinit
	OpDestructure
	OpElementAddr
	OpEndBorrow
	OpLLVMOp
	OpLoad
	OpRecord
	OpReturn
	OpStaticBranch
	OpStore
	OpUnreachable
)

func (op Opcode) String() string {
	switch op {
	case OpAllocStack:
		return "alloc-stack"
	case OpBorrow:
		return "borrow"
	case OpBranch:
		return "branch"
	case OpCondBranch:
		return "cond-branch"
	case OpCall:
		return "call"
	case OpDeallocStack:
		return "dealloc-stack"
	case OpDeinit:
		return "deinit"
	case OpDestructure:
		return "destructure"
	case OpElementAddr:
		return "element-addr"
	case OpEndBorrow:
		return "end-borrow"
	case OpLLVMOp:
		return "llvm-op"
	case OpLoad:
		return "load"
	case OpRecord:
		return "record"
	case OpReturn:
		return "return"
	case OpStaticBranch:
		return "static-branch"
	case OpStore:
		return "store"
	case OpUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
}

// Convention is a parameter-passing (or borrow) convention.
type Convention int

const (
	ConvLet Convention = iota
	ConvInout
	ConvSet
	ConvSink
	ConvYielded
)

func (c Convention) String() string {
	switch c {
	case ConvLet:
		return "let"
	case ConvInout:
		return "inout"
	case ConvSet:
		return "set"
	case ConvSink:
		return "sink"
	case ConvYielded:
		return "yielded"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Predicate is the predicate tested by a static-branch instruction.
type Predicate int

const (
	PredInitialized Predicate = iota
	PredUninitialized
	PredOther // anything else: fatal, see spec.md §4.4 and §7.
)

// Type is an opaque reference to a type, resolved through
// layout.AbstractTypeLayout. The IR itself never interprets a Type; it is
// only ever handed to the layout query.
type Type int

// BlockID identifies a basic block within a Function.
type BlockID int

// InstID identifies an instruction within a Function. Ids are dense and
// assigned in the order instructions are created, including instructions
// inserted by deinitialization insertion (see xfer/deinit.go).
type InstID int

// FuncID identifies a Function within a Module.
type FuncID int

// LocalKind distinguishes the two kinds of FunctionLocal from spec.md §3.
type LocalKind int

const (
	LocalParam LocalKind = iota
	LocalResult
)

// Local is a FunctionLocal: an identifier for an SSA name, either a
// parameter key or an (instruction, result index) pair.
type Local struct {
	Kind   LocalKind
	Param  int   // valid iff Kind == LocalParam
	Instr  InstID // valid iff Kind == LocalResult
	Result int    // valid iff Kind == LocalResult
}

func ParamLocal(i int) Local { return Local{Kind: LocalParam, Param: i} }

func ResultLocal(instr InstID, result int) Local {
	return Local{Kind: LocalResult, Instr: instr, Result: result}
}

func (l Local) String() string {
	if l.Kind == LocalParam {
		return fmt.Sprintf("arg%d", l.Param)
	}
	return fmt.Sprintf("%%%d.%d", l.Instr, l.Result)
}

// Operand is an instruction operand: either a constant (never consumed,
// never resolves to a location) or a reference to a Local.
type Operand struct {
	IsConst   bool
	ConstName string // symbolic name, for printing only
	Local     Local
}

func Const(name string) Operand { return Operand{IsConst: true, ConstName: name} }
func Ref(l Local) Operand       { return Operand{Local: l} }

func (o Operand) String() string {
	if o.IsConst {
		return o.ConstName
	}
	return o.Local.String()
}

// addressProducing reports whether op defines result locals that are
// address (Locations) entries rather than Object entries, per spec.md §3
// ("An SSA result of pointer/address type yields Locations; any other
// result yields Object").
func addressProducing(op Opcode) bool {
	switch op {
	case OpAllocStack, OpBorrow, OpElementAddr:
		return true
	default:
		return false
	}
}

// Instruction is a single IR instruction. Not every field is meaningful
// for every Opcode; see spec.md §4.4 for the per-opcode operand shapes.
type Instruction struct {
	ID    InstID
	Block BlockID
	Op    Opcode

	// ResultTypes has one entry per result local defined by this
	// instruction (zero for instructions that define no result, such as
	// store or branch).
	ResultTypes []Type

	// Operands are the instruction's operand list. Its meaning depends
	// on Op:
	//   alloc-stack:    (none; ResultTypes[0] is the allocated type)
	//   borrow:         [addr]
	//   branch:         (none)
	//   cond-branch:    [cond]
	//   call:           [callee, arg0, ..., argN]
	//   dealloc-stack:  [addr]
	//   deinit:         [value]
	//   destructure:    [whole]
	//   element-addr:   [base]
	//   end-borrow:     [borrow]
	//   llvm-op:        operands, uninterpreted
	//   load:           [addr]
	//   record:         [op0, ..., opN]
	//   return:         [value]
	//   static-branch:  [subject]
	//   store:          [source, target]
	//   unreachable:    (none)
	Operands []Operand

	// Path is the slot-path operand of element-addr.
	Path []int

	// Conv is the borrow convention (OpBorrow) of this instruction.
	Conv Convention

	// ArgConvs holds the callee's per-parameter convention, aligned
	// with Operands[1:] (OpCall only).
	ArgConvs []Convention

	// Predicate is the static-branch predicate (OpStaticBranch only).
	Predicate Predicate

	// Targets holds block targets: branch has one, cond-branch and
	// static-branch have two (true-target, false-target).
	Targets []BlockID

	// Callee is the statically known callee of a call instruction, or
	// -1 if the callee is only known dynamically through Operands[0].
	Callee FuncID
}

// Result returns the Local naming this instruction's i'th result.
func (in *Instruction) Result(i int) Local {
	return ResultLocal(in.ID, i)
}

// DefinesAddress reports whether in's results are Locations entries
// (true) or Object entries (false) in a Context's locals map.
func (in *Instruction) DefinesAddress() bool {
	return addressProducing(in.Op)
}

// Block is a basic block: a maximal straight-line run of instructions
// with control flow entering only at the top and leaving only at the
// bottom.
type Block struct {
	ID     BlockID
	Instrs []InstID
	Preds  []BlockID
	Succs  []BlockID
}

// ParamSig describes one parameter of a Function's signature.
type ParamSig struct {
	Conv Convention
	Type Type
}

// Signature is a function's parameter list (spec.md §4.3). Results are
// not modeled: the pass only cares about the initialization state of
// parameters and stack locations, never of a caller's return slot.
type Signature struct {
	Params []ParamSig
}

// Function is a single function body: a signature plus a CFG in SSA
// form.
type Function struct {
	ID     FuncID
	Sig    Signature
	Blocks []*Block

	instrs     map[InstID]*Instruction
	blockByID  map[BlockID]*Block
	nextInstID InstID
	nextBlock  BlockID
}

// Module is a collection of Functions, mirroring the "Module" consumed
// interface of spec.md §6. Everything this pass needs from a host
// compiler's module is implemented here directly on *Function; Module
// itself is just a registry, since the pass only ever normalizes one
// function at a time (spec.md §6's NormalizeObjectStates takes a single
// Function.ID).
type Module struct {
	Funcs      map[FuncID]*Function
	nextFuncID FuncID
}

func NewModule() *Module {
	return &Module{Funcs: make(map[FuncID]*Function)}
}

// NewFunction creates an empty function (no blocks) with signature sig
// and registers it in m.
func (m *Module) NewFunction(sig Signature) *Function {
	f := &Function{ID: m.nextFuncID, Sig: sig, instrs: make(map[InstID]*Instruction), blockByID: make(map[BlockID]*Block)}
	m.Funcs[f.ID] = f
	m.nextFuncID++
	return f
}

// Func returns the typed function view for id (the "self[f]" access of
// spec.md §6).
func (m *Module) Func(id FuncID) *Function { return m.Funcs[id] }

// CFG returns f's basic blocks in declaration order. Block 0 is always
// the entry block.
func (m *Module) CFG(id FuncID) []*Block { return m.Funcs[id].Blocks }

// Instr is indexed access to an instruction by id within f (the "self[i]"
// access of spec.md §6, scoped to a function since InstIDs are
// function-local).
func (f *Function) Instr(id InstID) *Instruction { return f.instrs[id] }

// Block returns the block with the given id. Looked up by id rather
// than by slice position, since RemoveBlock leaves surviving blocks'
// ids stable but not necessarily dense (spec.md §4.6's fold leaves a
// hole where the removed block's id used to be).
func (f *Function) Block(id BlockID) *Block { return f.blockByID[id] }

// NewBlock appends a fresh, empty block to f and returns it.
func (f *Function) NewBlock() *Block {
	b := &Block{ID: f.nextBlock}
	f.Blocks = append(f.Blocks, b)
	f.blockByID[b.ID] = b
	f.nextBlock++
	return b
}

// addEdge records a control-flow edge from-block -> to-block, matching
// obj/internal/asm/bb.go's addEdge helper.
func (f *Function) addEdge(from, to BlockID) {
	fb, tb := f.Block(from), f.Block(to)
	fb.Succs = append(fb.Succs, to)
	tb.Preds = append(tb.Preds, from)
}

// Emit appends instr to the end of block b, assigning it a fresh id, and
// returns that id. Targets named in instr.Targets wire up CFG edges.
func (f *Function) Emit(b BlockID, instr *Instruction) InstID {
	instr.ID = f.nextInstID
	instr.Block = b
	f.nextInstID++
	f.instrs[instr.ID] = instr
	f.blockByID[b].Instrs = append(f.blockByID[b].Instrs, instr.ID)
	for _, t := range instr.Targets {
		f.addEdge(b, t)
	}
	return instr.ID
}

// InsertBefore inserts instr immediately before the instruction with id
// before, in the same block, assigning instr a fresh id. This is the
// "insert(instr, before: i)" primitive of spec.md §6, used by the
// rewriter to splice in deinitialization sequences (spec.md §4.6).
func (f *Function) InsertBefore(instr *Instruction, before InstID) InstID {
	target := f.instrs[before]
	b := f.blockByID[target.Block]
	idx := -1
	for i, id := range b.Instrs {
		if id == before {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("objnorm/ir: InsertBefore: instruction %d not found in block %d", before, target.Block))
	}
	instr.ID = f.nextInstID
	instr.Block = target.Block
	f.nextInstID++
	f.instrs[instr.ID] = instr
	b.Instrs = append(b.Instrs, 0)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = instr.ID
	return instr.ID
}

// Replace overwrites the instruction at id in place with by, preserving
// id, block, and position. This is the "replace(i, by: instr)" primitive
// of spec.md §6, used to fold a decided static-branch into an
// unconditional branch (spec.md §4.4).
func (f *Function) Replace(id InstID, by *Instruction) {
	orig := f.instrs[id]
	by.ID = id
	by.Block = orig.Block
	f.instrs[id] = by
	f.reconcileEdges(orig.Block, orig.Targets, by.Targets)
}

// reconcileEdges updates the block-level Succs/Preds bookkeeping after
// an instruction's target list changes under Replace: every target
// dropped from oldTargets loses its edge from b, every target newly
// present in newTargets gains one. Folding a static-branch to an
// unconditional branch is the only caller today (spec.md §4.4).
func (f *Function) reconcileEdges(b BlockID, oldTargets, newTargets []BlockID) {
	kept := make(map[BlockID]bool, len(newTargets))
	for _, t := range newTargets {
		kept[t] = true
	}
	wasOld := make(map[BlockID]bool, len(oldTargets))
	for _, t := range oldTargets {
		wasOld[t] = true
		if !kept[t] {
			f.removeEdge(b, t)
		}
	}
	for _, t := range newTargets {
		if !wasOld[t] {
			f.addEdge(b, t)
		}
	}
}

// removeEdge deletes a single control-flow edge from-block -> to-block.
func (f *Function) removeEdge(from, to BlockID) {
	fb, tb := f.Block(from), f.Block(to)
	j := 0
	for _, s := range fb.Succs {
		if s != to {
			fb.Succs[j] = s
			j++
		}
	}
	fb.Succs = fb.Succs[:j]
	j = 0
	for _, p := range tb.Preds {
		if p != from {
			tb.Preds[j] = p
			j++
		}
	}
	tb.Preds = tb.Preds[:j]
}

// RemoveBlock deletes block b from f: it is unlinked from every
// predecessor's successor list and every successor's predecessor list,
// and dropped from f.Blocks. RemoveBlock
// does not renumber surviving blocks; BlockIDs remain stable across a
// rewrite, which is what lets pass.driver purge b from its work list by
// identity (spec.md §9's "implementers should assert the work list is a
// set").
func (f *Function) RemoveBlock(b BlockID) {
	removed := f.Block(b)
	for _, p := range append([]BlockID(nil), removed.Preds...) {
		f.removeEdge(p, b)
	}
	for _, succ := range removed.Succs {
		sb := f.Block(succ)
		j := 0
		for _, p := range sb.Preds {
			if p != b {
				sb.Preds[j] = p
				j++
			}
		}
		sb.Preds = sb.Preds[:j]
	}
	j := 0
	for _, blk := range f.Blocks {
		if blk.ID != b {
			f.Blocks[j] = blk
			j++
		}
	}
	f.Blocks = f.Blocks[:j]
	delete(f.blockByID, b)
}

// MakeBranch builds (but does not insert) an unconditional branch to to.
// anchor is not recorded: Instruction carries no source position.
func (f *Function) MakeBranch(to BlockID, anchor InstID) *Instruction {
	return &Instruction{Op: OpBranch, Targets: []BlockID{to}}
}

// MakeElementAddr builds an element-addr instruction projecting path out
// of root. resultType is the layout type of the projected slot.
func (f *Function) MakeElementAddr(root Operand, path []int, resultType Type, anchor InstID) *Instruction {
	return &Instruction{Op: OpElementAddr, Operands: []Operand{root}, Path: path, ResultTypes: []Type{resultType}}
}

// MakeLoad builds a load instruction of addr. resultType is the loaded
// value's type.
func (f *Function) MakeLoad(addr Operand, resultType Type, anchor InstID) *Instruction {
	return &Instruction{Op: OpLoad, Operands: []Operand{addr}, ResultTypes: []Type{resultType}}
}

// MakeDeinit builds a deinit instruction consuming val.
func (f *Function) MakeDeinit(val Operand, anchor InstID) *Instruction {
	return &Instruction{Op: OpDeinit, Operands: []Operand{val}}
}
