// Package builder provides a stateful cursor for constructing SIR modules,
// mirroring the way an LLVM-style IRBuilder tracks a current function and
// basic block rather than requiring callers to thread them explicitly.
package builder

import (
	"fmt"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// idGenerator hands out monotonically increasing ids for locals and basic
// blocks. Ident ids reset at the start of every function (they are
// positional slots, not globally unique names); block ids keep counting
// across the whole compilation. metaID is not read or advanced here:
// metadata node ids are assigned by ir.Registry.Add.
type idGenerator struct {
	ident  ir.IdentifierID
	block  ir.BasicBlockID
	metaID uint32
}

func (g *idGenerator) nextIdent() ir.IdentifierID {
	id := g.ident
	g.ident++
	return id
}

func (g *idGenerator) resetIdent() { g.ident = 0 }

func (g *idGenerator) nextBlock() ir.BasicBlockID {
	id := g.block
	g.block++
	return id
}

// label records the basic blocks a break/continue inside the current loop
// body should jump to.
type label struct {
	breakTarget    ir.BasicBlockID
	continueTarget ir.BasicBlockID
}

// Builder is the cursor: it tracks the function and basic block currently
// being appended to, and exposes one constructor per instruction kind plus
// structural helpers for functions, blocks, and loop labels.
type Builder struct {
	ctx *ir.Context
	ids idGenerator

	module         *ir.Module
	contract       *ir.Contract
	currentFunc    *ir.FunctionDefinition
	currentBB      *ir.BasicBlock
	currentLoc     *ir.MetaDataID
	labels         []label
}

func New(ctx *ir.Context) *Builder {
	return &Builder{ctx: ctx}
}

func (b *Builder) Context() *ir.Context { return b.ctx }

// SetModule points the builder at the module new functions/types attach to.
func (b *Builder) SetModule(m *ir.Module) { b.module = m }

func (b *Builder) Module() *ir.Module { return b.module }

// SetContract points the builder at the contract new state/functions attach
// to; pass nil to build free functions again.
func (b *Builder) SetContract(c *ir.Contract) { b.contract = c }

// BuildFunction starts a new function: resets the local-id counter (to one
// past the highest parameter id), creates the entry block, and positions the
// cursor at it. Parameters are recorded in the function's vars table by
// ir.NewFunctionDefinition, so body instructions may reference them directly.
func (b *Builder) BuildFunction(name string, params []ir.VarDecl, ret *ir.Type, isExternal bool) *ir.FunctionDefinition {
	b.ids.resetIdent()
	for _, p := range params {
		if p.ID >= b.ids.ident {
			b.ids.ident = p.ID + 1
		}
	}
	f := ir.NewFunctionDefinition(name, params, ret, isExternal)
	entryID := b.ids.nextBlock()
	f.CFG.AppendNewBlock(entryID)
	f.CFG.SetEntry(entryID)

	b.currentFunc = f
	bb, _ := f.CFG.GetBlock(entryID)
	b.currentBB = bb

	if b.contract != nil {
		b.contract.AddFunction(f)
	} else if b.module != nil {
		b.module.AddFunction(f)
	}
	return f
}

// FuncEnd saves the current block back into the function being built and
// clears the cursor, matching the original's explicit save-on-finish step.
func (b *Builder) FuncEnd() {
	b.saveBB()
	b.currentFunc = nil
	b.currentBB = nil
	b.labels = nil
}

func (b *Builder) saveBB() {
	if b.currentBB == nil || b.currentFunc == nil {
		return
	}
	b.currentFunc.CFG.UpdateBlock(b.currentBB)
}

// AppendBasicBlock creates a new, empty block in the function currently
// being built without repositioning the cursor to it.
func (b *Builder) AppendBasicBlock() *ir.BasicBlock {
	if b.currentFunc == nil {
		panic("builder: AppendBasicBlock called with no current function")
	}
	id := b.ids.nextBlock()
	return b.currentFunc.CFG.AppendNewBlock(id)
}

// PositionAtEnd saves whatever block the cursor was previously on, then
// repositions it to dest. Once repositioned, subsequent Build* calls append
// to dest.
func (b *Builder) PositionAtEnd(dest *ir.BasicBlock) {
	b.saveBB()
	b.currentBB = dest
}

// CreateIdentifier allocates a fresh local id, records its type against the
// function being built, and returns an Expr referencing it.
func (b *Builder) CreateIdentifier(ty *ir.Type) ir.Expr {
	if b.currentFunc == nil {
		panic("builder: CreateIdentifier called with no current function")
	}
	id := b.ids.nextIdent()
	b.currentFunc.DeclareVar(id, "", ty)
	return ir.Identifier(id)
}

// UpdateDebugLocation sets the metadata id every subsequently inserted
// instruction is stamped with, until changed again or cleared.
func (b *Builder) UpdateDebugLocation(id ir.MetaDataID) {
	loc := id
	b.currentLoc = &loc
}

func (b *Builder) ClearDebugLocation() { b.currentLoc = nil }

// PushLabel enters a loop body, recording the blocks a bare break/continue
// should target.
func (b *Builder) PushLabel(breakTarget, continueTarget ir.BasicBlockID) {
	b.labels = append(b.labels, label{breakTarget, continueTarget})
}

func (b *Builder) PopLabel() {
	if len(b.labels) == 0 {
		return
	}
	b.labels = b.labels[:len(b.labels)-1]
}

// BreakTarget and ContinueTarget report the innermost loop's labels; the
// second return is false outside any loop body.
func (b *Builder) BreakTarget() (ir.BasicBlockID, bool) {
	if len(b.labels) == 0 {
		return 0, false
	}
	return b.labels[len(b.labels)-1].breakTarget, true
}

func (b *Builder) ContinueTarget() (ir.BasicBlockID, bool) {
	if len(b.labels) == 0 {
		return 0, false
	}
	return b.labels[len(b.labels)-1].continueTarget, true
}

// insert appends instr to the current block, stamping the active debug
// location if one is set.
func (b *Builder) insert(instr *ir.Instr) {
	if b.currentBB == nil {
		panic("builder: no current basic block positioned")
	}
	if b.currentLoc != nil {
		instr.Metadata()[ir.MetaKeyDebugLocation] = *b.currentLoc
	}
	b.currentBB.Append(instr)
}

// Build* methods append the named instruction to the current block. Each
// has a matching Instr* constructor (core/ir/instr.go) for callers that
// need the Instr value itself, e.g. to nest it in an Expr.

func (b *Builder) BuildDeclaration(id ir.IdentifierID, initVal *ir.Expr, ty *ir.Type) {
	b.insert(ir.NewDeclaration(id, initVal, ty))
}

func (b *Builder) BuildAssignment(id ir.IdentifierID, val ir.Expr) {
	b.insert(ir.NewAssignment(id, val))
}

func (b *Builder) BuildRet(val *ir.Expr) { b.insert(ir.NewRet(val)) }

func (b *Builder) BuildBr(dest *ir.BasicBlock) { b.insert(ir.NewBr(dest.ID)) }

func (b *Builder) BuildCondBr(cond ir.Expr, thenBB, elseBB *ir.BasicBlock) {
	b.insert(ir.NewBrIf(cond, thenBB.ID, elseBB.ID))
}

func (b *Builder) BuildMatch(val ir.Expr, otherwise ir.BasicBlockID, keys []uint32, table map[uint32]ir.BasicBlockID) {
	b.insert(ir.NewMatch(val, otherwise, keys, table))
}

func (b *Builder) BuildNot(op ir.Expr)    { b.insert(ir.NewNot(op)) }
func (b *Builder) BuildBitNot(op ir.Expr) { b.insert(ir.NewBitNot(op)) }

func (b *Builder) buildBinary(op ir.BinaryOp, a, c ir.Expr) { b.insert(ir.NewBinary(op, a, c)) }

func (b *Builder) BuildAdd(a, c ir.Expr)    { b.buildBinary(ir.OpAdd, a, c) }
func (b *Builder) BuildSub(a, c ir.Expr)    { b.buildBinary(ir.OpSub, a, c) }
func (b *Builder) BuildMul(a, c ir.Expr)    { b.buildBinary(ir.OpMul, a, c) }
func (b *Builder) BuildDiv(a, c ir.Expr)    { b.buildBinary(ir.OpDiv, a, c) }
func (b *Builder) BuildMod(a, c ir.Expr)    { b.buildBinary(ir.OpMod, a, c) }
func (b *Builder) BuildPow(a, c ir.Expr)    { b.buildBinary(ir.OpExp, a, c) }
func (b *Builder) BuildAnd(a, c ir.Expr)    { b.buildBinary(ir.OpAnd, a, c) }
func (b *Builder) BuildBitAnd(a, c ir.Expr) { b.buildBinary(ir.OpBitAnd, a, c) }
func (b *Builder) BuildOr(a, c ir.Expr)     { b.buildBinary(ir.OpOr, a, c) }
func (b *Builder) BuildBitOr(a, c ir.Expr)  { b.buildBinary(ir.OpBitOr, a, c) }
func (b *Builder) BuildBitXor(a, c ir.Expr) { b.buildBinary(ir.OpBitXor, a, c) }
func (b *Builder) BuildShl(a, c ir.Expr)    { b.buildBinary(ir.OpShl, a, c) }
func (b *Builder) BuildShr(a, c ir.Expr)    { b.buildBinary(ir.OpShr, a, c) }
func (b *Builder) BuildSar(a, c ir.Expr)    { b.buildBinary(ir.OpSar, a, c) }

func (b *Builder) buildCmp(op ir.CmpOp, a, c ir.Expr) { b.insert(ir.NewCmp(op, a, c)) }

func (b *Builder) BuildEq(a, c ir.Expr) { b.buildCmp(ir.CmpEq, a, c) }
func (b *Builder) BuildNe(a, c ir.Expr) { b.buildCmp(ir.CmpNe, a, c) }
func (b *Builder) BuildGt(a, c ir.Expr) { b.buildCmp(ir.CmpGt, a, c) }
func (b *Builder) BuildGe(a, c ir.Expr) { b.buildCmp(ir.CmpGe, a, c) }
func (b *Builder) BuildLt(a, c ir.Expr) { b.buildCmp(ir.CmpLt, a, c) }
func (b *Builder) BuildLe(a, c ir.Expr) { b.buildCmp(ir.CmpLe, a, c) }

func (b *Builder) BuildAlloca(ty *ir.Type) { b.insert(ir.NewAlloca(ty)) }
func (b *Builder) BuildMalloc(ty *ir.Type) { b.insert(ir.NewMalloc(ty)) }
func (b *Builder) BuildFree(ptr ir.Expr)   { b.insert(ir.NewFree(ptr)) }

func (b *Builder) BuildGetField(ptr ir.Expr, path []uint32, resultTy *ir.Type) {
	b.insert(ir.NewGetField(ptr, path, resultTy))
}

func (b *Builder) BuildSetField(ptr ir.Expr, path []uint32, val ir.Expr) {
	b.insert(ir.NewSetField(ptr, val, path))
}

func (b *Builder) BuildGetStoragePath(keys []ir.Expr) { b.insert(ir.NewGetStoragePath(keys)) }

func (b *Builder) BuildStorageLoad(path ir.Expr, loadTy *ir.Type) {
	b.insert(ir.NewStorageLoad(path, loadTy))
}

func (b *Builder) BuildStorageStore(path ir.Expr, val ir.Expr) {
	b.insert(ir.NewStorageStore(path, val))
}

func (b *Builder) BuildCall(fn ir.FuncName, args []ir.Expr, retTy *ir.Type) {
	b.insert(ir.NewCall(fn, args, retTy))
}

func (b *Builder) BuildIntCast(val ir.Expr, target *ir.Type) {
	b.insert(ir.NewIntCast(val, target))
}

// CurrentFunction and CurrentBlock expose the cursor for callers (the Yul
// lowering pass, mainly) that need to inspect state the Build* surface
// doesn't return, such as the function's declared return type when
// synthesizing an implicit void ret.
func (b *Builder) CurrentFunction() *ir.FunctionDefinition { return b.currentFunc }
func (b *Builder) CurrentBlock() *ir.BasicBlock             { return b.currentBB }

func (b *Builder) String() string {
	if b.currentFunc == nil {
		return "builder(no current function)"
	}
	return fmt.Sprintf("builder(fn=%s, bb=%d)", b.currentFunc.Name, b.currentBB.ID)
}
