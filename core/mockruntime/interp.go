package mockruntime

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// interp walks a single function's control-flow graph. One interp is
// created per call frame (including cross-calls and recursive user calls),
// so frames never share an env.
type interp struct {
	rt     *Runtime
	ctx    *ir.Context
	module *ir.Module
	fn     *ir.FunctionDefinition
	env    map[ir.IdentifierID]Value
}

// execResult distinguishes a normal terminator-driven block transition from
// a function return unwinding the call.
type execResult struct {
	returning bool
	value     Value
}

func (it *interp) run() (Value, error) {
	bb, ok := it.fn.CFG.GetEntryBlock()
	if !ok {
		return Value{}, fmt.Errorf("mockruntime: function %q has no entry block", it.fn.Name)
	}
	for {
		res, next, err := it.execBlock(bb)
		if err != nil {
			return Value{}, err
		}
		if res.returning {
			return res.value, nil
		}
		bb, ok = it.fn.CFG.GetBlock(next)
		if !ok {
			return Value{}, fmt.Errorf("mockruntime: branch to unknown block %d in %q", next, it.fn.Name)
		}
	}
}

func (it *interp) execBlock(bb *ir.BasicBlock) (execResult, ir.BasicBlockID, error) {
	for _, instr := range bb.Instrs {
		if instr.IsTerminator() {
			return it.execTerminator(instr)
		}
		if _, err := it.exec(instr); err != nil {
			return execResult{}, 0, err
		}
	}
	return execResult{}, 0, fmt.Errorf("mockruntime: block %d in %q has no terminator", bb.ID, it.fn.Name)
}

func (it *interp) execTerminator(instr *ir.Instr) (execResult, ir.BasicBlockID, error) {
	switch instr.Kind {
	case ir.InstrRet:
		if instr.RetVal == nil {
			return execResult{returning: true, value: VoidValue()}, 0, nil
		}
		v, err := it.evalExpr(*instr.RetVal)
		if err != nil {
			return execResult{}, 0, err
		}
		return execResult{returning: true, value: v}, 0, nil
	case ir.InstrBr:
		return execResult{}, instr.Target, nil
	case ir.InstrBrIf:
		c, err := it.evalExpr(instr.Cond)
		if err != nil {
			return execResult{}, 0, err
		}
		if c.Bool {
			return execResult{}, instr.ThenBB, nil
		}
		return execResult{}, instr.ElseBB, nil
	case ir.InstrMatch:
		v, err := it.evalExpr(instr.Scrutinee)
		if err != nil {
			return execResult{}, 0, err
		}
		key := uint32(v.Int.Uint64())
		if target, ok := instr.JumpTable[key]; ok {
			return execResult{}, target, nil
		}
		return execResult{}, instr.Default, nil
	}
	return execResult{}, 0, fmt.Errorf("mockruntime: %v is not a terminator", instr.Kind)
}

// exec executes one non-terminator instruction, returning the Value it
// produces (meaningful for Declaration's initializer, expression-context
// nested instructions, and anything with a result type; VVoid otherwise).
func (it *interp) exec(instr *ir.Instr) (Value, error) {
	switch instr.Kind {
	case ir.InstrDeclaration:
		var v Value
		if instr.InitVal != nil {
			var err error
			v, err = it.evalExpr(*instr.InitVal)
			if err != nil {
				return Value{}, err
			}
		} else {
			v = zeroValue(instr.Type)
		}
		it.env[instr.ID] = v
		return v, nil

	case ir.InstrAssignment:
		v, err := it.evalExpr(instr.Val)
		if err != nil {
			return Value{}, err
		}
		it.env[instr.ID] = v
		return v, nil

	case ir.InstrNot:
		v, err := it.evalExpr(instr.Operand)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!v.Bool), nil

	case ir.InstrBitNot:
		v, err := it.evalExpr(instr.Operand)
		if err != nil {
			return Value{}, err
		}
		mask, _ := backend.Range(v.IntType)
		_ = mask
		return IntValue(bitNot(v.Int, v.IntType), v.IntType), nil

	case ir.InstrBinary:
		return it.evalBinary(instr)

	case ir.InstrCmp:
		return it.evalCmp(instr)

	case ir.InstrAlloca, ir.InstrMalloc:
		v := zeroValue(instr.Type)
		return Value{Kind: VPointer, Ptr: &v}, nil

	case ir.InstrFree:
		return VoidValue(), nil

	case ir.InstrGetField:
		ptr, err := it.evalExpr(instr.Ptr)
		if err != nil {
			return Value{}, err
		}
		return getField(ptr, instr.FieldPath)

	case ir.InstrSetField:
		ptr, err := it.evalExpr(instr.Ptr)
		if err != nil {
			return Value{}, err
		}
		val, err := it.evalExpr(instr.SetVal)
		if err != nil {
			return Value{}, err
		}
		return VoidValue(), setField(ptr, instr.FieldPath, val)

	case ir.InstrGetStoragePath:
		keys := make([]ir.Expr, len(instr.PathKeys))
		copy(keys, instr.PathKeys)
		path := backend.BuildStoragePath(keys, nil)
		resolved, err := it.resolvePath(path)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VStoragePath, Path: resolved}, nil

	case ir.InstrStorageLoad:
		p, err := it.evalExpr(instr.StoragePath)
		if err != nil {
			return Value{}, err
		}
		return it.rt.Load(p.Path, instr.Type)

	case ir.InstrStorageStore:
		p, err := it.evalExpr(instr.StoragePath)
		if err != nil {
			return Value{}, err
		}
		v, err := it.evalExpr(instr.StoreVal)
		if err != nil {
			return Value{}, err
		}
		return VoidValue(), it.rt.Store(p.Path, v)

	case ir.InstrCall:
		return it.evalCall(instr)

	case ir.InstrIntCast:
		v, err := it.evalExpr(instr.CastVal)
		if err != nil {
			return Value{}, err
		}
		return IntValue(truncate(v.Int, instr.Type.Int), instr.Type.Int), nil
	}
	return Value{}, fmt.Errorf("mockruntime: unhandled instruction kind %v", instr.Kind)
}

func (it *interp) evalExpr(e ir.Expr) (Value, error) {
	switch e.Kind {
	case ir.ExprIdentifier:
		v, ok := it.env[e.Ident]
		if !ok {
			return Value{}, fmt.Errorf("mockruntime: identifier %%%d has no value in %q", e.Ident, it.fn.Name)
		}
		return v, nil
	case ir.ExprLiteral:
		return fromLiteral(e.Literal, it.ctx.Types)
	case ir.ExprInstr:
		return it.exec(e.Nested)
	case ir.ExprNop:
		return VoidValue(), nil
	}
	return Value{}, fmt.Errorf("mockruntime: unknown expr kind %v", e.Kind)
}

func zeroValue(ty *ir.Type) Value {
	switch {
	case ty.IsVoid():
		return VoidValue()
	case ty.IsBool():
		return BoolValue(false)
	case ty.IsString():
		return StrValue("")
	case ty.IsInteger():
		return IntValue(big.NewInt(0), ty.Int)
	case ty.IsArray():
		if ty.Length == nil {
			return Value{Kind: VArray}
		}
		elems := make([]Value, *ty.Length)
		for i := range elems {
			elems[i] = zeroValue(ty.Elem)
		}
		return Value{Kind: VArray, Array: elems}
	case ty.IsMap():
		return Value{Kind: VMap, Map: map[string]Value{}}
	case ty.IsParampack():
		return BytesValue(nil)
	default:
		return Value{Kind: VPointer}
	}
}
