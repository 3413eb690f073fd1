package mockruntime

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// truncate reduces v to it's representable range by masking to its bit
// width and, for signed types, sign-extending the top bit back out. This is
// the semantics of an explicit int_cast, as opposed to the range-checked
// arithmetic CheckedAdd/Sub/Mul perform.
func truncate(v *big.Int, it ir.IntType) *big.Int {
	bits := uint(it.Width.Bytes() * 8)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	r := new(big.Int).And(v, mask)
	if it.Signed {
		signBit := new(big.Int).Lsh(big.NewInt(1), bits-1)
		if r.Cmp(signBit) >= 0 {
			r.Sub(r, new(big.Int).Lsh(big.NewInt(1), bits))
		}
	}
	return r
}

func bitNot(v *big.Int, it ir.IntType) *big.Int {
	_, max := backend.Range(ir.IntType{Width: it.Width, Signed: false})
	full := new(big.Int).Add(max, big.NewInt(1))
	r := new(big.Int).Sub(full, big.NewInt(1))
	r.Xor(r, v)
	return truncate(r, it)
}

func (it *interp) evalBinary(instr *ir.Instr) (Value, error) {
	a, err := it.evalExpr(instr.Op1)
	if err != nil {
		return Value{}, err
	}
	b, err := it.evalExpr(instr.Op2)
	if err != nil {
		return Value{}, err
	}
	if instr.BinOp == ir.OpAnd || instr.BinOp == ir.OpOr {
		switch instr.BinOp {
		case ir.OpAnd:
			return BoolValue(a.Bool && b.Bool), nil
		case ir.OpOr:
			return BoolValue(a.Bool || b.Bool), nil
		}
	}

	it2 := a.IntType
	checked := it.rt.Options.OverflowCheck
	switch instr.BinOp {
	case ir.OpAdd:
		if checked {
			r, err := backend.CheckedAdd(a.Int, b.Int, it2)
			if err != nil {
				return Value{}, it.rt.abortf("%v", err)
			}
			return IntValue(r, it2), nil
		}
		return IntValue(truncate(new(big.Int).Add(a.Int, b.Int), it2), it2), nil
	case ir.OpSub:
		if checked {
			r, err := backend.CheckedSub(a.Int, b.Int, it2)
			if err != nil {
				return Value{}, it.rt.abortf("%v", err)
			}
			return IntValue(r, it2), nil
		}
		return IntValue(truncate(new(big.Int).Sub(a.Int, b.Int), it2), it2), nil
	case ir.OpMul:
		if checked {
			r, err := backend.CheckedMul(a.Int, b.Int, it2)
			if err != nil {
				return Value{}, it.rt.abortf("%v", err)
			}
			return IntValue(r, it2), nil
		}
		return IntValue(truncate(new(big.Int).Mul(a.Int, b.Int), it2), it2), nil
	case ir.OpDiv:
		if b.Int.Sign() == 0 {
			return Value{}, it.rt.abortf("division by zero")
		}
		return IntValue(truncate(new(big.Int).Quo(a.Int, b.Int), it2), it2), nil
	case ir.OpMod:
		if b.Int.Sign() == 0 {
			return Value{}, it.rt.abortf("modulo by zero")
		}
		return IntValue(truncate(new(big.Int).Rem(a.Int, b.Int), it2), it2), nil
	case ir.OpExp:
		return IntValue(truncate(new(big.Int).Exp(a.Int, b.Int, nil), it2), it2), nil
	case ir.OpBitAnd:
		return IntValue(truncate(new(big.Int).And(a.Int, b.Int), it2), it2), nil
	case ir.OpBitOr:
		return IntValue(truncate(new(big.Int).Or(a.Int, b.Int), it2), it2), nil
	case ir.OpBitXor:
		return IntValue(truncate(new(big.Int).Xor(a.Int, b.Int), it2), it2), nil
	case ir.OpShl:
		return IntValue(truncate(new(big.Int).Lsh(a.Int, uint(b.Int.Uint64())), it2), it2), nil
	case ir.OpShr:
		r := new(big.Int).Set(a.Int)
		if r.Sign() < 0 {
			r.Add(r, new(big.Int).Lsh(big.NewInt(1), uint(it2.Width.Bytes()*8)))
		}
		return IntValue(truncate(r.Rsh(r, uint(b.Int.Uint64())), it2), it2), nil
	case ir.OpSar:
		return IntValue(truncate(new(big.Int).Rsh(a.Int, uint(b.Int.Uint64())), it2), it2), nil
	}
	return Value{}, fmt.Errorf("mockruntime: unhandled binary op %v", instr.BinOp)
}

func (it *interp) evalCmp(instr *ir.Instr) (Value, error) {
	a, err := it.evalExpr(instr.Op1)
	if err != nil {
		return Value{}, err
	}
	b, err := it.evalExpr(instr.Op2)
	if err != nil {
		return Value{}, err
	}
	var cmp int
	switch {
	case a.Kind == VInt:
		cmp = a.Int.Cmp(b.Int)
	case a.Kind == VStr:
		cmp = compareStrings(a.Str, b.Str)
	case a.Kind == VBool:
		cmp = compareBools(a.Bool, b.Bool)
	default:
		return Value{}, fmt.Errorf("mockruntime: comparison unsupported for value kind %v", a.Kind)
	}
	switch instr.CmpOp {
	case ir.CmpEq:
		return BoolValue(cmp == 0), nil
	case ir.CmpNe:
		return BoolValue(cmp != 0), nil
	case ir.CmpGt:
		return BoolValue(cmp > 0), nil
	case ir.CmpGe:
		return BoolValue(cmp >= 0), nil
	case ir.CmpLt:
		return BoolValue(cmp < 0), nil
	case ir.CmpLe:
		return BoolValue(cmp <= 0), nil
	}
	return Value{}, fmt.Errorf("mockruntime: unhandled compare op %v", instr.CmpOp)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
