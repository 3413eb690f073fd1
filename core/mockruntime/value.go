// Package mockruntime is the in-process host implementation the test suite
// runs compiled modules against: it interprets a function's control-flow
// graph directly rather than emitting and executing real WASM, servicing
// host-API calls itself (call.go lists the few it rejects with an error).
package mockruntime

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// ValueKind tags the runtime representation a Value carries.
type ValueKind int

const (
	VVoid ValueKind = iota
	VInt
	VBool
	VStr
	VBytes
	VArray
	VMap
	VPointer
	VStoragePath
)

// Value is the interpreter's runtime cell: one tagged union mirroring the
// SIR type universe closely enough that every instruction's operands and
// results fit in a single Value.
type Value struct {
	Kind    ValueKind
	Int     *big.Int
	IntType ir.IntType
	Bool    bool
	Str     string
	Bytes   []byte
	Array   []Value
	Map     map[string]Value
	Ptr     *Value
	Path    backend.StoragePath
}

func VoidValue() Value { return Value{Kind: VVoid} }

func IntValue(v *big.Int, it ir.IntType) Value {
	return Value{Kind: VInt, Int: v, IntType: it}
}

func BoolValue(b bool) Value { return Value{Kind: VBool, Bool: b} }
func StrValue(s string) Value { return Value{Kind: VStr, Str: s} }
func BytesValue(b []byte) Value { return Value{Kind: VBytes, Bytes: b} }

func fromLiteral(l ir.Literal, tt *ir.TypeTable) (Value, error) {
	switch {
	case l.IsBool():
		b, _ := l.GetBool()
		return BoolValue(b), nil
	case l.IsStr():
		s, _ := l.GetString()
		return StrValue(s), nil
	case l.IsInt():
		v, _ := l.GetInt()
		ty := l.LiteralType(tt)
		return IntValue(new(big.Int).Set(v), ty.Int), nil
	}
	return Value{}, fmt.Errorf("mockruntime: literal has no recognized kind")
}
