package backend

import (
	"fmt"

	"github.com/synnergy-labs/sir-compiler/core/abi"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// DispatchStub is everything the mock runtime needs to service one exported
// contract function: how to decode its argument pack, what internal
// function to invoke, and how to encode its result.
type DispatchStub struct {
	Name         string // exported name, as called by co_call / the test harness
	Internal     string // mangled internal function name (see Mangle)
	ParamTypes   []*ir.Type
	ParamABI     []abi.ParamType
	RetType      *ir.Type
	RetABI       abi.ParamType
	HasRet       bool
}

// BuildStubs synthesizes one DispatchStub per externally visible function in
// m (free functions and, if present, the contract's methods), in the order
// the functions were added.
func BuildStubs(m *ir.Module) ([]DispatchStub, error) {
	var stubs []DispatchStub
	for _, fn := range m.Functions {
		if !fn.IsExternal {
			continue
		}
		stub, err := buildStub(fn)
		if err != nil {
			return nil, err
		}
		stubs = append(stubs, stub)
	}
	if m.Contract != nil {
		for _, fn := range m.Contract.Functions {
			if !fn.IsExternal {
				continue
			}
			stub, err := buildStub(fn)
			if err != nil {
				return nil, err
			}
			stubs = append(stubs, stub)
		}
	}
	return stubs, nil
}

func buildStub(fn *ir.FunctionDefinition) (DispatchStub, error) {
	stub := DispatchStub{Name: fn.Name}
	paramTypes := make([]*ir.Type, 0, len(fn.Params))
	for _, p := range fn.Params {
		paramTypes = append(paramTypes, p.Type)
		pt, ok := abi.FromIRType(p.Type)
		if !ok {
			return DispatchStub{}, fmt.Errorf("backend: parameter of %s has no ABI representation: %s", fn.Name, p.Type)
		}
		stub.ParamABI = append(stub.ParamABI, pt)
	}
	stub.ParamTypes = paramTypes
	stub.RetType = fn.Ret
	if !fn.Ret.IsVoid() {
		rt, ok := abi.FromIRType(fn.Ret)
		if !ok {
			return DispatchStub{}, fmt.Errorf("backend: return type of %s has no ABI representation: %s", fn.Name, fn.Ret)
		}
		stub.RetABI, stub.HasRet = rt, true
	}
	stub.Internal = Mangle(fn.Name, paramTypes, fn.Ret)
	return stub, nil
}
