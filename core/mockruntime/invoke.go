package mockruntime

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synnergy-labs/sir-compiler/core/abi"
	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// Module bundles a compiled unit with the dispatch metadata the backend
// synthesized for it, everything Invoke needs to resolve an exported name
// to a function body without redoing the backend's work.
type Module struct {
	ctx    *ir.Context
	module *ir.Module
	stubs  map[string]backend.DispatchStub
}

// Stubs returns the dispatch stubs LoadModule synthesized, in no particular
// order, for callers that want to list a module's entry points without
// redoing BuildStubs (the debug HTTP surface's /dispatch route).
func (m *Module) Stubs() []backend.DispatchStub {
	out := make([]backend.DispatchStub, 0, len(m.stubs))
	for _, s := range m.stubs {
		out = append(out, s)
	}
	return out
}

// LoadModule builds dispatch stubs for every externally visible function in
// m, the same synthesis step the real backend performs ahead of emitting a
// module's dispatch table.
func LoadModule(ctx *ir.Context, m *ir.Module) (*Module, error) {
	stubs, err := backend.BuildStubs(m)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]backend.DispatchStub, len(stubs))
	for _, s := range stubs {
		byName[s.Name] = s
	}
	return &Module{ctx: ctx, module: m, stubs: byName}, nil
}

// Invoke runs the exported function named entry, decoding argpack against
// its dispatch stub's parameter ABI and encoding the result the same way
// the synthesized stub's epilogue would.
func (rt *Runtime) Invoke(mod *Module, entry string, argpack []byte) Receipt {
	id := uuid.NewString()
	log := logrus.WithField("invocation", id).WithField("entry", entry)

	stub, ok := mod.stubs[entry]
	if !ok {
		log.Warn("no exported function")
		return Receipt{InvocationID: id, Error: fmt.Sprintf("mockruntime: no exported function %q", entry)}
	}
	params, err := abi.Decode(argpack, stub.ParamABI)
	if err != nil {
		log.WithError(err).Warn("argpack decode failed")
		return Receipt{InvocationID: id, Error: fmt.Sprintf("mockruntime: argpack decode: %v", err)}
	}
	fn, ok := mod.module.GetFunction(entry)
	if !ok {
		log.Warn("dispatch stub has no backing function")
		return Receipt{InvocationID: id, Error: fmt.Sprintf("mockruntime: dispatch stub for %q has no backing function", entry)}
	}

	args := make([]Value, len(params))
	for i, p := range params {
		args[i] = paramToValue(p)
	}

	it := &interp{rt: rt, ctx: mod.ctx, module: mod.module, fn: fn, env: make(map[ir.IdentifierID]Value, len(fn.Params))}
	for i, vd := range fn.Params {
		if i < len(args) {
			it.env[vd.ID] = args[i]
		}
	}

	result, err := it.run()
	if err != nil {
		if sig, ok := err.(*abortSignal); ok {
			log.WithField("reason", sig.msg).Info("invocation aborted")
			return Receipt{InvocationID: id, Status: false, Error: sig.msg, Events: rt.Events()}
		}
		log.WithError(err).Error("invocation failed")
		return Receipt{InvocationID: id, Status: false, Error: err.Error(), Events: rt.Events()}
	}

	rec := Receipt{InvocationID: id, Status: true, ReturnData: result, Events: rt.Events()}
	if stub.HasRet {
		p, err := valueToParam(result, stub.RetABI)
		if err != nil {
			log.WithError(err).Error("return encode failed")
			return Receipt{InvocationID: id, Status: false, Error: err.Error(), Events: rt.Events()}
		}
		encoded, err := abi.Encode([]abi.Param{p})
		if err != nil {
			log.WithError(err).Error("return encode failed")
			return Receipt{InvocationID: id, Status: false, Error: fmt.Sprintf("mockruntime: return encode: %v", err), Events: rt.Events()}
		}
		rt.lastCallResult = encoded
		rec.ReturnBytes = encoded
	}
	log.Debug("invocation succeeded")
	return rec
}

// Constructor invokes the module's init function with a leading single-byte
// [0x00] discriminant the way a contract's deploy-time constructor call is
// built, ahead of the user-supplied constructor argpack.
func (rt *Runtime) Constructor(mod *Module, argpack []byte) Receipt {
	payload := append([]byte{0x00}, argpack...)
	return rt.Invoke(mod, "init", payload)
}

// scalarIntType maps a scalar ABI param type back to the IntType it was
// derived from, the inverse of FromIRType's scalarIntParamTypes table.
var scalarIntType = map[abi.ParamType]ir.IntType{
	abi.PTU8: ir.U8, abi.PTI8: ir.I8, abi.PTU16: ir.U16, abi.PTI16: ir.I16,
	abi.PTU32: ir.U32, abi.PTI32: ir.I32, abi.PTU64: ir.U64, abi.PTI64: ir.I64,
	abi.PTU128: ir.U128, abi.PTI128: ir.I128, abi.PTU256: ir.U256, abi.PTI256: ir.I256,
}

func paramToValue(p abi.Param) Value {
	if it, ok := scalarIntType[p.Type]; ok {
		return IntValue(scalarIntBig(p), it)
	}
	switch p.Type {
	case abi.PTBool:
		return BoolValue(p.B)
	case abi.PTStr:
		return StrValue(p.S)
	case abi.PTParampack:
		return BytesValue(p.Bytes)
	}
	return Value{}
}

func scalarIntBig(p abi.Param) *big.Int {
	switch p.Type {
	case abi.PTU8:
		return big.NewInt(int64(p.U8))
	case abi.PTI8:
		return big.NewInt(int64(p.I8))
	case abi.PTU16:
		return big.NewInt(int64(p.U16))
	case abi.PTI16:
		return big.NewInt(int64(p.I16))
	case abi.PTU32:
		return big.NewInt(int64(p.U32))
	case abi.PTI32:
		return big.NewInt(int64(p.I32))
	case abi.PTU64:
		return new(big.Int).SetUint64(p.U64)
	case abi.PTI64:
		return big.NewInt(p.I64)
	case abi.PTU128, abi.PTI128, abi.PTU256, abi.PTI256:
		return p.Big
	}
	return big.NewInt(0)
}

// valueToParam encodes a Value back into an abi.Param of the ABI type the
// dispatch stub declares for a return value, the mirror of paramToValue.
func valueToParam(v Value, pt abi.ParamType) (abi.Param, error) {
	switch pt {
	case abi.PTBool:
		return abi.NewBool(v.Bool), nil
	case abi.PTStr:
		return abi.NewStr(v.Str), nil
	case abi.PTParampack:
		return abi.NewParampack(v.Bytes), nil
	case abi.PTU8:
		return abi.NewU8(uint8(v.Int.Uint64())), nil
	case abi.PTI8:
		return abi.NewI8(int8(v.Int.Int64())), nil
	case abi.PTU16:
		return abi.NewU16(uint16(v.Int.Uint64())), nil
	case abi.PTI16:
		return abi.NewI16(int16(v.Int.Int64())), nil
	case abi.PTU32:
		return abi.NewU32(uint32(v.Int.Uint64())), nil
	case abi.PTI32:
		return abi.NewI32(int32(v.Int.Int64())), nil
	case abi.PTU64:
		return abi.NewU64(v.Int.Uint64()), nil
	case abi.PTI64:
		return abi.NewI64(v.Int.Int64()), nil
	case abi.PTU128:
		return abi.NewU128(v.Int), nil
	case abi.PTI128:
		return abi.NewI128(v.Int), nil
	case abi.PTU256:
		return abi.NewU256(v.Int), nil
	case abi.PTI256:
		return abi.NewI256(v.Int), nil
	}
	return abi.Param{}, fmt.Errorf("mockruntime: no encoding for return ABI type %s", pt)
}
