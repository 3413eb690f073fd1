package mockruntime

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/hostapi"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// evalCall dispatches a Call instruction by its FuncName namespace: a
// user-defined function is a fresh interpreter frame sharing the runtime
// and context; a host-API call is serviced directly by the runtime; an
// intrinsic is serviced by the builtin table in intrinsics.go.
func (it *interp) evalCall(instr *ir.Instr) (Value, error) {
	args := make([]Value, len(instr.Args))
	for i, a := range instr.Args {
		v, err := it.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	switch instr.FuncName.Kind {
	case ir.FuncUser:
		fn, ok := it.module.GetFunction(instr.FuncName.Name)
		if !ok {
			return Value{}, fmt.Errorf("mockruntime: undefined function %q", instr.FuncName.Name)
		}
		return it.callUser(fn, args)
	case ir.FuncHostAPI:
		return it.callHostAPI(instr.FuncName.Name, args)
	case ir.FuncIntrinsic:
		return it.callIntrinsic(instr.FuncName.Name, args)
	case ir.FuncOther:
		return Value{}, fmt.Errorf("mockruntime: cannot interpret target-level symbol %q", instr.FuncName.Name)
	}
	return Value{}, fmt.Errorf("mockruntime: unknown call-target namespace for %q", instr.FuncName.Name)
}

func (it *interp) callUser(fn *ir.FunctionDefinition, args []Value) (Value, error) {
	sub := &interp{rt: it.rt, ctx: it.ctx, module: it.module, fn: fn, env: make(map[ir.IdentifierID]Value, len(fn.Params))}
	for i, p := range fn.Params {
		if i < len(args) {
			sub.env[p.ID] = args[i]
		}
	}
	return sub.run()
}

func (it *interp) callHostAPI(name string, args []Value) (Value, error) {
	id, ok := hostapi.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("mockruntime: unknown host-API call %q", name)
	}
	rt := it.rt
	switch id {
	case hostapi.GetCallSender, hostapi.GetTxSender:
		return StrValue(rt.Caller), nil
	case hostapi.GetCallSenderLength, hostapi.GetTxSenderLength:
		return IntValue(big.NewInt(int64(len(rt.Caller))), ir.U32), nil
	case hostapi.GetCallContract, hostapi.GetOpContract:
		return StrValue(rt.Address), nil
	case hostapi.GetCallContractLength, hostapi.GetOpContractLength:
		return IntValue(big.NewInt(int64(len(rt.Address))), ir.U32), nil
	case hostapi.GetBlockNumber:
		return IntValue(new(big.Int).SetUint64(rt.BlockNumber), ir.U64), nil
	case hostapi.GetBlockTimestamp, hostapi.GetTxTimestamp:
		return IntValue(new(big.Int).SetUint64(rt.BlockTimestamp), ir.U64), nil
	case hostapi.GetTxNonce:
		return IntValue(new(big.Int).SetUint64(rt.TxNonce), ir.U64), nil
	case hostapi.GetTxHash:
		return BytesValue(rt.TxHash), nil
	case hostapi.GetTxHashLength:
		return IntValue(big.NewInt(int64(len(rt.TxHash))), ir.U32), nil
	case hostapi.Abort:
		msg := argString(args, 0)
		return Value{}, rt.abortf("%s", msg)
	case hostapi.Revert:
		code := int32(0)
		if len(args) > 0 && args[0].Kind == VInt {
			code = int32(args[0].Int.Int64())
		}
		rt.reverted = true
		rt.revertCode = code
		return Value{}, rt.abortf("reverted: %s", argString(args, 1))
	case hostapi.Println, hostapi.Log:
		rt.Emit("println", []byte(argString(args, 0)))
		return VoidValue(), nil
	case hostapi.SHA256:
		return BytesValue(sha256Sum(argBytes(args, 0))), nil
	case hostapi.KECCAK256:
		return BytesValue(keccak256Sum(argBytes(args, 0))), nil
	case hostapi.SM3:
		// Forwards to SHA-256: no SM3 implementation is wired in, and
		// conformance tests must not depend on SM3's distinct output here.
		return BytesValue(sha256Sum(argBytes(args, 0))), nil
	case hostapi.EthSecp256k1Recovery:
		return Value{}, fmt.Errorf("mockruntime: eth_secp256k1_recovery requires a 65-byte signature argument, not modeled by the interpreter's value set")
	case hostapi.SetCallResult:
		rt.lastCallResult = argBytes(args, 0)
		return VoidValue(), nil
	case hostapi.GetCallResult:
		return BytesValue(rt.lastCallResult), nil
	case hostapi.GetCallResultLength:
		return IntValue(big.NewInt(int64(len(rt.lastCallResult))), ir.U32), nil
	case hostapi.GetCallGasLeft, hostapi.GetCallGasLimit, hostapi.GetTxGasLimit:
		return IntValue(big.NewInt(0), ir.U64), nil
	case hostapi.GetTxIndex:
		return IntValue(big.NewInt(0), ir.U32), nil
	case hostapi.GetBlockRandomSeed:
		return BytesValue(make([]byte, 32)), nil
	case hostapi.WriteObject, hostapi.ReadObject, hostapi.DeleteObject, hostapi.ReadObjectLength:
		return Value{}, fmt.Errorf("mockruntime: %s is serviced by storage_load/storage_store instructions, not called directly by interpreted SIR", name)
	case hostapi.GetCallArgPack, hostapi.GetCallArgPackLength, hostapi.CoCall:
		return Value{}, fmt.Errorf("mockruntime: %s is not reachable from interpreted function bodies", name)
	}
	return Value{}, fmt.Errorf("mockruntime: host-API call %q has no interpreter binding", name)
}

func argString(args []Value, i int) string {
	if i >= len(args) {
		return ""
	}
	if args[i].Kind == VBytes {
		return string(args[i].Bytes)
	}
	return args[i].Str
}

func argBytes(args []Value, i int) []byte {
	if i >= len(args) {
		return nil
	}
	if args[i].Kind == VStr {
		return []byte(args[i].Str)
	}
	return args[i].Bytes
}
