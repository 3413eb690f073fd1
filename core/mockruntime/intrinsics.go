package mockruntime

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// callIntrinsic services one call against the backend's fixed intrinsic
// registry. Every vector/map handle the interpreter hands out is itself a
// Value (VArray / VMap), so these operations just manipulate Go slices and
// maps directly rather than threading through a separate handle table.
func (it *interp) callIntrinsic(name string, args []Value) (Value, error) {
	desc, ok := backend.LookupIntrinsic(name)
	if !ok {
		return Value{}, fmt.Errorf("mockruntime: unknown intrinsic %q", name)
	}
	if len(args) < desc.MinArgs {
		return Value{}, fmt.Errorf("mockruntime: intrinsic %q wants at least %d args, got %d", name, desc.MinArgs, len(args))
	}
	switch name {
	case "ir.vector.new":
		return Value{Kind: VArray}, nil
	case "ir.vector.push":
		v := args[0]
		v.Array = append(v.Array, args[1])
		return v, nil
	case "ir.vector.pop":
		v := args[0]
		if len(v.Array) == 0 {
			return Value{}, it.rt.abortf("vector.pop on empty vector")
		}
		last := v.Array[len(v.Array)-1]
		v.Array = v.Array[:len(v.Array)-1]
		return last, nil
	case "ir.vector.get":
		v := args[0]
		idx := int(args[1].Int.Int64())
		if idx < 0 || idx >= len(v.Array) {
			return Value{}, it.rt.abortf("vector index %d out of range", idx)
		}
		return v.Array[idx], nil
	case "ir.vector.set":
		v := args[0]
		idx := int(args[1].Int.Int64())
		if idx < 0 || idx >= len(v.Array) {
			return Value{}, it.rt.abortf("vector index %d out of range", idx)
		}
		v.Array[idx] = args[2]
		return VoidValue(), nil
	case "ir.vector.len":
		return IntValue(big.NewInt(int64(len(args[0].Array))), ir.U32), nil
	case "ir.vector.iter", "ir.vector.iter_next":
		return Value{}, fmt.Errorf("mockruntime: %s requires iterator-handle support not modeled by the interpreter", name)

	case "ir.map.new":
		return Value{Kind: VMap, Map: map[string]Value{}}, nil
	case "ir.map.set":
		m := args[0]
		m.Map[mapKey(args[1])] = args[2]
		return VoidValue(), nil
	case "ir.map.get":
		m := args[0]
		v, ok := m.Map[mapKey(args[1])]
		if !ok {
			return Value{}, it.rt.abortf("map key not found")
		}
		return v, nil
	case "ir.map.has":
		m := args[0]
		_, ok := m.Map[mapKey(args[1])]
		return BoolValue(ok), nil
	case "ir.map.del":
		m := args[0]
		delete(m.Map, mapKey(args[1]))
		return VoidValue(), nil
	case "ir.map.len":
		return IntValue(big.NewInt(int64(len(args[0].Map))), ir.U32), nil
	case "ir.map.iter", "ir.map.iter_next":
		return Value{}, fmt.Errorf("mockruntime: %s requires iterator-handle support not modeled by the interpreter", name)

	case "ir.storage.push", "ir.storage.len":
		return Value{}, fmt.Errorf("mockruntime: %s is expanded to explicit storage_load/storage_store instructions by the front-end, not called directly", name)

	case "ir.builtin.print":
		for _, a := range args {
			it.rt.Emit("print", []byte(valueToString(a)))
		}
		return VoidValue(), nil
	case "ir.builtin.parampack":
		return BytesValue(nil), nil
	case "ir.builtin.call_log":
		topic := valueToString(args[0])
		var data []byte
		for _, a := range args[1:] {
			data = append(data, valueToString(a)...)
		}
		it.rt.Emit(topic, data)
		return VoidValue(), nil
	case "ir.builtin.block_number":
		return IntValue(new(big.Int).SetUint64(it.rt.BlockNumber), ir.U64), nil
	case "ir.builtin.block_timestamp":
		return IntValue(new(big.Int).SetUint64(it.rt.BlockTimestamp), ir.U64), nil
	case "ir.builtin.call_sender":
		return StrValue(it.rt.Caller), nil
	case "ir.builtin.tx_hash":
		return BytesValue(it.rt.TxHash), nil
	case "ir.builtin.revert":
		code := int32(0)
		if args[0].Kind == VInt {
			code = int32(args[0].Int.Int64())
		}
		it.rt.reverted = true
		it.rt.revertCode = code
		return Value{}, it.rt.abortf("reverted: %s", valueToString(args[1]))

	case "ir.math.pow":
		return IntValue(new(big.Int).Exp(args[0].Int, args[1].Int, nil), args[0].IntType), nil

	case "ir.data_stream.encode_u8":
		return BytesValue([]byte{byte(args[0].Int.Uint64())}), nil
	case "ir.data_stream.encode_u32":
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(args[0].Int.Uint64()))
		return BytesValue(b), nil
	case "ir.data_stream.encode_u64":
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, args[0].Int.Uint64())
		return BytesValue(b), nil
	case "ir.data_stream.encode_str":
		return BytesValue([]byte(args[0].Str)), nil
	case "ir.data_stream.decode_u8":
		if len(args[0].Bytes) < 1 {
			return Value{}, it.rt.abortf("data_stream.decode_u8: short buffer")
		}
		return IntValue(big.NewInt(int64(args[0].Bytes[0])), ir.U8), nil
	case "ir.data_stream.decode_u32":
		if len(args[0].Bytes) < 4 {
			return Value{}, it.rt.abortf("data_stream.decode_u32: short buffer")
		}
		return IntValue(big.NewInt(int64(binary.BigEndian.Uint32(args[0].Bytes))), ir.U32), nil
	case "ir.data_stream.decode_u64":
		if len(args[0].Bytes) < 8 {
			return Value{}, it.rt.abortf("data_stream.decode_u64: short buffer")
		}
		return IntValue(new(big.Int).SetUint64(binary.BigEndian.Uint64(args[0].Bytes)), ir.U64), nil
	case "ir.data_stream.decode_str":
		return StrValue(string(args[0].Bytes)), nil

	case "ir.str.concat":
		return StrValue(args[0].Str + args[1].Str), nil
	case "ir.str.len":
		return IntValue(big.NewInt(int64(len(args[0].Str))), ir.U32), nil
	case "ir.str.substr":
		s := args[0].Str
		start := int(args[1].Int.Int64())
		length := int(args[2].Int.Int64())
		if start < 0 || length < 0 || start+length > len(s) {
			return Value{}, it.rt.abortf("str.substr out of range")
		}
		return StrValue(s[start : start+length]), nil
	case "ir.str.to_bytes":
		return BytesValue([]byte(args[0].Str)), nil

	case "ir.base64.encode":
		return StrValue(base64.StdEncoding.EncodeToString(argBytes(args, 0))), nil
	case "ir.base64.decode":
		b, err := base64.StdEncoding.DecodeString(args[0].Str)
		if err != nil {
			return Value{}, it.rt.abortf("base64.decode: %v", err)
		}
		return BytesValue(b), nil

	case "ir.hex.encode":
		return StrValue(hex.EncodeToString(argBytes(args, 0))), nil
	case "ir.hex.decode":
		b, err := hex.DecodeString(args[0].Str)
		if err != nil {
			return Value{}, it.rt.abortf("hex.decode: %v", err)
		}
		return BytesValue(b), nil

	case "ir.json.encode":
		b, err := json.Marshal(valueToJSON(args[0]))
		if err != nil {
			return Value{}, it.rt.abortf("json.encode: %v", err)
		}
		return BytesValue(b), nil
	case "ir.json.decode":
		var v any
		if err := json.Unmarshal(argBytes(args, 0), &v); err != nil {
			return Value{}, it.rt.abortf("json.decode: %v", err)
		}
		return jsonToValue(v), nil

	case "ir.rlp.encode":
		b, err := rlp.EncodeToBytes(valueToRLP(args[0]))
		if err != nil {
			return Value{}, it.rt.abortf("rlp.encode: %v", err)
		}
		return BytesValue(b), nil
	case "ir.rlp.decode":
		var out []byte
		if err := rlp.DecodeBytes(argBytes(args, 0), &out); err != nil {
			return Value{}, it.rt.abortf("rlp.decode: %v", err)
		}
		return BytesValue(out), nil

	case "ir.ssz.encode", "ir.ssz.decode":
		return Value{}, fmt.Errorf("mockruntime: %s is not implemented (no SSZ codec available)", name)
	}
	return Value{}, fmt.Errorf("mockruntime: intrinsic %q has no interpreter binding", name)
}

func mapKey(v Value) string {
	switch v.Kind {
	case VStr:
		return v.Str
	case VInt:
		return v.Int.String()
	case VBytes:
		return string(v.Bytes)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func valueToString(v Value) string {
	switch v.Kind {
	case VStr:
		return v.Str
	case VInt:
		return v.Int.String()
	case VBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case VBytes:
		return string(v.Bytes)
	default:
		return ""
	}
}

func valueToJSON(v Value) any {
	switch v.Kind {
	case VStr:
		return v.Str
	case VInt:
		return v.Int.String()
	case VBool:
		return v.Bool
	case VBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	case VArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = valueToJSON(e)
		}
		return out
	case VMap:
		out := make(map[string]any, len(v.Map))
		for k, e := range v.Map {
			out[k] = valueToJSON(e)
		}
		return out
	default:
		return nil
	}
}

func jsonToValue(v any) Value {
	switch t := v.(type) {
	case string:
		return StrValue(t)
	case bool:
		return BoolValue(t)
	case float64:
		return IntValue(big.NewInt(int64(t)), ir.I64)
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = jsonToValue(e)
		}
		return Value{Kind: VArray, Array: arr}
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = jsonToValue(e)
		}
		return Value{Kind: VMap, Map: m}
	default:
		return VoidValue()
	}
}

func valueToRLP(v Value) any {
	switch v.Kind {
	case VBytes:
		return v.Bytes
	case VStr:
		return []byte(v.Str)
	case VInt:
		return v.Int
	case VArray:
		out := make([][]byte, 0, len(v.Array))
		for _, e := range v.Array {
			if e.Kind == VBytes {
				out = append(out, e.Bytes)
			} else {
				out = append(out, []byte(valueToString(e)))
			}
		}
		return out
	default:
		return []byte(valueToString(v))
	}
}
