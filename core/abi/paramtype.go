// Package abi implements the contract-call wire codec: a closed set of
// parameter kinds (ParamType), each with a fixed little-endian or
// length-prefixed encoding, concatenated behind a single version byte.
package abi

import "github.com/synnergy-labs/sir-compiler/core/ir"

// ParamType is the type tag for one ABI parameter. The tag itself is never
// written to the wire: a decoder is handed the declared []ParamType and reads
// each parameter positionally. Numeric values are grouped the same way the
// rest of this corpus groups its wire enums — scalars at the low end, arrays
// starting at 32, maps at 64 — leaving room to grow each family without
// renumbering the others.
type ParamType uint8

const (
	PTU8 ParamType = iota
	PTI8
	PTU16
	PTI16
	PTU32
	PTI32
	PTU64
	PTI64
	PTU128
	PTI128
	PTU256
	PTI256
	PTBool
	PTStr
	PTParampack
)

const (
	PTU8Array ParamType = iota + 32
	PTI8Array
	PTU16Array
	PTI16Array
	PTU32Array
	PTI32Array
	PTU64Array
	PTI64Array
	PTU128Array
	PTI128Array
	PTU256Array
	PTI256Array
	PTBoolArray
	PTStrArray
)

const (
	PTStrU8Map ParamType = iota + 64
	PTStrI8Map
	PTStrU16Map
	PTStrI16Map
	PTStrU32Map
	PTStrI32Map
	PTStrU64Map
	PTStrI64Map
	PTStrU128Map
	PTStrI128Map
	PTStrU256Map
	PTStrI256Map
	PTStrBoolMap
	PTStrStrMap
)

func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

var paramTypeNames = map[ParamType]string{
	PTU8: "u8", PTI8: "i8", PTU16: "u16", PTI16: "i16", PTU32: "u32", PTI32: "i32",
	PTU64: "u64", PTI64: "i64", PTU128: "u128", PTI128: "i128", PTU256: "u256", PTI256: "i256",
	PTBool: "bool", PTStr: "str", PTParampack: "parampack",
	PTU8Array: "u8_array", PTI8Array: "i8_array", PTU16Array: "u16_array", PTI16Array: "i16_array",
	PTU32Array: "u32_array", PTI32Array: "i32_array", PTU64Array: "u64_array", PTI64Array: "i64_array",
	PTU128Array: "u128_array", PTI128Array: "i128_array", PTU256Array: "u256_array", PTI256Array: "i256_array",
	PTBoolArray: "bool_array", PTStrArray: "str_array",
	PTStrU8Map: "str_u8_map", PTStrI8Map: "str_i8_map", PTStrU16Map: "str_u16_map", PTStrI16Map: "str_i16_map",
	PTStrU32Map: "str_u32_map", PTStrI32Map: "str_i32_map", PTStrU64Map: "str_u64_map", PTStrI64Map: "str_i64_map",
	PTStrU128Map: "str_u128_map", PTStrI128Map: "str_i128_map", PTStrU256Map: "str_u256_map", PTStrI256Map: "str_i256_map",
	PTStrBoolMap: "str_bool_map", PTStrStrMap: "str_str_map",
}

var scalarIntParamTypes = map[ir.IntType]ParamType{
	ir.U8: PTU8, ir.I8: PTI8, ir.U16: PTU16, ir.I16: PTI16, ir.U32: PTU32, ir.I32: PTI32,
	ir.U64: PTU64, ir.I64: PTI64, ir.U128: PTU128, ir.I128: PTI128, ir.U256: PTU256, ir.I256: PTI256,
}

var arrayIntParamTypes = map[ir.IntType]ParamType{
	ir.U8: PTU8Array, ir.I8: PTI8Array, ir.U16: PTU16Array, ir.I16: PTI16Array, ir.U32: PTU32Array, ir.I32: PTI32Array,
	ir.U64: PTU64Array, ir.I64: PTI64Array, ir.U128: PTU128Array, ir.I128: PTI128Array, ir.U256: PTU256Array, ir.I256: PTI256Array,
}

var mapIntParamTypes = map[ir.IntType]ParamType{
	ir.U8: PTStrU8Map, ir.I8: PTStrI8Map, ir.U16: PTStrU16Map, ir.I16: PTStrI16Map, ir.U32: PTStrU32Map, ir.I32: PTStrI32Map,
	ir.U64: PTStrU64Map, ir.I64: PTStrI64Map, ir.U128: PTStrU128Map, ir.I128: PTStrI128Map, ir.U256: PTStrU256Map, ir.I256: PTStrI256Map,
}

// FromIRType derives the wire ParamType an exported function parameter or
// return value of ty should be encoded as. It reports false for types with
// no ABI representation (void, pointers, compound/struct values, builtin
// iterator handles) — those can only appear inside a contract, never on the
// external call boundary.
func FromIRType(ty *ir.Type) (ParamType, bool) {
	switch {
	case ty.IsString():
		return PTStr, true
	case ty.IsBool():
		return PTBool, true
	case ty.IsInteger():
		pt, ok := scalarIntParamTypes[ty.Int]
		return pt, ok
	case ty.IsParampack():
		return PTParampack, true
	case ty.IsArray():
		return fromArrayElem(ty.Elem)
	case ty.IsMap():
		return fromMapValue(ty.Value)
	}
	return 0, false
}

func fromArrayElem(elem *ir.Type) (ParamType, bool) {
	switch {
	case elem.IsString():
		return PTStrArray, true
	case elem.IsBool():
		return PTBoolArray, true
	case elem.IsInteger():
		pt, ok := arrayIntParamTypes[elem.Int]
		return pt, ok
	}
	return 0, false
}

func fromMapValue(value *ir.Type) (ParamType, bool) {
	switch {
	case value.IsString():
		return PTStrStrMap, true
	case value.IsBool():
		return PTStrBoolMap, true
	case value.IsInteger():
		pt, ok := mapIntParamTypes[value.Int]
		return pt, ok
	}
	return 0, false
}
