package abi

import "math/big"

// Param is a single ABI-encodable value. Exactly one of its fields is
// meaningful for a given Type; which one is determined by the Go type
// family the original's per-variant enum grouped together (8/16/32/64-bit
// native ints, 128/256-bit via math/big, bool, string, raw bytes, and a
// slice/map of each for the Array/Map families).
type Param struct {
	Type ParamType

	U8  uint8
	I8  int8
	U16 uint16
	I16 int16
	U32 uint32
	I32 int32
	U64 uint64
	I64 int64
	Big *big.Int // U128, I128, U256, I256
	B   bool
	S   string

	Bytes []byte // Parampack

	U8s   []uint8
	I8s   []int8
	U16s  []uint16
	I16s  []int16
	U32s  []uint32
	I32s  []int32
	U64s  []uint64
	I64s  []int64
	Bigs  []*big.Int // U128Array, I128Array, U256Array, I256Array
	Bools []bool
	Strs  []string

	U8Map   map[string]uint8
	I8Map   map[string]int8
	U16Map  map[string]uint16
	I16Map  map[string]int16
	U32Map  map[string]uint32
	I32Map  map[string]int32
	U64Map  map[string]uint64
	I64Map  map[string]int64
	BigMap  map[string]*big.Int // StrU128Map, StrI128Map, StrU256Map, StrI256Map
	BoolMap map[string]bool
	StrMap  map[string]string
}

func NewU8(v uint8) Param   { return Param{Type: PTU8, U8: v} }
func NewI8(v int8) Param    { return Param{Type: PTI8, I8: v} }
func NewU16(v uint16) Param { return Param{Type: PTU16, U16: v} }
func NewI16(v int16) Param  { return Param{Type: PTI16, I16: v} }
func NewU32(v uint32) Param { return Param{Type: PTU32, U32: v} }
func NewI32(v int32) Param  { return Param{Type: PTI32, I32: v} }
func NewU64(v uint64) Param { return Param{Type: PTU64, U64: v} }
func NewI64(v int64) Param  { return Param{Type: PTI64, I64: v} }
func NewU128(v *big.Int) Param { return Param{Type: PTU128, Big: v} }
func NewI128(v *big.Int) Param { return Param{Type: PTI128, Big: v} }
func NewU256(v *big.Int) Param { return Param{Type: PTU256, Big: v} }
func NewI256(v *big.Int) Param { return Param{Type: PTI256, Big: v} }
func NewBool(v bool) Param  { return Param{Type: PTBool, B: v} }
func NewStr(v string) Param { return Param{Type: PTStr, S: v} }
func NewParampack(v []byte) Param { return Param{Type: PTParampack, Bytes: v} }

func NewU8Array(v []uint8) Param   { return Param{Type: PTU8Array, U8s: v} }
func NewI8Array(v []int8) Param    { return Param{Type: PTI8Array, I8s: v} }
func NewU16Array(v []uint16) Param { return Param{Type: PTU16Array, U16s: v} }
func NewI16Array(v []int16) Param  { return Param{Type: PTI16Array, I16s: v} }
func NewU32Array(v []uint32) Param { return Param{Type: PTU32Array, U32s: v} }
func NewI32Array(v []int32) Param  { return Param{Type: PTI32Array, I32s: v} }
func NewU64Array(v []uint64) Param { return Param{Type: PTU64Array, U64s: v} }
func NewI64Array(v []int64) Param  { return Param{Type: PTI64Array, I64s: v} }
func NewU128Array(v []*big.Int) Param { return Param{Type: PTU128Array, Bigs: v} }
func NewI128Array(v []*big.Int) Param { return Param{Type: PTI128Array, Bigs: v} }
func NewU256Array(v []*big.Int) Param { return Param{Type: PTU256Array, Bigs: v} }
func NewI256Array(v []*big.Int) Param { return Param{Type: PTI256Array, Bigs: v} }
func NewBoolArray(v []bool) Param     { return Param{Type: PTBoolArray, Bools: v} }
func NewStrArray(v []string) Param    { return Param{Type: PTStrArray, Strs: v} }

func NewStrU8Map(v map[string]uint8) Param   { return Param{Type: PTStrU8Map, U8Map: v} }
func NewStrI8Map(v map[string]int8) Param    { return Param{Type: PTStrI8Map, I8Map: v} }
func NewStrU16Map(v map[string]uint16) Param { return Param{Type: PTStrU16Map, U16Map: v} }
func NewStrI16Map(v map[string]int16) Param  { return Param{Type: PTStrI16Map, I16Map: v} }
func NewStrU32Map(v map[string]uint32) Param { return Param{Type: PTStrU32Map, U32Map: v} }
func NewStrI32Map(v map[string]int32) Param  { return Param{Type: PTStrI32Map, I32Map: v} }
func NewStrU64Map(v map[string]uint64) Param { return Param{Type: PTStrU64Map, U64Map: v} }
func NewStrI64Map(v map[string]int64) Param  { return Param{Type: PTStrI64Map, I64Map: v} }
func NewStrU128Map(v map[string]*big.Int) Param { return Param{Type: PTStrU128Map, BigMap: v} }
func NewStrI128Map(v map[string]*big.Int) Param { return Param{Type: PTStrI128Map, BigMap: v} }
func NewStrU256Map(v map[string]*big.Int) Param { return Param{Type: PTStrU256Map, BigMap: v} }
func NewStrI256Map(v map[string]*big.Int) Param { return Param{Type: PTStrI256Map, BigMap: v} }
func NewStrBoolMap(v map[string]bool) Param     { return Param{Type: PTStrBoolMap, BoolMap: v} }
func NewStrStrMap(v map[string]string) Param    { return Param{Type: PTStrStrMap, StrMap: v} }
