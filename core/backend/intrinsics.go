package backend

import (
	"fmt"
	"strings"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// IntrinsicDescriptor records how many arguments an intrinsic call expects
// and whether it needs the extra runtime-context argument (source position)
// for error reporting, per the fixed registry in the backend contract.
type IntrinsicDescriptor struct {
	Name          string
	MinArgs       int
	Variadic      bool
	NeedsRuntimeCtx bool
}

// intrinsicTable lists every intrinsic name this backend recognizes, one
// entry per intrinsic, grouped by the families the contract names
// explicitly: vector, map, storage, builtin, math, data_stream, str, base64,
// hex, json, ssz, rlp.
var intrinsicTable = map[string]IntrinsicDescriptor{
	"ir.vector.new":        {MinArgs: 0},
	"ir.vector.push":       {MinArgs: 2},
	"ir.vector.pop":        {MinArgs: 1},
	"ir.vector.get":        {MinArgs: 2, NeedsRuntimeCtx: true},
	"ir.vector.set":        {MinArgs: 3, NeedsRuntimeCtx: true},
	"ir.vector.len":        {MinArgs: 1},
	"ir.vector.iter":       {MinArgs: 1},
	"ir.vector.iter_next":  {MinArgs: 1},

	"ir.map.new":    {MinArgs: 0},
	"ir.map.set":    {MinArgs: 3},
	"ir.map.get":    {MinArgs: 2, NeedsRuntimeCtx: true},
	"ir.map.has":    {MinArgs: 2},
	"ir.map.del":    {MinArgs: 2},
	"ir.map.len":    {MinArgs: 1},
	"ir.map.iter":   {MinArgs: 1},
	"ir.map.iter_next": {MinArgs: 1},

	"ir.storage.push": {MinArgs: 2},
	"ir.storage.len":  {MinArgs: 1},

	"ir.builtin.print":        {MinArgs: 1, Variadic: true},
	"ir.builtin.parampack":    {MinArgs: 0},
	"ir.builtin.call_log":     {MinArgs: 2, Variadic: true},
	"ir.builtin.block_number": {MinArgs: 0},
	"ir.builtin.block_timestamp": {MinArgs: 0},
	"ir.builtin.call_sender":  {MinArgs: 0},
	"ir.builtin.tx_hash":      {MinArgs: 0},
	"ir.builtin.revert":       {MinArgs: 2},

	"ir.math.pow": {MinArgs: 2, NeedsRuntimeCtx: true},

	"ir.data_stream.encode_u8":   {MinArgs: 1},
	"ir.data_stream.encode_u32":  {MinArgs: 1},
	"ir.data_stream.encode_u64":  {MinArgs: 1},
	"ir.data_stream.encode_str":  {MinArgs: 1},
	"ir.data_stream.decode_u8":   {MinArgs: 1, NeedsRuntimeCtx: true},
	"ir.data_stream.decode_u32":  {MinArgs: 1, NeedsRuntimeCtx: true},
	"ir.data_stream.decode_u64":  {MinArgs: 1, NeedsRuntimeCtx: true},
	"ir.data_stream.decode_str":  {MinArgs: 1, NeedsRuntimeCtx: true},

	"ir.str.concat":   {MinArgs: 2},
	"ir.str.len":       {MinArgs: 1},
	"ir.str.substr":    {MinArgs: 3, NeedsRuntimeCtx: true},
	"ir.str.to_bytes":  {MinArgs: 1},

	"ir.base64.encode": {MinArgs: 1},
	"ir.base64.decode": {MinArgs: 1, NeedsRuntimeCtx: true},

	"ir.hex.encode": {MinArgs: 1},
	"ir.hex.decode": {MinArgs: 1, NeedsRuntimeCtx: true},

	"ir.json.encode": {MinArgs: 1},
	"ir.json.decode": {MinArgs: 1, NeedsRuntimeCtx: true},

	"ir.ssz.encode": {MinArgs: 1},
	"ir.ssz.decode": {MinArgs: 1, NeedsRuntimeCtx: true},

	"ir.rlp.encode": {MinArgs: 1},
	"ir.rlp.decode": {MinArgs: 1, NeedsRuntimeCtx: true},
}

func init() {
	for name := range intrinsicTable {
		d := intrinsicTable[name]
		d.Name = name
		intrinsicTable[name] = d
	}
}

// LookupIntrinsic resolves a call's intrinsic name against the fixed
// registry.
func LookupIntrinsic(name string) (IntrinsicDescriptor, bool) {
	d, ok := intrinsicTable[name]
	return d, ok
}

// MangleIntrinsic synthesizes the target-level wrapper name for an
// intrinsic call site, embedding the operand type signature so e.g.
// "ir.vector.push" specialized over [u64] and over [str] resolve to
// distinct wrappers.
func MangleIntrinsic(name string, argTypes []*ir.Type) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(name, ".", "_"))
	for _, t := range argTypes {
		fmt.Fprintf(&b, "_%s", t.FuncSignTyStr())
	}
	return b.String()
}
