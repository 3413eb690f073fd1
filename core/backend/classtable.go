package backend

import (
	"encoding/binary"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// classKind is the structural tag a type's entry in the runtime class table
// carries: enough for the SSZ/RLP/JSON/print-type intrinsics to recurse
// without consulting the compiler's own Type graph at runtime.
type classKind byte

const (
	classVoid classKind = iota
	classBool
	classStr
	classInt
	classArray
	classMap
	classCompound
	classPointer
	classBuiltin
)

// ClassTable is the single global byte array the backend interns every
// distinct compiled type into. Each type's Offset (core/ir.TypeTable.Offset)
// indexes this table's entries slice; init_runtime publishes Bytes()'s base
// address to the runtime library so reflective intrinsics can walk it.
type ClassTable struct {
	Entries [][]byte
	Bytes   []byte
}

// BuildClassTable serializes every type tt has interned, in intern order, so
// a type's core/ir.TypeTable.Offset also indexes directly into Entries.
func BuildClassTable(tt *ir.TypeTable) *ClassTable {
	ct := &ClassTable{}
	for _, ty := range tt.All() {
		entry := encodeClassEntry(tt, ty)
		ct.Entries = append(ct.Entries, entry)
		ct.Bytes = append(ct.Bytes, entry...)
	}
	return ct
}

func encodeClassEntry(tt *ir.TypeTable, ty *ir.Type) []byte {
	var buf []byte
	putOffset := func(ref *ir.Type) {
		off, _ := tt.Offset(ref)
		var tmp [binary.MaxVarintLen32]byte
		n := binary.PutUvarint(tmp[:], uint64(off))
		buf = append(buf, tmp[:n]...)
	}
	switch {
	case ty.IsVoid():
		buf = append(buf, byte(classVoid))
	case ty.IsBool():
		buf = append(buf, byte(classBool))
	case ty.IsString():
		buf = append(buf, byte(classStr))
	case ty.IsInteger():
		buf = append(buf, byte(classInt), byte(ty.Int.Width))
		if ty.Int.Signed {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case ty.IsArray():
		buf = append(buf, byte(classArray))
		putOffset(ty.Elem)
	case ty.IsMap():
		buf = append(buf, byte(classMap))
		putOffset(ty.Key)
		putOffset(ty.Value)
	case ty.IsPointer():
		buf = append(buf, byte(classPointer))
		putOffset(ty.Pointee)
	case ty.IsCompound():
		buf = append(buf, byte(classCompound))
		var tmp [binary.MaxVarintLen32]byte
		n := binary.PutUvarint(tmp[:], uint64(len(ty.Fields)))
		buf = append(buf, tmp[:n]...)
		for _, f := range ty.Fields {
			putOffset(f.Type)
		}
	case ty.IsDef():
		buf = append(buf, byte(classCompound))
		putOffset(ty.Def.Type)
	default:
		buf = append(buf, byte(classBuiltin))
	}
	return buf
}
