// Package ir defines the Smart Intermediate Representation: a typed,
// control-flow-graph based IR for smart contracts compiled from Yul or
// written directly in the textual SIR surface syntax.
package ir

import (
	"fmt"
	"strings"
)

// IntWidth enumerates the supported signed/unsigned integer bit widths.
type IntWidth int

const (
	W8 IntWidth = iota
	W16
	W32
	W64
	W128
	W256
)

func (w IntWidth) Bytes() int {
	switch w {
	case W8:
		return 1
	case W16:
		return 2
	case W32:
		return 4
	case W64:
		return 8
	case W128:
		return 16
	case W256:
		return 32
	}
	panic("unknown int width")
}

// IntType pairs a bit width with a signedness flag.
type IntType struct {
	Width  IntWidth
	Signed bool
}

func (t IntType) String() string {
	p := "u"
	if t.Signed {
		p = "i"
	}
	switch t.Width {
	case W8:
		return p + "8"
	case W16:
		return p + "16"
	case W32:
		return p + "32"
	case W64:
		return p + "64"
	case W128:
		return p + "128"
	case W256:
		return p + "256"
	}
	return p + "?"
}

var (
	U8   = IntType{W8, false}
	U16  = IntType{W16, false}
	U32  = IntType{W32, false}
	U64  = IntType{W64, false}
	U128 = IntType{W128, false}
	U256 = IntType{W256, false}
	I8   = IntType{W8, true}
	I16  = IntType{W16, true}
	I32  = IntType{W32, true}
	I64  = IntType{W64, true}
	I128 = IntType{W128, true}
	I256 = IntType{W256, true}
)

// PrimitiveKind enumerates void/bool/str/int primitives.
type PrimitiveKind int

const (
	PrimVoid PrimitiveKind = iota
	PrimBool
	PrimStr
	PrimInt
)

// BuiltinKind enumerates the four runtime-recognized opaque reference types.
type BuiltinKind int

const (
	BuiltinVectorIter BuiltinKind = iota
	BuiltinMapIter
	BuiltinParampack
	BuiltinStoragePath
)

const (
	IRVectorIterTy   = "ir.vector.iter"
	IRMapIterTy      = "ir.map.iter"
	IRParampackTy    = "ir.builtin.parampack"
	IRStoragePathTy  = "ir.builtin.StoragePath"
)

func (b BuiltinKind) TypeName() string {
	switch b {
	case BuiltinVectorIter:
		return IRVectorIterTy
	case BuiltinMapIter:
		return IRMapIterTy
	case BuiltinParampack:
		return IRParampackTy
	case BuiltinStoragePath:
		return IRStoragePathTy
	}
	return "?"
}

// TypeDefKind tags a named TypeDef binding.
type TypeDefKind int

const (
	TypeDefStruct TypeDefKind = iota
	TypeDefEnum
	TypeDefBuiltin
	TypeDefAlias
)

// Field is a named, positionally addressed member of a Compound type.
type Field struct {
	Name string
	Type *Type
}

// Type is an arena-interned handle into the TypeTable. Two structurally
// identical types share the same handle: Type values compare by pointer once
// interned, which is what TypeTable.Intern guarantees.
type Type struct {
	kind typeKind

	Primitive PrimitiveKind
	Int       IntType

	// Array
	Elem   *Type
	Length *uint32 // nil => dynamically sized

	// Map
	Key   *Type
	Value *Type

	// Compound
	Fields []Field

	// Pointer
	Pointee *Type

	// TypeDef
	Def *TypeDefinition

	// Builtin
	Builtin BuiltinKind
}

type typeKind int

const (
	kindPrimitive typeKind = iota
	kindArray
	kindMap
	kindCompound
	kindPointer
	kindDef
	kindBuiltin
)

// TypeDefinition is a named type binding carrying a kind tag and metadata.
type TypeDefinition struct {
	Name     string
	Kind     TypeDefKind
	Type     *Type
	Metadata MetadataMap
}

// IsReferenceType reports whether a value of this type is heap/handle backed:
// array, map, pointer, or a builtin reference kind (everything but parampack's
// sibling storage-path counts, per the invariant in the data model).
func (t *Type) IsReferenceType() bool {
	switch t.kind {
	case kindPointer, kindArray, kindMap:
		return true
	case kindBuiltin:
		return t.Builtin == BuiltinMapIter || t.Builtin == BuiltinVectorIter || t.Builtin == BuiltinParampack
	}
	return false
}

func (t *Type) IsPointer() bool      { return t.kind == kindPointer }
func (t *Type) IsString() bool       { return t.kind == kindPrimitive && t.Primitive == PrimStr }
func (t *Type) IsVoid() bool         { return t.kind == kindPrimitive && t.Primitive == PrimVoid }
func (t *Type) IsBool() bool         { return t.kind == kindPrimitive && t.Primitive == PrimBool }
func (t *Type) IsInteger() bool      { return t.kind == kindPrimitive && t.Primitive == PrimInt }
func (t *Type) IsArray() bool        { return t.kind == kindArray }
func (t *Type) IsMap() bool          { return t.kind == kindMap }
func (t *Type) IsParampack() bool    { return t.kind == kindBuiltin && t.Builtin == BuiltinParampack }
func (t *Type) IsStoragePath() bool  { return t.kind == kindBuiltin && t.Builtin == BuiltinStoragePath }

func (t *Type) IsSignedInt() bool {
	return t.IsInteger() && t.Int.Signed
}

func (t *Type) IsCompound() bool { return t.kind == kindCompound }
func (t *Type) IsDef() bool      { return t.kind == kindDef }
func (t *Type) IsBuiltin() bool  { return t.kind == kindBuiltin }

// String renders the SIR textual surface spelling of the type.
func (t *Type) String() string {
	switch t.kind {
	case kindPrimitive:
		switch t.Primitive {
		case PrimVoid:
			return "void"
		case PrimBool:
			return "bool"
		case PrimStr:
			return "str"
		case PrimInt:
			return t.Int.String()
		}
	case kindMap:
		return fmt.Sprintf("{%s:%s}", t.Key, t.Value)
	case kindArray:
		if t.Length != nil {
			return fmt.Sprintf("[%s;%d]", t.Elem, *t.Length)
		}
		return fmt.Sprintf("[%s]", t.Elem)
	case kindCompound:
		var b strings.Builder
		b.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", f.Name, f.Type)
		}
		b.WriteString("}")
		return b.String()
	case kindPointer:
		return t.Pointee.String() + "*"
	case kindDef:
		return "%" + t.Def.Name
	case kindBuiltin:
		return "%" + t.Builtin.TypeName()
	}
	return "?"
}

// FuncSignTyStr renders the type as used inside a mangled function name: an
// array of T is spelled "[T]" regardless of static length, matching the
// backend's name-mangling convention (see backend.Mangle).
func (t *Type) FuncSignTyStr() string {
	if t.kind == kindArray {
		return "[" + t.Elem.FuncSignTyStr() + "]"
	}
	return t.String()
}
