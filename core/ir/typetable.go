package ir

import (
	"fmt"
	"strings"
)

// TypeTable hash-conses every Type constructed during a single compilation so
// that structurally identical types share one *Type. This turns structural
// type comparison (needed by the runtime class table and the ABI codec) into
// pointer comparison and gives every distinct type a stable, dense handle
// (its Offset) suitable for publishing to the backend's runtime class array.
//
// Per design note in SPEC_FULL.md, this table lives on a per-compilation
// Context rather than as a process-wide global, so tests and concurrent
// compilations never interfere with each other.
type TypeTable struct {
	byKey  map[string]*Type
	all    []*Type
	offset map[*Type]int
}

func NewTypeTable() *TypeTable {
	return &TypeTable{
		byKey:  make(map[string]*Type),
		offset: make(map[*Type]int),
	}
}

func (tt *TypeTable) intern(key string, build func() *Type) *Type {
	if existing, ok := tt.byKey[key]; ok {
		return existing
	}
	t := build()
	tt.byKey[key] = t
	tt.offset[t] = len(tt.all)
	tt.all = append(tt.all, t)
	return t
}

func (tt *TypeTable) Void() *Type { return tt.Primitive(PrimVoid, IntType{}) }
func (tt *TypeTable) Bool() *Type { return tt.Primitive(PrimBool, IntType{}) }
func (tt *TypeTable) Str() *Type  { return tt.Primitive(PrimStr, IntType{}) }

func (tt *TypeTable) Int(it IntType) *Type {
	return tt.Primitive(PrimInt, it)
}

func (tt *TypeTable) Primitive(kind PrimitiveKind, it IntType) *Type {
	key := fmt.Sprintf("prim:%d:%d:%v", kind, it.Width, it.Signed)
	return tt.intern(key, func() *Type {
		return &Type{kind: kindPrimitive, Primitive: kind, Int: it}
	})
}

func (tt *TypeTable) Array(elem *Type, length *uint32) *Type {
	l := "dyn"
	if length != nil {
		l = fmt.Sprintf("%d", *length)
	}
	key := fmt.Sprintf("arr:%p:%s", elem, l)
	return tt.intern(key, func() *Type {
		return &Type{kind: kindArray, Elem: elem, Length: length}
	})
}

func (tt *TypeTable) Map(key, value *Type) *Type {
	k := fmt.Sprintf("map:%p:%p", key, value)
	return tt.intern(k, func() *Type {
		return &Type{kind: kindMap, Key: key, Value: value}
	})
}

func (tt *TypeTable) Compound(fields []Field) *Type {
	var b strings.Builder
	b.WriteString("compound:")
	for _, f := range fields {
		fmt.Fprintf(&b, "%s:%p,", f.Name, f.Type)
	}
	return tt.intern(b.String(), func() *Type {
		return &Type{kind: kindCompound, Fields: fields}
	})
}

func (tt *TypeTable) Pointer(pointee *Type) *Type {
	key := fmt.Sprintf("ptr:%p", pointee)
	return tt.intern(key, func() *Type {
		return &Type{kind: kindPointer, Pointee: pointee}
	})
}

func (tt *TypeTable) Builtin(b BuiltinKind) *Type {
	key := fmt.Sprintf("builtin:%d", b)
	return tt.intern(key, func() *Type {
		return &Type{kind: kindBuiltin, Builtin: b}
	})
}

// Def registers (or retrieves) a named TypeDef binding. Recursive
// definitions (a struct containing a pointer to itself) are supported by
// constructing the TypeDefinition's Type field in two steps: the caller
// reserves the definition first, then fills in ty.Def.Type once the
// recursive reference can resolve.
func (tt *TypeTable) Def(name string, kind TypeDefKind) *Type {
	key := "def:" + name
	return tt.intern(key, func() *Type {
		def := &TypeDefinition{Name: name, Kind: kind, Metadata: MetadataMap{}}
		return &Type{kind: kindDef, Def: def}
	})
}

// Offset returns the stable small-integer handle assigned to t when it was
// first interned. Structurally equal types always share an offset (P6).
func (tt *TypeTable) Offset(t *Type) (int, bool) {
	off, ok := tt.offset[t]
	return off, ok
}

// All returns every distinct interned type in intern order (their offsets).
func (tt *TypeTable) All() []*Type { return tt.all }
