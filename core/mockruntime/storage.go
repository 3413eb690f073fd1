package mockruntime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// encodeStorageValue / decodeStorageValue persist a Value as a flat byte
// string, following the same length-prefix convention core/abi/codec.go
// uses for the call ABI: a one-byte kind tag, then the value's bytes with
// ULEB128 length prefixes for variable-length kinds.
const (
	skInt byte = iota
	skBool
	skStr
	skBytes
	skArray
	skVoid
)

func encodeStorageValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeStorageValueInto(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeStorageValueInto(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case VInt:
		buf.WriteByte(skInt)
		buf.WriteByte(byte(v.IntType.Width))
		if v.IntType.Signed {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		mag := v.Int.Bytes()
		neg := v.Int.Sign() < 0
		if neg {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		putULEB128(buf, uint64(len(mag)))
		buf.Write(mag)
	case VBool:
		buf.WriteByte(skBool)
		if v.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case VStr:
		buf.WriteByte(skStr)
		putULEB128(buf, uint64(len(v.Str)))
		buf.WriteString(v.Str)
	case VBytes:
		buf.WriteByte(skBytes)
		putULEB128(buf, uint64(len(v.Bytes)))
		buf.Write(v.Bytes)
	case VArray:
		buf.WriteByte(skArray)
		putULEB128(buf, uint64(len(v.Array)))
		for _, elem := range v.Array {
			if err := encodeStorageValueInto(buf, elem); err != nil {
				return err
			}
		}
	case VVoid:
		buf.WriteByte(skVoid)
	default:
		return fmt.Errorf("mockruntime: storage encoding unsupported for value kind %v", v.Kind)
	}
	return nil
}

func putULEB128(buf *bytes.Buffer, n uint64) {
	var tmp [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(tmp[:], n)
	buf.Write(tmp[:w])
}

func decodeStorageValue(raw []byte, ty *ir.Type) (Value, error) {
	r := bytes.NewReader(raw)
	return decodeStorageValueFrom(r, ty)
}

func decodeStorageValueFrom(r *bytes.Reader, ty *ir.Type) (Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case skInt:
		widthB, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		signedB, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		negB, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Value{}, err
		}
		mag := make([]byte, n)
		if _, err := r.Read(mag); err != nil && n > 0 {
			return Value{}, err
		}
		v := new(big.Int).SetBytes(mag)
		if negB == 1 {
			v.Neg(v)
		}
		it := ir.IntType{Width: ir.IntWidth(widthB), Signed: signedB == 1}
		return IntValue(v, it), nil
	case skBool:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b == 1), nil
	case skStr:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Value{}, err
		}
		s := make([]byte, n)
		if _, err := r.Read(s); err != nil && n > 0 {
			return Value{}, err
		}
		return StrValue(string(s)), nil
	case skBytes:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Value{}, err
		}
		b := make([]byte, n)
		if _, err := r.Read(b); err != nil && n > 0 {
			return Value{}, err
		}
		return BytesValue(b), nil
	case skArray:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Value{}, err
		}
		var elemTy *ir.Type
		if ty != nil && ty.IsArray() {
			elemTy = ty.Elem
		}
		arr := make([]Value, 0, n)
		for i := uint64(0); i < n; i++ {
			elem, err := decodeStorageValueFrom(r, elemTy)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, elem)
		}
		return Value{Kind: VArray, Array: arr}, nil
	case skVoid:
		return VoidValue(), nil
	}
	return Value{}, fmt.Errorf("mockruntime: unknown storage value tag %d", tag)
}
