package abi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/holiman/uint256"
)

// wireVersion is the leading byte of every encoded parameter list. It lets a
// future change to the payload layout fail loudly instead of silently
// misreading bytes encoded by an older binary.
const wireVersion byte = 0

// Encode serializes params into the call-frame wire format: a version byte
// followed by each parameter's payload, in order. The wire format carries no
// per-parameter type tag — a receiver recovers each parameter's type from its
// own declared parameter list (a dispatch stub's ParamABI) rather than from
// the bytes themselves.
func Encode(params []Param) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(wireVersion)
	for i, p := range params {
		if err := encodeParam(&buf, p); err != nil {
			return nil, fmt.Errorf("abi: encode param %d (%s): %w", i, p.Type, err)
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a byte slice produced by Encode back into a parameter list,
// reading exactly len(types) parameters, each decoded as the caller-supplied
// type in types[i]. types must be the same declared parameter list the
// corresponding Encode call used.
func Decode(data []byte, types []ParamType) ([]Param, error) {
	r := bytes.NewReader(data)
	v, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("abi: empty buffer")
	}
	if v != wireVersion {
		return nil, fmt.Errorf("abi: unsupported wire version %d", v)
	}
	out := make([]Param, 0, len(types))
	for i, t := range types {
		p, err := decodeParam(r, t)
		if err != nil {
			return nil, fmt.Errorf("abi: decode param %d (%s): %w", i, t, err)
		}
		out = append(out, p)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("abi: %d trailing bytes after %d declared params", r.Len(), len(types))
	}
	return out, nil
}

func putULEB128(buf *bytes.Buffer, n uint64) {
	var tmp [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(tmp[:], n)
	buf.Write(tmp[:w])
}

func getULEB128(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func writeBytesLP(buf *bytes.Buffer, b []byte) {
	putULEB128(buf, uint64(len(b)))
	buf.Write(b)
}

func readBytesLP(r *bytes.Reader) ([]byte, error) {
	n, err := getULEB128(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := readFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readFull(r *bytes.Reader, out []byte) (int, error) {
	total := 0
	for total < len(out) {
		n, err := r.Read(out[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("short read")
		}
	}
	return total, nil
}

// bigToLE128 encodes v as a fixed 16-byte little-endian two's-complement
// integer. signed is not consulted: a negative v is always written in
// two's complement, whichever 128-bit kind the caller is encoding.
func bigToLE128(v *big.Int, signed bool) []byte {
	return bigToLEFixed(v, 16)
}

func leToBig128(b []byte, signed bool) *big.Int {
	return leFixedToBig(b, signed)
}

// bigToLE256 encodes v as a fixed 32-byte little-endian two's-complement
// integer. The unsigned 256-bit range check (uint256RoundTrip) is done by
// the PTU256 callers before they get here, not by this function.
func bigToLE256(v *big.Int) []byte {
	return bigToLEFixed(v, 32)
}

func leToBig256(b []byte, signed bool) *big.Int {
	return leFixedToBig(b, signed)
}

// bigToLEFixed encodes v (which may be negative) as a fixed-width
// little-endian two's-complement buffer. This is deliberately symmetric with
// leFixedToBig: encoding then decoding always reproduces v, unlike a
// mismatched big-endian/little-endian pair.
func bigToLEFixed(v *big.Int, width int) []byte {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	u := new(big.Int).Mod(v, mod)
	be := u.Bytes()
	out := make([]byte, width)
	copy(out[width-len(be):], be)
	reverse(out)
	return out
}

func leFixedToBig(b []byte, signed bool) *big.Int {
	be := make([]byte, len(b))
	copy(be, b)
	reverse(be)
	u := new(big.Int).SetBytes(be)
	if !signed {
		return u
	}
	width := len(b)
	half := new(big.Int).Lsh(big.NewInt(1), uint(width*8-1))
	if u.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		u.Sub(u, mod)
	}
	return u
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// uint256RoundTrip exercises the 256-bit word type for unsigned magnitudes,
// confirming the value fits the word width before it reaches the wire.
func uint256RoundTrip(v *big.Int) (*big.Int, error) {
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("value overflows 256 bits")
	}
	return u.ToBig(), nil
}

func encodeParam(buf *bytes.Buffer, p Param) error {
	switch p.Type {
	case PTU8:
		buf.WriteByte(p.U8)
	case PTI8:
		buf.WriteByte(byte(p.I8))
	case PTU16:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], p.U16)
		buf.Write(tmp[:])
	case PTI16:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(p.I16))
		buf.Write(tmp[:])
	case PTU32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], p.U32)
		buf.Write(tmp[:])
	case PTI32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(p.I32))
		buf.Write(tmp[:])
	case PTU64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], p.U64)
		buf.Write(tmp[:])
	case PTI64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(p.I64))
		buf.Write(tmp[:])
	case PTU128, PTI128:
		buf.Write(bigToLE128(p.Big, p.Type == PTI128))
	case PTU256:
		rounded, err := uint256RoundTrip(p.Big)
		if err != nil {
			return err
		}
		buf.Write(bigToLE256(rounded))
	case PTI256:
		buf.Write(bigToLE256(p.Big))
	case PTBool:
		if p.B {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case PTStr:
		writeBytesLP(buf, []byte(p.S))
	case PTParampack:
		writeBytesLP(buf, p.Bytes)
	case PTU8Array:
		putULEB128(buf, uint64(len(p.U8s)))
		buf.Write(p.U8s)
	case PTI8Array:
		putULEB128(buf, uint64(len(p.I8s)))
		for _, v := range p.I8s {
			buf.WriteByte(byte(v))
		}
	case PTU16Array:
		putULEB128(buf, uint64(len(p.U16s)))
		for _, v := range p.U16s {
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], v)
			buf.Write(tmp[:])
		}
	case PTI16Array:
		putULEB128(buf, uint64(len(p.I16s)))
		for _, v := range p.I16s {
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], uint16(v))
			buf.Write(tmp[:])
		}
	case PTU32Array:
		putULEB128(buf, uint64(len(p.U32s)))
		for _, v := range p.U32s {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], v)
			buf.Write(tmp[:])
		}
	case PTI32Array:
		putULEB128(buf, uint64(len(p.I32s)))
		for _, v := range p.I32s {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(v))
			buf.Write(tmp[:])
		}
	case PTU64Array:
		putULEB128(buf, uint64(len(p.U64s)))
		for _, v := range p.U64s {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], v)
			buf.Write(tmp[:])
		}
	case PTI64Array:
		putULEB128(buf, uint64(len(p.I64s)))
		for _, v := range p.I64s {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(v))
			buf.Write(tmp[:])
		}
	case PTU128Array, PTI128Array:
		putULEB128(buf, uint64(len(p.Bigs)))
		for _, v := range p.Bigs {
			buf.Write(bigToLE128(v, p.Type == PTI128Array))
		}
	case PTU256Array:
		putULEB128(buf, uint64(len(p.Bigs)))
		for _, v := range p.Bigs {
			rounded, err := uint256RoundTrip(v)
			if err != nil {
				return err
			}
			buf.Write(bigToLE256(rounded))
		}
	case PTI256Array:
		putULEB128(buf, uint64(len(p.Bigs)))
		for _, v := range p.Bigs {
			buf.Write(bigToLE256(v))
		}
	case PTBoolArray:
		putULEB128(buf, uint64(len(p.Bools)))
		for _, v := range p.Bools {
			if v {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		}
	case PTStrArray:
		putULEB128(buf, uint64(len(p.Strs)))
		for _, v := range p.Strs {
			writeBytesLP(buf, []byte(v))
		}
	case PTStrU8Map:
		return encodeMap(buf, p.U8Map, func(v uint8) { buf.WriteByte(v) })
	case PTStrI8Map:
		return encodeMap(buf, p.I8Map, func(v int8) { buf.WriteByte(byte(v)) })
	case PTStrU16Map:
		return encodeMap(buf, p.U16Map, func(v uint16) {
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], v)
			buf.Write(tmp[:])
		})
	case PTStrI16Map:
		return encodeMap(buf, p.I16Map, func(v int16) {
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], uint16(v))
			buf.Write(tmp[:])
		})
	case PTStrU32Map:
		return encodeMap(buf, p.U32Map, func(v uint32) {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], v)
			buf.Write(tmp[:])
		})
	case PTStrI32Map:
		return encodeMap(buf, p.I32Map, func(v int32) {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(v))
			buf.Write(tmp[:])
		})
	case PTStrU64Map:
		return encodeMap(buf, p.U64Map, func(v uint64) {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], v)
			buf.Write(tmp[:])
		})
	case PTStrI64Map:
		return encodeMap(buf, p.I64Map, func(v int64) {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(v))
			buf.Write(tmp[:])
		})
	case PTStrU128Map, PTStrI128Map:
		return encodeMap(buf, p.BigMap, func(v *big.Int) {
			buf.Write(bigToLE128(v, p.Type == PTStrI128Map))
		})
	case PTStrU256Map:
		var encErr error
		err := encodeMap(buf, p.BigMap, func(v *big.Int) {
			rounded, rerr := uint256RoundTrip(v)
			if rerr != nil {
				encErr = rerr
				return
			}
			buf.Write(bigToLE256(rounded))
		})
		if err != nil {
			return err
		}
		return encErr
	case PTStrI256Map:
		return encodeMap(buf, p.BigMap, func(v *big.Int) {
			buf.Write(bigToLE256(v))
		})
	case PTStrBoolMap:
		return encodeMap(buf, p.BoolMap, func(v bool) {
			if v {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		})
	case PTStrStrMap:
		return encodeMap(buf, p.StrMap, func(v string) {
			writeBytesLP(buf, []byte(v))
		})
	default:
		return fmt.Errorf("unknown param type")
	}
	return nil
}

// encodeMap writes the ULEB128 entry count followed by each (key, value)
// pair in sorted key order. Sorting makes the wire output deterministic,
// since Go map iteration order is randomized and callers may round-trip the
// same logical map through multiple encode calls and expect identical bytes.
func encodeMap[V any](buf *bytes.Buffer, m map[string]V, writeVal func(V)) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	putULEB128(buf, uint64(len(keys)))
	for _, k := range keys {
		writeBytesLP(buf, []byte(k))
		writeVal(m[k])
	}
	return nil
}

func decodeMap[V any](r *bytes.Reader, readVal func() (V, error)) (map[string]V, error) {
	n, err := getULEB128(r)
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, n)
	for i := uint64(0); i < n; i++ {
		kb, err := readBytesLP(r)
		if err != nil {
			return nil, err
		}
		v, err := readVal()
		if err != nil {
			return nil, err
		}
		out[string(kb)] = v
	}
	return out, nil
}

func decodeParam(r *bytes.Reader, t ParamType) (Param, error) {
	switch t {
	case PTU8:
		v, err := r.ReadByte()
		return Param{Type: t, U8: v}, err
	case PTI8:
		v, err := r.ReadByte()
		return Param{Type: t, I8: int8(v)}, err
	case PTU16:
		var tmp [2]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, U16: binary.LittleEndian.Uint16(tmp[:])}, nil
	case PTI16:
		var tmp [2]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, I16: int16(binary.LittleEndian.Uint16(tmp[:]))}, nil
	case PTU32:
		var tmp [4]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, U32: binary.LittleEndian.Uint32(tmp[:])}, nil
	case PTI32:
		var tmp [4]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, I32: int32(binary.LittleEndian.Uint32(tmp[:]))}, nil
	case PTU64:
		var tmp [8]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, U64: binary.LittleEndian.Uint64(tmp[:])}, nil
	case PTI64:
		var tmp [8]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return Param{}, err
		}
		return Param{Type: t, I64: int64(binary.LittleEndian.Uint64(tmp[:]))}, nil
	case PTU128, PTI128:
		tmp := make([]byte, 16)
		if _, err := readFull(r, tmp); err != nil {
			return Param{}, err
		}
		return Param{Type: t, Big: leToBig128(tmp, t == PTI128)}, nil
	case PTU256, PTI256:
		tmp := make([]byte, 32)
		if _, err := readFull(r, tmp); err != nil {
			return Param{}, err
		}
		return Param{Type: t, Big: leToBig256(tmp, t == PTI256)}, nil
	case PTBool:
		v, err := r.ReadByte()
		return Param{Type: t, B: v != 0}, err
	case PTStr:
		b, err := readBytesLP(r)
		if err != nil {
			return Param{}, err
		}
		return Param{Type: t, S: string(b)}, nil
	case PTParampack:
		b, err := readBytesLP(r)
		if err != nil {
			return Param{}, err
		}
		return Param{Type: t, Bytes: b}, nil
	case PTU8Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]uint8, n)
		if _, err := readFull(r, out); err != nil {
			return Param{}, err
		}
		return Param{Type: t, U8s: out}, nil
	case PTI8Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]int8, n)
		for i := range out {
			b, err := r.ReadByte()
			if err != nil {
				return Param{}, err
			}
			out[i] = int8(b)
		}
		return Param{Type: t, I8s: out}, nil
	case PTU16Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]uint16, n)
		for i := range out {
			var tmp [2]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = binary.LittleEndian.Uint16(tmp[:])
		}
		return Param{Type: t, U16s: out}, nil
	case PTI16Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]int16, n)
		for i := range out {
			var tmp [2]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = int16(binary.LittleEndian.Uint16(tmp[:]))
		}
		return Param{Type: t, I16s: out}, nil
	case PTU32Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]uint32, n)
		for i := range out {
			var tmp [4]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = binary.LittleEndian.Uint32(tmp[:])
		}
		return Param{Type: t, U32s: out}, nil
	case PTI32Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]int32, n)
		for i := range out {
			var tmp [4]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = int32(binary.LittleEndian.Uint32(tmp[:]))
		}
		return Param{Type: t, I32s: out}, nil
	case PTU64Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]uint64, n)
		for i := range out {
			var tmp [8]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = binary.LittleEndian.Uint64(tmp[:])
		}
		return Param{Type: t, U64s: out}, nil
	case PTI64Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]int64, n)
		for i := range out {
			var tmp [8]byte
			if _, err := readFull(r, tmp[:]); err != nil {
				return Param{}, err
			}
			out[i] = int64(binary.LittleEndian.Uint64(tmp[:]))
		}
		return Param{Type: t, I64s: out}, nil
	case PTU128Array, PTI128Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]*big.Int, n)
		for i := range out {
			tmp := make([]byte, 16)
			if _, err := readFull(r, tmp); err != nil {
				return Param{}, err
			}
			out[i] = leToBig128(tmp, t == PTI128Array)
		}
		return Param{Type: t, Bigs: out}, nil
	case PTU256Array, PTI256Array:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]*big.Int, n)
		for i := range out {
			tmp := make([]byte, 32)
			if _, err := readFull(r, tmp); err != nil {
				return Param{}, err
			}
			out[i] = leToBig256(tmp, t == PTI256Array)
		}
		return Param{Type: t, Bigs: out}, nil
	case PTBoolArray:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]bool, n)
		for i := range out {
			b, err := r.ReadByte()
			if err != nil {
				return Param{}, err
			}
			out[i] = b != 0
		}
		return Param{Type: t, Bools: out}, nil
	case PTStrArray:
		n, err := getULEB128(r)
		if err != nil {
			return Param{}, err
		}
		out := make([]string, n)
		for i := range out {
			b, err := readBytesLP(r)
			if err != nil {
				return Param{}, err
			}
			out[i] = string(b)
		}
		return Param{Type: t, Strs: out}, nil
	case PTStrU8Map:
		m, err := decodeMap(r, func() (uint8, error) { return r.ReadByte() })
		return Param{Type: t, U8Map: m}, err
	case PTStrI8Map:
		m, err := decodeMap(r, func() (int8, error) {
			b, err := r.ReadByte()
			return int8(b), err
		})
		return Param{Type: t, I8Map: m}, err
	case PTStrU16Map:
		m, err := decodeMap(r, func() (uint16, error) {
			var tmp [2]byte
			_, err := readFull(r, tmp[:])
			return binary.LittleEndian.Uint16(tmp[:]), err
		})
		return Param{Type: t, U16Map: m}, err
	case PTStrI16Map:
		m, err := decodeMap(r, func() (int16, error) {
			var tmp [2]byte
			_, err := readFull(r, tmp[:])
			return int16(binary.LittleEndian.Uint16(tmp[:])), err
		})
		return Param{Type: t, I16Map: m}, err
	case PTStrU32Map:
		m, err := decodeMap(r, func() (uint32, error) {
			var tmp [4]byte
			_, err := readFull(r, tmp[:])
			return binary.LittleEndian.Uint32(tmp[:]), err
		})
		return Param{Type: t, U32Map: m}, err
	case PTStrI32Map:
		m, err := decodeMap(r, func() (int32, error) {
			var tmp [4]byte
			_, err := readFull(r, tmp[:])
			return int32(binary.LittleEndian.Uint32(tmp[:])), err
		})
		return Param{Type: t, I32Map: m}, err
	case PTStrU64Map:
		m, err := decodeMap(r, func() (uint64, error) {
			var tmp [8]byte
			_, err := readFull(r, tmp[:])
			return binary.LittleEndian.Uint64(tmp[:]), err
		})
		return Param{Type: t, U64Map: m}, err
	case PTStrI64Map:
		m, err := decodeMap(r, func() (int64, error) {
			var tmp [8]byte
			_, err := readFull(r, tmp[:])
			return int64(binary.LittleEndian.Uint64(tmp[:])), err
		})
		return Param{Type: t, I64Map: m}, err
	case PTStrU128Map, PTStrI128Map:
		signed := t == PTStrI128Map
		m, err := decodeMap(r, func() (*big.Int, error) {
			tmp := make([]byte, 16)
			_, err := readFull(r, tmp)
			return leToBig128(tmp, signed), err
		})
		return Param{Type: t, BigMap: m}, err
	case PTStrU256Map, PTStrI256Map:
		signed := t == PTStrI256Map
		m, err := decodeMap(r, func() (*big.Int, error) {
			tmp := make([]byte, 32)
			_, err := readFull(r, tmp)
			return leToBig256(tmp, signed), err
		})
		return Param{Type: t, BigMap: m}, err
	case PTStrBoolMap:
		m, err := decodeMap(r, func() (bool, error) {
			b, err := r.ReadByte()
			return b != 0, err
		})
		return Param{Type: t, BoolMap: m}, err
	case PTStrStrMap:
		m, err := decodeMap(r, func() (string, error) {
			b, err := readBytesLP(r)
			return string(b), err
		})
		return Param{Type: t, StrMap: m}, err
	default:
		return Param{}, fmt.Errorf("unknown param type")
	}
}
