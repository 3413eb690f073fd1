package backend

import (
	"encoding/binary"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// PathExpr is one component of a lowered storage path: either a constant
// byte string materialized at compile time (an integer literal key ULEB128
// encoded, a string literal key taken as-is) or a value evaluated at call
// time.
type PathExpr struct {
	Const []byte
	Val   *ir.Expr
}

func (p PathExpr) IsConst() bool { return p.Val == nil }

// StoragePath is the interned form of a get_storage_path call: a sequence of
// key components plus the u32 "extra args" vector the ir_storage_path_extra_args
// metadata carries.
type StoragePath struct {
	Keys      []PathExpr
	ExtraArgs []uint32
}

// BuildStoragePath lowers a get_storage_path instruction's key expressions
// into a StoragePath, folding every literal key into a constant byte string
// up front so only genuinely dynamic keys are evaluated per call.
func BuildStoragePath(keys []ir.Expr, extraArgs []uint32) StoragePath {
	path := StoragePath{ExtraArgs: extraArgs}
	for i := range keys {
		k := keys[i]
		if k.Kind == ir.ExprLiteral {
			path.Keys = append(path.Keys, PathExpr{Const: literalKeyBytes(k.Literal)})
		} else {
			path.Keys = append(path.Keys, PathExpr{Val: &k})
		}
	}
	return path
}

// literalKeyBytes encodes a literal used as a storage-path component: an
// integer is ULEB128-encoded (matching the wire codec's length-prefix
// convention so a host-side composite key can be split back up
// unambiguously), everything else contributes its own textual bytes.
func literalKeyBytes(l ir.Literal) []byte {
	switch {
	case l.IsInt():
		v, _ := l.GetInt()
		return Uleb128(v)
	case l.IsStr():
		s, _ := l.GetString()
		return []byte(s)
	case l.IsBool():
		b, _ := l.GetBool()
		if b {
			return []byte{1}
		}
		return []byte{0}
	default:
		return nil
	}
}

// Uleb128 encodes a non-negative magnitude as unsigned LEB128, the same
// length-prefix convention the ABI codec uses, so a storage key built from
// an integer literal decodes unambiguously on the host side.
func Uleb128(v *big.Int) []byte {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Neg(u)
	}
	if !u.IsUint64() {
		// Fall back to a byte-at-a-time ULEB128 for values wider than 64
		// bits (u128/u256 literal keys); encoding/binary only covers uint64.
		var out []byte
		mask := big.NewInt(0x7f)
		for {
			b := byte(new(big.Int).And(u, mask).Uint64())
			u.Rsh(u, 7)
			if u.Sign() == 0 {
				return append(out, b)
			}
			out = append(out, b|0x80)
		}
	}
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], u.Uint64())
	return tmp[:n]
}
