package backend

import (
	"fmt"
	"math/big"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// OverflowError is returned by the Checked* helpers when a result falls
// outside the representable range of the operand's integer type. The mock
// runtime turns this into the fixed abort message the overflow-check option
// promises.
type OverflowError struct {
	Op string
	IntType ir.IntType
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow: %s on %s", e.Op, e.IntType)
}

// Range returns the inclusive [min, max] bounds representable by it.
func Range(it ir.IntType) (min, max *big.Int) {
	bits := uint(it.Width.Bytes() * 8)
	if !it.Signed {
		return big.NewInt(0), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	}
	half := new(big.Int).Lsh(big.NewInt(1), bits-1)
	max = new(big.Int).Sub(half, big.NewInt(1))
	min = new(big.Int).Neg(half)
	return min, max
}

func inRange(v *big.Int, it ir.IntType) bool {
	min, max := Range(it)
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}

// CheckedAdd, CheckedSub, and CheckedMul implement the overflow-check
// option's "checked" arithmetic: the result is computed at full precision
// and then range-checked against it, matching the backend contract's
// add/sub/mul overflow policy (division is guarded separately, against
// divide-by-zero, not range).
func CheckedAdd(a, b *big.Int, it ir.IntType) (*big.Int, error) {
	r := new(big.Int).Add(a, b)
	if !inRange(r, it) {
		return nil, &OverflowError{Op: "add", IntType: it}
	}
	return r, nil
}

func CheckedSub(a, b *big.Int, it ir.IntType) (*big.Int, error) {
	r := new(big.Int).Sub(a, b)
	if !inRange(r, it) {
		return nil, &OverflowError{Op: "sub", IntType: it}
	}
	return r, nil
}

func CheckedMul(a, b *big.Int, it ir.IntType) (*big.Int, error) {
	r := new(big.Int).Mul(a, b)
	if !inRange(r, it) {
		return nil, &OverflowError{Op: "mul", IntType: it}
	}
	return r, nil
}
