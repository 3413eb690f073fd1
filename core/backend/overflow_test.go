package backend

import (
	"math/big"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

func TestRangeBounds(t *testing.T) {
	min, max := Range(ir.U8)
	if min.Sign() != 0 || max.Int64() != 255 {
		t.Fatalf("u8 range = [%s, %s]", min, max)
	}
	min, max = Range(ir.I8)
	if min.Int64() != -128 || max.Int64() != 127 {
		t.Fatalf("i8 range = [%s, %s]", min, max)
	}
}

func TestCheckedAddOverflow(t *testing.T) {
	max := big.NewInt(255)
	one := big.NewInt(1)
	if _, err := CheckedAdd(max, one, ir.U8); err == nil {
		t.Fatalf("expected overflow error")
	}
	r, err := CheckedAdd(big.NewInt(200), big.NewInt(55), ir.U8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Int64() != 255 {
		t.Fatalf("want 255, got %s", r)
	}
}

func TestCheckedSubUnderflow(t *testing.T) {
	if _, err := CheckedSub(big.NewInt(0), big.NewInt(1), ir.U32); err == nil {
		t.Fatalf("expected underflow error for unsigned subtraction below zero")
	}
}

func TestCheckedMulOverflow(t *testing.T) {
	if _, err := CheckedMul(big.NewInt(1<<16), big.NewInt(1<<16), ir.U32); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestOverflowErrorMessage(t *testing.T) {
	err := &OverflowError{Op: "add", IntType: ir.I32}
	if err.Error() == "" {
		t.Fatalf("expected a non-empty message")
	}
}
