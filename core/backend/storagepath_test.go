package backend

import (
	"math/big"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

func TestBuildStoragePathFoldsLiteralKeys(t *testing.T) {
	keys := []ir.Expr{
		ir.LiteralExpr(ir.NewStrLiteral("balances")),
		ir.LiteralExpr(ir.NewIntLiteralI64(7, ir.W32)),
	}
	path := BuildStoragePath(keys, []uint32{1})

	if len(path.Keys) != 2 {
		t.Fatalf("want 2 key components, got %d", len(path.Keys))
	}
	if !path.Keys[0].IsConst() || string(path.Keys[0].Const) != "balances" {
		t.Fatalf("first key not folded to the literal's bytes: %+v", path.Keys[0])
	}
	if !path.Keys[1].IsConst() {
		t.Fatalf("second key should be const-folded from an int literal")
	}
	if len(path.ExtraArgs) != 1 || path.ExtraArgs[0] != 1 {
		t.Fatalf("extra args not carried through: %+v", path.ExtraArgs)
	}
}

func TestBuildStoragePathLeavesDynamicKeysUnfolded(t *testing.T) {
	keys := []ir.Expr{ir.Identifier(0)}
	path := BuildStoragePath(keys, nil)
	if len(path.Keys) != 1 || path.Keys[0].IsConst() {
		t.Fatalf("a non-literal key must stay dynamic: %+v", path.Keys)
	}
}

func TestUleb128RoundTripsSmallAndLargeMagnitudes(t *testing.T) {
	small := Uleb128(big.NewInt(127))
	if len(small) != 1 || small[0] != 127 {
		t.Fatalf("unexpected single-byte encoding: %v", small)
	}

	large := new(big.Int).Lsh(big.NewInt(1), 200)
	enc := Uleb128(large)
	if len(enc) == 0 {
		t.Fatalf("expected a non-empty encoding for a 200-bit magnitude")
	}
}
