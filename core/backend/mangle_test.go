package backend

import (
	"strings"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

func TestMangleIncludesPrefixAndSignature(t *testing.T) {
	tt := ir.NewTypeTable()
	u32 := tt.Int(ir.U32)
	boolTy := tt.Bool()

	name := Mangle("add", []*ir.Type{u32, u32}, u32)
	if !strings.HasPrefix(name, InternalMethodPrefix+"_") {
		t.Fatalf("mangled name %q missing prefix", name)
	}
	if !strings.Contains(name, "add") {
		t.Fatalf("mangled name %q missing qualified name", name)
	}

	other := Mangle("add", []*ir.Type{u32, boolTy}, u32)
	if name == other {
		t.Fatalf("mangled names for distinct signatures must differ")
	}
}

func TestMangleStableForSameInputs(t *testing.T) {
	tt := ir.NewTypeTable()
	u64 := tt.Int(ir.U64)
	a := Mangle("transfer", []*ir.Type{u64}, tt.Void())
	b := Mangle("transfer", []*ir.Type{u64}, tt.Void())
	if a != b {
		t.Fatalf("mangle is not deterministic: %q vs %q", a, b)
	}
}
