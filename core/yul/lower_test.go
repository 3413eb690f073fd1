package yul

import (
	"math/big"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/abi"
	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/mockruntime"
)

const counterSource = `
object "Counter" {
  code {
    function inc() {
      let cur := sload(0)
      sstore(0, add(cur, 1))
    }
    function get() -> result {
      result := sload(0)
    }
    sstore(0, 1)
  }
}
`

func loadCounter(t *testing.T) (*ir.Context, *mockruntime.Module) {
	t.Helper()
	obj, err := Parse(counterSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := Lower(ctx, "Counter", obj)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	loaded, err := mockruntime.LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	return ctx, loaded
}

// TestCounterIncrementsAcrossCalls exercises the deploy + three inc() + get()
// scenario: top-level functions lower as directly dispatchable entry points,
// and sload/sstore persist across calls on the same runtime.
func TestCounterIncrementsAcrossCalls(t *testing.T) {
	_, loaded := loadCounter(t)
	rt := mockruntime.NewRuntime(mockruntime.Options{OverflowCheck: true})
	if rec := rt.Constructor(loaded, nil); !rec.Status {
		t.Fatalf("Constructor aborted: %s", rec.Error)
	}

	empty, err := abi.Encode(nil)
	if err != nil {
		t.Fatalf("encode empty argpack: %v", err)
	}
	for i := 0; i < 3; i++ {
		rec := rt.Invoke(loaded, "inc", empty)
		if !rec.Status {
			t.Fatalf("inc() call %d aborted: %s", i, rec.Error)
		}
	}

	rec := rt.Invoke(loaded, "get", empty)
	if !rec.Status {
		t.Fatalf("get() aborted: %s", rec.Error)
	}
	out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTU256})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if len(out) != 1 || out[0].Big == nil || out[0].Big.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("expected counter 4, got %+v", out)
	}
}

const initStoreSource = `
object "Init" {
  code {
    sstore(0, 1)
  }
}
`

// TestConstructorRunsObjectTopLevelCode deploys an object whose top-level
// code (outside any function definition) writes directly to storage,
// exercising the object-level init function Constructor dispatches to.
func TestConstructorRunsObjectTopLevelCode(t *testing.T) {
	obj, err := Parse(initStoreSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := Lower(ctx, "Init", obj)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	loaded, err := mockruntime.LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	rt := mockruntime.NewRuntime(mockruntime.Options{OverflowCheck: true})
	rec := rt.Constructor(loaded, nil)
	if !rec.Status {
		t.Fatalf("Constructor aborted: %s", rec.Error)
	}

	dump := rt.DumpStorage()
	if len(dump) != 1 {
		t.Fatalf("expected a single storage write, got %d", len(dump))
	}
	slot0 := backend.BuildStoragePath([]ir.Expr{ir.LiteralExpr(ir.NewUintLiteralU64(0, ir.W256))}, nil)
	v, err := rt.Load(slot0, ctx.Types.Int(ir.U256))
	if err != nil {
		t.Fatalf("load storage slot 0: %v", err)
	}
	if v.Int == nil || v.Int.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected storage slot 0 to hold 1, got %v", v.Int)
	}
}

const mstoreMloadSource = `
object "Mem" {
  code {
    function roundtrip(v) -> result {
      mstore(64, v)
      result := mload(64)
    }
  }
}
`

// TestMstoreMloadRoundTrip checks that a value written at a literal offset
// reads back unchanged, for an arbitrary 256-bit magnitude.
func TestMstoreMloadRoundTrip(t *testing.T) {
	obj, err := Parse(mstoreMloadSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := Lower(ctx, "Mem", obj)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	loaded, err := mockruntime.LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	want := new(big.Int).Lsh(big.NewInt(0xDEADBEEF), 64)
	want.Add(want, big.NewInt(42))
	argpack, err := abi.Encode([]abi.Param{abi.NewU256(want)})
	if err != nil {
		t.Fatalf("encode argpack: %v", err)
	}

	rt := mockruntime.NewRuntime(mockruntime.Options{})
	rec := rt.Invoke(loaded, "roundtrip", argpack)
	if !rec.Status {
		t.Fatalf("roundtrip() aborted: %s", rec.Error)
	}
	out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTU256})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if len(out) != 1 || out[0].Big.Cmp(want) != 0 {
		t.Fatalf("expected %s back, got %+v", want, out)
	}
}

const switchSource = `
object "Sw" {
  code {
    function classify(x) -> result {
      switch x
      case 0 { result := 100 }
      case 1 { result := 200 }
      default { result := 999 }
    }
  }
}
`

// TestSwitchDesugarsToNestedBranches checks the observable behavior of the
// switch-to-nested-if/else lowering: each case and the default are mutually
// exclusive and reachable.
func TestSwitchDesugarsToNestedBranches(t *testing.T) {
	obj, err := Parse(switchSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	mod, err := Lower(ctx, "Sw", obj)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	loaded, err := mockruntime.LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	cases := []struct {
		in   int64
		want int64
	}{
		{0, 100},
		{1, 200},
		{5, 999},
	}
	for _, c := range cases {
		argpack, err := abi.Encode([]abi.Param{abi.NewU256(big.NewInt(c.in))})
		if err != nil {
			t.Fatalf("encode argpack: %v", err)
		}
		rt := mockruntime.NewRuntime(mockruntime.Options{})
		rec := rt.Invoke(loaded, "classify", argpack)
		if !rec.Status {
			t.Fatalf("classify(%d) aborted: %s", c.in, rec.Error)
		}
		out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTU256})
		if err != nil {
			t.Fatalf("decode return: %v", err)
		}
		if out[0].Big.Cmp(big.NewInt(c.want)) != 0 {
			t.Fatalf("classify(%d): expected %d, got %s", c.in, c.want, out[0].Big)
		}
	}
}

func TestUnsupportedBuiltinReturnsLoweringError(t *testing.T) {
	src := `
object "Bad" {
  code {
    function hash(x) -> result {
      result := keccak256(x, 32)
    }
  }
}
`
	obj, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	_, err = Lower(ctx, "Bad", obj)
	if err == nil {
		t.Fatal("expected a lowering error for keccak256")
	}
	if _, ok := err.(*LoweringError); !ok {
		t.Fatalf("expected *LoweringError, got %T: %v", err, err)
	}
}

func TestDynamicMemoryOffsetRejected(t *testing.T) {
	src := `
object "Bad2" {
  code {
    function store(p, v) {
      mstore(p, v)
    }
  }
}
`
	obj, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := ir.NewContext()
	_, err = Lower(ctx, "Bad2", obj)
	if err == nil {
		t.Fatal("expected a lowering error for a dynamic memory offset")
	}
}
