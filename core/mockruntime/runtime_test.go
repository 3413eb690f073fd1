package mockruntime

import (
	"math/big"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/abi"
	"github.com/synnergy-labs/sir-compiler/core/backend"
	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/builder"
)

// buildAddModule builds a single-module, single-function contract:
//
//	export fn add(a: u32, b: u32) -> u32 { return a + b }
func buildAddModule(t *testing.T) (*ir.Context, *ir.Module) {
	t.Helper()
	ctx := ir.NewContext()
	mod := ir.NewModule("arith")
	b := builder.New(ctx)
	b.SetModule(mod)

	u32 := ctx.Types.Int(ir.U32)
	params := []ir.VarDecl{
		{ID: 0, Name: "a", Type: u32},
		{ID: 1, Name: "b", Type: u32},
	}
	fn := b.BuildFunction("add", params, u32, true)
	sum := ir.InstrExpr(ir.NewBinary(ir.OpAdd, ir.Identifier(0), ir.Identifier(1)))
	b.BuildRet(&sum)
	b.FuncEnd()

	if fn.Name != "add" {
		t.Fatalf("unexpected function name %q", fn.Name)
	}
	return ctx, mod
}

func TestInvokeUnsignedAddition(t *testing.T) {
	ctx, mod := buildAddModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	argpack, err := abi.Encode([]abi.Param{abi.NewU32(7), abi.NewU32(35)})
	if err != nil {
		t.Fatalf("encode argpack: %v", err)
	}

	rt := NewRuntime(Options{OverflowCheck: true})
	rec := rt.Invoke(loaded, "add", argpack)
	if !rec.Status {
		t.Fatalf("invoke aborted: %s", rec.Error)
	}

	out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTU32})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if len(out) != 1 || out[0].Type != abi.PTU32 || out[0].U32 != 42 {
		t.Fatalf("unexpected return %+v", out)
	}
}

func TestInvokeOverflowAborts(t *testing.T) {
	ctx, mod := buildAddModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	argpack, err := abi.Encode([]abi.Param{abi.NewU32(4000000000), abi.NewU32(4000000000)})
	if err != nil {
		t.Fatalf("encode argpack: %v", err)
	}

	rt := NewRuntime(Options{OverflowCheck: true})
	rec := rt.Invoke(loaded, "add", argpack)
	if rec.Status {
		t.Fatalf("expected overflow to abort, got success with return %x", rec.ReturnBytes)
	}
	if rec.Error == "" {
		t.Fatalf("expected a non-empty abort message")
	}
}

func TestInvokeOverflowWrapsWhenUnchecked(t *testing.T) {
	ctx, mod := buildAddModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	argpack, err := abi.Encode([]abi.Param{abi.NewU32(4000000000), abi.NewU32(4000000000)})
	if err != nil {
		t.Fatalf("encode argpack: %v", err)
	}

	rt := NewRuntime(Options{OverflowCheck: false})
	rec := rt.Invoke(loaded, "add", argpack)
	if !rec.Status {
		t.Fatalf("unchecked add should not abort: %s", rec.Error)
	}
	out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTU32})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	want := uint32((uint64(4000000000) + uint64(4000000000)) % (1 << 32))
	if out[0].U32 != want {
		t.Fatalf("want wrapped sum %d, got %d", want, out[0].U32)
	}
}

// buildStrEchoModule builds: export fn echo(s: str) -> str { return s }
func buildStrEchoModule(t *testing.T) (*ir.Context, *ir.Module) {
	t.Helper()
	ctx := ir.NewContext()
	mod := ir.NewModule("strings")
	b := builder.New(ctx)
	b.SetModule(mod)

	str := ctx.Types.Str()
	params := []ir.VarDecl{{ID: 0, Name: "s", Type: str}}
	b.BuildFunction("echo", params, str, true)
	ret := ir.Identifier(0)
	b.BuildRet(&ret)
	b.FuncEnd()

	return ctx, mod
}

func TestInvokeStringRoundTrip(t *testing.T) {
	ctx, mod := buildStrEchoModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	argpack, err := abi.Encode([]abi.Param{abi.NewStr("hello, SIR")})
	if err != nil {
		t.Fatalf("encode argpack: %v", err)
	}

	rt := NewRuntime(Options{})
	rec := rt.Invoke(loaded, "echo", argpack)
	if !rec.Status {
		t.Fatalf("invoke aborted: %s", rec.Error)
	}
	out, err := abi.Decode(rec.ReturnBytes, []abi.ParamType{abi.PTStr})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if out[0].S != "hello, SIR" {
		t.Fatalf("want echoed string, got %q", out[0].S)
	}
}

// buildStorageModule builds a contract with two external functions sharing
// a single storage slot keyed by the literal "balance":
//
//	export fn set(v: u64) -> void { storage["balance"] = v }
//	export fn get() -> u64 { return storage["balance"] }
func buildStorageModule(t *testing.T) (*ir.Context, *ir.Module) {
	t.Helper()
	ctx := ir.NewContext()
	mod := ir.NewModule("storagemod")
	con := ir.NewContract("Ledger")
	mod.Contract = con
	b := builder.New(ctx)
	b.SetModule(mod)
	b.SetContract(con)

	u64 := ctx.Types.Int(ir.U64)
	voidTy := ctx.Types.Void()

	setParams := []ir.VarDecl{{ID: 0, Name: "v", Type: u64}}
	b.BuildFunction("set", setParams, voidTy, true)
	keys := []ir.Expr{ir.LiteralExpr(ir.NewStrLiteral("balance"))}
	path := ir.InstrExpr(ir.NewGetStoragePath(keys))
	b.BuildStorageStore(path, ir.Identifier(0))
	b.BuildRet(nil)
	b.FuncEnd()

	b.BuildFunction("get", nil, u64, true)
	keys2 := []ir.Expr{ir.LiteralExpr(ir.NewStrLiteral("balance"))}
	path2 := ir.InstrExpr(ir.NewGetStoragePath(keys2))
	loadExpr := ir.InstrExpr(ir.NewStorageLoad(path2, u64))
	b.BuildRet(&loadExpr)
	b.FuncEnd()

	return ctx, mod
}

func TestStorageWriteThenRead(t *testing.T) {
	ctx, mod := buildStorageModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	setArgs, err := abi.Encode([]abi.Param{abi.NewU64(9001)})
	if err != nil {
		t.Fatalf("encode set args: %v", err)
	}

	rt := NewRuntime(Options{OverflowCheck: true})
	setRec := rt.Invoke(loaded, "set", setArgs)
	if !setRec.Status {
		t.Fatalf("set aborted: %s", setRec.Error)
	}

	getArgs, err := abi.Encode(nil)
	if err != nil {
		t.Fatalf("encode get args: %v", err)
	}
	getRec := rt.Invoke(loaded, "get", getArgs)
	if !getRec.Status {
		t.Fatalf("get aborted: %s", getRec.Error)
	}

	out, err := abi.Decode(getRec.ReturnBytes, []abi.ParamType{abi.PTU64})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if out[0].U64 != 9001 {
		t.Fatalf("want stored 9001, got %d", out[0].U64)
	}

	// Storage is keyed per-runtime; a second runtime over the same module
	// never observes the first one's writes.
	rt2 := NewRuntime(Options{OverflowCheck: true})
	getRec2 := rt2.Invoke(loaded, "get", getArgs)
	if !getRec2.Status {
		t.Fatalf("get aborted: %s", getRec2.Error)
	}
	out2, err := abi.Decode(getRec2.ReturnBytes, []abi.ParamType{abi.PTU64})
	if err != nil {
		t.Fatalf("decode return: %v", err)
	}
	if out2[0].U64 != 0 {
		t.Fatalf("want zero value on a fresh runtime, got %d", out2[0].U64)
	}
}

// buildRevertModule builds: export fn boom() -> void { revert(7, "deliberate failure") }
// using the builtin.revert intrinsic via a direct instruction call.
func buildRevertModule(t *testing.T) (*ir.Context, *ir.Module) {
	t.Helper()
	ctx := ir.NewContext()
	mod := ir.NewModule("revertmod")
	b := builder.New(ctx)
	b.SetModule(mod)

	voidTy := ctx.Types.Void()
	b.BuildFunction("boom", nil, voidTy, true)
	code := ir.LiteralExpr(ir.NewUintLiteralU64(7, ir.W32))
	msg := ir.LiteralExpr(ir.NewStrLiteral("deliberate failure"))
	call := ir.InstrExpr(ir.NewCall(ir.FuncName{Kind: ir.FuncIntrinsic, Name: "ir.builtin.revert"}, []ir.Expr{code, msg}, voidTy))
	b.BuildDeclaration(1, &call, voidTy)
	b.BuildRet(nil)
	b.FuncEnd()

	return ctx, mod
}

func TestRevertPropagatesToReceipt(t *testing.T) {
	ctx, mod := buildRevertModule(t)
	loaded, err := LoadModule(ctx, mod)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	argpack, err := abi.Encode(nil)
	if err != nil {
		t.Fatalf("encode args: %v", err)
	}

	rt := NewRuntime(Options{})
	rec := rt.Invoke(loaded, "boom", argpack)
	if rec.Status {
		t.Fatalf("expected abort to fail the receipt")
	}
	if rec.Error == "" {
		t.Fatalf("expected a non-empty abort message")
	}
	if rt.revertCode != 7 {
		t.Fatalf("expected revert code 7, got %d", rt.revertCode)
	}
}

func TestSM3HostCallForwardsToSHA256(t *testing.T) {
	data := []byte("grounding check")
	want := sha256Sum(data)
	it := &interp{rt: NewRuntime(Options{})}
	res, err := it.callHostAPI("sm3", []Value{BytesValue(data)})
	if err != nil {
		t.Fatalf("sm3 host call: %v", err)
	}
	got := res.Bytes
	if new(big.Int).SetBytes(got).Cmp(new(big.Int).SetBytes(want)) != 0 {
		t.Fatalf("sm3 host call did not return the SHA-256 digest")
	}
}

func TestStorageValueCodecRoundTrip(t *testing.T) {
	ctx := ir.NewContext()
	u128 := ctx.Types.Int(ir.U128)
	v := IntValue(new(big.Int).SetUint64(1<<62), ir.U128)

	enc, err := encodeStorageValue(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := decodeStorageValue(enc, u128)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Int.Cmp(v.Int) != 0 {
		t.Fatalf("want %s, got %s", v.Int, dec.Int)
	}
}

func TestDispatchStubsCoverExportedFunctions(t *testing.T) {
	ctx, mod := buildAddModule(t)
	_ = ctx
	stubs, err := backend.BuildStubs(mod)
	if err != nil {
		t.Fatalf("BuildStubs: %v", err)
	}
	if len(stubs) != 1 || stubs[0].Name != "add" {
		t.Fatalf("unexpected stubs %+v", stubs)
	}
}
