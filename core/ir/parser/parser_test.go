package parser_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/synnergy-labs/sir-compiler/core/ir"
	"github.com/synnergy-labs/sir-compiler/core/ir/parser"
	"github.com/synnergy-labs/sir-compiler/core/ir/printer"
)

// buildAddOne constructs a tiny module by hand (bypassing core/ir/builder,
// since this test only cares about the printer/parser pair): a single free
// function add_one(%0: i32) -> i32 { ret(add(%0, 1: i32)) }.
func buildAddOne(ctx *ir.Context) *ir.Module {
	m := ir.NewModule("roundtrip")
	i32 := ctx.Types.Int(ir.I32)
	params := []ir.VarDecl{{ID: 0, Type: i32}}
	f := ir.NewFunctionDefinition("add_one", params, i32, true)

	entry := f.CFG.AppendNewBlock(0)
	f.CFG.SetEntry(0)

	sum := ir.IdentifierID(1)
	f.DeclareVar(sum, "", i32)
	one := ir.LiteralExpr(ir.NewIntLiteral(big.NewInt(1), ir.W32, true))
	addInstr := ir.InstrExpr(ir.NewBinary(ir.OpAdd, ir.Identifier(0), one))
	entry.Append(ir.NewDeclaration(sum, &addInstr, i32))
	retVal := ir.Identifier(sum)
	entry.Append(ir.NewRet(&retVal))

	m.AddFunction(f)
	return m
}

func TestRoundTrip(t *testing.T) {
	ctx := ir.NewContext()
	m := buildAddOne(ctx)

	var buf bytes.Buffer
	if err := printer.New(ctx).PrintModule(m, &buf); err != nil {
		t.Fatalf("print: %v", err)
	}
	printed := buf.String()

	ctx2 := ir.NewContext()
	parsed, err := parser.Parse(ctx2, printed)
	if err != nil {
		t.Fatalf("parse: %v\n--- source ---\n%s", err, printed)
	}

	var buf2 bytes.Buffer
	if err := printer.New(ctx2).PrintModule(parsed, &buf2); err != nil {
		t.Fatalf("re-print: %v", err)
	}

	if printed != buf2.String() {
		t.Fatalf("round-trip mismatch:\n--- first ---\n%s\n--- second ---\n%s", printed, buf2.String())
	}

	fn, ok := parsed.GetFunction("add_one")
	if !ok {
		t.Fatal("add_one not found after parse")
	}
	if !fn.IsExternal {
		t.Error("add_one should remain external after round-trip")
	}
	if len(fn.CFG.GetBlocks()) != 1 {
		t.Errorf("expected 1 block, got %d", len(fn.CFG.GetBlocks()))
	}
}

func TestRoundTripCompoundAndMapTypes(t *testing.T) {
	ctx := ir.NewContext()
	m := ir.NewModule("types")
	u64 := ctx.Types.Int(ir.U64)
	str := ctx.Types.Str()
	compound := ctx.Types.Compound([]ir.Field{{Name: "balance", Type: u64}, {Name: "owner", Type: str}})
	m.AddType(&ir.TypeDefinition{Name: "Account", Kind: ir.TypeDefStruct, Type: compound, Metadata: ir.MetadataMap{}})

	mapTy := ctx.Types.Map(str, u64)
	m.AddType(&ir.TypeDefinition{Name: "Balances", Kind: ir.TypeDefAlias, Type: mapTy, Metadata: ir.MetadataMap{}})

	var buf bytes.Buffer
	if err := printer.New(ctx).PrintModule(m, &buf); err != nil {
		t.Fatalf("print: %v", err)
	}

	ctx2 := ir.NewContext()
	parsed, err := parser.Parse(ctx2, buf.String())
	if err != nil {
		t.Fatalf("parse: %v\n--- source ---\n%s", err, buf.String())
	}
	if len(parsed.Types) != 2 {
		t.Fatalf("expected 2 type defs, got %d", len(parsed.Types))
	}
}
