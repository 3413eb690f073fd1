// Package printer renders a Module to the textual SIR surface syntax. The
// format is stable: Parse(Print(m)) reproduces m, which the parser package
// and its round-trip tests depend on.
package printer

import (
	"fmt"
	"io"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

// Printer holds the indentation cursor while walking a module; margin grows
// and shrinks exactly like the original's nested block printer.
type Printer struct {
	ctx    *ir.Context
	margin int
	vars   *ir.FunctionDefinition
}

func New(ctx *ir.Context) *Printer { return &Printer{ctx: ctx} }

// PrintModule writes module's textual form, followed by every metadata node
// registered in the context, in id order.
func (p *Printer) PrintModule(m *ir.Module, w io.Writer) error {
	if err := p.printModule(m, w); err != nil {
		return err
	}
	for _, e := range p.ctx.Metadata.All() {
		if err := p.printMetaDef(e.ID, &e.Node, w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (p *Printer) printModule(m *ir.Module, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "module_name = %q\n", m.Name); err != nil {
		return err
	}
	for _, td := range m.Types {
		if err := p.printTypeDef(td, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	for _, fn := range m.Functions {
		if err := p.printFuncDef(fn, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if m.Contract != nil {
		return p.printContract(m.Contract, w)
	}
	return nil
}

func (p *Printer) printMargin(w io.Writer) {
	for i := 0; i < p.margin; i++ {
		fmt.Fprint(w, " ")
	}
}

func (p *Printer) printTypeDef(def *ir.TypeDefinition, w io.Writer) error {
	fmt.Fprintf(w, "type %s = %s", def.Name, def.Type)
	for name, id := range def.Metadata {
		fmt.Fprintf(w, " !%s !%d", name, id)
	}
	_, err := fmt.Fprint(w, " ")
	return err
}

func (p *Printer) printMetaDef(id ir.MetaDataID, node *ir.MetaDataNode, w io.Writer) error {
	fmt.Fprintf(w, "meta !%d = !{", id)
	for _, lit := range node.Data {
		p.printLiteral(lit, w)
		fmt.Fprint(w, ", ")
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func (p *Printer) printMetadatas(node ir.MetadataNode, w io.Writer) error {
	for name, id := range node.Metadata() {
		fmt.Fprintf(w, " !%s !%d", name, id)
	}
	_, err := fmt.Fprint(w, " ")
	return err
}

func (p *Printer) printField(f ir.Field, w io.Writer) {
	fmt.Fprintf(w, "%s: %s", f.Name, f.Type)
}

func (p *Printer) printFuncDef(def *ir.FunctionDefinition, w io.Writer) error {
	prevVars := p.vars
	p.vars = def
	defer func() { p.vars = prevVars }()

	p.printMargin(w)
	if def.IsExternal {
		fmt.Fprint(w, "pub ")
	}
	fmt.Fprintf(w, "fn %s(", def.Name)
	for _, param := range def.Params {
		fmt.Fprintf(w, "%%%d: %s, ", param.ID, param.Type)
	}
	fmt.Fprint(w, ") ")
	if !def.Ret.IsVoid() {
		fmt.Fprintf(w, "-> %s", def.Ret)
	}
	if err := p.printMetadatas(def, w); err != nil {
		return err
	}
	fmt.Fprintln(w, "{")
	p.margin += 4
	if err := p.printCFG(def.CFG, w); err != nil {
		return err
	}
	p.margin -= 4
	p.printMargin(w)
	_, err := fmt.Fprintln(w, "}")
	return err
}

func (p *Printer) printContract(c *ir.Contract, w io.Writer) error {
	fmt.Fprintf(w, "contract %s {\n", c.Name)
	p.margin += 4

	p.printMargin(w)
	fmt.Fprintln(w, "state {")
	p.margin += 4
	for _, s := range c.States {
		p.printMargin(w)
		fmt.Fprintf(w, "%s: %s,\n", s.Name, s.Type)
	}
	p.margin -= 4
	p.printMargin(w)
	fmt.Fprintln(w, "}")

	for _, fn := range c.Functions {
		if err := p.printFuncDef(fn, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	p.margin -= 4
	_, err := fmt.Fprintln(w, "}")
	return err
}

func (p *Printer) printCFG(cfg *ir.ControlFlowGraph, w io.Writer) error {
	entry, _ := cfg.GetBlock(cfg.Entry())
	if err := p.printBasicBlock(entry, w); err != nil {
		return err
	}
	for _, bb := range cfg.GetBlocks() {
		if bb.ID == cfg.Entry() {
			continue
		}
		if err := p.printBasicBlock(bb, w); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printBasicBlock(bb *ir.BasicBlock, w io.Writer) error {
	p.printMargin(w)
	p.margin += 4
	fmt.Fprintf(w, "%d:\n", bb.ID)
	for _, in := range bb.Instrs {
		p.printMargin(w)
		if err := p.printInstr(in, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	p.margin -= 4
	return nil
}

func (p *Printer) printInstr(in *ir.Instr, w io.Writer) error {
	switch in.Kind {
	case ir.InstrDeclaration:
		fmt.Fprintf(w, "let %%%d: %s", in.ID, in.Type)
		if err := p.printMetadatas(in, w); err != nil {
			return err
		}
		if in.InitVal != nil {
			fmt.Fprint(w, "= ")
			p.printExpr(*in.InitVal, w)
		}
		return nil
	case ir.InstrAssignment:
		fmt.Fprintf(w, "%%%d", in.ID)
		if err := p.printMetadatas(in, w); err != nil {
			return err
		}
		fmt.Fprint(w, "= ")
		p.printExpr(in.Val, w)
		return nil
	case ir.InstrRet:
		fmt.Fprint(w, "ret(")
		if in.RetVal != nil {
			p.printExpr(*in.RetVal, w)
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, ")")
	case ir.InstrBr:
		fmt.Fprintf(w, "br(bb %d, )", in.Target)
	case ir.InstrBrIf:
		fmt.Fprint(w, "br_if(")
		p.printExpr(in.Cond, w)
		fmt.Fprintf(w, ", bb %d, bb %d, )", in.ThenBB, in.ElseBB)
	case ir.InstrMatch:
		fmt.Fprint(w, "match(")
		p.printExpr(in.Scrutinee, w)
		fmt.Fprintf(w, ", bb %d, ", in.Default)
		for _, k := range in.JumpOrder() {
			fmt.Fprintf(w, "%d: i32, bb %d, ", k, in.JumpTable[k])
		}
		fmt.Fprint(w, ")")
	case ir.InstrNot:
		fmt.Fprint(w, "not(")
		p.printExpr(in.Operand, w)
		fmt.Fprint(w, ", )")
	case ir.InstrBitNot:
		fmt.Fprint(w, "bit_not(")
		p.printExpr(in.Operand, w)
		fmt.Fprint(w, ", )")
	case ir.InstrBinary:
		fmt.Fprintf(w, "%s(", in.BinOp)
		p.printExpr(in.Op1, w)
		fmt.Fprint(w, ", ")
		p.printExpr(in.Op2, w)
		fmt.Fprint(w, ", )")
	case ir.InstrCmp:
		fmt.Fprintf(w, "%s(", in.CmpOp)
		p.printExpr(in.Op1, w)
		fmt.Fprint(w, ", ")
		p.printExpr(in.Op2, w)
		fmt.Fprint(w, ", )")
	case ir.InstrAlloca:
		fmt.Fprintf(w, "alloca(%s, )", in.Type)
	case ir.InstrMalloc:
		fmt.Fprintf(w, "malloc(%s, )", in.Type)
	case ir.InstrFree:
		fmt.Fprint(w, "free(")
		p.printExpr(in.Ptr, w)
		fmt.Fprint(w, ", )")
	case ir.InstrGetField:
		fmt.Fprint(w, "get_field(")
		p.printExpr(in.Ptr, w)
		fmt.Fprint(w, ", ")
		for _, fid := range in.FieldPath {
			fmt.Fprintf(w, "%d: i32, ", fid)
		}
		fmt.Fprintf(w, ") -> %s", in.Type)
	case ir.InstrSetField:
		fmt.Fprint(w, "set_field(")
		p.printExpr(in.Ptr, w)
		fmt.Fprint(w, ", ")
		p.printExpr(in.SetVal, w)
		fmt.Fprint(w, ", ")
		for _, fid := range in.FieldPath {
			fmt.Fprintf(w, "%d: i32, ", fid)
		}
		fmt.Fprint(w, ")")
	case ir.InstrGetStoragePath:
		fmt.Fprint(w, "get_storage_path(")
		for _, e := range in.PathKeys {
			p.printExpr(e, w)
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, ")")
	case ir.InstrStorageLoad:
		fmt.Fprint(w, "storage_load(")
		p.printExpr(in.StoragePath, w)
		fmt.Fprintf(w, ", ) -> %s", in.Type)
	case ir.InstrStorageStore:
		fmt.Fprint(w, "storage_store(")
		p.printExpr(in.StoragePath, w)
		fmt.Fprint(w, ", ")
		p.printExpr(in.StoreVal, w)
		fmt.Fprint(w, ", )")
	case ir.InstrCall:
		fmt.Fprintf(w, "call(@%s(", in.FuncName.Name)
		for _, a := range in.Args {
			p.printExpr(a, w)
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, ") -> %s, )", in.Type)
	case ir.InstrIntCast:
		fmt.Fprint(w, "int_cast(")
		p.printExpr(in.CastVal, w)
		fmt.Fprintf(w, ", ) -> %s", in.Type)
	}
	return p.printMetadatas(in, w)
}

func (p *Printer) printExpr(e ir.Expr, w io.Writer) {
	switch e.Kind {
	case ir.ExprIdentifier:
		fmt.Fprintf(w, "%%%d: ", e.Ident)
		if p.vars != nil {
			fmt.Fprint(w, p.vars.VarType(e.Ident))
		}
	case ir.ExprInstr:
		p.printInstr(e.Nested, w)
	case ir.ExprLiteral:
		p.printLiteral(e.Literal, w)
	case ir.ExprNop:
		panic("printer: NOP expression cannot be printed")
	}
}

func (p *Printer) printLiteral(lit ir.Literal, w io.Writer) {
	switch {
	case lit.IsStr():
		s, _ := lit.GetString()
		fmt.Fprintf(w, "%q: str", s)
	case lit.IsBool():
		b, _ := lit.GetBool()
		fmt.Fprintf(w, "%t: bool", b)
	case lit.IsInt():
		v, _ := lit.GetInt()
		fmt.Fprintf(w, "%s: %s", v, ir.IntType{Width: lit.Width, Signed: lit.Signed})
	}
}
