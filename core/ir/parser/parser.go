// Package parser reads the textual SIR surface syntax produced by
// core/ir/printer back into a *ir.Module. Parse(Print(m)) reproduces m
// (modulo TypeDefinition.Kind, which the printer never emits either).
//
// The parser follows the same internal-panic/exported-recover shape as the
// standard library's go/parser: individual production methods panic with a
// *syntaxError on malformed input, and the single exported entry point
// recovers and turns that into a normal error return.
package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/synnergy-labs/sir-compiler/core/ir"
)

type syntaxError struct {
	msg string
	pos string
}

func (e *syntaxError) Error() string { return fmt.Sprintf("%s: %s", e.pos, e.msg) }

func fail(tok token, format string, args ...any) {
	panic(&syntaxError{msg: fmt.Sprintf(format, args...), pos: tok.pos.String()})
}

type parser struct {
	lex     *lexer
	ctx     *ir.Context
	curFunc *ir.FunctionDefinition
}

// Parse decodes src as a single module using ctx's type table and metadata
// registry. Parsing multiple modules into the same Context is legitimate:
// their type tables and metadata ids are shared, matching a multi-module
// compilation.
func Parse(ctx *ir.Context, src string) (m *ir.Module, err error) {
	p := &parser{lex: newLexer(src), ctx: ctx}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*syntaxError)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	m = p.parseModule()
	return m, nil
}

func (p *parser) next() token   { return p.lex.next() }
func (p *parser) peek() token   { return p.lex.peekTok() }

func (p *parser) expectKind(k tokenKind) token {
	t := p.next()
	if t.kind != k {
		fail(t, "unexpected token %q", t.text)
	}
	return t
}

func (p *parser) expectIdent(text string) token {
	t := p.next()
	if t.kind != tokIdent || t.text != text {
		fail(t, "expected %q, got %q", text, t.text)
	}
	return t
}

func (p *parser) consumeOptComma() {
	if p.peek().kind == tokComma {
		p.next()
	}
}

func (p *parser) parseModule() *ir.Module {
	p.expectIdent("module_name")
	p.expectKind(tokEquals)
	nameTok := p.expectKind(tokString)
	m := ir.NewModule(nameTok.text)

	for {
		t := p.peek()
		if t.kind == tokEOF {
			return m
		}
		if t.kind != tokIdent {
			fail(t, "expected top-level declaration, got %q", t.text)
		}
		switch t.text {
		case "type":
			m.AddType(p.parseTypeDef())
		case "fn", "pub":
			m.AddFunction(p.parseFuncDef())
		case "contract":
			m.Contract = p.parseContract()
		case "meta":
			p.parseMetaDef()
		default:
			fail(t, "unknown top-level keyword %q", t.text)
		}
	}
}

func (p *parser) parseTypeDef() *ir.TypeDefinition {
	p.expectIdent("type")
	name := p.expectKind(tokIdent).text
	p.expectKind(tokEquals)
	ty := p.parseType()
	meta := p.parseMetadataSuffix()

	def := &ir.TypeDefinition{Name: name, Kind: ir.TypeDefAlias, Type: ty, Metadata: meta}
	return def
}

func (p *parser) parseMetaDef() {
	p.expectIdent("meta")
	p.expectKind(tokBang)
	p.expectKind(tokInt)
	p.expectKind(tokEquals)
	p.expectKind(tokBang)
	p.expectKind(tokLBrace)
	var lits []ir.Literal
	for p.peek().kind != tokRBrace {
		lits = append(lits, p.parseLiteral())
		p.consumeOptComma()
	}
	p.expectKind(tokRBrace)
	p.ctx.Metadata.Add(ir.MetaDataNode{Data: lits})
}

// parseMetadataSuffix consumes zero or more "!key !id" pairs.
func (p *parser) parseMetadataSuffix() ir.MetadataMap {
	m := ir.MetadataMap{}
	for p.peek().kind == tokBang {
		p.next()
		key := p.expectKind(tokIdent).text
		p.expectKind(tokBang)
		idTok := p.expectKind(tokInt)
		m[key] = ir.MetaDataID(parseUint32(idTok))
	}
	return m
}

func (p *parser) parseContract() *ir.Contract {
	p.expectIdent("contract")
	name := p.expectKind(tokIdent).text
	p.expectKind(tokLBrace)

	c := ir.NewContract(name)

	p.expectIdent("state")
	p.expectKind(tokLBrace)
	for p.peek().kind != tokRBrace {
		fname := p.expectKind(tokIdent).text
		p.expectKind(tokColon)
		ty := p.parseType()
		p.consumeOptComma()
		c.AddState(fname, ty)
	}
	p.expectKind(tokRBrace)

	for {
		t := p.peek()
		if t.kind == tokRBrace {
			p.next()
			return c
		}
		if t.kind == tokIdent && (t.text == "fn" || t.text == "pub") {
			c.AddFunction(p.parseFuncDef())
			continue
		}
		fail(t, "expected function or closing brace in contract %q", name)
	}
}

func (p *parser) parseFuncDef() *ir.FunctionDefinition {
	isExternal := false
	if p.peek().text == "pub" {
		p.next()
		isExternal = true
	}
	p.expectIdent("fn")
	name := p.expectKind(tokIdent).text
	p.expectKind(tokLParen)

	var params []ir.VarDecl
	for p.peek().kind != tokRParen {
		p.expectKind(tokPercent)
		idTok := p.expectKind(tokInt)
		p.expectKind(tokColon)
		ty := p.parseType()
		params = append(params, ir.VarDecl{ID: ir.IdentifierID(parseUint32(idTok)), Type: ty})
		p.consumeOptComma()
	}
	p.expectKind(tokRParen)

	ret := p.ctx.Types.Void()
	if p.peek().kind == tokArrow {
		p.next()
		ret = p.parseType()
	}
	meta := p.parseMetadataSuffix()
	p.expectKind(tokLBrace)

	f := ir.NewFunctionDefinition(name, params, ret, isExternal)
	for k, v := range meta {
		f.Metadata()[k] = v
	}

	prevFunc := p.curFunc
	p.curFunc = f
	p.parseCFGBody(f)
	p.curFunc = prevFunc

	return f
}

// parseCFGBody fills f.CFG by reading "N:" block headers followed by
// instructions, until the closing brace. The printer always emits the
// entry block first, so the first header parsed here becomes the entry.
func (p *parser) parseCFGBody(f *ir.FunctionDefinition) {
	var bb *ir.BasicBlock
	for {
		t := p.peek()
		if t.kind == tokRBrace {
			p.next()
			return
		}
		if t.kind == tokInt {
			idTok := p.next()
			p.expectKind(tokColon)
			bb = f.CFG.AppendNewBlock(ir.BasicBlockID(parseUint32(idTok)))
			continue
		}
		if bb == nil {
			fail(t, "instruction outside any basic block")
		}
		bb.Append(p.parseStmt())
	}
}

var binaryMnemonics = map[string]ir.BinaryOp{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul, "div": ir.OpDiv,
	"mod": ir.OpMod, "exp": ir.OpExp, "and": ir.OpAnd, "bit_and": ir.OpBitAnd,
	"or": ir.OpOr, "bit_or": ir.OpBitOr, "bit_xor": ir.OpBitXor,
	"shl": ir.OpShl, "shr": ir.OpShr, "sar": ir.OpSar,
}

var cmpMnemonics = map[string]ir.CmpOp{
	"eq": ir.CmpEq, "ne": ir.CmpNe, "gt": ir.CmpGt, "ge": ir.CmpGe, "lt": ir.CmpLt, "le": ir.CmpLe,
}

// parseStmt parses one instruction at statement position: a declaration, an
// assignment, or a bare mnemonic-led instruction.
func (p *parser) parseStmt() *ir.Instr {
	t := p.peek()

	if t.kind == tokIdent && t.text == "let" {
		p.next()
		p.expectKind(tokPercent)
		idTok := p.expectKind(tokInt)
		p.expectKind(tokColon)
		ty := p.parseType()
		meta := p.parseMetadataSuffix()

		id := ir.IdentifierID(parseUint32(idTok))
		var initVal *ir.Expr
		if p.peek().kind == tokEquals {
			p.next()
			e := p.parseExpr()
			initVal = &e
		}
		if p.curFunc != nil {
			p.curFunc.DeclareVar(id, "", ty)
		}
		instr := ir.NewDeclaration(id, initVal, ty)
		for k, v := range meta {
			instr.Metadata()[k] = v
		}
		return instr
	}

	if t.kind == tokPercent {
		p.next()
		idTok := p.expectKind(tokInt)
		meta := p.parseMetadataSuffix()
		p.expectKind(tokEquals)
		val := p.parseExpr()
		instr := ir.NewAssignment(ir.IdentifierID(parseUint32(idTok)), val)
		for k, v := range meta {
			instr.Metadata()[k] = v
		}
		return instr
	}

	if t.kind != tokIdent {
		fail(t, "expected instruction, got %q", t.text)
	}
	p.next()
	instr := p.parseInstrBody(t, t.text)
	meta := p.parseMetadataSuffix()
	for k, v := range meta {
		instr.Metadata()[k] = v
	}
	return instr
}

// parseInstrBody parses the parenthesized body of every instruction kind
// except Declaration/Assignment, whose metadata placement differs (see
// parseStmt). mnemonic has already been consumed from the stream.
func (p *parser) parseInstrBody(tok token, mnemonic string) *ir.Instr {
	switch mnemonic {
	case "ret":
		p.expectKind(tokLParen)
		var val *ir.Expr
		if p.peek().kind != tokRParen {
			e := p.parseExpr()
			val = &e
			p.consumeOptComma()
		}
		p.expectKind(tokRParen)
		return ir.NewRet(val)

	case "br":
		p.expectKind(tokLParen)
		p.expectIdent("bb")
		idTok := p.expectKind(tokInt)
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewBr(ir.BasicBlockID(parseUint32(idTok)))

	case "br_if":
		p.expectKind(tokLParen)
		cond := p.parseExpr()
		p.expectKind(tokComma)
		p.expectIdent("bb")
		thenTok := p.expectKind(tokInt)
		p.expectKind(tokComma)
		p.expectIdent("bb")
		elseTok := p.expectKind(tokInt)
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewBrIf(cond, ir.BasicBlockID(parseUint32(thenTok)), ir.BasicBlockID(parseUint32(elseTok)))

	case "match":
		p.expectKind(tokLParen)
		val := p.parseExpr()
		p.expectKind(tokComma)
		p.expectIdent("bb")
		otherwiseTok := p.expectKind(tokInt)
		p.expectKind(tokComma)
		var keys []uint32
		table := map[uint32]ir.BasicBlockID{}
		for p.peek().kind == tokInt {
			kTok := p.next()
			p.expectKind(tokColon)
			p.expectIdent("i32")
			p.expectKind(tokComma)
			p.expectIdent("bb")
			targetTok := p.expectKind(tokInt)
			p.expectKind(tokComma)
			k := parseUint32(kTok)
			keys = append(keys, k)
			table[k] = ir.BasicBlockID(parseUint32(targetTok))
		}
		p.expectKind(tokRParen)
		return ir.NewMatch(val, ir.BasicBlockID(parseUint32(otherwiseTok)), keys, table)

	case "not":
		p.expectKind(tokLParen)
		op := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewNot(op)

	case "bit_not":
		p.expectKind(tokLParen)
		op := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewBitNot(op)

	case "alloca":
		p.expectKind(tokLParen)
		ty := p.parseType()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewAlloca(ty)

	case "malloc":
		p.expectKind(tokLParen)
		ty := p.parseType()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewMalloc(ty)

	case "free":
		p.expectKind(tokLParen)
		ptr := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewFree(ptr)

	case "get_field":
		p.expectKind(tokLParen)
		ptr := p.parseExpr()
		p.expectKind(tokComma)
		path := p.parseFieldPath()
		p.expectKind(tokRParen)
		p.expectKind(tokArrow)
		ty := p.parseType()
		return ir.NewGetField(ptr, path, ty)

	case "set_field":
		p.expectKind(tokLParen)
		ptr := p.parseExpr()
		p.expectKind(tokComma)
		val := p.parseExpr()
		p.expectKind(tokComma)
		path := p.parseFieldPath()
		p.expectKind(tokRParen)
		return ir.NewSetField(ptr, val, path)

	case "get_storage_path":
		p.expectKind(tokLParen)
		var keys []ir.Expr
		for p.peek().kind != tokRParen {
			keys = append(keys, p.parseExpr())
			p.consumeOptComma()
		}
		p.expectKind(tokRParen)
		return ir.NewGetStoragePath(keys)

	case "storage_load":
		p.expectKind(tokLParen)
		path := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		p.expectKind(tokArrow)
		ty := p.parseType()
		return ir.NewStorageLoad(path, ty)

	case "storage_store":
		p.expectKind(tokLParen)
		path := p.parseExpr()
		p.expectKind(tokComma)
		val := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewStorageStore(path, val)

	case "call":
		p.expectKind(tokLParen)
		p.expectKind(tokAt)
		name := p.parseDottedName()
		p.expectKind(tokLParen)
		var args []ir.Expr
		for p.peek().kind != tokRParen {
			args = append(args, p.parseExpr())
			p.consumeOptComma()
		}
		p.expectKind(tokRParen)
		p.expectKind(tokArrow)
		ty := p.parseType()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewCall(resolveFuncName(name), args, ty)

	case "int_cast":
		p.expectKind(tokLParen)
		val := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		p.expectKind(tokArrow)
		ty := p.parseType()
		return ir.NewIntCast(val, ty)
	}

	if op, ok := binaryMnemonics[mnemonic]; ok {
		p.expectKind(tokLParen)
		a := p.parseExpr()
		p.expectKind(tokComma)
		b := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewBinary(op, a, b)
	}
	if op, ok := cmpMnemonics[mnemonic]; ok {
		p.expectKind(tokLParen)
		a := p.parseExpr()
		p.expectKind(tokComma)
		b := p.parseExpr()
		p.consumeOptComma()
		p.expectKind(tokRParen)
		return ir.NewCmp(op, a, b)
	}

	fail(tok, "unknown instruction mnemonic %q", mnemonic)
	return nil
}

func (p *parser) parseFieldPath() []uint32 {
	var path []uint32
	for p.peek().kind == tokInt {
		idTok := p.next()
		p.expectKind(tokColon)
		p.expectIdent("i32")
		p.expectKind(tokComma)
		path = append(path, parseUint32(idTok))
	}
	return path
}

func resolveFuncName(name string) ir.FuncName {
	switch {
	case strings.HasPrefix(name, "ir."):
		return ir.FuncName{Kind: ir.FuncIntrinsic, Name: name}
	case strings.HasPrefix(name, "env."):
		return ir.FuncName{Kind: ir.FuncHostAPI, Name: name}
	default:
		return ir.FuncName{Kind: ir.FuncUser, Name: name}
	}
}

func (p *parser) parseExpr() ir.Expr {
	t := p.peek()
	switch t.kind {
	case tokPercent:
		p.next()
		idTok := p.expectKind(tokInt)
		p.expectKind(tokColon)
		p.parseType() // annotation is redundant with the declaration; discard
		return ir.Identifier(ir.IdentifierID(parseUint32(idTok)))

	case tokString:
		p.next()
		p.expectKind(tokColon)
		p.expectIdent("str")
		return ir.LiteralExpr(ir.NewStrLiteral(t.text))

	case tokInt:
		p.next()
		p.expectKind(tokColon)
		tyTok := p.expectKind(tokIdent)
		it := intTypeFor(tyTok.text)
		return ir.LiteralExpr(ir.NewIntLiteral(bigIntFromText(t.text), it.Width, it.Signed))

	case tokIdent:
		if t.text == "true" || t.text == "false" {
			p.next()
			p.expectKind(tokColon)
			p.expectIdent("bool")
			return ir.LiteralExpr(ir.NewBoolLiteral(t.text == "true"))
		}
		p.next()
		instr := p.parseInstrBody(t, t.text)
		return ir.InstrExpr(instr)
	}
	fail(t, "expected expression, got %q", t.text)
	return ir.Expr{}
}

func (p *parser) parseLiteral() ir.Literal {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		p.expectKind(tokColon)
		p.expectIdent("str")
		return ir.NewStrLiteral(t.text)
	case tokInt:
		p.next()
		p.expectKind(tokColon)
		tyTok := p.expectKind(tokIdent)
		it := intTypeFor(tyTok.text)
		return ir.NewIntLiteral(bigIntFromText(t.text), it.Width, it.Signed)
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			p.next()
			p.expectKind(tokColon)
			p.expectIdent("bool")
			return ir.NewBoolLiteral(t.text == "true")
		}
	}
	fail(t, "expected literal, got %q", t.text)
	return ir.Literal{}
}

func (p *parser) parseDottedName() string {
	first := p.expectKind(tokIdent)
	var b strings.Builder
	b.WriteString(first.text)
	for p.peek().kind == tokDot {
		p.next()
		part := p.expectKind(tokIdent)
		b.WriteString(".")
		b.WriteString(part.text)
	}
	return b.String()
}

var builtinTypeNames = map[string]ir.BuiltinKind{
	ir.IRVectorIterTy:  ir.BuiltinVectorIter,
	ir.IRMapIterTy:     ir.BuiltinMapIter,
	ir.IRParampackTy:   ir.BuiltinParampack,
	ir.IRStoragePathTy: ir.BuiltinStoragePath,
}

func (p *parser) parseType() *ir.Type {
	base := p.parseTypeBase()
	for p.peek().kind == tokStar {
		p.next()
		base = p.ctx.Types.Pointer(base)
	}
	return base
}

func (p *parser) parseTypeBase() *ir.Type {
	t := p.next()
	switch t.kind {
	case tokIdent:
		switch t.text {
		case "void":
			return p.ctx.Types.Void()
		case "bool":
			return p.ctx.Types.Bool()
		case "str":
			return p.ctx.Types.Str()
		default:
			if it, ok := namedIntTypes[t.text]; ok {
				return p.ctx.Types.Int(it)
			}
			fail(t, "unknown type %q", t.text)
		}

	case tokLBracket:
		elem := p.parseType()
		var length *uint32
		if p.peek().kind == tokSemi {
			p.next()
			lenTok := p.expectKind(tokInt)
			n := parseUint32(lenTok)
			length = &n
		}
		p.expectKind(tokRBracket)
		return p.ctx.Types.Array(elem, length)

	case tokLBrace:
		return p.parseBraceType()

	case tokPercent:
		name := p.parseDottedName()
		if b, ok := builtinTypeNames[name]; ok {
			return p.ctx.Types.Builtin(b)
		}
		return p.ctx.Types.Def(name, ir.TypeDefAlias)
	}
	fail(t, "expected type, got %q", t.text)
	return nil
}

// parseBraceType disambiguates Map{key: value} from Compound{field: ty, ...}.
// Both open with "ident :", so the first ident is looked at twice: if it
// names a primitive key type (str or an integer width) and the brace closes
// right after one "key: value" pair, it is a Map; otherwise it is read as
// the first field of a Compound. A compound whose first field is named
// "str" or "u32" etc. reaches the compound branch only through the
// peek-for-'}' check below, so it must have a second field: a compound
// whose sole field has such a name prints like a Map and is read back as one.
func (p *parser) parseBraceType() *ir.Type {
	nameTok := p.expectKind(tokIdent)
	p.expectKind(tokColon)

	if isPrimitiveKeyName(nameTok.text) {
		keyTy := p.primitiveTypeFromKeyword(nameTok.text)
		valTy := p.parseType()
		if p.peek().kind == tokRBrace {
			p.next()
			return p.ctx.Types.Map(keyTy, valTy)
		}
		fields := []ir.Field{{Name: nameTok.text, Type: valTy}}
		return p.finishCompound(fields)
	}

	fty := p.parseType()
	fields := []ir.Field{{Name: nameTok.text, Type: fty}}
	return p.finishCompound(fields)
}

func (p *parser) finishCompound(fields []ir.Field) *ir.Type {
	p.consumeOptComma()
	for p.peek().kind != tokRBrace {
		fname := p.expectKind(tokIdent).text
		p.expectKind(tokColon)
		fty := p.parseType()
		fields = append(fields, ir.Field{Name: fname, Type: fty})
		p.consumeOptComma()
	}
	p.expectKind(tokRBrace)
	return p.ctx.Types.Compound(fields)
}

func isPrimitiveKeyName(name string) bool {
	if name == "str" {
		return true
	}
	_, ok := namedIntTypes[name]
	return ok
}

func (p *parser) primitiveTypeFromKeyword(name string) *ir.Type {
	if name == "str" {
		return p.ctx.Types.Str()
	}
	return p.ctx.Types.Int(namedIntTypes[name])
}

var namedIntTypes = map[string]ir.IntType{
	"i8": ir.I8, "i16": ir.I16, "i32": ir.I32, "i64": ir.I64, "i128": ir.I128, "i256": ir.I256,
	"u8": ir.U8, "u16": ir.U16, "u32": ir.U32, "u64": ir.U64, "u128": ir.U128, "u256": ir.U256,
}

func intTypeFor(name string) ir.IntType {
	if it, ok := namedIntTypes[name]; ok {
		return it
	}
	panic(&syntaxError{msg: fmt.Sprintf("unknown integer type %q", name)})
}

func parseUint32(t token) uint32 {
	var v uint32
	_, err := fmt.Sscanf(t.text, "%d", &v)
	if err != nil {
		fail(t, "expected integer, got %q", t.text)
	}
	return v
}

func bigIntFromText(text string) *big.Int {
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		panic(&syntaxError{msg: fmt.Sprintf("invalid integer literal %q", text)})
	}
	return v
}
