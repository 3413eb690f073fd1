package yul

import "fmt"

// ParseError reports a surface-syntax violation in Yul source; callers
// treat it the same as the SIR text parser's syntax errors, fatal to the
// compilation.
type ParseError struct {
	Msg string
	Pos string
}

func (e *ParseError) Error() string { return fmt.Sprintf("yul: %s (at %s)", e.Msg, e.Pos) }

type parser struct {
	lx *lexer
}

// Parse parses a single top-level Yul object.
func Parse(src string) (*Object, error) {
	p := &parser{lx: newLexer(src)}
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) errorf(pos string, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func (p *parser) expectIdent(text string) error {
	t := p.lx.next()
	if t.kind != tokIdent || t.text != text {
		return p.errorf(t.pos.String(), "expected %q, got %q", text, t.text)
	}
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.lx.next()
	if t.kind != kind {
		return t, p.errorf(t.pos.String(), "expected %s, got %q", what, t.text)
	}
	return t, nil
}

func (p *parser) parseObject() (*Object, error) {
	if err := p.expectIdent("object"); err != nil {
		return nil, err
	}
	name, err := p.expect(tokString, "object name string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}
	obj := &Object{Name: name.text}
	if err := p.expectIdent("code"); err != nil {
		return nil, err
	}
	code, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	obj.Code = code

	for {
		t := p.lx.peekTok()
		if t.kind == tokRBrace {
			p.lx.next()
			return obj, nil
		}
		if t.kind == tokIdent && t.text == "object" {
			child, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			obj.Objects = append(obj.Objects, child)
			continue
		}
		if t.kind == tokIdent && t.text == "data" {
			seg, err := p.parseData()
			if err != nil {
				return nil, err
			}
			obj.Data = append(obj.Data, seg)
			continue
		}
		return nil, p.errorf(t.pos.String(), "expected nested object, data segment, or '}', got %q", t.text)
	}
}

func (p *parser) parseData() (*DataSegment, error) {
	p.lx.next() // "data"
	name, err := p.expect(tokString, "data segment name string")
	if err != nil {
		return nil, err
	}
	t := p.lx.next()
	var value []byte
	if t.kind == tokIdent && t.text == "hex" {
		str, err := p.expect(tokString, "hex string")
		if err != nil {
			return nil, err
		}
		value, err = decodeHex(str.text)
		if err != nil {
			return nil, p.errorf(str.pos.String(), "%v", err)
		}
	} else if t.kind == tokString {
		value = []byte(t.text)
	} else {
		return nil, p.errorf(t.pos.String(), "expected data segment value, got %q", t.text)
	}
	return &DataSegment{Name: name.text, Value: value}, nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid hex digit in %q", s)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (p *parser) parseBlock() (*Block, error) {
	if _, err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}
	b := &Block{}
	for {
		t := p.lx.peekTok()
		if t.kind == tokRBrace {
			p.lx.next()
			return b, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, stmt)
	}
}

func (p *parser) parseStatement() (Stmt, error) {
	t := p.lx.peekTok()
	if t.kind == tokLBrace {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Body: body}, nil
	}
	if t.kind != tokIdent {
		return nil, p.errorf(t.pos.String(), "expected statement, got %q", t.text)
	}
	switch t.text {
	case "let":
		return p.parseVarDecl()
	case "if":
		return p.parseIf()
	case "for":
		return p.parseFor()
	case "switch":
		return p.parseSwitch()
	case "function":
		return p.parseFunctionDef()
	case "break":
		p.lx.next()
		return &BreakStmt{}, nil
	case "continue":
		p.lx.next()
		return &ContinueStmt{}, nil
	case "leave":
		p.lx.next()
		return &LeaveStmt{}, nil
	}
	return p.parseExprOrAssign()
}

func (p *parser) parseIdentList() ([]string, error) {
	var names []string
	for {
		id, err := p.expect(tokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, id.text)
		if p.lx.peekTok().kind == tokColon {
			p.lx.next()
			if _, err := p.expect(tokIdent, "type name"); err != nil {
				return nil, err
			}
		}
		if p.lx.peekTok().kind != tokComma {
			return names, nil
		}
		p.lx.next()
	}
}

func (p *parser) parseVarDecl() (Stmt, error) {
	p.lx.next() // "let"
	names, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	decl := &VarDeclStmt{Names: names}
	if p.lx.peekTok().kind == tokAssign {
		p.lx.next()
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Value = v
	}
	return decl, nil
}

// parseExprOrAssign disambiguates a bare function-call statement from a
// multi-identifier assignment: both start with an identifier.
func (p *parser) parseExprOrAssign() (Stmt, error) {
	first, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if p.lx.peekTok().kind == tokLParen {
		call, err := p.parseCallTail(first.text)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Call: call}, nil
	}
	names := []string{first.text}
	for p.lx.peekTok().kind == tokComma {
		p.lx.next()
		id, err := p.expect(tokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, id.text)
	}
	if _, err := p.expect(tokAssign, ":="); err != nil {
		return nil, err
	}
	v, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &AssignStmt{Names: names, Value: v}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	p.lx.next() // "if"
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &IfStmt{Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	p.lx.next() // "for"
	init, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	post, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *parser) parseSwitch() (Stmt, error) {
	p.lx.next() // "switch"
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	sw := &SwitchStmt{Expr: expr}
	for {
		t := p.lx.peekTok()
		if t.kind == tokIdent && t.text == "case" {
			p.lx.next()
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, SwitchCase{Value: lit, Body: body})
			continue
		}
		if t.kind == tokIdent && t.text == "default" {
			p.lx.next()
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			sw.Default = body
		}
		break
	}
	if len(sw.Cases) == 0 && sw.Default == nil {
		return nil, p.errorf(p.lx.peekTok().pos.String(), "switch requires at least one case or a default")
	}
	return sw, nil
}

func (p *parser) parseFunctionDef() (Stmt, error) {
	p.lx.next() // "function"
	name, err := p.expect(tokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var params []string
	if p.lx.peekTok().kind != tokRParen {
		params, err = p.parseIdentList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	var returns []string
	if p.lx.peekTok().kind == tokArrow {
		p.lx.next()
		returns, err = p.parseIdentList()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionDefStmt{Name: name.text, Params: params, Returns: returns, Body: body}, nil
}

func (p *parser) parseExpression() (Expr, error) {
	t := p.lx.peekTok()
	switch t.kind {
	case tokNumber, tokHexNumber, tokString:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &lit, nil
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			p.lx.next()
			return &Literal{Kind: LitBool, Bool: t.text == "true"}, nil
		}
		p.lx.next()
		if p.lx.peekTok().kind == tokLParen {
			return p.parseCallTail(t.text)
		}
		return &Identifier{Name: t.text}, nil
	}
	return nil, p.errorf(t.pos.String(), "expected expression, got %q", t.text)
}

func (p *parser) parseCallTail(name string) (*FunctionCall, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	call := &FunctionCall{Name: name}
	if p.lx.peekTok().kind != tokRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.lx.peekTok().kind != tokComma {
				break
			}
			p.lx.next()
		}
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.lx.next()
	switch t.kind {
	case tokNumber:
		return Literal{Kind: LitDecimal, Text: t.text}, nil
	case tokHexNumber:
		return Literal{Kind: LitHex, Text: t.text}, nil
	case tokString:
		return Literal{Kind: LitString, Text: t.text}, nil
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			return Literal{Kind: LitBool, Bool: t.text == "true"}, nil
		}
	}
	return Literal{}, p.errorf(t.pos.String(), "expected literal, got %q", t.text)
}
