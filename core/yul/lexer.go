package yul

import (
	"strings"
	"text/scanner"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokHexNumber
	tokString
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokArrow   // ->
	tokAssign  // :=
)

type token struct {
	kind tokenKind
	text string
	pos  scanner.Position
}

// lexer tokenizes Yul surface syntax on top of text/scanner, the same
// lexical foundation the SIR textual parser uses.
type lexer struct {
	sc   scanner.Scanner
	peek *token
}

func newLexer(src string) *lexer {
	l := &lexer{}
	l.sc.Init(strings.NewReader(src))
	l.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	l.sc.Filename = "yul"
	return l
}

func (l *lexer) next() token {
	if l.peek != nil {
		t := *l.peek
		l.peek = nil
		return t
	}
	return l.scan()
}

func (l *lexer) peekTok() token {
	if l.peek == nil {
		t := l.scan()
		l.peek = &t
	}
	return *l.peek
}

func (l *lexer) scan() token {
	pos := l.sc.Pos()
	r := l.sc.Scan()
	switch r {
	case scanner.EOF:
		return token{kind: tokEOF, pos: pos}
	case scanner.Ident:
		return token{kind: tokIdent, text: l.sc.TokenText(), pos: pos}
	case scanner.Int:
		text := l.sc.TokenText()
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			return token{kind: tokHexNumber, text: text, pos: pos}
		}
		return token{kind: tokNumber, text: text, pos: pos}
	case scanner.String:
		text := l.sc.TokenText()
		return token{kind: tokString, text: unquote(text), pos: pos}
	case '{':
		return token{kind: tokLBrace, text: "{", pos: pos}
	case '}':
		return token{kind: tokRBrace, text: "}", pos: pos}
	case '(':
		return token{kind: tokLParen, text: "(", pos: pos}
	case ')':
		return token{kind: tokRParen, text: ")", pos: pos}
	case ':':
		if l.sc.Peek() == '=' {
			l.sc.Next()
			return token{kind: tokAssign, text: ":=", pos: pos}
		}
		return token{kind: tokColon, text: ":", pos: pos}
	case ',':
		return token{kind: tokComma, text: ",", pos: pos}
	case '-':
		if l.sc.Peek() == '>' {
			l.sc.Next()
			return token{kind: tokArrow, text: "->", pos: pos}
		}
		return token{kind: tokIdent, text: "-", pos: pos}
	default:
		return token{kind: tokIdent, text: string(r), pos: pos}
	}
}

// unquote strips the surrounding quotes text/scanner leaves on a scanned
// string or hex-string literal; it does not interpret escapes beyond what
// strconv-free trimming needs for the literals Yul source actually uses.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
