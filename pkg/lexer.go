package quill

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType uint64

// EOF is what peek returns past the end of the text. End of input is
// decided by the remaining text, never by the rune read.
const EOF rune = -1

//go:generate stringer -type=TokenType -trimprefix=Token

const (
	TokenError TokenType = iota
	TokenEOF
	TokenIntConst
	TokenFloatConst

	TokenIdentifier
	TokenFunc
	TokenIntType
	TokenFloatType
	TokenBoolType
	TokenTrue
	TokenFalse
	TokenReturn
	TokenIf
	TokenElse

	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenSlash
	TokenOpenParentheses
	TokenCloseParentheses
	TokenOpenCurly
	TokenCloseCurly
	TokenSemiColon
	TokenComma
	TokenExclamation
	TokenDeclaration
	TokenLogicalAnd
	TokenLogicalOr
	TokenLess
	TokenGreater
	TokenLessEqual
	TokenGreaterEqual
	TokenEqual
	TokenNotEqual
)

var keywordTable = map[string]TokenType{
	"func":   TokenFunc,
	"int":    TokenIntType,
	"float":  TokenFloatType,
	"bool":   TokenBoolType,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"return": TokenReturn,
	"if":     TokenIf,
	"else":   TokenElse,
}

// Two-rune operators are looked up before single-rune ones.
var operatorTable = map[string]TokenType{
	":=": TokenDeclaration,
	"&&": TokenLogicalAnd,
	"||": TokenLogicalOr,
	"<=": TokenLessEqual,
	">=": TokenGreaterEqual,
	"==": TokenEqual,
	"!=": TokenNotEqual,

	"+": TokenPlus,
	"-": TokenMinus,
	"*": TokenAsterisk,
	"/": TokenSlash,
	"(": TokenOpenParentheses,
	")": TokenCloseParentheses,
	"{": TokenOpenCurly,
	"}": TokenCloseCurly,
	";": TokenSemiColon,
	",": TokenComma,
	"!": TokenExclamation,
	"<": TokenLess,
	">": TokenGreater,
}

type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type Token struct {
	Typ   TokenType
	Value string
	Loc   Location
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %s)", t.Typ, t.Value, t.Loc)
}

// Tokenizer is an immutable cursor over the remaining source text. Next
// never modifies the receiver, so any copy is a snapshot that can be resumed.
type Tokenizer struct {
	text string
	line int
	col  int
}

func NewTokenizer(text string) Tokenizer {
	return Tokenizer{text: text, line: 1, col: 1}
}

func (t Tokenizer) Remaining() string {
	return t.text
}

func (t Tokenizer) Location() Location {
	return Location{Line: t.line, Col: t.col}
}

// Next produces the token at the head of the remaining text and the
// tokenizer positioned after it. On an unrecognized rune it returns a
// *LexError and the tokenizer positioned on that rune.
func (t Tokenizer) Next() (Token, Tokenizer, error) {
	t = t.skipWhitespace()

	if t.text == "" {
		return Token{Typ: TokenEOF, Loc: t.Location()}, t, nil
	}

	switch r := t.peek(); {
	case '0' <= r && r <= '9':
		tok, next := t.number()
		return tok, next, nil
	case unicode.IsLetter(r):
		tok, next := t.identifier()
		return tok, next, nil
	default:
		return t.operator()
	}
}

// Skip moves past a single rune. Callers use it to continue past a
// lexical error.
func (t Tokenizer) Skip() Tokenizer {
	_, next := t.next()
	return next
}

func (t Tokenizer) skipWhitespace() Tokenizer {
	for t.text != "" && unicode.IsSpace(t.peek()) {
		_, t = t.next()
	}

	return t
}

func (t Tokenizer) number() (Token, Tokenizer) {
	start := t.Location()
	typ := TokenIntConst

	var num strings.Builder
	for r := t.peek(); isDigit(r); r = t.peek() {
		num.WriteRune(r)
		_, t = t.next()
	}

	if t.peek() == '.' && isDigit(t.peekAt(1)) {
		typ = TokenFloatConst
		num.WriteRune('.')
		_, t = t.next()

		for r := t.peek(); isDigit(r); r = t.peek() {
			num.WriteRune(r)
			_, t = t.next()
		}
	}

	if r := t.peek(); r == 'f' || r == 'F' {
		typ = TokenFloatConst
		_, t = t.next() // The suffix is not part of the literal
	}

	return Token{Typ: typ, Value: num.String(), Loc: start}, t
}

func (t Tokenizer) identifier() (Token, Tokenizer) {
	start := t.Location()

	var id strings.Builder
	for r := t.peek(); unicode.IsLetter(r) || unicode.IsDigit(r); r = t.peek() {
		id.WriteRune(r)
		_, t = t.next()
	}

	if typ, ok := keywordTable[id.String()]; ok {
		return Token{Typ: typ, Value: id.String(), Loc: start}, t
	}

	return Token{Typ: TokenIdentifier, Value: id.String(), Loc: start}, t
}

func (t Tokenizer) operator() (Token, Tokenizer, error) {
	start := t.Location()

	if pair := t.prefix(2); len([]rune(pair)) == 2 {
		if typ, ok := operatorTable[pair]; ok {
			_, next := t.next()
			_, next = next.next()
			return Token{Typ: typ, Value: pair, Loc: start}, next, nil
		}
	}

	r, next := t.next()
	if typ, ok := operatorTable[string(r)]; ok {
		return Token{Typ: typ, Value: string(r), Loc: start}, next, nil
	}

	return Token{Typ: TokenError, Value: string(r), Loc: start}, t, &LexError{Char: r, Loc: start}
}

func (t Tokenizer) peek() rune {
	return t.peekAt(0)
}

func (t Tokenizer) peekAt(n int) rune {
	text := t.text
	for i := 0; i < n; i++ {
		_, size := utf8.DecodeRuneInString(text)
		if size == 0 {
			return EOF
		}
		text = text[size:]
	}

	if text == "" {
		return EOF
	}

	r, _ := utf8.DecodeRuneInString(text)
	return r
}

func (t Tokenizer) prefix(n int) string {
	end := 0
	for i := 0; i < n && end < len(t.text); i++ {
		_, size := utf8.DecodeRuneInString(t.text[end:])
		end += size
	}

	return t.text[:end]
}

func (t Tokenizer) next() (rune, Tokenizer) {
	if t.text == "" {
		return EOF, t
	}

	r, size := utf8.DecodeRuneInString(t.text)
	t.text = t.text[size:]

	if r == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}

	return r, t
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// Tokenize runs the tokenizer to the end of the text, skipping any rune it
// cannot recognize. It returns every token read, EOF excluded, alongside
// every lexical error met on the way.
func Tokenize(text string) ([]Token, []error) {
	var toks []Token
	var errs []error

	t := NewTokenizer(text)
	for {
		tok, next, err := t.Next()
		if err != nil {
			errs = append(errs, err)
			t = next.Skip()
			continue
		}

		if tok.Typ == TokenEOF {
			return toks, errs
		}

		toks = append(toks, tok)
		t = next
	}
}
