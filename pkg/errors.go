package quill

import "fmt"

// LexError reports a rune the tokenizer does not recognize.
type LexError struct {
	Char rune
	Loc  Location
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s lexical error: invalid symbol %q", e.Loc, e.Char)
}

// SyntaxError reports the token the parser could not fit into the grammar.
type SyntaxError struct {
	Token Token
}

func (e *SyntaxError) Error() string {
	if e.Token.Typ == TokenEOF {
		return fmt.Sprintf("%s syntax error: unexpected end of input", e.Token.Loc)
	}

	return fmt.Sprintf("%s syntax error: unexpected token '%s'", e.Token.Loc, e.Token.Value)
}

type ErrorCode int

const (
	IDNotFound ErrorCode = iota
	DuplicateID
	TypeMismatch
)

func (c ErrorCode) String() string {
	switch c {
	case IDNotFound:
		return "IdNotFound"
	case DuplicateID:
		return "DuplicateId"
	case TypeMismatch:
		return "TypeMismatch"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

type SemanticError struct {
	Code  ErrorCode
	Token Token
	Msg   string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Token.Loc, e.Code, e.Msg)
}

// RuntimeError covers what the analyzer cannot rule out ahead of time.
type RuntimeError struct {
	Loc Location
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s runtime error: %s", e.Loc, e.Msg)
}

func runtimeErrorf(loc Location, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

type IRError struct {
	Loc Location
	Msg string
}

func (e *IRError) Error() string {
	return fmt.Sprintf("%s ir error: %s", e.Loc, e.Msg)
}

func irErrorf(loc Location, format string, args ...interface{}) *IRError {
	return &IRError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}
