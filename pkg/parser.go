package quill

import "github.com/pkg/errors"

// Parser holds only the tokenizer it starts from. Every Parse call starts
// over from that snapshot, so a Parser can be reused.
type Parser struct {
	tokenizer Tokenizer
}

func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{
		tokenizer: tokenizer,
	}
}

// Parse tokenizes and parses text into a Program.
func Parse(text string) (*Program, error) {
	return NewParser(NewTokenizer(text)).Parse()
}

func (p *Parser) Parse() (*Program, error) {
	c, err := newCursor(p.tokenizer)
	if err != nil {
		return nil, err
	}

	c.memo = &parseMemo{numExpr: make(map[Location]memoEntry)}
	return c.program()
}

// cursor is the parser position: the current token plus the tokenizer that
// follows it. Rules take a cursor by value and return the advanced one, so
// keeping an old cursor is all a rule needs to backtrack.
type cursor struct {
	tok  Tokenizer
	cur  Token
	memo *parseMemo
}

// parseMemo records every NumExpr parsed during one Parse call, keyed by
// the location of its first token. A failed BoolExpr trial and the NumExpr
// parsed after it then share the work, so nested calls stay linear.
type parseMemo struct {
	numExpr map[Location]memoEntry
}

type memoEntry struct {
	n    Node
	next cursor
	err  error
}

func newCursor(t Tokenizer) (cursor, error) {
	tok, next, err := t.Next()
	if err != nil {
		return cursor{}, err
	}

	return cursor{tok: next, cur: tok}, nil
}

func (c cursor) advance() (cursor, error) {
	next, err := newCursor(c.tok)
	next.memo = c.memo
	return next, err
}

func (c cursor) peek() (Token, error) {
	tok, _, err := c.tok.Next()
	return tok, err
}

func (c cursor) check(types ...TokenType) bool {
	for _, typ := range types {
		if c.cur.Typ == typ {
			return true
		}
	}

	return false
}

func (c cursor) expect(typ TokenType) (Token, cursor, error) {
	if c.cur.Typ != typ {
		return c.cur, c, c.unexpected()
	}

	next, err := c.advance()
	return c.cur, next, err
}

func (c cursor) unexpected() error {
	return &SyntaxError{Token: c.cur}
}

var (
	typeTokens       = []TokenType{TokenIntType, TokenFloatType, TokenBoolType}
	compareTokens    = []TokenType{TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual, TokenEqual, TokenNotEqual}
	arithmeticTokens = []TokenType{TokenPlus, TokenMinus, TokenAsterisk, TokenSlash}
	exprStartTokens  = []TokenType{
		TokenIntConst, TokenFloatConst, TokenTrue, TokenFalse,
		TokenOpenParentheses, TokenPlus, TokenMinus, TokenExclamation,
	}
)

// PROGRAM -> (FUNCTION_DECLARATION | STATEMENT_LIST)*
func (c cursor) program() (*Program, error) {
	block := &Compound{Loc: c.cur.Loc}

	for !c.check(TokenEOF) {
		var n Node
		var err error

		switch {
		case c.check(TokenFunc):
			n, c, err = c.functionDeclaration()
		case c.check(TokenCloseCurly):
			return nil, c.unexpected()
		default:
			n, c, err = c.statementList()
		}

		if err != nil {
			return nil, err
		}

		block.Children = append(block.Children, n)
	}

	return &Program{Block: block}, nil
}

// FUNCTION_DECLARATION -> "func" ID "(" PARAMETERS ")" BLOCK
func (c cursor) functionDeclaration() (Node, cursor, error) {
	_, c, err := c.expect(TokenFunc)
	if err != nil {
		return nil, c, err
	}

	name, c, err := c.expect(TokenIdentifier)
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenOpenParentheses); err != nil {
		return nil, c, err
	}

	params, c, err := c.parameters()
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenCloseParentheses); err != nil {
		return nil, c, err
	}

	body, c, err := c.block()
	if err != nil {
		return nil, c, err
	}

	return &FunctionDeclaration{
		Token:      name,
		Parameters: params,
		Body:       body,
	}, c, nil
}

// PARAMETERS -> (PARAMETER ("," PARAMETER)*)?
func (c cursor) parameters() ([]*Parameter, cursor, error) {
	if !c.check(typeTokens...) {
		return nil, c, nil
	}

	var params []*Parameter
	for {
		param, next, err := c.parameter()
		if err != nil {
			return nil, next, err
		}

		params = append(params, param)
		c = next

		if !c.check(TokenComma) {
			return params, c, nil
		}

		if c, err = c.advance(); err != nil { // Skip the comma
			return nil, c, err
		}
	}
}

// PARAMETER -> TYPE ID
func (c cursor) parameter() (*Parameter, cursor, error) {
	typ, c, err := c.typeSpec()
	if err != nil {
		return nil, c, err
	}

	name, c, err := c.expect(TokenIdentifier)
	if err != nil {
		return nil, c, err
	}

	return &Parameter{Type: typ, Var: &Var{Token: name}}, c, nil
}

// TYPE -> "int" | "float" | "bool"
func (c cursor) typeSpec() (*TypeSpec, cursor, error) {
	if !c.check(typeTokens...) {
		return nil, c, c.unexpected()
	}

	tok := c.cur
	c, err := c.advance()
	return &TypeSpec{Token: tok}, c, err
}

// BLOCK -> "{" STATEMENT_LIST "}"
func (c cursor) block() (Node, cursor, error) {
	_, c, err := c.expect(TokenOpenCurly)
	if err != nil {
		return nil, c, err
	}

	list, c, err := c.statementList()
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenCloseCurly); err != nil {
		return nil, c, err
	}

	return list, c, nil
}

// STATEMENT_LIST -> STATEMENT+
//
// The list ends, without consuming, at EOF, "}" or "func".
func (c cursor) statementList() (Node, cursor, error) {
	list := &Compound{Loc: c.cur.Loc}

	for {
		stmt, next, err := c.statement()
		if err != nil {
			return nil, next, err
		}

		list.Children = append(list.Children, stmt)
		c = next

		if c.check(TokenEOF, TokenCloseCurly, TokenFunc) {
			return list, c, nil
		}
	}
}

// STATEMENT -> (ASSIGNMENT | FUNCTION_CALL | EXPR) ";"
//            | RETURN ";"
//            | IF_STATEMENT
//            | EMPTY
func (c cursor) statement() (Node, cursor, error) {
	switch {
	case c.check(TokenIdentifier):
		next, err := c.peek()
		if err != nil {
			return nil, c, err
		}

		if next.Typ == TokenDeclaration {
			return c.terminated(c.assignment())
		}

		return c.expressionStatement()
	case c.check(typeTokens...):
		return c.terminated(c.assignment())
	case c.check(TokenReturn):
		return c.terminated(c.returnStatement())
	case c.check(TokenIf):
		return c.ifStatement()
	case c.check(TokenCloseCurly, TokenEOF):
		return &NoOp{Loc: c.cur.Loc}, c, nil
	case c.check(exprStartTokens...):
		return c.expressionStatement()
	default:
		return nil, c, c.unexpected()
	}
}

func (cursor) terminated(n Node, c cursor, err error) (Node, cursor, error) {
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenSemiColon); err != nil {
		return nil, c, err
	}

	return n, c, nil
}

// An expression statement may leave out its ";" when it closes the input
// or a block.
func (c cursor) expressionStatement() (Node, cursor, error) {
	n, c, err := c.expression()
	if err != nil {
		return nil, c, err
	}

	if c.check(TokenEOF, TokenCloseCurly) {
		return n, c, nil
	}

	if _, c, err = c.expect(TokenSemiColon); err != nil {
		return nil, c, err
	}

	return n, c, nil
}

// RETURN -> "return" EXPR
func (c cursor) returnStatement() (Node, cursor, error) {
	tok, c, err := c.expect(TokenReturn)
	if err != nil {
		return nil, c, err
	}

	value, c, err := c.expression()
	if err != nil {
		return nil, c, err
	}

	return &Return{Token: tok, Value: value}, c, nil
}

// ASSIGNMENT -> TYPE? VAR ":=" EXPR
func (c cursor) assignment() (Node, cursor, error) {
	var typ *TypeSpec
	if c.check(typeTokens...) {
		var err error
		if typ, c, err = c.typeSpec(); err != nil {
			return nil, c, err
		}
	}

	name, c, err := c.expect(TokenIdentifier)
	if err != nil {
		return nil, c, err
	}

	op, c, err := c.expect(TokenDeclaration)
	if err != nil {
		return nil, c, err
	}

	value, c, err := c.expression()
	if err != nil {
		return nil, c, err
	}

	return &Assign{
		Type:   typ,
		Target: &Var{Token: name},
		Op:     op,
		Value:  value,
	}, c, nil
}

// IF_STATEMENT -> "if" BOOL_EXPR BLOCK ("else" BLOCK)?
func (c cursor) ifStatement() (Node, cursor, error) {
	tok, c, err := c.expect(TokenIf)
	if err != nil {
		return nil, c, err
	}

	cond, c, err := c.boolExpr()
	if err != nil {
		return nil, c, err
	}

	trueBlock, c, err := c.block()
	if err != nil {
		return nil, c, err
	}

	var falseBlock Node = &NoOp{Loc: c.cur.Loc}
	if c.check(TokenElse) {
		if c, err = c.advance(); err != nil {
			return nil, c, err
		}

		if falseBlock, c, err = c.block(); err != nil {
			return nil, c, err
		}
	}

	return &If{
		Token:      tok,
		Condition:  cond,
		TrueBlock:  trueBlock,
		FalseBlock: falseBlock,
	}, c, nil
}

// FUNCTION_CALL -> ID "(" ARGUMENTS ")"
// ARGUMENTS -> (EXPR ("," EXPR)*)?
func (c cursor) functionCall() (Node, cursor, error) {
	name, c, err := c.expect(TokenIdentifier)
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenOpenParentheses); err != nil {
		return nil, c, err
	}

	var args []Node
	for !c.check(TokenCloseParentheses) {
		var arg Node
		if arg, c, err = c.expression(); err != nil {
			return nil, c, err
		}

		args = append(args, arg)

		if !c.check(TokenComma) {
			break
		}

		if c, err = c.advance(); err != nil { // Skip the comma
			return nil, c, err
		}
	}

	if _, c, err = c.expect(TokenCloseParentheses); err != nil {
		return nil, c, err
	}

	return &FunctionCall{Token: name, Arguments: args}, c, nil
}

// EXPR -> BOOL_EXPR | NUM_EXPR
//
// A leading identifier, call or parenthesis does not tell the two grammars
// apart, so the boolean form is tried first and the numeric one is parsed
// from the same position when it does not fit.
func (c cursor) expression() (Node, cursor, error) {
	n, next, ok, err := c.try(cursor.boolExpr)
	if err != nil {
		return nil, next, err
	}

	if ok {
		return n, next, nil
	}

	return c.numExpr()
}

// try runs rule from c. A syntax error is reported as ok == false with c
// left untouched; any other error is returned as is.
func (c cursor) try(rule func(cursor) (Node, cursor, error)) (Node, cursor, bool, error) {
	n, next, err := rule(c)
	if err == nil {
		return n, next, true, nil
	}

	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return nil, c, false, nil
	}

	return nil, next, false, err
}

// BOOL_EXPR -> BOOL_TERM (("&&" | "||") BOOL_TERM)*
func (c cursor) boolExpr() (Node, cursor, error) {
	lhs, c, err := c.boolTerm()
	if err != nil {
		return nil, c, err
	}

	for c.check(TokenLogicalAnd, TokenLogicalOr) {
		op := c.cur
		if c, err = c.advance(); err != nil {
			return nil, c, err
		}

		var rhs Node
		if rhs, c, err = c.boolTerm(); err != nil {
			return nil, c, err
		}

		lhs = &BinaryOp{Op: op, Left: lhs, Right: rhs}
	}

	return lhs, c, nil
}

// BOOL_TERM -> "(" BOOL_EXPR ")"
//            | "!" BOOL_TERM
//            | BOOL_CONST
//            | NUM_EXPR (COMPARE_OP NUM_EXPR)?
//            | FUNCTION_CALL
//            | VAR
func (c cursor) boolTerm() (Node, cursor, error) {
	switch {
	case c.check(TokenOpenParentheses):
		n, next, ok, err := c.try(cursor.parenthesisedBoolExpr)
		if err != nil {
			return nil, next, err
		}

		// "(a) + 1" and "(a) < 1" continue as numeric expressions
		if ok && !next.check(arithmeticTokens...) && !next.check(compareTokens...) {
			return n, next, nil
		}
	case c.check(TokenExclamation):
		op := c.cur
		c, err := c.advance()
		if err != nil {
			return nil, c, err
		}

		operand, c, err := c.boolTerm()
		if err != nil {
			return nil, c, err
		}

		return &UnaryOp{Op: op, Operand: operand}, c, nil
	case c.check(TokenTrue, TokenFalse):
		tok := c.cur
		c, err := c.advance()
		return &BoolLiteral{Token: tok}, c, err
	}

	lhs, c, err := c.numExpr()
	if err != nil {
		return nil, c, err
	}

	if c.check(compareTokens...) {
		op := c.cur
		if c, err = c.advance(); err != nil {
			return nil, c, err
		}

		rhs, c, err := c.numExpr()
		if err != nil {
			return nil, c, err
		}

		return &BinaryOp{Op: op, Left: lhs, Right: rhs}, c, nil
	}

	switch lhs.(type) {
	case *Var, *FunctionCall:
		return lhs, c, nil
	default:
		return nil, c, c.unexpected()
	}
}

func (c cursor) parenthesisedBoolExpr() (Node, cursor, error) {
	_, c, err := c.expect(TokenOpenParentheses)
	if err != nil {
		return nil, c, err
	}

	n, c, err := c.boolExpr()
	if err != nil {
		return nil, c, err
	}

	if _, c, err = c.expect(TokenCloseParentheses); err != nil {
		return nil, c, err
	}

	return n, c, nil
}

func (c cursor) numExpr() (Node, cursor, error) {
	if c.memo == nil {
		return c.parseNumExpr()
	}

	if e, ok := c.memo.numExpr[c.cur.Loc]; ok {
		return e.n, e.next, e.err
	}

	n, next, err := c.parseNumExpr()
	c.memo.numExpr[c.cur.Loc] = memoEntry{n: n, next: next, err: err}

	return n, next, err
}

// NUM_EXPR -> NUM_TERM (("+" | "-") NUM_TERM)*
func (c cursor) parseNumExpr() (Node, cursor, error) {
	lhs, c, err := c.numTerm()
	if err != nil {
		return nil, c, err
	}

	for c.check(TokenPlus, TokenMinus) {
		op := c.cur
		if c, err = c.advance(); err != nil {
			return nil, c, err
		}

		var rhs Node
		if rhs, c, err = c.numTerm(); err != nil {
			return nil, c, err
		}

		lhs = &BinaryOp{Op: op, Left: lhs, Right: rhs}
	}

	return lhs, c, nil
}

// NUM_TERM -> FACTOR (("*" | "/") FACTOR)*
func (c cursor) numTerm() (Node, cursor, error) {
	lhs, c, err := c.factor()
	if err != nil {
		return nil, c, err
	}

	for c.check(TokenAsterisk, TokenSlash) {
		op := c.cur
		if c, err = c.advance(); err != nil {
			return nil, c, err
		}

		var rhs Node
		if rhs, c, err = c.factor(); err != nil {
			return nil, c, err
		}

		lhs = &BinaryOp{Op: op, Left: lhs, Right: rhs}
	}

	return lhs, c, nil
}

// FACTOR -> "(" NUM_EXPR ")"
//         | ("+" | "-") FACTOR
//         | FLOAT_CONST
//         | INT_CONST
//         | FUNCTION_CALL
//         | VAR
func (c cursor) factor() (Node, cursor, error) {
	switch tok := c.cur; tok.Typ {
	case TokenOpenParentheses:
		c, err := c.advance()
		if err != nil {
			return nil, c, err
		}

		n, c, err := c.numExpr()
		if err != nil {
			return nil, c, err
		}

		if _, c, err = c.expect(TokenCloseParentheses); err != nil {
			return nil, c, err
		}

		return n, c, nil
	case TokenPlus, TokenMinus:
		c, err := c.advance()
		if err != nil {
			return nil, c, err
		}

		operand, c, err := c.factor()
		if err != nil {
			return nil, c, err
		}

		return &UnaryOp{Op: tok, Operand: operand}, c, nil
	case TokenFloatConst:
		c, err := c.advance()
		return &FloatLiteral{Token: tok}, c, err
	case TokenIntConst:
		c, err := c.advance()
		return &IntLiteral{Token: tok}, c, err
	case TokenIdentifier:
		next, err := c.peek()
		if err != nil {
			return nil, c, err
		}

		if next.Typ == TokenOpenParentheses {
			return c.functionCall()
		}

		c, err = c.advance()
		return &Var{Token: tok}, c, err
	default:
		return nil, c, c.unexpected()
	}
}
