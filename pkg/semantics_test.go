package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeText(t *testing.T, text string, opts ...AnalyzerOption) (*Analyzer, error) {
	t.Helper()

	prog, err := Parse(text)
	require.NoError(t, err, text)

	a := NewAnalyzer(opts...)
	return a, a.Analyze(prog)
}

func TestAnalyzer(t *testing.T) {
	cases := []string{
		"globA := 0; func A(int paramA) { int a := paramA; }",
		"a := 1; b := a + 2;",
		"f := 1.5 * 2.0; g := -f;",
		"ok := 1 < 2 && !false;",
		"func Sum(int a, int b) { return a + b; } return Sum(1, 2);",
		"func Two() { return 2; } func Double(int n) { return 2 * n; } return Double(Two());",
		"if false { return 2; } else { return 3; }",
		"func A(int x) { y := x; } func B(int x) { y := x > 1; }",
		"n := Sum(1) + 1; func Sum(int a) { return a; }",
		"bool b := 1 == 2;",
	}

	for _, c := range cases {
		_, err := analyzeText(t, c)
		assert.NoError(t, err, c)
	}
}

func TestAnalyzerErrors(t *testing.T) {
	cases := []struct {
		data  string
		code  ErrorCode
		token Token
	}{
		{"int a := a;", IDNotFound, Token{TokenIdentifier, "a", loc(1, 10)}},
		{"b := c + 1;", IDNotFound, Token{TokenIdentifier, "c", loc(1, 6)}},
		{"a := 1; func F() { return a; }", IDNotFound, Token{TokenIdentifier, "a", loc(1, 27)}},
		{"func F(int p) { x := 1; } y := x;", IDNotFound, Token{TokenIdentifier, "x", loc(1, 32)}},
		{"func F(int p) { } y := p;", IDNotFound, Token{TokenIdentifier, "p", loc(1, 24)}},
		{"func A() {} func A() {}", DuplicateID, Token{TokenIdentifier, "A", loc(1, 18)}},
		{"float a := 1f + 1;", TypeMismatch, Token{TokenPlus, "+", loc(1, 15)}},
		{"t := true; a := t + t;", TypeMismatch, Token{TokenPlus, "+", loc(1, 19)}},
		{"x := 1; a := x && x;", TypeMismatch, Token{TokenLogicalAnd, "&&", loc(1, 16)}},
		{"t := true; a := -t;", TypeMismatch, Token{TokenMinus, "-", loc(1, 17)}},
		{"int a := 1.5;", TypeMismatch, Token{TokenDeclaration, ":=", loc(1, 7)}},
		{"if 1 + 1 < 2.0 {}", TypeMismatch, Token{TokenLess, "<", loc(1, 10)}},
	}

	for _, c := range cases {
		_, err := analyzeText(t, c.data)

		var semErr *SemanticError
		if assert.ErrorAs(t, err, &semErr, c.data) {
			assert.Equal(t, c.code, semErr.Code, c.data)
			assert.Equal(t, c.token, semErr.Token, c.data)
		}
	}
}

func TestAnalyzerErrorMessage(t *testing.T) {
	_, err := analyzeText(t, "int a := a;")
	assert.EqualError(t, err, "1:10 IdNotFound: identifier 'a' not found")

	_, err = analyzeText(t, "func A() {} func A() {}")
	assert.EqualError(t, err, "1:18 DuplicateId: duplicate identifier 'A' found")
}

func TestAnalyzerScopes(t *testing.T) {
	a, err := analyzeText(t, "globA := 0; func A(int paramA) { int a := paramA; }", WithKeepLastScope())
	require.NoError(t, err)

	scopes := a.Scopes()
	require.Equal(t, 2, scopes.Len())

	global := scopes.Get(scopes.Global())
	assert.True(t, global.HasVariable("globA"))
	assert.True(t, global.HasSymbol("A"))
	assert.False(t, global.HasVariable("a"))

	last := scopes.Last()
	assert.Equal(t, "A", last.Name)
	assert.Equal(t, 1, last.Level)
	assert.Equal(t, TypeInt, last.LookupVariable("paramA").TypeName())
	assert.Equal(t, TypeInt, last.LookupVariable("a").TypeName())
	assert.False(t, last.HasVariable("globA"))
}

func TestAnalyzerDropsFunctionScopes(t *testing.T) {
	a, err := analyzeText(t, "func A() {} func B() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Scopes().Len())

	a, err = analyzeText(t, "func A() {} func B() {}", WithKeepLastScope())
	require.NoError(t, err)
	assert.Equal(t, 2, a.Scopes().Len())
	assert.Equal(t, "B", a.Scopes().Last().Name)
}

func TestAnalyzerFirstAssignmentDeclares(t *testing.T) {
	a, err := analyzeText(t, "x := 1; x := 2; y := 1.5 < 2.5;")
	require.NoError(t, err)

	global := a.Scopes().Get(a.Scopes().Global())
	assert.Equal(t, TypeInt, global.LookupVariable("x").TypeName())
	assert.Equal(t, TypeBool, global.LookupVariable("y").TypeName())
}
