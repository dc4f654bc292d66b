package quill

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interpretText(t *testing.T, text string, opts ...InterpreterOption) (*Interpreter, Value, error) {
	t.Helper()

	prog, err := Parse(text)
	require.NoError(t, err, text)
	require.NoError(t, Analyze(prog), text)

	i := NewInterpreter(opts...)
	v, err := i.Interpret(prog)

	return i, v, err
}

func TestInterpreter(t *testing.T) {
	cases := []struct {
		data   string
		expect Value
	}{
		{"1 + 2 * 3", NewInt(7)},
		{"4 * 3 / 2", NewInt(6)},
		{"(1 + 1) * 3", NewInt(6)},
		{"3 * (2 + (5 - 3))", NewInt(12)},
		{"5---2", NewInt(3)},
		{"7 / 2", NewInt(3)},
		{"7.0 / 2.0", NewFloat(3.5)},
		{"-1.5 + 4f", NewFloat(2.5)},
		{"1 < 2", NewBool(true)},
		{"2.5 >= 3.0", NewBool(false)},
		{"x := 1; x < 2 && !false", NewBool(true)},
		{"t := true; f := false; return t != f;", NewBool(true)},
		{"x := 3; x == 3 || x > 5", NewBool(true)},
		{"func Sum(int a, int b) { return a + b; } return Sum(1, 2);", NewInt(3)},
		{"func Two() { return 2; } func Double(int n) { return 2 * n; } return Double(Two());", NewInt(4)},
		{"if false { return 2; } else { return 3; }", NewInt(3)},
		{"if false { return 2; }", None()},
		{"a := 1;", None()},
		{"func F() { return 1; }", None()},
		{"", None()},
	}

	for _, c := range cases {
		_, v, err := interpretText(t, c.data)
		if assert.NoError(t, err, c.data) {
			assert.Equal(t, c.expect, v, c.data)
		}
	}
}

func TestInterpreterEarlyReturn(t *testing.T) {
	cases := []struct {
		data   string
		expect Value
	}{
		{"func F(int n) { if n > 0 { return 1; } return 2; } return F(5);", NewInt(1)},
		{"func F(int n) { if n > 0 { return 1; } return 2; } return F(0);", NewInt(2)},
		{"func F() { return 1; return 2; } return F();", NewInt(1)},
		{"if true { if true { return 7; } } return 8;", NewInt(7)},
	}

	for _, c := range cases {
		_, v, err := interpretText(t, c.data)
		if assert.NoError(t, err, c.data) {
			assert.Equal(t, c.expect, v, c.data)
		}
	}

	i, v, err := interpretText(t, "a := 1; return a; a := 2;")
	require.NoError(t, err)
	assert.Equal(t, NewInt(1), v)

	a, ok := i.Global("a")
	assert.True(t, ok)
	assert.Equal(t, NewInt(1), a)
}

func TestInterpreterRecursion(t *testing.T) {
	_, v, err := interpretText(t, "func Fact(int n) { if n < 2 { return 1; } return n * Fact(n - 1); } return Fact(10);")
	require.NoError(t, err)
	assert.Equal(t, NewInt(3628800), v)
}

func TestInterpreterGlobals(t *testing.T) {
	i, _, err := interpretText(t, "a := 2; b := a * 3; c := b > 5; func F() { x := 1; return x; } y := F();")
	require.NoError(t, err)

	for name, expect := range map[string]Value{
		"a": NewInt(2),
		"b": NewInt(6),
		"c": NewBool(true),
		"y": NewInt(1),
	} {
		v, ok := i.Global(name)
		assert.True(t, ok, name)
		assert.Equal(t, expect, v, name)
	}

	_, ok := i.Global("x")
	assert.False(t, ok)

	assert.Equal(t, "main", i.Globals().Name)
	assert.Equal(t, RecordProgram, i.Globals().Kind)
	assert.Equal(t, 0, i.Stack().Len())
}

func TestInterpreterGlobalBeforeRun(t *testing.T) {
	_, ok := NewInterpreter().Global("a")
	assert.False(t, ok)
}

func TestInterpreterRuntimeErrors(t *testing.T) {
	cases := []struct {
		data string
		msg  string
	}{
		{"a := 0; return 1 / a;", "1:18 runtime error: integer division by zero"},
		{"func D(int a) { return 10 / a; } return D(0);", "1:27 runtime error: integer division by zero"},
		{"return F(); func F() { return 1; }", "1:8 runtime error: function 'F' not declared"},
		{"func F() { return 1.5; } int a := F();", "1:32 runtime error: cannot assign 'float' to 'int a'"},
		{"func F(int a) { return a; } return F(1.5);", "1:38 runtime error: argument 'a' of 'F' is 'float', not 'int'"},
		{"func F(int a) { return a; } return F(1, 2);", "1:36 runtime error: function 'F' takes 1 arguments, got 2"},
	}

	for _, c := range cases {
		i, _, err := interpretText(t, c.data)

		var runtimeErr *RuntimeError
		if assert.ErrorAs(t, err, &runtimeErr, c.data) {
			assert.EqualError(t, err, c.msg, c.data)
		}

		assert.Equal(t, 0, i.Stack().Len(), c.data)
	}
}

func TestInterpreterUnanalyzed(t *testing.T) {
	prog, err := Parse("return x;")
	require.NoError(t, err)

	_, err = Interpret(prog)
	assert.EqualError(t, err, "1:8 runtime error: variable 'x' not found")
}

func TestInterpreterMaxCallDepth(t *testing.T) {
	text := "func Loop(int n) { return Loop(n + 1); } return Loop(0);"

	i, _, err := interpretText(t, text, WithMaxCallDepth(50))

	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Contains(t, err.Error(), "recursion depth exceeded (limit 50)")
	assert.Equal(t, 0, i.Stack().Len())

	_, v, err := interpretText(t, "func Down(int n) { if n < 1 { return 0; } return Down(n - 1); } return Down(48);",
		WithMaxCallDepth(50))
	require.NoError(t, err)
	assert.Equal(t, NewInt(0), v)
}

func TestInterpreterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	_, _, err := interpretText(t, "func F() { return 1; } F();", WithInterpreterLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "entering")
	assert.Contains(t, out, "leaving")
	assert.Contains(t, out, "FUNCTION F")
}

func TestInterpreterNestingLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	_, v, err := interpretText(t, "func Fact(int n) { if n < 2 { return 1; } return n * Fact(n - 1); } return Fact(3);",
		WithInterpreterLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, NewInt(6), v)

	out := buf.String()
	assert.Contains(t, out, "entering record=main level=1")
	assert.Contains(t, out, "entering record=Fact level=2")
	assert.Contains(t, out, "entering record=Fact level=3")
	assert.Contains(t, out, "entering record=Fact level=4")
	assert.NotContains(t, out, "level=5")
}

func TestInterpreterIfSharesRecord(t *testing.T) {
	i, _, err := interpretText(t, "if true { y := 1; } else { z := 2; }")
	require.NoError(t, err)

	y, ok := i.Global("y")
	assert.True(t, ok)
	assert.Equal(t, NewInt(1), y)

	_, ok = i.Global("z")
	assert.False(t, ok)
}
