package quill

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueLookup(t *testing.T) {
	vals := NewValueLookup()

	slot1 := ir.NewAlloca(types.I64)
	slot2 := ir.NewAlloca(types.Double)

	vals.Set("id1", slot1)
	vals.Set("id2", slot2)

	got, ok := vals.Get("id1")
	assert.True(t, ok)
	assert.Same(t, slot1, got)

	got, ok = vals.Get("id2")
	assert.True(t, ok)
	assert.Same(t, slot2, got)

	_, ok = vals.Get("id3")
	assert.False(t, ok)
}

func generateText(t *testing.T, text string) (string, error) {
	t.Helper()

	prog, err := Parse(text)
	require.NoError(t, err, text)
	require.NoError(t, Analyze(prog), text)

	mod, err := GenerateIR(prog)
	if err != nil {
		return "", err
	}

	return mod.String(), nil
}

func TestGenerateIR(t *testing.T) {
	cases := []struct {
		data   string
		expect []string
	}{
		{
			"func Sum(int a, int b) { return a + b; } return Sum(1, 2);",
			[]string{
				"define i64 @Sum(i64 %a, i64 %b) {",
				"%a.addr = alloca i64",
				"add i64",
				"define i64 @quill.main() {",
				"call i64 @Sum(i64 1, i64 2)",
			},
		},
		{
			"func F() { x := 1; }",
			[]string{
				"define void @F() {",
				"%x.addr = alloca i64",
				"ret void",
				"define void @quill.main() {",
			},
		},
		{
			"func H(float x) { return x * 2.0 - 1f; }",
			[]string{"define double @H(double %x) {", "fmul double", "fsub double"},
		},
		{
			"func Abs(int n) { if n < 0 { return -n; } return n; }",
			[]string{"icmp slt i64", "br i1", "if.then.0:", "if.else.0:", "if.end.0:", "sub i64 0,"},
		},
		{
			"func N(bool b) { return !b && true; }",
			[]string{"define i1 @N(i1 %b) {", "xor i1", "and i1"},
		},
		{
			"func A() { return B(); } func B() { return 1.5; }",
			[]string{"define double @A() {", "define double @B() {", "call double @B()"},
		},
		{
			"func F() { return 1; x := 2; }",
			[]string{"dead.0:", "%x.addr = alloca i64"},
		},
		{
			"a := 1.5 < 2.5; b := 3 == 4;",
			[]string{"fcmp olt double", "icmp eq i64", "%a.addr = alloca i1"},
		},
	}

	for _, c := range cases {
		out, err := generateText(t, c.data)
		require.NoError(t, err, c.data)

		for _, expect := range c.expect {
			assert.Contains(t, out, expect, c.data)
		}
	}
}

func TestGenerateIRErrors(t *testing.T) {
	cases := []struct {
		data string
		msg  string
	}{
		{"func F() { return F(); }", "1:6 ir error: cannot infer return type of 'F'"},
		{"func F(int n) { if n > 0 { return 1; } return 2.5; }", "1:40 ir error: 'F' returns both 'int' and 'float'"},
		{"return G();", "1:8 ir error: function 'G' not declared"},
		{"func F(int a) { return a; } return F(1.5);", "1:38 ir error: argument 'a' of 'F' is 'float', not 'int'"},
	}

	for _, c := range cases {
		_, err := generateText(t, c.data)

		var irErr *IRError
		if assert.ErrorAs(t, err, &irErr, c.data) {
			assert.EqualError(t, err, c.msg, c.data)
		}
	}
}
