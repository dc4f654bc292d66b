package quill

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.quill.dev/internal/test"
)

func TestEngineRun(t *testing.T) {
	e := NewEngine(Config{})

	v, err := e.Run("func Sum(int a, int b) { return a + b; } s := Sum(1, 2); return s * 2;")
	require.NoError(t, err)
	assert.Equal(t, NewInt(6), v)

	s, ok := e.Globals().Get("s")
	assert.True(t, ok)
	assert.Equal(t, NewInt(3), s)

	v, err = e.RunReader(strings.NewReader("if 1 < 2 { return true; }"))
	require.NoError(t, err)
	assert.Equal(t, NewBool(true), v)

	_, ok = e.Globals().Get("s")
	assert.False(t, ok)
}

func TestEngineStageErrors(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Run("a := ;")
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
	assert.EqualError(t, err, "parse: 1:6 syntax error: unexpected token ';'")

	_, err = e.Run("a := 1 @ 2;")
	var lexErr *LexError
	assert.True(t, errors.As(err, &lexErr))

	_, err = e.Run("int a := a;")
	var semErr *SemanticError
	require.True(t, errors.As(err, &semErr))
	assert.Equal(t, IDNotFound, semErr.Code)
	assert.EqualError(t, err, "analyze: 1:10 IdNotFound: identifier 'a' not found")

	_, err = e.Run("a := 0; return 1 / a;")
	var runtimeErr *RuntimeError
	assert.True(t, errors.As(err, &runtimeErr))
	assert.True(t, strings.HasPrefix(err.Error(), "interpret: "))
}

func TestEngineCheck(t *testing.T) {
	e := NewEngine(Config{KeepLastScope: true})

	prog, err := e.Check("globA := 0; func A(int paramA) { int a := paramA; }")
	require.NoError(t, err)
	assert.NotNil(t, prog)

	assert.Equal(t, "A", e.Scopes().Last().Name)
	assert.Nil(t, e.Globals())
}

func TestEngineMaxCallDepth(t *testing.T) {
	text := "func Down(int n) { if n < 1 { return 0; } return Down(n - 1); } return Down(20);"

	_, err := NewEngine(Config{MaxCallDepth: 10}).Run(text)
	assert.Error(t, err)

	v, err := NewEngine(Config{MaxCallDepth: -1}).Run(text)
	require.NoError(t, err)
	assert.Equal(t, NewInt(0), v)
}

func TestEngineEmitIR(t *testing.T) {
	out, err := NewEngine(Config{}).EmitIR("func Two() { return 2; } func Double(int n) { return 2 * n; } return Double(Two());")
	require.NoError(t, err)

	assert.Contains(t, out, "define i64 @Two()")
	assert.Contains(t, out, "define i64 @Double(i64 %n)")
	assert.Contains(t, out, "define i64 @quill.main()")

	_, err = NewEngine(Config{}).EmitIR("func F() { return F(); }")
	var irErr *IRError
	assert.True(t, errors.As(err, &irErr))
}

func TestEngineLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	_, err := NewEngine(Config{Logger: logger}).Run("func F(int n) { return n; } F(1);")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "leaving scope")
	assert.Contains(t, buf.String(), "PROGRAM main")
}

// Use a package-level variable to avoid compiler optimisation
var benchValue Value

func benchmarkEngine(size int, b *testing.B) {
	e := NewEngine(Config{})

	for n := 0; n < b.N; n++ {
		b.StopTimer()
		data := test.GetRandomProgram(size)
		b.StartTimer()

		var err error
		if benchValue, err = e.Run(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine100(b *testing.B) {
	benchmarkEngine(100, b)
}

func BenchmarkEngine1000(b *testing.B) {
	benchmarkEngine(1000, b)
}

func TestEngineFailedUnitClearsState(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.Run("a := 1;")
	require.NoError(t, err)
	require.NotNil(t, e.Scopes())
	require.NotNil(t, e.Globals())

	_, err = e.Run("a := ;")
	assert.Error(t, err)
	assert.Nil(t, e.Scopes())
	assert.Nil(t, e.Globals())

	_, err = e.Run("int a := a;")
	assert.Error(t, err)
	assert.NotNil(t, e.Scopes())
	assert.Nil(t, e.Globals())
}
