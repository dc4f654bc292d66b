package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivationRecord(t *testing.T) {
	rec := NewActivationRecord(RecordProgram, "Test", 1)
	rec.Set("b", NewBool(true))
	rec.Set("a", NewInt(1))
	rec.Set("a", NewInt(2))

	v, ok := rec.Get("a")
	assert.True(t, ok)
	assert.Equal(t, NewInt(2), v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, []string{"a", "b"}, rec.Names())
	assert.Equal(t, "1: PROGRAM Test\n"+
		"    a                   : 2\n"+
		"    b                   : true\n", rec.String())
}

func TestCallStack(t *testing.T) {
	stack := NewCallStack()

	assert.Nil(t, stack.Pop())
	assert.Nil(t, stack.Peek())
	assert.Panics(t, func() { stack.Push(nil) })

	prog := NewActivationRecord(RecordProgram, "main", 1)
	fn := NewActivationRecord(RecordFunction, "F", 2)
	fn.Set("x", NewFloat(1.5))

	stack.Push(prog)
	stack.Push(fn)

	assert.Equal(t, 2, stack.Len())
	assert.Same(t, fn, stack.Peek())
	assert.Equal(t, "CALL STACK\n"+
		"2: FUNCTION F\n"+
		"    x                   : 1.5\n"+
		"1: PROGRAM main\n", stack.String())

	assert.Same(t, fn, stack.Pop())
	assert.Same(t, prog, stack.Pop())
	assert.Nil(t, stack.Pop())
	assert.Equal(t, 0, stack.Len())
}

func TestValue(t *testing.T) {
	cases := []struct {
		value Value
		kind  ValueKind
		str   string
	}{
		{None(), KindNone, "none"},
		{NewInt(-3), KindInt, "-3"},
		{NewFloat(2.5), KindFloat, "2.5"},
		{NewFloat(3), KindFloat, "3"},
		{NewBool(false), KindBool, "false"},
	}

	for _, c := range cases {
		assert.Equal(t, c.kind, c.value.Kind())
		assert.Equal(t, c.str, c.value.String())
	}

	assert.True(t, None().IsNone())
	assert.Equal(t, "float", KindFloat.String())
}
