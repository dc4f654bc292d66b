package quill

import (
	"fmt"
	"strconv"
)

type ValueKind int

const (
	KindNone ValueKind = iota
	KindInt
	KindFloat
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return TypeInt
	case KindFloat:
		return TypeFloat
	case KindBool:
		return TypeBool
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is the result of evaluating a node: an int, a float, a bool, or
// nothing at all.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	b    bool
}

func None() Value {
	return Value{}
}

func NewInt(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func NewFloat(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNone() bool    { return v.kind == KindNone }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Bool() bool      { return v.b }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "none"
	}
}
