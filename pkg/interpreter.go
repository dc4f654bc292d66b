package quill

import (
	"fmt"

	"github.com/charmbracelet/log"
)

const DefaultMaxCallDepth = 1000

type InterpreterOption func(*Interpreter)

func WithInterpreterLogger(logger *log.Logger) InterpreterOption {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithMaxCallDepth bounds the call stack. Zero or less means unbounded.
func WithMaxCallDepth(depth int) InterpreterOption {
	return func(i *Interpreter) {
		i.maxDepth = depth
	}
}

// Interpreter evaluates a program by walking its tree, keeping one
// activation record per running program or function call.
type Interpreter struct {
	stack     *CallStack
	functions map[string]*FunctionDeclaration
	globals   *ActivationRecord
	maxDepth  int
	logger    *log.Logger
}

func NewInterpreter(opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		stack:     NewCallStack(),
		functions: make(map[string]*FunctionDeclaration),
		maxDepth:  DefaultMaxCallDepth,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Interpret evaluates prog with a fresh interpreter.
func Interpret(prog *Program) (Value, error) {
	return NewInterpreter().Interpret(prog)
}

// Interpret evaluates prog and returns the value it produced: the value of
// the first return statement reached at top level, else the value of the
// last statement evaluated.
func (i *Interpreter) Interpret(prog *Program) (Value, error) {
	i.stack = NewCallStack()
	i.functions = make(map[string]*FunctionDeclaration)
	i.globals = nil

	v, _, err := i.visit(prog)
	return v, err
}

// Global reads a variable of the program record left by the last
// Interpret call.
func (i *Interpreter) Global(name string) (Value, bool) {
	if i.globals == nil {
		return None(), false
	}

	return i.globals.Get(name)
}

func (i *Interpreter) Globals() *ActivationRecord {
	return i.globals
}

func (i *Interpreter) Stack() *CallStack {
	return i.stack
}

// visit evaluates n. The boolean reports that a return statement was
// reached and the enclosing function (or program) must stop.
func (i *Interpreter) visit(n Node) (Value, bool, error) {
	switch e := n.(type) {
	case *Program:
		name := e.Name
		if name == "" {
			name = "main"
		}

		rec := NewActivationRecord(RecordProgram, name, 1)
		i.globals = rec
		i.enter(rec)
		defer i.leave()

		v, _, err := i.visit(e.Block)
		return v, false, err
	case *Compound:
		result := None()
		for _, child := range e.Children {
			v, returning, err := i.visit(child)
			if err != nil || returning {
				return v, returning, err
			}

			result = v
		}

		return result, false, nil
	case *NoOp, *TypeSpec, *Parameter:
		return None(), false, nil
	case *FunctionDeclaration:
		i.functions[e.Name()] = e
		return None(), false, nil
	case *Assign:
		return None(), false, i.assign(e)
	case *If:
		cond, err := i.eval(e.Condition)
		if err != nil {
			return None(), false, err
		}

		if cond.Kind() != KindBool {
			return None(), false, runtimeErrorf(e.Token.Loc, "condition is '%s', not 'bool'", cond.Kind())
		}

		if cond.Bool() {
			return i.visit(e.TrueBlock)
		}

		return i.visit(e.FalseBlock)
	case *Return:
		v, err := i.eval(e.Value)
		return v, err == nil, err
	default:
		v, err := i.eval(n)
		return v, false, err
	}
}

func (i *Interpreter) eval(n Node) (Value, error) {
	switch e := n.(type) {
	case *IntLiteral:
		v, err := e.Int()
		if err != nil {
			return None(), runtimeErrorf(e.Token.Loc, "invalid int '%s'", e.Token.Value)
		}

		return NewInt(v), nil
	case *FloatLiteral:
		v, err := e.Float()
		if err != nil {
			return None(), runtimeErrorf(e.Token.Loc, "invalid float '%s'", e.Token.Value)
		}

		return NewFloat(v), nil
	case *BoolLiteral:
		return NewBool(e.Bool()), nil
	case *Var:
		v, ok := i.stack.Peek().Get(e.Name())
		if !ok {
			return None(), runtimeErrorf(e.Token.Loc, "variable '%s' not found", e.Name())
		}

		return v, nil
	case *UnaryOp:
		v, err := i.eval(e.Operand)
		if err != nil {
			return None(), err
		}

		return unary(e.Op, v)
	case *BinaryOp:
		left, err := i.eval(e.Left)
		if err != nil {
			return None(), err
		}

		right, err := i.eval(e.Right)
		if err != nil {
			return None(), err
		}

		return binary(e.Op, left, right)
	case *FunctionCall:
		return i.call(e)
	case *Program, *Compound, *NoOp, *TypeSpec, *Parameter, *FunctionDeclaration, *Assign, *If, *Return:
		v, _, err := i.visit(n)
		return v, err
	default:
		return None(), fmt.Errorf("interpreter: unexpected node %T", n)
	}
}

func (i *Interpreter) assign(e *Assign) error {
	v, err := i.eval(e.Value)
	if err != nil {
		return err
	}

	if e.Type != nil && v.Kind().String() != e.Type.Name() {
		return runtimeErrorf(e.Op.Loc, "cannot assign '%s' to '%s %s'", v.Kind(), e.Type.Name(), e.Target.Name())
	}

	i.stack.Peek().Set(e.Target.Name(), v)
	return nil
}

func (i *Interpreter) call(e *FunctionCall) (Value, error) {
	decl, ok := i.functions[e.Name()]
	if !ok {
		return None(), runtimeErrorf(e.Token.Loc, "function '%s' not declared", e.Name())
	}

	if len(e.Arguments) != len(decl.Parameters) {
		return None(), runtimeErrorf(e.Token.Loc, "function '%s' takes %d arguments, got %d",
			e.Name(), len(decl.Parameters), len(e.Arguments))
	}

	if i.maxDepth > 0 && i.stack.Len() >= i.maxDepth {
		return None(), runtimeErrorf(e.Token.Loc, "recursion depth exceeded (limit %d)", i.maxDepth)
	}

	rec := NewActivationRecord(RecordFunction, e.Name(), i.stack.Len()+1)
	for idx, arg := range e.Arguments {
		v, err := i.eval(arg)
		if err != nil {
			return None(), err
		}

		param := decl.Parameters[idx]
		if v.Kind().String() != param.Type.Name() {
			return None(), runtimeErrorf(arg.Pos(), "argument '%s' of '%s' is '%s', not '%s'",
				param.Name(), e.Name(), v.Kind(), param.Type.Name())
		}

		rec.Set(param.Name(), v)
	}

	i.enter(rec)
	defer i.leave()

	v, _, err := i.visit(decl.Body)
	return v, err
}

func (i *Interpreter) enter(rec *ActivationRecord) {
	i.stack.Push(rec)
	i.debug("entering", "record", rec.Name, "level", rec.NestingLevel)
}

func (i *Interpreter) leave() {
	rec := i.stack.Pop()
	i.debug("leaving", "record", rec)
}

func (i *Interpreter) debug(msg string, keyvals ...interface{}) {
	if i.logger != nil {
		i.logger.Debug(msg, keyvals...)
	}
}

func unary(op Token, v Value) (Value, error) {
	switch {
	case op.Typ == TokenExclamation && v.Kind() == KindBool:
		return NewBool(!v.Bool()), nil
	case op.Typ == TokenPlus && (v.Kind() == KindInt || v.Kind() == KindFloat):
		return v, nil
	case op.Typ == TokenMinus && v.Kind() == KindInt:
		return NewInt(-v.Int()), nil
	case op.Typ == TokenMinus && v.Kind() == KindFloat:
		return NewFloat(-v.Float()), nil
	default:
		return None(), runtimeErrorf(op.Loc, "cannot perform '%s%s'", op.Value, v.Kind())
	}
}

// binary applies op by the runtime kind of the left operand.
func binary(op Token, left, right Value) (Value, error) {
	if left.Kind() != right.Kind() {
		return None(), runtimeErrorf(op.Loc, "cannot perform '%s %s %s'", left.Kind(), op.Value, right.Kind())
	}

	switch left.Kind() {
	case KindInt:
		return binaryInt(op, left.Int(), right.Int())
	case KindFloat:
		return binaryFloat(op, left.Float(), right.Float())
	case KindBool:
		return binaryBool(op, left.Bool(), right.Bool())
	default:
		return None(), runtimeErrorf(op.Loc, "cannot perform '%s %s %s'", left.Kind(), op.Value, right.Kind())
	}
}

func binaryInt(op Token, l, r int64) (Value, error) {
	switch op.Typ {
	case TokenPlus:
		return NewInt(l + r), nil
	case TokenMinus:
		return NewInt(l - r), nil
	case TokenAsterisk:
		return NewInt(l * r), nil
	case TokenSlash:
		if r == 0 {
			return None(), runtimeErrorf(op.Loc, "integer division by zero")
		}
		return NewInt(l / r), nil
	case TokenLess:
		return NewBool(l < r), nil
	case TokenGreater:
		return NewBool(l > r), nil
	case TokenLessEqual:
		return NewBool(l <= r), nil
	case TokenGreaterEqual:
		return NewBool(l >= r), nil
	case TokenEqual:
		return NewBool(l == r), nil
	case TokenNotEqual:
		return NewBool(l != r), nil
	default:
		return None(), runtimeErrorf(op.Loc, "cannot perform 'int %s int'", op.Value)
	}
}

func binaryFloat(op Token, l, r float64) (Value, error) {
	switch op.Typ {
	case TokenPlus:
		return NewFloat(l + r), nil
	case TokenMinus:
		return NewFloat(l - r), nil
	case TokenAsterisk:
		return NewFloat(l * r), nil
	case TokenSlash:
		return NewFloat(l / r), nil
	case TokenLess:
		return NewBool(l < r), nil
	case TokenGreater:
		return NewBool(l > r), nil
	case TokenLessEqual:
		return NewBool(l <= r), nil
	case TokenGreaterEqual:
		return NewBool(l >= r), nil
	case TokenEqual:
		return NewBool(l == r), nil
	case TokenNotEqual:
		return NewBool(l != r), nil
	default:
		return None(), runtimeErrorf(op.Loc, "cannot perform 'float %s float'", op.Value)
	}
}

func binaryBool(op Token, l, r bool) (Value, error) {
	switch op.Typ {
	case TokenLogicalAnd:
		return NewBool(l && r), nil
	case TokenLogicalOr:
		return NewBool(l || r), nil
	case TokenEqual:
		return NewBool(l == r), nil
	case TokenNotEqual:
		return NewBool(l != r), nil
	default:
		return None(), runtimeErrorf(op.Loc, "cannot perform 'bool %s bool'", op.Value)
	}
}
