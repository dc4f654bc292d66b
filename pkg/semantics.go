package quill

import (
	"fmt"

	"github.com/charmbracelet/log"
)

type AnalyzerOption func(*Analyzer)

// WithKeepLastScope keeps the scope of the last analyzed function in the
// arena once Analyze returns, so it can be inspected.
func WithKeepLastScope() AnalyzerOption {
	return func(a *Analyzer) {
		a.keepLast = true
	}
}

func WithAnalyzerLogger(logger *log.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// Analyzer resolves identifiers against nested scopes and checks operand
// types. It stops at the first problem found.
type Analyzer struct {
	scopes   *Scopes
	keepLast bool
	logger   *log.Logger
}

func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		scopes: NewScopes(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze checks prog with a fresh analyzer.
func Analyze(prog *Program) error {
	return NewAnalyzer().Analyze(prog)
}

func (a *Analyzer) Analyze(prog *Program) error {
	a.scopes = NewScopes()

	_, err := a.analyze(a.scopes.Global(), prog)
	return err
}

// Scopes returns the scopes left by the last Analyze call.
func (a *Analyzer) Scopes() *Scopes {
	return a.scopes
}

// analyze walks n in scope and returns the type n evaluates to. A nil type
// means the node has no value or its type is only known at run time.
func (a *Analyzer) analyze(scope ScopeID, n Node) (*Symbol, error) {
	switch e := n.(type) {
	case *Program:
		_, err := a.analyze(scope, e.Block)
		a.debug("analyzed program", "scope", a.scopes.Get(scope))
		return nil, err
	case *Compound:
		for _, child := range e.Children {
			if _, err := a.analyze(scope, child); err != nil {
				return nil, err
			}
		}

		return nil, nil
	case *NoOp, *TypeSpec, *Parameter:
		return nil, nil
	case *IntLiteral:
		return a.scopes.LookupSymbol(scope, TypeInt), nil
	case *FloatLiteral:
		return a.scopes.LookupSymbol(scope, TypeFloat), nil
	case *BoolLiteral:
		return a.scopes.LookupSymbol(scope, TypeBool), nil
	case *Var:
		sym := a.scopes.LookupVariable(scope, e.Name())
		if sym == nil {
			return nil, a.errorf(IDNotFound, e.Token, "identifier '%s' not found", e.Name())
		}

		return sym.Type, nil
	case *UnaryOp:
		return a.unaryOp(scope, e)
	case *BinaryOp:
		return a.binaryOp(scope, e)
	case *Assign:
		return nil, a.assign(scope, e)
	case *If:
		cond, err := a.analyze(scope, e.Condition)
		if err != nil {
			return nil, err
		}

		if cond != nil && !isBool(cond) {
			return nil, a.errorf(TypeMismatch, e.Token, "condition is '%s', not 'bool'", cond.Name)
		}

		if _, err := a.analyze(scope, e.TrueBlock); err != nil {
			return nil, err
		}

		_, err = a.analyze(scope, e.FalseBlock)
		return nil, err
	case *Return:
		return a.analyze(scope, e.Value)
	case *FunctionDeclaration:
		return nil, a.functionDeclaration(scope, e)
	case *FunctionCall:
		for _, arg := range e.Arguments {
			if _, err := a.analyze(scope, arg); err != nil {
				return nil, err
			}
		}

		return nil, nil
	default:
		return nil, fmt.Errorf("analyzer: unexpected node %T", n)
	}
}

func (a *Analyzer) unaryOp(scope ScopeID, e *UnaryOp) (*Symbol, error) {
	typ, err := a.analyze(scope, e.Operand)
	if err != nil || typ == nil {
		return typ, err
	}

	switch e.Op.Typ {
	case TokenExclamation:
		if !isBool(typ) {
			return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s%s'", e.Op.Value, typ.Name)
		}
	default:
		if !isNumeric(typ) {
			return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s%s'", e.Op.Value, typ.Name)
		}
	}

	return typ, nil
}

func (a *Analyzer) binaryOp(scope ScopeID, e *BinaryOp) (*Symbol, error) {
	left, err := a.analyze(scope, e.Left)
	if err != nil {
		return nil, err
	}

	right, err := a.analyze(scope, e.Right)
	if err != nil {
		return nil, err
	}

	if left != nil && right != nil && left != right {
		return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s %s %s'", left.Name, e.Op.Value, right.Name)
	}

	typ := left
	if typ == nil {
		typ = right
	}

	boolType := a.scopes.LookupSymbol(scope, TypeBool)

	switch e.Op.Typ {
	case TokenLogicalAnd, TokenLogicalOr:
		if typ != nil && !isBool(typ) {
			return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s %s %s'", typ.Name, e.Op.Value, typ.Name)
		}

		return boolType, nil
	case TokenEqual, TokenNotEqual:
		return boolType, nil
	case TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		if isBool(typ) {
			return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s %s %s'", typ.Name, e.Op.Value, typ.Name)
		}

		return boolType, nil
	default:
		if isBool(typ) {
			return nil, a.errorf(TypeMismatch, e.Op, "cannot perform '%s %s %s'", typ.Name, e.Op.Value, typ.Name)
		}

		return typ, nil
	}
}

// The first assignment to a name declares it with the type of its value.
// A typed assignment always declares the variable with the named type.
func (a *Analyzer) assign(scope ScopeID, e *Assign) error {
	value, err := a.analyze(scope, e.Value)
	if err != nil {
		return err
	}

	table := a.scopes.Get(scope)
	name := e.Target.Name()

	if e.Type == nil {
		if !table.HasVariable(name) {
			table.InsertVariable(NewVarSymbol(name, value))
		}

		return nil
	}

	declared := a.scopes.LookupSymbol(scope, e.Type.Name())
	if declared == nil || declared.Kind != BuiltInTypeSymbol {
		return a.errorf(IDNotFound, e.Type.Token, "type '%s' not found", e.Type.Name())
	}

	if value != nil && value != declared {
		return a.errorf(TypeMismatch, e.Op, "cannot assign '%s' to '%s %s'", value.Name, declared.Name, name)
	}

	table.InsertVariable(NewVarSymbol(name, declared))
	return nil
}

func (a *Analyzer) functionDeclaration(scope ScopeID, e *FunctionDeclaration) error {
	name := e.Name()
	if a.scopes.Get(scope).HasSymbol(name) {
		return a.errorf(DuplicateID, e.Token, "duplicate identifier '%s' found", name)
	}

	params := make([]*Symbol, 0, len(e.Parameters))
	for _, p := range e.Parameters {
		typ := a.scopes.LookupSymbol(scope, p.Type.Name())
		if typ == nil {
			return a.errorf(IDNotFound, p.Type.Token, "type '%s' not found", p.Type.Name())
		}

		params = append(params, NewVarSymbol(p.Name(), typ))
	}

	a.scopes.Get(scope).InsertSymbol(NewFunctionSymbol(name, params...))

	// Only the most recent function scope is ever kept around.
	a.scopes.Truncate(scope)
	fnScope := a.scopes.Push(name, scope)
	for _, p := range params {
		a.scopes.Get(fnScope).InsertVariable(p)
	}

	_, err := a.analyze(fnScope, e.Body)
	a.debug("leaving scope", "scope", a.scopes.Get(fnScope))

	if err != nil || !a.keepLast {
		a.scopes.Truncate(scope)
	}

	return err
}

func (a *Analyzer) errorf(code ErrorCode, tok Token, format string, args ...interface{}) error {
	return &SemanticError{
		Code:  code,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (a *Analyzer) debug(msg string, keyvals ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, keyvals...)
	}
}
