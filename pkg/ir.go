package quill

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// MainFunction names the LLVM function that holds the top-level statements.
const MainFunction = "quill.main"

const typeVoid = "void"

// ValueLookup maps the variables of one function to their stack slots.
type ValueLookup struct {
	vals map[string]*ir.InstAlloca
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]*ir.InstAlloca),
	}
}

func (l *ValueLookup) Get(id string) (*ir.InstAlloca, bool) {
	slot, ok := l.vals[id]
	return slot, ok
}

func (l *ValueLookup) Set(id string, slot *ir.InstAlloca) {
	l.vals[id] = slot
}

// irFunc is one function being lowered. decl is nil for the top level.
type irFunc struct {
	decl *FunctionDeclaration
	name string
	body Node

	ret     string
	returns bool
	vars    []string
	types   map[string]string

	fn *ir.Func
}

func (f *irFunc) params() []*Parameter {
	if f.decl == nil {
		return nil
	}

	return f.decl.Parameters
}

func (f *irFunc) pos() Location {
	if f.decl == nil {
		return Location{Line: 1, Col: 1}
	}

	return f.decl.Token.Loc
}

func (f *irFunc) declare(name, typ string) {
	if _, ok := f.types[name]; ok {
		return
	}

	f.vars = append(f.vars, name)
	f.types[name] = typ
}

type LLVMIRBuilder struct {
	mod    *ir.Module
	funcs  map[string]*irFunc
	order  []*irFunc
	fn     *irFunc
	block  *ir.Block
	values *ValueLookup
	labels int
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	return &LLVMIRBuilder{}
}

// GenerateIR lowers an analyzed program to an LLVM module.
func GenerateIR(prog *Program) (*ir.Module, error) {
	return NewLLVMIRBuilder().Build(prog)
}

func (b *LLVMIRBuilder) Build(prog *Program) (*ir.Module, error) {
	b.mod = ir.NewModule()
	b.funcs = make(map[string]*irFunc)
	b.order = nil
	b.labels = 0

	if err := b.collect(prog.Block); err != nil {
		return nil, err
	}

	b.order = append(b.order, &irFunc{name: MainFunction, body: prog.Block})

	if err := b.infer(); err != nil {
		return nil, err
	}

	for _, f := range b.order {
		var params []*ir.Param
		for _, p := range f.params() {
			params = append(params, ir.NewParam(p.Name(), llvmType(p.Type.Name())))
		}

		f.fn = b.mod.NewFunc(f.name, llvmType(f.ret), params...)
	}

	for _, f := range b.order {
		if err := b.function(f); err != nil {
			return nil, err
		}
	}

	return b.mod, nil
}

func (b *LLVMIRBuilder) collect(n Node) error {
	switch e := n.(type) {
	case *Compound:
		for _, child := range e.Children {
			if err := b.collect(child); err != nil {
				return err
			}
		}
	case *FunctionDeclaration:
		if _, ok := b.funcs[e.Name()]; ok {
			return irErrorf(e.Token.Loc, "function '%s' declared twice", e.Name())
		}

		for _, p := range e.Parameters {
			if llvmType(p.Type.Name()) == nil {
				return irErrorf(p.Type.Token.Loc, "unknown type '%s'", p.Type.Name())
			}
		}

		f := &irFunc{decl: e, name: e.Name(), body: e.Body}
		b.funcs[f.name] = f
		b.order = append(b.order, f)
	}

	return nil
}

// infer settles every return type. A function's type may hang on the
// types of the functions it calls, so functions are rescanned until no
// new type is found.
func (b *LLVMIRBuilder) infer() error {
	for changed := true; changed; {
		changed = false

		for _, f := range b.order {
			if f.ret != "" {
				continue
			}

			if err := b.scan(f, false); err != nil {
				return err
			}

			if f.ret != "" {
				changed = true
			}
		}
	}

	for _, f := range b.order {
		if f.ret == "" {
			if f.returns {
				return irErrorf(f.pos(), "cannot infer return type of '%s'", f.name)
			}

			f.ret = typeVoid
		}

		if err := b.scan(f, true); err != nil {
			return err
		}
	}

	return nil
}

// scan records the variables of f with their types and the type f
// returns. Unless strict, types that are not known yet are skipped.
func (b *LLVMIRBuilder) scan(f *irFunc, strict bool) error {
	f.vars = nil
	f.types = make(map[string]string)
	f.returns = false

	for _, p := range f.params() {
		f.declare(p.Name(), p.Type.Name())
	}

	return b.scanNode(f, f.body, strict)
}

func (b *LLVMIRBuilder) scanNode(f *irFunc, n Node, strict bool) error {
	switch e := n.(type) {
	case *Compound:
		for _, child := range e.Children {
			if err := b.scanNode(f, child, strict); err != nil {
				return err
			}
		}
	case *If:
		if _, err := b.typeOf(f, e.Condition, strict); err != nil {
			return err
		}

		if err := b.scanNode(f, e.TrueBlock, strict); err != nil {
			return err
		}

		return b.scanNode(f, e.FalseBlock, strict)
	case *Assign:
		typ, err := b.typeOf(f, e.Value, strict)
		if err != nil {
			return err
		}

		if typ == typeVoid {
			return irErrorf(e.Op.Loc, "cannot assign a call without value to '%s'", e.Target.Name())
		}

		if e.Type != nil {
			typ = e.Type.Name()
		}

		if typ != "" {
			f.declare(e.Target.Name(), typ)
		}
	case *Return:
		f.returns = true

		typ, err := b.typeOf(f, e.Value, strict)
		if err != nil {
			return err
		}

		switch {
		case typ == "":
		case f.ret == "":
			f.ret = typ
		case typ != f.ret:
			return irErrorf(e.Token.Loc, "'%s' returns both '%s' and '%s'", f.name, f.ret, typ)
		}
	case *FunctionDeclaration, *NoOp:
	default:
		_, err := b.typeOf(f, n, strict)
		return err
	}

	return nil
}

// typeOf returns the static type of an expression, or "" when it hangs
// on a return type not inferred yet.
func (b *LLVMIRBuilder) typeOf(f *irFunc, n Node, strict bool) (string, error) {
	switch e := n.(type) {
	case *IntLiteral:
		return TypeInt, nil
	case *FloatLiteral:
		return TypeFloat, nil
	case *BoolLiteral:
		return TypeBool, nil
	case *Var:
		if typ, ok := f.types[e.Name()]; ok {
			return typ, nil
		}

		if strict {
			return "", irErrorf(e.Token.Loc, "variable '%s' has no known type", e.Name())
		}

		return "", nil
	case *UnaryOp:
		typ, err := b.typeOf(f, e.Operand, strict)
		if err != nil {
			return "", err
		}

		if e.Op.Typ == TokenExclamation {
			return TypeBool, nil
		}

		return typ, nil
	case *BinaryOp:
		left, err := b.typeOf(f, e.Left, strict)
		if err != nil {
			return "", err
		}

		right, err := b.typeOf(f, e.Right, strict)
		if err != nil {
			return "", err
		}

		switch e.Op.Typ {
		case TokenLogicalAnd, TokenLogicalOr, TokenLess, TokenGreater,
			TokenLessEqual, TokenGreaterEqual, TokenEqual, TokenNotEqual:
			return TypeBool, nil
		}

		if left != "" {
			return left, nil
		}

		return right, nil
	case *FunctionCall:
		callee, ok := b.funcs[e.Name()]
		if !ok {
			return "", irErrorf(e.Token.Loc, "function '%s' not declared", e.Name())
		}

		for _, arg := range e.Arguments {
			if _, err := b.typeOf(f, arg, strict); err != nil {
				return "", err
			}
		}

		return callee.ret, nil
	default:
		return "", irErrorf(n.Pos(), "unexpected %T in expression", n)
	}
}

func (b *LLVMIRBuilder) function(f *irFunc) error {
	b.fn = f
	b.values = NewValueLookup()
	b.block = f.fn.NewBlock("entry")

	for _, name := range f.vars {
		slot := b.block.NewAlloca(llvmType(f.types[name]))
		slot.SetName(name + ".addr")
		b.values.Set(name, slot)
	}

	for i, p := range f.params() {
		slot, _ := b.values.Get(p.Name())
		b.block.NewStore(f.fn.Params[i], slot)
	}

	if err := b.statement(f.body); err != nil {
		return err
	}

	if b.block.Term == nil {
		if f.ret == typeVoid {
			b.block.NewRet(nil)
		} else {
			b.block.NewRet(llvmZero(f.ret))
		}
	}

	return nil
}

func (b *LLVMIRBuilder) statement(n Node) error {
	switch e := n.(type) {
	case *Compound:
		for _, child := range e.Children {
			// Code after a return still gets lowered, into a block
			// nothing branches to.
			if b.block.Term != nil {
				b.block = b.fn.fn.NewBlock(b.label("dead"))
			}

			if err := b.statement(child); err != nil {
				return err
			}
		}

		return nil
	case *NoOp, *FunctionDeclaration:
		return nil
	case *Assign:
		return b.assign(e)
	case *Return:
		v, _, err := b.expression(e.Value)
		if err != nil {
			return err
		}

		if b.fn.ret == typeVoid {
			b.block.NewRet(nil)
		} else {
			b.block.NewRet(v)
		}

		return nil
	case *If:
		return b.ifStatement(e)
	default:
		_, _, err := b.expression(n)
		return err
	}
}

func (b *LLVMIRBuilder) assign(e *Assign) error {
	v, typ, err := b.expression(e.Value)
	if err != nil {
		return err
	}

	name := e.Target.Name()
	slot, ok := b.values.Get(name)
	if !ok {
		return irErrorf(e.Op.Loc, "variable '%s' has no slot", name)
	}

	if want := b.fn.types[name]; typ != want {
		return irErrorf(e.Op.Loc, "cannot assign '%s' to '%s' of type '%s'", typ, name, want)
	}

	b.block.NewStore(v, slot)
	return nil
}

func (b *LLVMIRBuilder) ifStatement(e *If) error {
	cond, typ, err := b.expression(e.Condition)
	if err != nil {
		return err
	}

	if typ != TypeBool {
		return irErrorf(e.Token.Loc, "condition is '%s', not 'bool'", typ)
	}

	n := b.labels
	b.labels++

	thenBlock := b.fn.fn.NewBlock(fmt.Sprintf("if.then.%d", n))
	elseBlock := ir.NewBlock(fmt.Sprintf("if.else.%d", n))
	endBlock := ir.NewBlock(fmt.Sprintf("if.end.%d", n))

	b.block.NewCondBr(cond, thenBlock, elseBlock)

	b.block = thenBlock
	if err := b.statement(e.TrueBlock); err != nil {
		return err
	}

	if b.block.Term == nil {
		b.block.NewBr(endBlock)
	}

	b.appendBlock(elseBlock)
	if err := b.statement(e.FalseBlock); err != nil {
		return err
	}

	if b.block.Term == nil {
		b.block.NewBr(endBlock)
	}

	b.appendBlock(endBlock)
	return nil
}

func (b *LLVMIRBuilder) appendBlock(block *ir.Block) {
	block.Parent = b.fn.fn
	b.fn.fn.Blocks = append(b.fn.fn.Blocks, block)
	b.block = block
}

func (b *LLVMIRBuilder) label(prefix string) string {
	n := b.labels
	b.labels++

	return fmt.Sprintf("%s.%d", prefix, n)
}

func (b *LLVMIRBuilder) expression(n Node) (value.Value, string, error) {
	switch e := n.(type) {
	case *IntLiteral:
		v, err := e.Int()
		if err != nil {
			return nil, "", irErrorf(e.Token.Loc, "invalid int '%s'", e.Token.Value)
		}

		return constant.NewInt(types.I64, v), TypeInt, nil
	case *FloatLiteral:
		v, err := e.Float()
		if err != nil {
			return nil, "", irErrorf(e.Token.Loc, "invalid float '%s'", e.Token.Value)
		}

		return constant.NewFloat(types.Double, v), TypeFloat, nil
	case *BoolLiteral:
		if e.Bool() {
			return constant.True, TypeBool, nil
		}

		return constant.False, TypeBool, nil
	case *Var:
		slot, ok := b.values.Get(e.Name())
		if !ok {
			return nil, "", irErrorf(e.Token.Loc, "variable '%s' not found", e.Name())
		}

		typ := b.fn.types[e.Name()]
		return b.block.NewLoad(llvmType(typ), slot), typ, nil
	case *UnaryOp:
		return b.unaryOp(e)
	case *BinaryOp:
		return b.binaryOp(e)
	case *FunctionCall:
		return b.functionCall(e)
	default:
		return nil, "", irErrorf(n.Pos(), "unexpected %T in expression", n)
	}
}

func (b *LLVMIRBuilder) unaryOp(e *UnaryOp) (value.Value, string, error) {
	v, typ, err := b.expression(e.Operand)
	if err != nil {
		return nil, "", err
	}

	switch {
	case e.Op.Typ == TokenExclamation && typ == TypeBool:
		return b.block.NewXor(v, constant.True), typ, nil
	case e.Op.Typ == TokenPlus && (typ == TypeInt || typ == TypeFloat):
		return v, typ, nil
	case e.Op.Typ == TokenMinus && typ == TypeInt:
		return b.block.NewSub(constant.NewInt(types.I64, 0), v), typ, nil
	case e.Op.Typ == TokenMinus && typ == TypeFloat:
		return b.block.NewFNeg(v), typ, nil
	default:
		return nil, "", irErrorf(e.Op.Loc, "cannot perform '%s%s'", e.Op.Value, typ)
	}
}

var (
	intPredicates = map[TokenType]enum.IPred{
		TokenLess:         enum.IPredSLT,
		TokenGreater:      enum.IPredSGT,
		TokenLessEqual:    enum.IPredSLE,
		TokenGreaterEqual: enum.IPredSGE,
		TokenEqual:        enum.IPredEQ,
		TokenNotEqual:     enum.IPredNE,
	}
	floatPredicates = map[TokenType]enum.FPred{
		TokenLess:         enum.FPredOLT,
		TokenGreater:      enum.FPredOGT,
		TokenLessEqual:    enum.FPredOLE,
		TokenGreaterEqual: enum.FPredOGE,
		TokenEqual:        enum.FPredOEQ,
		TokenNotEqual:     enum.FPredONE,
	}
)

func (b *LLVMIRBuilder) binaryOp(e *BinaryOp) (value.Value, string, error) {
	left, lt, err := b.expression(e.Left)
	if err != nil {
		return nil, "", err
	}

	right, rt, err := b.expression(e.Right)
	if err != nil {
		return nil, "", err
	}

	mismatch := irErrorf(e.Op.Loc, "cannot perform '%s %s %s'", lt, e.Op.Value, rt)
	if lt != rt {
		return nil, "", mismatch
	}

	switch lt {
	case TypeInt:
		if pred, ok := intPredicates[e.Op.Typ]; ok {
			return b.block.NewICmp(pred, left, right), TypeBool, nil
		}

		switch e.Op.Typ {
		case TokenPlus:
			return b.block.NewAdd(left, right), lt, nil
		case TokenMinus:
			return b.block.NewSub(left, right), lt, nil
		case TokenAsterisk:
			return b.block.NewMul(left, right), lt, nil
		case TokenSlash:
			return b.block.NewSDiv(left, right), lt, nil
		}
	case TypeFloat:
		if pred, ok := floatPredicates[e.Op.Typ]; ok {
			return b.block.NewFCmp(pred, left, right), TypeBool, nil
		}

		switch e.Op.Typ {
		case TokenPlus:
			return b.block.NewFAdd(left, right), lt, nil
		case TokenMinus:
			return b.block.NewFSub(left, right), lt, nil
		case TokenAsterisk:
			return b.block.NewFMul(left, right), lt, nil
		case TokenSlash:
			return b.block.NewFDiv(left, right), lt, nil
		}
	case TypeBool:
		switch e.Op.Typ {
		case TokenLogicalAnd:
			return b.block.NewAnd(left, right), lt, nil
		case TokenLogicalOr:
			return b.block.NewOr(left, right), lt, nil
		case TokenEqual:
			return b.block.NewICmp(enum.IPredEQ, left, right), lt, nil
		case TokenNotEqual:
			return b.block.NewICmp(enum.IPredNE, left, right), lt, nil
		}
	}

	return nil, "", mismatch
}

func (b *LLVMIRBuilder) functionCall(e *FunctionCall) (value.Value, string, error) {
	callee, ok := b.funcs[e.Name()]
	if !ok {
		return nil, "", irErrorf(e.Token.Loc, "function '%s' not declared", e.Name())
	}

	params := callee.params()
	if len(e.Arguments) != len(params) {
		return nil, "", irErrorf(e.Token.Loc, "function '%s' takes %d arguments, got %d",
			e.Name(), len(params), len(e.Arguments))
	}

	args := make([]value.Value, 0, len(e.Arguments))
	for i, arg := range e.Arguments {
		v, typ, err := b.expression(arg)
		if err != nil {
			return nil, "", err
		}

		if want := params[i].Type.Name(); typ != want {
			return nil, "", irErrorf(arg.Pos(), "argument '%s' of '%s' is '%s', not '%s'",
				params[i].Name(), e.Name(), typ, want)
		}

		args = append(args, v)
	}

	return b.block.NewCall(callee.fn, args...), callee.ret, nil
}
