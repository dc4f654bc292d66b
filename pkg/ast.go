package quill

import "strconv"

// Node is the closed set of syntax tree variants. Nodes are never mutated
// once the parser returns them.
type Node interface {
	Pos() Location
	node()
}

type Program struct {
	Name  string
	Block Node
}

type Compound struct {
	Children []Node
	Loc      Location
}

type NoOp struct {
	Loc Location
}

type IntLiteral struct {
	Token Token
}

type FloatLiteral struct {
	Token Token
}

type BoolLiteral struct {
	Token Token
}

type Var struct {
	Token Token
}

type UnaryOp struct {
	Op      Token
	Operand Node
}

type BinaryOp struct {
	Op    Token
	Left  Node
	Right Node
}

// Assign binds Value to Target. Type is nil unless the assignment spells
// out the variable type, as in "int a := 1;".
type Assign struct {
	Type   *TypeSpec
	Target *Var
	Op     Token
	Value  Node
}

type If struct {
	Token      Token
	Condition  Node
	TrueBlock  Node
	FalseBlock Node
}

type Return struct {
	Token Token
	Value Node
}

type TypeSpec struct {
	Token Token
}

type Parameter struct {
	Type *TypeSpec
	Var  *Var
}

type FunctionDeclaration struct {
	Token      Token
	Parameters []*Parameter
	Body       Node
}

type FunctionCall struct {
	Token     Token
	Arguments []Node
}

func (n *Program) Pos() Location             { return n.Block.Pos() }
func (n *Compound) Pos() Location            { return n.Loc }
func (n *NoOp) Pos() Location                { return n.Loc }
func (n *IntLiteral) Pos() Location          { return n.Token.Loc }
func (n *FloatLiteral) Pos() Location        { return n.Token.Loc }
func (n *BoolLiteral) Pos() Location         { return n.Token.Loc }
func (n *Var) Pos() Location                 { return n.Token.Loc }
func (n *UnaryOp) Pos() Location             { return n.Op.Loc }
func (n *BinaryOp) Pos() Location            { return n.Op.Loc }
func (n *Assign) Pos() Location              { return n.Op.Loc }
func (n *If) Pos() Location                  { return n.Token.Loc }
func (n *Return) Pos() Location              { return n.Token.Loc }
func (n *TypeSpec) Pos() Location            { return n.Token.Loc }
func (n *Parameter) Pos() Location           { return n.Type.Token.Loc }
func (n *FunctionDeclaration) Pos() Location { return n.Token.Loc }
func (n *FunctionCall) Pos() Location        { return n.Token.Loc }

func (*Program) node()             {}
func (*Compound) node()            {}
func (*NoOp) node()                {}
func (*IntLiteral) node()          {}
func (*FloatLiteral) node()        {}
func (*BoolLiteral) node()         {}
func (*Var) node()                 {}
func (*UnaryOp) node()             {}
func (*BinaryOp) node()            {}
func (*Assign) node()              {}
func (*If) node()                  {}
func (*Return) node()              {}
func (*TypeSpec) node()            {}
func (*Parameter) node()           {}
func (*FunctionDeclaration) node() {}
func (*FunctionCall) node()        {}

func (n *IntLiteral) Int() (int64, error) {
	return strconv.ParseInt(n.Token.Value, 10, 64)
}

func (n *FloatLiteral) Float() (float64, error) {
	return strconv.ParseFloat(n.Token.Value, 64)
}

func (n *BoolLiteral) Bool() bool {
	return n.Token.Typ == TokenTrue
}

func (n *Var) Name() string {
	return n.Token.Value
}

func (n *TypeSpec) Name() string {
	return n.Token.Value
}

func (n *Parameter) Name() string {
	return n.Var.Name()
}

func (n *FunctionDeclaration) Name() string {
	return n.Token.Value
}

func (n *FunctionCall) Name() string {
	return n.Token.Value
}
