// Package ast defines the Lox language AST node types.
package ast

import "github.com/thomasrohde/lox/pkg/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	// Line is the source line used when reporting errors about the node.
	Line() int
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

// Assign stores Value into the existing variable Name.
type Assign struct {
	Name  token.Token
	Value Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) Line() int    { return n.Name.Line }
func (n *Assign) exprNode()    {}

type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) Line() int    { return n.Operator.Line }
func (n *Binary) exprNode()    {}

// Call invokes Callee. Paren is the closing parenthesis, kept for the line
// number of errors raised by the call itself.
type Call struct {
	Callee    Expr
	Paren     token.Token
	Arguments []Expr
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) Line() int    { return n.Paren.Line }
func (n *Call) exprNode()    {}

type Grouping struct {
	Expression Expr
}

func (n *Grouping) Kind() string { return "Grouping" }
func (n *Grouping) Line() int    { return n.Expression.Line() }
func (n *Grouping) exprNode()    {}

// Literal holds a decoded constant: nil, bool, float64, or string.
type Literal struct {
	Value  any
	Lineno int
}

func (n *Literal) Kind() string { return "Literal" }
func (n *Literal) Line() int    { return n.Lineno }
func (n *Literal) exprNode()    {}

// Logical is a short-circuiting "and" / "or".
type Logical struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (n *Logical) Kind() string { return "Logical" }
func (n *Logical) Line() int    { return n.Operator.Line }
func (n *Logical) exprNode()    {}

type Unary struct {
	Operator token.Token
	Right    Expr
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) Line() int    { return n.Operator.Line }
func (n *Unary) exprNode()    {}

type Variable struct {
	Name token.Token
}

func (n *Variable) Kind() string { return "Variable" }
func (n *Variable) Line() int    { return n.Name.Line }
func (n *Variable) exprNode()    {}

// Get, Set, This and Super are reserved for class support. The parser never
// produces them and the interpreter rejects them.

type Get struct {
	Object Expr
	Name   token.Token
}

func (n *Get) Kind() string { return "Get" }
func (n *Get) Line() int    { return n.Name.Line }
func (n *Get) exprNode()    {}

type Set struct {
	Object Expr
	Name   token.Token
	Value  Expr
}

func (n *Set) Kind() string { return "Set" }
func (n *Set) Line() int    { return n.Name.Line }
func (n *Set) exprNode()    {}

type This struct {
	Keyword token.Token
}

func (n *This) Kind() string { return "This" }
func (n *This) Line() int    { return n.Keyword.Line }
func (n *This) exprNode()    {}

type Super struct {
	Keyword token.Token
	Method  token.Token
}

func (n *Super) Kind() string { return "Super" }
func (n *Super) Line() int    { return n.Keyword.Line }
func (n *Super) exprNode()    {}

// --- Statements ---

type Block struct {
	Statements []Stmt
	Lineno     int
}

func (n *Block) Kind() string { return "Block" }
func (n *Block) Line() int    { return n.Lineno }
func (n *Block) stmtNode()    {}

type Expression struct {
	Expression Expr
}

func (n *Expression) Kind() string { return "Expression" }
func (n *Expression) Line() int    { return n.Expression.Line() }
func (n *Expression) stmtNode()    {}

type Function struct {
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

func (n *Function) Kind() string { return "Function" }
func (n *Function) Line() int    { return n.Name.Line }
func (n *Function) stmtNode()    {}

// If has a nil Else when there is no else branch.
type If struct {
	Condition Expr
	Then      Stmt
	Else      Stmt
}

func (n *If) Kind() string { return "If" }
func (n *If) Line() int    { return n.Condition.Line() }
func (n *If) stmtNode()    {}

type Print struct {
	Expression Expr
}

func (n *Print) Kind() string { return "Print" }
func (n *Print) Line() int    { return n.Expression.Line() }
func (n *Print) stmtNode()    {}

// Return has a nil Value for a bare "return;".
type Return struct {
	Keyword token.Token
	Value   Expr
}

func (n *Return) Kind() string { return "Return" }
func (n *Return) Line() int    { return n.Keyword.Line }
func (n *Return) stmtNode()    {}

// Var has a nil Initializer when declared without one.
type Var struct {
	Name        token.Token
	Initializer Expr
}

func (n *Var) Kind() string { return "Var" }
func (n *Var) Line() int    { return n.Name.Line }
func (n *Var) stmtNode()    {}

type While struct {
	Condition Expr
	Body      Stmt
}

func (n *While) Kind() string { return "While" }
func (n *While) Line() int    { return n.Condition.Line() }
func (n *While) stmtNode()    {}

// Class is reserved; see Get.
type Class struct {
	Name       token.Token
	Superclass *Variable
	Methods    []*Function
}

func (n *Class) Kind() string { return "Class" }
func (n *Class) Line() int    { return n.Name.Line }
func (n *Class) stmtNode()    {}
