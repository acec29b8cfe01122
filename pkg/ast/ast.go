// Package ast defines the Dinglebob syntax tree node types.
package ast

import "math/big"

// Span represents a source location range.
// Start and End are byte offsets into the source; End is exclusive.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Join returns a span covering a through b.
func Join(a, b Span) Span {
	return Span{
		File:      a.File,
		StartLine: a.StartLine,
		StartCol:  a.StartCol,
		EndLine:   b.EndLine,
		EndCol:    b.EndCol,
		Start:     a.Start,
		End:       b.End,
	}
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
	OpGt   BinaryOp = ">"
	OpLt   BinaryOp = "<"
	OpGtEq BinaryOp = ">="
	OpLtEq BinaryOp = "<="
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
)

// LogicalOp represents a short-circuiting operator.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

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

// Param is a function or lambda parameter.
type Param struct {
	Name string
	Span Span
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value *big.Int
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

type NoneLiteral struct {
	Span Span
}

func (n *NoneLiteral) Kind() string   { return "NoneLiteral" }
func (n *NoneLiteral) NodeSpan() Span { return n.Span }
func (n *NoneLiteral) exprNode()      {}

// --- Names ---

// VariableExpr is a reference to a named binding. Each occurrence in the
// source is a distinct node; the resolver keys its side table by the node
// pointer, never by the name.
type VariableExpr struct {
	Span Span
	Name string
}

func (n *VariableExpr) Kind() string   { return "VariableExpr" }
func (n *VariableExpr) NodeSpan() Span { return n.Span }
func (n *VariableExpr) exprNode()      {}

// AssignExpr assigns Value to Target. Target is whatever expression the
// parser saw on the left of '='; only variables and index expressions are
// valid at run time.
type AssignExpr struct {
	Span   Span
	Target Expr
	Equals Span
	Value  Expr
}

func (n *AssignExpr) Kind() string   { return "AssignExpr" }
func (n *AssignExpr) NodeSpan() Span { return n.Span }
func (n *AssignExpr) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span   Span
	Op     BinaryOp
	OpSpan Span
	Left   Expr
	Right  Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type LogicalExpr struct {
	Span  Span
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (n *LogicalExpr) Kind() string   { return "LogicalExpr" }
func (n *LogicalExpr) NodeSpan() Span { return n.Span }
func (n *LogicalExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type GroupingExpr struct {
	Span  Span
	Inner Expr
}

func (n *GroupingExpr) Kind() string   { return "GroupingExpr" }
func (n *GroupingExpr) NodeSpan() Span { return n.Span }
func (n *GroupingExpr) exprNode()      {}

// --- Calls and collections ---

type CallExpr struct {
	Span   Span
	Callee Expr
	Paren  Span // closing ')'
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

type IndexExpr struct {
	Span    Span
	Target  Expr
	Bracket Span // closing ']'
	Index   Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

type ListExpr struct {
	Span     Span
	Elements []Expr
}

func (n *ListExpr) Kind() string   { return "ListExpr" }
func (n *ListExpr) NodeSpan() Span { return n.Span }
func (n *ListExpr) exprNode()      {}

type LambdaExpr struct {
	Span   Span
	Params []Param
	Body   []Stmt
}

func (n *LambdaExpr) Kind() string   { return "LambdaExpr" }
func (n *LambdaExpr) NodeSpan() Span { return n.Span }
func (n *LambdaExpr) exprNode()      {}

// --- Statements ---

// VarStmt declares Name in the current scope. A nil Init binds none.
type VarStmt struct {
	Span     Span
	Name     string
	NameSpan Span
	Init     Expr
}

func (n *VarStmt) Kind() string   { return "VarStmt" }
func (n *VarStmt) NodeSpan() Span { return n.Span }
func (n *VarStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type FunctionStmt struct {
	Span     Span
	Name     string
	NameSpan Span
	Params   []Param
	Body     []Stmt
}

func (n *FunctionStmt) Kind() string   { return "FunctionStmt" }
func (n *FunctionStmt) NodeSpan() Span { return n.Span }
func (n *FunctionStmt) stmtNode()      {}

// IfStmt runs Then when Cond is truthy, otherwise Else. Else is nil, a
// *BlockStmt, or a nested *IfStmt for an else-if chain.
type IfStmt struct {
	Span Span
	Cond Expr
	Then *BlockStmt
	Else Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type PrintStmt struct {
	Span Span
	Expr Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

// ReturnStmt returns Value (none when nil) from the enclosing function.
type ReturnStmt struct {
	Span    Span
	Keyword Span
	Value   Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body *BlockStmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type BreakStmt struct {
	Span Span
}

func (n *BreakStmt) Kind() string   { return "BreakStmt" }
func (n *BreakStmt) NodeSpan() Span { return n.Span }
func (n *BreakStmt) stmtNode()      {}

type BlockStmt struct {
	Span  Span
	Stmts []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
