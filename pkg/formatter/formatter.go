// Package formatter implements the Dinglebob source code formatter.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/dinglebob/dingle/pkg/ast"
)

const indent = "  "

// Format pretty-prints a Dinglebob AST back to source code. Explicit
// parentheses in the source are kept as written; none are added. A for loop
// is printed in the block-and-while form the parser turns it into.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	lines := lo.Map(program.Statements, func(s ast.Stmt, _ int) string {
		return formatStmt(s, 0)
	})
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains // comments, which the
// formatter drops.
func HasComments(source string) bool {
	var quote byte
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.VarStmt:
		if stmt.Init == nil {
			return prefix + "let " + stmt.Name + ";"
		}
		return prefix + "let " + stmt.Name + " = " + formatExpr(stmt.Init, depth) + ";"
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr, depth) + ";"
	case *ast.PrintStmt:
		return prefix + "print " + formatExpr(stmt.Expr, depth) + ";"
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Value, depth) + ";"
	case *ast.BreakStmt:
		return prefix + "break;"
	case *ast.FunctionStmt:
		return prefix + "define " + stmt.Name + formatParams(stmt.Params) + " " + formatBody(stmt.Body, depth)
	case *ast.BlockStmt:
		return prefix + formatBody(stmt.Stmts, depth)
	case *ast.WhileStmt:
		return prefix + "while " + formatExpr(stmt.Cond, depth) + " " + formatBody(stmt.Body.Stmts, depth)
	case *ast.IfStmt:
		return prefix + formatIf(stmt, depth)
	}
	return ""
}

func formatIf(stmt *ast.IfStmt, depth int) string {
	out := "if " + formatExpr(stmt.Cond, depth) + " " + formatBody(stmt.Then.Stmts, depth)
	switch els := stmt.Else.(type) {
	case *ast.IfStmt:
		out += " else " + formatIf(els, depth)
	case *ast.BlockStmt:
		out += " else " + formatBody(els.Stmts, depth)
	}
	return out
}

// formatBody renders a braced statement list whose opening brace sits on
// the current line and whose closing brace is indented to depth.
func formatBody(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatParams(params []ast.Param) string {
	return "(" + strings.Join(lo.Map(params, func(p ast.Param, _ int) string { return p.Name }), ", ") + ")"
}

func formatExprs(exprs []ast.Expr, depth int) string {
	return strings.Join(lo.Map(exprs, func(e ast.Expr, _ int) string { return formatExpr(e, depth) }), ", ")
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return expr.Value.String()
	case *ast.FloatLiteral:
		return formatFloatLiteral(expr.Value)
	case *ast.BoolLiteral:
		return strconv.FormatBool(expr.Value)
	case *ast.StrLiteral:
		return formatString(expr.Value)
	case *ast.NoneLiteral:
		return "none"
	case *ast.VariableExpr:
		return expr.Name
	case *ast.GroupingExpr:
		return "(" + formatExpr(expr.Inner, depth) + ")"
	case *ast.AssignExpr:
		return formatExpr(expr.Target, depth) + " = " + formatExpr(expr.Value, depth)
	case *ast.BinaryExpr:
		return formatExpr(expr.Left, depth) + " " + string(expr.Op) + " " + formatExpr(expr.Right, depth)
	case *ast.LogicalExpr:
		return formatExpr(expr.Left, depth) + " " + string(expr.Op) + " " + formatExpr(expr.Right, depth)
	case *ast.UnaryExpr:
		return string(expr.Op) + formatExpr(expr.Operand, depth)
	case *ast.CallExpr:
		return formatExpr(expr.Callee, depth) + "(" + formatExprs(expr.Args, depth) + ")"
	case *ast.IndexExpr:
		return formatExpr(expr.Target, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.ListExpr:
		return "[" + formatExprs(expr.Elements, depth) + "]"
	case *ast.LambdaExpr:
		return "lambda" + formatParams(expr.Params) + " " + formatBody(expr.Body, depth)
	}
	return ""
}

// formatString picks a quote the value does not contain. String literals
// have no escapes, so a value holding both quote kinds keeps double quotes.
func formatString(s string) string {
	if strings.Contains(s, `"`) && !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// formatFloatLiteral always writes digits on both sides of the point, since
// the lexer has no exponent form.
func formatFloatLiteral(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	raw := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw
}
