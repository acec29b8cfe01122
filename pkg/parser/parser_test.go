package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/parser"
)

// helper: parse source and assert no diagnostics
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.dingle")
	require.Empty(t, diags, "unexpected diagnostics")
	require.NotNil(t, prog)
	return prog
}

// helper: parse source and assert a single E_PARSE (or E_LEX) diagnostic
func mustFail(t *testing.T, source string) diagnostics.Diagnostic {
	t.Helper()
	prog, diags := parser.Parse(source, "test.dingle")
	require.Nil(t, prog, "expected parse to fail")
	require.Len(t, diags, 1)
	return diags[0]
}

// helper: extract the single statement from a program, assert it is an ExprStmt, return its Expr
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	require.Len(t, prog.Statements, 1)
	es, ok := prog.Statements[0].(*ast.ExprStmt)
	require.True(t, ok, "expected ExprStmt, got %T", prog.Statements[0])
	return es.Expr
}

// ---- Literals ----

func TestIntLiteral(t *testing.T) {
	for _, src := range []string{"0;", "42;", "170141183460469231731687303715884105727;"} {
		t.Run(src, func(t *testing.T) {
			lit, ok := singleExpr(t, src).(*ast.IntLiteral)
			require.True(t, ok)
			assert.Equal(t, strings.TrimSuffix(src, ";"), lit.Value.String())
		})
	}
}

func TestOversizedIntLiteralIsFloat(t *testing.T) {
	lit, ok := singleExpr(t, "170141183460469231731687303715884105728;").(*ast.FloatLiteral)
	require.True(t, ok)
	assert.InDelta(t, 1.7014118346046923e38, lit.Value, 1e24)
}

func TestOtherLiterals(t *testing.T) {
	assert.Equal(t, 2.5, singleExpr(t, "2.5;").(*ast.FloatLiteral).Value)
	assert.Equal(t, "hi", singleExpr(t, "'hi';").(*ast.StrLiteral).Value)
	assert.Equal(t, true, singleExpr(t, "true;").(*ast.BoolLiteral).Value)
	assert.Equal(t, false, singleExpr(t, "false;").(*ast.BoolLiteral).Value)
	assert.IsType(t, &ast.NoneLiteral{}, singleExpr(t, "none;"))
}

// ---- Precedence ----

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	bin := singleExpr(t, "1 + 2 * 3;").(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	right := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, right.Op)

	// left associativity: 1 - 2 - 3 parses as (1 - 2) - 3
	sub := singleExpr(t, "1 - 2 - 3;").(*ast.BinaryExpr)
	assert.IsType(t, &ast.BinaryExpr{}, sub.Left)
	assert.IsType(t, &ast.IntLiteral{}, sub.Right)

	// comparison binds tighter than equality, equality tighter than and, and tighter than or
	or := singleExpr(t, "a or b and 1 < 2 == true;").(*ast.LogicalExpr)
	assert.Equal(t, ast.OpOr, or.Op)
	and := or.Right.(*ast.LogicalExpr)
	assert.Equal(t, ast.OpAnd, and.Op)
	eq := and.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpEqEq, eq.Op)
	assert.Equal(t, ast.OpLt, eq.Left.(*ast.BinaryExpr).Op)
}

func TestUnary(t *testing.T) {
	u := singleExpr(t, "!-x;").(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNot, u.Op)
	inner := u.Operand.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNeg, inner.Op)

	// unary binds tighter than factor
	bin := singleExpr(t, "-a * b;").(*ast.BinaryExpr)
	assert.IsType(t, &ast.UnaryExpr{}, bin.Left)
}

func TestGrouping(t *testing.T) {
	bin := singleExpr(t, "(1 + 2) * 3;").(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, bin.Op)
	g := bin.Left.(*ast.GroupingExpr)
	assert.IsType(t, &ast.BinaryExpr{}, g.Inner)
}

// ---- Assignment ----

func TestAssignmentRightAssociative(t *testing.T) {
	a := singleExpr(t, "a = b = 3;").(*ast.AssignExpr)
	assert.Equal(t, "a", a.Target.(*ast.VariableExpr).Name)
	inner := a.Value.(*ast.AssignExpr)
	assert.Equal(t, "b", inner.Target.(*ast.VariableExpr).Name)
}

func TestIndexAssignment(t *testing.T) {
	a := singleExpr(t, "xs[0] = 1;").(*ast.AssignExpr)
	idx := a.Target.(*ast.IndexExpr)
	assert.Equal(t, "xs", idx.Target.(*ast.VariableExpr).Name)
}

func TestAssignmentTargetNotValidatedByParser(t *testing.T) {
	a := singleExpr(t, "1 + 2 = 3;").(*ast.AssignExpr)
	assert.IsType(t, &ast.BinaryExpr{}, a.Target)
}

// ---- Calls, index, lists, lambdas ----

func TestCall(t *testing.T) {
	call := singleExpr(t, "f(1, 'two', g(3));").(*ast.CallExpr)
	assert.Equal(t, "f", call.Callee.(*ast.VariableExpr).Name)
	require.Len(t, call.Args, 3)
	assert.IsType(t, &ast.CallExpr{}, call.Args[2])
}

func TestChainedPostfix(t *testing.T) {
	call := singleExpr(t, "fs[0](x)[1];").(*ast.IndexExpr)
	inner := call.Target.(*ast.CallExpr)
	assert.IsType(t, &ast.IndexExpr{}, inner.Callee)

	curried := singleExpr(t, "f(1)(2);").(*ast.CallExpr)
	assert.IsType(t, &ast.CallExpr{}, curried.Callee)
}

func TestListLiteral(t *testing.T) {
	list := singleExpr(t, "[1, 'a', [2]];").(*ast.ListExpr)
	require.Len(t, list.Elements, 3)
	assert.IsType(t, &ast.ListExpr{}, list.Elements[2])

	empty := singleExpr(t, "[];").(*ast.ListExpr)
	assert.Empty(t, empty.Elements)
}

func TestLambda(t *testing.T) {
	lam := singleExpr(t, "lambda(a, b) { return a + b; };").(*ast.LambdaExpr)
	require.Len(t, lam.Params, 2)
	assert.Equal(t, "b", lam.Params[1].Name)
	require.Len(t, lam.Body, 1)
	assert.IsType(t, &ast.ReturnStmt{}, lam.Body[0])
}

// ---- Statements ----

func TestVarDecl(t *testing.T) {
	prog := mustParse(t, "let x = 1; let y;")
	require.Len(t, prog.Statements, 2)
	x := prog.Statements[0].(*ast.VarStmt)
	assert.Equal(t, "x", x.Name)
	assert.NotNil(t, x.Init)
	y := prog.Statements[1].(*ast.VarStmt)
	assert.Nil(t, y.Init)
}

func TestFunctionDecl(t *testing.T) {
	prog := mustParse(t, "define add(a, b) { return a + b; }")
	fn := prog.Statements[0].(*ast.FunctionStmt)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
	assert.Len(t, fn.Body, 1)
}

func TestIfElse(t *testing.T) {
	prog := mustParse(t, "if x > 1 { print 1; } else if x > 0 { print 2; } else { print 3; }")
	stmt := prog.Statements[0].(*ast.IfStmt)
	assert.Len(t, stmt.Then.Stmts, 1)
	elseIf := stmt.Else.(*ast.IfStmt)
	assert.IsType(t, &ast.BlockStmt{}, elseIf.Else)
}

func TestWhileBreak(t *testing.T) {
	prog := mustParse(t, "while true { break; }")
	w := prog.Statements[0].(*ast.WhileStmt)
	assert.IsType(t, &ast.BreakStmt{}, w.Body.Stmts[0])
}

func TestReturn(t *testing.T) {
	prog := mustParse(t, "return; return 1;")
	assert.Nil(t, prog.Statements[0].(*ast.ReturnStmt).Value)
	assert.NotNil(t, prog.Statements[1].(*ast.ReturnStmt).Value)
}

func TestForDesugarsToWhile(t *testing.T) {
	prog := mustParse(t, "for (let i = 0; i < 3; i = i + 1) { print i; }")
	require.Len(t, prog.Statements, 1)

	outer := prog.Statements[0].(*ast.BlockStmt)
	require.Len(t, outer.Stmts, 2)
	assert.Equal(t, "i", outer.Stmts[0].(*ast.VarStmt).Name)

	loop := outer.Stmts[1].(*ast.WhileStmt)
	assert.Equal(t, ast.OpLt, loop.Cond.(*ast.BinaryExpr).Op)
	require.Len(t, loop.Body.Stmts, 2)
	assert.IsType(t, &ast.BlockStmt{}, loop.Body.Stmts[0])
	incr := loop.Body.Stmts[1].(*ast.ExprStmt)
	assert.IsType(t, &ast.AssignExpr{}, incr.Expr)
}

func TestForWithEmptyClauses(t *testing.T) {
	prog := mustParse(t, "for (;;) { break; }")
	loop := prog.Statements[0].(*ast.WhileStmt)
	assert.Equal(t, true, loop.Cond.(*ast.BoolLiteral).Value)
	assert.IsType(t, &ast.BreakStmt{}, loop.Body.Stmts[0])
}

func TestDistinctReferenceNodes(t *testing.T) {
	prog := mustParse(t, "x; x;")
	a := prog.Statements[0].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
	b := prog.Statements[1].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
	assert.Equal(t, a.Name, b.Name)
	assert.NotSame(t, a, b)
}

// ---- Errors ----

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"missing semicolon", "let x = 1", "Expected ';' after variable declaration."},
		{"missing let name", "let = 1;", "Expected an identifier after 'let'"},
		{"if without block", "if x print 1;", "Expected a block '{ ... }' after 'if' condition."},
		{"else without block", "if x { } else print 1;", "after 'else'"},
		{"while without block", "while x print 1;", "after 'while' condition"},
		{"for without block", "for (;;) print 1;", "after 'for (...)'"},
		{"lambda without block", "lambda(a) a;", "for lambda body"},
		{"function without body", "define f() return 1;", "Expected '{' to start function body."},
		{"unclosed block", "{ print 1;", "Expected '}' to close block."},
		{"unclosed list", "[1, 2;", "Expected ']' to close list literal."},
		{"unclosed call", "f(1;", "Expected ')' after argument list."},
		{"unclosed group", "(1 + 2;", "Expected ')' to close parenthesized expression."},
		{"break without semicolon", "while true { break }", "Expected ';' after 'break'."},
		{"reserved word", "class Foo {}", "'class' is reserved"},
		{"dangling operator", "1 +;", "Expected an expression."},
		{"unexpected end", "print", "Unexpected end of input."},
		{"bad param", "define f(1) {}", "parameter name in function declaration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustFail(t, tt.source)
			assert.Equal(t, diagnostics.EParse, d.Code)
			assert.Contains(t, d.Message, tt.message)
			assert.NotNil(t, d.Span)
		})
	}
}

func TestIncompleteInputIsMarked(t *testing.T) {
	tests := []struct {
		source     string
		incomplete bool
	}{
		{"let x = 1", true},
		{"{ print 1;", true},
		{"define f(a) {\n  return a;", true},
		{"print", true},
		{"print 'multi\nline", true},
		{"let = 1;", false},
		{"[1, 2;", false},
		{"f(1;", false},
		{"let n = 01;", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			d := mustFail(t, tt.source)
			assert.Equal(t, tt.incomplete, d.Incomplete)
		})
	}
}

func TestParseErrorSpanPointsAtOffendingToken(t *testing.T) {
	d := mustFail(t, "let x = 1\nprint x;")
	require.NotNil(t, d.Span)
	assert.Equal(t, 2, d.Span.StartLine)
	assert.Equal(t, 1, d.Span.StartCol)
	assert.Equal(t, 10, d.Span.Start)
	assert.Contains(t, d.Message, "Found 'print'.")
}

func TestLexErrorSurfaces(t *testing.T) {
	d := mustFail(t, "let x = 'oops;")
	assert.Equal(t, diagnostics.ELex, d.Code)
}

func TestTooManyParameters(t *testing.T) {
	params := make([]string, 256)
	for i := range params {
		params[i] = "p" + strings.Repeat("x", i%5) + string(rune('a'+i%26))
	}
	d := mustFail(t, "define f("+strings.Join(params, ", ")+") {}")
	assert.Contains(t, d.Message, "at most 255 parameters")

	ok := mustParse(t, "define f("+strings.Join(params[:255], ", ")+") {}")
	assert.Len(t, ok.Statements[0].(*ast.FunctionStmt).Params, 255)
}

func TestTooManyArguments(t *testing.T) {
	args := strings.TrimSuffix(strings.Repeat("1, ", 256), ", ")
	d := mustFail(t, "f("+args+");")
	assert.Contains(t, d.Message, "at most 255 arguments")
}
