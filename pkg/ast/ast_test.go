package ast_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinglebob/dingle/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: big.NewInt(42)},
		&ast.FloatLiteral{Value: 3.14},
		&ast.BoolLiteral{Value: true},
		&ast.StrLiteral{Value: "hello"},
		&ast.NoneLiteral{},
		&ast.VariableExpr{Name: "x"},
		&ast.ListExpr{},
		&ast.LambdaExpr{},
		&ast.BlockStmt{},
		&ast.FunctionStmt{Name: "f"},
	}

	expected := []string{
		"IntLiteral", "FloatLiteral", "BoolLiteral", "StrLiteral",
		"NoneLiteral", "VariableExpr", "ListExpr", "LambdaExpr",
		"BlockStmt", "FunctionStmt",
	}

	for i, node := range nodes {
		assert.Equal(t, expected[i], node.Kind(), "node %d", i)
	}
}

func TestJoin(t *testing.T) {
	a := ast.Span{File: "a.dingle", StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 4, Start: 2, End: 3}
	b := ast.Span{File: "a.dingle", StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 6, Start: 10, End: 15}

	j := ast.Join(a, b)
	assert.Equal(t, ast.Span{File: "a.dingle", StartLine: 1, StartCol: 3, EndLine: 2, EndCol: 6, Start: 2, End: 15}, j)
}
