package interpreter

import (
	"math"
	"math/big"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// checkedInt wraps n as an Int, failing when it does not fit in 128 bits.
func checkedInt(n *big.Int) (Value, error) {
	if !FitsInt(n) {
		return nil, newError(diagnostics.EOverflow, "Integer overflow: result does not fit in 128 bits.")
	}
	return Int{Value: n}, nil
}

// numericPair widens both operands to float64, reporting false when either
// is not a number.
func numericPair(l, r Value) (lf, rf float64, ok bool) {
	switch lv := l.(type) {
	case Int:
		lf = intToFloat(lv.Value)
	case Float:
		lf = lv.Value
	default:
		return 0, 0, false
	}
	switch rv := r.(type) {
	case Int:
		rf = intToFloat(rv.Value)
	case Float:
		rf = rv.Value
	default:
		return 0, 0, false
	}
	return lf, rf, true
}

// binary applies an arithmetic, comparison or equality operator.
func binary(op ast.BinaryOp, l, r Value) (Value, error) {
	switch op {
	case ast.OpEqEq:
		return NewBool(Equal(l, r)), nil
	case ast.OpNeq:
		return NewBool(!Equal(l, r)), nil
	case ast.OpGt, ast.OpGtEq, ast.OpLt, ast.OpLtEq:
		return compare(op, l, r)
	case ast.OpAdd:
		if s, ok := l.(Str); ok {
			return NewStr(s.Value + Stringify(r)), nil
		}
		if !isNumeric(l) || !isNumeric(r) {
			return nil, newError(diagnostics.EType,
				"Type error: '+' expects numbers or strings, but got %s and %s.", TypeName(l), TypeName(r))
		}
	}
	return arithmetic(op, l, r)
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

func arithmetic(op ast.BinaryOp, l, r Value) (Value, error) {
	li, lok := l.(Int)
	ri, rok := r.(Int)
	if lok && rok {
		return intArithmetic(op, li.Value, ri.Value)
	}

	lf, rf, ok := numericPair(l, r)
	if !ok {
		return nil, newError(diagnostics.EType,
			"Type error: '%s' expects numeric operands, but got %s and %s.", op, TypeName(l), TypeName(r))
	}
	switch op {
	case ast.OpAdd:
		return NewFloat(lf + rf), nil
	case ast.OpSub:
		return NewFloat(lf - rf), nil
	case ast.OpMul:
		return NewFloat(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, divisionByZero()
		}
		return NewFloat(lf / rf), nil
	default: // OpMod
		if rf == 0 {
			return nil, divisionByZero()
		}
		return NewFloat(math.Mod(lf, rf)), nil
	}
}

// intArithmetic uses truncated division, so -7 / 2 is -3 and -7 % 2 is -1.
func intArithmetic(op ast.BinaryOp, l, r *big.Int) (Value, error) {
	z := new(big.Int)
	switch op {
	case ast.OpAdd:
		z.Add(l, r)
	case ast.OpSub:
		z.Sub(l, r)
	case ast.OpMul:
		z.Mul(l, r)
	case ast.OpDiv:
		if r.Sign() == 0 {
			return nil, divisionByZero()
		}
		z.Quo(l, r)
	default: // OpMod
		if r.Sign() == 0 {
			return nil, divisionByZero()
		}
		z.Rem(l, r)
	}
	return checkedInt(z)
}

func divisionByZero() *RuntimeError {
	return newError(diagnostics.EDivZero, "Division by zero.")
}

// compare orders two numbers of the same tag. Int and Float are not
// promoted for ordering.
func compare(op ast.BinaryOp, l, r Value) (Value, error) {
	var c int
	switch lv := l.(type) {
	case Int:
		rv, ok := r.(Int)
		if !ok {
			return nil, comparisonError(op, l, r)
		}
		c = lv.Value.Cmp(rv.Value)
	case Float:
		rv, ok := r.(Float)
		if !ok {
			return nil, comparisonError(op, l, r)
		}
		// NaN compares false under every ordering operator.
		if math.IsNaN(lv.Value) || math.IsNaN(rv.Value) {
			return NewBool(false), nil
		}
		switch {
		case lv.Value < rv.Value:
			c = -1
		case lv.Value > rv.Value:
			c = 1
		}
	default:
		return nil, comparisonError(op, l, r)
	}

	switch op {
	case ast.OpGt:
		return NewBool(c > 0), nil
	case ast.OpGtEq:
		return NewBool(c >= 0), nil
	case ast.OpLt:
		return NewBool(c < 0), nil
	default: // OpLtEq
		return NewBool(c <= 0), nil
	}
}

func comparisonError(op ast.BinaryOp, l, r Value) *RuntimeError {
	return newError(diagnostics.EType,
		"Type error: Comparison '%s' expects numeric operands of the same type, but got %s and %s.",
		op, TypeName(l), TypeName(r))
}

// unary applies '-' or '!'. '!' accepts only Bool.
func unary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.OpNeg:
		switch val := v.(type) {
		case Int:
			return checkedInt(new(big.Int).Neg(val.Value))
		case Float:
			return NewFloat(-val.Value), nil
		}
		return nil, newError(diagnostics.EType, "Type error: unary '-' expects a number, but got %s.", TypeName(v))
	default: // OpNot
		b, ok := v.(Bool)
		if !ok {
			return nil, newError(diagnostics.EType, "Type error: '!' expects a boolean, but got %s.", TypeName(v))
		}
		return NewBool(!b.Value), nil
	}
}
