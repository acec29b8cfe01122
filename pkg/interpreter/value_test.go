package interpreter

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinglebob/dingle/pkg/diagnostics"
)

func TestStringify(t *testing.T) {
	fn := &Closure{Name: "f"}
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string is raw", NewStr("hi"), "hi"},
		{"int", NewInt(-42), "-42"},
		{"float", NewFloat(2.5), "2.5"},
		{"whole float", NewFloat(3), "3"},
		{"inf", NewFloat(math.Inf(1)), "inf"},
		{"neg inf", NewFloat(math.Inf(-1)), "-inf"},
		{"nan", NewFloat(math.NaN()), "NaN"},
		{"bool", NewBool(true), "true"},
		{"none", NewNone(), "none"},
		{"empty list", NewList(nil), "[]"},
		{"nested list quotes strings", NewList([]Value{NewInt(1), NewStr("a"), NewList([]Value{NewBool(false)})}), `[1, "a", [false]]`},
		{"function", fn, "<fn f>"},
		{"lambda", &Closure{IsLambda: true}, "<lambda>"},
		{"builtin", &Builtin{Name: "len"}, "<builtin len>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.v))
		})
	}
}

func TestStringifyCyclicList(t *testing.T) {
	l := NewList([]Value{NewInt(1)})
	l.Items = append(l.Items, l)
	assert.Equal(t, "[1, [...]]", Stringify(l))
}

func TestTruthy(t *testing.T) {
	falsy := []Value{NewBool(false), NewInt(0), NewFloat(0), NewNone()}
	truthy := []Value{NewBool(true), NewInt(-1), NewFloat(0.5), NewStr(""), NewList(nil), &Builtin{Name: "x"}}
	for _, v := range falsy {
		assert.False(t, Truthy(v), Stringify(v))
	}
	for _, v := range truthy {
		assert.True(t, Truthy(v), Stringify(v))
	}
}

func TestEqual(t *testing.T) {
	f := &Closure{Name: "f"}
	g := &Closure{Name: "f"}
	assert.True(t, Equal(NewInt(1), NewInt(1)))
	assert.False(t, Equal(NewInt(1), NewFloat(1)), "different tags are never equal")
	assert.True(t, Equal(NewStr("a"), NewStr("a")))
	assert.True(t, Equal(NewNone(), NewNone()))
	assert.False(t, Equal(NewNone(), NewBool(false)))
	assert.False(t, Equal(NewFloat(math.NaN()), NewFloat(math.NaN())))
	assert.True(t, Equal(
		NewList([]Value{NewInt(1), NewList([]Value{NewStr("x")})}),
		NewList([]Value{NewInt(1), NewList([]Value{NewStr("x")})}),
	))
	assert.False(t, Equal(NewList([]Value{NewInt(1)}), NewList([]Value{NewInt(1), NewInt(2)})))
	assert.True(t, Equal(f, f))
	assert.False(t, Equal(f, g), "callables compare by identity")
}

func TestEqualCyclicLists(t *testing.T) {
	a := NewList([]Value{NewInt(1)})
	a.Items = append(a.Items, a)
	b := NewList([]Value{NewInt(1)})
	b.Items = append(b.Items, b)
	assert.True(t, Equal(a, a))
	assert.True(t, Equal(a, b))
}

func TestFitsInt(t *testing.T) {
	assert.True(t, FitsInt(maxInt128))
	assert.True(t, FitsInt(minInt128))
	assert.False(t, FitsInt(new(big.Int).Add(maxInt128, big.NewInt(1))))
	assert.False(t, FitsInt(new(big.Int).Sub(minInt128, big.NewInt(1))))
}

func TestExpect(t *testing.T) {
	v, err := Expect(NewInt(3), TagFloat)
	require.NoError(t, err)
	assert.Equal(t, NewFloat(3), v)

	v, err = Expect(NewStr("s"), TagString)
	require.NoError(t, err)
	assert.Equal(t, NewStr("s"), v)

	_, err = Expect(NewFloat(1), TagInt)
	var rt *RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, diagnostics.EType, rt.Code)
	assert.Equal(t, "Expected type Int but got Float.", rt.Message)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "String", TypeName(NewStr("")))
	assert.Equal(t, "List", TypeName(NewList(nil)))
	assert.Equal(t, "Function", TypeName(&Closure{}))
	assert.Equal(t, "None", TypeName(NewNone()))
}
