// Package interpreter implements the Dinglebob runtime: values, the
// environment chain, callables, and the tree-walking interpreter.
package interpreter

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Value is the interface for all Dinglebob runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Tag identifies the variant of a Value.
type Tag int

const (
	TagString Tag = iota
	TagInt
	TagFloat
	TagBool
	TagNone
	TagList
	TagCallable
)

var tagNames = [...]string{
	TagString:   "String",
	TagInt:      "Int",
	TagFloat:    "Float",
	TagBool:     "Bool",
	TagNone:     "None",
	TagList:     "List",
	TagCallable: "Function",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Unknown"
}

// Str represents a string value.
type Str struct {
	Value string
}

func (Str) value() {}

// Int represents a 128-bit signed integer. Value is never mutated after
// construction, so Ints may share their big.Int.
type Int struct {
	Value *big.Int
}

func (Int) value() {}

// Float represents a 64-bit floating point value.
type Float struct {
	Value float64
}

func (Float) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// None represents the absence of a value.
type None struct{}

func (None) value() {}

// List is a mutable ordered sequence. Lists are shared by pointer: every
// binding holding the same *List observes mutations made through any other.
type List struct {
	Items []Value
}

func (*List) value() {}

// NewStr creates a string value.
func NewStr(s string) Value {
	return Str{Value: s}
}

// NewInt creates an integer value from an int64.
func NewInt(n int64) Value {
	return Int{Value: big.NewInt(n)}
}

// NewFloat creates a float value.
func NewFloat(f float64) Value {
	return Float{Value: f}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNone creates the none value.
func NewNone() Value {
	return None{}
}

// NewList creates a list value that owns items.
func NewList(items []Value) *List {
	return &List{Items: items}
}

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// FitsInt reports whether n is representable as a 128-bit signed integer.
func FitsInt(n *big.Int) bool {
	return n.Cmp(minInt128) >= 0 && n.Cmp(maxInt128) <= 0
}

func intToFloat(n *big.Int) float64 {
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// TagOf returns the variant tag of v.
func TagOf(v Value) Tag {
	switch v.(type) {
	case Str:
		return TagString
	case Int:
		return TagInt
	case Float:
		return TagFloat
	case Bool:
		return TagBool
	case *List:
		return TagList
	case Callable:
		return TagCallable
	default:
		return TagNone
	}
}

// TypeName returns the user-facing type name of v.
func TypeName(v Value) string {
	return TagOf(v).String()
}

// Truthy returns the boolean interpretation of v.
// Bool is itself, numeric zero and none are false, everything else is true.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Bool:
		return val.Value
	case Int:
		return val.Value.Sign() != 0
	case Float:
		return val.Value != 0
	case None:
		return false
	default:
		return true
	}
}

// Stringify renders v the way print shows it.
func Stringify(v Value) string {
	if s, ok := v.(Str); ok {
		return s.Value
	}
	return repr(v, nil)
}

// repr renders v as a list element: strings are quoted. A list that
// contains itself renders the inner occurrence as [...].
func repr(v Value, visiting map[*List]bool) string {
	switch val := v.(type) {
	case Str:
		return strconv.Quote(val.Value)
	case Int:
		return val.Value.String()
	case Float:
		return formatFloat(val.Value)
	case Bool:
		return strconv.FormatBool(val.Value)
	case *List:
		if visiting[val] {
			return "[...]"
		}
		if visiting == nil {
			visiting = make(map[*List]bool)
		}
		visiting[val] = true
		defer delete(visiting, val)
		return "[" + strings.Join(lo.Map(val.Items, func(item Value, _ int) string {
			return repr(item, visiting)
		}), ", ") + "]"
	case Callable:
		return val.String()
	default:
		return "none"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal compares two values. It never fails: values of different tags are
// unequal, lists compare elementwise, callables compare by identity.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type listPair struct{ a, b *List }

func equal(a, b Value, comparing map[listPair]bool) bool {
	switch av := a.(type) {
	case Str:
		bv, ok := b.(Str)
		return ok && av.Value == bv.Value
	case Int:
		bv, ok := b.(Int)
		return ok && av.Value.Cmp(bv.Value) == 0
	case Float:
		bv, ok := b.(Float)
		return ok && av.Value == bv.Value
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case None:
		_, ok := b.(None)
		return ok
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if len(av.Items) != len(bv.Items) {
			return false
		}
		pair := listPair{av, bv}
		if comparing[pair] {
			// Already comparing this pair further up: cyclic lists.
			return true
		}
		if comparing == nil {
			comparing = make(map[listPair]bool)
		}
		comparing[pair] = true
		defer delete(comparing, pair)
		for i := range av.Items {
			if !equal(av.Items[i], bv.Items[i], comparing) {
				return false
			}
		}
		return true
	case Callable:
		bv, ok := b.(Callable)
		return ok && av == bv
	}
	return false
}
