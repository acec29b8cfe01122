package interpreter

import (
	"fmt"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// Callable is implemented by every value that can be invoked with call
// syntax: built-in primitives, user functions and lambdas.
type Callable interface {
	Value
	// Call runs the callable. The caller has already checked len(args) == Arity().
	Call(in *Interpreter, args []Value) (Value, error)
	Arity() int
	DisplayName() string
	String() string
}

// Expect checks that v has the given tag. An Int is widened to Float when a
// Float is expected; every other mismatch is a TypeError.
func Expect(v Value, tag Tag) (Value, error) {
	if TagOf(v) == tag {
		return v, nil
	}
	if i, ok := v.(Int); ok && tag == TagFloat {
		return Float{Value: intToFloat(i.Value)}, nil
	}
	return nil, newError(diagnostics.EType, "Expected type %s but got %s.", tag, TypeName(v))
}

// BuiltinFunc is the host implementation of a built-in.
type BuiltinFunc func(in *Interpreter, args []Value) (Value, error)

// Builtin is a host-implemented primitive with a fixed arity.
type Builtin struct {
	Name   string
	Params int
	Fn     BuiltinFunc
}

func (*Builtin) value() {}

func (b *Builtin) Call(in *Interpreter, args []Value) (Value, error) {
	return b.Fn(in, args)
}

func (b *Builtin) Arity() int          { return b.Params }
func (b *Builtin) DisplayName() string { return b.Name }
func (b *Builtin) String() string      { return fmt.Sprintf("<builtin %s>", b.Name) }

// Closure is a user function or lambda paired with the environment that was
// current where it was defined.
type Closure struct {
	Name     string
	Params   []ast.Param
	Body     []ast.Stmt
	Env      *Env
	IsLambda bool
}

func (*Closure) value() {}

// Call binds the arguments in a fresh scope enclosing the captured
// environment, never the caller's, and runs the body there.
func (c *Closure) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnv(c.Env)
	for i, p := range c.Params {
		if err := env.Define(p.Name, args[i]); err != nil {
			return nil, locate(err, p.Span)
		}
	}

	err := in.executeBlock(c.Body, env)
	switch sig := err.(type) {
	case nil:
		return NewNone(), nil
	case *ReturnSignal:
		return sig.Value, nil
	case *BreakSignal:
		return nil, misplaced(sig)
	default:
		return nil, err
	}
}

func (c *Closure) Arity() int { return len(c.Params) }

func (c *Closure) DisplayName() string {
	if c.IsLambda {
		return "lambda"
	}
	return c.Name
}

func (c *Closure) String() string {
	if c.IsLambda {
		return "<lambda>"
	}
	return fmt.Sprintf("<fn %s>", c.Name)
}
