package stdlib

import (
	"math"

	"github.com/raulk/clock"

	"github.com/dinglebob/dingle/pkg/interpreter"
)

// RegisterDefaults adds every built-in. clk is the time source for timeit.
func RegisterDefaults(r *Registry, clk clock.Clock) {
	// Time and math
	r.Register(Fn{Name: "timeit", Arity: 0, Execute: timeit(clk)})
	r.Register(Fn{Name: "abs", Arity: 1, Execute: stdlibAbs})

	// List ops
	r.Register(Fn{Name: "len", Arity: 1, Execute: stdlibLen})
	r.Register(Fn{Name: "copy", Arity: 1, Execute: stdlibCopy})
	r.Register(Fn{Name: "append", Arity: 2, Execute: stdlibAppend})
	r.Register(Fn{Name: "concat", Arity: 2, Execute: stdlibConcat})
}

// timeit() → Float seconds since the Unix epoch
func timeit(clk clock.Clock) func([]interpreter.Value) (interpreter.Value, error) {
	return func([]interpreter.Value) (interpreter.Value, error) {
		return interpreter.NewFloat(float64(clk.Now().UnixNano()) / 1e9), nil
	}
}

// abs(n) → Float
func stdlibAbs(args []interpreter.Value) (interpreter.Value, error) {
	v, err := interpreter.Expect(args[0], interpreter.TagFloat)
	if err != nil {
		return nil, err
	}
	return interpreter.NewFloat(math.Abs(v.(interpreter.Float).Value)), nil
}
