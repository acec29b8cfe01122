// Package stdlib provides the Dinglebob built-in function registry.
package stdlib

import (
	"sort"

	"github.com/samber/lo"

	"github.com/dinglebob/dingle/pkg/interpreter"
)

// Fn represents a built-in function with a fixed arity.
type Fn struct {
	Name    string
	Arity   int
	Execute func(args []interpreter.Value) (interpreter.Value, error)
}

// Registry holds registered built-ins.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a built-in to the registry, replacing any with the same name.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a built-in by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered built-ins.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := lo.Keys(r.fns)
	sort.Strings(names)
	return names
}

// Builtins converts the registry into interpreter values, in name order.
func (r *Registry) Builtins() []*interpreter.Builtin {
	return lo.Map(r.Names(), func(name string, _ int) *interpreter.Builtin {
		fn := r.fns[name]
		return &interpreter.Builtin{
			Name:   fn.Name,
			Params: fn.Arity,
			Fn: func(_ *interpreter.Interpreter, args []interpreter.Value) (interpreter.Value, error) {
				return fn.Execute(args)
			},
		}
	})
}
