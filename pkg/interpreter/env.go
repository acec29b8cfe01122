package interpreter

import (
	"sort"

	"github.com/samber/lo"

	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// Env is one scope in the environment chain. Scopes are shared by pointer:
// a scope stays alive as long as any child scope or closure refers to it.
type Env struct {
	values    map[string]Value
	enclosing *Env
}

// NewEnv creates a new environment with an optional enclosing scope.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Child creates a new scope whose enclosing scope is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Enclosing returns the enclosing scope, or nil for the global scope.
func (e *Env) Enclosing() *Env {
	return e.enclosing
}

// Define binds name in this scope. Redefining a name in the same scope is
// an error; shadowing a name from an enclosing scope is not.
func (e *Env) Define(name string, v Value) error {
	if _, ok := e.values[name]; ok {
		return newError(diagnostics.EDupDecl, "Variable '%s' has already been declared in this scope.", name)
	}
	e.values[name] = v
	return nil
}

// Assign overwrites the nearest existing binding of name.
func (e *Env) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return nil
		}
	}
	return undefined(name)
}

// Get looks up name, walking outward through enclosing scopes.
func (e *Env) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, undefined(name)
}

// Has reports whether name is bound in this scope or any enclosing scope.
func (e *Env) Has(name string) bool {
	_, err := e.Get(name)
	return err == nil
}

// HasLocal reports whether name is bound in this scope only.
func (e *Env) HasLocal(name string) bool {
	_, ok := e.values[name]
	return ok
}

func undefined(name string) *RuntimeError {
	return newError(diagnostics.EUndefined, "Undefined variable '%s'.", name)
}

// Ancestor walks exactly hops enclosing links. It reports false when the
// chain is shorter than hops.
func (e *Env) Ancestor(hops int) (*Env, bool) {
	env := e
	for i := 0; i < hops; i++ {
		if env.enclosing == nil {
			return nil, false
		}
		env = env.enclosing
	}
	return env, true
}

// GetAt looks up name exactly hops scopes out, as computed by the resolver.
func (e *Env) GetAt(name string, hops int) (Value, error) {
	env, err := e.resolvedScope(name, hops)
	if err != nil {
		return nil, err
	}
	return env.values[name], nil
}

// AssignAt overwrites name exactly hops scopes out.
func (e *Env) AssignAt(name string, hops int, v Value) error {
	env, err := e.resolvedScope(name, hops)
	if err != nil {
		return err
	}
	env.values[name] = v
	return nil
}

// resolvedScope returns the scope hops links out, failing with a resolver
// inconsistency when the chain is too short or the name is missing there.
func (e *Env) resolvedScope(name string, hops int) (*Env, error) {
	env, ok := e.Ancestor(hops)
	if !ok {
		return nil, newError(diagnostics.EResolverBug,
			"Resolver bug: '%s' was resolved %d scope(s) out, but the environment chain is only %d deep.",
			name, hops, e.Depth())
	}
	if _, ok := env.values[name]; !ok {
		return nil, newError(diagnostics.ENotAtDepth,
			"Variable '%s' not found at resolved depth %d.", name, hops)
	}
	return env, nil
}

// Depth returns the number of enclosing links from this scope to the root.
func (e *Env) Depth() int {
	depth := 0
	for env := e.enclosing; env != nil; env = env.enclosing {
		depth++
	}
	return depth
}

// Names returns the names bound in this scope, sorted.
func (e *Env) Names() []string {
	names := lo.Keys(e.values)
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of this scope and its whole enclosing chain.
// Lists and closures reachable from the copied scopes are copied too, and
// aliasing among them is preserved inside the copy, so nothing done to the
// copy is visible through the original and vice versa.
func (e *Env) Clone() *Env {
	return newCloner().env(e)
}

type cloner struct {
	envs     map[*Env]*Env
	lists    map[*List]*List
	closures map[*Closure]*Closure
}

func newCloner() *cloner {
	return &cloner{
		envs:     make(map[*Env]*Env),
		lists:    make(map[*List]*List),
		closures: make(map[*Closure]*Closure),
	}
}

func (c *cloner) env(e *Env) *Env {
	if e == nil {
		return nil
	}
	if dup, ok := c.envs[e]; ok {
		return dup
	}
	dup := &Env{values: make(map[string]Value, len(e.values))}
	c.envs[e] = dup
	dup.enclosing = c.env(e.enclosing)
	for name, v := range e.values {
		dup.values[name] = c.value(v)
	}
	return dup
}

func (c *cloner) value(v Value) Value {
	switch val := v.(type) {
	case *List:
		if dup, ok := c.lists[val]; ok {
			return dup
		}
		dup := &List{Items: make([]Value, len(val.Items))}
		c.lists[val] = dup
		for i, item := range val.Items {
			dup.Items[i] = c.value(item)
		}
		return dup
	case *Closure:
		if dup, ok := c.closures[val]; ok {
			return dup
		}
		dup := *val
		c.closures[val] = &dup
		dup.Env = c.env(val.Env)
		return &dup
	default:
		// Strings, numbers, booleans, none and builtins are immutable.
		return v
	}
}
