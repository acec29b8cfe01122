package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// DefaultMaxCallDepth bounds nested calls so runaway recursion is reported
// instead of exhausting the host stack.
const DefaultMaxCallDepth = 10000

// Locals maps variable reference sites to the number of scopes between the
// reference and its declaration. An absent entry means the name is looked
// up by walking the current scope chain. BeforeDeclaration marks references
// that can legitimately run before their binding exists.
type Locals interface {
	Depth(v *ast.VariableExpr) mo.Option[int]
	BeforeDeclaration(v *ast.VariableExpr) bool
}

type noLocals struct{}

func (noLocals) Depth(*ast.VariableExpr) mo.Option[int] { return mo.None[int]() }
func (noLocals) BeforeDeclaration(*ast.VariableExpr) bool { return false }

// Interpreter executes statement trees against an environment chain.
// Its only cursor state is the current environment.
type Interpreter struct {
	globals      *Env
	env          *Env
	locals       Locals
	stdout       io.Writer
	logger       *zap.Logger
	builtins     []*Builtin
	depth        int
	maxCallDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout sets the writer print statements write to.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// WithBuiltins binds host primitives in the global scope.
func WithBuiltins(bs ...*Builtin) Option {
	return func(in *Interpreter) { in.builtins = append(in.builtins, bs...) }
}

// WithLocals sets the resolver side table used for scoped lookups.
func WithLocals(l Locals) Option {
	return func(in *Interpreter) { in.locals = l }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) { in.maxCallDepth = n }
}

// New creates an interpreter with a fresh global scope.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		locals:       noLocals{},
		stdout:       os.Stdout,
		logger:       zap.NewNop(),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.globals = NewEnv(nil)
	in.env = in.globals
	for _, b := range in.builtins {
		in.globals.values[b.Name] = b
	}
	return in
}

// Globals returns the global scope.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Snapshot is a saved copy of the interpreter's global state.
type Snapshot struct {
	globals *Env
}

// Snapshot deep-copies the global scope, including every list and closure
// reachable from it.
func (in *Interpreter) Snapshot() *Snapshot {
	return &Snapshot{globals: in.globals.Clone()}
}

// Restore replaces the global state with a snapshot taken earlier. A
// snapshot must not be restored twice.
func (in *Interpreter) Restore(s *Snapshot) {
	in.globals = s.globals
	in.env = s.globals
	in.depth = 0
}

// Execute runs top-level statements in the global scope. A return or break
// reaching this level is reported as misplaced control flow.
func (in *Interpreter) Execute(stmts []ast.Stmt) error {
	prev := in.env
	in.env = in.globals
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		if err := in.exec(stmt); err != nil {
			return misplaced(err)
		}
	}
	return nil
}

// executeBlock runs stmts with env as the current scope, stopping at the
// first signal. The previous scope is restored on every path.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) error {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		if err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) exec(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		var v Value = NewNone()
		if s.Init != nil {
			var err error
			if v, err = in.evaluate(s.Init); err != nil {
				return err
			}
		}
		return locate(in.env.Define(s.Name, v), s.NameSpan)

	case *ast.ExprStmt:
		_, err := in.evaluate(s.Expr)
		return err

	case *ast.FunctionStmt:
		fn := &Closure{Name: s.Name, Params: s.Params, Body: s.Body, Env: in.env}
		return locate(in.env.Define(s.Name, fn), s.NameSpan)

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if Truthy(cond) {
			return in.executeBlock(s.Then.Stmts, in.env.Child())
		}
		if s.Else != nil {
			return in.exec(s.Else)
		}
		return nil

	case *ast.PrintStmt:
		v, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(in.stdout, Stringify(v)); err != nil {
			return errorAt(s.Span, diagnostics.EIO, "print failed: %v", err)
		}
		return nil

	case *ast.ReturnStmt:
		var v Value = NewNone()
		if s.Value != nil {
			var err error
			if v, err = in.evaluate(s.Value); err != nil {
				return err
			}
		}
		return &ReturnSignal{Span: s.Keyword, Value: v}

	case *ast.WhileStmt:
		for {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return err
			}
			if !Truthy(cond) {
				return nil
			}
			if err := in.exec(s.Body); err != nil {
				if _, ok := err.(*BreakSignal); ok {
					return nil
				}
				return err
			}
		}

	case *ast.BreakStmt:
		return &BreakSignal{Span: s.Span}

	case *ast.BlockStmt:
		return in.executeBlock(s.Stmts, in.env.Child())

	default:
		return errorAt(stmt.NodeSpan(), diagnostics.EType, "unsupported statement %s", stmt.Kind())
	}
}

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return Int{Value: e.Value}, nil
	case *ast.FloatLiteral:
		return NewFloat(e.Value), nil
	case *ast.StrLiteral:
		return NewStr(e.Value), nil
	case *ast.BoolLiteral:
		return NewBool(e.Value), nil
	case *ast.NoneLiteral:
		return NewNone(), nil

	case *ast.GroupingExpr:
		return in.evaluate(e.Inner)

	case *ast.VariableExpr:
		return in.lookUp(e)

	case *ast.AssignExpr:
		return in.evalAssign(e)

	case *ast.BinaryExpr:
		l, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		v, err := binary(e.Op, l, r)
		return v, locate(err, e.OpSpan)

	case *ast.LogicalExpr:
		l, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if (e.Op == ast.OpOr) == Truthy(l) {
			return l, nil
		}
		return in.evaluate(e.Right)

	case *ast.UnaryExpr:
		v, err := in.evaluate(e.Operand)
		if err != nil {
			return nil, err
		}
		out, err := unary(e.Op, v)
		return out, locate(err, e.Span)

	case *ast.CallExpr:
		return in.evalCall(e)

	case *ast.IndexExpr:
		list, idx, err := in.evalIndexTarget(e)
		if err != nil {
			return nil, err
		}
		return list.Items[idx], nil

	case *ast.ListExpr:
		items := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := in.evaluate(el)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return NewList(items), nil

	case *ast.LambdaExpr:
		return &Closure{Name: "lambda", Params: e.Params, Body: e.Body, Env: in.env, IsLambda: true}, nil

	default:
		return nil, errorAt(expr.NodeSpan(), diagnostics.EType, "unsupported expression %s", expr.Kind())
	}
}

// lookUp reads a variable through the resolver's hop count. A reference
// the resolver left unresolved is searched for by name along the current
// scope chain, which ends at the global scope.
func (in *Interpreter) lookUp(v *ast.VariableExpr) (Value, error) {
	if depth := in.locals.Depth(v); depth.IsPresent() {
		val, err := in.env.GetAt(v.Name, depth.MustGet())
		return val, in.resolverCheck(err, v)
	}
	val, err := in.env.Get(v.Name)
	return val, locate(err, v.Span)
}

func (in *Interpreter) assignVariable(v *ast.VariableExpr, val Value) error {
	if depth := in.locals.Depth(v); depth.IsPresent() {
		return in.resolverCheck(in.env.AssignAt(v.Name, depth.MustGet(), val), v)
	}
	return locate(in.env.Assign(v.Name, val), v.Span)
}

// resolverCheck locates err and logs resolver inconsistencies, which are
// interpreter bugs rather than program errors. A missing binding at a site
// the resolver marked as running before its declaration is the program's
// fault and is reported as undefined.
func (in *Interpreter) resolverCheck(err error, v *ast.VariableExpr) error {
	if err == nil {
		return nil
	}
	rt, ok := err.(*RuntimeError)
	if ok && rt.Code == diagnostics.ENotAtDepth && in.locals.BeforeDeclaration(v) {
		return errorAt(v.Span, diagnostics.EUndefined,
			"Variable '%s' is used before its declaration.", v.Name)
	}
	if ok && diagnostics.IsResolverInconsistency(rt.Code) {
		in.logger.Error("resolver inconsistency",
			zap.String("code", rt.Code),
			zap.String("name", v.Name),
			zap.Int("line", v.Span.StartLine),
			zap.Int("envDepth", in.env.Depth()),
		)
	}
	return locate(err, v.Span)
}

// evalAssign evaluates the value first, then the target.
func (in *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := in.evaluate(e.Value)
	if err != nil {
		return nil, err
	}

	switch target := e.Target.(type) {
	case *ast.VariableExpr:
		if err := in.assignVariable(target, val); err != nil {
			return nil, err
		}
		return val, nil
	case *ast.IndexExpr:
		list, idx, err := in.evalIndexTarget(target)
		if err != nil {
			return nil, err
		}
		list.Items[idx] = val
		return val, nil
	default:
		return nil, errorAt(e.Target.NodeSpan(), diagnostics.EAssignTarget,
			"Invalid assignment target: expected a variable or list index.")
	}
}

// evalIndexTarget evaluates the receiver and key of an index expression and
// checks the key is in bounds.
func (in *Interpreter) evalIndexTarget(e *ast.IndexExpr) (*List, int, error) {
	target, err := in.evaluate(e.Target)
	if err != nil {
		return nil, 0, err
	}
	key, err := in.evaluate(e.Index)
	if err != nil {
		return nil, 0, err
	}

	list, ok := target.(*List)
	if !ok {
		return nil, 0, errorAt(e.Target.NodeSpan(), diagnostics.EType,
			"Type error: indexing ('[...]') expects a List, but got %s.", TypeName(target))
	}
	k, ok := key.(Int)
	if !ok {
		return nil, 0, errorAt(e.Index.NodeSpan(), diagnostics.EType,
			"Type error: list index must be an Int, but got %s.", TypeName(key))
	}
	if k.Value.Sign() < 0 || !k.Value.IsInt64() || k.Value.Int64() >= int64(len(list.Items)) {
		return nil, 0, errorAt(e.Index.NodeSpan(), diagnostics.EIndex,
			"Index out of bounds: index %s is not in [0, %d).", k.Value, len(list.Items))
	}
	return list, int(k.Value.Int64()), nil
}

func (in *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, errorAt(e.Paren, diagnostics.EType,
			"Type error: expected a function to call, but got %s.", TypeName(callee))
	}
	if len(args) != fn.Arity() {
		return nil, errorAt(e.Paren, diagnostics.EArity,
			"'%s' expects %d argument(s) but got %d.", fn.DisplayName(), fn.Arity(), len(args))
	}
	if in.depth >= in.maxCallDepth {
		return nil, errorAt(e.Span, diagnostics.EStackOverflow,
			"Stack overflow: more than %d nested calls.", in.maxCallDepth)
	}

	in.depth++
	defer func() { in.depth-- }()
	v, err := fn.Call(in, args)
	return v, locate(err, e.Span)
}
