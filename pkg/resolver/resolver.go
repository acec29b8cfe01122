// Package resolver implements the static pass that binds every variable
// reference to the scope that declares it.
//
// The resolver walks the tree with a stack of scope frames that mirrors the
// environments the interpreter will create: one frame per block, and one
// frame per function or lambda holding both parameters and body. For each
// reference found in a frame it records the hop count from the innermost
// frame; references found in no frame are globals and are left out of the
// table.
package resolver

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// frame maps a declared name to whether its initializer has finished.
type frame map[string]bool

// Resolver computes hop counts for variable references. One Resolver is
// reused across REPL lines so top-level declarations accumulate.
type Resolver struct {
	frames  []frame
	globals map[string]bool
	locals  map[*ast.VariableExpr]int
	// references bound to a declaration whose initializer was still running
	early map[*ast.VariableExpr]bool

	fnDepth   int
	loopDepth int
	diags     []diagnostics.Diagnostic
}

// New creates a resolver. globals names bindings that already exist in the
// global scope, such as built-ins.
func New(globals ...string) *Resolver {
	r := &Resolver{
		globals: make(map[string]bool),
		locals:  make(map[*ast.VariableExpr]int),
		early:   make(map[*ast.VariableExpr]bool),
	}
	for _, name := range globals {
		r.globals[name] = true
	}
	return r
}

// Resolve walks stmts as top-level code and returns any static errors.
// Hop counts are added to the side table even when errors are reported;
// callers that reject the tree should Restore a prior Snapshot.
func (r *Resolver) Resolve(stmts []ast.Stmt) []diagnostics.Diagnostic {
	r.diags = nil
	r.resolveStmts(stmts)
	diags := r.diags
	r.diags = nil
	return diags
}

// Locals returns the side table mapping reference sites to hop counts.
func (r *Resolver) Locals() map[*ast.VariableExpr]int {
	return r.locals
}

// Depth returns the hop count recorded for v, or None for a global.
func (r *Resolver) Depth(v *ast.VariableExpr) mo.Option[int] {
	if d, ok := r.locals[v]; ok {
		return mo.Some(d)
	}
	return mo.None[int]()
}

// BeforeDeclaration reports whether v was bound to a local whose
// initializer encloses v, as in a lambda called while its own variable is
// being initialized. Such a reference may run before the binding exists.
func (r *Resolver) BeforeDeclaration(v *ast.VariableExpr) bool {
	return r.early[v]
}

// IsGlobal reports whether name has been declared at top level.
func (r *Resolver) IsGlobal(name string) bool {
	return r.globals[name]
}

// Snapshot is a saved copy of resolver state.
type Snapshot struct {
	frames  []frame
	globals map[string]bool
	locals  map[*ast.VariableExpr]int
	early   map[*ast.VariableExpr]bool
}

// Snapshot deep-copies the side table, frame stack and global set.
func (r *Resolver) Snapshot() *Snapshot {
	return &Snapshot{
		frames:  lo.Map(r.frames, func(f frame, _ int) frame { return copyMap(f) }),
		globals: copyMap(r.globals),
		locals:  copyMap(r.locals),
		early:   copyMap(r.early),
	}
}

// Restore returns the resolver to the state captured by s.
func (r *Resolver) Restore(s *Snapshot) {
	r.frames = s.frames
	r.globals = s.globals
	r.locals = s.locals
	r.early = s.early
	r.fnDepth, r.loopDepth = 0, 0
	r.diags = nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *Resolver) addDiag(code, msg string, span ast.Span) {
	r.diags = append(r.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

func (r *Resolver) push() {
	r.frames = append(r.frames, frame{})
}

func (r *Resolver) pop() {
	r.frames = r.frames[:len(r.frames)-1]
}

// declare adds name to the innermost frame, or to the global set at top
// level. ready is false while the initializer is still being resolved.
func (r *Resolver) declare(name string, span ast.Span, ready bool) {
	if len(r.frames) == 0 {
		if r.globals[name] {
			r.addDiag(diagnostics.EDupDecl, fmt.Sprintf("Variable '%s' has already been declared in this scope.", name), span)
			return
		}
		r.globals[name] = true
		return
	}
	top := r.frames[len(r.frames)-1]
	if _, ok := top[name]; ok {
		r.addDiag(diagnostics.EDupDecl, fmt.Sprintf("Variable '%s' has already been declared in this scope.", name), span)
		return
	}
	top[name] = ready
}

func (r *Resolver) define(name string) {
	if len(r.frames) == 0 {
		return
	}
	r.frames[len(r.frames)-1][name] = true
}

// resolveLocal records the hop count for v when a frame declares it.
func (r *Resolver) resolveLocal(v *ast.VariableExpr) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		ready, ok := r.frames[i][v.Name]
		if !ok {
			continue
		}
		if !ready {
			if i == len(r.frames)-1 {
				r.addDiag(diagnostics.EOwnInitializer,
					fmt.Sprintf("Can't read local variable '%s' in its own initializer.", v.Name), v.Span)
			}
			r.early[v] = true
		}
		r.locals[v] = len(r.frames) - 1 - i
		return
	}
}

// --- Statements ---

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		r.declare(s.Name, s.NameSpan, false)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)

	case *ast.FunctionStmt:
		// Bound before the body so the function can call itself.
		r.declare(s.Name, s.NameSpan, true)
		r.resolveFunction(s.Params, s.Body)

	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveBlock(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.loopDepth++
		r.resolveBlock(s.Body)
		r.loopDepth--

	case *ast.ReturnStmt:
		if r.fnDepth == 0 {
			r.addDiag(diagnostics.EMisplacedFlow, "'return' can only be used inside a function body.", s.Keyword)
		}
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}

	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.addDiag(diagnostics.EMisplacedFlow, "'break' can only be used inside a loop body.", s.Span)
		}

	case *ast.BlockStmt:
		r.resolveBlock(s)
	}
}

func (r *Resolver) resolveBlock(b *ast.BlockStmt) {
	r.push()
	r.resolveStmts(b.Stmts)
	r.pop()
}

// resolveFunction pushes a single frame for parameters and body, matching
// the single environment a call creates. A function body starts outside
// any loop.
func (r *Resolver) resolveFunction(params []ast.Param, body []ast.Stmt) {
	savedLoop := r.loopDepth
	r.fnDepth++
	r.loopDepth = 0
	r.push()

	for _, p := range params {
		r.declare(p.Name, p.Span, true)
	}
	r.resolveStmts(body)

	r.pop()
	r.loopDepth = savedLoop
	r.fnDepth--
}

// --- Expressions ---

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		r.resolveLocal(e)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Target)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.IndexExpr:
		r.resolveExpr(e.Target)
		r.resolveExpr(e.Index)

	case *ast.ListExpr:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}

	case *ast.LambdaExpr:
		r.resolveFunction(e.Params, e.Body)

	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StrLiteral, *ast.BoolLiteral, *ast.NoneLiteral:
		// no references
	}
}
