package interpreter

import (
	"fmt"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// ReturnSignal carries a return value up to the nearest enclosing call.
// It travels through the error return of every exec function.
type ReturnSignal struct {
	Span  ast.Span // the 'return' keyword
	Value Value
}

func (s *ReturnSignal) Error() string {
	return "'return' can only be used inside a function body."
}

// BreakSignal terminates the nearest enclosing loop.
type BreakSignal struct {
	Span ast.Span
}

func (s *BreakSignal) Error() string {
	return "'break' can only be used inside a loop body."
}

// RuntimeError represents a language error raised during execution.
// Span is nil when the error was raised below the layer that knows the
// source location; the interpreter fills it in on the way up.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error to a renderable diagnostic.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, hintFor(e.Code))
}

// newError creates a RuntimeError without a location.
func newError(code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// errorAt creates a RuntimeError located at span.
func errorAt(span ast.Span, code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: &span}
}

// locate fills in span on a RuntimeError that does not have one yet.
// Signals and located errors pass through unchanged.
func locate(err error, span ast.Span) error {
	if rt, ok := err.(*RuntimeError); ok && rt.Span == nil {
		rt.Span = &span
	}
	return err
}

// misplaced converts a control-flow signal that escaped its construct into
// a MisplacedControlFlow error. Other errors pass through.
func misplaced(err error) error {
	switch sig := err.(type) {
	case *ReturnSignal:
		return errorAt(sig.Span, diagnostics.EMisplacedFlow, "%s", sig.Error())
	case *BreakSignal:
		return errorAt(sig.Span, diagnostics.EMisplacedFlow, "%s", sig.Error())
	}
	return err
}

func hintFor(code string) string {
	switch code {
	case diagnostics.EResolverBug, diagnostics.ENotAtDepth:
		return "this is an interpreter bug, not an error in your program"
	case diagnostics.EDivZero:
		return "check the divisor before dividing"
	case diagnostics.EUndefined:
		return "declare the variable with 'let' before using it"
	}
	return ""
}
