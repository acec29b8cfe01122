// Package session wires the parser, resolver and interpreter together into
// the two ways Dinglebob code is run: a whole file once, or a REPL where each
// line either commits or leaves the previous state untouched.
package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/raulk/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/formatter"
	"github.com/dinglebob/dingle/pkg/interpreter"
	"github.com/dinglebob/dingle/pkg/parser"
	"github.com/dinglebob/dingle/pkg/resolver"
	"github.com/dinglebob/dingle/pkg/stdlib"
)

// ReplFile is the file name REPL diagnostics report.
const ReplFile = "<repl>"

// Session owns one global scope and the resolver state that goes with it.
type Session struct {
	interp   *interpreter.Interpreter
	resolver *resolver.Resolver

	stdout       io.Writer
	stderr       io.Writer
	logger       *zap.Logger
	clock        clock.Clock
	diagOpts     diagnostics.Options
	maxCallDepth int

	baseDir  string
	imported map[string]bool
	loading  map[string]bool
}

// Option is a functional option for configuring the Session.
type Option func(*Session)

// WithStdout sets where print writes.
func WithStdout(w io.Writer) Option {
	return func(s *Session) {
		s.stdout = w
	}
}

// WithStderr sets where diagnostics are rendered.
func WithStderr(w io.Writer) Option {
	return func(s *Session) {
		s.stderr = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock sets the time source used by timeit.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithDiagOptions sets how diagnostics are rendered. Source is filled in
// per run.
func WithDiagOptions(o diagnostics.Options) Option {
	return func(s *Session) {
		s.diagOpts = o
	}
}

// WithMaxCallDepth bounds nested calls.
func WithMaxCallDepth(n int) Option {
	return func(s *Session) {
		s.maxCallDepth = n
	}
}

// New creates a session with the default built-ins bound.
func New(opts ...Option) *Session {
	s := &Session{
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		logger:       zap.NewNop(),
		clock:        clock.New(),
		maxCallDepth: interpreter.DefaultMaxCallDepth,
		imported:     make(map[string]bool),
		loading:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, s.clock)
	builtins := append(reg.Builtins(), s.importBuiltin())

	s.resolver = resolver.New(lo.Map(builtins, func(b *interpreter.Builtin, _ int) string { return b.Name })...)
	s.interp = interpreter.New(
		interpreter.WithStdout(s.stdout),
		interpreter.WithLogger(s.logger),
		interpreter.WithLocals(s.resolver),
		interpreter.WithBuiltins(builtins...),
		interpreter.WithMaxCallDepth(s.maxCallDepth),
	)
	return s
}

// DiagnosticError wraps diagnostics as an error. Runtime is set when the
// failure happened during execution rather than in parsing or resolution.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
	Runtime     bool
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 1
	ExitStatic   = 2
	ExitRuntime  = 3
	ExitInternal = 70
)

// ExitCode maps an error returned by the session to a process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *DiagnosticError
	if !errors.As(err, &de) {
		return ExitUsage
	}
	for _, d := range de.Diagnostics {
		if diagnostics.IsResolverInconsistency(d.Code) {
			return ExitInternal
		}
	}
	if de.Runtime {
		return ExitRuntime
	}
	return ExitStatic
}

// RunFile reads, parses, resolves and interprets the file at path.
// Diagnostics are rendered to stderr and returned as a *DiagnosticError.
func (s *Session) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "reading %s", path)
		fmt.Fprintln(s.stderr, err)
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		s.baseDir = filepath.Dir(abs)
		s.imported[abs] = true
	}
	return s.RunSource(string(src), path)
}

// RunSource runs source as a whole program.
func (s *Session) RunSource(source, filename string) error {
	err := s.run(source, filename)
	if err != nil {
		s.report(err, source, filename)
	}
	return err
}

// RunLine runs one REPL entry. On any failure both the global scope and the
// resolver are put back exactly as they were before the line.
func (s *Session) RunLine(source string) error {
	isnap := s.interp.Snapshot()
	rsnap := s.resolver.Snapshot()
	imported := copySet(s.imported)

	err := s.run(source, ReplFile)
	if err != nil {
		s.interp.Restore(isnap)
		s.resolver.Restore(rsnap)
		s.imported = imported
		s.logger.Debug("rolled back REPL line", zap.Error(err))
		s.report(err, "", ReplFile)
	}
	return err
}

// Check parses and resolves source without running it or keeping any state.
func (s *Session) Check(source, filename string) []diagnostics.Diagnostic {
	snap := s.resolver.Snapshot()
	defer s.resolver.Restore(snap)

	_, err := s.load(source, filename)
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostics
	}
	return nil
}

// Format parses and formats source.
func (s *Session) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// Globals returns the names bound in the global scope, sorted.
func (s *Session) Globals() []string {
	return s.interp.Globals().Names()
}

// Render formats err the way the session reports it.
func (s *Session) Render(err error, source, filename string) string {
	var de *DiagnosticError
	if !errors.As(err, &de) {
		return err.Error()
	}
	parts := lo.Map(de.Diagnostics, func(d diagnostics.Diagnostic, _ int) string {
		opts := s.diagOpts
		opts.Source = ""
		if d.Span != nil && d.Span.File == filename {
			opts.Source = source
		}
		return diagnostics.FormatDiagnostic(d, opts)
	})
	return strings.Join(parts, "\n\n")
}

func (s *Session) report(err error, source, filename string) {
	fmt.Fprintln(s.stderr, s.Render(err, source, filename))
}

// load parses and resolves source. Static errors come back as a
// *DiagnosticError with Runtime unset.
func (s *Session) load(source, filename string) ([]ast.Stmt, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	s.logger.Debug("parsed", zap.String("file", filename), zap.Int("statements", len(program.Statements)))

	if diags := s.resolver.Resolve(program.Statements); len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	s.logger.Debug("resolved", zap.String("file", filename), zap.Int("locals", len(s.resolver.Locals())))
	return program.Statements, nil
}

func (s *Session) run(source, filename string) error {
	stmts, err := s.load(source, filename)
	if err != nil {
		return err
	}
	if err := s.interp.Execute(stmts); err != nil {
		return runtimeFailure(err)
	}
	return nil
}

func runtimeFailure(err error) *DiagnosticError {
	var rt *interpreter.RuntimeError
	if errors.As(err, &rt) {
		return &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{rt.Diagnostic()}, Runtime: true}
	}
	d := diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")
	return &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{d}, Runtime: true}
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NeedsMore reports whether source is a prefix of a valid entry: its only
// error is running out of input, such as an open block or string.
func NeedsMore(source string) bool {
	_, diags := parser.Parse(source, ReplFile)
	return len(diags) == 1 && diags[0].Incomplete
}
