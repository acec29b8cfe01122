// Package diagnostics defines Dinglebob diagnostic types for lex, parse, resolve and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dinglebob/dingle/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex            = "E_LEX"
	EParse          = "E_PARSE"
	EDupDecl        = "E_DUP_DECL"
	EUndefined      = "E_UNDEFINED"
	EResolverBug    = "E_RESOLVER_BUG"
	ENotAtDepth     = "E_NOT_AT_DEPTH"
	EType           = "E_TYPE"
	EArity          = "E_ARITY"
	EDivZero        = "E_DIV_ZERO"
	EIndex          = "E_INDEX"
	EAssignTarget   = "E_ASSIGN_TARGET"
	EMisplacedFlow  = "E_MISPLACED_FLOW"
	EOwnInitializer = "E_OWN_INITIALIZER"
	EOverflow       = "E_OVERFLOW"
	EStackOverflow  = "E_STACK_OVERFLOW"
	EIO             = "E_IO"
)

// IsResolverInconsistency reports whether code signals a mismatch between
// the resolver's hop counts and the live environment chain.
func IsResolverInconsistency(code string) bool {
	return code == EResolverBug || code == ENotAtDepth
}

// Diagnostic represents a lex, parse, resolve, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`

	// Incomplete is set when the only problem is that the input ended early,
	// such as an open block or string. More input may fix it.
	Incomplete bool `json:"incomplete,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Options controls how diagnostics are rendered.
type Options struct {
	// JSON renders one machine-readable object per diagnostic.
	JSON bool
	// Color wraps the header and caret line in ANSI escapes.
	Color bool
	// Source is the text the spans point into. Empty disables the excerpt.
	Source string
}

const (
	ansiRed   = "\x1b[31;1m"
	ansiBlue  = "\x1b[34;1m"
	ansiReset = "\x1b[0m"
)

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, opts Options) string {
	if opts.JSON {
		b, _ := json.Marshal(d)
		return string(b)
	}
	paint := func(code, s string) string {
		if !opts.Color {
			return s
		}
		return code + s + ansiReset
	}

	var sb strings.Builder
	sb.WriteString(paint(ansiRed, fmt.Sprintf("error[%s]", d.Code)))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Span != nil {
		fmt.Fprintf(&sb, "\n  %s %s:%d:%d", paint(ansiBlue, "-->"), d.Span.File, d.Span.StartLine, d.Span.StartCol)
		if excerpt, caret, ok := excerptAt(opts.Source, *d.Span); ok {
			gutter := fmt.Sprintf("%d", d.Span.StartLine)
			pad := strings.Repeat(" ", len(gutter))
			fmt.Fprintf(&sb, "\n %s |", pad)
			fmt.Fprintf(&sb, "\n %s | %s", gutter, excerpt)
			fmt.Fprintf(&sb, "\n %s | %s", pad, paint(ansiRed, caret))
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(&sb, "\n  hint: %s", d.Hint)
	}
	return sb.String()
}

// excerptAt returns the source line containing span.Start and a caret line
// underlining the span, clipped to that line.
func excerptAt(source string, span ast.Span) (string, string, bool) {
	if source == "" || span.Start < 0 || span.Start > len(source) {
		return "", "", false
	}
	lineStart := strings.LastIndexByte(source[:span.Start], '\n') + 1
	lineEnd := len(source)
	if i := strings.IndexByte(source[span.Start:], '\n'); i >= 0 {
		lineEnd = span.Start + i
	}
	line := strings.TrimRight(source[lineStart:lineEnd], "\r")

	end := span.End
	if end > lineEnd {
		end = lineEnd
	}
	width := end - span.Start
	if width < 1 {
		width = 1
	}
	var lead strings.Builder
	for _, ch := range source[lineStart:span.Start] {
		if ch == '\t' {
			lead.WriteByte('\t')
		} else {
			lead.WriteByte(' ')
		}
	}
	return line, lead.String() + strings.Repeat("^", width), true
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, opts Options) string {
	if opts.JSON {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, opts)
	}
	return strings.Join(parts, "\n\n")
}
