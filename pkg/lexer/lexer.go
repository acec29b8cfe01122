// Package lexer implements the Dinglebob tokenizer.
package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokLet TokenType = iota
	TokDefine
	TokLambda
	TokPrint
	TokReturn
	TokBreak
	TokIf
	TokElse
	TokWhile
	TokFor
	TokAnd
	TokOr
	TokTrue
	TokFalse
	TokNone

	// Reserved words, scanned but rejected by the parser
	TokClass
	TokSuper
	TokThis

	// Literals
	TokIntLit
	TokFloatLit
	TokStringLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokComma     // ,
	TokDot       // .
	TokSemicolon // ;

	// Operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %
	TokBang    // !
	TokBangEq  // !=
	TokEquals  // =
	TokEqEq    // ==
	TokLt      // <
	TokLtEq    // <=
	TokGt      // >
	TokGtEq    // >=

	// Special
	TokEOF
)

var tokenNames = map[TokenType]string{
	TokLet: "let", TokDefine: "define", TokLambda: "lambda", TokPrint: "print",
	TokReturn: "return", TokBreak: "break", TokIf: "if", TokElse: "else",
	TokWhile: "while", TokFor: "for", TokAnd: "and", TokOr: "or",
	TokTrue: "true", TokFalse: "false", TokNone: "none",
	TokClass: "class", TokSuper: "super", TokThis: "this",
	TokIntLit: "integer", TokFloatLit: "float", TokStringLit: "string",
	TokIdent: "identifier",
	TokLParen: "(", TokRParen: ")", TokLBrace: "{", TokRBrace: "}",
	TokLBracket: "[", TokRBracket: "]", TokComma: ",", TokDot: ".",
	TokSemicolon: ";", TokPlus: "+", TokMinus: "-", TokStar: "*",
	TokSlash: "/", TokPercent: "%", TokBang: "!", TokBangEq: "!=",
	TokEquals: "=", TokEqEq: "==", TokLt: "<", TokLtEq: "<=",
	TokGt: ">", TokGtEq: ">=",
	TokEOF: "end of input",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var keywords = map[string]TokenType{
	"let":    TokLet,
	"define": TokDefine,
	"lambda": TokLambda,
	"print":  TokPrint,
	"return": TokReturn,
	"break":  TokBreak,
	"if":     TokIf,
	"else":   TokElse,
	"while":  TokWhile,
	"for":    TokFor,
	"and":    TokAnd,
	"or":     TokOr,
	"true":   TokTrue,
	"false":  TokFalse,
	"none":   TokNone,
	"class":  TokClass,
	"super":  TokSuper,
	"this":   TokThis,
}

// IsKeyword reports whether name is reserved and cannot be used as an identifier.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

// mark is a saved scanner position used as a token start.
type mark struct {
	pos, line, col int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) mark() mark {
	return mark{pos: s.pos, line: s.line, col: s.col}
}

func (s *scanner) span(m mark) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: m.line,
		StartCol:  m.col,
		EndLine:   s.line,
		EndCol:    s.col,
		Start:     m.pos,
		End:       s.pos,
	}
}

func (s *scanner) token(typ TokenType, m mark) Token {
	return Token{Type: typ, Value: s.source[m.pos:s.pos], Span: s.span(m)}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else if ch == '/' && s.peekAt(1) == '/' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanString reads a string delimited by the quote character under the
// cursor. Strings may span lines and have no escape sequences.
func (s *scanner) scanString() (Token, error) {
	m := s.mark()
	quote := s.advance()

	for !s.atEnd() {
		ch := s.peek()
		if ch == quote {
			s.advance()
			return Token{
				Type:  TokStringLit,
				Value: s.source[m.pos+1 : s.pos-1],
				Span:  s.span(m),
			}, nil
		}
		if ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(m, "invalid UTF-8 character in string")
			}
			for i := 0; i < size; i++ {
				s.advance()
			}
			continue
		}
		s.advance()
	}
	le := s.lexError(m, "unterminated string literal")
	le.Diag.Incomplete = true
	return Token{}, le
}

func (s *scanner) scanNumber() (Token, error) {
	m := s.mark()

	if s.peek() == '0' && isDigit(s.peekAt(1)) {
		s.advance()
		return Token{}, s.lexError(m, "leading zeros are not allowed in number literals")
	}
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() != '.' {
		return s.token(TokIntLit, m), nil
	}
	if !isDigit(s.peekAt(1)) {
		s.advance()
		return Token{}, s.lexError(m, "expected digits after '.' in number literal")
	}
	s.advance() // consume '.'
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	return s.token(TokFloatLit, m), nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	m := s.mark()
	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[m.pos:s.pos]
	if tokType, ok := keywords[text]; ok {
		return s.token(tokType, m)
	}
	return s.token(TokIdent, m)
}

func (s *scanner) lexError(m mark, msg string) *LexError {
	span := s.span(m)
	if span.End == span.Start {
		span.End++
		span.EndCol++
	}
	diag := diagnostics.MakeDiag(diagnostics.ELex, msg, &span, "")
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

var singleChar = map[byte]TokenType{
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	'[': TokLBracket,
	']': TokRBracket,
	',': TokComma,
	'.': TokDot,
	';': TokSemicolon,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'%': TokPercent,
}

// withEquals maps an operator character to its plain and '='-suffixed forms.
var withEquals = map[byte][2]TokenType{
	'!': {TokBang, TokBangEq},
	'=': {TokEquals, TokEqEq},
	'<': {TokLt, TokLtEq},
	'>': {TokGt, TokGtEq},
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	m := s.mark()
	if s.atEnd() {
		return Token{Type: TokEOF, Span: s.span(m)}, nil
	}

	ch := s.peek()
	if typ, ok := singleChar[ch]; ok {
		s.advance()
		return s.token(typ, m), nil
	}
	if pair, ok := withEquals[ch]; ok {
		s.advance()
		if s.peek() == '=' {
			s.advance()
			return s.token(pair[1], m), nil
		}
		return s.token(pair[0], m), nil
	}

	switch {
	case isDigit(ch):
		return s.scanNumber()
	case ch == '"' || ch == '\'':
		return s.scanString()
	case isAlpha(ch):
		return s.scanIdentOrKeyword(), nil
	}

	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	for i := 0; i < size; i++ {
		s.advance()
	}
	if r == utf8.RuneError && size == 1 {
		return Token{}, s.lexError(m, fmt.Sprintf("invalid byte 0x%02x", ch))
	}
	return Token{}, s.lexError(m, fmt.Sprintf("unexpected character '%c'", r))
}

// Tokenize breaks source code into a slice of tokens. The last token is
// always TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
