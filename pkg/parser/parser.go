// Package parser implements the Dinglebob recursive-descent parser.
package parser

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/dinglebob/dingle/pkg/ast"
	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/lexer"
)

// MaxParams bounds both parameter lists and call argument lists.
const MaxParams = 255

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST. Parsing stops at the
// first error.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already tokenized stream ending in TokEOF.
func ParseTokens(tokens []lexer.Token) (*ast.Program, []diagnostics.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		tokens = append(tokens, lexer.Token{Type: lexer.TokEOF})
	}
	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) match(typ lexer.TokenType) bool {
	if p.peek() != typ {
		return false
	}
	p.advance()
	return true
}

// expect consumes a token of the given type or records msg at the current token.
func (p *parser) expect(typ lexer.TokenType, msg string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.errorAt(tok, msg)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) errorAt(tok lexer.Token, msg string) {
	span := tok.Span
	d := diagnostics.MakeDiag(diagnostics.EParse, fmt.Sprintf("%s Found %s.", msg, describe(tok)), &span, "")
	d.Incomplete = tok.Type == lexer.TokEOF
	p.diags = append(p.diags, d)
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		stmt := p.parseDeclaration()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span:       ast.Join(startSpan, p.current().Span),
		Statements: stmts,
	}
}

// --- Declarations ---

func (p *parser) parseDeclaration() ast.Stmt {
	switch p.peek() {
	case lexer.TokLet:
		return nilStmt(p.parseVarDecl())
	case lexer.TokDefine:
		return nilStmt(p.parseFunctionDecl())
	}
	return p.parseStatement()
}

func (p *parser) parseVarDecl() *ast.VarStmt {
	start := p.advance() // consume 'let'
	name, ok := p.expect(lexer.TokIdent, "Expected an identifier after 'let' (variable name).")
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.match(lexer.TokEquals) {
		init = p.parseExpr()
		if init == nil {
			return nil
		}
	}

	end, ok := p.expect(lexer.TokSemicolon, "Expected ';' after variable declaration.")
	if !ok {
		return nil
	}
	return &ast.VarStmt{
		Span:     ast.Join(start.Span, end.Span),
		Name:     name.Value,
		NameSpan: name.Span,
		Init:     init,
	}
}

func (p *parser) parseFunctionDecl() *ast.FunctionStmt {
	start := p.advance() // consume 'define'
	name, ok := p.expect(lexer.TokIdent, "Expected an identifier after 'define' (function name).")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokLParen, "Expected '(' after function name in function declaration."); !ok {
		return nil
	}
	params, ok := p.parseParams("function declaration")
	if !ok {
		return nil
	}
	if p.peek() != lexer.TokLBrace {
		p.errorAt(p.current(), "Expected '{' to start function body.")
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.FunctionStmt{
		Span:     ast.Join(start.Span, body.Span),
		Name:     name.Value,
		NameSpan: name.Span,
		Params:   params,
		Body:     body.Stmts,
	}
}

// parseParams parses a parameter list after '(' through the closing ')'.
func (p *parser) parseParams(context string) ([]ast.Param, bool) {
	var params []ast.Param
	if p.peek() != lexer.TokRParen {
		for {
			tok, ok := p.expect(lexer.TokIdent, fmt.Sprintf("Expected an identifier as a parameter name in %s.", context))
			if !ok {
				return nil, false
			}
			if len(params) >= MaxParams {
				p.errorAt(tok, fmt.Sprintf("Too many parameters: functions can have at most %d parameters.", MaxParams))
				return nil, false
			}
			params = append(params, ast.Param{Name: tok.Value, Span: tok.Span})
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "Expected ')' after parameter list."); !ok {
		return nil, false
	}
	return params, true
}

// --- Statements ---

func (p *parser) parseStatement() ast.Stmt {
	switch p.peek() {
	case lexer.TokPrint:
		return nilStmt(p.parsePrint())
	case lexer.TokReturn:
		return nilStmt(p.parseReturn())
	case lexer.TokBreak:
		return nilStmt(p.parseBreak())
	case lexer.TokIf:
		return nilStmt(p.parseIf())
	case lexer.TokWhile:
		return nilStmt(p.parseWhile())
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokLBrace:
		return nilStmt(p.parseBlock())
	case lexer.TokClass, lexer.TokSuper, lexer.TokThis:
		tok := p.current()
		p.errorAt(tok, fmt.Sprintf("'%s' is reserved and not supported.", tok.Value))
		return nil
	}
	return nilStmt(p.parseExprStmt())
}

// nilStmt converts a typed nil statement pointer into an untyped nil Stmt.
func nilStmt[T interface {
	ast.Stmt
	comparable
}](s T) ast.Stmt {
	var zero T
	if s == zero {
		return nil
	}
	return s
}

func (p *parser) parsePrint() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	end, ok := p.expect(lexer.TokSemicolon, "Expected ';' after expression in 'print' statement.")
	if !ok {
		return nil
	}
	return &ast.PrintStmt{Span: ast.Join(start.Span, end.Span), Expr: expr}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	var value ast.Expr
	if p.peek() != lexer.TokSemicolon {
		value = p.parseExpr()
		if value == nil {
			return nil
		}
	}
	end, ok := p.expect(lexer.TokSemicolon, "Expected ';' after return statement.")
	if !ok {
		return nil
	}
	return &ast.ReturnStmt{Span: ast.Join(start.Span, end.Span), Keyword: start.Span, Value: value}
}

func (p *parser) parseBreak() *ast.BreakStmt {
	start := p.advance() // consume 'break'
	end, ok := p.expect(lexer.TokSemicolon, "Expected ';' after 'break'.")
	if !ok {
		return nil
	}
	return &ast.BreakStmt{Span: ast.Join(start.Span, end.Span)}
}

func (p *parser) parseIf() *ast.IfStmt {
	start := p.advance() // consume 'if'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if p.peek() != lexer.TokLBrace {
		p.errorAt(p.current(), "Expected a block '{ ... }' after 'if' condition.")
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}

	stmt := &ast.IfStmt{Span: ast.Join(start.Span, then.Span), Cond: cond, Then: then}
	if !p.match(lexer.TokElse) {
		return stmt
	}
	switch p.peek() {
	case lexer.TokIf:
		elseIf := p.parseIf()
		if elseIf == nil {
			return nil
		}
		stmt.Else = elseIf
	case lexer.TokLBrace:
		elseBlock := p.parseBlock()
		if elseBlock == nil {
			return nil
		}
		stmt.Else = elseBlock
	default:
		p.errorAt(p.current(), "Expected a block '{ ... }' after 'else'.")
		return nil
	}
	stmt.Span = ast.Join(start.Span, stmt.Else.NodeSpan())
	return stmt
}

func (p *parser) parseWhile() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if p.peek() != lexer.TokLBrace {
		p.errorAt(p.current(), "Expected a block '{ ... }' after 'while' condition.")
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Span: ast.Join(start.Span, body.Span), Cond: cond, Body: body}
}

// parseFor desugars `for (init; cond; incr) body` into
// `{ init; while cond { body incr; } }`.
func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // consume 'for'
	if _, ok := p.expect(lexer.TokLParen, "Expected '(' after 'for'."); !ok {
		return nil
	}

	var init ast.Stmt
	switch p.peek() {
	case lexer.TokSemicolon:
		p.advance()
	case lexer.TokLet:
		init = nilStmt(p.parseVarDecl())
		if init == nil {
			return nil
		}
	default:
		init = nilStmt(p.parseExprStmt())
		if init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if p.peek() != lexer.TokSemicolon {
		cond = p.parseExpr()
		if cond == nil {
			return nil
		}
	}
	semi, ok := p.expect(lexer.TokSemicolon, "Expected ';' after loop condition in 'for' statement.")
	if !ok {
		return nil
	}
	if cond == nil {
		cond = &ast.BoolLiteral{Span: semi.Span, Value: true}
	}

	var incr ast.Expr
	if p.peek() != lexer.TokRParen {
		incr = p.parseExpr()
		if incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "Expected ')' after for-clause list."); !ok {
		return nil
	}

	if p.peek() != lexer.TokLBrace {
		p.errorAt(p.current(), "Expected a block '{ ... }' after 'for (...)'.")
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}

	loopBody := body
	if incr != nil {
		loopBody = &ast.BlockStmt{
			Span:  body.Span,
			Stmts: []ast.Stmt{body, &ast.ExprStmt{Span: incr.NodeSpan(), Expr: incr}},
		}
	}
	var loop ast.Stmt = &ast.WhileStmt{
		Span: ast.Join(start.Span, body.Span),
		Cond: cond,
		Body: loopBody,
	}
	if init != nil {
		loop = &ast.BlockStmt{
			Span:  ast.Join(start.Span, body.Span),
			Stmts: []ast.Stmt{init, loop},
		}
	}
	return loop
}

func (p *parser) parseBlock() *ast.BlockStmt {
	start, ok := p.expect(lexer.TokLBrace, "Expected '{' to start block.")
	if !ok {
		return nil
	}

	var stmts []ast.Stmt
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		stmt := p.parseDeclaration()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	end, ok := p.expect(lexer.TokRBrace, "Expected '}' to close block.")
	if !ok {
		return nil
	}
	return &ast.BlockStmt{Span: ast.Join(start.Span, end.Span), Stmts: stmts}
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	end, ok := p.expect(lexer.TokSemicolon, "Expected ';' after expression.")
	if !ok {
		return nil
	}
	return &ast.ExprStmt{Span: ast.Join(expr.NodeSpan(), end.Span), Expr: expr}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment is right-associative. The target is left unchecked; the
// interpreter rejects targets that are not variables or index expressions.
func (p *parser) parseAssignment() ast.Expr {
	target := p.parseOr()
	if target == nil {
		return nil
	}
	if p.peek() != lexer.TokEquals {
		return target
	}
	equals := p.advance()
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	return &ast.AssignExpr{
		Span:   ast.Join(target.NodeSpan(), value.NodeSpan()),
		Target: target,
		Equals: equals.Span,
		Value:  value,
	}
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.match(lexer.TokOr) {
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  ast.Join(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.match(lexer.TokAnd) {
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  ast.Join(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

var (
	equalityOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokEqEq:   ast.OpEqEq,
		lexer.TokBangEq: ast.OpNeq,
	}
	comparisonOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokGt:   ast.OpGt,
		lexer.TokGtEq: ast.OpGtEq,
		lexer.TokLt:   ast.OpLt,
		lexer.TokLtEq: ast.OpLtEq,
	}
	termOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPlus:  ast.OpAdd,
		lexer.TokMinus: ast.OpSub,
	}
	factorOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar:    ast.OpMul,
		lexer.TokSlash:   ast.OpDiv,
		lexer.TokPercent: ast.OpMod,
	}
)

// parseBinary parses a left-associative chain of the operators in ops,
// with operands parsed by next.
func (p *parser) parseBinary(ops map[lexer.TokenType]ast.BinaryOp, next func() ast.Expr) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		opTok := p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:   ast.Join(left.NodeSpan(), right.NodeSpan()),
			Op:     op,
			OpSpan: opTok.Span,
			Left:   left,
			Right:  right,
		}
	}
}

func (p *parser) parseEquality() ast.Expr {
	return p.parseBinary(equalityOps, p.parseComparison)
}

func (p *parser) parseComparison() ast.Expr {
	return p.parseBinary(comparisonOps, p.parseTerm)
}

func (p *parser) parseTerm() ast.Expr {
	return p.parseBinary(termOps, p.parseFactor)
}

func (p *parser) parseFactor() ast.Expr {
	return p.parseBinary(factorOps, p.parseUnary)
}

func (p *parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.peek() {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokBang:
		op = ast.OpNot
	default:
		return p.parsePostfix()
	}
	start := p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		Span:    ast.Join(start.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

// parsePostfix parses calls and index expressions, which may be chained:
// f(1)(2), xs[0][1], fs[0](x).
func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokLParen:
			p.advance()
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			paren := p.previous()
			expr = &ast.CallExpr{
				Span:   ast.Join(expr.NodeSpan(), paren.Span),
				Callee: expr,
				Paren:  paren.Span,
				Args:   args,
			}
		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			bracket, ok := p.expect(lexer.TokRBracket, "Expected ']' to close index expression.")
			if !ok {
				return nil
			}
			expr = &ast.IndexExpr{
				Span:    ast.Join(expr.NodeSpan(), bracket.Span),
				Target:  expr,
				Bracket: bracket.Span,
				Index:   index,
			}
		default:
			return expr
		}
	}
}

func (p *parser) parseArgs() ([]ast.Expr, bool) {
	var args []ast.Expr
	if p.peek() != lexer.TokRParen {
		for {
			if len(args) >= MaxParams {
				p.errorAt(p.current(), fmt.Sprintf("Too many arguments: function calls can have at most %d arguments.", MaxParams))
				return nil, false
			}
			arg := p.parseExpr()
			if arg == nil {
				return nil, false
			}
			args = append(args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "Expected ')' after argument list."); !ok {
		return nil, false
	}
	return args, true
}

// maxInt is the largest integer literal representable as a 128-bit signed value.
var maxInt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		val, ok := new(big.Int).SetString(tok.Value, 10)
		if !ok {
			p.errorAt(tok, "Invalid number literal.")
			return nil
		}
		if val.Cmp(maxInt) > 0 {
			// Too wide for Int; read it as a Float instead.
			f, _ := new(big.Float).SetInt(val).Float64()
			return &ast.FloatLiteral{Span: tok.Span, Value: f}
		}
		return &ast.IntLiteral{Span: tok.Span, Value: val}

	case lexer.TokFloatLit:
		p.advance()
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorAt(tok, "Invalid number literal.")
			return nil
		}
		return &ast.FloatLiteral{Span: tok.Span, Value: val}

	case lexer.TokStringLit:
		p.advance()
		return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: false}

	case lexer.TokNone:
		p.advance()
		return &ast.NoneLiteral{Span: tok.Span}

	case lexer.TokIdent:
		p.advance()
		return &ast.VariableExpr{Span: tok.Span, Name: tok.Value}

	case lexer.TokLambda:
		return nilExpr(p.parseLambda())

	case lexer.TokLBracket:
		return nilExpr(p.parseListExpr())

	case lexer.TokLParen:
		p.advance()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		end, ok := p.expect(lexer.TokRParen, "Expected ')' to close parenthesized expression.")
		if !ok {
			return nil
		}
		return &ast.GroupingExpr{Span: ast.Join(tok.Span, end.Span), Inner: inner}

	case lexer.TokEOF:
		p.errorAt(tok, "Unexpected end of input.")
		return nil

	default:
		p.errorAt(tok, "Expected an expression.")
		return nil
	}
}

// nilExpr converts a typed nil expression pointer into an untyped nil Expr.
func nilExpr[T interface {
	ast.Expr
	comparable
}](e T) ast.Expr {
	var zero T
	if e == zero {
		return nil
	}
	return e
}

func (p *parser) parseLambda() *ast.LambdaExpr {
	start := p.advance() // consume 'lambda'
	if _, ok := p.expect(lexer.TokLParen, "Expected '(' after 'lambda'."); !ok {
		return nil
	}
	params, ok := p.parseParams("lambda expression")
	if !ok {
		return nil
	}
	if p.peek() != lexer.TokLBrace {
		p.errorAt(p.current(), "Expected a block '{ ... }' for lambda body.")
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.LambdaExpr{
		Span:   ast.Join(start.Span, body.Span),
		Params: params,
		Body:   body.Stmts,
	}
}

func (p *parser) parseListExpr() *ast.ListExpr {
	start := p.advance() // consume '['

	var elements []ast.Expr
	if p.peek() != lexer.TokRBracket {
		for {
			elem := p.parseExpr()
			if elem == nil {
				return nil
			}
			elements = append(elements, elem)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}

	end, ok := p.expect(lexer.TokRBracket, "Expected ']' to close list literal.")
	if !ok {
		return nil
	}
	return &ast.ListExpr{
		Span:     ast.Join(start.Span, end.Span),
		Elements: elements,
	}
}
