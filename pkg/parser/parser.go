// Package parser implements the Lox recursive-descent parser.
package parser

import (
	"errors"
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/token"
)

// maxArgs is the limit on call arguments and function parameters.
const maxArgs = 255

type parser struct {
	tokens  []token.Token
	pos     int
	diags   []diagnostics.Diagnostic
	fnDepth int
}

// ParseError carries every diagnostic recorded during a failed parse.
type ParseError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = diagnostics.FormatDiagnostic(d, true)
	}
	return strings.Join(msgs, "\n")
}

// Parse tokenizes source and parses it into a statement list. It returns
// the lex diagnostics if scanning failed, otherwise the parse diagnostics.
func Parse(source string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, le.Diagnostics
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), 0, "")}
	}

	stmts, err := ParseTokens(tokens)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, pe.Diagnostics
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EParse, err.Error(), 0, "")}
	}
	return stmts, nil
}

// ParseTokens parses a token stream ending in EOF. Parsing recovers from
// each syntax error at the next statement boundary so that one call reports
// as many errors as possible; if any were found no statements are returned.
func ParseTokens(tokens []token.Token) ([]ast.Stmt, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &parser{tokens: tokens}

	stmts := []ast.Stmt{}
	for !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}

	if len(p.diags) > 0 {
		return nil, &ParseError{Diagnostics: p.diags}
	}
	return stmts, nil
}

// IsIncomplete reports whether diags describe input that merely ended too
// early: every problem sits at end of input or is an unterminated string.
// The REPL uses this to keep reading continuation lines.
func IsIncomplete(diags []diagnostics.Diagnostic) bool {
	if len(diags) == 0 {
		return false
	}
	for _, d := range diags {
		switch {
		case d.Code == diagnostics.EParse && d.Where == diagnostics.AtEnd:
		case d.Code == diagnostics.ELex && d.Message == "Unterminated string.":
		default:
			return false
		}
	}
	return true
}

func (p *parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *parser) peek() token.TokenType {
	return p.current().Type
}

func (p *parser) atEnd() bool {
	return p.peek() == token.EOF
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(typ token.TokenType) bool {
	return !p.atEnd() && p.peek() == typ
}

func (p *parser) match(types ...token.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(typ token.TokenType, msg string) (token.Token, bool) {
	if p.check(typ) {
		return p.advance(), true
	}
	p.addError(p.current(), msg)
	return p.current(), false
}

func (p *parser) addError(tok token.Token, msg string) {
	where := diagnostics.AtLexeme(tok.Lexeme)
	if tok.Type == token.EOF {
		where = diagnostics.AtEnd
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, tok.Line, where))
}

// synchronize discards tokens until a likely statement boundary: just after
// a semicolon, or just before a keyword that starts a declaration.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek() {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- Declarations ---

func (p *parser) declaration() ast.Stmt {
	var s ast.Stmt
	switch {
	case p.match(token.Fun):
		if fn := p.function(); fn != nil {
			s = fn
		}
	case p.match(token.Var):
		s = p.varDeclaration()
	default:
		s = p.statement()
	}
	if s == nil {
		p.synchronize()
	}
	return s
}

func (p *parser) function() *ast.Function {
	name, ok := p.expect(token.Identifier, "Expect function name.")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LeftParen, "Expect '(' after function name."); !ok {
		return nil
	}

	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.addError(p.current(), "Can't have more than 255 parameters.")
			}
			param, ok := p.expect(token.Identifier, "Expect parameter name.")
			if !ok {
				return nil
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after parameters."); !ok {
		return nil
	}
	if _, ok := p.expect(token.LeftBrace, "Expect '{' before function body."); !ok {
		return nil
	}

	p.fnDepth++
	body, ok := p.block()
	p.fnDepth--
	if !ok {
		return nil
	}

	return &ast.Function{
		Name:   name,
		Params: params,
		Body:   body,
	}
}

func (p *parser) varDeclaration() ast.Stmt {
	name, ok := p.expect(token.Identifier, "Expect variable name.")
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
		if init == nil {
			return nil
		}
	}

	if _, ok := p.expect(token.Semicolon, "Expect ';' after variable declaration."); !ok {
		return nil
	}
	return &ast.Var{Name: name, Initializer: init}
}

// --- Statements ---

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.LeftBrace):
		line := p.previous().Line
		stmts, ok := p.block()
		if !ok {
			return nil
		}
		return &ast.Block{Statements: stmts, Lineno: line}
	default:
		return p.expressionStatement()
	}
}

// block parses declarations up to the closing brace. The opening brace has
// already been consumed. Errors inside the block are recovered from locally.
func (p *parser) block() ([]ast.Stmt, bool) {
	stmts := []ast.Stmt{}
	for !p.check(token.RightBrace) && !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	if _, ok := p.expect(token.RightBrace, "Expect '}' after block."); !ok {
		return nil, false
	}
	return stmts, true
}

// forStatement desugars a for loop into its while-loop equivalent:
//
//	{ init; while (cond) { body; incr; } }
func (p *parser) forStatement() ast.Stmt {
	forTok := p.previous()
	if _, ok := p.expect(token.LeftParen, "Expect '(' after 'for'."); !ok {
		return nil
	}

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		if init = p.varDeclaration(); init == nil {
			return nil
		}
	default:
		if init = p.expressionStatement(); init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		if cond = p.expression(); cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after loop condition."); !ok {
		return nil
	}

	var incr ast.Expr
	if !p.check(token.RightParen) {
		if incr = p.expression(); incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after for clauses."); !ok {
		return nil
	}

	body := p.statement()
	if body == nil {
		return nil
	}

	if incr != nil {
		body = &ast.Block{
			Statements: []ast.Stmt{body, &ast.Expression{Expression: incr}},
			Lineno:     forTok.Line,
		}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true, Lineno: forTok.Line}
	}
	body = &ast.While{Condition: cond, Body: body}
	if init != nil {
		body = &ast.Block{Statements: []ast.Stmt{init, body}, Lineno: forTok.Line}
	}
	return body
}

func (p *parser) ifStatement() ast.Stmt {
	if _, ok := p.expect(token.LeftParen, "Expect '(' after 'if'."); !ok {
		return nil
	}
	cond := p.expression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after if condition."); !ok {
		return nil
	}

	then := p.statement()
	if then == nil {
		return nil
	}
	// The else binds to the nearest if: the innermost ifStatement call
	// sees it first.
	var els ast.Stmt
	if p.match(token.Else) {
		if els = p.statement(); els == nil {
			return nil
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: els}
}

func (p *parser) printStatement() ast.Stmt {
	value := p.expression()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after value."); !ok {
		return nil
	}
	return &ast.Print{Expression: value}
}

func (p *parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	if p.fnDepth == 0 {
		p.addError(keyword, "Can't return from top-level code.")
	}

	var value ast.Expr
	if !p.check(token.Semicolon) {
		if value = p.expression(); value == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after return value."); !ok {
		return nil
	}
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *parser) whileStatement() ast.Stmt {
	if _, ok := p.expect(token.LeftParen, "Expect '(' after 'while'."); !ok {
		return nil
	}
	cond := p.expression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after condition."); !ok {
		return nil
	}
	body := p.statement()
	if body == nil {
		return nil
	}
	return &ast.While{Condition: cond, Body: body}
}

func (p *parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after expression."); !ok {
		return nil
	}
	return &ast.Expression{Expression: expr}
}

// --- Expressions ---

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	expr := p.or()
	if expr == nil {
		return nil
	}

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment() // right-associative
		if value == nil {
			return nil
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}
		}
		// Reported without unwinding: the parser is not confused, so the
		// rest of the statement is still parsed normally.
		p.addError(equals, "Invalid assignment target.")
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for expr != nil && p.match(token.Or) {
		op := p.previous()
		right := p.and()
		if right == nil {
			return nil
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for expr != nil && p.match(token.And) {
		op := p.previous()
		right := p.equality()
		if right == nil {
			return nil
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

// binary parses one left-associative precedence level.
func (p *parser) binary(next func() ast.Expr, ops ...token.TokenType) ast.Expr {
	expr := next()
	for expr != nil && p.match(ops...) {
		op := p.previous()
		right := next()
		if right == nil {
			return nil
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() ast.Expr {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() ast.Expr {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		if right == nil {
			return nil
		}
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for expr != nil && p.match(token.LeftParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.addError(p.current(), "Can't have more than 255 arguments.")
			}
			arg := p.expression()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}

	paren, ok := p.expect(token.RightParen, "Expect ')' after arguments.")
	if !ok {
		return nil
	}
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *parser) primary() ast.Expr {
	tok := p.current()
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false, Lineno: tok.Line}
	case p.match(token.True):
		return &ast.Literal{Value: true, Lineno: tok.Line}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil, Lineno: tok.Line}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: tok.Literal, Lineno: tok.Line}
	case p.match(token.Identifier):
		return &ast.Variable{Name: tok}
	case p.match(token.LeftParen):
		expr := p.expression()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(token.RightParen, "Expect ')' after expression."); !ok {
			return nil
		}
		return &ast.Grouping{Expression: expr}
	}
	p.addError(tok, "Expect expression.")
	return nil
}
