package methodfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/internal/lexer"
	"github.com/deepnoodle-ai/jlower/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser is a Pratt parser for the expressions and statement headers
// embedded in a method file. Each YAML scalar gets its own parser. Parsing
// stops at the first error.
type Parser struct {
	l *lexer.Lexer

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// err is the first error found in the input.
	err *errors.CompileError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// NewParser returns a parser for input. Token positions are offset by base.
func NewParser(input string, base token.Position) *Parser {
	p := &Parser{
		l:              lexer.NewAt(input, base),
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
	}

	// Prime the token pump
	p.nextToken()
	p.nextToken()

	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.INT, p.parseInt)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TRUE, p.parseBoolean)

	p.registerInfix(token.AND, p.parseInfixExpr)
	p.registerInfix(token.ASSIGN, p.parseAssign)
	p.registerInfix(token.ASTERISK, p.parseInfixExpr)
	p.registerInfix(token.ASTERISK_EQ, p.parseAssign)
	p.registerInfix(token.EQ, p.parseInfixExpr)
	p.registerInfix(token.GT, p.parseInfixExpr)
	p.registerInfix(token.GT_EQ, p.parseInfixExpr)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LT, p.parseInfixExpr)
	p.registerInfix(token.LT_EQ, p.parseInfixExpr)
	p.registerInfix(token.MINUS, p.parseInfixExpr)
	p.registerInfix(token.MINUS_EQ, p.parseAssign)
	p.registerInfix(token.MOD, p.parseInfixExpr)
	p.registerInfix(token.MOD_EQ, p.parseAssign)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(token.OR, p.parseInfixExpr)
	p.registerInfix(token.PLUS, p.parseInfixExpr)
	p.registerInfix(token.PLUS_EQ, p.parseAssign)
	p.registerInfix(token.SLASH, p.parseInfixExpr)
	p.registerInfix(token.SLASH_EQ, p.parseAssign)
	return p
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Err returns the first error found, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) failed() bool {
	return p.err != nil
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	tok, err := p.l.Next()
	p.peekToken = tok
	if err != nil && p.err == nil {
		if compileErr, ok := errors.AsCompileError(err); ok {
			p.err = compileErr
		} else {
			p.setTokenError(tok, errors.E1003, "%v", err)
		}
	}
}

func (p *Parser) setTokenError(t token.Token, code errors.ErrorCode, msg string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = errors.Newf(code, errors.SourceLocation{
		Filename: t.Position.File,
		Line:     t.Position.LineNumber(),
		Column:   t.Position.ColumnNumber(),
	}, msg, args...)
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", t.Literal)
	case token.INT, token.STRING:
		return fmt.Sprintf("literal %q", t.Literal)
	}
	return fmt.Sprintf("%q", t.Literal)
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	if t.Type == token.EOF {
		p.setTokenError(t, errors.E1004, "expected an expression")
		return
	}
	p.setTokenError(t, errors.E1001, "invalid syntax (unexpected %s)", tokenDescription(t))
}

var closers = map[token.Type]string{
	token.RPAREN:   "(",
	token.RBRACKET: "[",
	token.RBRACE:   "{",
}

// expectPeek validates if the next token is of the given type, and advances
// if it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if open, ok := closers[t]; ok && p.peekTokenIs(token.EOF) {
		p.setTokenError(p.peekToken, errors.E1007, "unclosed %q in %s", open, context)
		return false
	}
	if t == token.IDENT {
		p.setTokenError(p.peekToken, errors.E1006, "expected an identifier in %s (got %s)",
			context, tokenDescription(p.peekToken))
		return false
	}
	p.setTokenError(p.peekToken, errors.E1001, "unexpected %s while parsing %s (expected %q)",
		tokenDescription(p.peekToken), context, string(t))
	return false
}

// expectEnd records an error unless the whole input was consumed.
func (p *Parser) expectEnd(context string) bool {
	if p.failed() {
		return false
	}
	if !p.peekTokenIs(token.EOF) {
		p.setTokenError(p.peekToken, errors.E1001, "unexpected %s after %s",
			tokenDescription(p.peekToken), context)
		return false
	}
	return true
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) currentPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.Position, Name: tok.Literal}
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	if p.failed() {
		return nil
	}
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil || p.failed() {
		return nil
	}
	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil || p.failed() {
			return nil
		}
	}
	// Check for postfix operators (++ or --)
	if p.peekTokenIs(token.PLUS_PLUS) || p.peekTokenIs(token.MINUS_MINUS) {
		p.nextToken()
		return p.parsePostfix(left)
	}
	return left
}

func (p *Parser) parseIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

func (p *Parser) parseInt() ast.Expr {
	value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
	if err != nil {
		p.setTokenError(p.curToken, errors.E1008, "invalid integer literal %q", p.curToken.Literal)
		return nil
	}
	return &ast.Int{ValuePos: p.curToken.Position, Literal: p.curToken.Literal, Value: value}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.String{ValuePos: p.curToken.Position, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Bool{ValuePos: p.curToken.Position, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expr {
	return &ast.Null{NullPos: p.curToken.Position}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opTok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	// Fold negative integer literals so "-2147483648" fits in an int.
	if lit, ok := right.(*ast.Int); ok && opTok.Type == token.MINUS && !strings.HasPrefix(lit.Literal, "-") {
		return &ast.Int{ValuePos: opTok.Position, Literal: "-" + lit.Literal, Value: -lit.Value}
	}
	return &ast.Prefix{OpPos: opTok.Position, Op: opTok.Literal, X: right}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	expr := &ast.Infix{X: left, OpPos: p.curToken.Position, Op: p.curToken.Literal}
	precedence := p.currentPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	expr.Y = right
	return expr
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	name, ok := left.(*ast.Ident)
	if !ok {
		p.setTokenError(p.curToken, errors.E1005, "cannot assign to %s", left)
		return nil
	}
	expr := &ast.Assign{Name: name, OpPos: p.curToken.Position, Op: p.curToken.Literal}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	expr.Value = value
	return expr
}

func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	name, ok := left.(*ast.Ident)
	if !ok {
		p.setTokenError(p.curToken, errors.E1005, "cannot apply %s to %s", p.curToken.Literal, left)
		return nil
	}
	return &ast.Postfix{X: name, OpPos: p.curToken.Position, Op: p.curToken.Literal}
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	name, ok := fn.(*ast.Ident)
	if !ok {
		p.setTokenError(p.curToken, errors.E1003, "only named functions can be called")
		return nil
	}
	call := &ast.Call{Fun: name, Lparen: p.curToken.Position}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		call.Rparen = p.curToken.Position
		return call
	}
	p.nextToken()
	for {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek("call arguments", token.RPAREN) {
		return nil
	}
	call.Rparen = p.curToken.Position
	return call
}

// parseType reads a type annotation such as "int", "java/util/List" or
// "String[][]".
func (p *Parser) parseType() string {
	if !p.curTokenIs(token.IDENT) {
		p.setTokenError(p.curToken, errors.E1006, "expected a type name (got %s)", tokenDescription(p.curToken))
		return ""
	}
	var b strings.Builder
	b.WriteString(p.curToken.Literal)
	for p.peekTokenIs(token.SLASH) {
		p.nextToken()
		if !p.expectPeek("type name", token.IDENT) {
			return ""
		}
		b.WriteString("/" + p.curToken.Literal)
	}
	for p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if !p.expectPeek("array type", token.RBRACKET) {
			return ""
		}
		b.WriteString("[]")
	}
	return b.String()
}

// parseDecl reads "name[: type][= value]", with an optional leading "let".
func (p *Parser) parseDecl(requireValue bool) (name *ast.Ident, typ string, value ast.Expr) {
	if p.curTokenIs(token.LET) {
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.setTokenError(p.curToken, errors.E1006, "expected a variable name (got %s)", tokenDescription(p.curToken))
		return nil, "", nil
	}
	name = p.newIdent(p.curToken)
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		if typ = p.parseType(); p.failed() {
			return nil, "", nil
		}
	}
	if !p.peekTokenIs(token.ASSIGN) {
		if requireValue {
			p.expectPeek("declaration", token.ASSIGN)
		}
		return name, typ, nil
	}
	p.nextToken()
	p.nextToken()
	if value = p.parseExpression(LOWEST); value == nil {
		return nil, "", nil
	}
	return name, typ, value
}

// ParseExpr parses input as a single expression.
func (p *Parser) ParseExpr() ast.Expr {
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectEnd("expression") {
		return nil
	}
	return expr
}

// ParseVar parses a declaration such as "total: int = 0".
func (p *Parser) ParseVar(let token.Position) *ast.Var {
	name, typ, value := p.parseDecl(false)
	if name == nil || !p.expectEnd("declaration") {
		return nil
	}
	return &ast.Var{Let: let, Name: name, Type: typ, Value: value}
}

// parseSimpleStmt parses a declaration or an expression statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	if p.curTokenIs(token.LET) {
		let := p.curToken.Position
		name, typ, value := p.parseDecl(false)
		if name == nil {
			return nil
		}
		return &ast.Var{Let: let, Name: name, Type: typ, Value: value}
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{X: expr}
}

// ForHeader is the parsed "init; cond; post" header of a for loop. Each
// part may be empty.
type ForHeader struct {
	Init ast.Stmt
	Cond ast.Expr
	Post ast.Stmt
}

// ParseForHeader parses a three-part for loop header.
func (p *Parser) ParseForHeader() (ForHeader, bool) {
	var h ForHeader
	if !p.curTokenIs(token.SEMICOLON) {
		if h.Init = p.parseSimpleStmt(); h.Init == nil {
			return h, false
		}
		if !p.expectPeek("for loop header", token.SEMICOLON) {
			return h, false
		}
	}
	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		if h.Cond = p.parseExpression(LOWEST); h.Cond == nil {
			return h, false
		}
		if !p.expectPeek("for loop header", token.SEMICOLON) {
			return h, false
		}
	}
	p.nextToken()
	if !p.curTokenIs(token.EOF) {
		if h.Post = p.parseSimpleStmt(); h.Post == nil {
			return h, false
		}
		if !p.expectEnd("for loop header") {
			return h, false
		}
	}
	return h, !p.failed()
}

// ParseForIn parses "name in iterable".
func (p *Parser) ParseForIn() (*ast.Ident, ast.Expr) {
	if p.curTokenIs(token.LET) {
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.setTokenError(p.curToken, errors.E1006, "expected a loop variable (got %s)", tokenDescription(p.curToken))
		return nil, nil
	}
	name := p.newIdent(p.curToken)
	if !p.expectPeek("for-in header", token.IN) {
		return nil, nil
	}
	p.nextToken()
	iter := p.parseExpression(LOWEST)
	if iter == nil || !p.expectEnd("for-in header") {
		return nil, nil
	}
	return name, iter
}

// ParseForOf parses "name of iterable" or "pattern of iterable".
func (p *Parser) ParseForOf() (*ast.Ident, ast.Pattern, ast.Expr) {
	if p.curTokenIs(token.LET) {
		p.nextToken()
	}
	var name *ast.Ident
	var pattern ast.Pattern
	switch p.curToken.Type {
	case token.IDENT:
		name = p.newIdent(p.curToken)
	case token.LBRACKET, token.LBRACE:
		if pattern = p.parsePattern(); pattern == nil {
			return nil, nil, nil
		}
	default:
		p.setTokenError(p.curToken, errors.E1006, "expected a loop variable or pattern (got %s)", tokenDescription(p.curToken))
		return nil, nil, nil
	}
	if !p.expectPeek("for-of header", token.OF) {
		return nil, nil, nil
	}
	p.nextToken()
	iter := p.parseExpression(LOWEST)
	if iter == nil || !p.expectEnd("for-of header") {
		return nil, nil, nil
	}
	return name, pattern, iter
}

// ParsePattern parses a destructuring pattern such as "[key, value]".
func (p *Parser) ParsePattern() ast.Pattern {
	pattern := p.parsePattern()
	if pattern == nil || !p.expectEnd("pattern") {
		return nil
	}
	return pattern
}

func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.LBRACKET:
		if pattern := p.parseArrayPattern(); pattern != nil {
			return pattern
		}
	case token.LBRACE:
		if pattern := p.parseObjectPattern(); pattern != nil {
			return pattern
		}
	default:
		p.setTokenError(p.curToken, errors.E1003, "expected \"[\" or \"{\" to start a pattern (got %s)", tokenDescription(p.curToken))
	}
	return nil
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	pattern := &ast.ArrayPattern{Lbrack: p.curToken.Position}
	p.nextToken()
	for !p.curTokenIs(token.RBRACKET) {
		switch p.curToken.Type {
		case token.COMMA:
			pattern.Elements = append(pattern.Elements, nil)
			p.nextToken()
			continue
		case token.IDENT:
			pattern.Elements = append(pattern.Elements, p.newIdent(p.curToken))
		case token.EOF:
			p.setTokenError(p.curToken, errors.E1007, "unclosed \"[\" in pattern")
			return nil
		default:
			p.setTokenError(p.curToken, errors.E1006, "expected an identifier in pattern (got %s)", tokenDescription(p.curToken))
			return nil
		}
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		} else if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007, "unclosed \"[\" in pattern")
			return nil
		} else if !p.curTokenIs(token.RBRACKET) {
			p.setTokenError(p.curToken, errors.E1001, "unexpected %s in pattern", tokenDescription(p.curToken))
			return nil
		}
	}
	if p.failed() {
		return nil
	}
	pattern.Rbrack = p.curToken.Position
	return pattern
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	pattern := &ast.ObjectPattern{Lbrace: p.curToken.Position}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		var binding ast.ObjectBinding
		switch p.curToken.Type {
		case token.IDENT:
			binding.Key = p.curToken.Literal
			binding.Name = p.newIdent(p.curToken)
		case token.STRING:
			binding.Key = p.curToken.Literal
		case token.EOF:
			p.setTokenError(p.curToken, errors.E1007, "unclosed \"{\" in pattern")
			return nil
		default:
			p.setTokenError(p.curToken, errors.E1006, "expected a key in pattern (got %s)", tokenDescription(p.curToken))
			return nil
		}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			if !p.expectPeek("pattern", token.IDENT) {
				return nil
			}
			binding.Name = p.newIdent(p.curToken)
		} else if binding.Name == nil {
			p.setTokenError(p.peekToken, errors.E1006, "key %q needs a variable name", binding.Key)
			return nil
		}
		pattern.Bindings = append(pattern.Bindings, binding)
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		} else if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007, "unclosed \"{\" in pattern")
			return nil
		} else if !p.curTokenIs(token.RBRACE) {
			p.setTokenError(p.curToken, errors.E1001, "unexpected %s in pattern", tokenDescription(p.curToken))
			return nil
		}
	}
	if p.failed() {
		return nil
	}
	pattern.Rbrace = p.curToken.Position
	return pattern
}

// ParseUsing parses a comma separated list of resource declarations, such
// as `in = open("a"), out: Closeable = open("b")`.
func (p *Parser) ParseUsing() []*ast.UsingDecl {
	var decls []*ast.UsingDecl
	for {
		name, typ, value := p.parseDecl(true)
		if name == nil || value == nil {
			return nil
		}
		decls = append(decls, &ast.UsingDecl{Name: name, Type: typ, Value: value})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectEnd("using declarations") {
		return nil
	}
	return decls
}
