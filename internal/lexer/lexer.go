// Package lexer splits the expressions embedded in method files into tokens.
//
// Expressions are short, so the lexer works on a string and tracks the
// position of each token relative to a base position that points at the
// expression's first character inside the enclosing file.
package lexer

import (
	"strings"

	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/internal/token"
)

// Lexer produces tokens from an expression string.
type Lexer struct {
	input    string
	pos      int // offset of the next unread byte
	line     int
	column   int
	base     token.Position
	filename string
}

// New returns a lexer for input, positioned at line 0, column 0.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// NewAt returns a lexer whose token positions are offset by base. Only the
// first line is offset by base.Column.
func NewAt(input string, base token.Position) *Lexer {
	return &Lexer{input: input, base: base, filename: base.File}
}

// SetFilename sets the file recorded in token positions and errors.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the file name set on the lexer.
func (l *Lexer) Filename() string {
	return l.filename
}

// Position returns the position of the next unread character.
func (l *Lexer) Position() token.Position {
	pos := token.Position{
		Line:   l.base.Line + l.line,
		Column: l.column,
		File:   l.filename,
	}
	if l.line == 0 {
		pos.Column += l.base.Column
	}
	return pos
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		l.pos++
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.advance(1)
		default:
			return
		}
	}
}

// Next returns the next token. At the end of input it returns an EOF token
// on every call.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()
	pos := l.Position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Position: pos}, nil
	}
	ch := l.input[l.pos]
	switch {
	case isLetter(ch):
		return l.readIdentifier(pos), nil
	case isDigit(ch):
		return l.readNumber(pos)
	case ch == '"' || ch == '\'':
		return l.readString(pos, ch)
	}
	if tok, ok := l.readOperator(pos); ok {
		return tok, nil
	}
	l.advance(1)
	tok := token.Token{Type: token.ILLEGAL, Literal: string(ch), Position: pos}
	return tok, l.errorf(errors.E1001, pos, "unexpected character %q", ch)
}

// operators is ordered so that longer operators match first.
var operators = []token.Type{
	token.AND, token.OR, token.EQ, token.NOT_EQ, token.LT_EQ, token.GT_EQ,
	token.PLUS_PLUS, token.MINUS_MINUS, token.PLUS_EQ, token.MINUS_EQ,
	token.ASTERISK_EQ, token.SLASH_EQ, token.MOD_EQ,
	token.ASSIGN, token.ASTERISK, token.BANG, token.COLON, token.COMMA,
	token.GT, token.LT, token.LBRACE, token.RBRACE, token.LBRACKET,
	token.RBRACKET, token.LPAREN, token.RPAREN, token.MINUS, token.PLUS,
	token.MOD, token.SEMICOLON, token.SLASH,
}

func (l *Lexer) readOperator(pos token.Position) (token.Token, bool) {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, string(op)) {
			l.advance(len(op))
			return token.Token{Type: op, Literal: string(op), Position: pos}, true
		}
	}
	return token.Token{}, false
}

func (l *Lexer) readIdentifier(pos token.Position) token.Token {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.advance(1)
	}
	literal := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdentifier(literal), Literal: literal, Position: pos}
}

func (l *Lexer) readNumber(pos token.Position) (token.Token, error) {
	start := l.pos
	hex := l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X')
	if hex {
		l.advance(2)
	}
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isDigit(ch) || ch == '_' || (hex && isHexLetter(ch)) {
			l.advance(1)
			continue
		}
		break
	}
	literal := l.input[start:l.pos]
	if l.pos < len(l.input) && (isLetter(l.input[l.pos]) || l.input[l.pos] == '.') {
		for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
			l.advance(1)
		}
		literal = l.input[start:l.pos]
		tok := token.Token{Type: token.ILLEGAL, Literal: literal, Position: pos}
		return tok, l.errorf(errors.E1008, pos, "invalid number literal %q", literal)
	}
	if hex && len(literal) == 2 || !hex && len(literal) > 1 && literal[0] == '0' {
		tok := token.Token{Type: token.ILLEGAL, Literal: literal, Position: pos}
		return tok, l.errorf(errors.E1008, pos, "invalid number literal %q", literal)
	}
	return token.Token{Type: token.INT, Literal: literal, Position: pos}, nil
}

func (l *Lexer) readString(pos token.Position, quote byte) (token.Token, error) {
	l.advance(1)
	var out strings.Builder
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			tok := token.Token{Type: token.ILLEGAL, Literal: out.String(), Position: pos}
			return tok, l.errorf(errors.E1002, pos, "unterminated string literal")
		}
		ch := l.input[l.pos]
		if ch == quote {
			l.advance(1)
			break
		}
		if ch == '\\' {
			escaped, ok := escapes[l.peek(1)]
			if !ok {
				at := l.Position()
				l.advance(2)
				tok := token.Token{Type: token.ILLEGAL, Literal: out.String(), Position: pos}
				return tok, l.errorf(errors.E1001, at, "invalid escape sequence %q", l.input[l.pos-2:l.pos])
			}
			out.WriteByte(escaped)
			l.advance(2)
			continue
		}
		out.WriteByte(ch)
		l.advance(1)
	}
	return token.Token{Type: token.STRING, Literal: out.String(), Position: pos}, nil
}

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

func (l *Lexer) errorf(code errors.ErrorCode, pos token.Position, format string, args ...any) *errors.CompileError {
	return errors.Newf(code, errors.SourceLocation{
		Filename: l.filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
	}, format, args...)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
