// Package token defines the tokens of the expression language embedded in
// method files, and the source positions attached to AST nodes.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in a method file.
type Position struct {
	Line   int    // 0-indexed line number
	Column int    // 0-indexed column number
	File   string // filename
}

// LineNumber returns the 1-indexed line number for this position.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n columns on the same line.
func (p Position) Advance(n int) Position {
	return Position{Line: p.Line, Column: p.Column + n, File: p.File}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
}

// NoPos is the zero value Position, representing an unset position.
var NoPos = Position{}

// Token represents one token lexed from an expression string.
type Token struct {
	Type     Type
	Literal  string
	Position Position
}

// Token types
const (
	AND         Type = "&&"
	ASSIGN      Type = "="
	ASTERISK    Type = "*"
	ASTERISK_EQ Type = "*="
	BANG        Type = "!"
	COLON       Type = ":"
	COMMA       Type = ","
	EOF         Type = "EOF"
	EQ          Type = "=="
	FALSE       Type = "FALSE"
	GT          Type = ">"
	GT_EQ       Type = ">="
	IDENT       Type = "IDENT"
	ILLEGAL     Type = "ILLEGAL"
	IN          Type = "IN"
	INT         Type = "INT"
	LBRACE      Type = "{"
	LBRACKET    Type = "["
	LET         Type = "LET"
	LPAREN      Type = "("
	LT          Type = "<"
	LT_EQ       Type = "<="
	MINUS       Type = "-"
	MINUS_EQ    Type = "-="
	MINUS_MINUS Type = "--"
	MOD         Type = "%"
	MOD_EQ      Type = "%="
	NOT_EQ      Type = "!="
	NULL        Type = "NULL"
	OF          Type = "OF"
	OR          Type = "||"
	PLUS        Type = "+"
	PLUS_EQ     Type = "+="
	PLUS_PLUS   Type = "++"
	RBRACE      Type = "}"
	RBRACKET    Type = "]"
	RPAREN      Type = ")"
	SEMICOLON   Type = ";"
	SLASH       Type = "/"
	SLASH_EQ    Type = "/="
	STRING      Type = "STRING"
	TRUE        Type = "TRUE"
)

var keywords = map[string]Type{
	"false": FALSE,
	"in":    IN,
	"let":   LET,
	"null":  NULL,
	"of":    OF,
	"true":  TRUE,
}

// LookupIdentifier returns the keyword type for the identifier, or IDENT.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
