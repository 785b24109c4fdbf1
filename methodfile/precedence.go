package methodfile

import "github.com/deepnoodle-ai/jlower/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // =, +=
	OR          // ||
	AND         // &&
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
	CALL        // myFunction(X)
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.ASSIGN:      ASSIGN,
	token.PLUS_EQ:     ASSIGN,
	token.MINUS_EQ:    ASSIGN,
	token.ASTERISK_EQ: ASSIGN,
	token.SLASH_EQ:    ASSIGN,
	token.MOD_EQ:      ASSIGN,
	token.OR:          OR,
	token.AND:         AND,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LT:          LESSGREATER,
	token.LT_EQ:       LESSGREATER,
	token.GT:          LESSGREATER,
	token.GT_EQ:       LESSGREATER,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.ASTERISK:    PRODUCT,
	token.SLASH:       PRODUCT,
	token.MOD:         PRODUCT,
	token.LPAREN:      CALL,
}
