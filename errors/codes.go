package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Method file errors
//   - E2xxx: Compile errors
type ErrorCode string

const (
	// Method file errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1005 ErrorCode = "E1005" // Invalid assignment target
	E1006 ErrorCode = "E1006" // Expected identifier
	E1007 ErrorCode = "E1007" // Unclosed delimiter
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1011 ErrorCode = "E1011" // Unknown statement kind
	E1012 ErrorCode = "E1012" // Invalid method declaration

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undefined variable
	E2002 ErrorCode = "E2002" // Undefined function
	E2003 ErrorCode = "E2003" // Invalid break statement
	E2004 ErrorCode = "E2004" // Invalid continue statement
	E2005 ErrorCode = "E2005" // Invalid return statement
	E2006 ErrorCode = "E2006" // Duplicate parameter name
	E2007 ErrorCode = "E2007" // Too many local variables
	E2008 ErrorCode = "E2008" // Too many constants
	E2010 ErrorCode = "E2010" // Invalid destructuring pattern
	E2011 ErrorCode = "E2011" // Label not found
	E2012 ErrorCode = "E2012" // Malformed try statement
	E2013 ErrorCode = "E2013" // Non-constant case value
	E2014 ErrorCode = "E2014" // Duplicate case value
	E2015 ErrorCode = "E2015" // Duplicate default case
	E2016 ErrorCode = "E2016" // Unsupported iteration
	E2017 ErrorCode = "E2017" // Method too large
	E2018 ErrorCode = "E2018" // Duplicate label
	E2019 ErrorCode = "E2019" // Unsupported switch discriminant
	E2020 ErrorCode = "E2020" // Type mismatch
	E2021 ErrorCode = "E2021" // Unknown type
	E2022 ErrorCode = "E2022" // Duplicate declaration
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "unterminated string literal",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1005: "invalid assignment target",
	E1006: "expected identifier",
	E1007: "unclosed delimiter",
	E1008: "invalid number literal",
	E1011: "unknown statement kind",
	E1012: "invalid method declaration",

	E2001: "undefined variable",
	E2002: "undefined function",
	E2003: "invalid break statement",
	E2004: "invalid continue statement",
	E2005: "invalid return statement",
	E2006: "duplicate parameter name",
	E2007: "too many local variables",
	E2008: "too many constants",
	E2010: "invalid destructuring pattern",
	E2011: "label not found",
	E2012: "malformed try statement",
	E2013: "non-constant case value",
	E2014: "duplicate case value",
	E2015: "duplicate default case",
	E2016: "unsupported iteration",
	E2017: "method too large",
	E2018: "duplicate label",
	E2019: "unsupported switch discriminant",
	E2020: "type mismatch",
	E2021: "unknown type",
	E2022: "duplicate declaration",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "method file"
	case '2':
		return "compile"
	default:
		return "unknown"
	}
}
