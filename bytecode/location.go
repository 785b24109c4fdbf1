package bytecode

import "fmt"

// SourceLocation represents a position in source code.
// Filename and source text are stored once on the Method.
type SourceLocation struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// LineEntry maps the instruction at StartPC, and those following it up to
// the next entry, to a source location. It mirrors a LineNumberTable row.
type LineEntry struct {
	StartPC  int
	Location SourceLocation
}
