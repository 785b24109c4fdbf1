// Package errors defines the diagnostics produced while lowering methods to
// bytecode, along with the internal defect type used for broken invariants.
package errors

import (
	"errors"
	"fmt"
)

// ErrJumpOverflow is returned when a relative jump does not fit in the
// 2-byte signed operand of a narrow branch instruction.
var ErrJumpOverflow = errors.New("jump offset exceeds 16-bit range")

// ErrTooManyLocals is returned when a method needs more local variable
// slots than a class file can describe.
var ErrTooManyLocals = errors.New("local variable slots exceed 65535")

// ErrPoolOverflow is reported by a constant pool that has no room left for
// another entry.
var ErrPoolOverflow = errors.New("constant pool exceeds 65535 entries")

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// InternalError reports a violated invariant inside the code generator, such
// as an unresolved jump patch or an unbalanced label stack. It is raised with
// panic and never describes a problem with the input program.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

// Internalf creates an InternalError from a format string.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an error of the same kind. It lets callers use
// the standard library errors.Is through this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// New is a passthrough to the standard library errors.New.
func New(text string) error {
	return errors.New(text)
}

// As is a passthrough to the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// AsCompileError returns the first CompileError in err's chain, if any.
func AsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
