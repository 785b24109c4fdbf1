package errors

import (
	"fmt"
	"strings"
)

// CompileError represents a compilation error with rich context.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Method      string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
}

// Newf creates a CompileError at the given location.
func Newf(code ErrorCode, loc SourceLocation, format string, args ...any) *CompileError {
	return &CompileError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Filename:   loc.Filename,
		Line:       loc.Line,
		Column:     loc.Column,
		SourceLine: loc.Source,
	}
}

// WithNote attaches a note and returns the error.
func (e *CompileError) WithNote(note string) *CompileError {
	e.Note = note
	return e
}

// WithSuggestions attaches "did you mean" suggestions and returns the error.
func (e *CompileError) WithSuggestions(s []Suggestion) *CompileError {
	e.Suggestions = s
	return e
}

// Location returns the source location of the error.
func (e *CompileError) Location() SourceLocation {
	return SourceLocation{
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Source:   e.SourceLine,
	}
}

// Error implements the error interface, for example
// `loops.yaml:4:9: E2011 label "outer" not found (in method run)`.
func (e *CompileError) Error() string {
	var b strings.Builder
	if loc := e.Location(); !loc.IsZero() {
		b.WriteString(loc.String())
		b.WriteString(": ")
	} else if e.Filename != "" {
		b.WriteString(e.Filename)
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString(string(e.Code))
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	if e.Method != "" {
		fmt.Fprintf(&b, " (in method %s)", e.Method)
	}
	return b.String()
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	formatted := e.ToFormatted()
	formatter := NewFormatter(false)
	return formatter.Format(formatted)
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	kind := "error"
	if e.Code.Category() == "method file" {
		kind = "syntax error"
	}
	fe := &FormattedError{
		Code:      e.Code,
		Kind:      kind,
		Message:   e.Message,
		Method:    e.Method,
		Filename:  e.Filename,
		Line:      e.Line,
		Column:    e.Column,
		EndColumn: e.EndColumn,
		Note:      e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}

// CompileErrors holds multiple compile errors.
type CompileErrors struct {
	Errors []*CompileError
}

// Error implements the error interface.
func (e *CompileErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// FriendlyErrorMessage returns a human-friendly error message for all errors.
func (e *CompileErrors) FriendlyErrorMessage() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var formatted []*FormattedError
	for _, err := range e.Errors {
		formatted = append(formatted, err.ToFormatted())
	}
	formatter := NewFormatter(false)
	return formatter.FormatMultiple(formatted)
}

// Add adds a compile error to the collection.
func (e *CompileErrors) Add(err *CompileError) {
	e.Errors = append(e.Errors, err)
}

// Count returns the number of errors.
func (e *CompileErrors) Count() int {
	return len(e.Errors)
}

// HasErrors returns true if there are any errors.
func (e *CompileErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns the errors as a single error, or nil if empty.
func (e *CompileErrors) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
