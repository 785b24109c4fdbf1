package errors

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/wonton/color"
)

// Formatter formats errors with colors and Rust-like styling.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.Red
	colorErrorBold = color.BrightRed
	colorCode      = color.BrightBlack
	colorLocation  = color.Cyan
	colorLineNum   = color.BrightBlack
	colorSource    = color.White
	colorCaret     = color.BrightRed
	colorHint      = color.BrightYellow
	colorNote      = color.BrightBlue
	colorMethod    = color.Magenta
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "syntax error"
	Message     string
	Method      string // Method being compiled, if known
	Filename    string
	Line        int
	Column      int
	EndColumn   int // For multi-character underlines
	SourceLines []SourceLineEntry
	Hint        string // "Did you mean?" suggestion
	Note        string
}

// SourceLineEntry represents a line of source code with its number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(apply func(string) string, s string) string {
	if !f.UseColor {
		return s
	}
	return apply(s)
}

// Format formats the error as a string.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5".
// The prefix is only shown when the error has no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	lineNumWidth := 2
	if err.Line >= 100 {
		lineNumWidth = len(fmt.Sprintf("%d", err.Line))
	}
	gutter := strings.Repeat(" ", lineNumWidth)

	f.writeHeader(&b, err, prefix)
	f.writeLocation(&b, err, gutter)
	f.writeSource(&b, err, gutter)
	if err.Hint != "" {
		b.WriteString(f.paint(colorLineNum.Apply, gutter+" |\n"))
		f.writeAnnotation(&b, gutter, colorHint.Apply, "hint", err.Hint)
	}
	if err.Note != "" {
		f.writeAnnotation(&b, gutter, colorNote.Apply, "note", err.Note)
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError, prefix string) {
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold.Apply, label))
	switch {
	case err.Code != "":
		b.WriteString(f.paint(colorCode.Apply, "["+string(err.Code)+"]"))
	case prefix != "":
		b.WriteString(f.paint(colorCode.Apply, "["+prefix+"]"))
	}
	b.WriteString(f.paint(colorError.Apply, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, gutter string) {
	if err.Line == 0 && err.Filename == "" && err.Method == "" {
		return
	}
	b.WriteString(gutter)
	b.WriteString(f.paint(colorLocation.Apply, "-->"))
	b.WriteString(" ")

	var loc string
	switch {
	case err.Filename != "" && err.Line > 0:
		loc = fmt.Sprintf("%s:%d:%d", err.Filename, err.Line, err.Column)
	case err.Filename != "":
		loc = err.Filename
	case err.Line > 0:
		loc = fmt.Sprintf("%d:%d", err.Line, err.Column)
	}
	b.WriteString(f.paint(colorLocation.Apply, loc))
	if err.Method != "" {
		if loc != "" {
			b.WriteString(" ")
		}
		b.WriteString(f.paint(colorMethod.Apply, "in method "+err.Method))
	}
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, gutter string) {
	if len(err.SourceLines) == 0 {
		return
	}
	b.WriteString(f.paint(colorLineNum.Apply, gutter+" |\n"))
	for _, line := range err.SourceLines {
		b.WriteString(f.paint(colorLineNum.Apply, fmt.Sprintf("%*d | ", len(gutter), line.Number)))
		b.WriteString(f.paint(colorSource.Apply, line.Text))
		b.WriteString("\n")
		if !line.IsMain || err.Column <= 0 {
			continue
		}
		b.WriteString(f.paint(colorLineNum.Apply, gutter+" | "))
		b.WriteString(strings.Repeat(" ", err.Column-1))
		caretLen := 1
		if err.EndColumn > err.Column {
			caretLen = err.EndColumn - err.Column + 1
		}
		b.WriteString(f.paint(colorCaret.Apply, strings.Repeat("^", caretLen)))
		b.WriteString("\n")
	}
}

func (f *Formatter) writeAnnotation(b *strings.Builder, gutter string, apply func(string) string, kind, text string) {
	b.WriteString(f.paint(colorLineNum.Apply, gutter+" = "))
	b.WriteString(f.paint(apply, kind+": "))
	b.WriteString(text)
	b.WriteString("\n")
}

// FormatMultiple formats multiple errors with consistent styling.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold.Apply, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}
