package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "loops.yaml", Line: 10, Column: 5}, "loops.yaml:10:5"},
		{"without filename", SourceLocation{Line: 3, Column: 1}, "3:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.loc.String(), tt.expected)
		})
	}
}

func TestSourceLocation_IsZero(t *testing.T) {
	assert.True(t, SourceLocation{}.IsZero())
	assert.True(t, SourceLocation{Filename: "x.yaml"}.IsZero())
	assert.False(t, SourceLocation{Line: 1, Column: 1}.IsZero())
}

func TestInternalError(t *testing.T) {
	err := Internalf("unresolved jump patch at %d", 12)
	assert.Equal(t, err.Error(), "internal error: unresolved jump patch at 12")
}

func TestCompileError_Error(t *testing.T) {
	err := Newf(E2011, SourceLocation{Filename: "m.yaml", Line: 4, Column: 9}, "label %q not found", "outer")
	assert.Equal(t, err.Code, E2011)
	assert.Equal(t, err.Error(), `m.yaml:4:9: E2011 label "outer" not found`)

	err.Method = "run"
	assert.Equal(t, err.Error(), `m.yaml:4:9: E2011 label "outer" not found (in method run)`)

	bare := Newf(E2012, SourceLocation{}, "try statement requires catch or finally")
	assert.Equal(t, bare.Error(), "E2012 try statement requires catch or finally")

	fileOnly := Newf(E1003, SourceLocation{Filename: "m.yaml"}, "invalid method file")
	assert.Equal(t, fileOnly.Error(), "m.yaml: E1003 invalid method file")
}

func TestAsCompileError(t *testing.T) {
	inner := Newf(E2003, SourceLocation{Line: 2, Column: 3}, "break outside loop or switch")
	wrapped := fmt.Errorf("method run: %w", inner)

	ce, ok := AsCompileError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ce.Code, E2003)

	_, ok = AsCompileError(ErrJumpOverflow)
	assert.False(t, ok)
	assert.True(t, Is(fmt.Errorf("x: %w", ErrJumpOverflow), ErrJumpOverflow))
}

func TestCompileError_ToFormatted(t *testing.T) {
	err := &CompileError{
		Code:        E2011,
		Message:     "label \"outr\" not found",
		Method:      "scan",
		Filename:    "scan.yaml",
		Line:        7,
		Column:      5,
		EndColumn:   14,
		SourceLine:  "    break: outr",
		Suggestions: []Suggestion{{Value: "outer", Distance: 1}},
		Note:        "labels are visible only inside the statement they label",
	}
	fe := err.ToFormatted()
	assert.Equal(t, fe.Kind, "error")
	assert.Equal(t, fe.Method, "scan")
	assert.Equal(t, fe.EndColumn, 14)
	assert.Len(t, fe.SourceLines, 1)
	assert.True(t, fe.SourceLines[0].IsMain)
	assert.Equal(t, fe.Hint, "Did you mean 'outer'?")

	syntax := &CompileError{Code: E1001, Message: "unexpected token"}
	assert.Equal(t, syntax.ToFormatted().Kind, "syntax error")
}

func TestCompileError_FriendlyErrorMessage(t *testing.T) {
	err := &CompileError{
		Code:       E2003,
		Message:    "break outside loop or switch",
		Filename:   "m.yaml",
		Line:       3,
		Column:     7,
		SourceLine: "    - break: ~",
	}
	msg := err.FriendlyErrorMessage()
	assert.Contains(t, msg, "error[E2003]: break outside loop or switch")
	assert.Contains(t, msg, "--> m.yaml:3:7")
	assert.Contains(t, msg, " 3 |     - break: ~")
	assert.Contains(t, msg, "   |       ^")
}

func TestCompileErrors(t *testing.T) {
	var errs CompileErrors
	assert.False(t, errs.HasErrors())
	assert.Nil(t, errs.ToError())
	assert.Equal(t, errs.Error(), "")

	first := &CompileError{Code: E2013, Message: "case value must be an integer constant"}
	errs.Add(first)
	assert.Equal(t, errs.ToError(), error(first))

	errs.Add(&CompileError{Code: E2015, Message: "duplicate default case"})
	assert.Equal(t, errs.Count(), 2)
	assert.Contains(t, errs.Error(), "(and 1 more errors)")
	assert.Contains(t, errs.FriendlyErrorMessage(), "found 2 errors")
}

func TestErrorCode_Description(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{E1001, "unexpected token"},
		{E2003, "invalid break statement"},
		{E2011, "label not found"},
		{E2017, "method too large"},
		{ErrorCode("E9999"), "unknown error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code.Description(), tt.expected)
		})
	}
}

func TestErrorCode_Category(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{E1003, "method file"},
		{E2014, "compile"},
		{ErrorCode("E3001"), "unknown"},
		{ErrorCode("E"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code.Category(), tt.expected)
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	labels := []string{"outer", "inner", "retry", "scan"}

	tests := []struct {
		name      string
		target    string
		wantCount int
		wantFirst string
	}{
		{"one typo", "outr", 1, "outer"},
		{"transposed", "inenr", 1, "inner"},
		{"no close match", "zzz", 0, ""},
		{"empty target", "", 0, ""},
		{"exact match excluded", "scan", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := SuggestSimilar(tt.target, labels)
			assert.Len(t, suggestions, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, suggestions[0].Value, tt.wantFirst)
			}
		})
	}
}

func TestSuggestSimilar_Limits(t *testing.T) {
	suggestions := SuggestSimilar("loop", []string{"loop1", "loop2", "loop3", "loop4", "loop1"})
	assert.Len(t, suggestions, MaxSuggestions)
	assert.Equal(t, suggestions[0].Value, "loop1")
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, FormatSuggestions(nil), "")
	assert.Equal(t, FormatSuggestions([]Suggestion{{Value: "outer"}}), "Did you mean 'outer'?")
	assert.Equal(t,
		FormatSuggestions([]Suggestion{{Value: "outer"}, {Value: "other"}}),
		"Did you mean one of: 'outer', 'other'?")
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "abcd", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, levenshteinDistance(tt.a, tt.b), tt.expected)
		})
	}
}

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(false)
	result := f.Format(&FormattedError{
		Code:     E2014,
		Kind:     "error",
		Message:  "duplicate case value 3",
		Method:   "classify",
		Filename: "switch.yaml",
		Line:     10,
		Column:   11,
		SourceLines: []SourceLineEntry{
			{Number: 10, Text: "  - case: 3", IsMain: true},
		},
		Note: "first defined on line 8",
	})
	assert.Contains(t, result, "error[E2014]: duplicate case value 3")
	assert.Contains(t, result, "--> switch.yaml:10:11 in method classify")
	assert.Contains(t, result, "10 |   - case: 3")
	assert.Contains(t, result, "= note: first defined on line 8")
	assert.False(t, strings.Contains(result, "hint:"))
}

func TestFormatter_MethodOnly(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{Message: "method too large", Method: "big"})
	assert.Equal(t, result, "error: method too large\n  --> in method big\n")
}

func TestFormatter_MultiCharUnderline(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{
		Message:     "label not found",
		Line:        1,
		Column:      8,
		EndColumn:   11,
		SourceLines: []SourceLineEntry{{Number: 1, Text: "break: outr", IsMain: true}},
	})
	assert.Contains(t, result, "   |        ^^^^\n")
}

func TestFormatter_LargeLineNumber(t *testing.T) {
	result := NewFormatter(false).Format(&FormattedError{
		Message:     "x",
		Line:        1234,
		Column:      1,
		SourceLines: []SourceLineEntry{{Number: 1234, Text: "y", IsMain: true}},
	})
	assert.Contains(t, result, "1234 | y")
	assert.Contains(t, result, "     | ^")
}

func TestFormatter_FormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	one := &FormattedError{Message: "first"}
	assert.Equal(t, f.FormatMultiple([]*FormattedError{one}), "error: first\n")
	assert.Equal(t, f.FormatMultiple(nil), "")

	result := f.FormatMultiple([]*FormattedError{one, {Message: "second"}})
	assert.Contains(t, result, "error[1/2]: first")
	assert.Contains(t, result, "error[2/2]: second")
	assert.Contains(t, result, "found 2 errors")
}
