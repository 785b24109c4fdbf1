package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	assert.Nil(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), runErr
}

func disableColor(t *testing.T) {
	t.Helper()
	oldEnabled := color.Enabled
	color.Enabled = false
	t.Cleanup(func() { color.Enabled = oldEnabled })
}

func TestCompileErrorsAreFlattened(t *testing.T) {
	app := cli.New("jlower").
		SetColorEnabled(false).
		GlobalFlags(
			cli.Bool("no-color", "").Help("Disable colored output"),
			cli.Bool("verbose", "v").Help("Log compiler events to stderr"),
		)

	var captured error
	app.Command("check").
		Args("file?").
		Flags(
			cli.Bool("stdin", "").Help("Read the method file from stdin"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
			cli.Bool("wide", "").Help("Emit goto_w for every branch"),
			cli.Int("max-table-range", "").Help("Largest key range").Default(4096),
		).
		Run(func(ctx *cli.Context) error {
			_, _, captured = compile(ctx)
			return nil
		})

	assert.Nil(t, app.ExecuteArgs([]string{"check", "fixtures/bad.yaml"}))
	errs := compileErrors(captured)
	assert.Len(t, errs, 1)
	assert.Equal(t, string(errs[0].Code), "E2003")
	assert.Equal(t, errs[0].Line, 9)

	text := formatCompileErrors(errs, false)
	assert.Contains(t, text, "E2003")
	assert.Contains(t, text, "fixtures/bad.yaml")
}

func TestCompileErrorsOfPlainError(t *testing.T) {
	assert.Len(t, compileErrors(nil), 0)
	assert.Len(t, compileErrors(os.ErrNotExist), 0)
}
