package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/cli"
)

func newCheckApp() *checkApp {
	app := cli.New("jlower").
		SetColorEnabled(false).
		GlobalFlags(
			cli.Bool("no-color", "").Help("Disable colored output"),
			cli.Bool("verbose", "v").Help("Log compiler events to stderr"),
		)
	app.Command("check").
		Args("file?").
		Flags(
			cli.Bool("stdin", "").Help("Read the method file from stdin"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
			cli.Bool("wide", "").Help("Emit goto_w for every branch"),
			cli.Int("max-table-range", "").Help("Largest key range").Default(4096),
		).
		Run(checkHandler)
	return &checkApp{execute: app.ExecuteArgs}
}

type checkApp struct {
	execute func([]string) error
}

func TestCheckJSON(t *testing.T) {
	app := newCheckApp()
	output, err := captureStdout(t, func() error {
		return app.execute([]string{"check", "-o", "json", "fixtures/counter.yaml"})
	})
	assert.Nil(t, err)

	var report CheckReport
	assert.Nil(t, json.Unmarshal([]byte(output), &report))
	assert.True(t, report.OK)
	assert.Equal(t, report.Class, "demo/Counter")
	assert.Len(t, report.Methods, 2)
	assert.Equal(t, report.Methods[0].Name, "count")
	assert.Equal(t, report.Methods[0].Descriptor, "(I)I")
	assert.True(t, report.Methods[0].Static)
	assert.Equal(t, report.Methods[1].Descriptor, "(I)Ljava/lang/String;")
	assert.Len(t, report.Errors, 0)
}

func TestCheckJSONWithErrors(t *testing.T) {
	app := newCheckApp()
	output, err := captureStdout(t, func() error {
		return app.execute([]string{"check", "-o", "json", "fixtures/bad.yaml"})
	})
	assert.NotNil(t, err)

	var report CheckReport
	assert.Nil(t, json.Unmarshal([]byte(output), &report))
	assert.False(t, report.OK)
	assert.Len(t, report.Methods, 1)
	assert.Equal(t, report.Methods[0].Name, "fine")
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, report.Errors[0].Code, "E2003")
	assert.Equal(t, report.Errors[0].Line, 9)
}

func TestCheckText(t *testing.T) {
	app := newCheckApp()
	output, err := captureStdout(t, func() error {
		return app.execute([]string{"check", "fixtures/counter.yaml"})
	})
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ok  count(I)I  "))
	assert.True(t, strings.HasPrefix(lines[1], "ok  describe(I)Ljava/lang/String;  "))
}

func TestCheckMissingInput(t *testing.T) {
	app := newCheckApp()
	_, err := captureStdout(t, func() error {
		return app.execute([]string{"check"})
	})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no input provided")
}
