package main

import (
	"os"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := cli.New("jlower").
		Description("Lower structured control flow to JVM bytecode").
		Version(version).
		AddCompletionCommand()

	// Global flags
	app.GlobalFlags(
		cli.Bool("no-color", "").Env("NO_COLOR").Help("Disable colored output"),
		cli.Bool("verbose", "v").Help("Log compiler events to stderr"),
	)

	// Disassemble command
	app.Command("dis").
		Description("Compile a method file and disassemble the result").
		Args("file?").
		Flags(
			cli.Bool("stdin", "").Help("Read the method file from stdin"),
			cli.String("method", "m").Help("Method to disassemble"),
			cli.Bool("sort", "").Help("Print methods sorted by name"),
			cli.Bool("wide", "").Env("JLOWER_WIDE").Help("Emit goto_w for every branch"),
			cli.Int("max-table-range", "").Help("Largest key range encoded as a tableswitch").Default(4096),
		).
		Run(disHandler)

	// Check command
	app.Command("check").
		Description("Compile a method file and report errors").
		Args("file?").
		Flags(
			cli.Bool("stdin", "").Help("Read the method file from stdin"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
			cli.Bool("wide", "").Env("JLOWER_WIDE").Help("Emit goto_w for every branch"),
			cli.Int("max-table-range", "").Help("Largest key range encoded as a tableswitch").Default(4096),
		).
		Run(checkHandler)

	// AST command
	app.Command("ast").
		Description("Display the AST of a method file").
		Args("file?").
		Flags(
			cli.Bool("stdin", "").Help("Read the method file from stdin"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
		).
		Run(astHandler)

	// Version command with JSON support
	app.Command("version").
		Description("Print version information").
		Flags(
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
		).
		Run(versionHandler)

	if err := app.Execute(); err != nil {
		if cli.IsHelpRequested(err) {
			return
		}
		printError(err)
		os.Exit(cli.GetExitCode(err))
	}
}

func printError(err error) {
	useColor := color.ShouldColorize(os.Stderr)
	if errs := compileErrors(err); len(errs) > 0 {
		os.Stderr.WriteString(formatCompileErrors(errs, useColor))
		return
	}
	msg := err.Error()
	if useColor {
		msg = color.Red.Apply(msg)
	}
	os.Stderr.WriteString(msg + "\n")
}
