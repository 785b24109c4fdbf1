package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/methodfile"
)

// readMethodFile decodes the method file named by the first argument, or
// stdin when --stdin is set.
func readMethodFile(ctx *cli.Context) (*methodfile.File, error) {
	stdinSet := ctx.Bool("stdin")
	fileProvided := ctx.Arg(0) != ""
	switch {
	case stdinSet && fileProvided:
		return nil, errors.New("multiple input sources specified")
	case stdinSet:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return methodfile.Parse(data, "<stdin>")
	case fileProvided:
		return methodfile.ReadFile(ctx.Arg(0))
	}
	return nil, errors.New("no input provided")
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLogger returns a console logger on stderr when --verbose is set and a
// disabled logger otherwise.
func newLogger(ctx *cli.Context) zerolog.Logger {
	if !ctx.Bool("verbose") {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    ctx.Bool("no-color") || !isTerminal(os.Stderr),
		TimeFormat: "15:04:05.000",
	}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func compileConfig(ctx *cli.Context) *compiler.Config {
	logger := newLogger(ctx)
	return &compiler.Config{
		Logger:         &logger,
		ForceWideJumps: ctx.Bool("wide"),
		MaxTableRange:  ctx.Int("max-table-range"),
	}
}

// compile reads and compiles the input method file. The class is returned
// alongside any compile error so callers can report the methods that did
// compile.
func compile(ctx *cli.Context) (*methodfile.File, *bytecode.Class, error) {
	f, err := readMethodFile(ctx)
	if err != nil {
		return nil, nil, err
	}
	class, err := f.Compile(compileConfig(ctx))
	return f, class, err
}

// compileErrors flattens the compile errors held by err, which may be a
// single error, a collection, or a multierror of either.
func compileErrors(err error) []*errors.CompileError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var out []*errors.CompileError
		for _, e := range merr.Errors {
			out = append(out, compileErrors(e)...)
		}
		return out
	}
	var list *errors.CompileErrors
	if errors.As(err, &list) {
		return list.Errors
	}
	if ce, ok := errors.AsCompileError(err); ok {
		return []*errors.CompileError{ce}
	}
	return nil
}

func formatCompileErrors(errs []*errors.CompileError, useColor bool) string {
	formatted := make([]*errors.FormattedError, 0, len(errs))
	for _, e := range errs {
		formatted = append(formatted, e.ToFormatted())
	}
	return errors.NewFormatter(useColor).FormatMultiple(formatted)
}

// writeJSON writes v as indented JSON, colorized when w is a terminal and
// color is enabled.
func writeJSON(ctx *cli.Context, w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if f, ok := w.(*os.File); ok && isTerminal(f) && !ctx.Bool("no-color") {
		data, err = prettyjson.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
