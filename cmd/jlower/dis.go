package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"

	"github.com/deepnoodle-ai/jlower/dis"
)

func disHandler(ctx *cli.Context) error {
	if ctx.Bool("no-color") || !isTerminal(os.Stdout) {
		color.Enabled = false
	}

	_, class, err := compile(ctx)
	if err != nil {
		return err
	}

	// If a method name was provided, disassemble that method only
	if name := ctx.String("method"); name != "" {
		m, ok := class.Method(name)
		if !ok {
			return fmt.Errorf("method %q not found", name)
		}
		return dis.PrintMethod(m, class.Pool(), os.Stdout)
	}
	return dis.PrintClass(class, ctx.Bool("sort"), os.Stdout)
}
