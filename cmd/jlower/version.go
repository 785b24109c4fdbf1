package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/deepnoodle-ai/wonton/cli"
)

func versionHandler(ctx *cli.Context) error {
	format := strings.ToLower(ctx.String("output"))
	if format == "json" {
		return writeJSON(ctx, os.Stdout, map[string]any{
			"version": version,
			"commit":  commit,
			"date":    date,
		})
	}
	fmt.Println(version)
	return nil
}
