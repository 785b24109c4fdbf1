package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"

	"github.com/deepnoodle-ai/jlower/bytecode"
)

// CheckReport is the JSON form of a check result.
type CheckReport struct {
	File    string         `json:"file"`
	Class   string         `json:"class"`
	OK      bool           `json:"ok"`
	Methods []MethodReport `json:"methods"`
	Errors  []ErrorReport  `json:"errors,omitempty"`
}

// MethodReport summarizes one compiled method.
type MethodReport struct {
	Name         string `json:"name"`
	Descriptor   string `json:"descriptor"`
	Static       bool   `json:"static"`
	CodeBytes    int    `json:"code_bytes"`
	Instructions int    `json:"instructions"`
	Handlers     int    `json:"handlers"`
	FrameTargets int    `json:"frame_targets"`
	MaxLocals    int    `json:"max_locals"`
	WideJumps    bool   `json:"wide_jumps"`
}

// ErrorReport is one compile error.
type ErrorReport struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Method  string `json:"method,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func checkHandler(ctx *cli.Context) error {
	f, class, err := compile(ctx)
	if f == nil {
		return err
	}
	errs := compileErrors(err)
	if err != nil && len(errs) == 0 {
		return err
	}

	report := CheckReport{
		File:  f.Filename,
		Class: class.Name(),
		OK:    len(errs) == 0,
	}
	for i := 0; i < class.MethodCount(); i++ {
		report.Methods = append(report.Methods, methodReport(class.MethodAt(i)))
	}
	for _, e := range errs {
		report.Errors = append(report.Errors, ErrorReport{
			Code:    string(e.Code),
			Message: e.Message,
			Method:  e.Method,
			Line:    e.Line,
			Column:  e.Column,
		})
	}

	if strings.ToLower(ctx.String("output")) == "json" {
		if err := writeJSON(ctx, os.Stdout, report); err != nil {
			return err
		}
		if !report.OK {
			return fmt.Errorf("%s: %d compile errors", report.File, len(errs))
		}
		return nil
	}

	useColor := !ctx.Bool("no-color") && color.ShouldColorize(os.Stdout)
	for _, m := range report.Methods {
		status := "ok"
		if useColor {
			status = color.Green.Apply(status)
		}
		fmt.Fprintf(os.Stdout, "%s  %s%s  %d bytes, %d handlers\n",
			status, m.Name, m.Descriptor, m.CodeBytes, m.Handlers)
	}
	return err
}

func methodReport(m *bytecode.Method) MethodReport {
	stats := m.Stats()
	return MethodReport{
		Name:         m.Name(),
		Descriptor:   m.Descriptor(),
		Static:       m.IsStatic(),
		CodeBytes:    stats.CodeBytes,
		Instructions: stats.Instructions,
		Handlers:     stats.Handlers,
		FrameTargets: stats.FrameTargets,
		MaxLocals:    stats.MaxLocals,
		WideJumps:    m.WideJumps(),
	}
}
