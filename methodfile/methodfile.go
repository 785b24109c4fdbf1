// Package methodfile reads method files: YAML documents that describe a
// class, the static functions its expressions may call, and the bodies of
// its methods as nested statement lists.
//
//	class: demo/Counter
//	functions:
//	  log:
//	    owner: demo/Log
//	    desc: (I)V
//	methods:
//	  - name: count
//	    static: true
//	    params:
//	      n: int
//	    returns: int
//	    body:
//	      - let: "total: int = 0"
//	      - for: "let i = 0; i < n; i++"
//	        body:
//	          - total += i
//	      - return: total
//
// Statements are mappings keyed by their kind. Expressions and statement
// headers are strings parsed by a small Pratt parser.
package methodfile

import (
	"os"
	"strings"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/exprgen"
	"gopkg.in/yaml.v3"
)

// File is a decoded method file.
type File struct {
	Filename  string
	Source    string
	Class     *ast.Class
	Functions exprgen.Functions
}

// Parse decodes a method file. All decoding errors found are returned
// together; the returned File is nil if there were any.
func Parse(data []byte, filename string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Newf(errors.E1003, errors.SourceLocation{Filename: filename},
			"invalid method file: %s", strings.TrimPrefix(err.Error(), "yaml: "))
	}
	d := &decoder{
		filename: filename,
		lines:    strings.Split(string(data), "\n"),
	}
	class, functions := d.decodeFile(&root)
	if err := d.errs.ToError(); err != nil {
		return nil, err
	}
	return &File{
		Filename:  filename,
		Source:    string(data),
		Class:     class,
		Functions: functions,
	}, nil
}

// ReadFile reads and decodes the method file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Configure fills cfg with the file's source details and the expression
// collaborators for its functions.
func (f *File) Configure(cfg *compiler.Config) {
	cfg.Filename = f.Filename
	cfg.Source = f.Source
	if f.Class.Name != "" {
		cfg.Class = f.Class.Name
	}
	exprgen.Configure(cfg, f.Functions)
}

// Compile compiles every method in the file. Options already set in cfg,
// such as the logger, are kept. cfg may be nil.
func (f *File) Compile(cfg *compiler.Config) (*bytecode.Class, error) {
	if cfg == nil {
		cfg = &compiler.Config{}
	}
	f.Configure(cfg)
	return compiler.Compile(f.Class, cfg)
}
