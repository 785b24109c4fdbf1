package exprgen

import (
	"sort"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
)

// Function is a static method callable by name from expressions.
type Function struct {
	Owner      string // internal class name
	Name       string // method name, defaults to the call name
	Descriptor string
}

// Functions maps call names to the static methods they invoke.
type Functions map[string]Function

func (f Function) returns() string {
	desc, err := bytecode.ParseMethodDescriptor(f.Descriptor)
	if err != nil {
		return bytecode.Void
	}
	return desc.Return
}

func (fs Functions) lookup(name *ast.Ident) (Function, error) {
	fn, ok := fs[name.Name]
	if !ok {
		err := errorAt(errors.E2002, name, "undefined function %s", name.Name)
		names := make([]string, 0, len(fs))
		for n := range fs {
			names = append(names, n)
		}
		sort.Strings(names)
		if suggestions := errors.SuggestSimilar(name.Name, names); len(suggestions) > 0 {
			err.WithSuggestions(suggestions)
		}
		return Function{}, err
	}
	if fn.Name == "" {
		fn.Name = name.Name
	}
	return fn, nil
}

// Validate checks that every function has an owner and a well-formed
// method descriptor.
func (fs Functions) Validate() error {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fn := fs[n]
		if fn.Owner == "" {
			return errors.Newf(errors.E1012, errors.SourceLocation{}, "function %s has no owner class", n)
		}
		if _, err := bytecode.ParseMethodDescriptor(fn.Descriptor); err != nil {
			return errors.Newf(errors.E1012, errors.SourceLocation{}, "function %s: %v", n, err)
		}
	}
	return nil
}
