package exprgen

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
)

// annotations maps surface type names to descriptors.
var annotations = map[string]string{
	"void":    bytecode.Void,
	"int":     bytecode.Int,
	"boolean": bytecode.Boolean,
	"bool":    bytecode.Boolean,
	"long":    bytecode.Long,
	"double":  bytecode.Double,
	"float":   bytecode.Float,
	"char":    bytecode.Char,
	"byte":    bytecode.Byte,
	"short":   bytecode.Short,

	"String":                   bytecode.StringType,
	"Object":                   bytecode.ObjectType,
	"Throwable":                bytecode.ThrowableType,
	"Exception":                "Ljava/lang/Exception;",
	"RuntimeException":         "Ljava/lang/RuntimeException;",
	"IllegalStateException":    "Ljava/lang/IllegalStateException;",
	"IllegalArgumentException": "Ljava/lang/IllegalArgumentException;",
	"ArithmeticException":      "Ljava/lang/ArithmeticException;",
	"IOException":              "Ljava/io/IOException;",
	"AutoCloseable":            "Ljava/lang/AutoCloseable;",
	"Closeable":                "Ljava/io/Closeable;",
	"Iterable":                 "Ljava/lang/Iterable;",
	"Iterator":                 "Ljava/util/Iterator;",
	"Collection":               "Ljava/util/Collection;",
	"List":                     "Ljava/util/List;",
	"ArrayList":                "Ljava/util/ArrayList;",
	"LinkedList":               "Ljava/util/LinkedList;",
	"Map":                      "Ljava/util/Map;",
	"HashMap":                  "Ljava/util/HashMap;",
	"LinkedHashMap":            "Ljava/util/LinkedHashMap;",
	"TreeMap":                  "Ljava/util/TreeMap;",
	"Set":                      "Ljava/util/Set;",
	"HashSet":                  "Ljava/util/HashSet;",
	"Entry":                    "Ljava/util/Map$Entry;",
}

// Resolver infers expression types and resolves type annotations. It
// implements compiler.TypeResolver.
type Resolver struct {
	functions Functions
}

// NewResolver returns a resolver that types calls using functions.
func NewResolver(functions Functions) *Resolver {
	return &Resolver{functions: functions}
}

// ResolveAnnotation maps an annotation to a descriptor. Besides the names
// above it accepts internal class names ("java/util/List"), raw
// descriptors and array types written with a "[]" suffix.
func (r *Resolver) ResolveAnnotation(annotation string) (string, error) {
	annotation = strings.TrimSpace(annotation)
	if annotation == "" {
		return bytecode.Void, nil
	}
	if elem, ok := strings.CutSuffix(annotation, "[]"); ok {
		desc, err := r.ResolveAnnotation(elem)
		if err != nil {
			return "", err
		}
		if desc == bytecode.Void {
			return "", errors.Newf(errors.E2021, errors.SourceLocation{}, "arrays of void are not allowed")
		}
		return "[" + desc, nil
	}
	if desc, ok := annotations[annotation]; ok {
		return desc, nil
	}
	if bytecode.ValidFieldDescriptor(annotation) && (bytecode.IsReference(annotation) || len(annotation) == 1) {
		return annotation, nil
	}
	if strings.Contains(annotation, "/") && !strings.ContainsAny(annotation, ";[ ") {
		return bytecode.ObjectDescriptor(annotation), nil
	}
	err := errors.Newf(errors.E2021, errors.SourceLocation{}, "unknown type %s", annotation)
	if suggestions := errors.SuggestSimilar(annotation, annotationNames()); len(suggestions) > 0 {
		err.WithSuggestions(suggestions)
	}
	return "", err
}

func annotationNames() []string {
	names := make([]string, 0, len(annotations))
	for name := range annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeOf returns the descriptor expr evaluates to, without emitting code.
func (r *Resolver) TypeOf(ctx *compiler.Context, expr ast.Expr) (string, error) {
	switch node := expr.(type) {
	case *ast.Ident:
		local, ok := ctx.Locals.Lookup(node.Name)
		if !ok {
			return "", undefinedVariable(ctx, node)
		}
		return local.Descriptor, nil
	case *ast.Int:
		return bytecode.Int, nil
	case *ast.Bool:
		return bytecode.Boolean, nil
	case *ast.String:
		return bytecode.StringType, nil
	case *ast.Null:
		return bytecode.ObjectType, nil
	case *ast.Prefix:
		if node.Op == "!" {
			return bytecode.Boolean, nil
		}
		return bytecode.Int, nil
	case *ast.Infix:
		switch node.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return bytecode.Boolean, nil
		case "+":
			left, err := r.TypeOf(ctx, node.X)
			if err != nil {
				return "", err
			}
			right, err := r.TypeOf(ctx, node.Y)
			if err != nil {
				return "", err
			}
			if left == bytecode.StringType || right == bytecode.StringType {
				return bytecode.StringType, nil
			}
		}
		return bytecode.Int, nil
	case *ast.Assign:
		local, ok := ctx.Locals.Lookup(node.Name.Name)
		if !ok {
			return "", undefinedVariable(ctx, node.Name)
		}
		return local.Descriptor, nil
	case *ast.Postfix:
		return bytecode.Int, nil
	case *ast.Call:
		fn, err := r.functions.lookup(node.Fun)
		if err != nil {
			return "", err
		}
		return fn.returns(), nil
	}
	return "", errorAt(errors.E1004, expr, "unsupported expression %s", expr)
}
