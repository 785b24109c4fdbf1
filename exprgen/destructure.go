package exprgen

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

const (
	listClass  = "java/util/List"
	mapClass   = "java/util/Map"
	entryClass = "java/util/Map$Entry"
)

// Destructurer binds array patterns from arrays, lists and map entries, and
// object patterns from maps. It implements compiler.Destructurer.
type Destructurer struct{}

func (d *Destructurer) Destructure(ctx *compiler.Context, slot int, desc string, pattern ast.Pattern) error {
	switch p := pattern.(type) {
	case *ast.ArrayPattern:
		return d.array(ctx, slot, desc, p)
	case *ast.ObjectPattern:
		return d.object(ctx, slot, desc, p)
	}
	return errorAt(errors.E2010, pattern, "unsupported pattern %s", pattern)
}

func (d *Destructurer) array(ctx *compiler.Context, slot int, desc string, p *ast.ArrayPattern) error {
	buf := ctx.Code
	pool := ctx.Pool
	class := bytecode.ClassName(desc)
	for i, name := range p.Elements {
		if name == nil {
			continue
		}
		var elem string
		switch {
		case bytecode.IsArray(desc):
			elem = bytecode.ElementType(desc)
			buf.EmitLoad(desc, slot)
			buf.EmitPushInt(int32(i), pool)
			buf.EmitArrayLoad(elem)
		case class == entryClass:
			if i > 1 {
				return errorAt(errors.E2010, name, "a map entry only has a key and a value")
			}
			getter := "getKey"
			if i == 1 {
				getter = "getValue"
			}
			buf.EmitLoad(desc, slot)
			buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(entryClass, getter, "()Ljava/lang/Object;"), 0)
			elem = bytecode.ObjectType
		case class == listClass || class == "java/util/ArrayList" || desc == bytecode.ObjectType:
			buf.EmitLoad(desc, slot)
			if class != listClass {
				buf.EmitU2(op.Checkcast, pool.Class(listClass))
			}
			buf.EmitPushInt(int32(i), pool)
			buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(listClass, "get", "(I)Ljava/lang/Object;"), 1)
			elem = bytecode.ObjectType
		default:
			return errorAt(errors.E2010, p, "cannot destructure %s with an array pattern", describe(desc))
		}
		if err := declare(ctx, name, elem); err != nil {
			return err
		}
	}
	return nil
}

func (d *Destructurer) object(ctx *compiler.Context, slot int, desc string, p *ast.ObjectPattern) error {
	buf := ctx.Code
	pool := ctx.Pool
	class := bytecode.ClassName(desc)
	switch class {
	case mapClass, "java/util/HashMap", "java/util/LinkedHashMap", "java/util/TreeMap", "java/lang/Object":
	default:
		return errorAt(errors.E2010, p, "cannot destructure %s with an object pattern", describe(desc))
	}
	for _, b := range p.Bindings {
		buf.EmitLoad(desc, slot)
		if class != mapClass {
			buf.EmitU2(op.Checkcast, pool.Class(mapClass))
		}
		buf.EmitLdc(pool.String(b.Key))
		buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(mapClass, "get", "(Ljava/lang/Object;)Ljava/lang/Object;"), 1)
		name := b.Name
		if name == nil {
			name = &ast.Ident{NamePos: p.Pos(), Name: b.Key}
		}
		if err := declare(ctx, name, bytecode.ObjectType); err != nil {
			return err
		}
	}
	return nil
}

// declare stores the value on the stack into a new local.
func declare(ctx *compiler.Context, name *ast.Ident, desc string) error {
	slot, err := ctx.Locals.Declare(name.Name, desc)
	if errors.Is(err, errors.ErrTooManyLocals) {
		return errorAt(errors.E2007, name, "too many local variables to declare %s", name.Name)
	}
	if err != nil {
		return errorAt(errors.E2022, name, "%s is already declared in this scope", name.Name)
	}
	ctx.Code.EmitStore(desc, slot)
	return nil
}
