package compiler

import (
	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

// iteration selects how a for-in or for-of loop walks its value.
type iteration int

const (
	iterateArray iteration = iota
	iterateList
	iterateMap
	iterateString
	iterateIterable
)

func (it iteration) String() string {
	switch it {
	case iterateArray:
		return "array"
	case iterateList:
		return "list"
	case iterateMap:
		return "map"
	case iterateString:
		return "string"
	}
	return "iterable"
}

var iterationKinds = map[string]iteration{
	"java/lang/String":          iterateString,
	"java/util/List":            iterateList,
	"java/util/ArrayList":       iterateList,
	"java/util/LinkedList":      iterateList,
	"java/util/Map":             iterateMap,
	"java/util/HashMap":         iterateMap,
	"java/util/LinkedHashMap":   iterateMap,
	"java/util/TreeMap":         iterateMap,
	"java/util/Set":             iterateIterable,
	"java/util/HashSet":         iterateIterable,
	"java/util/LinkedHashSet":   iterateIterable,
	"java/util/TreeSet":         iterateIterable,
	"java/util/Collection":      iterateIterable,
	"java/util/Queue":           iterateIterable,
	"java/util/Deque":           iterateIterable,
	"java/util/ArrayDeque":      iterateIterable,
	"java/lang/Iterable":        iterateIterable,
	"java/util/SortedSet":       iterateIterable,
	"java/util/NavigableSet":    iterateIterable,
	"java/util/AbstractList":    iterateList,
	"java/util/AbstractMap":     iterateMap,
	"java/util/SortedMap":       iterateMap,
	"java/util/NavigableMap":    iterateMap,
}

const (
	stringClass   = "java/lang/String"
	listClass     = "java/util/List"
	mapClass      = "java/util/Map"
	entryClass    = "java/util/Map$Entry"
	iterableClass = "java/lang/Iterable"
	iteratorClass = "java/util/Iterator"
)

func iterationFor(desc string) (iteration, bool) {
	if bytecode.IsArray(desc) {
		return iterateArray, true
	}
	if !bytecode.IsReference(desc) {
		return 0, false
	}
	it, ok := iterationKinds[bytecode.ClassName(desc)]
	return it, ok
}

// eachLoop describes one for-in or for-of loop being lowered.
type eachLoop struct {
	name    *ast.Ident
	pattern ast.Pattern
	iter    ast.Expr
	body    ast.Stmt
	keys    bool // for-in
}

func (c *Compiler) compileForIn(node *ast.ForIn) error {
	return c.compileEach(&eachLoop{
		name: node.Name,
		iter: node.Iter,
		body: node.Body,
		keys: true,
	})
}

func (c *Compiler) compileForOf(node *ast.ForOf) error {
	if (node.Name == nil) == (node.Pattern == nil) {
		return c.errorf(errors.E2010, node.Pos(), "for-of loop requires either a name or a pattern")
	}
	return c.compileEach(&eachLoop{
		name:    node.Name,
		pattern: node.Pattern,
		iter:    node.Iter,
		body:    node.Body,
	})
}

// compileEach walks arrays, lists and strings by index and maps and other
// collections through an iterator. The loop exit and the jump back use
// goto_w since the body size is unknown when they are emitted.
func (c *Compiler) compileEach(each *eachLoop) error {
	code := c.current
	labels := code.takeLabels()
	desc, err := c.typeOf(each.iter)
	if err != nil {
		return err
	}
	kind, ok := iterationFor(desc)
	if !ok || (each.keys && kind == iterateIterable) {
		verb := "for-of"
		if each.keys {
			verb = "for-in"
		}
		return c.errorf(errors.E2016, each.iter.Pos(), "cannot iterate over %s with %s", typeName(desc), verb)
	}
	c.log.Debug().Str("method", code.name).Stringer("iteration", kind).Msg("lowering collection loop")
	code.locals.EnterScope()
	defer code.locals.ExitScope()
	code.labels = labels
	switch kind {
	case iterateMap, iterateIterable:
		return c.compileIteratorLoop(each, kind)
	}
	return c.compileIndexedLoop(each, kind, desc)
}

// compileIndexedLoop lowers:
//
//	v = iter; i = 0
//	test: if i >= length(v) goto end
//	x = element(v, i)
//	body
//	update: i++
//	goto test
//	end:
func (c *Compiler) compileIndexedLoop(each *eachLoop, kind iteration, desc string) error {
	code := c.current
	buf := code.buf
	pool := code.ctx.Pool

	if _, err := c.generate(each.iter); err != nil {
		return err
	}
	value, err := c.temp(desc, each.iter.Pos())
	if err != nil {
		return err
	}
	buf.EmitStore(desc, value)
	index, err := c.temp(bytecode.Int, each.iter.Pos())
	if err != nil {
		return err
	}
	buf.Emit(op.Iconst0)
	buf.EmitStore(bytecode.Int, index)

	test := buf.Offset()
	buf.EmitLoad(bytecode.Int, index)
	buf.EmitLoad(desc, value)
	switch kind {
	case iterateArray:
		buf.Emit(op.Arraylength)
	case iterateList:
		buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(listClass, "size", "()I"), 0)
	case iterateString:
		buf.EmitInvoke(op.Invokevirtual, pool.Methodref(stringClass, "length", "()I"), 0)
	}
	exit := buf.EmitPlaceholderJump(op.IfIcmpge, bytecode.FourByte)

	var elemDesc string
	if each.keys {
		buf.EmitLoad(bytecode.Int, index)
		buf.EmitInvoke(op.Invokestatic, pool.Methodref(stringClass, "valueOf", "(I)Ljava/lang/String;"), 1)
		elemDesc = bytecode.StringType
	} else {
		buf.EmitLoad(desc, value)
		buf.EmitLoad(bytecode.Int, index)
		switch kind {
		case iterateArray:
			elemDesc = bytecode.ElementType(desc)
			buf.EmitArrayLoad(elemDesc)
		case iterateList:
			buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(listClass, "get", "(I)Ljava/lang/Object;"), 1)
			elemDesc = bytecode.ObjectType
		case iterateString:
			buf.EmitInvoke(op.Invokevirtual, pool.Methodref(stringClass, "charAt", "(I)C"), 1)
			buf.EmitInvoke(op.Invokestatic, pool.Methodref(stringClass, "valueOf", "(C)Ljava/lang/String;"), 1)
			elemDesc = bytecode.StringType
		}
	}
	if err := c.bindElement(each, elemDesc); err != nil {
		return err
	}

	l := c.startLoop(-1)
	defer l.end()
	if err := c.compileStmt(each.body); err != nil {
		return err
	}
	reachesUpdate := (CanFallThrough(each.body) && buf.Reachable()) || l.continued()
	if err := l.continues.resolve(buf, buf.Offset()); err != nil {
		return err
	}
	if reachesUpdate {
		buf.EmitIinc(index, 1)
		if err := buf.EmitJumpTo(op.Goto, test, bytecode.FourByte); err != nil {
			return err
		}
	}
	if err := buf.Resolve(exit, buf.Offset()); err != nil {
		return err
	}
	return l.breaks.resolve(buf, buf.Offset())
}

// compileIteratorLoop lowers:
//
//	it = iter.iterator()
//	test: if !it.hasNext() goto end
//	x = it.next()
//	body
//	goto test
//	end:
//
// Maps iterate keySet() for for-in and entrySet() for for-of.
func (c *Compiler) compileIteratorLoop(each *eachLoop, kind iteration) error {
	code := c.current
	buf := code.buf
	pool := code.ctx.Pool

	if _, err := c.generate(each.iter); err != nil {
		return err
	}
	if kind == iterateMap {
		view := "entrySet"
		if each.keys {
			view = "keySet"
		}
		buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(mapClass, view, "()Ljava/util/Set;"), 0)
	}
	buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(iterableClass, "iterator", "()Ljava/util/Iterator;"), 0)
	iterDesc := bytecode.ObjectDescriptor(iteratorClass)
	it, err := c.temp(iterDesc, each.iter.Pos())
	if err != nil {
		return err
	}
	buf.EmitStore(iterDesc, it)

	test := buf.Offset()
	buf.EmitLoad(iterDesc, it)
	buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(iteratorClass, "hasNext", "()Z"), 0)
	exit := buf.EmitPlaceholderJump(op.Ifeq, bytecode.FourByte)
	buf.EmitLoad(iterDesc, it)
	buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(iteratorClass, "next", "()Ljava/lang/Object;"), 0)

	elemDesc := bytecode.ObjectType
	switch {
	case kind == iterateMap && each.keys:
		buf.EmitInvoke(op.Invokestatic, pool.Methodref(stringClass, "valueOf", "(Ljava/lang/Object;)Ljava/lang/String;"), 1)
		elemDesc = bytecode.StringType
	case kind == iterateMap:
		buf.EmitU2(op.Checkcast, pool.Class(entryClass))
		elemDesc = bytecode.ObjectDescriptor(entryClass)
	}
	if pattern, ok := each.pattern.(*ast.ArrayPattern); ok && kind == iterateMap && !each.keys && len(pattern.Elements) <= 2 {
		if err := c.bindEntry(pattern); err != nil {
			return err
		}
	} else if err := c.bindElement(each, elemDesc); err != nil {
		return err
	}

	l := c.startLoop(test)
	defer l.end()
	if err := c.compileStmt(each.body); err != nil {
		return err
	}
	if CanFallThrough(each.body) && buf.Reachable() {
		if err := buf.EmitJumpTo(op.Goto, test, bytecode.FourByte); err != nil {
			return err
		}
	}
	if err := buf.Resolve(exit, buf.Offset()); err != nil {
		return err
	}
	return l.breaks.resolve(buf, buf.Offset())
}

// bindElement stores the element on the stack into the loop variable, or
// destructures it through a temporary.
func (c *Compiler) bindElement(each *eachLoop, desc string) error {
	code := c.current
	if each.pattern != nil {
		slot, err := c.temp(desc, each.pattern.Pos())
		if err != nil {
			return err
		}
		code.buf.EmitStore(desc, slot)
		return c.destructure(slot, desc, each.pattern)
	}
	slot, err := c.declare(each.name, desc)
	if err != nil {
		return err
	}
	code.buf.EmitStore(desc, slot)
	return nil
}

// bindEntry binds a [key, value] pattern from the Map.Entry on the stack.
func (c *Compiler) bindEntry(pattern *ast.ArrayPattern) error {
	code := c.current
	buf := code.buf
	pool := code.ctx.Pool
	entryDesc := bytecode.ObjectDescriptor(entryClass)
	entry, err := c.temp(entryDesc, pattern.Pos())
	if err != nil {
		return err
	}
	buf.EmitStore(entryDesc, entry)
	getters := []string{"getKey", "getValue"}
	for i, name := range pattern.Elements {
		if name == nil {
			continue
		}
		buf.EmitLoad(entryDesc, entry)
		buf.EmitInvoke(op.Invokeinterface, pool.InterfaceMethodref(entryClass, getters[i], "()Ljava/lang/Object;"), 0)
		slot, err := c.declare(name, bytecode.ObjectType)
		if err != nil {
			return err
		}
		buf.EmitStore(bytecode.ObjectType, slot)
	}
	return nil
}
