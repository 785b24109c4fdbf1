package methodfile

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/exprgen"
	"github.com/deepnoodle-ai/jlower/internal/token"
	"gopkg.in/yaml.v3"
)

// statementKeys lists, for each statement kind, the other keys its mapping
// may carry.
var statementKeys = map[string][]string{
	"block":    nil,
	"break":    nil,
	"continue": nil,
	"do":       {"while"},
	"empty":    nil,
	"expr":     nil,
	"for":      {"body"},
	"forin":    {"body"},
	"forof":    {"body"},
	"if":       {"then", "else"},
	"let":      nil,
	"return":   nil,
	"switch":   {"cases"},
	"throw":    nil,
	"try":      {"catch", "finally"},
	"using":    nil,
	"while":    {"body"},
}

var (
	fileKeys     = []string{"class", "functions", "methods"}
	functionKeys = []string{"owner", "name", "desc"}
	methodKeys   = []string{"name", "static", "params", "returns", "body"}
	catchKeys    = []string{"name", "type", "pattern", "body"}
	caseKeys     = []string{"case", "default", "body"}
)

type decoder struct {
	filename string
	lines    []string
	errs     errors.CompileErrors
}

// entry is one key/value pair of a mapping node.
type entry struct {
	key   *yaml.Node
	value *yaml.Node
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func (d *decoder) sourceLine(line int) string {
	if line < 1 || line > len(d.lines) {
		return ""
	}
	return strings.TrimRight(d.lines[line-1], "\r")
}

func (d *decoder) add(err *errors.CompileError) {
	if err.Filename == "" {
		err.Filename = d.filename
	}
	if err.SourceLine == "" {
		err.SourceLine = d.sourceLine(err.Line)
	}
	d.errs.Add(err)
}

func (d *decoder) errorf(n *yaml.Node, code errors.ErrorCode, format string, args ...any) *errors.CompileError {
	var loc errors.SourceLocation
	if n != nil {
		loc.Line = n.Line
		loc.Column = n.Column
	}
	err := errors.Newf(code, loc, format, args...)
	d.add(err)
	return err
}

func (d *decoder) pos(n *yaml.Node) token.Position {
	return token.Position{Line: n.Line - 1, Column: n.Column - 1, File: d.filename}
}

// exprBase returns the position of the first character of a scalar's
// value in the file.
func (d *decoder) exprBase(n *yaml.Node) token.Position {
	pos := d.pos(n)
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		pos.Column++
	case yaml.LiteralStyle, yaml.FoldedStyle:
		// The text starts on the line after the indicator.
		next := d.sourceLine(n.Line + 1)
		pos.Line++
		pos.Column = len(next) - len(strings.TrimLeft(next, " \t"))
	}
	return pos
}

// parse runs fn on a parser for the scalar n and records its error.
func (d *decoder) parse(n *yaml.Node, what string, fn func(p *Parser) bool) bool {
	if n.Kind != yaml.ScalarNode {
		d.errorf(n, errors.E1003, "%s must be a string", what)
		return false
	}
	p := NewParser(n.Value, d.exprBase(n))
	ok := fn(p)
	if p.err != nil {
		d.add(p.err)
		return false
	}
	return ok
}

func (d *decoder) expr(n *yaml.Node, what string) ast.Expr {
	var expr ast.Expr
	if isNull(n) {
		d.errorf(n, errors.E1004, "%s requires an expression", what)
		return nil
	}
	d.parse(n, what, func(p *Parser) bool {
		expr = p.ParseExpr()
		return expr != nil
	})
	return expr
}

func (d *decoder) ident(n *yaml.Node, what string) *ast.Ident {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		d.errorf(n, errors.E1006, "%s must be an identifier", what)
		return nil
	}
	var ident *ast.Ident
	d.parse(n, what, func(p *Parser) bool {
		if !p.curTokenIs(token.IDENT) {
			p.setTokenError(p.curToken, errors.E1006, "%s must be an identifier, not %s", what, tokenDescription(p.curToken))
			return false
		}
		ident = p.newIdent(p.curToken)
		return p.expectEnd(what)
	})
	return ident
}

func (d *decoder) boolean(n *yaml.Node, what string) bool {
	var value bool
	if err := n.Decode(&value); err != nil {
		d.errorf(n, errors.E1003, "%s must be true or false", what)
	}
	return value
}

// entries returns the pairs of a mapping node, reporting duplicate keys and
// keys not in allowed.
func (d *decoder) entries(n *yaml.Node, what string, allowed []string) ([]entry, map[string]*yaml.Node, bool) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		d.errorf(n, errors.E1003, "%s must be a mapping", what)
		return nil, nil, false
	}
	ok := true
	var pairs []entry
	byKey := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		if _, dup := byKey[key.Value]; dup {
			d.errorf(key, errors.E1003, "duplicate key %q in %s", key.Value, what)
			ok = false
			continue
		}
		if allowed != nil && !contains(allowed, key.Value) {
			d.unknownKey(key, what, allowed)
			ok = false
			continue
		}
		byKey[key.Value] = value
		pairs = append(pairs, entry{key: key, value: value})
	}
	return pairs, byKey, ok
}

func (d *decoder) unknownKey(key *yaml.Node, what string, allowed []string) {
	err := d.errorf(key, errors.E1003, "unknown key %q in %s", key.Value, what)
	if suggestions := errors.SuggestSimilar(key.Value, allowed); len(suggestions) > 0 {
		err.WithSuggestions(suggestions)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (d *decoder) decodeFile(root *yaml.Node) (*ast.Class, exprgen.Functions) {
	doc := root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			d.errorf(doc, errors.E1003, "empty method file")
			return nil, nil
		}
		doc = doc.Content[0]
	}
	class := &ast.Class{ClassPos: d.pos(doc)}
	functions := exprgen.Functions{}
	pairs, _, _ := d.entries(doc, "method file", fileKeys)
	for _, e := range pairs {
		switch e.key.Value {
		case "class":
			if e.value.Kind != yaml.ScalarNode || e.value.Value == "" {
				d.errorf(e.value, errors.E1012, "class must be an internal class name")
				continue
			}
			class.Name = e.value.Value
			class.ClassPos = d.pos(e.value)
		case "functions":
			d.decodeFunctions(e.value, functions)
		case "methods":
			class.Methods = d.decodeMethods(e.value)
		}
	}
	return class, functions
}

func (d *decoder) decodeFunctions(n *yaml.Node, functions exprgen.Functions) {
	pairs, _, _ := d.entries(n, "functions", nil)
	for _, e := range pairs {
		name := e.key.Value
		fields, byKey, ok := d.entries(e.value, "function "+name, functionKeys)
		if !ok {
			continue
		}
		var fn exprgen.Function
		for _, f := range fields {
			if f.value.Kind != yaml.ScalarNode {
				d.errorf(f.value, errors.E1012, "function %s: %s must be a string", name, f.key.Value)
				continue
			}
			switch f.key.Value {
			case "owner":
				fn.Owner = f.value.Value
			case "name":
				fn.Name = f.value.Value
			case "desc":
				fn.Descriptor = f.value.Value
			}
		}
		if fn.Owner == "" {
			d.errorf(e.key, errors.E1012, "function %s has no owner class", name)
			continue
		}
		if _, err := bytecode.ParseMethodDescriptor(fn.Descriptor); err != nil {
			at := e.key
			if desc, ok := byKey["desc"]; ok {
				at = desc
			}
			d.errorf(at, errors.E1012, "function %s: %v", name, err)
			continue
		}
		functions[name] = fn
	}
}

func (d *decoder) decodeMethods(n *yaml.Node) []*ast.Method {
	if n.Kind != yaml.SequenceNode {
		d.errorf(n, errors.E1012, "methods must be a list")
		return nil
	}
	var methods []*ast.Method
	for _, item := range n.Content {
		if m := d.decodeMethod(resolve(item)); m != nil {
			methods = append(methods, m)
		}
	}
	return methods
}

func (d *decoder) decodeMethod(n *yaml.Node) *ast.Method {
	pairs, byKey, ok := d.entries(n, "method", methodKeys)
	if !ok && pairs == nil {
		return nil
	}
	m := &ast.Method{Def: d.pos(n)}
	for _, e := range pairs {
		switch e.key.Value {
		case "name":
			m.Name = d.ident(e.value, "method name")
		case "static":
			m.Static = d.boolean(e.value, "static")
		case "params":
			m.Params = d.decodeParams(e.value)
		case "returns":
			if !isNull(e.value) {
				m.Returns = e.value.Value
			}
		case "body":
			m.Body = d.decodeBlock(e.value)
		}
	}
	if _, ok := byKey["name"]; !ok {
		d.errorf(n, errors.E1012, "method requires a name")
		return nil
	}
	if _, ok := byKey["body"]; !ok {
		d.errorf(n, errors.E1012, "method %s requires a body", byKey["name"].Value)
		return nil
	}
	if m.Name == nil || m.Body == nil {
		return nil
	}
	return m
}

func (d *decoder) decodeParams(n *yaml.Node) []*ast.Param {
	if isNull(n) {
		return nil
	}
	pairs, _, _ := d.entries(n, "params", nil)
	params := make([]*ast.Param, 0, len(pairs))
	for _, e := range pairs {
		name := d.ident(e.key, "parameter name")
		if name == nil {
			continue
		}
		if e.value.Kind != yaml.ScalarNode || isNull(e.value) {
			d.errorf(e.value, errors.E1012, "parameter %s requires a type", name.Name)
			continue
		}
		params = append(params, &ast.Param{Name: name, Type: e.value.Value})
	}
	return params
}

// decodeBlock decodes a statement list. A single mapping is accepted as a
// one-statement list.
func (d *decoder) decodeBlock(n *yaml.Node) *ast.Block {
	n = resolve(n)
	block := &ast.Block{Lbrace: d.pos(n)}
	if isNull(n) {
		return block
	}
	block.Stmts = d.decodeStmts(n)
	return block
}

func (d *decoder) decodeStmts(n *yaml.Node) []ast.Stmt {
	n = resolve(n)
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	var stmts []ast.Stmt
	for _, item := range items {
		if stmt := d.decodeStmt(resolve(item)); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// shorthand maps bare scalars that name a statement to that statement's
// mapping form.
var shorthand = map[string]bool{
	"break":    true,
	"continue": true,
	"empty":    true,
	"return":   true,
}

func (d *decoder) decodeStmt(n *yaml.Node) ast.Stmt {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.decodeScalarStmt(n)
	case yaml.MappingNode:
	default:
		d.errorf(n, errors.E1011, "a statement must be a mapping or an expression")
		return nil
	}
	pairs, byKey, ok := d.entries(n, "statement", nil)
	if !ok {
		return nil
	}
	kind, kindKey := d.statementKind(n, pairs)
	if kind == "" {
		return nil
	}
	allowed := append([]string{kind, "label"}, statementKeys[kind]...)
	for _, e := range pairs {
		if !contains(allowed, e.key.Value) {
			d.unknownKey(e.key, kind+" statement", allowed)
			return nil
		}
	}
	stmt := d.decodeKind(kind, kindKey, byKey)
	if stmt == nil {
		return nil
	}
	if labels, ok := byKey["label"]; ok {
		return d.label(labels, stmt)
	}
	return stmt
}

func (d *decoder) decodeScalarStmt(n *yaml.Node) ast.Stmt {
	if n.Style == 0 && shorthand[n.Value] {
		switch n.Value {
		case "break":
			return &ast.Break{Break: d.pos(n)}
		case "continue":
			return &ast.Continue{Continue: d.pos(n)}
		case "return":
			return &ast.Return{Return: d.pos(n)}
		default:
			return &ast.Empty{Semicolon: d.pos(n)}
		}
	}
	expr := d.expr(n, "expression statement")
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{X: expr}
}

// statementKind finds the key that names the statement's kind.
func (d *decoder) statementKind(n *yaml.Node, pairs []entry) (string, *yaml.Node) {
	var kinds []entry
	for _, e := range pairs {
		if _, ok := statementKeys[e.key.Value]; ok {
			kinds = append(kinds, e)
		}
	}
	// "while" is also the condition key of a do statement.
	for _, e := range kinds {
		if e.key.Value == "do" {
			return "do", e.key
		}
	}
	switch len(kinds) {
	case 0:
		names := make([]string, 0, len(statementKeys))
		for name := range statementKeys {
			names = append(names, name)
		}
		sort.Strings(names)
		err := d.errorf(n, errors.E1011, "unknown statement kind")
		if len(pairs) > 0 {
			err.Message = "unknown statement kind " + pairs[0].key.Value
			if suggestions := errors.SuggestSimilar(pairs[0].key.Value, names); len(suggestions) > 0 {
				err.WithSuggestions(suggestions)
			}
		}
		return "", nil
	case 1:
		return kinds[0].key.Value, kinds[0].key
	}
	d.errorf(kinds[1].key, errors.E1011, "statement has both %q and %q", kinds[0].key.Value, kinds[1].key.Value)
	return "", nil
}

func (d *decoder) decodeKind(kind string, key *yaml.Node, m map[string]*yaml.Node) ast.Stmt {
	pos := d.pos(key)
	value := m[kind]
	switch kind {
	case "let":
		var stmt *ast.Var
		if !d.parse(value, "let", func(p *Parser) bool {
			stmt = p.ParseVar(pos)
			return stmt != nil
		}) {
			return nil
		}
		return stmt
	case "expr":
		if expr := d.expr(value, "expr"); expr != nil {
			return &ast.ExprStmt{X: expr}
		}
	case "if":
		return d.decodeIf(pos, key, m)
	case "while":
		cond := d.expr(value, "while condition")
		body := d.body(key, m)
		if cond == nil || body == nil {
			return nil
		}
		return &ast.While{While: pos, Cond: cond, Body: body}
	case "do":
		body := d.decodeBlock(value)
		cond, ok := m["while"]
		if !ok {
			d.errorf(key, errors.E1003, "do statement requires a while condition")
			return nil
		}
		if expr := d.expr(cond, "do-while condition"); expr != nil {
			return &ast.DoWhile{Do: pos, Body: body, Cond: expr}
		}
	case "for":
		return d.decodeFor(pos, key, m)
	case "forin":
		var stmt *ast.ForIn
		d.parse(value, "for-in header", func(p *Parser) bool {
			name, iter := p.ParseForIn()
			if name == nil {
				return false
			}
			stmt = &ast.ForIn{For: pos, Name: name, Iter: iter}
			return true
		})
		body := d.body(key, m)
		if stmt == nil || body == nil {
			return nil
		}
		stmt.Body = body
		return stmt
	case "forof":
		var stmt *ast.ForOf
		d.parse(value, "for-of header", func(p *Parser) bool {
			name, pattern, iter := p.ParseForOf()
			if iter == nil {
				return false
			}
			stmt = &ast.ForOf{For: pos, Name: name, Pattern: pattern, Iter: iter}
			return true
		})
		body := d.body(key, m)
		if stmt == nil || body == nil {
			return nil
		}
		stmt.Body = body
		return stmt
	case "break":
		stmt := &ast.Break{Break: pos}
		if !isNull(value) {
			if stmt.Label = d.ident(value, "break label"); stmt.Label == nil {
				return nil
			}
		}
		return stmt
	case "continue":
		stmt := &ast.Continue{Continue: pos}
		if !isNull(value) {
			if stmt.Label = d.ident(value, "continue label"); stmt.Label == nil {
				return nil
			}
		}
		return stmt
	case "return":
		stmt := &ast.Return{Return: pos}
		if !isNull(value) {
			if stmt.Value = d.expr(value, "return value"); stmt.Value == nil {
				return nil
			}
		}
		return stmt
	case "throw":
		if expr := d.expr(value, "throw"); expr != nil {
			return &ast.Throw{Throw: pos, Value: expr}
		}
	case "try":
		return d.decodeTry(pos, m)
	case "switch":
		return d.decodeSwitch(pos, key, m)
	case "using":
		var decls []*ast.UsingDecl
		if !d.parse(value, "using", func(p *Parser) bool {
			decls = p.ParseUsing()
			return decls != nil
		}) {
			return nil
		}
		return &ast.Using{Using: pos, Decls: decls}
	case "block":
		return d.decodeBlock(value)
	case "empty":
		return &ast.Empty{Semicolon: pos}
	}
	return nil
}

// body decodes the body of a loop.
func (d *decoder) body(key *yaml.Node, m map[string]*yaml.Node) ast.Stmt {
	n, ok := m["body"]
	if !ok {
		d.errorf(key, errors.E1003, "%s statement requires a body", key.Value)
		return nil
	}
	return d.decodeBlock(n)
}

func (d *decoder) decodeIf(pos token.Position, key *yaml.Node, m map[string]*yaml.Node) ast.Stmt {
	cond := d.expr(m["if"], "if condition")
	then, ok := m["then"]
	if !ok {
		d.errorf(key, errors.E1003, "if statement requires a then branch")
		return nil
	}
	stmt := &ast.If{If: pos, Cond: cond, Consequence: d.decodeBlock(then)}
	if alt, ok := m["else"]; ok {
		// A mapping is a single statement, which allows else-if chains.
		if alt.Kind == yaml.MappingNode {
			if stmt.Alternative = d.decodeStmt(alt); stmt.Alternative == nil {
				return nil
			}
		} else {
			stmt.Alternative = d.decodeBlock(alt)
		}
	}
	if cond == nil {
		return nil
	}
	return stmt
}

func (d *decoder) decodeFor(pos token.Position, key *yaml.Node, m map[string]*yaml.Node) ast.Stmt {
	stmt := &ast.For{For: pos}
	if header := m["for"]; !isNull(header) {
		if !d.parse(header, "for loop header", func(p *Parser) bool {
			h, ok := p.ParseForHeader()
			stmt.Init, stmt.Cond, stmt.Post = h.Init, h.Cond, h.Post
			return ok
		}) {
			return nil
		}
	}
	body := d.body(key, m)
	if body == nil {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (d *decoder) decodeTry(pos token.Position, m map[string]*yaml.Node) ast.Stmt {
	stmt := &ast.Try{Try: pos, Body: d.decodeBlock(m["try"])}
	ok := true
	if catches, found := m["catch"]; found {
		items := []*yaml.Node{catches}
		if catches.Kind == yaml.SequenceNode {
			items = catches.Content
		}
		for _, item := range items {
			c := d.decodeCatch(resolve(item))
			if c == nil {
				ok = false
				continue
			}
			stmt.Catches = append(stmt.Catches, c)
		}
	}
	if finally, found := m["finally"]; found {
		stmt.Finally = d.decodeBlock(finally)
	}
	if !ok {
		return nil
	}
	return stmt
}

func (d *decoder) decodeCatch(n *yaml.Node) *ast.Catch {
	pairs, byKey, ok := d.entries(n, "catch clause", catchKeys)
	if !ok {
		return nil
	}
	c := &ast.Catch{Catch: d.pos(n)}
	for _, e := range pairs {
		switch e.key.Value {
		case "name":
			if c.Param = d.ident(e.value, "catch parameter"); c.Param == nil {
				return nil
			}
		case "type":
			if e.value.Kind != yaml.ScalarNode {
				d.errorf(e.value, errors.E1003, "catch type must be a string")
				return nil
			}
			c.Type = e.value.Value
		case "pattern":
			if !d.parse(e.value, "catch pattern", func(p *Parser) bool {
				c.Pattern = p.ParsePattern()
				return c.Pattern != nil
			}) {
				return nil
			}
		case "body":
			c.Body = d.decodeBlock(e.value)
		}
	}
	if _, found := byKey["body"]; !found {
		d.errorf(n, errors.E1003, "catch clause requires a body")
		return nil
	}
	return c
}

func (d *decoder) decodeSwitch(pos token.Position, key *yaml.Node, m map[string]*yaml.Node) ast.Stmt {
	value := d.expr(m["switch"], "switch value")
	stmt := &ast.Switch{Switch: pos, Value: value}
	cases, found := m["cases"]
	if !found || isNull(cases) {
		if value == nil {
			return nil
		}
		return stmt
	}
	if cases.Kind != yaml.SequenceNode {
		d.errorf(cases, errors.E1003, "switch cases must be a list")
		return nil
	}
	ok := value != nil
	for _, item := range cases.Content {
		c := d.decodeCase(resolve(item))
		if c == nil {
			ok = false
			continue
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if !ok {
		return nil
	}
	return stmt
}

func (d *decoder) decodeCase(n *yaml.Node) *ast.Case {
	pairs, byKey, ok := d.entries(n, "switch case", caseKeys)
	if !ok {
		return nil
	}
	c := &ast.Case{Case: d.pos(n)}
	for _, e := range pairs {
		switch e.key.Value {
		case "case":
			if c.Value = d.expr(e.value, "case value"); c.Value == nil {
				return nil
			}
		case "default":
			c.Default = d.boolean(e.value, "default")
		case "body":
			if !isNull(e.value) {
				c.Body = d.decodeStmts(e.value)
			}
		}
	}
	_, hasValue := byKey["case"]
	if hasValue == c.Default {
		d.errorf(n, errors.E1003, "a switch case needs exactly one of case or default: true")
		return nil
	}
	return c
}

// label wraps stmt in the labels named by n, outermost first.
func (d *decoder) label(n *yaml.Node, stmt ast.Stmt) ast.Stmt {
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	for i := len(items) - 1; i >= 0; i-- {
		item := resolve(items[i])
		name := d.ident(item, "label")
		if name == nil {
			return nil
		}
		stmt = &ast.Labeled{Label: name, Colon: d.pos(item).Advance(len(name.Name)), Stmt: stmt}
	}
	return stmt
}
