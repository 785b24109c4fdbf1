// Package compiler lowers the structured control flow of a method into JVM
// bytecode with resolved branch targets, an exception table and the list of
// offsets that need stack map frames.
//
// # Jumps and Label Frames
//
// Forward branches are emitted with a zero operand and recorded as a
// bytecode.JumpPatch. Loops, switches and labeled blocks push label frames
// onto the break and continue stacks; a break or continue either jumps
// straight to a frame whose target is already known (a loop test) or adds
// its patch to the frame, which resolves every pending patch once its
// target is emitted.
//
// Branches start out narrow. If any narrow offset overflows, the method is
// compiled again from scratch with every branch widened to goto_w.
//
// # Finally Bodies
//
// A finally body is copied to every exit of its try statement: the normal
// path, the end of each catch clause, a catch-all handler that rethrows,
// and every return, break or continue that leaves the protected region.
// Early exits inline the pending finally bodies nearest first. A finally
// that is already being inlined is skipped, so a return inside a finally
// body does not re-enter it. The inlined copies are excluded from the
// protected ranges of their own try statement.
//
// # Reachability
//
// CanFallThrough decides from the AST whether a trailing goto is needed.
// The code buffer also tracks whether the current offset is reachable;
// statements that follow an unconditional transfer are not emitted.
package compiler

import (
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/internal/token"
)

const (
	// DefaultMaxTableRange is the largest key range encoded as a
	// tableswitch.
	DefaultMaxTableRange = 4096

	// MaxCodeLength is the largest code attribute the JVM accepts.
	MaxCodeLength = math.MaxUint16
)

// Compiler lowers method ASTs into bytecode. A Compiler may compile many
// methods, one at a time; all of them share its constant pool.
type Compiler struct {
	// The method currently being compiled
	current *Code

	// Set while compiling with every branch widened
	wide bool

	filename      string
	source        string
	class         string
	maxTableRange int
	forceWide     bool
	log           zerolog.Logger

	exprs        ExprGenerator
	types        TypeResolver
	newLocals    func() Locals
	destructurer Destructurer
	pool         *bytecode.ConstantPool
}

// Config holds compiler configuration options.
type Config struct {
	// Filename is the source filename, used for error messages.
	Filename string

	// Source is the original source text, used for error messages.
	Source string

	// Class is the internal name of the class that owns the methods. It
	// types the receiver of instance methods.
	Class string

	// Logger receives debug events. Nil disables logging.
	Logger *zerolog.Logger

	// ForceWideJumps emits goto_w for every branch from the start.
	ForceWideJumps bool

	// MaxTableRange bounds the key range of a tableswitch. Zero selects
	// DefaultMaxTableRange.
	MaxTableRange int

	// Expressions generates the code for expressions.
	Expressions ExprGenerator

	// Types infers expression types and resolves annotations.
	Types TypeResolver

	// NewLocals creates the local variable allocator for each method.
	NewLocals func() Locals

	// Destructurer binds destructuring patterns. Optional; patterns are
	// rejected when it is nil.
	Destructurer Destructurer

	// Pool is the constant pool shared by the compiled methods. If nil, a
	// new pool is created.
	Pool *bytecode.ConstantPool
}

// Compile compiles every method of the class. Methods are compiled
// independently; a failing method does not stop the others, and all
// method errors are returned together.
func Compile(class *ast.Class, cfg *Config) (*bytecode.Class, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.CompileClass(class)
}

// New creates and returns a new Compiler.
func New(cfg *Config) (*Compiler, error) {
	if cfg == nil {
		return nil, errors.Internalf("compiler: missing configuration")
	}
	switch {
	case cfg.Expressions == nil:
		return nil, errors.Internalf("compiler: missing expression generator")
	case cfg.Types == nil:
		return nil, errors.Internalf("compiler: missing type resolver")
	case cfg.NewLocals == nil:
		return nil, errors.Internalf("compiler: missing local variable allocator")
	}
	c := &Compiler{
		filename:      cfg.Filename,
		source:        cfg.Source,
		class:         cfg.Class,
		maxTableRange: cfg.MaxTableRange,
		forceWide:     cfg.ForceWideJumps,
		log:           zerolog.Nop(),
		exprs:         cfg.Expressions,
		types:         cfg.Types,
		newLocals:     cfg.NewLocals,
		destructurer:  cfg.Destructurer,
		pool:          cfg.Pool,
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	if c.maxTableRange <= 0 {
		c.maxTableRange = DefaultMaxTableRange
	}
	if c.pool == nil {
		c.pool = bytecode.NewConstantPool()
	}
	return c, nil
}

// Pool returns the constant pool shared by the compiled methods.
func (c *Compiler) Pool() *bytecode.ConstantPool {
	return c.pool
}

// CompileClass compiles every method of the class.
func (c *Compiler) CompileClass(class *ast.Class) (*bytecode.Class, error) {
	if class.Name != "" {
		c.class = class.Name
	}
	var result *multierror.Error
	methods := make([]*bytecode.Method, 0, len(class.Methods))
	for _, m := range class.Methods {
		method, err := c.CompileMethod(m)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		methods = append(methods, method)
	}
	return bytecode.NewClass(c.class, c.pool, methods), result.ErrorOrNil()
}

// CompileMethod compiles a single method. If a narrow branch overflows, the
// method is compiled again with wide branches.
func (c *Compiler) CompileMethod(m *ast.Method) (*bytecode.Method, error) {
	if m == nil || m.Name == nil || m.Body == nil {
		var pos token.Position
		if m != nil {
			pos = m.Pos()
		}
		return nil, c.errorf(errors.E1012, pos, "method declaration requires a name and a body")
	}
	// Constants added by a method that fails are discarded with it.
	mark := c.pool.Len()
	method, err := c.compileMethod(m, c.forceWide)
	if errors.Is(err, errors.ErrJumpOverflow) && !c.forceWide {
		c.log.Debug().Str("method", m.Name.Name).Msg("branch offset overflow, recompiling with wide jumps")
		method, err = c.compileMethod(m, true)
	}
	if c.pool.Err() != nil {
		c.pool.Truncate(mark)
		limit := c.errorf(errors.E2008, m.Pos(), "method %s needs more constants than the class can hold", m.Name.Name)
		limit.Method = m.Name.Name
		return nil, limit
	}
	if errors.Is(err, errors.ErrJumpOverflow) {
		c.pool.Truncate(mark)
		limit := c.errorf(errors.E2017, m.Pos(), "method %s is too large", m.Name.Name)
		limit.Method = m.Name.Name
		return nil, limit
	}
	if err != nil {
		c.pool.Truncate(mark)
		return nil, err
	}
	c.log.Debug().
		Str("method", method.Name()).
		Int("bytes", method.CodeLength()).
		Int("handlers", method.ExceptionCount()).
		Bool("wide", method.WideJumps()).
		Msg("compiled method")
	return method, nil
}

func (c *Compiler) compileMethod(m *ast.Method, wide bool) (*bytecode.Method, error) {
	returnType, err := c.types.ResolveAnnotation(m.Returns)
	if err != nil {
		return nil, c.decorate(err, m.Pos())
	}
	locals := c.newLocals()
	c.current = newCode(m.Name.Name, returnType, locals, c.pool, c.class)
	c.wide = wide
	defer func() { c.current = nil }()

	code := c.current
	locals.EnterScope()
	defer locals.ExitScope()

	if !m.Static {
		if _, err := locals.Declare("this", bytecode.ObjectDescriptor(c.receiverClass())); err != nil {
			return nil, c.errorf(errors.E2006, m.Pos(), "%v", err)
		}
	}
	var desc strings.Builder
	desc.WriteString("(")
	for _, p := range m.Params {
		pdesc, err := c.types.ResolveAnnotation(p.Type)
		if err != nil {
			return nil, c.decorate(err, p.Pos())
		}
		if pdesc == bytecode.Void {
			return nil, c.errorf(errors.E2021, p.Pos(), "parameter %s requires a type", p.Name.Name)
		}
		if _, err := locals.Declare(p.Name.Name, pdesc); err != nil {
			if errors.Is(err, errors.ErrTooManyLocals) {
				return nil, c.tooManyLocals(p.Pos())
			}
			return nil, c.errorf(errors.E2006, p.Pos(), "duplicate parameter %s", p.Name.Name)
		}
		desc.WriteString(pdesc)
	}
	desc.WriteString(")")
	desc.WriteString(returnType)

	if err := c.compileBlock(m.Body); err != nil {
		return nil, err
	}

	// Falling off the end returns the zero value of the return type.
	if code.buf.Reachable() {
		code.markLine(c.location(m.Body.End()))
		code.buf.EmitPushDefault(returnType)
		code.buf.EmitReturn(returnType)
	}

	if code.breaks.depth() != 0 || code.continues.depth() != 0 || len(code.finallys) != 0 {
		panic(errors.Internalf("unbalanced compiler state after method %s", code.name))
	}
	bytes := code.buf.Finalize()
	if len(bytes) > MaxCodeLength {
		return nil, c.errorf(errors.E2017, m.Pos(),
			"method %s is too large (%d bytes of code)", code.name, len(bytes))
	}
	return bytecode.NewMethod(bytecode.MethodParams{
		Name:           code.name,
		Descriptor:     desc.String(),
		Static:         m.Static,
		Code:           bytes,
		ExceptionTable: code.exceptionTable(c.pool),
		FrameTargets:   code.buf.FrameTargets(),
		Lines:          code.lines,
		MaxLocals:      locals.MaxLocals(),
		WideJumps:      wide,
		Source:         c.source,
		Filename:       c.filename,
	}), nil
}

func (c *Compiler) receiverClass() string {
	if c.class == "" {
		return "java/lang/Object"
	}
	return c.class
}

// width returns the branch width used for jumps whose distance is not
// bounded in advance.
func (c *Compiler) width() bytecode.Width {
	if c.wide {
		return bytecode.FourByte
	}
	return bytecode.TwoByte
}

// generate emits an expression through the expression generator.
func (c *Compiler) generate(expr ast.Expr) (string, error) {
	desc, err := c.exprs.Generate(c.current.ctx, expr)
	if err != nil {
		return "", c.decorate(err, expr.Pos())
	}
	return desc, nil
}

// typeOf infers the descriptor of an expression.
func (c *Compiler) typeOf(expr ast.Expr) (string, error) {
	desc, err := c.types.TypeOf(c.current.ctx, expr)
	if err != nil {
		return "", c.decorate(err, expr.Pos())
	}
	return desc, nil
}

// declare allocates a named local in the innermost scope.
func (c *Compiler) declare(name *ast.Ident, desc string) (int, error) {
	slot, err := c.current.locals.Declare(name.Name, desc)
	if errors.Is(err, errors.ErrTooManyLocals) {
		return 0, c.tooManyLocals(name.Pos())
	}
	if err != nil {
		return 0, c.errorf(errors.E2022, name.Pos(), "%s is already declared in this scope", name.Name)
	}
	return slot, nil
}

// temp allocates an unnamed local for the construct at pos.
func (c *Compiler) temp(desc string, pos token.Position) (int, error) {
	slot, err := c.current.locals.Temp(desc)
	if errors.Is(err, errors.ErrTooManyLocals) {
		return 0, c.tooManyLocals(pos)
	}
	if err != nil {
		return 0, c.decorate(err, pos)
	}
	return slot, nil
}

func (c *Compiler) tooManyLocals(pos token.Position) *errors.CompileError {
	return c.errorf(errors.E2007, pos, "method %s needs more than %d local variable slots",
		c.current.name, math.MaxUint16)
}

// destructure binds pattern from the value held in slot.
func (c *Compiler) destructure(slot int, desc string, pattern ast.Pattern) error {
	if c.destructurer == nil {
		return c.errorf(errors.E2010, pattern.Pos(), "destructuring is not supported here")
	}
	if err := c.destructurer.Destructure(c.current.ctx, slot, desc, pattern); err != nil {
		return c.decorate(err, pattern.Pos())
	}
	return nil
}

func (c *Compiler) location(pos token.Position) bytecode.SourceLocation {
	if !pos.IsValid() {
		return bytecode.SourceLocation{}
	}
	return bytecode.SourceLocation{Line: pos.LineNumber(), Column: pos.ColumnNumber()}
}

// errorf creates a CompileError at the given position.
func (c *Compiler) errorf(code errors.ErrorCode, pos token.Position, format string, args ...any) *errors.CompileError {
	filename := pos.File
	if filename == "" {
		filename = c.filename
	}
	if filename == "" {
		filename = "unknown"
	}
	err := errors.Newf(code, errors.SourceLocation{
		Filename: filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   c.getSourceLine(pos.Line),
	}, format, args...)
	if c.current != nil {
		err.Method = c.current.name
	}
	return err
}

// decorate fills in the location details a collaborator could not know.
func (c *Compiler) decorate(err error, pos token.Position) error {
	compileErr, ok := errors.AsCompileError(err)
	if !ok {
		if errors.Is(err, errors.ErrJumpOverflow) {
			return err
		}
		if errors.Is(err, errors.ErrTooManyLocals) {
			return c.tooManyLocals(pos)
		}
		if _, internal := err.(*errors.InternalError); internal {
			return err
		}
		return c.errorf(errors.E2020, pos, "%v", err)
	}
	if compileErr.Line == 0 {
		located := c.errorf(compileErr.Code, pos, "%s", compileErr.Message)
		located.Suggestions = compileErr.Suggestions
		located.Note = compileErr.Note
		return located
	}
	if compileErr.Filename == "" {
		compileErr.Filename = c.filename
	}
	if compileErr.Method == "" && c.current != nil {
		compileErr.Method = c.current.name
	}
	if compileErr.SourceLine == "" {
		compileErr.SourceLine = c.getSourceLine(compileErr.Line - 1)
	}
	return compileErr
}

// getSourceLine returns the 0-indexed line of the source text.
func (c *Compiler) getSourceLine(lineNum int) string {
	if c.source == "" {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if lineNum < 0 || lineNum >= len(lines) {
		return ""
	}
	return lines[lineNum]
}
