package compiler

import (
	"github.com/deepnoodle-ai/jlower/bytecode"
)

// ExceptionHandler describes one protected range of a try statement before
// catch types are resolved against the constant pool.
type ExceptionHandler struct {
	Start     int    // First protected offset
	End       int    // Exclusive end of the protected range
	Handler   int    // Offset of the handler code
	CatchType string // Internal class name, empty for catch-all
}

// Code holds the state of a single in-flight method compilation.
type Code struct {
	name       string
	returnType string
	buf        *bytecode.CodeBuffer
	locals     Locals
	ctx        *Context

	// Exception handlers in priority order
	handlers []*ExceptionHandler

	lines []bytecode.LineEntry

	// Used during compilation only
	breaks    labelStack
	continues labelStack
	finallys  []*pendingFinally

	// Labels waiting to be attached to the next loop or switch
	labels []string
}

func newCode(name, returnType string, locals Locals, pool *bytecode.ConstantPool, class string) *Code {
	buf := bytecode.NewCodeBuffer()
	return &Code{
		name:       name,
		returnType: returnType,
		buf:        buf,
		locals:     locals,
		ctx:        &Context{Code: buf, Pool: pool, Locals: locals, Class: class},
	}
}

// takeLabels returns and clears the labels waiting for a loop or switch.
func (c *Code) takeLabels() []string {
	labels := c.labels
	c.labels = nil
	return labels
}

// markLine records that the code emitted from the current offset belongs
// to the given source location.
func (c *Code) markLine(loc bytecode.SourceLocation) {
	if loc.Line <= 0 {
		return
	}
	pc := c.buf.Offset()
	if n := len(c.lines); n > 0 {
		last := &c.lines[n-1]
		if last.StartPC == pc {
			last.Location = loc
			return
		}
		if last.Location.Line == loc.Line {
			return
		}
	}
	c.lines = append(c.lines, bytecode.LineEntry{StartPC: pc, Location: loc})
}

// exceptionTable resolves the recorded handlers into table entries.
func (c *Code) exceptionTable(pool *bytecode.ConstantPool) []bytecode.ExceptionTableEntry {
	entries := make([]bytecode.ExceptionTableEntry, 0, len(c.handlers))
	for _, h := range c.handlers {
		entry := bytecode.ExceptionTableEntry{
			StartPC:   h.Start,
			EndPC:     h.End,
			HandlerPC: h.Handler,
			CatchType: h.CatchType,
		}
		if h.CatchType != "" {
			entry.CatchIndex = pool.Class(h.CatchType)
		}
		entries = append(entries, entry)
	}
	return entries
}
