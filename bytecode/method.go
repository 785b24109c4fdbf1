package bytecode

import "strings"

// Method is the compiled form of one method: the pieces of its Code
// attribute plus the metadata needed to emit a StackMapTable later.
// It is immutable after creation and safe for concurrent use.
type Method struct {
	name       string
	descriptor string
	static     bool

	code           []byte
	exceptionTable []ExceptionTableEntry
	frameTargets   []FrameTarget
	lines          []LineEntry
	maxLocals      int

	// wideJumps is set when the method had to be recompiled with goto_w
	// after a narrow branch overflowed.
	wideJumps bool

	source   string
	filename string
}

// MethodParams contains parameters for creating a new Method.
type MethodParams struct {
	Name           string
	Descriptor     string
	Static         bool
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	FrameTargets   []FrameTarget
	Lines          []LineEntry
	MaxLocals      int
	WideJumps      bool
	Source         string
	Filename       string
}

// NewMethod creates a new immutable Method from the given parameters.
// Input slices are copied.
func NewMethod(params MethodParams) *Method {
	return &Method{
		name:           params.Name,
		descriptor:     params.Descriptor,
		static:         params.Static,
		code:           copySlice(params.Code),
		exceptionTable: copySlice(params.ExceptionTable),
		frameTargets:   copySlice(params.FrameTargets),
		lines:          copySlice(params.Lines),
		maxLocals:      params.MaxLocals,
		wideJumps:      params.WideJumps,
		source:         params.Source,
		filename:       params.Filename,
	}
}

// Name returns the method name.
func (m *Method) Name() string {
	return m.name
}

// Descriptor returns the method descriptor, e.g. "(I)V".
func (m *Method) Descriptor() string {
	return m.descriptor
}

// IsStatic returns true for static methods.
func (m *Method) IsStatic() bool {
	return m.static
}

// CodeLength returns the number of bytes in the instruction stream.
func (m *Method) CodeLength() int {
	return len(m.code)
}

// ByteAt returns the instruction stream byte at the given offset.
func (m *Method) ByteAt(offset int) byte {
	return m.code[offset]
}

// Code returns a copy of the instruction stream.
func (m *Method) Code() []byte {
	return copySlice(m.code)
}

// ExceptionCount returns the number of exception table entries.
func (m *Method) ExceptionCount() int {
	return len(m.exceptionTable)
}

// ExceptionAt returns the exception table entry at the given index.
func (m *Method) ExceptionAt(index int) ExceptionTableEntry {
	return m.exceptionTable[index]
}

// FrameTargetCount returns the number of recorded frame targets.
func (m *Method) FrameTargetCount() int {
	return len(m.frameTargets)
}

// FrameTargetAt returns the frame target at the given index. Targets are
// sorted by offset.
func (m *Method) FrameTargetAt(index int) FrameTarget {
	return m.frameTargets[index]
}

// LineCount returns the number of line table entries.
func (m *Method) LineCount() int {
	return len(m.lines)
}

// LineAt returns the line table entry at the given index.
func (m *Method) LineAt(index int) LineEntry {
	return m.lines[index]
}

// LocationAt returns the source location of the instruction at offset.
func (m *Method) LocationAt(offset int) SourceLocation {
	var loc SourceLocation
	for _, entry := range m.lines {
		if entry.StartPC > offset {
			break
		}
		loc = entry.Location
	}
	return loc
}

// MaxLocals returns the number of local variable slots used.
func (m *Method) MaxLocals() int {
	return m.maxLocals
}

// WideJumps reports whether the method was compiled with goto_w branches.
func (m *Method) WideJumps() bool {
	return m.wideJumps
}

// Filename returns the source filename.
func (m *Method) Filename() string {
	return m.filename
}

// GetSourceLine returns the source code line at the given 1-based line number.
func (m *Method) GetSourceLine(lineNum int) string {
	if lineNum < 1 || m.source == "" {
		return ""
	}
	lines := strings.Split(m.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Stats returns statistics about this method.
func (m *Method) Stats() Stats {
	count := 0
	if insns, err := Decode(m.code); err == nil {
		count = len(insns)
	}
	return Stats{
		CodeBytes:    len(m.code),
		Instructions: count,
		Handlers:     len(m.exceptionTable),
		FrameTargets: len(m.frameTargets),
		MaxLocals:    m.maxLocals,
	}
}

// Class groups the methods compiled against one constant pool.
type Class struct {
	name    string
	pool    *ConstantPool
	methods []*Method
}

// NewClass creates a Class. The methods slice is copied.
func NewClass(name string, pool *ConstantPool, methods []*Method) *Class {
	return &Class{name: name, pool: pool, methods: copySlice(methods)}
}

// Name returns the internal class name.
func (c *Class) Name() string {
	return c.name
}

// Pool returns the constant pool shared by the class's methods.
func (c *Class) Pool() *ConstantPool {
	return c.pool
}

// MethodCount returns the number of methods.
func (c *Class) MethodCount() int {
	return len(c.methods)
}

// MethodAt returns the method at the given index.
func (c *Class) MethodAt(index int) *Method {
	return c.methods[index]
}

// Method returns the first method with the given name.
func (c *Class) Method(name string) (*Method, bool) {
	for _, m := range c.methods {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}
