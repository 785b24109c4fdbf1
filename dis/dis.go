// Package dis supports analysis of compiled methods by disassembling their
// instruction streams. It decodes with bytecode.Decode and resolves constant
// pool references for display.
package dis

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/internal/table"
	"github.com/deepnoodle-ai/jlower/op"
	"github.com/deepnoodle-ai/wonton/color"
)

// Instruction represents a single decoded instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []int
	Annotation string
	// Constant is the value pushed by ldc: an int32 or a string.
	Constant any
	// Frame is set when the offset needs a stack map frame.
	Frame bool
}

var newarrayTypes = map[int]string{
	4: "boolean", 5: "char", 6: "float", 7: "double",
	8: "byte", 9: "short", 10: "int", 11: "long",
}

// Disassemble returns a parsed representation of the given instruction
// stream. pool resolves constant references and may be nil.
func Disassemble(code []byte, pool *bytecode.ConstantPool) ([]Instruction, error) {
	decoded, err := bytecode.Decode(code)
	if err != nil {
		return nil, err
	}
	instructions := make([]Instruction, 0, len(decoded))
	for _, insn := range decoded {
		instructions = append(instructions, describe(insn, pool))
	}
	return instructions, nil
}

// DisassembleMethod disassembles a compiled method and marks the offsets
// recorded as frame targets.
func DisassembleMethod(m *bytecode.Method, pool *bytecode.ConstantPool) ([]Instruction, error) {
	instructions, err := Disassemble(m.Code(), pool)
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", m.Name(), m.Descriptor(), err)
	}
	frames := map[int]bool{}
	for i := 0; i < m.FrameTargetCount(); i++ {
		frames[m.FrameTargetAt(i).Offset] = true
	}
	for i := range instructions {
		instructions[i].Frame = frames[instructions[i].Offset]
	}
	return instructions, nil
}

func describe(insn bytecode.Instruction, pool *bytecode.ConstantPool) Instruction {
	info := op.GetInfo(insn.Op)
	out := Instruction{
		Offset: insn.Offset,
		Name:   info.Name,
		Opcode: insn.Op,
	}
	if insn.Wide {
		out.Name = "wide " + info.Name
	}
	c := insn.Op
	switch {
	case insn.IsBranch(), c == op.Jsr, c == op.JsrW:
		out.Operands = []int{insn.Target}
	case insn.Switch != nil:
		out.Annotation = switchAnnotation(insn.Switch)
	case c == op.Bipush, c == op.Sipush:
		out.Operands = []int{int(insn.Const)}
	case c == op.Iinc:
		out.Operands = []int{insn.Index, int(insn.Const)}
	case c == op.Ldc, c == op.LdcW:
		out.Operands = []int{insn.Index}
		out.Constant = constantValue(pool, uint16(insn.Index))
		if out.Constant == nil {
			out.Annotation = describeRef(pool, insn.Index)
		}
	case c == op.Newarray:
		out.Operands = []int{insn.Index}
		out.Annotation = newarrayTypes[insn.Index]
	case c == op.Invokeinterface:
		out.Operands = []int{insn.Index, insn.Count}
		out.Annotation = describeRef(pool, insn.Index)
	case info.OperandSize == 2:
		out.Operands = []int{insn.Index}
		out.Annotation = describeRef(pool, insn.Index)
	case info.OperandSize == 1, insn.Wide:
		out.Operands = []int{insn.Index}
	}
	return out
}

func constantValue(pool *bytecode.ConstantPool, index uint16) any {
	if pool == nil {
		return nil
	}
	c, ok := pool.At(index)
	if !ok {
		return nil
	}
	switch c.Tag {
	case bytecode.TagInteger:
		return c.Int
	case bytecode.TagString:
		if text, ok := pool.At(c.Ref1); ok {
			return text.Text
		}
	}
	return nil
}

func describeRef(pool *bytecode.ConstantPool, index int) string {
	if pool == nil {
		return fmt.Sprintf("#%d", index)
	}
	return pool.Describe(uint16(index))
}

func switchAnnotation(st *bytecode.SwitchTable) string {
	parts := make([]string, 0, len(st.Keys)+1)
	for i, key := range st.Keys {
		parts = append(parts, fmt.Sprintf("%d: %d", key, st.Targets[i]))
	}
	parts = append(parts, fmt.Sprintf("default: %d", st.Default))
	return strings.Join(parts, ", ")
}

// italic applies italic formatting (ANSI code 3) if colors are enabled.
func italic(s string) string {
	if !color.Enabled {
		return s
	}
	return "\033[3m" + s + "\033[0m"
}

// bold applies bold formatting if colors are enabled.
func bold(s string) string {
	if !color.Enabled {
		return s
	}
	return color.ApplyBold(s)
}

// Print a string representation of the given instructions to the given writer.
// Offsets that are frame targets are suffixed with an asterisk.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		offset := fmt.Sprintf("%d", instr.Offset)
		if instr.Frame {
			offset = italic(offset + "*")
		}
		values = append(values, offset)
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		switch c := instr.Constant.(type) {
		case int32:
			values = append(values, color.Colorize(color.Yellow, fmt.Sprintf("%d", c)))
		case string:
			if len(c) > 80 {
				c = c[:77] + "..."
			}
			values = append(values, color.Colorize(color.Green, fmt.Sprintf("%q", c)))
		default:
			if instr.Annotation != "" {
				values = append(values, color.Colorize(color.BrightCyan, instr.Annotation))
			} else {
				values = append(values, "")
			}
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintExceptionTable writes the method's exception table in matching
// order. Nothing is written for a method without handlers.
func PrintExceptionTable(m *bytecode.Method, writer io.Writer) {
	if m.ExceptionCount() == 0 {
		return
	}
	var lines [][]string
	for i := 0; i < m.ExceptionCount(); i++ {
		e := m.ExceptionAt(i)
		catchType := e.CatchType
		if e.IsCatchAll() {
			catchType = italic("any")
		}
		lines = append(lines, []string{
			fmt.Sprintf("%d", e.StartPC),
			fmt.Sprintf("%d", e.EndPC),
			fmt.Sprintf("%d", e.HandlerPC),
			catchType,
		})
	}
	table.NewTable(writer).
		WithHeader([]string{"START", "END", "HANDLER", "TYPE"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintMethod writes a heading, the instructions and the exception table
// of a compiled method.
func PrintMethod(m *bytecode.Method, pool *bytecode.ConstantPool, writer io.Writer) error {
	instructions, err := DisassembleMethod(m, pool)
	if err != nil {
		return err
	}
	heading := m.Name() + m.Descriptor()
	if m.IsStatic() {
		heading = "static " + heading
	}
	stats := m.Stats()
	fmt.Fprintf(writer, "%s (%d bytes, %d locals)\n", bold(heading), stats.CodeBytes, stats.MaxLocals)
	Print(instructions, writer)
	PrintExceptionTable(m, writer)
	return nil
}

// PrintClass writes every method of the class, sorted by name when sorted
// is set and in declaration order otherwise.
func PrintClass(class *bytecode.Class, sorted bool, writer io.Writer) error {
	methods := make([]*bytecode.Method, 0, class.MethodCount())
	for i := 0; i < class.MethodCount(); i++ {
		methods = append(methods, class.MethodAt(i))
	}
	if sorted {
		sort.SliceStable(methods, func(i, j int) bool {
			return methods[i].Name() < methods[j].Name()
		})
	}
	for i, m := range methods {
		if i > 0 {
			fmt.Fprintln(writer)
		}
		if err := PrintMethod(m, class.Pool(), writer); err != nil {
			return err
		}
	}
	return nil
}

func formatOperands(operands []int) string {
	var sb strings.Builder
	for i, v := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", v))
	}
	return sb.String()
}
