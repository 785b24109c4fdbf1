package bytecode

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/deepnoodle-ai/jlower/op"
)

// Instruction is one decoded instruction. Only the fields relevant to the
// opcode are set.
type Instruction struct {
	Offset int
	Op     op.Code
	Length int
	// Wide is set when the instruction carried a wide prefix.
	Wide bool
	// Index is a local slot, a constant pool index or a newarray type.
	Index int
	// Const is the immediate of bipush, sipush and the delta of iinc.
	Const int32
	// Count is the invokeinterface argument count operand.
	Count int
	// Target is the absolute branch target of if*, goto and goto_w.
	Target int
	// Switch is set for tableswitch and lookupswitch.
	Switch *SwitchTable
}

// SwitchTable is a decoded tableswitch or lookupswitch. Targets are
// absolute offsets and parallel to Keys.
type SwitchTable struct {
	Padding int
	Default int
	Low     int32
	High    int32
	Keys    []int32
	Targets []int
}

// SwitchPadding returns the number of alignment bytes that follow a switch
// opcode at opcodePos, so that the first operand starts on a multiple of 4.
func SwitchPadding(opcodePos int) int {
	return (4 - (opcodePos+1)%4) % 4
}

// IsBranch reports whether the instruction transfers control to Target.
func (i Instruction) IsBranch() bool {
	return op.IsBranch(i.Op)
}

func (i Instruction) String() string {
	return fmt.Sprintf("%d: %s", i.Offset, op.GetInfo(i.Op).Name)
}

type reader struct {
	code []byte
	pos  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.code) {
		r.err = fmt.Errorf("truncated instruction at offset %d", r.pos)
		return false
	}
	return true
}

func (r *reader) u1() int {
	if !r.need(1) {
		return 0
	}
	v := r.code[r.pos]
	r.pos++
	return int(v)
}

func (r *reader) s1() int32 {
	return int32(int8(r.u1()))
}

func (r *reader) u2() int {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.code[r.pos:])
	r.pos += 2
	return int(v)
}

func (r *reader) s2() int32 {
	return int32(int16(r.u2()))
}

func (r *reader) s4() int32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.code[r.pos:])
	r.pos += 4
	return int32(v)
}

// DecodeAt decodes the instruction starting at offset.
func DecodeAt(code []byte, offset int) (Instruction, error) {
	if offset < 0 || offset >= len(code) {
		return Instruction{}, fmt.Errorf("offset %d outside code of length %d", offset, len(code))
	}
	r := &reader{code: code, pos: offset + 1}
	insn := Instruction{Offset: offset, Op: op.Code(code[offset])}
	if !op.IsDefined(insn.Op) {
		return insn, fmt.Errorf("unknown opcode 0x%02x at offset %d", code[offset], offset)
	}
	switch c := insn.Op; {
	case c == op.Bipush:
		insn.Const = r.s1()
	case c == op.Sipush:
		insn.Const = r.s2()
	case c == op.Ldc, c >= op.Iload && c <= op.Aload, c >= op.Istore && c <= op.Astore, c == op.Ret, c == op.Newarray:
		insn.Index = r.u1()
	case c >= op.Iload0 && c < op.Iaload:
		insn.Index = int(c-op.Iload0) % 4
	case c >= op.Istore0 && c < op.Iastore:
		insn.Index = int(c-op.Istore0) % 4
	case c == op.Iinc:
		insn.Index = r.u1()
		insn.Const = r.s1()
	case op.IsConditionalBranch(c), c == op.Goto, c == op.Jsr:
		insn.Target = offset + int(r.s2())
	case c == op.GotoW, c == op.JsrW:
		insn.Target = offset + int(r.s4())
	case c == op.Invokeinterface:
		insn.Index = r.u2()
		insn.Count = r.u1()
		r.u1()
	case c == op.Wide:
		insn.Wide = true
		insn.Op = op.Code(r.u1())
		insn.Index = r.u2()
		if insn.Op == op.Iinc {
			insn.Const = r.s2()
		}
	case c == op.Tableswitch, c == op.Lookupswitch:
		insn.Switch = decodeSwitch(r, c, offset)
	default:
		switch op.GetInfo(c).OperandSize {
		case 1:
			insn.Index = r.u1()
		case 2:
			insn.Index = r.u2()
		}
	}
	if r.err != nil {
		return insn, r.err
	}
	insn.Length = r.pos - offset
	return insn, nil
}

func decodeSwitch(r *reader, c op.Code, offset int) *SwitchTable {
	st := &SwitchTable{Padding: SwitchPadding(offset)}
	if !r.need(st.Padding) {
		return nil
	}
	r.pos += st.Padding
	st.Default = offset + int(r.s4())
	if c == op.Tableswitch {
		st.Low, st.High = r.s4(), r.s4()
		if r.err != nil || st.High < st.Low {
			if r.err == nil {
				r.err = fmt.Errorf("tableswitch at %d has high %d < low %d", offset, st.High, st.Low)
			}
			return nil
		}
		for k := int64(st.Low); k <= int64(st.High) && r.err == nil; k++ {
			st.Keys = append(st.Keys, int32(k))
			st.Targets = append(st.Targets, offset+int(r.s4()))
		}
		return st
	}
	n := r.s4()
	if n < 0 {
		r.err = fmt.Errorf("lookupswitch at %d has negative pair count", offset)
		return nil
	}
	for i := int32(0); i < n && r.err == nil; i++ {
		st.Keys = append(st.Keys, r.s4())
		st.Targets = append(st.Targets, offset+int(r.s4()))
	}
	return st
}

// Decode decodes a complete instruction stream.
func Decode(code []byte) ([]Instruction, error) {
	var out []Instruction
	for offset := 0; offset < len(code); {
		insn, err := DecodeAt(code, offset)
		if err != nil {
			return out, err
		}
		out = append(out, insn)
		offset += insn.Length
	}
	return out, nil
}

// BranchTargets returns the sorted, distinct targets of every branch and
// switch in the instruction stream, including the fall-through point of a
// synthesized wide conditional.
func BranchTargets(code []byte) ([]int, error) {
	insns, err := Decode(code)
	if err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	for _, insn := range insns {
		switch {
		case insn.IsBranch():
			seen[insn.Target] = true
		case insn.Switch != nil:
			seen[insn.Switch.Default] = true
			for _, t := range insn.Switch.Targets {
				seen[t] = true
			}
		}
	}
	targets := make([]int, 0, len(seen))
	for t := range seen {
		targets = append(targets, t)
	}
	sort.Ints(targets)
	return targets, nil
}
