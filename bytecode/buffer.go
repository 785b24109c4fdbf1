package bytecode

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

// Width selects the operand size of a branch instruction.
type Width int

const (
	// TwoByte branches use the signed 16-bit operand of goto and if*.
	TwoByte Width = iota
	// FourByte branches use goto_w. Conditional branches are synthesized as
	// an inverted narrow branch that skips over a goto_w.
	FourByte
)

func (w Width) String() string {
	if w == FourByte {
		return "wide"
	}
	return "narrow"
}

// JumpPatch locates the operand of a branch whose target is not known yet.
// The relative offset written at OffsetPos is computed from OpcodePos.
type JumpPatch struct {
	OffsetPos int
	OpcodePos int
	Width     Width
}

// wideSkip is the distance from an inverted narrow branch to the
// instruction following the goto_w it guards.
const wideSkip = 3 + 5

// CodeBuffer is the growable instruction stream of a single method.
// It is owned by one method compilation and must not be shared.
type CodeBuffer struct {
	code      []byte
	pending   map[int]JumpPatch
	frames    map[int]bool
	reachable bool
}

// NewCodeBuffer returns an empty buffer positioned at offset zero.
func NewCodeBuffer() *CodeBuffer {
	return &CodeBuffer{
		pending:   map[int]JumpPatch{},
		frames:    map[int]bool{},
		reachable: true,
	}
}

// Offset returns the position the next instruction will be written at.
func (b *CodeBuffer) Offset() int {
	return len(b.code)
}

// Bytes returns a copy of the instruction stream written so far.
func (b *CodeBuffer) Bytes() []byte {
	out := make([]byte, len(b.code))
	copy(out, b.code)
	return out
}

// Reachable reports whether control can reach the current offset, either by
// falling out of the previous instruction or through a recorded branch
// target at this offset.
func (b *CodeBuffer) Reachable() bool {
	return b.reachable
}

// Pending returns the number of unresolved jump patches.
func (b *CodeBuffer) Pending() int {
	return len(b.pending)
}

// Emit appends an instruction and returns the position of its opcode.
func (b *CodeBuffer) Emit(code op.Code, operands ...byte) int {
	pos := len(b.code)
	b.code = append(b.code, byte(code))
	b.code = append(b.code, operands...)
	if op.EndsFlow(code) {
		b.reachable = false
	}
	return pos
}

// EmitU1 appends an instruction with a single unsigned byte operand.
func (b *CodeBuffer) EmitU1(code op.Code, v uint8) int {
	return b.Emit(code, v)
}

// EmitU2 appends an instruction with a big-endian 16-bit operand.
func (b *CodeBuffer) EmitU2(code op.Code, v uint16) int {
	return b.Emit(code, byte(v>>8), byte(v))
}

// Reserve appends n zero bytes and returns the position of the first one.
func (b *CodeBuffer) Reserve(n int) int {
	pos := len(b.code)
	b.code = append(b.code, make([]byte, n)...)
	return pos
}

// PatchAt overwrites previously written bytes starting at pos.
func (b *CodeBuffer) PatchAt(pos int, data []byte) {
	if pos < 0 || pos+len(data) > len(b.code) {
		panic(errors.Internalf("patch of %d bytes at %d is outside the buffer (length %d)",
			len(data), pos, len(b.code)))
	}
	copy(b.code[pos:], data)
}

// MarkFrame records offset as a branch target that needs a stack map frame.
// Marking the current offset makes it reachable again.
func (b *CodeBuffer) MarkFrame(offset int) {
	if _, ok := b.frames[offset]; !ok {
		b.frames[offset] = false
	}
	if offset == len(b.code) {
		b.reachable = true
	}
}

// MarkHandler records offset as the start of an exception handler.
func (b *CodeBuffer) MarkHandler(offset int) {
	b.frames[offset] = true
	if offset == len(b.code) {
		b.reachable = true
	}
}

// EmitPlaceholderJump appends a branch with a zero operand and returns the
// patch that must later be passed to Resolve.
func (b *CodeBuffer) EmitPlaceholderJump(code op.Code, width Width) JumpPatch {
	if !op.IsBranch(code) {
		panic(errors.Internalf("%s is not a branch instruction", op.GetInfo(code).Name))
	}
	var patch JumpPatch
	switch {
	case width == TwoByte && code != op.GotoW:
		pos := b.Emit(code, 0, 0)
		patch = JumpPatch{OffsetPos: pos + 1, OpcodePos: pos, Width: TwoByte}
	case code == op.Goto || code == op.GotoW:
		pos := b.Emit(op.GotoW, 0, 0, 0, 0)
		patch = JumpPatch{OffsetPos: pos + 1, OpcodePos: pos, Width: FourByte}
	default:
		// if<cond> L  ==>  if<!cond> +8; goto_w L
		skip := b.EmitU2(op.Negate(code), wideSkip)
		pos := b.Emit(op.GotoW, 0, 0, 0, 0)
		patch = JumpPatch{OffsetPos: pos + 1, OpcodePos: pos, Width: FourByte}
		b.MarkFrame(skip + wideSkip)
	}
	b.pending[patch.OffsetPos] = patch
	return patch
}

// EmitJumpTo appends a branch to an already known target.
func (b *CodeBuffer) EmitJumpTo(code op.Code, target int, width Width) error {
	return b.Resolve(b.EmitPlaceholderJump(code, width), target)
}

// Resolve writes the relative offset target-OpcodePos into the patch
// operand and records target as a frame target. A narrow patch whose offset
// does not fit in 16 bits yields errors.ErrJumpOverflow.
func (b *CodeBuffer) Resolve(patch JumpPatch, target int) error {
	if _, ok := b.pending[patch.OffsetPos]; !ok {
		panic(errors.Internalf("jump patch at %d resolved twice or never created", patch.OffsetPos))
	}
	delete(b.pending, patch.OffsetPos)
	delta := target - patch.OpcodePos
	switch patch.Width {
	case TwoByte:
		if delta < math.MinInt16 || delta > math.MaxInt16 {
			return errors.ErrJumpOverflow
		}
		binary.BigEndian.PutUint16(b.code[patch.OffsetPos:], uint16(int16(delta)))
	case FourByte:
		binary.BigEndian.PutUint32(b.code[patch.OffsetPos:], uint32(int32(delta)))
	}
	b.MarkFrame(target)
	return nil
}

// FrameTarget is an offset that requires a stack map frame. Handler targets
// start with the thrown exception on the operand stack.
type FrameTarget struct {
	Offset  int
	Handler bool
}

// FrameTargets returns the recorded frame targets sorted by offset.
func (b *CodeBuffer) FrameTargets() []FrameTarget {
	targets := make([]FrameTarget, 0, len(b.frames))
	for offset, handler := range b.frames {
		targets = append(targets, FrameTarget{Offset: offset, Handler: handler})
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Offset < targets[j].Offset
	})
	return targets
}

// Finalize returns the completed instruction stream. Any unresolved patch
// at this point is a defect in the code generator.
func (b *CodeBuffer) Finalize() []byte {
	if len(b.pending) > 0 {
		positions := make([]int, 0, len(b.pending))
		for pos := range b.pending {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
		panic(errors.Internalf("%d unresolved jump patches at operand positions %v",
			len(positions), positions))
	}
	return b.Bytes()
}
