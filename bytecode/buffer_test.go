package bytecode

import (
	"testing"

	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
	"github.com/stretchr/testify/require"
)

func TestForwardJumpResolve(t *testing.T) {
	b := NewCodeBuffer()
	b.Emit(op.Iconst1)
	patch := b.EmitPlaceholderJump(op.Ifeq, TwoByte)
	require.Equal(t, JumpPatch{OffsetPos: 2, OpcodePos: 1, Width: TwoByte}, patch)
	require.Equal(t, 1, b.Pending())

	b.Emit(op.Iconst2)
	b.Emit(op.Pop)
	require.NoError(t, b.Resolve(patch, b.Offset()))
	require.Equal(t, 0, b.Pending())

	code := b.Finalize()
	require.Equal(t, []byte{byte(op.Iconst1), byte(op.Ifeq), 0, 5, byte(op.Iconst2), byte(op.Pop)}, code)
	require.Equal(t, []FrameTarget{{Offset: 6}}, b.FrameTargets())
}

func TestBackwardJump(t *testing.T) {
	b := NewCodeBuffer()
	top := b.Offset()
	b.Emit(op.Nop)
	b.Emit(op.Nop)
	require.NoError(t, b.EmitJumpTo(op.Goto, top, TwoByte))
	require.Equal(t, []byte{0, 0, byte(op.Goto), 0xff, 0xfe}, b.Finalize())
	require.False(t, b.Reachable())
}

func TestWideGoto(t *testing.T) {
	b := NewCodeBuffer()
	patch := b.EmitPlaceholderJump(op.Goto, FourByte)
	require.Equal(t, JumpPatch{OffsetPos: 1, OpcodePos: 0, Width: FourByte}, patch)
	b.Reserve(70000)
	require.NoError(t, b.Resolve(patch, b.Offset()))

	insn, err := DecodeAt(b.Bytes(), 0)
	require.NoError(t, err)
	require.Equal(t, op.GotoW, insn.Op)
	require.Equal(t, 70005, insn.Target)
}

func TestWideConditional(t *testing.T) {
	b := NewCodeBuffer()
	b.Emit(op.Iconst0)
	patch := b.EmitPlaceholderJump(op.IfIcmplt, FourByte)
	require.Equal(t, 5, patch.OffsetPos)
	require.Equal(t, 4, patch.OpcodePos)
	require.True(t, b.Reachable())
	b.Emit(op.Nop)
	require.NoError(t, b.Resolve(patch, b.Offset()))

	insns, err := Decode(b.Finalize())
	require.NoError(t, err)
	require.Len(t, insns, 4)
	require.Equal(t, op.IfIcmpge, insns[1].Op)
	require.Equal(t, 9, insns[1].Target)
	require.Equal(t, op.GotoW, insns[2].Op)
	require.Equal(t, 10, insns[2].Target)

	targets, err := BranchTargets(b.Bytes())
	require.NoError(t, err)
	require.Equal(t, []int{9, 10}, targets)
	require.Equal(t, []FrameTarget{{Offset: 9}, {Offset: 10}}, b.FrameTargets())
}

func TestJumpOverflow(t *testing.T) {
	b := NewCodeBuffer()
	patch := b.EmitPlaceholderJump(op.Goto, TwoByte)
	b.Reserve(40000)
	require.ErrorIs(t, b.Resolve(patch, b.Offset()), errors.ErrJumpOverflow)

	b = NewCodeBuffer()
	b.Reserve(40000)
	require.ErrorIs(t, b.EmitJumpTo(op.Goto, 0, TwoByte), errors.ErrJumpOverflow)
}

func TestResolveTwicePanics(t *testing.T) {
	b := NewCodeBuffer()
	patch := b.EmitPlaceholderJump(op.Goto, TwoByte)
	require.NoError(t, b.Resolve(patch, 3))
	require.Panics(t, func() { _ = b.Resolve(patch, 3) })
}

func TestFinalizeWithPendingPanics(t *testing.T) {
	b := NewCodeBuffer()
	b.EmitPlaceholderJump(op.Goto, TwoByte)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*errors.InternalError)
		require.True(t, ok)
	}()
	b.Finalize()
}

func TestReachability(t *testing.T) {
	b := NewCodeBuffer()
	require.True(t, b.Reachable())
	b.Emit(op.Athrow)
	require.False(t, b.Reachable())
	b.MarkFrame(0)
	require.False(t, b.Reachable())
	b.MarkHandler(b.Offset())
	require.True(t, b.Reachable())
	b.EmitReturn(Void)
	require.False(t, b.Reachable())
	require.Equal(t, []FrameTarget{{Offset: 0}, {Offset: 1, Handler: true}}, b.FrameTargets())
}

func TestReserveAndPatch(t *testing.T) {
	b := NewCodeBuffer()
	b.Emit(op.Nop)
	pos := b.Reserve(4)
	require.Equal(t, 1, pos)
	b.PatchAt(pos, []byte{1, 2, 3, 4})
	require.Equal(t, []byte{0, 1, 2, 3, 4}, b.Bytes())
	require.Panics(t, func() { b.PatchAt(3, []byte{1, 2, 3}) })
}

func TestEmitLoadStore(t *testing.T) {
	tests := []struct {
		name string
		emit func(b *CodeBuffer)
		want []byte
	}{
		{"iload_2", func(b *CodeBuffer) { b.EmitLoad(Int, 2) }, []byte{0x1c}},
		{"aload_0", func(b *CodeBuffer) { b.EmitLoad(StringType, 0) }, []byte{0x2a}},
		{"lload 7", func(b *CodeBuffer) { b.EmitLoad(Long, 7) }, []byte{0x16, 7}},
		{"dstore_3", func(b *CodeBuffer) { b.EmitStore(Double, 3) }, []byte{0x4a}},
		{"istore boolean", func(b *CodeBuffer) { b.EmitStore(Boolean, 1) }, []byte{0x3c}},
		{"wide astore", func(b *CodeBuffer) { b.EmitStore("[I", 300) }, []byte{0xc4, 0x3a, 0x01, 0x2c}},
		{"iinc", func(b *CodeBuffer) { b.EmitIinc(4, -1) }, []byte{0x84, 4, 0xff}},
		{"wide iinc", func(b *CodeBuffer) { b.EmitIinc(2, 1000) }, []byte{0xc4, 0x84, 0, 2, 0x03, 0xe8}},
		{"areturn", func(b *CodeBuffer) { b.EmitReturn(ObjectType) }, []byte{0xb0}},
		{"lreturn", func(b *CodeBuffer) { b.EmitReturn(Long) }, []byte{0xad}},
		{"pop2", func(b *CodeBuffer) { b.EmitPop(Double) }, []byte{0x58}},
		{"pop void", func(b *CodeBuffer) { b.EmitPop(Void) }, nil},
		{"default ref", func(b *CodeBuffer) { b.EmitPushDefault("Ljava/util/List;") }, []byte{0x01}},
		{"default long", func(b *CodeBuffer) { b.EmitPushDefault(Long) }, []byte{0x09}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewCodeBuffer()
			tt.emit(b)
			if tt.want == nil {
				require.Equal(t, 0, b.Offset())
				return
			}
			require.Equal(t, tt.want, b.Bytes())
		})
	}
}

func TestEmitPushInt(t *testing.T) {
	pool := NewConstantPool()
	tests := []struct {
		value int32
		want  []byte
	}{
		{-1, []byte{0x02}},
		{0, []byte{0x03}},
		{5, []byte{0x08}},
		{6, []byte{0x10, 6}},
		{-128, []byte{0x10, 0x80}},
		{1000, []byte{0x11, 0x03, 0xe8}},
		{-40000, []byte{0x12, 1}},
	}
	for _, tt := range tests {
		b := NewCodeBuffer()
		b.EmitPushInt(tt.value, pool)
		require.Equal(t, tt.want, b.Bytes(), "value %d", tt.value)
	}
	c, ok := pool.At(1)
	require.True(t, ok)
	require.Equal(t, int32(-40000), c.Int)
}

func TestEmitInvoke(t *testing.T) {
	pool := NewConstantPool()
	b := NewCodeBuffer()
	idx := pool.InterfaceMethodref("java/util/List", "get", "(I)Ljava/lang/Object;")
	b.EmitInvoke(op.Invokeinterface, idx, 1)
	insn, err := DecodeAt(b.Bytes(), 0)
	require.NoError(t, err)
	require.Equal(t, int(idx), insn.Index)
	require.Equal(t, 2, insn.Count)
	require.Equal(t, 5, insn.Length)
}
