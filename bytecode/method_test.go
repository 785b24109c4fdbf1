package bytecode

import (
	"encoding/binary"
	"testing"

	"github.com/deepnoodle-ai/jlower/op"
	"github.com/stretchr/testify/require"
)

func TestNewMethodImmutability(t *testing.T) {
	code := []byte{byte(op.Iconst0), byte(op.Ireturn)}
	table := []ExceptionTableEntry{{StartPC: 0, EndPC: 1, HandlerPC: 1}}
	frames := []FrameTarget{{Offset: 1, Handler: true}}

	m := NewMethod(MethodParams{
		Name:           "zero",
		Descriptor:     "()I",
		Static:         true,
		Code:           code,
		ExceptionTable: table,
		FrameTargets:   frames,
		Lines:          []LineEntry{{StartPC: 0, Location: SourceLocation{Line: 3, Column: 5}}},
		MaxLocals:      1,
		Source:         "a\nb\nreturn 0",
	})

	code[0] = byte(op.Nop)
	table[0].HandlerPC = 99
	frames[0].Offset = 99

	require.Equal(t, byte(op.Iconst0), m.ByteAt(0))
	require.Equal(t, 1, m.ExceptionAt(0).HandlerPC)
	require.Equal(t, 1, m.FrameTargetAt(0).Offset)

	out := m.Code()
	out[1] = 0
	require.Equal(t, byte(op.Ireturn), m.ByteAt(1))

	require.Equal(t, "zero", m.Name())
	require.Equal(t, "()I", m.Descriptor())
	require.True(t, m.IsStatic())
	require.Equal(t, 2, m.CodeLength())
	require.Equal(t, 3, m.LocationAt(1).Line)
	require.Equal(t, "return 0", m.GetSourceLine(3))
	require.Equal(t, "", m.GetSourceLine(4))
	require.Equal(t, Stats{CodeBytes: 2, Instructions: 2, Handlers: 1, FrameTargets: 1, MaxLocals: 1}, m.Stats())
}

func TestClassLookup(t *testing.T) {
	pool := NewConstantPool()
	a := NewMethod(MethodParams{Name: "a"})
	b := NewMethod(MethodParams{Name: "b"})
	c := NewClass("demo/Loops", pool, []*Method{a, b})
	require.Equal(t, "demo/Loops", c.Name())
	require.Equal(t, 2, c.MethodCount())
	require.Same(t, pool, c.Pool())
	found, ok := c.Method("b")
	require.True(t, ok)
	require.Same(t, b, found)
	_, ok = c.Method("missing")
	require.False(t, ok)
}

func TestConstantPoolDedup(t *testing.T) {
	p := NewConstantPool()
	size := p.InterfaceMethodref("java/util/List", "size", "()I")
	again := p.InterfaceMethodref("java/util/List", "size", "()I")
	require.Equal(t, size, again)

	cls := p.Class("java/util/List")
	require.Equal(t, uint16(2), cls)
	require.Equal(t, "java/util/List.size:()I", p.Describe(size))
	require.Equal(t, "java/util/List", p.Describe(cls))

	str := p.String("x")
	require.Equal(t, `"x"`, p.Describe(str))
	require.NotEqual(t, p.Methodref("java/util/List", "size", "()I"), size)

	_, ok := p.At(0)
	require.False(t, ok)
	entry, ok := p.At(1)
	require.True(t, ok)
	require.Equal(t, TagUtf8, entry.Tag)
	require.Equal(t, "Utf8", entry.Tag.String())
	require.Greater(t, p.Count(), 6)
}

func TestParseMethodDescriptor(t *testing.T) {
	md, err := ParseMethodDescriptor("(IJ[Ljava/lang/String;D)Ljava/util/List;")
	require.NoError(t, err)
	require.Equal(t, []string{"I", "J", "[Ljava/lang/String;", "D"}, md.Params)
	require.Equal(t, "Ljava/util/List;", md.Return)
	require.Equal(t, 6, md.ArgSlots())
	require.Equal(t, "(IJ[Ljava/lang/String;D)Ljava/util/List;", md.String())

	md, err = ParseMethodDescriptor("()V")
	require.NoError(t, err)
	require.Empty(t, md.Params)
	require.Equal(t, Void, md.Return)

	for _, bad := range []string{"I", "(I", "(Q)V", "()", "(L;)V", "()II"} {
		_, err := ParseMethodDescriptor(bad)
		require.Error(t, err, bad)
	}
}

func TestDescriptorHelpers(t *testing.T) {
	require.Equal(t, 2, SlotSize(Long))
	require.Equal(t, 0, SlotSize(Void))
	require.Equal(t, 1, SlotSize("[J"))
	require.True(t, IsIntLike(Char))
	require.False(t, IsIntLike(Long))
	require.True(t, IsReference("[I"))
	require.Equal(t, "I", ElementType("[I"))
	require.Equal(t, "java/util/Map", ClassName("Ljava/util/Map;"))
	require.Equal(t, "[I", ClassName("[I"))
	require.Equal(t, "Ljava/lang/Object;", ObjectDescriptor("java/lang/Object"))
	require.True(t, ValidFieldDescriptor("[[Ljava/lang/String;"))
	require.False(t, ValidFieldDescriptor("II"))
}

func TestDecodeSwitches(t *testing.T) {
	// nop; tableswitch at 1 with 2 bytes of padding, low 0, high 1
	code := []byte{byte(op.Nop), byte(op.Tableswitch), 0, 0}
	code = binary.BigEndian.AppendUint32(code, 30)
	code = binary.BigEndian.AppendUint32(code, 0)
	code = binary.BigEndian.AppendUint32(code, 1)
	code = binary.BigEndian.AppendUint32(code, 20)
	code = binary.BigEndian.AppendUint32(code, 25)

	insn, err := DecodeAt(code, 1)
	require.NoError(t, err)
	require.Equal(t, 2, insn.Switch.Padding)
	require.Equal(t, 31, insn.Switch.Default)
	require.Equal(t, []int32{0, 1}, insn.Switch.Keys)
	require.Equal(t, []int{21, 26}, insn.Switch.Targets)
	require.Equal(t, len(code)-1, insn.Length)

	// lookupswitch at 0 with 3 bytes of padding and one pair
	code = []byte{byte(op.Lookupswitch), 0, 0, 0}
	code = binary.BigEndian.AppendUint32(code, 16)
	code = binary.BigEndian.AppendUint32(code, 1)
	code = binary.BigEndian.AppendUint32(code, uint32(0xffffff9c)) // -100
	code = binary.BigEndian.AppendUint32(code, 20)
	insn, err = DecodeAt(code, 0)
	require.NoError(t, err)
	require.Equal(t, []int32{-100}, insn.Switch.Keys)
	require.Equal(t, []int{20}, insn.Switch.Targets)
	require.Equal(t, 20, insn.Length)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{byte(op.Sipush), 1})
	require.Error(t, err)
	_, err = Decode([]byte{0xba})
	require.Error(t, err)
	_, err = DecodeAt([]byte{0}, 4)
	require.Error(t, err)
}

func TestSwitchPadding(t *testing.T) {
	require.Equal(t, 3, SwitchPadding(0))
	require.Equal(t, 2, SwitchPadding(1))
	require.Equal(t, 1, SwitchPadding(2))
	require.Equal(t, 0, SwitchPadding(3))
	require.Equal(t, 3, SwitchPadding(4))
}
