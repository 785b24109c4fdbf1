// Package op defines the JVM opcodes emitted by the jlower code generator.
package op

// Code is a one-byte JVM opcode.
type Code byte

// Constants
const (
	Nop        Code = 0x00
	AconstNull Code = 0x01
	IconstM1   Code = 0x02
	Iconst0    Code = 0x03
	Iconst1    Code = 0x04
	Iconst2    Code = 0x05
	Iconst3    Code = 0x06
	Iconst4    Code = 0x07
	Iconst5    Code = 0x08
	Lconst0    Code = 0x09
	Lconst1    Code = 0x0a
	Fconst0    Code = 0x0b
	Fconst1    Code = 0x0c
	Fconst2    Code = 0x0d
	Dconst0    Code = 0x0e
	Dconst1    Code = 0x0f
	Bipush     Code = 0x10
	Sipush     Code = 0x11
	Ldc        Code = 0x12
	LdcW       Code = 0x13
	Ldc2W      Code = 0x14
)

// Loads
const (
	Iload   Code = 0x15
	Lload   Code = 0x16
	Fload   Code = 0x17
	Dload   Code = 0x18
	Aload   Code = 0x19
	Iload0  Code = 0x1a
	Lload0  Code = 0x1e
	Fload0  Code = 0x22
	Dload0  Code = 0x26
	Aload0  Code = 0x2a
	Iaload  Code = 0x2e
	Laload  Code = 0x2f
	Faload  Code = 0x30
	Daload  Code = 0x31
	Aaload  Code = 0x32
	Baload  Code = 0x33
	Caload  Code = 0x34
	Saload  Code = 0x35
)

// Stores
const (
	Istore  Code = 0x36
	Lstore  Code = 0x37
	Fstore  Code = 0x38
	Dstore  Code = 0x39
	Astore  Code = 0x3a
	Istore0 Code = 0x3b
	Lstore0 Code = 0x3f
	Fstore0 Code = 0x43
	Dstore0 Code = 0x47
	Astore0 Code = 0x4b
	Iastore Code = 0x4f
	Aastore Code = 0x53
)

// Stack
const (
	Pop    Code = 0x57
	Pop2   Code = 0x58
	Dup    Code = 0x59
	DupX1  Code = 0x5a
	DupX2  Code = 0x5b
	Dup2   Code = 0x5c
	Dup2X1 Code = 0x5d
	Dup2X2 Code = 0x5e
	Swap   Code = 0x5f
)

// Math
const (
	Iadd Code = 0x60
	Ladd Code = 0x61
	Isub Code = 0x64
	Lsub Code = 0x65
	Imul Code = 0x68
	Lmul Code = 0x69
	Idiv Code = 0x6c
	Ldiv Code = 0x6d
	Irem Code = 0x70
	Lrem Code = 0x71
	Ineg Code = 0x74
	Lneg Code = 0x75
	Ishl Code = 0x78
	Ishr Code = 0x7a
	Iand Code = 0x7e
	Ior  Code = 0x80
	Ixor Code = 0x82
	Iinc Code = 0x84
)

// Conversions and comparisons
const (
	I2l   Code = 0x85
	L2i   Code = 0x88
	I2c   Code = 0x92
	Lcmp  Code = 0x94
	Fcmpl Code = 0x95
	Fcmpg Code = 0x96
	Dcmpl Code = 0x97
	Dcmpg Code = 0x98
)

// Control
const (
	Ifeq         Code = 0x99
	Ifne         Code = 0x9a
	Iflt         Code = 0x9b
	Ifge         Code = 0x9c
	Ifgt         Code = 0x9d
	Ifle         Code = 0x9e
	IfIcmpeq     Code = 0x9f
	IfIcmpne     Code = 0xa0
	IfIcmplt     Code = 0xa1
	IfIcmpge     Code = 0xa2
	IfIcmpgt     Code = 0xa3
	IfIcmple     Code = 0xa4
	IfAcmpeq     Code = 0xa5
	IfAcmpne     Code = 0xa6
	Goto         Code = 0xa7
	Jsr          Code = 0xa8
	Ret          Code = 0xa9
	Tableswitch  Code = 0xaa
	Lookupswitch Code = 0xab
	Ireturn      Code = 0xac
	Lreturn      Code = 0xad
	Freturn      Code = 0xae
	Dreturn      Code = 0xaf
	Areturn      Code = 0xb0
	Return       Code = 0xb1
)

// References
const (
	Getstatic       Code = 0xb2
	Putstatic       Code = 0xb3
	Getfield        Code = 0xb4
	Putfield        Code = 0xb5
	Invokevirtual   Code = 0xb6
	Invokespecial   Code = 0xb7
	Invokestatic    Code = 0xb8
	Invokeinterface Code = 0xb9
	New             Code = 0xbb
	Newarray        Code = 0xbc
	Anewarray       Code = 0xbd
	Arraylength     Code = 0xbe
	Athrow          Code = 0xbf
	Checkcast       Code = 0xc0
	Instanceof      Code = 0xc1
	Monitorenter    Code = 0xc2
	Monitorexit     Code = 0xc3
)

// Extended
const (
	Wide      Code = 0xc4
	Ifnull    Code = 0xc6
	Ifnonnull Code = 0xc7
	GotoW     Code = 0xc8
	JsrW      Code = 0xc9
)

// Variable is the operand size reported for instructions whose length
// depends on their position or on a wide prefix.
const Variable = -1

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// OperandSize is the number of operand bytes following the opcode,
	// or Variable for tableswitch, lookupswitch and wide.
	OperandSize int
}

var infos [256]Info

func init() {
	type opInfo struct {
		op   Code
		name string
		size int
	}
	ops := []opInfo{
		{Nop, "nop", 0},
		{AconstNull, "aconst_null", 0},
		{IconstM1, "iconst_m1", 0},
		{Iconst0, "iconst_0", 0},
		{Iconst1, "iconst_1", 0},
		{Iconst2, "iconst_2", 0},
		{Iconst3, "iconst_3", 0},
		{Iconst4, "iconst_4", 0},
		{Iconst5, "iconst_5", 0},
		{Lconst0, "lconst_0", 0},
		{Lconst1, "lconst_1", 0},
		{Fconst0, "fconst_0", 0},
		{Fconst1, "fconst_1", 0},
		{Fconst2, "fconst_2", 0},
		{Dconst0, "dconst_0", 0},
		{Dconst1, "dconst_1", 0},
		{Bipush, "bipush", 1},
		{Sipush, "sipush", 2},
		{Ldc, "ldc", 1},
		{LdcW, "ldc_w", 2},
		{Ldc2W, "ldc2_w", 2},
		{Iload, "iload", 1},
		{Lload, "lload", 1},
		{Fload, "fload", 1},
		{Dload, "dload", 1},
		{Aload, "aload", 1},
		{Iaload, "iaload", 0},
		{Laload, "laload", 0},
		{Faload, "faload", 0},
		{Daload, "daload", 0},
		{Aaload, "aaload", 0},
		{Baload, "baload", 0},
		{Caload, "caload", 0},
		{Saload, "saload", 0},
		{Istore, "istore", 1},
		{Lstore, "lstore", 1},
		{Fstore, "fstore", 1},
		{Dstore, "dstore", 1},
		{Astore, "astore", 1},
		{Iastore, "iastore", 0},
		{Aastore, "aastore", 0},
		{Pop, "pop", 0},
		{Pop2, "pop2", 0},
		{Dup, "dup", 0},
		{DupX1, "dup_x1", 0},
		{DupX2, "dup_x2", 0},
		{Dup2, "dup2", 0},
		{Dup2X1, "dup2_x1", 0},
		{Dup2X2, "dup2_x2", 0},
		{Swap, "swap", 0},
		{Iadd, "iadd", 0},
		{Ladd, "ladd", 0},
		{Isub, "isub", 0},
		{Lsub, "lsub", 0},
		{Imul, "imul", 0},
		{Lmul, "lmul", 0},
		{Idiv, "idiv", 0},
		{Ldiv, "ldiv", 0},
		{Irem, "irem", 0},
		{Lrem, "lrem", 0},
		{Ineg, "ineg", 0},
		{Lneg, "lneg", 0},
		{Ishl, "ishl", 0},
		{Ishr, "ishr", 0},
		{Iand, "iand", 0},
		{Ior, "ior", 0},
		{Ixor, "ixor", 0},
		{Iinc, "iinc", 2},
		{I2l, "i2l", 0},
		{L2i, "l2i", 0},
		{I2c, "i2c", 0},
		{Lcmp, "lcmp", 0},
		{Fcmpl, "fcmpl", 0},
		{Fcmpg, "fcmpg", 0},
		{Dcmpl, "dcmpl", 0},
		{Dcmpg, "dcmpg", 0},
		{Ifeq, "ifeq", 2},
		{Ifne, "ifne", 2},
		{Iflt, "iflt", 2},
		{Ifge, "ifge", 2},
		{Ifgt, "ifgt", 2},
		{Ifle, "ifle", 2},
		{IfIcmpeq, "if_icmpeq", 2},
		{IfIcmpne, "if_icmpne", 2},
		{IfIcmplt, "if_icmplt", 2},
		{IfIcmpge, "if_icmpge", 2},
		{IfIcmpgt, "if_icmpgt", 2},
		{IfIcmple, "if_icmple", 2},
		{IfAcmpeq, "if_acmpeq", 2},
		{IfAcmpne, "if_acmpne", 2},
		{Goto, "goto", 2},
		{Jsr, "jsr", 2},
		{Ret, "ret", 1},
		{Tableswitch, "tableswitch", Variable},
		{Lookupswitch, "lookupswitch", Variable},
		{Ireturn, "ireturn", 0},
		{Lreturn, "lreturn", 0},
		{Freturn, "freturn", 0},
		{Dreturn, "dreturn", 0},
		{Areturn, "areturn", 0},
		{Return, "return", 0},
		{Getstatic, "getstatic", 2},
		{Putstatic, "putstatic", 2},
		{Getfield, "getfield", 2},
		{Putfield, "putfield", 2},
		{Invokevirtual, "invokevirtual", 2},
		{Invokespecial, "invokespecial", 2},
		{Invokestatic, "invokestatic", 2},
		{Invokeinterface, "invokeinterface", 4},
		{New, "new", 2},
		{Newarray, "newarray", 1},
		{Anewarray, "anewarray", 2},
		{Arraylength, "arraylength", 0},
		{Athrow, "athrow", 0},
		{Checkcast, "checkcast", 2},
		{Instanceof, "instanceof", 2},
		{Monitorenter, "monitorenter", 0},
		{Monitorexit, "monitorexit", 0},
		{Wide, "wide", Variable},
		{Ifnull, "ifnull", 2},
		{Ifnonnull, "ifnonnull", 2},
		{GotoW, "goto_w", 4},
		{JsrW, "jsr_w", 4},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:        o.op,
			Name:        o.name,
			OperandSize: o.size,
		}
	}
	// The short load/store forms encode the slot in the opcode itself.
	shortForms := []struct {
		base   Code
		prefix string
	}{
		{Iload0, "iload"}, {Lload0, "lload"}, {Fload0, "fload"}, {Dload0, "dload"}, {Aload0, "aload"},
		{Istore0, "istore"}, {Lstore0, "lstore"}, {Fstore0, "fstore"}, {Dstore0, "dstore"}, {Astore0, "astore"},
	}
	for _, sf := range shortForms {
		for slot := 0; slot < 4; slot++ {
			code := sf.base + Code(slot)
			infos[code] = Info{Code: code, Name: sf.prefix + "_" + string(rune('0'+slot))}
		}
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes have
// an empty name.
func GetInfo(code Code) Info {
	return infos[code]
}

// IsDefined reports whether the opcode is known to this package.
func IsDefined(code Code) bool {
	return infos[code].Name != ""
}

// IsConditionalBranch reports whether the opcode is a two-way branch with a
// 2-byte relative offset.
func IsConditionalBranch(code Code) bool {
	switch {
	case code >= Ifeq && code <= IfAcmpne:
		return true
	case code == Ifnull || code == Ifnonnull:
		return true
	}
	return false
}

// IsBranch reports whether the opcode carries a relative branch offset.
func IsBranch(code Code) bool {
	return IsConditionalBranch(code) || code == Goto || code == GotoW
}

// EndsFlow reports whether control never continues to the next instruction
// after the opcode executes.
func EndsFlow(code Code) bool {
	switch code {
	case Goto, GotoW, Athrow, Tableswitch, Lookupswitch,
		Ireturn, Lreturn, Freturn, Dreturn, Areturn, Return:
		return true
	}
	return false
}

var negations = map[Code]Code{
	Ifeq:      Ifne,
	Ifne:      Ifeq,
	Iflt:      Ifge,
	Ifge:      Iflt,
	Ifgt:      Ifle,
	Ifle:      Ifgt,
	IfIcmpeq:  IfIcmpne,
	IfIcmpne:  IfIcmpeq,
	IfIcmplt:  IfIcmpge,
	IfIcmpge:  IfIcmplt,
	IfIcmpgt:  IfIcmple,
	IfIcmple:  IfIcmpgt,
	IfAcmpeq:  IfAcmpne,
	IfAcmpne:  IfAcmpeq,
	Ifnull:    Ifnonnull,
	Ifnonnull: Ifnull,
}

// Negate returns the conditional branch taken exactly when the given one is
// not taken. It panics if code is not a conditional branch.
func Negate(code Code) Code {
	neg, ok := negations[code]
	if !ok {
		panic("op: negate of non-conditional opcode " + GetInfo(code).Name)
	}
	return neg
}

// CompareOpType describes an integer comparison operator of the source
// language.
type CompareOpType string

const (
	LessThan           CompareOpType = "<"
	LessThanOrEqual    CompareOpType = "<="
	Equal              CompareOpType = "=="
	NotEqual           CompareOpType = "!="
	GreaterThan        CompareOpType = ">"
	GreaterThanOrEqual CompareOpType = ">="
)

// IsCompareOp reports whether the operator is one of the six comparisons.
func IsCompareOp(operator string) bool {
	_, ok := intCompare[CompareOpType(operator)]
	return ok
}

var intCompare = map[CompareOpType][2]Code{
	LessThan:           {IfIcmplt, Iflt},
	LessThanOrEqual:    {IfIcmple, Ifle},
	Equal:              {IfIcmpeq, Ifeq},
	NotEqual:           {IfIcmpne, Ifne},
	GreaterThan:        {IfIcmpgt, Ifgt},
	GreaterThanOrEqual: {IfIcmpge, Ifge},
}

// IntCompare returns the two-operand branch taken when the comparison holds
// for two ints on the stack.
func (cop CompareOpType) IntCompare() Code {
	return intCompare[cop][0]
}

// ZeroCompare returns the single-operand branch taken when the comparison
// holds between the int on the stack and zero.
func (cop CompareOpType) ZeroCompare() Code {
	return intCompare[cop][1]
}
