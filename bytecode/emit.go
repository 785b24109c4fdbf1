package bytecode

import (
	"math"

	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

// kindOffset maps a descriptor to its position in the i/l/f/d/a opcode
// families, which are laid out in that order for loads, stores and returns.
func kindOffset(desc string) op.Code {
	switch {
	case IsIntLike(desc):
		return 0
	case desc == Long:
		return 1
	case desc == Float:
		return 2
	case desc == Double:
		return 3
	}
	return 4
}

// EmitLoad pushes the local at slot, choosing the shortest encoding.
func (b *CodeBuffer) EmitLoad(desc string, slot int) int {
	return b.emitLocal(op.Iload, op.Iload0, desc, slot)
}

// EmitStore pops into the local at slot, choosing the shortest encoding.
func (b *CodeBuffer) EmitStore(desc string, slot int) int {
	return b.emitLocal(op.Istore, op.Istore0, desc, slot)
}

func (b *CodeBuffer) emitLocal(base, shortBase op.Code, desc string, slot int) int {
	if slot < 0 || slot > math.MaxUint16 {
		panic(errors.Internalf("local slot %d out of range", slot))
	}
	k := kindOffset(desc)
	switch {
	case slot <= 3:
		return b.Emit(shortBase + 4*k + op.Code(slot))
	case slot <= math.MaxUint8:
		return b.EmitU1(base+k, uint8(slot))
	}
	return b.Emit(op.Wide, byte(base+k), byte(slot>>8), byte(slot))
}

// EmitIinc adds delta to the int local at slot.
func (b *CodeBuffer) EmitIinc(slot int, delta int) int {
	if slot <= math.MaxUint8 && delta >= math.MinInt8 && delta <= math.MaxInt8 {
		return b.Emit(op.Iinc, byte(slot), byte(int8(delta)))
	}
	d := uint16(int16(delta))
	return b.Emit(op.Wide, byte(op.Iinc), byte(slot>>8), byte(slot), byte(d>>8), byte(d))
}

// EmitReturn emits the return instruction for the descriptor.
func (b *CodeBuffer) EmitReturn(desc string) int {
	if desc == Void || desc == "" {
		return b.Emit(op.Return)
	}
	return b.Emit(op.Ireturn + kindOffset(desc))
}

// EmitPop discards a value of the given descriptor from the operand stack.
func (b *CodeBuffer) EmitPop(desc string) {
	switch SlotSize(desc) {
	case 1:
		b.Emit(op.Pop)
	case 2:
		b.Emit(op.Pop2)
	}
}

// EmitPushInt pushes an int constant using iconst, bipush, sipush or ldc.
func (b *CodeBuffer) EmitPushInt(v int32, pool *ConstantPool) int {
	switch {
	case v >= -1 && v <= 5:
		return b.Emit(op.Iconst0 + op.Code(v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return b.Emit(op.Bipush, byte(int8(v)))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return b.EmitU2(op.Sipush, uint16(int16(v)))
	}
	return b.EmitLdc(pool.Integer(v))
}

// EmitLdc pushes a single-word constant pool entry.
func (b *CodeBuffer) EmitLdc(index uint16) int {
	if index <= math.MaxUint8 {
		return b.EmitU1(op.Ldc, uint8(index))
	}
	return b.EmitU2(op.LdcW, index)
}

// EmitPushDefault pushes the zero value of the descriptor.
func (b *CodeBuffer) EmitPushDefault(desc string) {
	switch {
	case IsIntLike(desc):
		b.Emit(op.Iconst0)
	case desc == Long:
		b.Emit(op.Lconst0)
	case desc == Float:
		b.Emit(op.Fconst0)
	case desc == Double:
		b.Emit(op.Dconst0)
	case desc == Void || desc == "":
	default:
		b.Emit(op.AconstNull)
	}
}

// EmitInvoke emits an invoke instruction for the method reference at index.
// argSlots is only used by invokeinterface, whose count operand includes
// the receiver.
func (b *CodeBuffer) EmitInvoke(code op.Code, index uint16, argSlots int) int {
	if code == op.Invokeinterface {
		return b.Emit(code, byte(index>>8), byte(index), byte(argSlots+1), 0)
	}
	return b.EmitU2(code, index)
}

// EmitArrayLoad pushes an element of the given descriptor, taking the
// array and index from the stack.
func (b *CodeBuffer) EmitArrayLoad(elem string) int {
	code := op.Aaload
	switch elem {
	case Int:
		code = op.Iaload
	case Long:
		code = op.Laload
	case Float:
		code = op.Faload
	case Double:
		code = op.Daload
	case Boolean, Byte:
		code = op.Baload
	case Char:
		code = op.Caload
	case Short:
		code = op.Saload
	}
	return b.Emit(code)
}
