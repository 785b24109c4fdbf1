// Package bytecode provides the instruction buffer used while lowering a
// method and the immutable representation of the result.
//
// # Key Types
//
//   - [CodeBuffer]: the growable instruction stream of one in-flight method,
//     with placeholder jumps and in-place patching
//   - [JumpPatch]: locates the operand of a branch whose target is not yet
//     known (value type)
//   - [ConstantPool]: deduplicating constant pool shared by a class
//   - [Method]: an immutable compiled method (code, exception table, frame
//     targets, line table)
//   - [Instruction]: a decoded instruction, produced by [Decode]
//
// # Patch Protocol
//
// Forward branches are emitted with a zero operand and resolved once their
// target is known:
//
//	patch := buf.EmitPlaceholderJump(op.Ifeq, bytecode.TwoByte)
//	// ... emit the guarded code ...
//	if err := buf.Resolve(patch, buf.Offset()); err != nil {
//	    return err // errors.ErrJumpOverflow
//	}
//
// Backward branches use [CodeBuffer.EmitJumpTo]. Every resolved target is
// recorded as a frame target. [CodeBuffer.Finalize] panics if any patch is
// still unresolved, since that is a bug in the code generator rather than in
// the input program.
//
// # Immutability
//
// [Method] and [Class] copy their inputs and expose index-based accessors:
//
//	for i := 0; i < m.ExceptionCount(); i++ {
//	    entry := m.ExceptionAt(i)
//	    ...
//	}
package bytecode
