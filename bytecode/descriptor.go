package bytecode

import (
	"fmt"
	"strings"
)

// Common field descriptors.
const (
	Void    = "V"
	Int     = "I"
	Boolean = "Z"
	Long    = "J"
	Double  = "D"
	Float   = "F"
	Char    = "C"
	Byte    = "B"
	Short   = "S"

	StringType    = "Ljava/lang/String;"
	ObjectType    = "Ljava/lang/Object;"
	ThrowableType = "Ljava/lang/Throwable;"
)

// SlotSize returns the number of local variable slots (and operand stack
// words) a value of the given descriptor occupies.
func SlotSize(desc string) int {
	switch desc {
	case Void, "":
		return 0
	case Long, Double:
		return 2
	}
	return 1
}

// IsIntLike reports whether values of the descriptor are represented as a
// JVM int on the operand stack.
func IsIntLike(desc string) bool {
	switch desc {
	case Int, Boolean, Char, Byte, Short:
		return true
	}
	return false
}

// IsReference reports whether the descriptor names an object or array type.
func IsReference(desc string) bool {
	return strings.HasPrefix(desc, "L") || strings.HasPrefix(desc, "[")
}

// Assignable reports whether a value of descriptor from can be stored in a
// local of descriptor to without conversion code.
func Assignable(from, to string) bool {
	switch {
	case from == to:
		return true
	case IsIntLike(from) && IsIntLike(to):
		return true
	case IsReference(from) && IsReference(to):
		return true
	}
	return false
}

// IsArray reports whether the descriptor names an array type.
func IsArray(desc string) bool {
	return strings.HasPrefix(desc, "[")
}

// ElementType returns the component descriptor of an array descriptor.
func ElementType(desc string) string {
	return strings.TrimPrefix(desc, "[")
}

// ClassName returns the internal class name of an object descriptor, so
// "Ljava/util/List;" becomes "java/util/List". Array descriptors are
// returned unchanged, as the constant pool expects for array classes.
func ClassName(desc string) string {
	if strings.HasPrefix(desc, "L") && strings.HasSuffix(desc, ";") {
		return desc[1 : len(desc)-1]
	}
	return desc
}

// ObjectDescriptor returns the descriptor for an internal class name.
func ObjectDescriptor(className string) string {
	return "L" + className + ";"
}

// MethodDescriptor is a parsed method descriptor such as "(ILjava/lang/String;)V".
type MethodDescriptor struct {
	Params []string
	Return string
}

// ArgSlots returns the number of local slots used by the parameters.
func (m MethodDescriptor) ArgSlots() int {
	n := 0
	for _, p := range m.Params {
		n += SlotSize(p)
	}
	return n
}

func (m MethodDescriptor) String() string {
	return "(" + strings.Join(m.Params, "") + ")" + m.Return
}

// ParseMethodDescriptor splits a method descriptor into its parameter and
// return descriptors.
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	var md MethodDescriptor
	if !strings.HasPrefix(desc, "(") {
		return md, fmt.Errorf("invalid method descriptor %q", desc)
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldLength(desc, i)
		if err != nil {
			return md, err
		}
		md.Params = append(md.Params, desc[i:i+n])
		i += n
	}
	if i >= len(desc) {
		return md, fmt.Errorf("invalid method descriptor %q: missing ')'", desc)
	}
	ret := desc[i+1:]
	if ret != Void {
		n, err := fieldLength(ret, 0)
		if err != nil || n != len(ret) {
			return md, fmt.Errorf("invalid return type in method descriptor %q", desc)
		}
	}
	md.Return = ret
	return md, nil
}

// ValidFieldDescriptor reports whether desc is exactly one field descriptor.
func ValidFieldDescriptor(desc string) bool {
	n, err := fieldLength(desc, 0)
	return err == nil && n == len(desc)
}

func fieldLength(desc string, i int) (int, error) {
	start := i
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return 0, fmt.Errorf("invalid descriptor %q", desc)
	}
	switch desc[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1 - start, nil
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return 0, fmt.Errorf("invalid descriptor %q", desc)
		}
		return i + end + 1 - start, nil
	}
	return 0, fmt.Errorf("invalid descriptor %q", desc)
}
