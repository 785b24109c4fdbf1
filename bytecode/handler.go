package bytecode

// ExceptionTableEntry protects the code range [StartPC, EndPC). An empty
// CatchType matches any throwable. Entries are matched in table order.
type ExceptionTableEntry struct {
	StartPC   int
	EndPC     int
	HandlerPC int
	CatchType string // internal class name, or "" for any
	// CatchIndex is the constant pool index of CatchType, or 0 for any.
	CatchIndex uint16
}

// Covers reports whether pc lies inside the protected range.
func (e ExceptionTableEntry) Covers(pc int) bool {
	return pc >= e.StartPC && pc < e.EndPC
}

// IsCatchAll reports whether the entry matches every throwable.
func (e ExceptionTableEntry) IsCatchAll() bool {
	return e.CatchType == ""
}
