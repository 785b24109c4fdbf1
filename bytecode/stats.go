package bytecode

// Stats contains statistics about a compiled method.
type Stats struct {
	// CodeBytes is the length of the Code attribute's instruction stream.
	CodeBytes int

	// Instructions is the number of decoded instructions.
	Instructions int

	// Handlers is the number of exception table entries.
	Handlers int

	// FrameTargets is the number of offsets needing a stack map frame.
	FrameTargets int

	// MaxLocals is the number of local variable slots.
	MaxLocals int
}
