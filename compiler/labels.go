package compiler

import (
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
)

// labelFrame is a jump destination for break or continue statements. The
// target is unknown (-1) until the owning construct resolves it, so jumps
// emitted before that are collected as pending patches.
type labelFrame struct {
	labels    []string
	namedOnly bool // labeled blocks only accept "break label"
	target    int
	pending   []bytecode.JumpPatch

	// Number of pending finally bodies when the frame was pushed. Jumps to
	// this frame unwind every finally above this depth.
	finallyDepth int
}

func newLabelFrame(labels []string, finallyDepth int) *labelFrame {
	return &labelFrame{labels: labels, target: -1, finallyDepth: finallyDepth}
}

func (f *labelFrame) hasLabel(name string) bool {
	for _, l := range f.labels {
		if l == name {
			return true
		}
	}
	return false
}

// resolve sets the frame target and patches every pending jump to it.
func (f *labelFrame) resolve(buf *bytecode.CodeBuffer, target int) error {
	if f.target >= 0 {
		panic(errors.Internalf("label frame resolved twice (at %d and %d)", f.target, target))
	}
	f.target = target
	pending := f.pending
	f.pending = nil
	for _, patch := range pending {
		if err := buf.Resolve(patch, target); err != nil {
			return err
		}
	}
	return nil
}

// hiddenRange hides frames [lo, hi) from lookups.
type hiddenRange struct{ lo, hi int }

// labelStack is a stack of jump destinations searched innermost first.
type labelStack struct {
	frames []*labelFrame
	hidden []hiddenRange
}

func (s *labelStack) push(f *labelFrame) {
	s.frames = append(s.frames, f)
}

func (s *labelStack) pop(f *labelFrame) {
	n := len(s.frames)
	if n == 0 || s.frames[n-1] != f {
		panic(errors.Internalf("label stack popped out of order"))
	}
	s.frames = s.frames[:n-1]
}

func (s *labelStack) depth() int {
	return len(s.frames)
}

// hide makes the frames pushed since depth invisible until the returned
// function is called. Frames pushed after hiding stay visible.
func (s *labelStack) hide(depth int) func() {
	s.hidden = append(s.hidden, hiddenRange{lo: depth, hi: len(s.frames)})
	n := len(s.hidden)
	return func() {
		if len(s.hidden) != n {
			panic(errors.Internalf("label stack restrictions released out of order"))
		}
		s.hidden = s.hidden[:n-1]
	}
}

func (s *labelStack) visible(i int) bool {
	for _, r := range s.hidden {
		if i >= r.lo && i < r.hi {
			return false
		}
	}
	return true
}

// innermost returns the innermost visible frame that accepts an unlabeled
// jump.
func (s *labelStack) innermost() (*labelFrame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if s.visible(i) && !f.namedOnly {
			return f, true
		}
	}
	return nil, false
}

// find returns the innermost visible frame carrying the label.
func (s *labelStack) find(label string) (*labelFrame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if s.visible(i) && f.hasLabel(label) {
			return f, true
		}
	}
	return nil, false
}

// names returns every visible label, innermost first.
func (s *labelStack) names() []string {
	var out []string
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.visible(i) {
			out = append(out, s.frames[i].labels...)
		}
	}
	return out
}
