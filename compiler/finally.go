package compiler

import (
	"github.com/deepnoodle-ai/jlower/errors"
)

type finallyState int

const (
	idle finallyState = iota
	// inlineExecuting marks a finally whose body is being emitted, so that
	// exits inside that body do not inline it again.
	inlineExecuting
)

// gap is a code range [start, end) excluded from a try statement's
// protected ranges.
type gap struct{ start, end int }

// pendingFinally is a cleanup body that must run on every exit from the
// protected region of a try statement or using declaration. A try
// statement without a finally clause pushes one with a nil emit function
// so that exits through it still record gaps.
type pendingFinally struct {
	emit         func() error
	fallsThrough bool
	state        finallyState

	// Label stack depths where the try statement began. Inlined copies
	// only see the frames that were visible there.
	breakDepth    int
	continueDepth int

	gaps []gap
}

func (c *Compiler) pushFinally(emit func() error, fallsThrough bool) *pendingFinally {
	code := c.current
	pf := &pendingFinally{
		emit:          emit,
		fallsThrough:  fallsThrough,
		breakDepth:    code.breaks.depth(),
		continueDepth: code.continues.depth(),
	}
	code.finallys = append(code.finallys, pf)
	return pf
}

func (c *Compiler) popFinally(pf *pendingFinally) {
	code := c.current
	n := len(code.finallys)
	if n == 0 || code.finallys[n-1] != pf {
		panic(errors.Internalf("pending finally stack popped out of order"))
	}
	code.finallys = code.finallys[:n-1]
}

// hasIdleFinally reports whether an exit to the given depth would inline
// any finally body.
func (c *Compiler) hasIdleFinally(floor int) bool {
	finallys := c.current.finallys
	for i := len(finallys) - 1; i >= floor; i-- {
		if finallys[i].state == idle && finallys[i].emit != nil {
			return true
		}
	}
	return false
}

// inlineFinally emits a copy of the finally body. Exits inside the copy
// see the labels of the try statement, not those of the exit being
// compiled.
func (c *Compiler) inlineFinally(pf *pendingFinally) error {
	code := c.current
	prev := pf.state
	pf.state = inlineExecuting
	defer func() { pf.state = prev }()
	showBreaks := code.breaks.hide(pf.breakDepth)
	defer showBreaks()
	showContinues := code.continues.hide(pf.continueDepth)
	defer showContinues()
	labels := code.takeLabels()
	defer func() { code.labels = labels }()
	return pf.emit()
}

// earlyExit emits a control transfer that leaves every pending finally
// above floor. The finally bodies are inlined nearest first and stay
// marked as executing until the transfer is complete. If an inlined body
// cannot complete normally the transfer is not emitted.
//
// Each inlined copy, together with the rest of the exit sequence, is
// recorded as a gap in the protected ranges of its try statement.
func (c *Compiler) earlyExit(floor int, transfer func() error) error {
	code := c.current
	var (
		exited   []*pendingFinally
		starts   []int
		lastBody = -1
	)
	defer func() {
		for _, pf := range exited {
			pf.state = idle
		}
	}()
	terminated := false
	for i := len(code.finallys) - 1; i >= floor; i-- {
		pf := code.finallys[i]
		if pf.state != idle {
			continue
		}
		exited = append(exited, pf)
		starts = append(starts, code.buf.Offset())
		if pf.emit == nil {
			pf.state = inlineExecuting
			continue
		}
		lastBody = len(exited) - 1
		if err := c.inlineFinally(pf); err != nil {
			return err
		}
		pf.state = inlineExecuting
		if !pf.fallsThrough || !code.buf.Reachable() {
			terminated = true
			break
		}
	}
	if !terminated {
		if err := transfer(); err != nil {
			return err
		}
	}
	end := code.buf.Offset()
	for i, pf := range exited {
		// A try without finally only needs a gap when an outer finally was
		// inlined inside its range.
		if pf.emit == nil && i > lastBody {
			continue
		}
		if starts[i] < end {
			pf.gaps = append(pf.gaps, gap{start: starts[i], end: end})
		}
	}
	return nil
}

// protectedRanges returns [start, end) minus the gaps, dropping empty
// ranges.
func protectedRanges(start, end int, gaps []gap) []gap {
	ranges := []gap{{start: start, end: end}}
	for _, g := range gaps {
		var next []gap
		for _, r := range ranges {
			if g.end <= r.start || g.start >= r.end {
				next = append(next, r)
				continue
			}
			if g.start > r.start {
				next = append(next, gap{start: r.start, end: g.start})
			}
			if g.end < r.end {
				next = append(next, gap{start: g.end, end: r.end})
			}
		}
		ranges = next
	}
	out := ranges[:0]
	for _, r := range ranges {
		if r.end > r.start {
			out = append(out, r)
		}
	}
	return out
}
