package compiler_test

import (
	"math"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/compiler"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/exprgen"
	"github.com/deepnoodle-ai/jlower/methodfile"
	"github.com/deepnoodle-ai/jlower/op"
	"github.com/stretchr/testify/require"
)

// prelude declares the class and the functions the test methods call. It
// is 12 lines long, so the first method starts on line 13.
const prelude = `class: demo/Test
functions:
  f:
    owner: demo/Lib
    desc: ()V
  g:
    owner: demo/Lib
    desc: ()I
  open:
    owner: demo/Lib
    desc: (Ljava/lang/String;)Ljava/lang/AutoCloseable;
methods:
`

func compileMethod(t *testing.T, method string, cfg *compiler.Config) *bytecode.Method {
	t.Helper()
	f, err := methodfile.Parse([]byte(prelude+method), "test.yaml")
	require.NoError(t, err)
	class, err := f.Compile(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, class.MethodCount())
	return class.MethodAt(0)
}

func compileError(t *testing.T, method string) *errors.CompileError {
	t.Helper()
	f, err := methodfile.Parse([]byte(prelude+method), "test.yaml")
	require.NoError(t, err)
	_, err = f.Compile(nil)
	require.Error(t, err)
	compileErr, ok := errors.AsCompileError(err)
	require.True(t, ok, err.Error())
	return compileErr
}

func decode(t *testing.T, m *bytecode.Method) []bytecode.Instruction {
	t.Helper()
	insns, err := bytecode.Decode(m.Code())
	require.NoError(t, err)
	return insns
}

func opcodes(insns []bytecode.Instruction) []op.Code {
	out := make([]op.Code, 0, len(insns))
	for _, insn := range insns {
		out = append(out, insn.Op)
	}
	return out
}

func frameTargets(m *bytecode.Method) []bytecode.FrameTarget {
	out := make([]bytecode.FrameTarget, 0, m.FrameTargetCount())
	for i := 0; i < m.FrameTargetCount(); i++ {
		out = append(out, m.FrameTargetAt(i))
	}
	return out
}

func exceptionTable(m *bytecode.Method) []bytecode.ExceptionTableEntry {
	out := make([]bytecode.ExceptionTableEntry, 0, m.ExceptionCount())
	for i := 0; i < m.ExceptionCount(); i++ {
		entry := m.ExceptionAt(i)
		entry.CatchIndex = 0
		out = append(out, entry)
	}
	return out
}

func count(insns []bytecode.Instruction, code op.Code) int {
	n := 0
	for _, insn := range insns {
		if insn.Op == code {
			n++
		}
	}
	return n
}

func TestFallOffEnd(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    returns: int
    body:
      - f()
`, nil)
	require.Equal(t, "()I", m.Descriptor())
	require.Equal(t, []op.Code{op.Invokestatic, op.Iconst0, op.Ireturn}, opcodes(decode(t, m)))
}

func TestUnreachableStatementsAreDropped(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - return
      - f()
`, nil)
	require.Equal(t, []op.Code{op.Return}, opcodes(decode(t, m)))
}

func TestInstanceMethodReceiver(t *testing.T) {
	m := compileMethod(t, `  - name: m
    params:
      x: int
    returns: int
    body:
      - return: x
`, nil)
	require.False(t, m.IsStatic())
	require.Equal(t, 2, m.MaxLocals())
	insns := decode(t, m)
	require.Equal(t, []op.Code{op.Iload0 + 1, op.Ireturn}, opcodes(insns))
	require.Equal(t, 1, insns[0].Index)
}

func TestTryFinally(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - try:
          - f()
        finally:
          - f()
`, nil)
	insns := decode(t, m)
	require.Equal(t, []op.Code{
		op.Invokestatic, // try body
		op.Invokestatic, // finally on the normal path
		op.Goto,
		op.Astore0, // catch-all
		op.Invokestatic,
		op.Aload0,
		op.Athrow,
		op.Return,
	}, opcodes(insns))
	require.Equal(t, 15, insns[2].Target)
	require.Equal(t, []bytecode.ExceptionTableEntry{
		{StartPC: 0, EndPC: 3, HandlerPC: 9},
	}, exceptionTable(m))
	require.Equal(t, []bytecode.FrameTarget{
		{Offset: 9, Handler: true},
		{Offset: 15},
	}, frameTargets(m))
	require.Equal(t, 1, m.MaxLocals())
}

func TestFinallyCopiedOnEveryExit(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    returns: int
    body:
      - try:
          - return: g()
        catch:
          name: e
          type: RuntimeException
          body:
            - return: -1
        finally:
          - f()
`, nil)
	insns := decode(t, m)
	require.Equal(t, []op.Code{
		op.Invokestatic, // g()
		op.Istore0,
		op.Invokestatic, // finally before return
		op.Iload0,
		op.Ireturn,
		op.Astore0, // catch RuntimeException e
		op.IconstM1,
		op.Istore0 + 1,
		op.Invokestatic, // finally before return
		op.Iload0 + 1,
		op.Ireturn,
		op.Astore0, // catch-all
		op.Invokestatic,
		op.Aload0,
		op.Athrow,
	}, opcodes(insns))
	require.Equal(t, 23, m.CodeLength())

	// The inlined finally copies are excluded from the protected ranges,
	// and the catch clause is covered by the catch-all.
	require.Equal(t, []bytecode.ExceptionTableEntry{
		{StartPC: 0, EndPC: 4, HandlerPC: 9, CatchType: "java/lang/RuntimeException"},
		{StartPC: 0, EndPC: 4, HandlerPC: 17},
		{StartPC: 9, EndPC: 12, HandlerPC: 17},
	}, exceptionTable(m))
	require.NotZero(t, m.ExceptionAt(0).CatchIndex)
	require.Equal(t, []bytecode.FrameTarget{
		{Offset: 9, Handler: true},
		{Offset: 17, Handler: true},
	}, frameTargets(m))
}

func TestReturnInsideFinallyDoesNotReenterIt(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - try:
          - f()
        finally:
          - return
`, nil)
	require.Equal(t, []op.Code{
		op.Invokestatic,
		op.Return, // finally on the normal path
		op.Astore0,
		op.Return, // finally in the catch-all, which cannot rethrow
	}, opcodes(decode(t, m)))
	require.Equal(t, []bytecode.ExceptionTableEntry{
		{StartPC: 0, EndPC: 3, HandlerPC: 4},
	}, exceptionTable(m))
}

func TestBreakThroughFinally(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - while: "true"
        body:
          - try:
              - f()
              - break
            finally:
              - f()
`, nil)
	insns := decode(t, m)
	require.Equal(t, []op.Code{
		op.Invokestatic,
		op.Invokestatic, // finally before the break
		op.Goto,
		op.Astore0,
		op.Invokestatic,
		op.Aload0,
		op.Athrow,
		op.Return,
	}, opcodes(insns))
	require.Equal(t, 15, insns[2].Target)
	require.Equal(t, []bytecode.ExceptionTableEntry{
		{StartPC: 0, EndPC: 3, HandlerPC: 9},
	}, exceptionTable(m))
}

func TestTryWithoutThrowingCodeHasNoHandlers(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - while: "true"
        body:
          - try:
              - break
            finally:
              - f()
`, nil)
	insns := decode(t, m)
	require.Equal(t, []op.Code{op.Invokestatic, op.Goto, op.Return}, opcodes(insns))
	require.Equal(t, 6, insns[1].Target)
	require.Equal(t, 0, m.ExceptionCount())
}

func TestFinallyOnlySeesLabelsOfItsTry(t *testing.T) {
	err := compileError(t, `  - name: m
    static: true
    body:
      - try:
          - label: inner
            while: "true"
            body:
              - return
        finally:
          - break: inner
`)
	require.Equal(t, errors.E2011, err.Code)
	require.Equal(t, "m", err.Method)
}

func TestLabeledBreakFromFinally(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - label: outer
        while: "true"
        body:
          - try:
              - while: "true"
                body:
                  - return
            finally:
              - break: outer
      - f()
`, nil)
	insns := decode(t, m)
	end := m.CodeLength()
	for _, insn := range insns {
		if insn.IsBranch() {
			require.True(t, insn.Target >= 0 && insn.Target < end, "branch at %d targets %d", insn.Offset, insn.Target)
		}
	}
	// The break replaces the return, so the method ends by calling f.
	require.Equal(t, 0, count(insns, op.Return)-1)
	require.Equal(t, op.Return, insns[len(insns)-1].Op)
	require.Equal(t, op.Invokestatic, insns[len(insns)-2].Op)
}

func TestLabeledLoops(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    params:
      n: int
    body:
      - label: outer
        for: "let i = 0; i < n; i++"
        body:
          - for: "let j = 0; j < n; j++"
            body:
              - if: j == i
                then:
                  - break: outer
              - continue: outer
      - f()
`, nil)
	insns := decode(t, m)
	var update, exit bytecode.Instruction
	for _, insn := range insns {
		if insn.Op == op.Iinc && insn.Index == 1 {
			update = insn
		}
		if insn.Op == op.Invokestatic {
			exit = insn
		}
	}
	require.Equal(t, op.Iinc, update.Op)
	require.Equal(t, op.Invokestatic, exit.Op)

	targets := map[int]int{}
	for _, insn := range insns {
		if insn.IsBranch() {
			targets[insn.Target]++
		}
	}
	// The outer test and break outer leave the outer loop; the inner test
	// and continue outer land on the outer update.
	require.Equal(t, 2, targets[exit.Offset])
	require.Equal(t, 2, targets[update.Offset])
	require.Equal(t, op.Goto, insns[len(insns)-3].Op)
	require.Equal(t, 2, insns[len(insns)-3].Target)
}

func TestFinallyCopyPerExit(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    params:
      c: boolean
    body:
      - try:
          - if: c
            then:
              - return
          - f()
        finally:
          - g()
`, nil)
	insns := decode(t, m)
	// One copy before the early return, one on the normal path and one in
	// the catch-all handler. Each discards the value of g().
	require.Equal(t, 3, count(insns, op.Pop))
	require.Equal(t, 2, count(insns, op.Return))
	require.Equal(t, 1, count(insns, op.Athrow))
	handler := m.ExceptionAt(0).HandlerPC
	for _, entry := range exceptionTable(m) {
		require.Equal(t, handler, entry.HandlerPC)
		require.Empty(t, entry.CatchType)
	}
	require.Equal(t, 2, m.ExceptionCount())
}

func TestFailedMethodLeavesNoState(t *testing.T) {
	good := `  - name: good
    static: true
    body:
      - label: outer
        while: "true"
        body:
          - try:
              - f()
              - break: outer
            finally:
              - f()
`
	f, err := methodfile.Parse([]byte(prelude+`  - name: bad
    static: true
    body:
      - label: outer
        while: "true"
        body:
          - try:
              - open("x")
              - break: nope
            finally:
              - f()
`+good), "test.yaml")
	require.NoError(t, err)
	class, err := f.Compile(nil)
	require.Error(t, err)
	compileErr, ok := errors.AsCompileError(err)
	require.True(t, ok)
	require.Equal(t, errors.E2011, compileErr.Code)
	require.Equal(t, "bad", compileErr.Method)

	require.Equal(t, 1, class.MethodCount())
	alone := compileMethod(t, good, nil)
	require.Equal(t, alone.Code(), class.MethodAt(0).Code())
	require.Equal(t, exceptionTable(alone), exceptionTable(class.MethodAt(0)))
	// The constants of the failed method were discarded.
	pool := class.Pool()
	for i := 1; i < pool.Count(); i++ {
		require.NotContains(t, pool.Describe(uint16(i)), "open")
	}
}

func TestTooManyLocals(t *testing.T) {
	f, err := methodfile.Parse([]byte(prelude+`  - name: m
    static: true
    body:
      - let: a = 1
      - let: b = 2
`), "test.yaml")
	require.NoError(t, err)
	cfg := &compiler.Config{}
	f.Configure(cfg)
	cfg.NewLocals = func() compiler.Locals {
		// Leave room for exactly one int.
		s := exprgen.NewScopes()
		for i := 0; i < math.MaxUint16-1; i++ {
			_, err := s.Temp(bytecode.Int)
			require.NoError(t, err)
		}
		return s
	}
	_, err = compiler.Compile(f.Class, cfg)
	require.Error(t, err)
	compileErr, ok := errors.AsCompileError(err)
	require.True(t, ok, err.Error())
	require.Equal(t, errors.E2007, compileErr.Code)
	require.Equal(t, "m", compileErr.Method)
	require.Equal(t, 17, compileErr.Line)
}

func TestConstantPoolOverflow(t *testing.T) {
	// Leave room for three more entries.
	pool := bytecode.NewConstantPool()
	for i := int32(0); pool.Count() < math.MaxUint16-3; i++ {
		pool.Integer(i)
	}
	full := pool.Count()

	f, err := methodfile.Parse([]byte(prelude+`  - name: big
    static: true
    params:
      s: String
    returns: String
    body:
      - if: s == null
        then:
          - return: '"y"'
      - return: '"z"'
  - name: small
    static: true
    returns: String
    body:
      - return: '"x"'
`), "test.yaml")
	require.NoError(t, err)
	class, err := f.Compile(&compiler.Config{Pool: pool})
	require.Error(t, err)
	compileErr, ok := errors.AsCompileError(err)
	require.True(t, ok, err.Error())
	require.Equal(t, errors.E2008, compileErr.Code)
	require.Equal(t, "big", compileErr.Method)

	require.Equal(t, 1, class.MethodCount())
	require.Equal(t, "small", class.MethodAt(0).Name())
	require.NoError(t, pool.Err())
	require.Equal(t, full+2, pool.Count())
	require.Equal(t, `"x"`, pool.Describe(uint16(pool.Count()-1)))
}

func TestUsingDisposesInReverseOrder(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - using: a = open("a"), b = open("b")
      - f()
`, nil)
	insns := decode(t, m)
	var closed []int
	for i, insn := range insns {
		if insn.Op == op.Invokeinterface {
			closed = append(closed, insns[i-1].Index)
		}
	}
	// b on the normal path and in its handler, then a.
	require.Equal(t, []int{1, 1, 0, 0}, closed)
	require.Equal(t, []bytecode.ExceptionTableEntry{
		{StartPC: 12, EndPC: 15, HandlerPC: 28},
		{StartPC: 6, EndPC: 41, HandlerPC: 54},
	}, exceptionTable(m))
	require.Equal(t, 4, count(insns, op.Ifnull))
	require.Equal(t, 68, m.CodeLength())
	require.Equal(t, 3, m.MaxLocals())
}

func TestTableswitch(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    params:
      x: int
    returns: int
    body:
      - switch: x
        cases:
          - case: 1
            body:
              - return: 10
          - case: 2
            body:
              - return: 20
          - case: 3
            body:
              - return: 30
          - default: true
            body:
              - return: 0
`, nil)
	insns := decode(t, m)
	sw := insns[1]
	require.Equal(t, op.Tableswitch, sw.Op)
	require.Equal(t, 2, sw.Switch.Padding)
	require.Equal(t, []int32{1, 2, 3}, sw.Switch.Keys)
	require.Equal(t, []int{28, 31, 34}, sw.Switch.Targets)
	require.Equal(t, 37, sw.Switch.Default)
	require.Equal(t, 39, m.CodeLength())
	require.Equal(t, []bytecode.FrameTarget{
		{Offset: 28}, {Offset: 31}, {Offset: 34}, {Offset: 37},
	}, frameTargets(m))
}

func TestLookupswitch(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    params:
      x: int
    body:
      - switch: x
        cases:
          - case: 1000
            body:
              - f()
          - case: -5
            body:
              - f()
              - break
      - f()
`, nil)
	insns := decode(t, m)
	sw := insns[1]
	require.Equal(t, op.Lookupswitch, sw.Op)
	require.Equal(t, []int32{-5, 1000}, sw.Switch.Keys)
	// case 1000 falls through into case -5
	require.Equal(t, sw.Switch.Targets[1]+3, sw.Switch.Targets[0])
	gotoEnd := insns[4]
	require.Equal(t, op.Goto, gotoEnd.Op)
	// Without a default case, unmatched values go to the end.
	require.Equal(t, gotoEnd.Target, sw.Switch.Default)
	require.Equal(t, op.Invokestatic, insns[5].Op)
	require.Equal(t, gotoEnd.Target, insns[5].Offset)
}

func TestMaxTableRange(t *testing.T) {
	method := `  - name: m
    static: true
    params:
      x: int
    body:
      - switch: x
        cases:
          - case: 1
            body: []
          - case: 2
            body: []
          - case: 3
            body: []
`
	m := compileMethod(t, method, nil)
	require.Equal(t, op.Tableswitch, decode(t, m)[1].Op)
	m = compileMethod(t, method, &compiler.Config{MaxTableRange: 2})
	require.Equal(t, op.Lookupswitch, decode(t, m)[1].Op)
}

const countdown = `  - name: m
    static: true
    params:
      n: int
    body:
      - while: n > 0
        body:
          - n -= 1
`

func TestNarrowLoop(t *testing.T) {
	m := compileMethod(t, countdown, nil)
	require.False(t, m.WideJumps())
	insns := decode(t, m)
	require.Equal(t, []op.Code{
		op.Iload0, op.Ifle,
		op.Iload0, op.Iconst1, op.Isub, op.Dup, op.Istore0, op.Pop,
		op.Goto, op.Return,
	}, opcodes(insns))
	require.Equal(t, 13, insns[1].Target)
	require.Equal(t, 0, insns[8].Target)
}

func TestForceWideJumps(t *testing.T) {
	m := compileMethod(t, countdown, &compiler.Config{ForceWideJumps: true})
	require.True(t, m.WideJumps())
	insns := decode(t, m)
	require.Equal(t, []op.Code{
		op.Iload0, op.Ifgt, op.GotoW,
		op.Iload0, op.Iconst1, op.Isub, op.Dup, op.Istore0, op.Pop,
		op.GotoW, op.Return,
	}, opcodes(insns))
	require.Equal(t, 9, insns[1].Target)
	require.Equal(t, 20, insns[2].Target)
	require.Equal(t, 0, insns[9].Target)
	targets, err := bytecode.BranchTargets(m.Code())
	require.NoError(t, err)
	require.Equal(t, []int{0, 9, 20}, targets)
}

func TestOverflowRecompilesWide(t *testing.T) {
	var b strings.Builder
	b.WriteString(countdown[:strings.Index(countdown, "          - n -= 1")])
	b.WriteString(strings.Repeat("          - f()\n", 11000))
	b.WriteString("          - n -= 1\n")
	m := compileMethod(t, b.String(), nil)
	require.True(t, m.WideJumps())
	insns := decode(t, m)
	require.Equal(t, 0, count(insns, op.Goto))
	require.Equal(t, 2, count(insns, op.GotoW))
	require.Equal(t, m.CodeLength()-1, insns[2].Target)
}

func TestMethodTooLarge(t *testing.T) {
	src := "  - name: m\n    static: true\n    body:\n" + strings.Repeat("      - f()\n", 22000)
	err := compileError(t, src)
	require.Equal(t, errors.E2017, err.Code)
	require.Contains(t, err.Message, "method m is too large")
}

func TestContinueRunsUpdate(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - for: "let i = 0; i < 10; i++"
        body:
          - if: i == 3
            then:
              - continue
          - f()
`, nil)
	insns := decode(t, m)
	var update bytecode.Instruction
	for _, insn := range insns {
		if insn.Op == op.Iinc {
			update = insn
		}
	}
	require.Equal(t, op.Iinc, update.Op)
	// The discarded i++ is a lone iinc, which is where continue lands.
	require.Equal(t, 0, count(insns, op.Pop))
	var continueJump bytecode.Instruction
	for _, insn := range insns {
		if insn.Op == op.Goto && insn.Target > insn.Offset {
			continueJump = insn
			break
		}
	}
	require.Equal(t, update.Offset, continueJump.Target)
	require.Equal(t, op.Goto, insns[len(insns)-2].Op)
	require.Equal(t, 2, insns[len(insns)-2].Target)
}

func TestCollectionLoops(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    params:
      xs: List
      m: Map
      arr: int[]
    body:
      - forof: x of xs
        body:
          - f()
      - forof: "[k, v] of m"
        body:
          - f()
      - forin: k in m
        body:
          - f()
      - forof: y of arr
        body:
          - continue
`, nil)
	require.Equal(t, "(Ljava/util/List;Ljava/util/Map;[I)V", m.Descriptor())
	insns := decode(t, m)
	// Each loop exits and jumps back with goto_w.
	require.Equal(t, 8, count(insns, op.GotoW))
	require.Equal(t, 1, count(insns, op.Iaload))
	// Only the continue is a narrow jump.
	require.Equal(t, 1, count(insns, op.Goto))
}

func TestLineNumbers(t *testing.T) {
	m := compileMethod(t, `  - name: m
    static: true
    body:
      - f()
      - g()
`, nil)
	require.Equal(t, 2, m.LineCount())
	require.Equal(t, 16, m.LocationAt(0).Line)
	require.Equal(t, 9, m.LocationAt(0).Column)
	require.Equal(t, 17, m.LocationAt(3).Line)
	require.Equal(t, 17, m.LocationAt(7).Line)
	require.Equal(t, 4, m.Stats().Instructions)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{"break outside loop", "      - break\n", errors.E2003},
		{"continue outside loop", "      - continue\n", errors.E2004},
		{"continue to block", "      - label: blk\n        block:\n          - continue: blk\n", errors.E2004},
		{"unknown label", "      - while: \"true\"\n        body:\n          - break: nope\n", errors.E2011},
		{"duplicate label", "      - label: [a, a]\n        block: []\n", errors.E2018},
		{"try without handlers", "      - try:\n          - f()\n", errors.E2012},
		{"non-constant case", "      - switch: 1\n        cases:\n          - case: g()\n            body: []\n", errors.E2013},
		{"duplicate case", "      - switch: 1\n        cases:\n          - case: 1\n            body: []\n          - case: 1\n            body: []\n", errors.E2014},
		{"duplicate default", "      - switch: 1\n        cases:\n          - default: true\n            body: []\n          - default: true\n            body: []\n", errors.E2015},
		{"iterate int", "      - forin: k in 5\n        body: []\n", errors.E2016},
		{"switch on string", "      - switch: '\"s\"'\n", errors.E2019},
		{"return value from void", "      - return: 1\n", errors.E2005},
		{"redeclared local", "      - let: x = 1\n      - let: x = 2\n", errors.E2022},
		{"undefined variable", "      - y\n", errors.E2001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileError(t, "  - name: m\n    static: true\n    body:\n"+tt.body)
			require.Equal(t, tt.code, err.Code, err.Error())
			require.Equal(t, "test.yaml", err.Filename)
			require.Greater(t, err.Line, 13)
		})
	}
}

func TestErrorsAreCollectedPerMethod(t *testing.T) {
	f, err := methodfile.Parse([]byte(prelude+`  - name: ok
    body:
      - f()
  - name: bad
    body:
      - break
  - name: worse
    body:
      - continue
`), "test.yaml")
	require.NoError(t, err)
	class, err := f.Compile(nil)
	require.Error(t, err)
	require.Equal(t, 1, class.MethodCount())
	require.Equal(t, "ok", class.MethodAt(0).Name())
	require.Contains(t, err.Error(), "break statement outside of loop or switch")
	require.Contains(t, err.Error(), "continue statement outside of loop")
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := compiler.New(nil)
	require.Error(t, err)
	_, err = compiler.New(&compiler.Config{})
	require.Error(t, err)
}
