package compiler

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/deepnoodle-ai/jlower/ast"
	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/errors"
	"github.com/deepnoodle-ai/jlower/op"
)

// switchCase is a case clause with its match value and, once emitted, the
// offset of its body.
type switchCase struct {
	match     int32
	isDefault bool
	body      []ast.Stmt
	offset    int
}

// switchPlan is the layout of a switch instruction, computed before any
// case body exists.
type switchPlan struct {
	opcode  op.Code
	low     int32
	high    int32
	keys    []int32 // sorted ascending
	padding int
}

// size returns the number of bytes following the opcode.
func (p switchPlan) size() int {
	if p.opcode == op.Tableswitch {
		return p.padding + 12 + 4*int(int64(p.high)-int64(p.low)+1)
	}
	return p.padding + 8 + 8*len(p.keys)
}

// planSwitch chooses between a tableswitch and a lookupswitch. A table is
// used when the key range is at most maxRange and at least half of it is
// covered by keys.
func planSwitch(opcodePos int, keys []int32, maxRange int) switchPlan {
	sorted := append([]int32(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	plan := switchPlan{
		opcode:  op.Lookupswitch,
		keys:    sorted,
		padding: bytecode.SwitchPadding(opcodePos),
	}
	if len(sorted) == 0 {
		return plan
	}
	plan.low = sorted[0]
	plan.high = sorted[len(sorted)-1]
	span := int64(plan.high) - int64(plan.low) + 1
	if len(sorted) == 1 || (span <= int64(maxRange) && float64(len(sorted))/float64(span) >= 0.5) {
		plan.opcode = op.Tableswitch
	}
	return plan
}

// encode renders the operands of the switch instruction. Offsets are
// relative to the opcode.
func (p switchPlan) encode(opcodePos, defaultTarget int, targets map[int32]int) []byte {
	out := make([]byte, p.size())
	pos := p.padding
	put := func(v int32) {
		binary.BigEndian.PutUint32(out[pos:], uint32(v))
		pos += 4
	}
	put(int32(defaultTarget - opcodePos))
	if p.opcode == op.Tableswitch {
		put(p.low)
		put(p.high)
		for k := int64(p.low); k <= int64(p.high); k++ {
			target, ok := targets[int32(k)]
			if !ok {
				target = defaultTarget
			}
			put(int32(target - opcodePos))
		}
		return out
	}
	put(int32(len(p.keys)))
	for _, k := range p.keys {
		put(k)
		put(int32(targets[k] - opcodePos))
	}
	return out
}

// caseValue returns the constant of an int literal or a negated int
// literal.
func caseValue(expr ast.Expr) (int32, bool) {
	switch x := expr.(type) {
	case *ast.Int:
		if x.Value < math.MinInt32 || x.Value > math.MaxInt32 {
			return 0, false
		}
		return int32(x.Value), true
	case *ast.Prefix:
		if x.Op != "-" {
			return 0, false
		}
		lit, ok := x.X.(*ast.Int)
		if !ok || -lit.Value < math.MinInt32 || -lit.Value > math.MaxInt32 {
			return 0, false
		}
		return int32(-lit.Value), true
	}
	return 0, false
}

// analyzeCases validates the case clauses and returns them with their
// match values.
func (c *Compiler) analyzeCases(node *ast.Switch) ([]*switchCase, error) {
	cases := make([]*switchCase, 0, len(node.Cases))
	seen := map[int32]bool{}
	hasDefault := false
	for _, clause := range node.Cases {
		sc := &switchCase{body: clause.Body, isDefault: clause.Default}
		if clause.Default {
			if hasDefault {
				return nil, c.errorf(errors.E2015, clause.Pos(), "switch has more than one default case")
			}
			hasDefault = true
			cases = append(cases, sc)
			continue
		}
		value, ok := caseValue(clause.Value)
		if !ok {
			return nil, c.errorf(errors.E2013, clause.Value.Pos(),
				"case value %s is not an int constant", clause.Value)
		}
		if seen[value] {
			return nil, c.errorf(errors.E2014, clause.Value.Pos(), "duplicate case value %d", value)
		}
		seen[value] = true
		sc.match = value
		cases = append(cases, sc)
	}
	return cases, nil
}

// compileSwitch lowers a switch over an int value. Case bodies follow the
// switch instruction in declaration order and fall through into each
// other; break jumps past the last body.
func (c *Compiler) compileSwitch(node *ast.Switch) error {
	code := c.current
	buf := code.buf
	labels := code.takeLabels()

	cases, err := c.analyzeCases(node)
	if err != nil {
		return err
	}
	desc, err := c.generate(node.Value)
	if err != nil {
		return err
	}
	if !bytecode.IsIntLike(desc) {
		return c.errorf(errors.E2019, node.Value.Pos(), "cannot switch on a value of type %s", typeName(desc))
	}
	if len(cases) == 0 {
		buf.Emit(op.Pop)
		return nil
	}

	var keys []int32
	for _, sc := range cases {
		if !sc.isDefault {
			keys = append(keys, sc.match)
		}
	}
	opcodePos := buf.Offset()
	plan := planSwitch(opcodePos, keys, c.maxTableRange)
	buf.Emit(plan.opcode)
	buf.Reserve(plan.size())

	frame := newLabelFrame(labels, len(code.finallys))
	code.breaks.push(frame)
	defer code.breaks.pop(frame)
	code.locals.EnterScope()
	defer code.locals.ExitScope()

	for _, sc := range cases {
		sc.offset = buf.Offset()
		buf.MarkFrame(sc.offset)
		if err := c.compileStmts(sc.body); err != nil {
			return err
		}
	}
	end := buf.Offset()

	defaultTarget := end
	targets := make(map[int32]int, len(keys))
	for _, sc := range cases {
		if sc.isDefault {
			defaultTarget = sc.offset
		} else {
			targets[sc.match] = sc.offset
		}
	}
	buf.MarkFrame(defaultTarget)
	buf.PatchAt(opcodePos+1, plan.encode(opcodePos, defaultTarget, targets))
	return frame.resolve(buf, end)
}
