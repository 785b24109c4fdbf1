package compiler

import (
	"math"
	"testing"

	"github.com/deepnoodle-ai/jlower/bytecode"
	"github.com/deepnoodle-ai/jlower/op"
	"github.com/stretchr/testify/require"
)

func TestPlanSwitch(t *testing.T) {
	tests := []struct {
		name     string
		keys     []int32
		maxRange int
		expected op.Code
	}{
		{"dense", []int32{1, 2, 3}, DefaultMaxTableRange, op.Tableswitch},
		{"single key", []int32{100000}, DefaultMaxTableRange, op.Tableswitch},
		{"half covered", []int32{0, 3}, DefaultMaxTableRange, op.Tableswitch},
		{"under half", []int32{0, 4}, DefaultMaxTableRange, op.Lookupswitch},
		{"sparse", []int32{1, 1000}, DefaultMaxTableRange, op.Lookupswitch},
		{"range too large", []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5, op.Lookupswitch},
		{"extremes", []int32{math.MinInt32, math.MaxInt32}, DefaultMaxTableRange, op.Lookupswitch},
		{"no keys", nil, DefaultMaxTableRange, op.Lookupswitch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planSwitch(0, tt.keys, tt.maxRange)
			require.Equal(t, tt.expected, plan.opcode)
		})
	}
}

func TestPlanSwitchSortsKeys(t *testing.T) {
	keys := []int32{5, -2, 3}
	plan := planSwitch(0, keys, DefaultMaxTableRange)
	require.Equal(t, []int32{-2, 3, 5}, plan.keys)
	require.Equal(t, int32(-2), plan.low)
	require.Equal(t, int32(5), plan.high)
	require.Equal(t, []int32{5, -2, 3}, keys)
}

func TestSwitchPlanSize(t *testing.T) {
	table := planSwitch(0, []int32{1, 2, 3}, DefaultMaxTableRange)
	require.Equal(t, 3, table.padding)
	require.Equal(t, 3+12+4*3, table.size())

	lookup := planSwitch(2, []int32{1, 1000}, DefaultMaxTableRange)
	require.Equal(t, 1, lookup.padding)
	require.Equal(t, 1+8+8*2, lookup.size())
}

func TestEncodeTableswitch(t *testing.T) {
	plan := planSwitch(0, []int32{1, 3}, DefaultMaxTableRange)
	require.Equal(t, op.Tableswitch, plan.opcode)
	code := append([]byte{byte(op.Tableswitch)}, plan.encode(0, 40, map[int32]int{1: 20, 3: 30})...)

	insn, err := bytecode.DecodeAt(code, 0)
	require.NoError(t, err)
	require.Equal(t, len(code), insn.Length)
	require.Equal(t, 40, insn.Switch.Default)
	require.Equal(t, []int32{1, 2, 3}, insn.Switch.Keys)
	// Missing keys inside the range go to the default target.
	require.Equal(t, []int{20, 40, 30}, insn.Switch.Targets)
}

func TestEncodeLookupswitch(t *testing.T) {
	plan := planSwitch(5, []int32{1000, -7}, DefaultMaxTableRange)
	require.Equal(t, op.Lookupswitch, plan.opcode)
	require.Equal(t, 2, plan.padding)
	code := make([]byte, 5, 64)
	code = append(code, byte(op.Lookupswitch))
	code = append(code, plan.encode(5, 60, map[int32]int{-7: 30, 1000: 50})...)

	insn, err := bytecode.DecodeAt(code, 5)
	require.NoError(t, err)
	require.Equal(t, 2, insn.Switch.Padding)
	require.Equal(t, 60, insn.Switch.Default)
	require.Equal(t, []int32{-7, 1000}, insn.Switch.Keys)
	require.Equal(t, []int{30, 50}, insn.Switch.Targets)
}
