package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProtectedRanges(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		end      int
		gaps     []gap
		expected []gap
	}{
		{"no gaps", 0, 10, nil, []gap{{0, 10}}},
		{"middle", 0, 10, []gap{{3, 5}}, []gap{{0, 3}, {5, 10}}},
		{"at start", 0, 10, []gap{{0, 4}}, []gap{{4, 10}}},
		{"at end", 0, 10, []gap{{7, 10}}, []gap{{0, 7}}},
		{"two gaps", 0, 10, []gap{{2, 3}, {6, 8}}, []gap{{0, 2}, {3, 6}, {8, 10}}},
		{"outside", 4, 10, []gap{{0, 4}, {12, 15}}, []gap{{4, 10}}},
		{"overlapping", 0, 10, []gap{{2, 6}, {4, 8}}, []gap{{0, 2}, {8, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, protectedRanges(tt.start, tt.end, tt.gaps))
		})
	}
}

func TestProtectedRangesEmpty(t *testing.T) {
	require.Len(t, protectedRanges(5, 5, nil), 0)
	require.Len(t, protectedRanges(0, 10, []gap{{0, 10}}), 0)
	require.Len(t, protectedRanges(2, 6, []gap{{0, 3}, {3, 8}}), 0)
}
