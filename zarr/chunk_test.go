package zarr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkKey(t *testing.T) {
	tests := []struct {
		indices  []int
		sep      string
		expected string
	}{
		{[]int{1, 4}, ".", "1.4"},
		{[]int{0, 0, 0}, ".", "0.0.0"},
		{[]int{10}, ".", "10"},
		{[]int{1, 2}, "/", "1/2"},
		{[]int{}, ".", "0"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, chunkKey(tt.indices, tt.sep))
	}
}

func TestGridShape(t *testing.T) {
	require.Equal(t, []int{2, 3}, gridShape([]int{4, 7}, []int{2, 3}))
	require.Equal(t, []int{}, gridShape([]int{}, []int{}))
}

func TestStrides(t *testing.T) {
	require.Equal(t, []int{12, 4, 1}, strides([]int{2, 3, 4}))
	require.Equal(t, []int{}, strides([]int{}))
}
