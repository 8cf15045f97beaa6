package slices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatches(t *testing.T) {
	tests := map[string]struct {
		s        []int
		size     int
		expected [][]int
	}{
		"empty":  {s: []int{}, size: 3, expected: [][]int{}},
		"single": {s: []int{1, 2}, size: 3, expected: [][]int{{1, 2}}},
		"exact":  {s: []int{1, 2, 3, 4, 5, 6}, size: 3, expected: [][]int{{1, 2, 3}, {4, 5, 6}}},
		"rest":   {s: []int{1, 2, 3, 4, 5, 6, 7}, size: 3, expected: [][]int{{1, 2, 3}, {4, 5, 6}, {7}}},
		"ones":   {s: []int{1, 2}, size: 1, expected: [][]int{{1}, {2}}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			actual := Batches(tc.s, tc.size)
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, tc.s, Flatten(actual))
		})
	}
}

func TestBatches_AppendDoesNotOverwriteNextBatch(t *testing.T) {
	batches := Batches([]int{1, 2, 3, 4}, 2)
	_ = append(batches[0], 99)
	assert.Equal(t, []int{3, 4}, batches[1])
}

func TestBatches_InvalidSize(t *testing.T) {
	assert.Panics(t, func() { Batches([]int{1}, 0) })
}

func TestGroupBy(t *testing.T) {
	actual := GroupBy(
		[]string{"a1", "b2", "a3"},
		func(s string) byte { return s[0] },
		func(s string) byte { return s[1] },
	)
	assert.Equal(t, map[byte][]byte{'a': {'1', '3'}, 'b': {'2'}}, actual)
}

func TestGroupBy_Identity(t *testing.T) {
	type row struct {
		group int64
		value float64
	}
	rows := []row{{2, 1}, {1, 2}, {2, 3}, {3, 4}, {1, 5}}
	actual := GroupBy(rows, func(r row) int64 { return r.group }, Identity[row])
	assert.Equal(
		t,
		map[int64][]row{
			1: {{1, 2}, {1, 5}},
			2: {{2, 1}, {2, 3}},
			3: {{3, 4}},
		},
		actual,
	)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []int64{-1, 3, 7}, SortedKeys(map[int64]string{7: "a", -1: "b", 3: "c"}))
	assert.Empty(t, SortedKeys(map[string]int{}))
}
