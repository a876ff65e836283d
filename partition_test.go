package gridsearch

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPartition(t *testing.T) {
	tests := []struct {
		rows, folds int
	}{
		{10, 2},
		{10, 3},
		{101, 10},
		{5, 5},
	}

	for _, tt := range tests {
		assignment, err := RandomPartition(tt.rows, tt.folds, 42)
		require.NoError(t, err)
		require.Len(t, assignment, tt.rows)

		sizes := make([]int, tt.folds)
		for _, f := range assignment {
			require.GreaterOrEqual(t, f, 0)
			require.Less(t, f, tt.folds)
			sizes[f]++
		}

		// Fold sizes differ by at most one.
		sort.Ints(sizes)
		assert.LessOrEqual(t, sizes[len(sizes)-1]-sizes[0], 1, "rows=%d folds=%d", tt.rows, tt.folds)
	}
}

func TestRandomPartitionSeeds(t *testing.T) {
	a, err := RandomPartition(200, 5, 1)
	require.NoError(t, err)

	b, err := RandomPartition(200, 5, 1)
	require.NoError(t, err)

	c, err := RandomPartition(200, 5, 2)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRandomPartitionInvalid(t *testing.T) {
	_, err := RandomPartition(10, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = RandomPartition(3, 4, 0)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSplitFolds(t *testing.T) {
	assignment := []int{0, 1, 2, 0, 1, 2, 0}

	splits, err := SplitFolds(assignment, 3)
	require.NoError(t, err)
	require.Len(t, splits, 3)

	assert.Equal(t, []int{0, 3, 6}, splits[0].Validation)
	assert.Equal(t, []int{1, 2, 4, 5}, splits[0].Train)
	assert.Equal(t, []int{1, 4}, splits[1].Validation)
	assert.Equal(t, []int{0, 2, 3, 5, 6}, splits[1].Train)

	// Every row is held out exactly once.
	held := make(map[int]int)
	for _, f := range splits {
		for _, row := range f.Validation {
			held[row]++
		}
	}

	for row := range assignment {
		assert.Equal(t, 1, held[row])
	}
}

func TestSplitFoldsInvalid(t *testing.T) {
	_, err := SplitFolds([]int{0, 0, 1}, 3)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = SplitFolds([]int{0, 3}, 2)
	assert.Error(t, err)

	_, err = SplitFolds([]int{0, 1}, 1)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestRowDataset(t *testing.T) {
	var d Dataset = RowDataset(12)

	assert.Equal(t, 12, d.Rows())

	assignment, err := d.Partition(d.Rows(), 4, 3)
	require.NoError(t, err)
	assert.Len(t, assignment, 12)
}
