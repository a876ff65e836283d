package gridsearch

import (
	"fmt"
	"math/rand"
)

// Fold is one cross-validation split: the rows to train on and the rows
// held out for scoring.
type Fold struct {
	Train      []int
	Validation []int
}

// RandomPartition assigns rows to folds at random. Fold sizes differ by at
// most one and the same seed always yields the same assignment.
func RandomPartition(rows, folds int, seed int64) ([]int, error) {
	if folds < 2 {
		return nil, invalidSpec("folds must be at least 2, got %d", folds)
	}

	if folds > rows {
		return nil, invalidSpec("folds (%d) exceed dataset rows (%d)", folds, rows)
	}

	rng := rand.New(rand.NewSource(seed))

	assignment := make([]int, rows)
	for i, row := range rng.Perm(rows) {
		assignment[row] = i % folds
	}

	return assignment, nil
}

// RowDataset is a Dataset of a fixed number of rows partitioned with
// RandomPartition.
type RowDataset int

// Rows implements Dataset.
func (d RowDataset) Rows() int { return int(d) }

// Partition implements Dataset.
func (d RowDataset) Partition(rows, folds int, seed int64) ([]int, error) {
	return RandomPartition(rows, folds, seed)
}

// SplitFolds turns a fold assignment into one Fold per fold number. Every
// fold must hold at least one row.
func SplitFolds(assignment []int, folds int) ([]Fold, error) {
	if folds < 2 {
		return nil, invalidSpec("folds must be at least 2, got %d", folds)
	}

	sizes := make([]int, folds)
	for row, f := range assignment {
		if f < 0 || f >= folds {
			return nil, fmt.Errorf("row %d assigned to fold %d outside [0, %d)", row, f, folds)
		}

		sizes[f]++
	}

	splits := make([]Fold, folds)
	for f := range splits {
		if sizes[f] == 0 {
			return nil, invalidSpec("fold %d is empty", f)
		}

		splits[f] = Fold{
			Train:      make([]int, 0, len(assignment)-sizes[f]),
			Validation: make([]int, 0, sizes[f]),
		}
	}

	for row, f := range assignment {
		for k := range splits {
			if k == f {
				splits[k].Validation = append(splits[k].Validation, row)
			} else {
				splits[k].Train = append(splits[k].Train, row)
			}
		}
	}

	return splits, nil
}
