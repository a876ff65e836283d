package gridsearch

import (
	"errors"
	"math"
)

// FailedScore is the sentinel score of a failed task.
var FailedScore = math.Inf(-1)

var errNaNScore = errors.New("training routine returned NaN")

// CrossValidator runs the training routine once per fold and reduces the
// fold scores to their mean. It is metric-agnostic: whatever the routine
// returns is averaged.
type CrossValidator struct {
	// Train is the external training routine.
	Train TrainFunc

	// Policy decides what a failed fold does to the task.
	Policy FailurePolicy

	// PenaltyScore replaces the score of a failed fold under PolicyPenalize.
	PenaltyScore float64
}

// Run cross-validates task over splits, calling Train exactly len(splits)
// times unless the task is abandoned.
//
// A fold fails when Train returns an error or a NaN score. Under
// PolicyAbort the first failed fold stops the task: the result is marked
// Failed and the *FoldTrainingError is returned. Under PolicyPenalize the
// fold is scored with PenaltyScore; the task only fails when every fold
// failed.
//
// The returned result is meant to be recorded in both cases.
func (cv CrossValidator) Run(task Task, splits []Fold) (TaskResult, error) {
	res := TaskResult{
		Index:      task.Index,
		Task:       task,
		FoldScores: make([]float64, 0, len(splits)),
	}

	if len(splits) == 0 {
		return failed(res, &TaskFailedError{TaskIndex: task.Index, Err: invalidSpec("no folds")}), nil
	}

	var lastErr error
	for k, fold := range splits {
		score, err := cv.Train(task, fold.Train, fold.Validation)
		if err == nil && math.IsNaN(score) {
			err = errNaNScore
		}

		if err != nil {
			ferr := &FoldTrainingError{TaskIndex: task.Index, Fold: k, Err: err}

			if cv.Policy != PolicyPenalize {
				return failed(res, &TaskFailedError{TaskIndex: task.Index, Err: ferr}), ferr
			}

			lastErr = ferr
			res.Penalized++
			score = cv.PenaltyScore
		}

		res.FoldScores = append(res.FoldScores, score)
	}

	if res.Penalized == len(splits) {
		return failed(res, &TaskFailedError{TaskIndex: task.Index, Err: lastErr}), nil
	}

	res.Score = mean(res.FoldScores)

	return res, nil
}

func failed(res TaskResult, err error) TaskResult {
	res.Failed = true
	res.Score = FailedScore
	res.Err = err

	return res
}
