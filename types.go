package gridsearch

import (
	"context"
	"fmt"
	"log/slog"
)

//////
// Enumerations.
//////

// TrainType selects how the training routine evaluates a task.
type TrainType int

const (
	// TrainCV evaluates every task with k-fold cross-validation on the
	// training file.
	TrainCV TrainType = iota

	// TrainTT trains on the training file and tests on the test file. The
	// scheduler still cross-validates; the routine decides how to use the
	// held-out test file.
	TrainTT
)

// String implements fmt.Stringer.
func (t TrainType) String() string {
	switch t {
	case TrainCV:
		return "cv"
	case TrainTT:
		return "tt"
	default:
		return fmt.Sprintf("TrainType(%d)", int(t))
	}
}

// KernelType is the kernel family used by the SVM. It determines which
// hyperparameter dimensions take part in the grid.
type KernelType int

const (
	// KernelLinear uses no kernel parameters.
	KernelLinear KernelType = iota

	// KernelPoly uses gamma, coef and degree.
	KernelPoly

	// KernelRBF uses gamma.
	KernelRBF

	// KernelSigmoid uses gamma and coef.
	KernelSigmoid
)

// String implements fmt.Stringer.
func (k KernelType) String() string {
	switch k {
	case KernelLinear:
		return "linear"
	case KernelPoly:
		return "poly"
	case KernelRBF:
		return "rbf"
	case KernelSigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("KernelType(%d)", int(k))
	}
}

// FailurePolicy decides what happens when the training routine fails on a
// fold.
type FailurePolicy int

const (
	// PolicyAbort abandons the task at the first failed fold. The task is
	// recorded as failed and excluded from selection.
	PolicyAbort FailurePolicy = iota

	// PolicyPenalize scores the failed fold with SearchConfig.PenaltyScore
	// and keeps going.
	PolicyPenalize
)

// String implements fmt.Stringer.
func (p FailurePolicy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicyPenalize:
		return "penalize"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// SpreadMeasure is the dispersion statistic used to compare near-tied tasks
// across repeats.
type SpreadMeasure int

const (
	// SpreadStdDev is the population standard deviation.
	SpreadStdDev SpreadMeasure = iota

	// SpreadVariance is the population variance.
	SpreadVariance

	// SpreadRange is max minus min.
	SpreadRange
)

// String implements fmt.Stringer.
func (s SpreadMeasure) String() string {
	switch s {
	case SpreadStdDev:
		return "stddev"
	case SpreadVariance:
		return "variance"
	case SpreadRange:
		return "range"
	default:
		return fmt.Sprintf("SpreadMeasure(%d)", int(s))
	}
}

//////
// Tasks and results.
//////

// Params holds one concrete value per hyperparameter. Parameters that are
// irrelevant for the task's kernel carry their default value.
type Params struct {
	// Lambda is the regularization weight.
	Lambda float64 `yaml:"lambda"`

	// Kappa is the Huber loss-shaping constant.
	Kappa float64 `yaml:"kappa"`

	// P is the margin parameter of the Lp-norm in the loss.
	P float64 `yaml:"p"`

	// Epsilon is the convergence tolerance of the optimizer.
	Epsilon float64 `yaml:"epsilon"`

	// WeightIdx selects the class weighting scheme: 1 for unit weights,
	// 2 for group-size correction.
	WeightIdx int `yaml:"weight_idx"`

	// Gamma is the kernel bandwidth.
	Gamma float64 `yaml:"gamma"`

	// Coef is the kernel coefficient.
	Coef float64 `yaml:"coef"`

	// Degree is the polynomial kernel degree.
	Degree float64 `yaml:"degree"`
}

// String renders the parameters compactly, for logs.
func (p Params) String() string {
	return fmt.Sprintf(
		"lambda=%g kappa=%g p=%g epsilon=%g weight_idx=%d gamma=%g coef=%g degree=%g",
		p.Lambda, p.Kappa, p.P, p.Epsilon, p.WeightIdx, p.Gamma, p.Coef, p.Degree,
	)
}

// Task is one point of the grid.
type Task struct {
	// Index is the position of the task in enumeration order.
	Index int `yaml:"index"`

	TrainType TrainType  `yaml:"train_type"`
	Kernel    KernelType `yaml:"kernel"`
	Params    Params     `yaml:"params"`
}

// TaskResult is the outcome of cross-validating one task.
type TaskResult struct {
	// Index is the enumeration index of the originating task.
	Index int

	// Task is the evaluated task.
	Task Task

	// Score is the mean of FoldScores, or FailedScore when Failed is set.
	Score float64

	// FoldScores holds one score per completed fold, for diagnostics.
	FoldScores []float64

	// Penalized counts folds that were replaced by the penalty score.
	Penalized int

	// Failed marks a task that produced no usable score.
	Failed bool

	// Err is the failure cause when Failed is set.
	Err error
}

// RepeatOutcome is the result of one pass over the queue with one fold
// partition.
type RepeatOutcome struct {
	// Repeat is the zero-based repeat number.
	Repeat int

	// Seed is the seed handed to the fold partitioner.
	Seed int64

	// Results holds one result per queued task, in enumeration order.
	Results []TaskResult

	// Best is the best successful result of this repeat.
	Best TaskResult

	// Failed counts failed tasks.
	Failed int
}

// Verdict is the final decision of a search.
type Verdict struct {
	// SearchID identifies the search run.
	SearchID string

	// Task is the selected task.
	Task Task

	// Mean is the mean score of Task over the kept repeats.
	Mean float64

	// Spread is the dispersion of Task's score over the kept repeats,
	// measured with SearchConfig.Spread.
	Spread float64

	// Scores holds Task's score per kept repeat.
	Scores []float64

	// Outcomes holds every kept repeat, in repeat order.
	Outcomes []RepeatOutcome

	// Dropped lists the repeat numbers discarded because every task failed.
	Dropped []int
}

// ProgressUpdate represents the current state of a search.
type ProgressUpdate struct {
	// SearchID identifies the search run.
	SearchID string

	// Repeat is the current zero-based repeat.
	Repeat int

	// TotalRepeats is the configured number of repeats.
	TotalRepeats int

	// Completed is the number of tasks finished in this repeat.
	Completed int

	// Total is the number of tasks queued in this repeat.
	Total int

	// TaskIndex is the index of the task that just finished.
	TaskIndex int

	// Score is the score of that task.
	Score float64

	// Failed reports whether that task failed.
	Failed bool

	// BestIndex is the index of the best task so far in this repeat, or -1.
	BestIndex int

	// BestScore is the score of BestIndex.
	BestScore float64
}

//////
// External collaborators.
//////

// TrainFunc trains a model with the task's parameters on the train rows and
// returns its score on the validation rows. Higher scores are better.
//
// The scheduler treats it as a blocking unit of work and may call it from
// several goroutines at once when SearchConfig.Workers > 1, so it must be
// safe for concurrent use in that case.
//
// Usage example:
//
//	train := TrainFunc(func(task Task, train, validation []int) (float64, error) {
//	    model, err := fitSVM(task.Kernel, task.Params, rows(train))
//	    if err != nil {
//	        return 0, fmt.Errorf("fit: %w", err)
//	    }
//
//	    return model.Accuracy(rows(validation)), nil
//	})
type TrainFunc func(task Task, train, validation []int) (float64, error)

// Dataset is the dataset provider.
type Dataset interface {
	// Rows returns the number of rows of the training data.
	Rows() int

	// Partition assigns every row to a fold in [0, folds). Different seeds
	// must yield independent assignments.
	Partition(rows, folds int, seed int64) ([]int, error)
}

// ResultSink receives the verdict of a search, including every kept
// repeat's results in enumeration order.
type ResultSink interface {
	Report(ctx context.Context, verdict Verdict) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, verdict Verdict) error

// Report implements ResultSink.
func (f SinkFunc) Report(ctx context.Context, verdict Verdict) error {
	return f(ctx, verdict)
}

//////
// Configuration.
//////

// SearchConfig holds the settings of a search that are not part of the
// grid itself.
//
// Usage example:
//
//	config := DefaultConfig()
//
//	// Evaluate four tasks at a time.
//	config.Workers = 4
//
//	// Keep searching when a fold fails to converge.
//	config.Policy = PolicyPenalize
//
//	// Tasks within 0.5% of the best mean compete on stability.
//	config.Tolerance = 0.005
type SearchConfig struct {
	// Workers is the number of tasks evaluated concurrently. Values below
	// 1 drain the queue sequentially.
	Workers int

	// Policy decides what a failed fold does to its task.
	Policy FailurePolicy

	// PenaltyScore is the worst-case score given to a failed fold under
	// PolicyPenalize.
	PenaltyScore float64

	// Tolerance is the width of a near-tie: tasks whose mean score is within
	// Tolerance of the best mean are ranked by spread.
	Tolerance float64

	// Spread is the dispersion statistic used for near-ties.
	Spread SpreadMeasure

	// StopOnTaskFailure aborts the whole search at the first failed task.
	StopOnTaskFailure bool

	// Shortlist, when positive, restricts every repeat after the first
	// successful one to its best Shortlist tasks.
	Shortlist int

	// BaseSeed seeds the partition of repeat r with BaseSeed+r. Zero picks
	// a time-derived seed.
	BaseSeed int64

	// ProgressChan receives progress updates. Updates are dropped when the
	// channel is full. If nil, no updates are sent.
	ProgressChan chan<- ProgressUpdate

	// Logger receives structured logs. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Sink receives the verdict. If nil, nothing is reported.
	Sink ResultSink
}
