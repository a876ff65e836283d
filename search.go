package gridsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

//////
// Exported functionalities.
//////

// DefaultTolerance is the default width of a near-tie between mean scores.
const DefaultTolerance = 0.01

// DefaultConfig returns a default configuration.
func DefaultConfig() SearchConfig {
	return SearchConfig{
		Workers:      1,
		Policy:       PolicyAbort,
		PenaltyScore: 0,
		Tolerance:    DefaultTolerance,
		Spread:       SpreadStdDev,
		Shortlist:    0,
		BaseSeed:     0,   // Time-derived.
		ProgressChan: nil, // Default to no progress updates.
		Logger:       nil, // slog.Default().
		Sink:         nil, // Default to no reporting.
	}
}

// SearchGrid runs the grid search and returns the most robust task.
//
// Parameters:
// - ctx: cancels the search between tasks
// - config: SearchConfig controlling the search
// - grid: the search space; it is only read
// - data: the dataset provider
// - train: the training routine
//
// Returns:
// - Verdict: the selected task with its per-repeat scores and every kept
// repeat
// - error: ErrInvalidSpec, ErrEmptyGrid, ErrSpecReleased, ErrAllTasksFailed,
// a *TaskFailedError under StopOnTaskFailure, the context error, or a sink
// error (the verdict is still returned in that last case)
//
// Usage example:
//
//	config := DefaultConfig()
//	config.Workers = runtime.NumCPU()
//	config.Policy = PolicyPenalize
//
//	verdict, err := SearchGrid(ctx, config, grid, RowDataset(rows), train)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(verdict.Task.Params, verdict.Mean, verdict.Spread)
//
// How it works:
// 1. Enumerates the grid once; task indices are fixed from here on
// 2. For each repeat r:
//   - Requests a fresh partition seeded with BaseSeed+r
//   - Queues the tasks (the whole grid, or the shortlist after the first
//     successful repeat when Shortlist > 0)
//   - Drains the queue with Workers goroutines, cross-validating each task
//   - Drops the repeat if every task failed
//
// 3. Selects the winner with Selector across the kept repeats
// 4. Reports the verdict to the Sink, if any
//
// A cancelled context stops workers between tasks; the interrupted repeat is
// discarded and nothing is reported.
func SearchGrid(
	ctx context.Context,
	config SearchConfig,
	grid *GridSpec,
	data Dataset,
	train TrainFunc,
) (Verdict, error) {
	if grid.Released() {
		return Verdict{}, ErrSpecReleased
	}

	if data == nil {
		return Verdict{}, invalidSpec("dataset is required")
	}

	if train == nil {
		return Verdict{}, invalidSpec("training routine is required")
	}

	rows, folds := data.Rows(), grid.Folds()
	if folds > rows {
		return Verdict{}, invalidSpec("folds (%d) exceed dataset rows (%d)", folds, rows)
	}

	tasks, err := Enumerate(grid)
	if err != nil {
		return Verdict{}, err
	}

	s := &search{
		id:     uuid.NewString(),
		config: config,
		grid:   grid,
		data:   data,
		cv: CrossValidator{
			Train:        train,
			Policy:       config.Policy,
			PenaltyScore: config.PenaltyScore,
		},
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s.logger = logger.With("searchID", s.id)

	s.logger.Info("Grid search started.",
		"kernel", grid.Kernel(),
		"trainType", grid.TrainType(),
		"tasks", len(tasks),
		"repeats", grid.Repeats(),
		"folds", folds,
		"workers", config.Workers,
		"policy", config.Policy,
	)

	return s.run(ctx, tasks)
}

//////
// Search run.
//////

// search holds the state of one SearchGrid call.
type search struct {
	id     string
	config SearchConfig
	grid   *GridSpec
	data   Dataset
	cv     CrossValidator
	logger *slog.Logger
}

func (s *search) run(ctx context.Context, tasks []Task) (Verdict, error) {
	base := resolveSeed(s.config.BaseSeed)

	var (
		outcomes []RepeatOutcome
		dropped  []int
		queued   = tasks
		narrowed bool
	)

	for r := 0; r < s.grid.Repeats(); r++ {
		seed := base + int64(r)

		outcome, err := s.repeat(ctx, r, seed, queued)
		if err != nil {
			return Verdict{}, err
		}

		if outcome.Failed == len(outcome.Results) {
			s.logger.Error("Every task failed, dropping repeat.",
				"repeat", r,
				"error", ErrAllTasksFailed,
			)
			dropped = append(dropped, r)
			continue
		}

		outcomes = append(outcomes, outcome)

		if s.config.Shortlist > 0 && !narrowed {
			queued = shortlist(outcome.Results, s.config.Shortlist)
			narrowed = true

			s.logger.Info("Narrowed grid to shortlist.", "tasks", len(queued))
		}
	}

	selector := Selector{Tolerance: s.config.Tolerance, Spread: s.config.Spread}

	verdict, err := selector.Select(outcomes)
	if err != nil {
		return Verdict{}, err
	}

	verdict.SearchID = s.id
	verdict.Dropped = dropped

	s.logger.Info("Grid search finished.",
		"taskIndex", verdict.Task.Index,
		"params", verdict.Task.Params.String(),
		"mean", verdict.Mean,
		"spread", verdict.Spread,
		"keptRepeats", len(verdict.Outcomes),
		"droppedRepeats", len(dropped),
	)

	if s.config.Sink != nil {
		if err := s.config.Sink.Report(ctx, verdict); err != nil {
			return verdict, fmt.Errorf("report verdict: %w", err)
		}
	}

	return verdict, nil
}

// repeat runs one pass over tasks with a fresh fold partition.
func (s *search) repeat(ctx context.Context, r int, seed int64, tasks []Task) (RepeatOutcome, error) {
	logger := s.logger.With("repeat", r)

	assignment, err := s.data.Partition(s.data.Rows(), s.grid.Folds(), seed)
	if err != nil {
		return RepeatOutcome{}, fmt.Errorf("partition repeat %d: %w", r, err)
	}

	splits, err := SplitFolds(assignment, s.grid.Folds())
	if err != nil {
		return RepeatOutcome{}, fmt.Errorf("split repeat %d: %w", r, err)
	}

	q, err := newQueueOf(tasks)
	if err != nil {
		return RepeatOutcome{}, err
	}

	logger.Info("Repeat started.", "seed", seed, "tasks", q.Size())

	p := newProgress(s, r, q.Size())

	err = q.Drain(ctx, s.config.Workers, func(task Task) (TaskResult, error) {
		res, _ := s.cv.Run(task, splits)

		if res.Failed {
			logger.Warn("Task failed.", "taskIndex", task.Index, "error", res.Err)
		} else {
			logger.Debug("Task evaluated.",
				"taskIndex", task.Index,
				"score", res.Score,
				"penalizedFolds", res.Penalized,
			)
		}

		p.update(res)

		// res.Err is a *TaskFailedError.
		if res.Failed && s.config.StopOnTaskFailure {
			return res, res.Err
		}

		return res, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			logger.Warn("Grid search cancelled, discarding repeat.")
			return RepeatOutcome{}, fmt.Errorf("repeat %d cancelled: %w", r, err)
		}

		return RepeatOutcome{}, fmt.Errorf("repeat %d: %w", r, err)
	}

	outcome := RepeatOutcome{
		Repeat:  r,
		Seed:    seed,
		Results: q.Results(),
	}

	for _, res := range outcome.Results {
		if res.Failed {
			outcome.Failed++
		}
	}

	if best, ok := bestResult(outcome.Results); ok {
		outcome.Best = best

		logger.Info("Repeat finished.",
			"bestIndex", best.Index,
			"bestScore", best.Score,
			"failed", outcome.Failed,
		)
	}

	return outcome, nil
}

//////
// Progress.
//////

// progress tracks the best result of a repeat and sends updates.
type progress struct {
	s     *search
	r     int
	total int

	// mu protects the fields below.
	mu        sync.Mutex
	completed int
	best      TaskResult
	hasBest   bool
}

func newProgress(s *search, r, total int) *progress {
	return &progress{s: s, r: r, total: total}
}

// update records a finished task and sends a progress update if a channel is
// configured.
func (p *progress) update(res TaskResult) {
	p.mu.Lock()

	p.completed++

	if !res.Failed && (!p.hasBest || res.Score > p.best.Score ||
		(res.Score == p.best.Score && res.Index < p.best.Index)) {
		p.best = res
		p.hasBest = true
	}

	update := ProgressUpdate{
		SearchID:     p.s.id,
		Repeat:       p.r,
		TotalRepeats: p.s.grid.Repeats(),
		Completed:    p.completed,
		Total:        p.total,
		TaskIndex:    res.Index,
		Score:        res.Score,
		Failed:       res.Failed,
		BestIndex:    -1,
		BestScore:    FailedScore,
	}

	if p.hasBest {
		update.BestIndex = p.best.Index
		update.BestScore = p.best.Score
	}

	p.mu.Unlock()

	if p.s.config.ProgressChan == nil {
		return
	}

	select {
	case p.s.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}
