package gridsearch

import (
	"fmt"
	"sort"
)

// Selector picks the most robust task across repeats.
//
// Tasks are ranked by mean score over the repeats, descending. Every task
// whose mean lies within Tolerance of the best mean is a near-tie, and among
// near-ties the smallest Spread wins; remaining ties go to the higher mean,
// then to the lowest task index. With a single repeat every spread is zero,
// so the rule reduces to the highest score with ties to the lowest index.
type Selector struct {
	// Tolerance is the width of a near-tie. Negative values count as zero.
	Tolerance float64

	// Spread is the dispersion statistic compared among near-ties.
	Spread SpreadMeasure
}

// candidate is one task's statistics across repeats.
type candidate struct {
	task   Task
	scores []float64
	mean   float64
	spread float64
}

// Select returns the verdict over outcomes. Outcomes without a successful
// task are ignored, and only tasks that succeeded in every remaining outcome
// compete.
//
// Returns:
// - Verdict: Task, Mean, Spread and Scores of the winner; Outcomes holds the
// outcomes that took part
// - error: ErrAllTasksFailed when no task qualifies
func (s Selector) Select(outcomes []RepeatOutcome) (Verdict, error) {
	kept := make([]RepeatOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed < len(o.Results) {
			kept = append(kept, o)
		}
	}

	if len(kept) == 0 {
		return Verdict{}, fmt.Errorf("%w: no repeat produced a usable score", ErrAllTasksFailed)
	}

	cands := s.candidates(kept)
	if len(cands) == 0 {
		return Verdict{}, fmt.Errorf("%w: no task succeeded in every repeat", ErrAllTasksFailed)
	}

	best := s.pick(cands)

	return Verdict{
		Task:     best.task,
		Mean:     best.mean,
		Spread:   best.spread,
		Scores:   best.scores,
		Outcomes: kept,
	}, nil
}

// candidates collects, in task index order, the tasks that succeeded in
// every outcome.
func (s Selector) candidates(outcomes []RepeatOutcome) []candidate {
	byIndex := make(map[int]*candidate)
	seen := make(map[int]int)

	for _, o := range outcomes {
		for _, r := range o.Results {
			if r.Failed {
				continue
			}

			c, ok := byIndex[r.Index]
			if !ok {
				c = &candidate{task: r.Task, scores: make([]float64, 0, len(outcomes))}
				byIndex[r.Index] = c
			}

			c.scores = append(c.scores, r.Score)
			seen[r.Index]++
		}
	}

	out := make([]candidate, 0, len(byIndex))
	for idx, c := range byIndex {
		if seen[idx] != len(outcomes) {
			continue
		}

		c.mean = mean(c.scores)
		c.spread = spread(s.Spread, c.scores)
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].task.Index < out[j].task.Index
	})

	return out
}

// pick applies the stability rule to candidates sorted by task index.
func (s Selector) pick(cands []candidate) candidate {
	tol := s.Tolerance
	if tol < 0 {
		tol = 0
	}

	top := cands[0].mean
	for _, c := range cands[1:] {
		if c.mean > top {
			top = c.mean
		}
	}

	var best *candidate
	for i := range cands {
		c := &cands[i]
		if c.mean < top-tol {
			continue
		}

		switch {
		case best == nil:
			best = c
		case c.spread < best.spread:
			best = c
		case c.spread == best.spread && c.mean > best.mean:
			best = c
		}
	}

	return *best
}

// bestResult returns the best successful result, ties to the lowest index.
// The boolean is false when every result failed.
func bestResult(results []TaskResult) (TaskResult, bool) {
	var (
		best  TaskResult
		found bool
	)

	for _, r := range results {
		if r.Failed {
			continue
		}

		if !found || r.Score > best.Score || (r.Score == best.Score && r.Index < best.Index) {
			best = r
			found = true
		}
	}

	return best, found
}

// shortlist returns the tasks of the n best successful results, in
// enumeration order.
func shortlist(results []TaskResult, n int) []Task {
	ok := make([]TaskResult, 0, len(results))
	for _, r := range results {
		if !r.Failed {
			ok = append(ok, r)
		}
	}

	sort.SliceStable(ok, func(i, j int) bool {
		if ok[i].Score != ok[j].Score {
			return ok[i].Score > ok[j].Score
		}
		return ok[i].Index < ok[j].Index
	})

	if n < len(ok) {
		ok = ok[:n]
	}

	sort.Slice(ok, func(i, j int) bool { return ok[i].Index < ok[j].Index })

	tasks := make([]Task, len(ok))
	for i, r := range ok {
		tasks[i] = r.Task
	}

	return tasks
}
