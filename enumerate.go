package gridsearch

import (
	"fmt"
	"math"
	"strings"
)

// TaskCount returns the number of tasks the grid expands to: the product of
// the lengths of the relevant dimensions. Irrelevant dimensions contribute a
// factor of 1.
func (g *GridSpec) TaskCount() (int, error) {
	if g.Released() {
		return 0, ErrSpecReleased
	}

	total := 1
	for _, d := range g.relevantDimensions() {
		n := d.size()
		if n != 0 && total > math.MaxInt/n {
			return 0, invalidSpec("grid size overflows int")
		}

		total *= n
	}

	return total, nil
}

// Enumerate expands the grid into its tasks.
//
// Tasks are produced in mixed-radix counter order over the relevant
// dimensions: the first declared dimension (lambda) varies slowest and the
// last relevant one varies fastest. Task.Index is the position in that
// order. Dimensions irrelevant for the kernel take DefaultParams values.
//
// The order is stable: two calls on the same grid return identical slices.
//
// Returns:
// - []Task: every combination, sized exactly by TaskCount
// - error: ErrSpecReleased, or ErrEmptyGrid when a relevant dimension is empty
//
// Usage example:
//
//	tasks, err := Enumerate(grid)
//	if errors.Is(err, ErrEmptyGrid) {
//	    // Nothing to search.
//	}
func Enumerate(g *GridSpec) ([]Task, error) {
	total, err := g.TaskCount()
	if err != nil {
		return nil, err
	}

	dims := g.relevantDimensions()

	if total == 0 {
		var empty []string
		for _, d := range dims {
			if d.size() == 0 {
				empty = append(empty, d.param().String())
			}
		}

		return nil, fmt.Errorf("%w: no candidates for %s", ErrEmptyGrid, strings.Join(empty, ", "))
	}

	tasks := make([]Task, total)
	for idx := range tasks {
		params := DefaultParams()

		rem := idx
		for d := len(dims) - 1; d >= 0; d-- {
			n := dims[d].size()
			dims[d].assign(&params, rem%n)
			rem /= n
		}

		tasks[idx] = Task{
			Index:     idx,
			TrainType: g.settings.TrainType,
			Kernel:    g.settings.Kernel,
			Params:    params,
		}
	}

	return tasks, nil
}

// NewGridQueue enumerates the grid into a queue sized exactly to its task
// count.
func NewGridQueue(g *GridSpec) (*TaskQueue, error) {
	tasks, err := Enumerate(g)
	if err != nil {
		return nil, err
	}

	return newQueueOf(tasks)
}

// newQueueOf pushes tasks, in order, into a queue of exactly len(tasks).
func newQueueOf(tasks []Task) (*TaskQueue, error) {
	q := NewTaskQueue(len(tasks))
	for _, t := range tasks {
		if err := q.Push(t); err != nil {
			return nil, err
		}
	}

	return q, nil
}
