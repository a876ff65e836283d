package gridsearch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TaskQueue is an ordered, consumable collection of tasks with
// index-addressed result slots.
//
// Push is only valid before the first Pop. Pop and Record are guarded by a
// single mutex, so no two workers ever receive the same task and results may
// be recorded in any order. Results returns them in push order.
//
// Thread safety:
// - All methods are safe for concurrent use
// - The work done between Pop and Record runs outside the lock
type TaskQueue struct {
	mu sync.Mutex

	tasks []Task
	next  int

	// sealed is set by the first Pop.
	sealed bool

	// slot maps a task index to its position in tasks and results.
	slot     map[int]int
	results  []TaskResult
	recorded []bool
}

// NewTaskQueue returns an empty queue that accepts exactly capacity tasks.
func NewTaskQueue(capacity int) *TaskQueue {
	if capacity < 0 {
		capacity = 0
	}

	return &TaskQueue{
		tasks:    make([]Task, 0, capacity),
		slot:     make(map[int]int, capacity),
		results:  make([]TaskResult, capacity),
		recorded: make([]bool, capacity),
	}
}

// Push appends a task. It fails once draining has started, when the queue is
// at capacity, or when the task index is already queued.
func (q *TaskQueue) Push(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return ErrQueueSealed
	}

	if len(q.tasks) == cap(q.tasks) {
		return fmt.Errorf("%w: capacity %d", ErrQueueFull, cap(q.tasks))
	}

	if _, ok := q.slot[t.Index]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTask, t.Index)
	}

	q.slot[t.Index] = len(q.tasks)
	q.tasks = append(q.tasks, t)

	return nil
}

// Pop hands out the next task. The boolean is false when the queue is empty.
func (q *TaskQueue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sealed = true

	if q.next >= len(q.tasks) {
		return Task{}, false
	}

	t := q.tasks[q.next]
	q.next++

	return t, true
}

// Len returns the number of tasks not yet popped.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks) - q.next
}

// IsEmpty reports whether every task has been popped.
func (q *TaskQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Size returns the number of tasks pushed.
func (q *TaskQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Record stores the result of a popped task, addressed by its task index.
// A task is recorded at most once.
func (q *TaskQueue) Record(r TaskResult) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos, ok := q.slot[r.Index]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTask, r.Index)
	}

	if q.recorded[pos] {
		return fmt.Errorf("%w: %d", ErrDuplicateResult, r.Index)
	}

	q.results[pos] = r
	q.recorded[pos] = true

	return nil
}

// Results returns the recorded results in push order, skipping tasks without
// a result.
func (q *TaskQueue) Results() []TaskResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]TaskResult, 0, len(q.tasks))
	for i := range q.tasks {
		if q.recorded[i] {
			out = append(out, q.results[i])
		}
	}

	return out
}

// Complete reports whether every pushed task has a recorded result.
func (q *TaskQueue) Complete() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.tasks {
		if !q.recorded[i] {
			return false
		}
	}

	return true
}

// RunFunc evaluates one task. The returned result is always recorded; a
// non-nil error additionally stops the drain.
type RunFunc func(task Task) (TaskResult, error)

// Drain pops and runs every task with a pool of workers.
//
// With workers <= 1 the queue is drained on the calling goroutine. The
// context is checked between tasks, never during one, so a cancelled drain
// returns after the in-flight tasks finish.
//
// Returns:
// - nil when every task was run
// - the context error when cancelled
// - the first error returned by run or by Record
func (q *TaskQueue) Drain(ctx context.Context, workers int, run RunFunc) error {
	if workers <= 1 {
		return q.work(ctx, run)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return q.work(gctx, run)
		})
	}

	return g.Wait()
}

// work is the loop of a single worker.
func (q *TaskQueue) work(ctx context.Context, run RunFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, ok := q.Pop()
		if !ok {
			return nil
		}

		res, runErr := run(task)
		if err := q.Record(res); err != nil {
			return err
		}

		if runErr != nil {
			return runErr
		}
	}
}
