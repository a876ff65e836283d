package gridsearch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filledQueue returns a queue of n tasks indexed 0..n-1.
func filledQueue(t *testing.T, n int) *TaskQueue {
	t.Helper()

	q := NewTaskQueue(n)
	for i := 0; i < n; i++ {
		require.NoError(t, q.Push(Task{Index: i}))
	}

	return q
}

func TestTaskQueuePushPop(t *testing.T) {
	q := NewTaskQueue(3)
	assert.True(t, q.IsEmpty())

	require.NoError(t, q.Push(Task{Index: 0}))
	require.NoError(t, q.Push(Task{Index: 1}))
	assert.ErrorIs(t, q.Push(Task{Index: 1}), ErrDuplicateTask)
	require.NoError(t, q.Push(Task{Index: 2}))
	assert.ErrorIs(t, q.Push(Task{Index: 3}), ErrQueueFull)

	assert.Equal(t, 3, q.Size())
	assert.Equal(t, 3, q.Len())
	assert.False(t, q.IsEmpty())

	task, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 0, task.Index)

	// Pushing is an enumeration-time operation only.
	assert.ErrorIs(t, q.Push(Task{Index: 5}), ErrQueueSealed)

	assert.Equal(t, 2, q.Len())

	_, ok = q.Pop()
	require.True(t, ok)
	_, ok = q.Pop()
	require.True(t, ok)
	_, ok = q.Pop()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}

func TestTaskQueueRecord(t *testing.T) {
	q := filledQueue(t, 4)

	// Out of order recording.
	for _, i := range []int{3, 0, 2} {
		require.NoError(t, q.Record(TaskResult{Index: i, Score: float64(i)}))
	}

	assert.False(t, q.Complete())
	assert.ErrorIs(t, q.Record(TaskResult{Index: 0}), ErrDuplicateResult)
	assert.ErrorIs(t, q.Record(TaskResult{Index: 9}), ErrUnknownTask)

	require.NoError(t, q.Record(TaskResult{Index: 1, Score: 1}))
	assert.True(t, q.Complete())

	results := q.Results()
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, float64(i), r.Score)
	}
}

func TestTaskQueueDrainWorkers(t *testing.T) {
	const n = 200

	// Sequential consumption is the reference.
	var reference []TaskResult

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			q := filledQueue(t, n)

			var calls [n]int32

			err := q.Drain(context.Background(), workers, func(task Task) (TaskResult, error) {
				atomic.AddInt32(&calls[task.Index], 1)
				return TaskResult{Index: task.Index, Score: float64(task.Index) / n}, nil
			})
			require.NoError(t, err)

			// Every task ran exactly once.
			for i := range calls {
				assert.Equal(t, int32(1), atomic.LoadInt32(&calls[i]), "task %d", i)
			}

			assert.True(t, q.Complete())
			assert.True(t, q.IsEmpty())

			results := q.Results()
			if reference == nil {
				reference = results
				return
			}

			assert.Equal(t, reference, results)
		})
	}
}

func TestTaskQueueDrainCancel(t *testing.T) {
	q := filledQueue(t, 50)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran int32

	err := q.Drain(ctx, 1, func(task Task) (TaskResult, error) {
		if atomic.AddInt32(&ran, 1) == 5 {
			cancel()
		}
		return TaskResult{Index: task.Index}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)

	// The stop signal is observed between tasks.
	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
	assert.Len(t, q.Results(), 5)
	assert.False(t, q.Complete())
}

func TestTaskQueueDrainStopsOnError(t *testing.T) {
	boom := errors.New("boom")

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			q := filledQueue(t, 100)

			err := q.Drain(context.Background(), workers, func(task Task) (TaskResult, error) {
				if task.Index == 3 {
					return TaskResult{Index: task.Index, Failed: true}, boom
				}

				time.Sleep(time.Millisecond)
				return TaskResult{Index: task.Index}, nil
			})

			assert.ErrorIs(t, err, boom)

			// The failing task is still recorded.
			indices := make([]int, 0)
			for _, r := range q.Results() {
				indices = append(indices, r.Index)
			}

			assert.Contains(t, indices, 3)
			assert.True(t, sort.IntsAreSorted(indices))
			assert.False(t, q.Complete())
		})
	}
}
