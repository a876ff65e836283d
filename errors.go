package gridsearch

import (
	"errors"
	"fmt"
)

//////
// Sentinel errors.
//////

var (
	// ErrInvalidSpec is returned when a grid is malformed. It is fatal and
	// surfaces before any training call is made.
	ErrInvalidSpec = errors.New("invalid grid spec")

	// ErrEmptyGrid is returned when the relevant dimensions of a grid expand
	// to zero tasks.
	ErrEmptyGrid = errors.New("empty grid")

	// ErrSpecReleased is returned when a released GridSpec is used.
	ErrSpecReleased = errors.New("grid spec already released")

	// ErrFoldTraining marks a single failed fold. See FoldTrainingError.
	ErrFoldTraining = errors.New("fold training failed")

	// ErrTaskFailed marks a task that could not produce a usable score.
	ErrTaskFailed = errors.New("task failed")

	// ErrAllTasksFailed is returned when every task of a repeat failed, or
	// when no task succeeded in every kept repeat.
	ErrAllTasksFailed = errors.New("all tasks failed")

	// ErrQueueSealed is returned by Push once draining has started.
	ErrQueueSealed = errors.New("task queue sealed")

	// ErrQueueFull is returned by Push when the queue is at capacity.
	ErrQueueFull = errors.New("task queue full")

	// ErrDuplicateTask is returned by Push for an index already queued.
	ErrDuplicateTask = errors.New("duplicate task index")

	// ErrDuplicateResult is returned by Record for an index already recorded.
	ErrDuplicateResult = errors.New("duplicate task result")

	// ErrUnknownTask is returned by Record for an index never queued.
	ErrUnknownTask = errors.New("unknown task index")
)

//////
// Typed errors.
//////

// FoldTrainingError reports that the training routine failed on one fold of
// one task.
type FoldTrainingError struct {
	// TaskIndex is the enumeration index of the task.
	TaskIndex int

	// Fold is the zero-based index of the held-out fold.
	Fold int

	// Err is the error returned by the training routine.
	Err error
}

// Error implements the error interface.
func (e *FoldTrainingError) Error() string {
	return fmt.Sprintf("task %d fold %d: %v", e.TaskIndex, e.Fold, e.Err)
}

// Unwrap returns the training routine error.
func (e *FoldTrainingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFoldTraining.
func (e *FoldTrainingError) Is(target error) bool {
	return target == ErrFoldTraining
}

// TaskFailedError reports that a whole task was abandoned.
type TaskFailedError struct {
	TaskIndex int
	Err       error
}

// Error implements the error interface.
func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.TaskIndex, e.Err)
}

// Unwrap returns the cause, usually a *FoldTrainingError.
func (e *TaskFailedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTaskFailed.
func (e *TaskFailedError) Is(target error) bool {
	return target == ErrTaskFailed
}

// invalidSpec wraps ErrInvalidSpec with a formatted reason.
func invalidSpec(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...))
}
