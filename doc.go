// Package gridsearch provides the hyperparameter grid-search scheduler of a
// multiclass SVM trainer. It expands ranges of candidate values into tasks,
// cross-validates every task with an external training routine, repeats the
// whole search with fresh fold partitions and selects the parameter set whose
// performance is both high and stable.
//
// # Features
//
// The package includes the following key features:
//
//   - Kernel-aware grids: kernel parameters only enter the cross product for
//     the kernel families that use them
//   - Deterministic enumeration: tasks and their indices are reproducible
//   - Worker pool: tasks are drained sequentially or by a fixed number of
//     goroutines, each task exactly once
//   - Explicit failure policy: a failed fold either abandons its task or is
//     penalized with a worst-case score
//   - Stability-over-peak selection: near-tied tasks are ranked by the spread
//     of their scores across repeats
//   - Progress Monitoring: Real-time updates on search progress via channels
//   - YAML grid files and YAML reports
//
// # Installation
//
// To install the package, use:
//
//	go get github.com/thalesfsp/gridsearch
//
// # Kernels
//
// The kernel family decides which dimensions take part in the grid:
//
//	lambda, kappa, p, epsilon, weight_idx   every kernel
//	gamma                                   poly, rbf, sigmoid
//	coef                                    poly, sigmoid
//	degree                                  poly
//
// Dimensions a kernel does not use keep their DefaultParams value and do not
// multiply the number of tasks.
//
// # Enumeration order
//
// Tasks are enumerated as a mixed-radix counter over the relevant dimensions
// in the order above: lambda varies slowest and the last relevant dimension
// fastest. Task.Index is the position in that order and is used to address
// results, so repeats can be compared task by task.
//
// # Selection
//
// Each repeat cross-validates its tasks on a new fold partition. For every
// task that succeeded in all kept repeats the mean and the spread of its
// scores are computed. Tasks whose mean is within Tolerance of the best mean
// are near-ties, and the near-tie with the smallest spread wins:
//
//	config := DefaultConfig()
//	config.Tolerance = 0.005
//	config.Spread = SpreadRange
//
// With a single repeat the rule reduces to the best score, ties going to the
// lowest task index.
//
// # Usage
//
//	grid, config, err := LoadGridFile("grid.yaml")
//	if err != nil {
//	    return err
//	}
//	defer grid.Release()
//
//	config.Logger = NewLogger("info", "json", os.Stderr)
//	config.Sink = NewYAMLSink(os.Stdout)
//
//	verdict, err := SearchGrid(ctx, config, grid, RowDataset(rows), train)
//
// # Thread Safety
//
//   - GridSpec is read-only after NewGridSpec until Release
//   - TaskQueue guards Pop and Record with one mutex; training runs unlocked
//   - TrainFunc must be safe for concurrent use when Workers > 1
//   - Progress channel updates never block the workers
package gridsearch
