package gridsearch

import (
	"math"
	"sync"
	"sync/atomic"
)

// Ranges holds the candidate values of every hyperparameter dimension.
// Sequences of dimensions irrelevant for the selected kernel may be empty.
type Ranges struct {
	Lambdas    []float64 `yaml:"lambdas"`
	Kappas     []float64 `yaml:"kappas"`
	Ps         []float64 `yaml:"ps"`
	Epsilons   []float64 `yaml:"epsilons"`
	WeightIdxs []int     `yaml:"weight_idxs"`
	Gammas     []float64 `yaml:"gammas"`
	Coefs      []float64 `yaml:"coefs"`
	Degrees    []float64 `yaml:"degrees"`
}

// Settings holds the scalar settings of a grid.
type Settings struct {
	// TrainType selects cross-validation or train/test evaluation.
	TrainType TrainType `yaml:"train_type"`

	// Kernel is the kernel family used throughout the search.
	Kernel KernelType `yaml:"kernel"`

	// Repeats is the number of passes over the grid, each with a fresh
	// fold partition. Must be at least 1.
	Repeats int `yaml:"repeats"`

	// Folds is the number of cross-validation folds. Must be at least 2.
	Folds int `yaml:"folds"`

	// TrainFile references the training dataset.
	TrainFile string `yaml:"train_file"`

	// TestFile references the held-out test dataset. Required by TrainTT.
	TestFile string `yaml:"test_file"`
}

// DefaultParams returns the values used for dimensions that do not take part
// in the grid.
func DefaultParams() Params {
	return Params{
		Lambda:    math.Pow(2, -8),
		Kappa:     0.0,
		P:         1.0,
		Epsilon:   1e-6,
		WeightIdx: 1,
		Gamma:     1.0,
		Coef:      0.0,
		Degree:    2.0,
	}
}

// DefaultRanges returns single-value ranges holding DefaultParams. It is a
// convenient starting point to widen one dimension at a time.
func DefaultRanges() Ranges {
	d := DefaultParams()

	return Ranges{
		Lambdas:    []float64{d.Lambda},
		Kappas:     []float64{d.Kappa},
		Ps:         []float64{d.P},
		Epsilons:   []float64{d.Epsilon},
		WeightIdxs: []int{d.WeightIdx},
		Gammas:     []float64{d.Gamma},
		Coefs:      []float64{d.Coef},
		Degrees:    []float64{d.Degree},
	}
}

// GridSpec is the immutable hyperparameter search space. It owns copies of
// all candidate sequences until Release is called.
type GridSpec struct {
	settings Settings
	dims     []dimension

	releaseOnce sync.Once
	released    atomic.Bool
}

// NewGridSpec validates ranges and settings and returns a GridSpec owning
// copies of the candidate sequences.
//
// Parameters:
// - ranges: candidate values per dimension
// - settings: kernel, train type, repeats, folds and file references
//
// Returns:
// - *GridSpec: the validated grid
// - error: wraps ErrInvalidSpec when validation fails
//
// Usage example:
//
//	ranges := DefaultRanges()
//	ranges.Lambdas = []float64{1e-4, 1e-3, 1e-2}
//	ranges.Gammas = []float64{0.1, 1, 10}
//
//	grid, err := NewGridSpec(ranges, Settings{
//	    Kernel:    KernelRBF,
//	    Repeats:   5,
//	    Folds:     10,
//	    TrainFile: "data/iris.train",
//	})
//	if err != nil {
//	    return err
//	}
//	defer grid.Release()
func NewGridSpec(ranges Ranges, settings Settings) (*GridSpec, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	g := &GridSpec{
		settings: settings,
		dims:     buildDimensions(ranges),
	}

	for _, d := range g.dims {
		if err := d.validate(d.relevantFor(settings.Kernel)); err != nil {
			g.Release()
			return nil, err
		}
	}

	return g, nil
}

func validateSettings(s Settings) error {
	switch s.TrainType {
	case TrainCV, TrainTT:
	default:
		return invalidSpec("unknown train type %v", s.TrainType)
	}

	switch s.Kernel {
	case KernelLinear, KernelPoly, KernelRBF, KernelSigmoid:
	default:
		return invalidSpec("unknown kernel %v", s.Kernel)
	}

	if s.Repeats < 1 {
		return invalidSpec("repeats must be at least 1, got %d", s.Repeats)
	}

	if s.Folds < 2 {
		return invalidSpec("folds must be at least 2, got %d", s.Folds)
	}

	if s.TrainFile == "" {
		return invalidSpec("train file is required")
	}

	if s.TrainType == TrainTT && s.TestFile == "" {
		return invalidSpec("test file is required for train type %v", s.TrainType)
	}

	return nil
}

// Release drops the candidate sequences and file references. It is safe to
// call on a nil or partially constructed grid, and calls after the first are
// no-ops.
func (g *GridSpec) Release() {
	if g == nil {
		return
	}

	g.releaseOnce.Do(func() {
		for _, d := range g.dims {
			if d != nil {
				d.release()
			}
		}

		g.dims = nil
		g.settings.TrainFile = ""
		g.settings.TestFile = ""
		g.released.Store(true)
	})
}

// Released reports whether Release has been called.
func (g *GridSpec) Released() bool {
	return g == nil || g.released.Load()
}

// Settings returns the scalar settings of the grid.
func (g *GridSpec) Settings() Settings { return g.settings }

// Kernel returns the kernel family.
func (g *GridSpec) Kernel() KernelType { return g.settings.Kernel }

// TrainType returns the train type.
func (g *GridSpec) TrainType() TrainType { return g.settings.TrainType }

// Repeats returns the configured number of repeats.
func (g *GridSpec) Repeats() int { return g.settings.Repeats }

// Folds returns the configured number of folds.
func (g *GridSpec) Folds() int { return g.settings.Folds }

// Len returns the number of candidates of a dimension, relevant or not.
func (g *GridSpec) Len(p Param) int {
	if d := g.dim(p); d != nil {
		return d.size()
	}

	return 0
}

// Values returns a copy of the candidates of a dimension as float64.
func (g *GridSpec) Values(p Param) []float64 {
	if d := g.dim(p); d != nil {
		return d.floats()
	}

	return nil
}

// Relevant reports whether a dimension takes part in the cross product for
// the grid's kernel.
func (g *GridSpec) Relevant(p Param) bool {
	if d := g.dim(p); d != nil {
		return d.relevantFor(g.settings.Kernel)
	}

	return false
}

func (g *GridSpec) dim(p Param) dimension {
	if g.Released() || p < 0 || int(p) >= len(g.dims) {
		return nil
	}

	return g.dims[p]
}

// relevantDimensions returns the dimensions used by the grid's kernel, in
// declaration order.
func (g *GridSpec) relevantDimensions() []dimension {
	out := make([]dimension, 0, len(g.dims))
	for _, d := range g.dims {
		if d.relevantFor(g.settings.Kernel) {
			out = append(out, d)
		}
	}

	return out
}
