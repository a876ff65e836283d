package gridsearch

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Param names a hyperparameter dimension. The constants are declared in
// enumeration order: ParamLambda varies slowest, ParamDegree fastest.
type Param int

const (
	ParamLambda Param = iota
	ParamKappa
	ParamP
	ParamEpsilon
	ParamWeightIdx
	ParamGamma
	ParamCoef
	ParamDegree

	numParams
)

var paramNames = [numParams]string{
	"lambda", "kappa", "p", "epsilon", "weight_idx", "gamma", "coef", "degree",
}

// String implements fmt.Stringer.
func (p Param) String() string {
	if p < 0 || p >= numParams {
		return fmt.Sprintf("Param(%d)", int(p))
	}

	return paramNames[p]
}

// dimension is one axis of the grid. Each axis declares the kernels it is
// relevant for, so enumeration filters by capability.
type dimension interface {
	param() Param
	size() int
	relevantFor(k KernelType) bool
	assign(p *Params, i int)
	floats() []float64
	validate(checkDomain bool) error
	release()
}

// axis is a dimension over integer or floating-point candidates.
type axis[T constraints.Integer | constraints.Float] struct {
	name    Param
	values  []T
	kernels []KernelType
	set     func(*Params, T)
	check   func(T) error
}

func (a *axis[T]) param() Param { return a.name }

func (a *axis[T]) size() int { return len(a.values) }

func (a *axis[T]) relevantFor(k KernelType) bool {
	// nil means every kernel.
	if a.kernels == nil {
		return true
	}

	for _, kk := range a.kernels {
		if kk == k {
			return true
		}
	}

	return false
}

func (a *axis[T]) assign(p *Params, i int) {
	a.set(p, a.values[i])
}

func (a *axis[T]) floats() []float64 {
	out := make([]float64, len(a.values))
	for i, v := range a.values {
		out[i] = float64(v)
	}

	return out
}

// validate checks that every candidate is finite and, if checkDomain is set,
// within the domain of the parameter.
func (a *axis[T]) validate(checkDomain bool) error {
	for i, v := range a.values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return invalidSpec("%s[%d] is not finite", a.name, i)
		}

		if checkDomain && a.check != nil {
			if err := a.check(v); err != nil {
				return invalidSpec("%s[%d]=%v: %v", a.name, i, v, err)
			}
		}
	}

	return nil
}

func (a *axis[T]) release() {
	a.values = nil
}

// newAxis copies values so the grid owns its candidates exclusively.
func newAxis[T constraints.Integer | constraints.Float](
	name Param,
	values []T,
	kernels []KernelType,
	set func(*Params, T),
	check func(T) error,
) *axis[T] {
	owned := make([]T, len(values))
	copy(owned, values)

	return &axis[T]{
		name:    name,
		values:  owned,
		kernels: kernels,
		set:     set,
		check:   check,
	}
}

// buildDimensions returns the eight axes of a grid in enumeration order.
func buildDimensions(r Ranges) []dimension {
	return []dimension{
		newAxis(ParamLambda, r.Lambdas, nil,
			func(p *Params, v float64) { p.Lambda = v },
			func(v float64) error {
				if v <= 0 {
					return fmt.Errorf("must be positive")
				}
				return nil
			}),
		newAxis(ParamKappa, r.Kappas, nil,
			func(p *Params, v float64) { p.Kappa = v },
			func(v float64) error {
				if v <= -1 {
					return fmt.Errorf("must be greater than -1")
				}
				return nil
			}),
		newAxis(ParamP, r.Ps, nil,
			func(p *Params, v float64) { p.P = v },
			func(v float64) error {
				if v < 1 || v > 2 {
					return fmt.Errorf("must be in [1, 2]")
				}
				return nil
			}),
		newAxis(ParamEpsilon, r.Epsilons, nil,
			func(p *Params, v float64) { p.Epsilon = v },
			func(v float64) error {
				if v <= 0 {
					return fmt.Errorf("must be positive")
				}
				return nil
			}),
		newAxis(ParamWeightIdx, r.WeightIdxs, nil,
			func(p *Params, v int) { p.WeightIdx = v },
			func(v int) error {
				if v != 1 && v != 2 {
					return fmt.Errorf("must be 1 or 2")
				}
				return nil
			}),
		newAxis(ParamGamma, r.Gammas,
			[]KernelType{KernelPoly, KernelRBF, KernelSigmoid},
			func(p *Params, v float64) { p.Gamma = v },
			nil),
		newAxis(ParamCoef, r.Coefs,
			[]KernelType{KernelPoly, KernelSigmoid},
			func(p *Params, v float64) { p.Coef = v },
			nil),
		newAxis(ParamDegree, r.Degrees,
			[]KernelType{KernelPoly},
			func(p *Params, v float64) { p.Degree = v },
			func(v float64) error {
				if v < 1 {
					return fmt.Errorf("must be at least 1")
				}
				return nil
			}),
	}
}
