package gridsearch

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//////
// Helper functions.
//////

// mean returns the arithmetic mean of values, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return stat.Mean(values, nil)
}

// spread measures the dispersion of values. A single value has no spread.
func spread(measure SpreadMeasure, values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	switch measure {
	case SpreadVariance:
		_, v := stat.PopMeanVariance(values, nil)
		return v
	case SpreadRange:
		return floats.Max(values) - floats.Min(values)
	default:
		_, sd := stat.PopMeanStdDev(values, nil)
		return sd
	}
}

// resolveSeed replaces a zero seed with a time-derived one.
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}

	return time.Now().UnixNano()
}
