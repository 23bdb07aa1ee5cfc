package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DropNaN returns a copy of values with NaN entries removed.
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean of values. Returns NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample standard deviation (÷(n−1)), matching the
// convention used for descriptive statistics. Returns NaN for fewer than
// two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// PopMeanStdDev returns the mean and population standard deviation (÷n).
// Z-scores use the population form. Returns (NaN, NaN) for an empty slice.
func PopMeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(values, nil)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// Percentile returns the p-th percentile (0 <= p <= 100) of values using
// linear interpolation between order statistics. Returns NaN for an empty
// slice.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return values[0]
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	h := (float64(n) - 1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Median returns the 50th percentile of values.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// ZScores returns the Z-score of every value, computed against the mean and
// population standard deviation of the non-missing (non-NaN) entries. NaN
// inputs yield NaN outputs. A zero-variance input yields all-zero scores, so
// a constant column never produces outliers.
func ZScores(values []float64) []float64 {
	mean, stddev := PopMeanStdDev(DropNaN(values))

	scores := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			scores[i] = math.NaN()
		case stddev == 0 || math.IsNaN(stddev):
			scores[i] = 0
		default:
			scores[i] = (v - mean) / stddev
		}
	}
	return scores
}

// Pearson returns the Pearson correlation coefficient between x and y,
// considering only index pairs where both values are non-NaN. Returns NaN
// when fewer than two complete pairs exist.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}
	var xs, ys []float64
	for i := range x {
		if !math.IsNaN(x[i]) && !math.IsNaN(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
