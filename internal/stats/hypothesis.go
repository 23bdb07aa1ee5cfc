package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// OneWayANOVA performs a one-way analysis of variance across the given
// groups and returns the F statistic and its p-value.
//
// Degenerate inputs are defined rather than faulted: when the between-group
// sum of squares is zero (identical group means) the result is F=0, p=1;
// when the within-group sum of squares is zero but the means differ the
// result is F=+Inf, p=0.
func OneWayANOVA(groups [][]float64) (f, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, fmt.Errorf("one-way ANOVA requires at least 2 groups, got %d", k)
	}

	var total float64
	var n int
	for i, g := range groups {
		if len(g) == 0 {
			return 0, 0, fmt.Errorf("group %d is empty", i)
		}
		for _, v := range g {
			total += v
		}
		n += len(g)
	}
	if n <= k {
		return 0, 0, fmt.Errorf("insufficient observations: %d values across %d groups", n, k)
	}
	grand := total / float64(n)

	var ssb, ssw float64
	for _, g := range groups {
		m := Mean(g)
		d := m - grand
		ssb += float64(len(g)) * d * d
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}

	if ssb == 0 {
		return 0, 1, nil
	}
	if ssw == 0 {
		return math.Inf(1), 0, nil
	}

	dfb := float64(k - 1)
	dfw := float64(n - k)
	f = (ssb / dfb) / (ssw / dfw)
	p = distuv.F{D1: dfb, D2: dfw}.Survival(f)
	return f, p, nil
}

// KruskalWallis performs the Kruskal-Wallis H test across the given groups
// and returns the tie-corrected H statistic and its chi-squared p-value with
// k-1 degrees of freedom.
//
// When every observation is tied (all values identical) the statistic is
// undefined; the result is defined as H=0, p=1.
func KruskalWallis(groups [][]float64) (h, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, fmt.Errorf("Kruskal-Wallis requires at least 2 groups, got %d", k)
	}

	type obs struct {
		value float64
		group int
	}
	var all []obs
	for i, g := range groups {
		if len(g) == 0 {
			return 0, 0, fmt.Errorf("group %d is empty", i)
		}
		for _, v := range g {
			all = append(all, obs{value: v, group: i})
		}
	}
	n := len(all)
	if n <= k {
		return 0, 0, fmt.Errorf("insufficient observations: %d values across %d groups", n, k)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].value < all[j].value })

	// Average ranks for ties, accumulating the tie-correction term Σ(t³−t).
	rankSums := make([]float64, k)
	var tieTerm float64
	for i := 0; i < n; {
		j := i
		for j < n && all[j].value == all[i].value {
			j++
		}
		t := j - i
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for m := i; m < j; m++ {
			rankSums[all[m].group] += avgRank
		}
		if t > 1 {
			tt := float64(t)
			tieTerm += tt*tt*tt - tt
		}
		i = j
	}

	nf := float64(n)
	h = -3 * (nf + 1)
	for i, g := range groups {
		h += 12 / (nf * (nf + 1)) * rankSums[i] * rankSums[i] / float64(len(g))
	}

	correction := 1 - tieTerm/(nf*nf*nf-nf)
	if correction == 0 {
		return 0, 1, nil
	}
	h /= correction

	p = distuv.ChiSquared{K: float64(k - 1)}.Survival(h)
	return h, p, nil
}
