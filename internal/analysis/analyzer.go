package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"solarcli/internal/dataset"
	"solarcli/internal/stats"
)

// Composite score weights. The formula is fixed; changing a weight
// changes every historical ranking.
const (
	weightAverageGHI  = 0.4
	weightConsistency = 0.3
	weightHighHours   = 0.2
	weightPeak95      = 0.1
)

// Options configures an Analyzer.
type Options struct {
	// TargetColumn is the irradiance column driving potential metrics,
	// correlations and cross-country comparison.
	TargetColumn string

	// CorrelationThreshold is the minimum |r| for a column to appear in
	// correlation results.
	CorrelationThreshold float64

	// SignificanceLevel is the p-value cutoff for hypothesis tests.
	SignificanceLevel float64

	// OperationalThreshold and HighPotentialThreshold are the W/m2 cutoffs
	// for the operational-hour and high-potential-hour counts.
	OperationalThreshold   float64
	HighPotentialThreshold float64
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		TargetColumn:           "GHI",
		CorrelationThreshold:   0.3,
		SignificanceLevel:      0.05,
		OperationalThreshold:   50,
		HighPotentialThreshold: 400,
	}
}

// Analyzer computes descriptive statistics, solar-potential metrics,
// cross-country comparisons and the composite ranking. All methods are
// pure functions of their inputs.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Analyzer. Zero-valued option fields fall back to
// DefaultOptions.
func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if opts.TargetColumn == "" {
		opts.TargetColumn = defaults.TargetColumn
	}
	if opts.CorrelationThreshold <= 0 {
		opts.CorrelationThreshold = defaults.CorrelationThreshold
	}
	if opts.SignificanceLevel <= 0 {
		opts.SignificanceLevel = defaults.SignificanceLevel
	}
	if opts.OperationalThreshold <= 0 {
		opts.OperationalThreshold = defaults.OperationalThreshold
	}
	if opts.HighPotentialThreshold <= 0 {
		opts.HighPotentialThreshold = defaults.HighPotentialThreshold
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Summary computes descriptive statistics for every numeric column,
// keyed by column name. Missing values are dropped per column; a column
// with no data reports Count 0 and NaN statistics.
func (a *Analyzer) Summary(t *dataset.Table) map[string]ColumnSummary {
	out := make(map[string]ColumnSummary)

	for _, col := range t.NumericColumns() {
		values := t.NonMissing(col)
		s := ColumnSummary{
			Count:  len(values),
			Mean:   stats.Mean(values),
			Median: stats.Median(values),
			Std:    stats.StdDev(values),
			Q25:    stats.Percentile(values, 25),
			Q75:    stats.Percentile(values, 75),
			Min:    math.NaN(),
			Max:    math.NaN(),
		}
		if len(values) > 0 {
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
		}
		out[col] = s
	}

	return out
}

// Correlations returns the numeric columns whose pairwise-complete
// Pearson correlation with target has absolute value at or above
// threshold, sorted by r descending. The target itself is excluded.
func (a *Analyzer) Correlations(t *dataset.Table, target string, threshold float64) ([]Correlation, error) {
	targetValues, ok := t.Column(target)
	if !ok {
		return nil, fmt.Errorf("correlations with %s: %w", target, ErrColumnMissing)
	}

	var out []Correlation
	for _, col := range t.NumericColumns() {
		if col == target {
			continue
		}
		values, ok := t.Column(col)
		if !ok {
			continue
		}
		r := stats.Pearson(targetValues, values)
		if math.IsNaN(r) || math.Abs(r) < threshold {
			continue
		}
		out = append(out, Correlation{Column: col, R: r})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].R > out[j].R })
	return out, nil
}

// SolarPotentialMetrics derives the potential scalars from the target
// irradiance column. Missing values are dropped first; an absent or
// fully-missing column is ErrColumnMissing, never a zeroed result.
func (a *Analyzer) SolarPotentialMetrics(t *dataset.Table) (PotentialMetrics, error) {
	raw, ok := t.Column(a.opts.TargetColumn)
	if !ok {
		return PotentialMetrics{}, fmt.Errorf("potential metrics: %s: %w", a.opts.TargetColumn, ErrColumnMissing)
	}
	values := stats.DropNaN(raw)
	if len(values) == 0 {
		return PotentialMetrics{}, fmt.Errorf("potential metrics: %s: %w", a.opts.TargetColumn, ErrColumnMissing)
	}

	mean := stats.Mean(values)
	std := stats.StdDev(values)
	if math.IsNaN(std) {
		std = 0
	}

	cv := 0.0
	if mean != 0 {
		cv = std / mean * 100
	}

	m := PotentialMetrics{
		AverageGHI:             mean,
		StdGHI:                 std,
		CoefficientOfVariation: cv,
		PeakGHI:                floats.Max(values),
		Peak95:                 stats.Percentile(values, 95),
		ConsistencyScore:       100 - cv,
	}
	for _, v := range values {
		if v > a.opts.OperationalThreshold {
			m.OperationalHours++
		}
		if v > a.opts.HighPotentialThreshold {
			m.HighPotentialHours++
		}
	}
	return m, nil
}

// CompareCountries runs one-way ANOVA and Kruskal-Wallis across the
// countries' samples of metric. A country contributes a sample when the
// column is present with at least one non-missing value; fewer than two
// such samples is ErrInsufficientData.
func (a *Analyzer) CompareCountries(ctx context.Context, countries []CountryData, metric string) (*ComparisonResult, error) {
	result := &ComparisonResult{
		Metric:      metric,
		SampleSizes: make(map[string]int),
	}

	var groups [][]float64
	for _, c := range countries {
		values := c.Table.NonMissing(metric)
		if len(values) == 0 {
			a.logger.WarnContext(ctx, "country excluded from comparison",
				slog.String("country", c.Name),
				slog.String("metric", metric))
			continue
		}
		result.Countries = append(result.Countries, c.Name)
		result.SampleSizes[c.Name] = len(values)
		groups = append(groups, values)
	}
	if len(groups) < 2 {
		return nil, fmt.Errorf("compare %s across %d usable countries: %w", metric, len(groups), ErrInsufficientData)
	}

	f, fp, err := stats.OneWayANOVA(groups)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", metric, ErrInsufficientData)
	}
	result.ANOVA = TestResult{Statistic: f, PValue: fp, Significant: fp < a.opts.SignificanceLevel}

	h, hp, err := stats.KruskalWallis(groups)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", metric, ErrInsufficientData)
	}
	result.KruskalWallis = TestResult{Statistic: h, PValue: hp, Significant: hp < a.opts.SignificanceLevel}

	a.logger.InfoContext(ctx, "cross-country comparison",
		slog.String("metric", metric),
		slog.Int("countries", len(groups)),
		slog.Float64("anova_f", f),
		slog.Float64("anova_p", fp),
		slog.Float64("kruskal_h", h),
		slog.Float64("kruskal_p", hp))

	return result, nil
}

// RankCountries scores each country and returns entries sorted by
// composite score descending. Countries without usable irradiance data
// are excluded rather than scored as zero; ties keep input order.
func (a *Analyzer) RankCountries(ctx context.Context, countries []CountryData) []RankingEntry {
	entries := make([]RankingEntry, 0, len(countries))

	for _, c := range countries {
		m, err := a.SolarPotentialMetrics(c.Table)
		if err != nil {
			a.logger.WarnContext(ctx, "country excluded from ranking",
				slog.String("country", c.Name),
				slog.String("error", err.Error()))
			continue
		}

		score := weightAverageGHI*m.AverageGHI +
			weightConsistency*m.ConsistencyScore +
			weightHighHours*float64(m.HighPotentialHours) +
			weightPeak95*m.Peak95

		entries = append(entries, RankingEntry{
			Country:            c.Name,
			CompositeScore:     score,
			AverageGHI:         m.AverageGHI,
			Consistency:        m.ConsistencyScore,
			HighPotentialHours: m.HighPotentialHours,
			Metrics:            m,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompositeScore > entries[j].CompositeScore
	})
	return entries
}

// GenerateInsights combines metrics, ranking and the cross-country
// comparison into the artifact consumed by reporting. A comparison that
// cannot run leaves StatisticalTests nil and significance false.
func (a *Analyzer) GenerateInsights(ctx context.Context, countries []CountryData) Insights {
	insights := Insights{
		CountryMetrics: make(map[string]PotentialMetrics),
	}

	for _, c := range countries {
		m, err := a.SolarPotentialMetrics(c.Table)
		if err != nil {
			continue
		}
		insights.CountryMetrics[c.Name] = m
	}

	insights.Rankings = a.RankCountries(ctx, countries)
	if len(insights.Rankings) > 0 {
		insights.TopCountry = insights.Rankings[0].Country
	}

	comparison, err := a.CompareCountries(ctx, countries, a.opts.TargetColumn)
	if err != nil {
		a.logger.WarnContext(ctx, "cross-country comparison skipped",
			slog.String("error", err.Error()))
	} else {
		insights.StatisticalTests = comparison
		insights.StatisticallySignificant = comparison.ANOVA.Significant
	}

	a.logger.InfoContext(ctx, "insights generated",
		slog.String("top_country", insights.TopCountry),
		slog.Int("ranked", len(insights.Rankings)),
		slog.Bool("significant", insights.StatisticallySignificant))

	return insights
}
