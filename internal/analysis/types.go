package analysis

import "solarcli/internal/dataset"

// CountryData pairs a country name with its cleaned observation table.
// Callers pass an ordered slice, not a map, so ranking tie-breaks and
// result ordering are deterministic across runs.
type CountryData struct {
	Name  string
	Table *dataset.Table
}

// ColumnSummary holds descriptive statistics for one numeric column,
// computed over non-missing values only.
type ColumnSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Correlation is one column's Pearson correlation with the target column.
type Correlation struct {
	Column string  `json:"column"`
	R      float64 `json:"r"`
}

// PotentialMetrics are the solar-potential scalars derived from a
// country's irradiance column.
type PotentialMetrics struct {
	AverageGHI             float64 `json:"average_ghi"`
	StdGHI                 float64 `json:"std_ghi"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	PeakGHI                float64 `json:"peak_ghi"`
	Peak95                 float64 `json:"peak_95"`
	ConsistencyScore       float64 `json:"consistency_score"`
	OperationalHours       int     `json:"operational_hours"`
	HighPotentialHours     int     `json:"high_potential_hours"`
}

// TestResult is the outcome of a single hypothesis test.
type TestResult struct {
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// ComparisonResult bundles the cross-country tests for one metric.
type ComparisonResult struct {
	Metric        string         `json:"metric"`
	Countries     []string       `json:"countries"`
	SampleSizes   map[string]int `json:"sample_sizes"`
	ANOVA         TestResult     `json:"anova"`
	KruskalWallis TestResult     `json:"kruskal_wallis"`
}

// RankingEntry is one country's position in the composite ranking,
// together with the metrics the score was derived from.
type RankingEntry struct {
	Country            string           `json:"country"`
	CompositeScore     float64          `json:"composite_score"`
	AverageGHI         float64          `json:"average_ghi"`
	Consistency        float64          `json:"consistency"`
	HighPotentialHours int              `json:"high_potential_hours"`
	Metrics            PotentialMetrics `json:"metrics"`
}

// Insights is the final analysis artifact consumed by the report and
// plot layers. StatisticalTests is nil when the cross-country comparison
// could not run.
type Insights struct {
	TopCountry               string                      `json:"top_country"`
	StatisticallySignificant bool                        `json:"statistically_significant"`
	CountryMetrics           map[string]PotentialMetrics `json:"country_metrics"`
	Rankings                 []RankingEntry              `json:"rankings"`
	StatisticalTests         *ComparisonResult           `json:"statistical_tests,omitempty"`
}
