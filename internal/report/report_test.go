package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"solarcli/internal/analysis"
)

func sampleInsights() analysis.Insights {
	return analysis.Insights{
		TopCountry:               "Benin",
		StatisticallySignificant: true,
		CountryMetrics: map[string]analysis.PotentialMetrics{
			"Benin": {AverageGHI: 450.5, StdGHI: 50, CoefficientOfVariation: 11.1, PeakGHI: 980, Peak95: 900, ConsistencyScore: 88.9, OperationalHours: 400, HighPotentialHours: 250},
			"Togo":  {AverageGHI: 300.2, StdGHI: 50, CoefficientOfVariation: 16.7, PeakGHI: 700, Peak95: 650, ConsistencyScore: 83.3, OperationalHours: 380, HighPotentialHours: 120},
		},
		Rankings: []analysis.RankingEntry{
			{Country: "Benin", CompositeScore: 306.71, AverageGHI: 450.5, Consistency: 88.9, HighPotentialHours: 250},
			{Country: "Togo", CompositeScore: 199.02, AverageGHI: 300.2, Consistency: 83.3, HighPotentialHours: 120},
		},
		StatisticalTests: &analysis.ComparisonResult{
			Metric:        "GHI",
			Countries:     []string{"Benin", "Togo"},
			SampleSizes:   map[string]int{"Benin": 500, "Togo": 500},
			ANOVA:         analysis.TestResult{Statistic: 2250.7, PValue: 0.0001, Significant: true},
			KruskalWallis: analysis.TestResult{Statistic: 740.2, PValue: 0.0002, Significant: true},
		},
	}
}

func TestWriteTextReport(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("full report", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteTextReport(&buf, sampleInsights(), "run-123", now)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "SOLAR DATA ANALYSIS - FINAL REPORT")
		assert.Contains(t, out, "Generated: 2025-06-15 10:30:00")
		assert.Contains(t, out, "Run ID: run-123")
		assert.Contains(t, out, "Recommended Country: Benin")
		assert.Contains(t, out, "Statistical Significance: true")
		assert.Contains(t, out, "1. Benin (Score: 306.71)")
		assert.Contains(t, out, "2. Togo (Score: 199.02)")
		assert.Contains(t, out, "Average GHI: 450.50 W/m²")
		assert.Contains(t, out, "High Potential Hours: 250")
		assert.Contains(t, out, "ANOVA: F=2250.7000, p=0.0001, significant=true")
		assert.Contains(t, out, "METHODOLOGY:")
		assert.Contains(t, out, "Ranking: composite scoring (GHI, consistency, operational hours)")
	})

	t.Run("empty insights still carry the methodology footer", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteTextReport(&buf, analysis.Insights{}, "run-456", now)
		require.NoError(t, err)

		out := buf.String()
		assert.NotContains(t, out, "PRIMARY RECOMMENDATION")
		assert.NotContains(t, out, "STATISTICAL TESTS")
		assert.Contains(t, out, "METHODOLOGY:")
	})
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	summaries := map[string]map[string]analysis.ColumnSummary{
		"Benin": {
			"GHI":  {Count: 500, Mean: 450.5, Median: 452, Std: 50, Min: 0, Max: 980, Q25: 410, Q75: 490},
			"Tamb": {Count: 500, Mean: 28.1, Median: 28, Std: 3, Min: 20, Max: 38, Q25: 26, Q75: 30},
		},
	}

	require.NoError(t, WriteWorkbook(path, sampleInsights(), summaries))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Rankings", "Metrics", "StatisticalTests", "Summaries"}, f.GetSheetList())

	top, err := f.GetCellValue("Rankings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Benin", top)

	rank, err := f.GetCellValue("Rankings", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2", rank)

	testName, err := f.GetCellValue("StatisticalTests", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Kruskal-Wallis", testName)

	// Metrics and Summaries rows are sorted by country and column name.
	firstMetric, err := f.GetCellValue("Metrics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Benin", firstMetric)

	firstColumn, err := f.GetCellValue("Summaries", "B2")
	require.NoError(t, err)
	assert.Equal(t, "GHI", firstColumn)
}

func TestWriteWorkbookWithoutTests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	insights := sampleInsights()
	insights.StatisticalTests = nil

	require.NoError(t, WriteWorkbook(path, insights, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("StatisticalTests", "A2")
	require.NoError(t, err)
	assert.Empty(t, value, "header only when no comparison ran")
}
