package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"solarcli/internal/analysis"
)

// WriteTextReport renders the final analysis report: recommendation,
// ranked country list and the fixed methodology footer.
func WriteTextReport(w io.Writer, insights analysis.Insights, runID string, now time.Time) error {
	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("SOLAR DATA ANALYSIS - FINAL REPORT\n")
	write("==================================================\n\n")
	write("Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	write("Run ID: %s\n\n", runID)

	if insights.TopCountry != "" {
		write("PRIMARY RECOMMENDATION:\n")
		write("  Recommended Country: %s\n", insights.TopCountry)
		write("  Statistical Significance: %t\n\n", insights.StatisticallySignificant)

		write("COUNTRY RANKINGS:\n")
		for i, entry := range insights.Rankings {
			write("%d. %s (Score: %.2f)\n", i+1, entry.Country, entry.CompositeScore)
			write("   - Average GHI: %.2f W/m²\n", entry.AverageGHI)
			write("   - Consistency: %.2f%%\n", entry.Consistency)
			write("   - High Potential Hours: %d\n\n", entry.HighPotentialHours)
		}
	}

	if tests := insights.StatisticalTests; tests != nil {
		write("STATISTICAL TESTS (%s):\n", tests.Metric)
		write("  ANOVA: F=%.4f, p=%.4f, significant=%t\n",
			tests.ANOVA.Statistic, tests.ANOVA.PValue, tests.ANOVA.Significant)
		write("  Kruskal-Wallis: H=%.4f, p=%.4f, significant=%t\n\n",
			tests.KruskalWallis.Statistic, tests.KruskalWallis.PValue, tests.KruskalWallis.Significant)
	}

	write("METHODOLOGY:\n")
	write("  - Data cleaning: missing value imputation, outlier removal\n")
	write("  - Statistical testing: ANOVA, Kruskal-Wallis\n")
	write("  - Ranking: composite scoring (GHI, consistency, operational hours)\n")

	return err
}

const (
	sheetRankings  = "Rankings"
	sheetMetrics   = "Metrics"
	sheetTests     = "StatisticalTests"
	sheetSummaries = "Summaries"
)

// WriteWorkbook writes insights and per-country column summaries to an
// Excel workbook with Rankings, Metrics, StatisticalTests and Summaries
// sheets.
func WriteWorkbook(path string, insights analysis.Insights, summaries map[string]map[string]analysis.ColumnSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetRankings)
	for _, name := range []string{sheetMetrics, sheetTests, sheetSummaries} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRankings(f, insights.Rankings); err != nil {
		return err
	}
	if err := writeMetrics(f, insights.CountryMetrics); err != nil {
		return err
	}
	if err := writeTests(f, insights.StatisticalTests); err != nil {
		return err
	}
	if err := writeSummaries(f, summaries); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		// Undefined statistics (e.g. stddev of one value) become blank cells.
		if fv, ok := v.(float64); ok && math.IsNaN(fv) {
			v = ""
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeRankings(f *excelize.File, rankings []analysis.RankingEntry) error {
	header := []any{"Rank", "Country", "Composite Score", "Average GHI", "Consistency", "High Potential Hours"}
	if err := setRow(f, sheetRankings, 1, header); err != nil {
		return err
	}
	for i, entry := range rankings {
		row := []any{i + 1, entry.Country, entry.CompositeScore, entry.AverageGHI, entry.Consistency, entry.HighPotentialHours}
		if err := setRow(f, sheetRankings, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(f *excelize.File, metrics map[string]analysis.PotentialMetrics) error {
	header := []any{"Country", "Average GHI", "Std GHI", "CV", "Peak GHI", "Peak 95", "Consistency", "Operational Hours", "High Potential Hours"}
	if err := setRow(f, sheetMetrics, 1, header); err != nil {
		return err
	}

	countries := make([]string, 0, len(metrics))
	for name := range metrics {
		countries = append(countries, name)
	}
	sort.Strings(countries)

	for i, name := range countries {
		m := metrics[name]
		row := []any{name, m.AverageGHI, m.StdGHI, m.CoefficientOfVariation, m.PeakGHI, m.Peak95, m.ConsistencyScore, m.OperationalHours, m.HighPotentialHours}
		if err := setRow(f, sheetMetrics, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTests(f *excelize.File, tests *analysis.ComparisonResult) error {
	header := []any{"Metric", "Test", "Statistic", "P-Value", "Significant"}
	if err := setRow(f, sheetTests, 1, header); err != nil {
		return err
	}
	if tests == nil {
		return nil
	}
	rows := [][]any{
		{tests.Metric, "ANOVA", tests.ANOVA.Statistic, tests.ANOVA.PValue, tests.ANOVA.Significant},
		{tests.Metric, "Kruskal-Wallis", tests.KruskalWallis.Statistic, tests.KruskalWallis.PValue, tests.KruskalWallis.Significant},
	}
	for i, row := range rows {
		if err := setRow(f, sheetTests, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaries(f *excelize.File, summaries map[string]map[string]analysis.ColumnSummary) error {
	header := []any{"Country", "Column", "Count", "Mean", "Median", "Std", "Min", "Max", "Q25", "Q75"}
	if err := setRow(f, sheetSummaries, 1, header); err != nil {
		return err
	}

	countries := make([]string, 0, len(summaries))
	for name := range summaries {
		countries = append(countries, name)
	}
	sort.Strings(countries)

	row := 2
	for _, country := range countries {
		columns := make([]string, 0, len(summaries[country]))
		for col := range summaries[country] {
			columns = append(columns, col)
		}
		sort.Strings(columns)

		for _, col := range columns {
			s := summaries[country][col]
			values := []any{country, col, s.Count, s.Mean, s.Median, s.Std, s.Min, s.Max, s.Q25, s.Q75}
			if err := setRow(f, sheetSummaries, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
