package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"solarcli/internal/dataset"
	"solarcli/internal/stats"
)

// Strategy selects how missing values are imputed.
type Strategy string

const (
	StrategyMedian Strategy = "median"
	StrategyMean   Strategy = "mean"
)

// Options configures a Cleaner.
type Options struct {
	ZThreshold      float64
	Strategy        Strategy
	ImputeColumns   []string
	OutlierColumns  []string
	TimestampColumn string
}

// DefaultOptions returns the cleaning parameters used by the standard
// pipeline: median imputation over the irradiance and environmental
// columns and Z-score outlier removal at threshold 3.
func DefaultOptions() Options {
	return Options{
		ZThreshold:      3,
		Strategy:        StrategyMedian,
		ImputeColumns:   []string{"GHI", "DNI", "DHI", "Tamb", "WS", "RH", "BP"},
		OutlierColumns:  []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust", "Tamb"},
		TimestampColumn: "Timestamp",
	}
}

// Report records what a single Clean invocation did to a dataset. It is
// built incrementally during the run and returned alongside the cleaned
// table; callers treat it as read-only afterwards.
type Report struct {
	Country          string
	InitialRows      int
	FinalRows        int
	Imputed          map[string]int
	SkippedColumns   []string // impute columns with no data at all
	OutliersDetected map[string]int
	OutliersRemoved  int
	SkippedSteps     []string
}

// Cleaner runs the cleaning pipeline: impute missing values, detect and
// remove outliers, derive calendar features. All state is scoped to a single
// Clean invocation; a Cleaner can be reused across datasets.
type Cleaner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Cleaner with the given options. Zero-valued option fields
// fall back to DefaultOptions.
func New(opts Options, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if opts.ZThreshold <= 0 {
		opts.ZThreshold = defaults.ZThreshold
	}
	if opts.Strategy == "" {
		opts.Strategy = defaults.Strategy
	}
	if opts.ImputeColumns == nil {
		opts.ImputeColumns = defaults.ImputeColumns
	}
	if opts.OutlierColumns == nil {
		opts.OutlierColumns = defaults.OutlierColumns
	}
	if opts.TimestampColumn == "" {
		opts.TimestampColumn = defaults.TimestampColumn
	}
	return &Cleaner{opts: opts, logger: logger}
}

// ImputeMissing replaces missing entries in each named column with the
// column's median (or mean) computed over the non-missing values at the time
// of imputation. It returns the count of values replaced per column and the
// columns skipped because they held no data at all; absent columns are
// ignored.
func (c *Cleaner) ImputeMissing(ctx context.Context, t *dataset.Table, columns []string) (map[string]int, []string, error) {
	imputed := make(map[string]int)
	var skipped []string

	for _, col := range columns {
		values, ok := t.Column(col)
		if !ok {
			continue
		}

		nonMissing := stats.DropNaN(values)
		missing := len(values) - len(nonMissing)
		if missing == 0 {
			continue
		}
		if len(nonMissing) == 0 {
			// Median of nothing is undefined; never impute NaN or a
			// fabricated constant.
			skipped = append(skipped, col)
			c.logger.WarnContext(ctx, "column has no data, skipping imputation",
				slog.String("column", col))
			continue
		}

		var fill float64
		switch c.opts.Strategy {
		case StrategyMean:
			fill = stats.Mean(nonMissing)
		default:
			fill = stats.Median(nonMissing)
		}

		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = fill
			}
		}
		if err := t.SetFloats(col, values); err != nil {
			return nil, nil, fmt.Errorf("impute %s: %w", col, err)
		}
		imputed[col] = missing

		c.logger.InfoContext(ctx, "imputed missing values",
			slog.String("column", col),
			slog.Int("count", missing),
			slog.String("strategy", string(c.opts.Strategy)))
	}

	return imputed, skipped, nil
}

// DetectOutliers counts, per named column, the rows whose absolute Z-score
// exceeds the threshold. The table is not modified. Zero-variance columns
// report zero outliers. Absent columns are ignored.
func (c *Cleaner) DetectOutliers(ctx context.Context, t *dataset.Table, columns []string) map[string]int {
	detected := make(map[string]int)

	for _, col := range columns {
		values, ok := t.Column(col)
		if !ok {
			continue
		}

		count := 0
		for _, z := range stats.ZScores(values) {
			if !math.IsNaN(z) && math.Abs(z) > c.opts.ZThreshold {
				count++
			}
		}
		detected[col] = count

		if count > 0 {
			c.logger.InfoContext(ctx, "detected outliers",
				slog.String("column", col),
				slog.Int("count", count),
				slog.Float64("z_threshold", c.opts.ZThreshold))
		}
	}

	return detected
}

// RemoveOutliers removes rows flagged as outliers in any of the named
// columns. Columns are processed sequentially and each removal narrows the
// table before the next column's Z-scores are computed, so column order
// affects which rows survive. This sequential narrowing is part of the
// cleaning contract and must not be collapsed into a single combined pass.
// It returns the narrowed table and the total number of rows removed.
func (c *Cleaner) RemoveOutliers(ctx context.Context, t *dataset.Table, columns []string) (*dataset.Table, int, error) {
	removed := 0

	for _, col := range columns {
		values, ok := t.Column(col)
		if !ok {
			continue
		}

		keep := make([]int, 0, len(values))
		for i, z := range stats.ZScores(values) {
			// Missing values carry NaN scores and are never flagged.
			if !math.IsNaN(z) && math.Abs(z) > c.opts.ZThreshold {
				continue
			}
			keep = append(keep, i)
		}
		if len(keep) == t.Nrow() {
			continue
		}

		narrowed, err := t.KeepRows(keep)
		if err != nil {
			return nil, 0, fmt.Errorf("remove outliers in %s: %w", col, err)
		}
		removed += t.Nrow() - narrowed.Nrow()
		t = narrowed
	}

	if removed > 0 {
		c.logger.InfoContext(ctx, "removed outlier rows",
			slog.Int("rows", removed),
			slog.Float64("z_threshold", c.opts.ZThreshold))
	}
	return t, removed, nil
}

// timestampLayouts lists the accepted timestamp formats, most specific
// first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s against the accepted timestamp layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DeriveTimeFeatures parses the timestamp column and appends Hour (0-23),
// Month (1-12), DayOfWeek (0=Monday .. 6=Sunday) and Season columns. The
// season index is ((month % 12) + 3) / 3, mapping Dec-Feb to 1, Mar-May
// to 2, Jun-Aug to 3 and Sep-Nov to 4. It is a no-op when the timestamp
// column is absent; an unparseable timestamp is an input error.
func (c *Cleaner) DeriveTimeFeatures(ctx context.Context, t *dataset.Table) (bool, error) {
	raw, ok := t.Strings(c.opts.TimestampColumn)
	if !ok {
		return false, nil
	}

	hours := make([]int, len(raw))
	months := make([]int, len(raw))
	daysOfWeek := make([]int, len(raw))
	seasons := make([]int, len(raw))

	for i, s := range raw {
		ts, err := ParseTimestamp(s)
		if err != nil {
			return false, fmt.Errorf("row %d: %w", i, err)
		}
		month := int(ts.Month())
		hours[i] = ts.Hour()
		months[i] = month
		daysOfWeek[i] = (int(ts.Weekday()) + 6) % 7
		seasons[i] = (month%12 + 3) / 3
	}

	for _, set := range []struct {
		name   string
		values []int
	}{
		{"Hour", hours},
		{"Month", months},
		{"DayOfWeek", daysOfWeek},
		{"Season", seasons},
	} {
		if err := t.SetInts(set.name, set.values); err != nil {
			return false, err
		}
	}

	c.logger.InfoContext(ctx, "derived calendar features",
		slog.String("column", c.opts.TimestampColumn))
	return true, nil
}

// Clean runs the full pipeline on the CSV file at path: load, impute,
// detect (non-destructive), remove (destructive), derive calendar features.
// The cleaned table is exported to exportPath when it is non-empty. Missing
// optional columns are skipped, never errors; an unreadable or unparseable
// input fails the whole run.
func (c *Cleaner) Clean(ctx context.Context, path, exportPath, country string) (*dataset.Table, Report, error) {
	report := Report{Country: country}

	t, err := dataset.LoadFile(path, c.opts.TimestampColumn)
	if err != nil {
		return nil, report, err
	}
	report.InitialRows = t.Nrow()

	c.logger.InfoContext(ctx, "loaded dataset",
		slog.String("country", country),
		slog.String("path", path),
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", len(t.Names())))

	report.Imputed, report.SkippedColumns, err = c.ImputeMissing(ctx, t, c.opts.ImputeColumns)
	if err != nil {
		return nil, report, err
	}

	report.OutliersDetected = c.DetectOutliers(ctx, t, c.opts.OutlierColumns)

	t, report.OutliersRemoved, err = c.RemoveOutliers(ctx, t, c.opts.OutlierColumns)
	if err != nil {
		return nil, report, err
	}

	derived, err := c.DeriveTimeFeatures(ctx, t)
	if err != nil {
		return nil, report, fmt.Errorf("derive time features: %w", err)
	}
	if !derived {
		report.SkippedSteps = append(report.SkippedSteps, "time_features")
	}

	report.FinalRows = t.Nrow()

	if exportPath != "" {
		if err := t.SaveCSV(exportPath); err != nil {
			return nil, report, fmt.Errorf("export cleaned data: %w", err)
		}
		c.logger.InfoContext(ctx, "exported cleaned dataset",
			slog.String("country", country),
			slog.String("path", exportPath))
	}

	c.logger.InfoContext(ctx, "cleaning complete",
		slog.String("country", country),
		slog.Int("initial_rows", report.InitialRows),
		slog.Int("final_rows", report.FinalRows),
		slog.Int("rows_removed", report.OutliersRemoved))

	return t, report, nil
}
