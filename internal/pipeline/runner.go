package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"solarcli/internal/analysis"
	"solarcli/internal/cleaning"
	"solarcli/internal/config"
	"solarcli/internal/files"
	"solarcli/internal/plot"
	"solarcli/internal/report"
)

// Options controls optional pipeline stages.
type Options struct {
	// SkipPlots disables figure rendering.
	SkipPlots bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID           string
	Processed       []string
	Skipped         map[string]string
	CleaningReports map[string]cleaning.Report
	Summaries       map[string]map[string]analysis.ColumnSummary
	Correlations    map[string][]analysis.Correlation
	Insights        analysis.Insights
	ReportPath      string
	WorkbookPath    string
}

// Runner drives the batch: clean each configured country, analyze the
// cleaned tables, then write reports and figures. Countries are
// processed strictly in configuration order; a failing country is
// skipped and the batch continues.
type Runner struct {
	cfg      *config.Config
	opts     Options
	cleaner  *cleaning.Cleaner
	analyzer *analysis.Analyzer
	renderer *plot.Renderer
	logger   *slog.Logger
	runID    string
}

// New creates a Runner wired from the configuration.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	cleaner := cleaning.New(cleaning.Options{
		ZThreshold:      cfg.Cleaning.ZThreshold,
		Strategy:        cleaning.Strategy(cfg.Cleaning.Strategy),
		ImputeColumns:   cfg.Cleaning.ImputeColumns,
		OutlierColumns:  cfg.Cleaning.OutlierColumns,
		TimestampColumn: cfg.Columns.Timestamp,
	}, logger)
	analyzer := analysis.New(analysis.Options{
		TargetColumn:           cfg.Analysis.TargetColumn,
		CorrelationThreshold:   cfg.Analysis.CorrelationThreshold,
		SignificanceLevel:      cfg.Analysis.SignificanceLevel,
		OperationalThreshold:   cfg.Analysis.OperationalThreshold,
		HighPotentialThreshold: cfg.Analysis.HighPotentialThreshold,
	}, logger)

	return &Runner{
		cfg:      cfg,
		opts:     opts,
		cleaner:  cleaner,
		analyzer: analyzer,
		renderer: plot.NewRenderer(logger),
		logger:   logger,
		runID:    uuid.New().String(),
	}
}

// RunID identifies this Runner's batch in logs and reports.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the batch for the named countries, or for every
// configured country when names is empty. It fails only when no country
// could be processed or a final artifact cannot be written.
func (r *Runner) Run(ctx context.Context, names []string) (*Result, error) {
	countries, err := r.resolve(names)
	if err != nil {
		return nil, err
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:           r.runID,
		Skipped:         make(map[string]string),
		CleaningReports: make(map[string]cleaning.Report),
		Summaries:       make(map[string]map[string]analysis.ColumnSummary),
		Correlations:    make(map[string][]analysis.Correlation),
	}

	r.logger.InfoContext(ctx, "pipeline run starting",
		slog.String("run_id", r.runID),
		slog.Int("countries", len(countries)))

	var data []analysis.CountryData
	for _, country := range countries {
		table, cleanReport, err := r.cleaner.Clean(ctx, r.cfg.RawPath(country), r.cfg.CleanedPath(country), country.Name)
		if err != nil {
			attrs := []any{
				slog.String("country", country.Name),
				slog.String("error", err.Error()),
			}
			if available, derr := files.FindCSVFiles(r.cfg.Paths.DataDir); derr == nil {
				attrs = append(attrs, slog.String("available_files", strings.Join(available, ", ")))
			}
			r.logger.WarnContext(ctx, "country skipped", attrs...)
			result.Skipped[country.Name] = err.Error()
			continue
		}

		result.Processed = append(result.Processed, country.Name)
		result.CleaningReports[country.Name] = cleanReport
		result.Summaries[country.Name] = r.analyzer.Summary(table)

		corrs, err := r.analyzer.Correlations(table, r.cfg.Analysis.TargetColumn, r.cfg.Analysis.CorrelationThreshold)
		if err != nil {
			r.logger.WarnContext(ctx, "correlations skipped",
				slog.String("country", country.Name),
				slog.String("error", err.Error()))
		} else {
			result.Correlations[country.Name] = corrs
		}

		data = append(data, analysis.CountryData{Name: country.Name, Table: table})
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no country could be processed (%d skipped)", len(result.Skipped))
	}

	result.Insights = r.analyzer.GenerateInsights(ctx, data)

	if err := r.writeArtifacts(ctx, result); err != nil {
		return nil, err
	}
	if !r.opts.SkipPlots {
		r.renderFigures(ctx, data)
	}

	r.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("run_id", r.runID),
		slog.Int("processed", len(result.Processed)),
		slog.Int("skipped", len(result.Skipped)),
		slog.String("top_country", result.Insights.TopCountry))

	return result, nil
}

func (r *Runner) resolve(names []string) ([]config.CountryConfig, error) {
	if len(names) == 0 {
		return r.cfg.Countries, nil
	}
	countries := make([]config.CountryConfig, 0, len(names))
	for _, name := range names {
		country, ok := r.cfg.Country(name)
		if !ok {
			return nil, fmt.Errorf("unknown country %q (configured: %v)", name, r.cfg.CountryNames())
		}
		countries = append(countries, country)
	}
	return countries, nil
}

func (r *Runner) writeArtifacts(ctx context.Context, result *Result) error {
	now := time.Now()

	reportPath := filepath.Join(r.cfg.Paths.ReportsDir,
		fmt.Sprintf("final_analysis_report_%s.txt", now.Format("20060102_150405")))
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteTextReport(f, result.Insights, r.runID, now); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	result.ReportPath = reportPath

	workbookPath := filepath.Join(r.cfg.Paths.OutputDir, "analysis_results.xlsx")
	if err := report.WriteWorkbook(workbookPath, result.Insights, result.Summaries); err != nil {
		return err
	}
	result.WorkbookPath = workbookPath

	r.logger.InfoContext(ctx, "artifacts written",
		slog.String("report", reportPath),
		slog.String("workbook", workbookPath))
	return nil
}

// renderFigures draws per-country and cross-country figures. Figure
// failures are logged, never fatal; the numeric artifacts already exist
// by the time rendering starts.
func (r *Runner) renderFigures(ctx context.Context, data []analysis.CountryData) {
	for _, c := range data {
		prefix := plot.OutputPrefix(r.cfg.Paths.OutputDir, c.Name)

		if _, err := r.renderer.TimeSeries(c.Table, r.cfg.Columns.Timestamp, plot.DefaultTimeSeriesMetrics, prefix+"_timeseries"); err != nil {
			r.logger.WarnContext(ctx, "time series rendering failed",
				slog.String("country", c.Name),
				slog.String("error", err.Error()))
		}
		if _, err := r.renderer.Distributions(c.Table, plot.DefaultDistributionMetrics, prefix+"_distribution"); err != nil {
			r.logger.WarnContext(ctx, "distribution rendering failed",
				slog.String("country", c.Name),
				slog.String("error", err.Error()))
		}
		if err := r.renderer.CorrelationHeatmap(c.Table, plot.DefaultHeatmapColumns, prefix+"_heatmap.png"); err != nil {
			r.logger.WarnContext(ctx, "heatmap rendering failed",
				slog.String("country", c.Name),
				slog.String("error", err.Error()))
		}
	}

	boxplotPath := filepath.Join(r.cfg.Paths.OutputDir, "country_boxplots.png")
	if err := r.renderer.CountryBoxplots(data, r.cfg.Analysis.TargetColumn, boxplotPath); err != nil {
		r.logger.WarnContext(ctx, "boxplot rendering failed",
			slog.String("error", err.Error()))
	}
}
