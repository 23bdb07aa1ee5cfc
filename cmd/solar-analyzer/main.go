package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"solarcli/internal/analysis"
	"solarcli/internal/config"
	"solarcli/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	dataDir := flag.String("data", "", "data directory (overrides configuration)")
	outputDir := flag.String("out", "", "output directory for figures and workbook (overrides configuration)")
	reportsDir := flag.String("reports", "", "reports directory (overrides configuration)")
	country := flag.String("country", "", "process a single country by name")
	all := flag.Bool("all", false, "process all configured countries (default when -country is absent)")
	skipPlots := flag.Bool("skip-plots", false, "skip figure rendering")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *reportsDir != "" {
		cfg.Paths.ReportsDir = *reportsDir
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	var countries []string
	if *country != "" {
		if *all {
			slog.Error("-country and -all are mutually exclusive")
			os.Exit(1)
		}
		countries = []string{*country}
	}

	runner := pipeline.New(cfg, logger, pipeline.Options{SkipPlots: *skipPlots})
	slog.Info("Starting solar analysis pipeline",
		"run_id", runner.RunID(),
		"data_dir", cfg.Paths.DataDir)

	result, err := runner.Run(context.Background(), countries)
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	for name, reason := range result.Skipped {
		slog.Warn("Country skipped", "country", name, "reason", reason)
	}
	slog.Info("Pipeline run complete",
		"processed", len(result.Processed),
		"skipped", len(result.Skipped),
		"report", result.ReportPath,
		"workbook", result.WorkbookPath)

	printRankings(result.Insights)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func printRankings(insights analysis.Insights) {
	if len(insights.Rankings) == 0 {
		fmt.Println("\nNo country could be ranked.")
		return
	}

	fmt.Println("\n=== SOLAR POTENTIAL RANKING ===")
	fmt.Println("Rank | Country        | Score   | Avg GHI | Consistency | High-Potential Hours")
	fmt.Println("-----|----------------|---------|---------|-------------|---------------------")
	for i, entry := range insights.Rankings {
		fmt.Printf("%4d | %-14s | %7.2f | %7.2f | %10.2f%% | %20d\n",
			i+1, entry.Country, entry.CompositeScore, entry.AverageGHI,
			entry.Consistency, entry.HighPotentialHours)
	}

	fmt.Printf("\nRecommended country: %s\n", insights.TopCountry)
	if tests := insights.StatisticalTests; tests != nil {
		fmt.Printf("Cross-country differences significant: %t (ANOVA p=%.4f)\n",
			insights.StatisticallySignificant, tests.ANOVA.PValue)
	}
}
