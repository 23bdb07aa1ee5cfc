package plot

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"solarcli/internal/analysis"
	"solarcli/internal/cleaning"
	"solarcli/internal/dataset"
	"solarcli/internal/stats"
)

// metricUnits maps column names to axis labels.
var metricUnits = map[string]string{
	"GHI":  "GHI (W/m²)",
	"DNI":  "DNI (W/m²)",
	"DHI":  "DHI (W/m²)",
	"Tamb": "Temperature (°C)",
	"RH":   "Relative Humidity (%)",
	"WS":   "Wind Speed (m/s)",
	"BP":   "Pressure (hPa)",
}

func metricUnit(metric string) string {
	if u, ok := metricUnits[metric]; ok {
		return u
	}
	return metric
}

// Renderer draws the analysis figures as PNG files. Operations that
// reference columns absent from a table skip them.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// metricPath derives the per-metric output file from a prefix, e.g.
// "out/benin" and "GHI" yield "out/benin_ghi.png".
func metricPath(prefix, metric string) string {
	return fmt.Sprintf("%s_%s.png", prefix, strings.ToLower(metric))
}

// TimeSeries renders one line chart per metric against the parsed
// timestamp column, writing <prefix>_<metric>.png files. It returns the
// paths written.
func (r *Renderer) TimeSeries(t *dataset.Table, timestampColumn string, metrics []string, prefix string) ([]string, error) {
	raw, ok := t.Strings(timestampColumn)
	if !ok {
		r.logger.Warn("time series skipped, no timestamp column",
			slog.String("column", timestampColumn))
		return nil, nil
	}

	times := make([]float64, len(raw))
	for i, s := range raw {
		ts, err := cleaning.ParseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("time series: row %d: %w", i, err)
		}
		times[i] = float64(ts.Unix())
	}

	var written []string
	for _, metric := range metrics {
		values, ok := t.Column(metric)
		if !ok {
			continue
		}

		pts := make(plotter.XYs, 0, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: times[i], Y: v})
		}
		if len(pts) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s Over Time", metric)
		p.X.Label.Text = "Time"
		p.Y.Label.Text = metricUnit(metric)
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("time series %s: %w", metric, err)
		}
		p.Add(line)

		path := metricPath(prefix, metric)
		if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Distributions renders a histogram per metric, writing
// <prefix>_<metric>.png files. It returns the paths written.
func (r *Renderer) Distributions(t *dataset.Table, metrics []string, prefix string) ([]string, error) {
	var written []string
	for _, metric := range metrics {
		values := t.NonMissing(metric)
		if len(values) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s Distribution", metric)
		p.X.Label.Text = metricUnit(metric)
		p.Y.Label.Text = "Frequency"

		hist, err := plotter.NewHist(plotter.Values(values), 50)
		if err != nil {
			return nil, fmt.Errorf("distribution %s: %w", metric, err)
		}
		p.Add(hist)

		path := metricPath(prefix, metric)
		if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// corrGrid adapts a correlation matrix to the heat map grid interface.
type corrGrid struct {
	columns []string
	matrix  [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.columns), len(g.columns) }
func (g corrGrid) Z(c, r int) float64 { return g.matrix[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// columnTicks labels integer grid positions with column names.
type columnTicks []string

func (t columnTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, name := range t {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: name})
	}
	return ticks
}

// CorrelationHeatmap renders the pairwise Pearson correlation matrix of
// the named columns. Absent columns are dropped; fewer than two present
// columns skips the figure.
func (r *Renderer) CorrelationHeatmap(t *dataset.Table, columns []string, path string) error {
	var present []string
	for _, col := range columns {
		if t.Has(col) {
			present = append(present, col)
		}
	}
	if len(present) < 2 {
		r.logger.Warn("correlation heatmap skipped, not enough columns",
			slog.Int("present", len(present)))
		return nil
	}

	matrix := make([][]float64, len(present))
	for i := range present {
		matrix[i] = make([]float64, len(present))
		xi, _ := t.Column(present[i])
		for j := range present {
			xj, _ := t.Column(present[j])
			matrix[i][j] = stats.Pearson(xi, xj)
		}
	}

	p := plot.New()
	p.Title.Text = "Correlation Heatmap - Solar Parameters"
	p.X.Tick.Marker = columnTicks(present)
	p.Y.Tick.Marker = columnTicks(present)

	heat := plotter.NewHeatMap(corrGrid{columns: present, matrix: matrix}, palette.Heat(12, 1))
	p.Add(heat)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// CountryBoxplots renders side-by-side boxplots of metric across
// countries. Countries without the metric are skipped; an empty figure
// is never written.
func (r *Renderer) CountryBoxplots(countries []analysis.CountryData, metric, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Comparison Across Countries", metric)
	p.Y.Label.Text = metricUnit(metric)

	var names []string
	for _, c := range countries {
		values := c.Table.NonMissing(metric)
		if len(values) == 0 {
			r.logger.Warn("country skipped in boxplot",
				slog.String("country", c.Name),
				slog.String("metric", metric))
			continue
		}

		box, err := plotter.NewBoxPlot(vg.Points(40), float64(len(names)), plotter.Values(values))
		if err != nil {
			return fmt.Errorf("boxplot %s: %w", c.Name, err)
		}
		p.Add(box)
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		r.logger.Warn("boxplot skipped, no usable countries",
			slog.String("metric", metric))
		return nil
	}
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// DefaultTimeSeriesMetrics and friends mirror the standard figure sets.
var (
	DefaultTimeSeriesMetrics   = []string{"GHI", "Tamb", "DNI", "WS"}
	DefaultDistributionMetrics = []string{"GHI", "Tamb", "RH", "WS"}
	DefaultHeatmapColumns      = []string{"GHI", "DNI", "DHI", "ModA", "ModB", "Tamb", "RH", "WS", "BP"}
)

// OutputPrefix joins dir and a lowercased country name for per-country
// figure files.
func OutputPrefix(dir, country string) string {
	return filepath.Join(dir, strings.ToLower(country))
}
