package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarcli/internal/analysis"
	"solarcli/internal/dataset"
)

func sampleTable(t *testing.T, n int) *dataset.Table {
	t.Helper()
	var b strings.Builder
	b.WriteString("Timestamp,GHI,Tamb,WS\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2023-03-01 %02d:00,%d,%d,%d\n", i%24, 300+i%200, 20+i%10, 1+i%5)
	}
	tbl, err := dataset.Load(strings.NewReader(b.String()), "Timestamp")
	require.NoError(t, err)
	return tbl
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected figure at %s", path)
	assert.Positive(t, info.Size())
}

func TestTimeSeries(t *testing.T) {
	r := NewRenderer(nil)
	dir := t.TempDir()

	t.Run("renders present metrics only", func(t *testing.T) {
		written, err := r.TimeSeries(sampleTable(t, 48), "Timestamp", []string{"GHI", "Tamb", "DNI"}, filepath.Join(dir, "benin"))
		require.NoError(t, err)
		require.Len(t, written, 2, "absent column skipped")
		assertPNG(t, filepath.Join(dir, "benin_ghi.png"))
		assertPNG(t, filepath.Join(dir, "benin_tamb.png"))
	})

	t.Run("no timestamp column is a no-op", func(t *testing.T) {
		tbl, err := dataset.Load(strings.NewReader("GHI\n1\n2\n"), "Timestamp")
		require.NoError(t, err)

		written, err := r.TimeSeries(tbl, "Timestamp", []string{"GHI"}, filepath.Join(dir, "x"))
		require.NoError(t, err)
		assert.Empty(t, written)
	})
}

func TestDistributions(t *testing.T) {
	r := NewRenderer(nil)
	dir := t.TempDir()

	written, err := r.Distributions(sampleTable(t, 100), []string{"GHI", "RH"}, filepath.Join(dir, "togo"))
	require.NoError(t, err)
	require.Len(t, written, 1)
	assertPNG(t, filepath.Join(dir, "togo_ghi.png"))
}

func TestCorrelationHeatmap(t *testing.T) {
	r := NewRenderer(nil)
	dir := t.TempDir()

	t.Run("renders available columns", func(t *testing.T) {
		path := filepath.Join(dir, "heatmap.png")
		err := r.CorrelationHeatmap(sampleTable(t, 100), DefaultHeatmapColumns, path)
		require.NoError(t, err)
		assertPNG(t, path)
	})

	t.Run("skips with fewer than two columns", func(t *testing.T) {
		tbl, err := dataset.Load(strings.NewReader("GHI\n1\n2\n"), "Timestamp")
		require.NoError(t, err)

		path := filepath.Join(dir, "missing.png")
		require.NoError(t, r.CorrelationHeatmap(tbl, []string{"GHI", "DNI"}, path))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestCountryBoxplots(t *testing.T) {
	r := NewRenderer(nil)
	dir := t.TempDir()

	noGHI, err := dataset.Load(strings.NewReader("Tamb\n25\n26\n"), "Timestamp")
	require.NoError(t, err)

	countries := []analysis.CountryData{
		{Name: "Benin", Table: sampleTable(t, 50)},
		{Name: "Togo", Table: sampleTable(t, 50)},
		{Name: "NoData", Table: noGHI},
	}

	path := filepath.Join(dir, "boxplots.png")
	require.NoError(t, r.CountryBoxplots(countries, "GHI", path))
	assertPNG(t, path)

	t.Run("no usable countries skips the figure", func(t *testing.T) {
		path := filepath.Join(dir, "empty.png")
		require.NoError(t, r.CountryBoxplots([]analysis.CountryData{{Name: "NoData", Table: noGHI}}, "GHI", path))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}
