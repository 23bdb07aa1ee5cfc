package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Timestamp,GHI,DNI,Tamb
2023-01-01 10:00,120.5,300,25.1
2023-01-01 11:00,,310,25.8
2023-01-01 12:00,410.2,,26.0
2023-01-01 13:00,390.0,295,
`

func loadSample(t *testing.T) *Table {
	t.Helper()
	tbl, err := Load(strings.NewReader(sampleCSV), "Timestamp")
	require.NoError(t, err)
	return tbl
}

func TestLoad(t *testing.T) {
	tbl := loadSample(t)

	assert.Equal(t, 4, tbl.Nrow())
	assert.Equal(t, []string{"Timestamp", "GHI", "DNI", "Tamb"}, tbl.Names())
	assert.True(t, tbl.Has("GHI"))
	assert.False(t, tbl.Has("WS"))

	t.Run("missing entries are NaN", func(t *testing.T) {
		ghi, ok := tbl.Column("GHI")
		require.True(t, ok)
		require.Len(t, ghi, 4)
		assert.InDelta(t, 120.5, ghi[0], 1e-9)
		assert.True(t, math.IsNaN(ghi[1]))
	})

	t.Run("timestamp stays string typed", func(t *testing.T) {
		ts, ok := tbl.Strings("Timestamp")
		require.True(t, ok)
		assert.Equal(t, "2023-01-01 10:00", ts[0])
		assert.NotContains(t, tbl.NumericColumns(), "Timestamp")
	})

	t.Run("absent column", func(t *testing.T) {
		_, ok := tbl.Column("WS")
		assert.False(t, ok)
		assert.Nil(t, tbl.NonMissing("WS"))
	})
}

func TestNonMissing(t *testing.T) {
	tbl := loadSample(t)
	ghi := tbl.NonMissing("GHI")
	assert.Equal(t, []float64{120.5, 410.2, 390.0}, ghi)
}

func TestSetAndKeepRows(t *testing.T) {
	tbl := loadSample(t)

	require.NoError(t, tbl.SetFloats("GHI", []float64{1, 2, 3, 4}))
	ghi, _ := tbl.Column("GHI")
	assert.Equal(t, []float64{1, 2, 3, 4}, ghi)

	require.NoError(t, tbl.SetInts("Hour", []int{10, 11, 12, 13}))
	assert.True(t, tbl.Has("Hour"))
	assert.Contains(t, tbl.NumericColumns(), "Hour")

	kept, err := tbl.KeepRows([]int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, kept.Nrow())
	keptGHI, _ := kept.Column("GHI")
	assert.Equal(t, []float64{1, 3}, keptGHI)
	// original untouched
	assert.Equal(t, 4, tbl.Nrow())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := loadSample(t)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	again, err := Load(&buf, "Timestamp")
	require.NoError(t, err)
	assert.Equal(t, tbl.Nrow(), again.Nrow())
	assert.Equal(t, tbl.Names(), again.Names())

	ghi := again.NonMissing("GHI")
	assert.Equal(t, []float64{120.5, 410.2, 390.0}, ghi)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	tbl, err := LoadFile(path, "Timestamp")
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Nrow())

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), "Timestamp")
	assert.Error(t, err)
}

func TestSaveCSV(t *testing.T) {
	tbl := loadSample(t)
	path := filepath.Join(t.TempDir(), "out", "clean.csv")
	require.NoError(t, tbl.SaveCSV(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
