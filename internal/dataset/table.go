package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"solarcli/internal/stats"
)

// Strings treated as missing values when parsing CSV input.
var nanValues = []string{"", "NA", "N/A", "null", "NaN"}

// Table is an ordered set of timestamped observations with named numeric
// columns. It wraps a gota dataframe: the timestamp column is kept as
// strings, every other column is parsed as float64 with NaN marking missing
// entries.
type Table struct {
	df dataframe.DataFrame
}

// Load parses CSV data from r. The named timestamp column (if present in the
// header) is read as strings; all other columns are forced to float type so
// that missing entries become NaN rather than flipping the column to string.
func Load(r io.Reader, timestampColumn string) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(map[string]series.Type{timestampColumn: series.String}),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// LoadFile reads and parses the CSV file at path.
func LoadFile(path, timestampColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(f, timestampColumn)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Nrow returns the number of rows.
func (t *Table) Nrow() int {
	return t.df.Nrow()
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	return t.df.Names()
}

// Has reports whether the named column exists.
func (t *Table) Has(column string) bool {
	for _, name := range t.df.Names() {
		if name == column {
			return true
		}
	}
	return false
}

// Column returns the named column as float64 values, NaN where missing.
// The second return value is false when the column does not exist.
func (t *Table) Column(column string) ([]float64, bool) {
	if !t.Has(column) {
		return nil, false
	}
	return t.df.Col(column).Float(), true
}

// NonMissing returns the non-NaN values of the named column, or nil when the
// column does not exist.
func (t *Table) NonMissing(column string) []float64 {
	values, ok := t.Column(column)
	if !ok {
		return nil
	}
	return stats.DropNaN(values)
}

// Strings returns the named column as raw string records.
func (t *Table) Strings(column string) ([]string, bool) {
	if !t.Has(column) {
		return nil, false
	}
	return t.df.Col(column).Records(), true
}

// SetFloats replaces (or appends) the named column with float values.
func (t *Table) SetFloats(column string, values []float64) error {
	t.df = t.df.Mutate(series.New(values, series.Float, column))
	if t.df.Err != nil {
		return fmt.Errorf("set column %s: %w", column, t.df.Err)
	}
	return nil
}

// SetInts replaces (or appends) the named column with integer values.
func (t *Table) SetInts(column string, values []int) error {
	t.df = t.df.Mutate(series.New(values, series.Int, column))
	if t.df.Err != nil {
		return fmt.Errorf("set column %s: %w", column, t.df.Err)
	}
	return nil
}

// KeepRows returns a new table containing only the rows at the given
// indexes, in order.
func (t *Table) KeepRows(indexes []int) (*Table, error) {
	sub := t.df.Subset(indexes)
	if sub.Err != nil {
		return nil, fmt.Errorf("subset rows: %w", sub.Err)
	}
	return &Table{df: sub}, nil
}

// NumericColumns returns the names of all float and int typed columns,
// preserving column order.
func (t *Table) NumericColumns() []string {
	names := t.df.Names()
	types := t.df.Types()

	var numeric []string
	for i, typ := range types {
		if typ == series.Float || typ == series.Int {
			numeric = append(numeric, names[i])
		}
	}
	return numeric
}

// WriteCSV writes the table, header included, to w.
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SaveCSV writes the table to the file at path, creating parent directories
// as needed.
func (t *Table) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return t.WriteCSV(f)
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	return &Table{df: t.df.Copy()}
}
