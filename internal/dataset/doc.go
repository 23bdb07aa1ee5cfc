// Package dataset provides the tabular observation model shared by the
// cleaning and analysis pipelines: CSV-backed tables with named numeric
// columns, NaN-marked missing values, and row subsetting.
package dataset
