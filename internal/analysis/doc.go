// Package analysis turns cleaned observation tables into descriptive
// statistics, solar-potential metrics, cross-country significance tests
// and a weighted composite ranking.
//
// Inputs arrive as an ordered []CountryData rather than a map so that
// ranking tie-breaks and the ordering of per-country results are stable
// across runs. Operations that lack the data they need return explicit
// errors (ErrColumnMissing, ErrInsufficientData) instead of zeroed
// results.
package analysis
