// Package pipeline orchestrates the batch run: per-country cleaning,
// cross-country analysis, then report, workbook and figure output.
package pipeline
