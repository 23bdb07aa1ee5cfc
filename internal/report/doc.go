// Package report renders analysis insights as a plain-text report and
// as an Excel workbook.
package report
