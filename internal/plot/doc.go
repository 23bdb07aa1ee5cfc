// Package plot renders the analysis figures (time series, histograms,
// correlation heat map, cross-country boxplots) as PNG files.
package plot
