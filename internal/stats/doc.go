// Package stats provides the numeric primitives used by the cleaning and
// analysis pipelines: NaN-aware descriptive statistics, percentiles with
// linear interpolation, Z-scores, Pearson correlation, and the one-way
// ANOVA and Kruskal-Wallis hypothesis tests.
//
// Two standard deviation conventions coexist deliberately: descriptive
// statistics use the sample form (÷(n−1)) while Z-scores use the population
// form (÷n).
package stats
