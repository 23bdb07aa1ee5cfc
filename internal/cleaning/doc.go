// Package cleaning prepares raw solar observation tables for analysis:
// median imputation of missing values, Z-score outlier detection and
// removal with sequential per-column narrowing, and calendar feature
// derivation from the timestamp column. Each Clean invocation returns an
// explicit Report of what was changed; no state is shared across datasets.
package cleaning
