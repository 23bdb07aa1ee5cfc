// Package config centralizes the pipeline configuration surface: dataset
// column lists, cleaning and analysis thresholds, the country registry, and
// output paths. Configuration is resolved from built-in defaults, an
// optional YAML file, and SOLAR_-prefixed environment variables, in that
// order of precedence.
package config
