// Package config handles YAML configuration for the HTML mail handler, the
// severity color thresholds and the preview server.
package config
