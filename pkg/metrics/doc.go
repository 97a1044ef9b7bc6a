// Package metrics defines Prometheus metrics for record rendering and HTML
// mail delivery.
package metrics
