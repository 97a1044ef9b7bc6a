// Package api implements the preview HTTP server (Gin-based): clients post log
// records and receive the rendered HTML, and Prometheus metrics are exposed
// alongside.
package api
