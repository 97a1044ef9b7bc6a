// Package apiresponses provides standardized HTTP API error responses shared
// by the preview API and its middleware.
package apiresponses
