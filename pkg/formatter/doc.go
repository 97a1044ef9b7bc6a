// Package formatter renders log records into self-contained HTML documents
// suitable for display in a browser or as the body of an email.
package formatter
