// Package record defines the log record consumed by the HTML formatter and the
// mail handler: a message, a severity ordinal, and ordered contextual fields.
package record
