// Package mail delivers formatted log records by email. It provides the fixed
// HTML header set, a gomail-backed SMTP sender and a Handler that filters
// records by level, renders them and composes the outgoing message.
package mail
