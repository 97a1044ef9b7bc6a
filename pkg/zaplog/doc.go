// Package zaplog plugs the HTML mail handler into zap: a zapcore.Core turns
// entries into records and mails them, and NewLogr exposes the same pipeline
// to logr users.
package zaplog
