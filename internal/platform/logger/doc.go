// Package logger provides structured logging for the glossary tool.
//
// It uses Go's standard library log/slog package with a text or JSON handler
// writing to stderr, configurable log levels, context propagation of the
// session logger, and helpers for capturing log output in tests.
package logger
