// Package logger sets up the process-wide slog JSON logger and carries
// request-scoped loggers through context.
package logger
