// Package logger builds configured slog.Logger instances.
//
// Defaults are production-safe: JSON output at INFO level. Options adjust
// level, format, destination and static attributes; NewFromConfig reads the
// same knobs from LOG_* environment variables.
package logger
