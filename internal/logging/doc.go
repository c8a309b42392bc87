// Package logging builds the process logger from configuration.
//
// Text output uses a compact colorized handler (time, three-letter level,
// message, key=value attrs); json uses slog's JSON handler. When a log file
// is configured, output goes to a size-rotated file instead of stderr and
// colors are disabled.
package logging
