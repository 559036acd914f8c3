// Package logging assembles structured slog loggers and formatting helpers used
// across reelsense.
//
// It owns the console and JSON handlers, routes the primary stream to stderr,
// and can tee a JSON copy of every record into the log directory. Context
// helpers tag lines with the pipeline stage and run correlation ID. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
