// Package logging assembles the structured slog loggers used by the CLI.
//
// Diagnostics always go to stderr so they never interleave with the JSON
// record stream on stdout. The package owns the console and JSON handlers,
// level parsing, and a no-op logger for tests and wiring code that cannot
// fail.
package logging
