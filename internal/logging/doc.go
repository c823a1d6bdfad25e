// Package logging assembles structured slog loggers for mcat.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and the standard field keys (component, run_id, input, channel) that the
// decode, merge and pipeline packages attach to their records. A no-op logger
// is provided for tests and for wiring code that has no logger to hand.
package logging
