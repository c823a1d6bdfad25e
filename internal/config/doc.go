// Package config loads, normalizes, and validates mcat configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours MCAT_* environment fallbacks. Command-line flags
// are layered on top by cmd/mcat; everything below the CLI receives values
// that have already passed Validate.
package config
