// Package preflight provides readiness checks for the external tools and
// filesystem paths that mcat depends on.
//
// The CLI "mcat check" command renders the results of Run. A failed
// non-optional result means conversions cannot succeed; the flac encoder is
// optional unless FLAC output is enabled in the config.
package preflight
