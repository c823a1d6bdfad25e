// Package flac re-encodes merged 32-bit float WAV files to FLAC using the
// external flac encoder.
//
// The encoder only accepts integer PCM, so the float source is first
// quantized to a temporary 24-bit WAV next to it. The temporary file is
// removed whether or not encoding succeeds, and the source WAV is never
// modified.
package flac
