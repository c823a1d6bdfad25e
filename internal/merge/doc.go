// Package merge interleaves per-channel mono WAV files into one
// multi-channel 32-bit float WAV.
//
// Every input is validated (mono, shared sample rate, shared frame count)
// before anything is written. Output goes to a ".partial" sibling that is
// renamed into place only once complete, so a failed merge never leaves a
// readable container behind. Channel naming can travel as a JSON sidecar, as
// a LIST/INFO comment chunk inside the WAV, or not at all.
package merge
