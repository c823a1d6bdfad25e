// Package deps discovers the external executables mcat drives: the GStreamer
// launcher bundled with the Dolby decoder plugins and the flac encoder.
package deps
