// Package decode turns one input bitstream into per-channel mono WAV files by
// driving the external GStreamer decoder.
//
// BuildJobs produces one command line per output channel. The Orchestrator
// runs them sequentially, through a bounded worker pool, or, when the layout
// is unknown, probes channel indices one at a time until the decoder refuses
// an index. Every mode returns only after all subprocesses it started have
// exited.
package decode
