// Package pipeline drives a batch of inputs through decode, merge, and the
// optional FLAC step.
//
// Files are processed strictly one after another; the only concurrency lives
// inside the decode orchestrator. A failing file is recorded in the run
// summary and the batch moves on. Each output base is guarded by an advisory
// lock so two mcat processes never write the same channel files.
package pipeline
