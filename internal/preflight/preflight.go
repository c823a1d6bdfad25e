package preflight

import (
	"mcat/internal/config"
	"mcat/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results do not fail the run; they only gate a feature.
	Optional bool
	Detail   string
}

// Run executes every check relevant to the given config.
// The flac encoder is reported as optional unless output.flac is enabled.
func Run(cfg *config.Config, locate deps.LocateOptions) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDecoder(locate))
	for _, status := range CheckEncoder(cfg) {
		results = append(results, FromStatus(status))
	}
	if cfg.Output.Dir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Output.Dir))
	}
	if cfg.Logging.Dir != "" {
		// Created on first use.
		logs := CheckDirectoryAccess("Log directory", cfg.Logging.Dir)
		logs.Optional = true
		results = append(results, logs)
	}
	return results
}

// Failed returns the names of the non-optional results that did not pass.
func Failed(results []Result) []string {
	var names []string
	for _, r := range results {
		if !r.Passed && !r.Optional {
			names = append(names, r.Name)
		}
	}
	return names
}
