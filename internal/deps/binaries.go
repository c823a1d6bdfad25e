package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotConfigured reports a requirement with an empty command.
	ErrNotConfigured = errors.New("command not configured")
	// ErrBinaryMissing reports a command that is neither a path nor on PATH.
	ErrBinaryMissing = errors.New("binary not found")
)

// Requirement is an external executable a run may invoke.
type Requirement struct {
	Name    string
	Command string
	// Purpose is shown next to the check result.
	Purpose string
	// Required marks binaries whose absence blocks the configured run.
	Required bool
}

// DecoderRequirement covers the GStreamer launcher of a located toolchain.
// The decoder is always required.
func DecoderRequirement(tc Toolchain) Requirement {
	purpose := "Dolby decode pipeline"
	if tc.Source != "" {
		purpose += ", from " + tc.Source
	}
	return Requirement{Name: "Dolby decoder", Command: tc.GstLaunch, Purpose: purpose, Required: true}
}

// FlacRequirement covers the flac encoder, which only FLAC output needs.
func FlacRequirement(command string, flacOutput bool) Requirement {
	purpose := "used by --flac"
	if flacOutput {
		purpose = "output.flac is enabled"
	}
	return Requirement{Name: "FLAC encoder", Command: command, Purpose: purpose, Required: flacOutput}
}

// Status is the resolution of one Requirement.
type Status struct {
	Requirement
	// Path is the resolved executable; empty when Err is set.
	Path string
	Err  error
}

// Available reports whether the executable was found.
func (s Status) Available() bool { return s.Err == nil }

// Resolve looks every requirement up, accepting both bare names on PATH and
// explicit paths.
func Resolve(requirements ...Requirement) []Status {
	out := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		switch path, err := exec.LookPath(req.Command); {
		case req.Command == "":
			status.Err = fmt.Errorf("%s: %w", req.Name, ErrNotConfigured)
		case err != nil:
			status.Err = fmt.Errorf("%s: %w: %q", req.Name, ErrBinaryMissing, req.Command)
		default:
			status.Path = path
		}
		out = append(out, status)
	}
	return out
}
