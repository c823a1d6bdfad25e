package decode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"mcat/internal/channels"
	"mcat/internal/deps"
	"mcat/internal/fileutil"
	"mcat/internal/format"
)

// Job is one decoder invocation producing a single channel file.
type Job struct {
	Index      int
	Label      string
	OutputPath string
	Command    []string
}

// JobOptions controls output naming.
type JobOptions struct {
	// NoNumbers drops the "NN_" prefix from channel file suffixes.
	NoNumbers bool
}

// ChannelPath derives the output file for a channel: the base path with its
// extension replaced by "NN_label.wav" (NN is 1-based) or "label.wav".
func ChannelPath(base string, index int, label string, opts JobOptions) string {
	suffix := fmt.Sprintf("%02d_%s.wav", index+1, label)
	if opts.NoNumbers {
		suffix = label + ".wav"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + suffix
}

// BuildJobs creates one job per layout channel. Existing files at the output
// paths are removed so the decoder's file sink never sees stale output.
func BuildJobs(input, outputBase string, layout channels.Layout, codec format.Codec, tools deps.Toolchain, opts JobOptions) ([]Job, error) {
	if layout.Count() == 0 {
		return nil, errors.New("build decode jobs: layout has no channels")
	}
	base := outputBase
	if strings.TrimSpace(base) == "" {
		base = input
	}
	jobs := make([]Job, 0, layout.Count())
	for index, label := range layout.Names {
		job, err := buildJob(input, base, index, label, layout.ID, codec, tools, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func buildJob(input, base string, index int, label string, layoutID int, codec format.Codec, tools deps.Toolchain, opts JobOptions) (Job, error) {
	out := ChannelPath(base, index, label, opts)
	if err := removeStale(out); err != nil {
		return Job{}, err
	}
	return Job{
		Index:      index,
		Label:      label,
		OutputPath: out,
		Command:    PipelineCommand(input, out, index, layoutID, codec, tools),
	}, nil
}

func removeStale(path string) error {
	if err := fileutil.RemoveIfExists(path); err != nil {
		return fmt.Errorf("remove stale output %s: %w", path, err)
	}
	return nil
}

// PipelineCommand renders the gst-launch argv that decodes the input and
// writes channel index as 32-bit float mono WAV to output.
func PipelineCommand(input, output string, index, layoutID int, codec format.Codec, tools deps.Toolchain) []string {
	cmd := []string{
		tools.GstLaunch,
		"--gst-plugin-path", tools.PluginDir,
		"filesrc", "location=" + input, "!",
	}
	switch codec {
	case format.TrueHD:
		cmd = append(cmd, "dlbtruehdparse", "align-major-sync=false", "!")
	default:
		cmd = append(cmd, "dlbac3parse", "!")
	}
	cmd = append(cmd, "dlbaudiodecbin", "out-ch-config="+strconv.Itoa(layoutID))
	if codec == format.TrueHD {
		cmd = append(cmd, "truehddec-presentation=16")
	}
	return append(cmd,
		"!", "deinterleave", "name=d",
		"d.src_"+strconv.Itoa(index), "!",
		"queue", "!",
		"audioconvert", "!",
		"audio/x-raw,format=F32LE", "!",
		"wavenc", "!",
		"filesink", "sync=false", "location="+output,
	)
}
