package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mcat/internal/channels"
	"mcat/internal/config"
	"mcat/internal/deps"
	"mcat/internal/flac"
	"mcat/internal/format"
	"mcat/internal/logging"
	"mcat/internal/merge"
	"mcat/internal/pipeline"
)

const lazyLayout = "9.1.6"

type convertFlags struct {
	inputs     []string
	output     string
	channels   string
	format     string
	noNumbers  bool
	single     bool
	jobs       int
	merge      bool
	cleanup    bool
	flac       bool
	keepWAV    bool
	lazy       bool
	dolbyTools string
	metadata   string
}

func (f *convertFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVarP(&f.inputs, "input", "i", nil, "输入文件/Input E-AC3 or TrueHD file (repeatable)")
	fs.StringVarP(&f.output, "output", "o", "", "输出路径，批处理时为目录/Output path, or directory for several inputs")
	fs.StringVarP(&f.channels, "channels", "c", "", "声道配置/Channel layout (see `mcat layouts`, or auto)")
	fs.StringVarP(&f.format, "format", "f", "", "输入格式/Input format: eac3 or truehd (default: detect)")
	fs.BoolVar(&f.noNumbers, "no-numbers", false, "声道文件名不带序号/Omit the NN_ prefix from channel file names")
	fs.BoolVarP(&f.single, "single", "s", false, "单线程顺序解码/Decode channels one at a time")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "并行解码数/Parallel decoder processes (default: MCAT_MAX_PAR or CPU based)")
	fs.BoolVarP(&f.merge, "merge", "m", false, "合并为多声道 WAV/Merge channels into one multi-channel WAV")
	fs.BoolVar(&f.cleanup, "cleanup", false, "合并后删除单声道文件/Delete mono files after a successful merge")
	fs.BoolVar(&f.flac, "flac", false, "转码为 FLAC（最多 8 声道）/Encode the merged WAV to FLAC (up to 8 channels)")
	fs.BoolVar(&f.keepWAV, "keep-wav", false, "FLAC 完成后保留 WAV/Keep the merged WAV after FLAC encoding")
	fs.BoolVar(&f.lazy, "lazy", false, "懒人模式/Convert every bitstream in the current directory")
	fs.StringVar(&f.dolbyTools, "dolby-tools", "", "杜比工具目录/Dolby tools bundle directory")
	fs.StringVar(&f.metadata, "metadata", "", "声道名称元数据/Channel name metadata: sidecar, chunk or none")
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags *convertFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	plan, lazy, err := buildPlan(cmd, cfg, flags, args)
	if err != nil {
		return err
	}

	runID := pipeline.NewRunID()
	logger, err := ctx.logger(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lazy {
		fmt.Fprintln(out, "已启用懒人模式/Lazy mode enabled")
		fmt.Fprintf(out, "将按顺序处理 %d 个文件/Processing %d files sequentially\n", len(plan.Inputs), len(plan.Inputs))
	}

	tools, err := deps.Locate(ctx.locateOptions(flags.dolbyTools))
	if err != nil {
		return err
	}
	logger.Debug("decoder located",
		logging.String("gst_launch", tools.GstLaunch),
		logging.String("plugins", tools.PluginDir),
		logging.String("source", tools.Source),
	)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithRunID(runID),
	}
	if plan.FLAC {
		client, err := flac.New(cfg.FlacBinary(), flac.WithLogger(logger))
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithTranscoder(client))
	}
	if stderr := cmd.ErrOrStderr(); shouldColorize(stderr) {
		opts = append(opts, pipeline.WithProgress(stderr))
	}

	summary, runErr := pipeline.NewRunner(tools, opts...).Run(cmd.Context(), plan)
	if len(summary.Files) > 0 {
		fmt.Fprintln(out, renderSummary(summary))
	}
	converted, skipped, failed := summary.Counts()
	fmt.Fprintf(out, "完成/Done: %d converted, %d skipped, %d failed\n", converted, skipped, failed)
	return runErr
}

// buildPlan resolves flags over config values. Flags win only when set on
// the command line.
func buildPlan(cmd *cobra.Command, cfg *config.Config, flags *convertFlags, args []string) (pipeline.Plan, bool, error) {
	fs := cmd.Flags()
	pickBool := func(name string, flag, fallback bool) bool {
		if fs.Changed(name) {
			return flag
		}
		return fallback
	}
	pickString := func(name, flag, fallback string) string {
		if fs.Changed(name) {
			return strings.TrimSpace(flag)
		}
		return fallback
	}

	plan := pipeline.Plan{
		Output:    pickString("output", flags.output, ""),
		Codec:     pickString("format", flags.format, cfg.Decode.Format),
		Merge:     pickBool("merge", flags.merge, cfg.Output.Merge),
		Cleanup:   pickBool("cleanup", flags.cleanup, cfg.Output.Cleanup),
		FLAC:      pickBool("flac", flags.flac, cfg.Output.FLAC),
		KeepWAV:   pickBool("keep-wav", flags.keepWAV, cfg.Output.KeepWAV),
		Single:    pickBool("single", flags.single, cfg.Decode.Single),
		NoNumbers: pickBool("no-numbers", flags.noNumbers, cfg.Decode.NoNumbers),
		Jobs:      cfg.Decode.Jobs,
	}
	if fs.Changed("jobs") {
		if flags.jobs < 1 {
			return pipeline.Plan{}, false, fmt.Errorf("--jobs 必须大于 0/--jobs must be at least 1, got %d", flags.jobs)
		}
		plan.Jobs = flags.jobs
	}
	if plan.Codec != "" {
		if _, err := format.ParseCodec(plan.Codec); err != nil {
			return pipeline.Plan{}, false, err
		}
	}

	metadata := pickString("metadata", flags.metadata, cfg.Output.Metadata)
	switch mode := merge.MetadataMode(strings.ToLower(metadata)); mode {
	case merge.MetadataSidecar, merge.MetadataChunk, merge.MetadataNone:
		plan.Metadata = mode
	default:
		return pipeline.Plan{}, false, fmt.Errorf("无效的元数据模式/Invalid --metadata %q (sidecar, chunk, none)", metadata)
	}

	inputs := append(append([]string(nil), flags.inputs...), args...)
	lazy := flags.lazy || len(inputs) == 0
	layoutName := pickString("channels", flags.channels, cfg.Decode.Channels)
	if lazy {
		workDir, err := os.Getwd()
		if err != nil {
			return pipeline.Plan{}, false, fmt.Errorf("resolve working directory: %w", err)
		}
		var exeDir string
		if exe, err := os.Executable(); err == nil {
			exeDir = filepath.Dir(exe)
		}
		inputs, err = pipeline.LazyInputs(workDir, exeDir)
		if err != nil {
			return pipeline.Plan{}, true, err
		}
		plan.Merge = true
		plan.Cleanup = true
		if !fs.Changed("channels") {
			layoutName = lazyLayout
		}
	}
	plan.Inputs = inputs

	layout, err := channels.Lookup(layoutName)
	if err != nil {
		return pipeline.Plan{}, lazy, err
	}
	plan.Layout = layout

	if plan.Output == "" && cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return pipeline.Plan{}, lazy, fmt.Errorf("create output directory: %w", err)
		}
		plan.Output = defaultOutput(cfg.Output.Dir, inputs)
	}
	return plan, lazy, nil
}

// defaultOutput places outputs under the configured directory: the directory
// itself for batches, "<dir>/<stem>.wav" for a single input.
func defaultOutput(dir string, inputs []string) string {
	if len(inputs) != 1 {
		return dir
	}
	base := filepath.Base(inputs[0])
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".wav")
}

func formatError(err error) string {
	var lines []string
	for _, e := range flattenErrors(err) {
		lines = append(lines, "错误/Error: "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func flattenErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flattenErrors(e)...)
		}
		return out
	}
	return []error{err}
}
