package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"mcat/internal/channels"
	"mcat/internal/decode"
	"mcat/internal/deps"
	"mcat/internal/fileutil"
	"mcat/internal/flac"
	"mcat/internal/format"
	"mcat/internal/logging"
	"mcat/internal/merge"
)

// Plan is one resolved invocation: the inputs and every policy that applies
// to them.
type Plan struct {
	Inputs    []string
	Output    string
	Layout    channels.Layout
	Codec     string
	Merge     bool
	Cleanup   bool
	FLAC      bool
	KeepWAV   bool
	Single    bool
	Jobs      int
	NoNumbers bool
	Metadata  merge.MetadataMode
}

// Decoder produces the channel files for one input.
type Decoder interface {
	Decode(ctx context.Context, req decode.Request) (decode.DecodedSet, error)
}

// Transcoder encodes a merged WAV to FLAC.
type Transcoder interface {
	Transcode(ctx context.Context, wavPath, flacPath string, layout *channels.Layout) error
}

// Status is the outcome of one input.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult records what happened to one input.
type FileResult struct {
	Input    string
	Status   Status
	Codec    string
	Channels int
	// Outputs lists the files left on disk for this input.
	Outputs  []string
	Bytes    int64
	Elapsed  time.Duration
	Warnings []string
	Err      error
}

// Summary is the per-file record of a run.
type Summary struct {
	RunID string
	Files []FileResult
}

// Counts returns converted, skipped and failed totals.
func (s Summary) Counts() (converted, skipped, failed int) {
	for _, f := range s.Files {
		switch f.Status {
		case StatusConverted:
			converted++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return converted, skipped, failed
}

// NewRunID returns a fresh identifier for correlating one invocation's logs.
func NewRunID() string {
	return uuid.NewString()
}

// Option configures the runner.
type Option func(*Runner)

// WithDecoder replaces the default decode orchestrator.
func WithDecoder(d Decoder) Option {
	return func(r *Runner) {
		if d != nil {
			r.decoder = d
		}
	}
}

// WithTranscoder sets the FLAC encoder. Without one, FLAC requests are skipped with a warning.
func WithTranscoder(t Transcoder) Option {
	return func(r *Runner) {
		if t != nil {
			r.encoder = t
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress renders a per-file channel progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// Runner executes plans.
type Runner struct {
	tools    deps.Toolchain
	decoder  Decoder
	encoder  Transcoder
	logger   *slog.Logger
	progress io.Writer
	runID    string
}

// NewRunner constructs a runner that decodes with tools.
func NewRunner(tools deps.Toolchain, opts ...Option) *Runner {
	r := &Runner{tools: tools, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = NewRunID()
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	if r.decoder == nil {
		r.decoder = decode.New(decode.WithLogger(r.logger))
	}
	return r
}

// Run converts every input in order. A failing input does not stop the
// batch; the returned error joins every per-file failure. Cancellation stops
// the batch before the next input.
func (r *Runner) Run(ctx context.Context, plan Plan) (Summary, error) {
	summary := Summary{RunID: r.runID}

	batchDir, err := PrepareBatchDir(plan.Inputs, plan.Output)
	if err != nil {
		return summary, err
	}
	if plan.FLAC && !plan.Merge {
		logging.WarnWithContext(r.logger, "flac requested without merge", "flac_without_merge",
			logging.String(logging.FieldImpact, "no FLAC files will be written"),
			logging.String(logging.FieldErrorHint, "add --merge"),
		)
	}

	var failures []error
	for i, input := range plan.Inputs {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		logger := r.logger.With(logging.String(logging.FieldInput, input))
		logger.Info("processing file",
			logging.Int("position", i+1),
			logging.Int("total", len(plan.Inputs)),
		)
		res := r.convert(ctx, logger, plan, input, batchDir, fmt.Sprintf("[%d/%d]", i+1, len(plan.Inputs)))
		summary.Files = append(summary.Files, res)
		if res.Status == StatusFailed {
			logging.ErrorWithContext(logger, "file failed", "file_failed", logging.Error(res.Err))
			failures = append(failures, fmt.Errorf("%s: %w", input, res.Err))
		}
	}

	if len(failures) > 0 {
		return summary, errors.Join(failures...)
	}
	return summary, nil
}

func (r *Runner) convert(ctx context.Context, logger *slog.Logger, plan Plan, input, batchDir, position string) FileResult {
	start := time.Now()
	res := FileResult{Input: input}
	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	if _, err := os.Stat(input); err != nil {
		logging.WarnWithContext(logger, "跳过不存在的文件/Skip missing file", "input_missing", logging.Error(err))
		res.Status = StatusSkipped
		res.Warnings = append(res.Warnings, "input missing")
		return res
	}

	codec, err := format.Detect(input, plan.Codec)
	if err != nil {
		return fail(err)
	}
	res.Codec = codec.String()
	logger.Info("format detected", logging.String("codec", res.Codec))

	base := OutputBase(input, batchDir, plan.Output)
	lockBase := base
	if lockBase == "" {
		lockBase = input
	}
	lock, err := acquireLock(lockBase)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := lock.release(); err != nil {
			logger.Warn("lock release failed", logging.Error(err))
		}
	}()

	bar := r.newBar(plan.Layout, position, filepath.Base(input))
	set, err := r.decoder.Decode(ctx, decode.Request{
		Input:      input,
		OutputBase: base,
		Layout:     plan.Layout,
		Codec:      codec,
		Tools:      r.tools,
		Single:     plan.Single,
		Workers:    plan.Jobs,
		NoNumbers:  plan.NoNumbers,
		Progress: func(decode.Job) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fail(err)
	}
	res.Channels = len(set.Files)
	res.Outputs = set.Files
	logger.Info("channels decoded", logging.Int("channels", res.Channels), logging.String("layout", set.Layout.Name))

	if !plan.Merge {
		res.Bytes = totalSize(res.Outputs)
		res.Status = StatusConverted
		res.Elapsed = time.Since(start)
		return res
	}

	merged := MergedPath(input, batchDir, plan.Output)
	layout := set.Layout
	mres, err := merge.Merge(set.Files, merged, &layout, merge.Options{Metadata: plan.Metadata, Logger: logger})
	if err != nil {
		return fail(err)
	}
	outputs := []string{merged}
	if mres.Sidecar != "" {
		outputs = append(outputs, mres.Sidecar)
	}

	if plan.FLAC {
		flacPath, warning := r.encodeFLAC(ctx, logger, plan, merged, &layout)
		switch {
		case warning != "":
			res.Warnings = append(res.Warnings, warning)
		case flacPath != "":
			outputs = append(outputs, flacPath)
			if !plan.KeepWAV {
				if err := os.Remove(merged); err != nil {
					res.Warnings = append(res.Warnings, "could not remove merged WAV: "+err.Error())
				} else {
					outputs = removePath(outputs, merged)
					logger.Info("已删除原始 WAV 文件/Removed original WAV", logging.String("path", merged))
				}
			}
		}
	}

	if plan.Cleanup {
		for _, path := range set.Files {
			if err := fileutil.RemoveIfExists(path); err != nil {
				res.Warnings = append(res.Warnings, "cleanup: "+err.Error())
				outputs = append(outputs, path)
			}
		}
		logger.Info("channel files removed", logging.Int("count", len(set.Files)))
	} else {
		outputs = append(outputs, set.Files...)
	}

	res.Outputs = outputs
	res.Bytes = totalSize(outputs)
	res.Status = StatusConverted
	res.Elapsed = time.Since(start)
	logger.Info("file converted",
		logging.String("output", merged),
		logging.String("size", humanize.Bytes(uint64(res.Bytes))),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res
}

// encodeFLAC returns the written FLAC path, or a warning when the step was
// skipped or failed. FLAC problems never fail the file; the merged WAV stays.
func (r *Runner) encodeFLAC(ctx context.Context, logger *slog.Logger, plan Plan, merged string, layout *channels.Layout) (string, string) {
	if err := flac.CheckChannels(layout.Count()); err != nil {
		logging.WarnWithContext(logger, "FLAC 转码跳过/FLAC conversion skipped", "flac_channel_limit",
			logging.Error(err),
			logging.String(logging.FieldImpact, "merged WAV kept without FLAC copy"),
			logging.String(logging.FieldErrorHint, "choose a layout with at most 8 channels"),
		)
		return "", err.Error()
	}
	if r.encoder == nil {
		logging.WarnWithContext(logger, "FLAC encoder unavailable", "flac_unavailable",
			logging.String(logging.FieldImpact, "merged WAV kept without FLAC copy"),
		)
		return "", "flac encoder unavailable"
	}
	flacPath := replaceExt(merged, ".flac")
	if err := r.encoder.Transcode(ctx, merged, flacPath, layout); err != nil {
		logging.WarnWithContext(logger, "FLAC 转码失败，保留原始 WAV 文件/FLAC conversion failed, keeping original WAV", "flac_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "merged WAV kept without FLAC copy"),
		)
		return "", err.Error()
	}
	logger.Info("FLAC 转码完成/FLAC conversion completed", logging.String("output", flacPath))
	return flacPath, ""
}

func (r *Runner) newBar(layout channels.Layout, position, name string) *progressbar.ProgressBar {
	if r.progress == nil {
		return nil
	}
	total := layout.Count()
	if layout.IsAuto() {
		total = -1
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription(position+" "+name),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetItsString("ch"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.progress) }),
	)
}

func totalSize(paths []string) int64 {
	var total int64
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}

func removePath(paths []string, target string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
