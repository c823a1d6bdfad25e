package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"mcat/internal/channels"
	"mcat/internal/deps"
	"mcat/internal/format"
	"mcat/internal/logging"
)

// ErrNoChannels reports a probe that could not decode even the first channel.
var ErrNoChannels = errors.New("no decodable channels")

// Request describes the decode of one input file.
type Request struct {
	Input      string
	OutputBase string
	Layout     channels.Layout
	Codec      format.Codec
	Tools      deps.Toolchain
	// Single runs jobs one at a time in channel order.
	Single bool
	// Workers overrides the pool size when positive.
	Workers   int
	NoNumbers bool
	// Progress is called after each channel file is written. Calls are serialized.
	Progress func(Job)
}

// DecodedSet is the channel file set produced for one input.
type DecodedSet struct {
	// Layout is the requested layout, or the detected one when probing.
	Layout channels.Layout
	Files  []string
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithLogger sets the logger used for per-channel progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCPUCount fixes the CPU count used for pool sizing.
func WithCPUCount(n int) Option {
	return func(o *Orchestrator) {
		o.cpus = n
	}
}

// WithGetenv replaces os.Getenv when composing the decoder environment.
func WithGetenv(getenv func(string) string) Option {
	return func(o *Orchestrator) {
		if getenv != nil {
			o.getenv = getenv
		}
	}
}

// Orchestrator runs decode jobs against the external decoder.
type Orchestrator struct {
	exec   Executor
	logger *slog.Logger
	cpus   int
	getenv func(string) string
}

// New constructs an orchestrator backed by real subprocesses unless overridden.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		exec:   NewCommandExecutor(),
		logger: logging.NewNop(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "decode")
	return o
}

// Decode produces one mono file per channel of req.Input. On failure the
// files written for this input are removed and no partial set is returned.
func (o *Orchestrator) Decode(ctx context.Context, req Request) (DecodedSet, error) {
	if req.Layout.IsAuto() {
		return o.probe(ctx, req)
	}

	jobs, err := BuildJobs(req.Input, req.OutputBase, req.Layout, req.Codec, req.Tools, JobOptions{NoNumbers: req.NoNumbers})
	if err != nil {
		return DecodedSet{}, err
	}
	env := Environment(req.Tools, o.getenv)
	report := serialize(req.Progress)

	if req.Single {
		err = o.runSequential(ctx, jobs, env, report)
	} else {
		workers := PoolSize(req.Workers, o.cpus, len(jobs))
		o.logger.Info("decoding channels in parallel",
			logging.String(logging.FieldInput, req.Input),
			logging.Int("channels", len(jobs)),
			logging.Int("workers", workers),
		)
		err = o.runParallel(ctx, jobs, workers, env, report)
	}
	if err != nil {
		discard(jobs)
		return DecodedSet{}, fmt.Errorf("decode %s: %w", req.Input, err)
	}

	files := make([]string, len(jobs))
	for i, job := range jobs {
		files[i] = job.OutputPath
	}
	return DecodedSet{Layout: req.Layout, Files: files}, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, jobs []Job, env []string, report func(Job)) error {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.runJob(ctx, job, env); err != nil {
			return err
		}
		report(job)
	}
	return nil
}

// runParallel feeds jobs to a fixed set of workers. Once any job fails, no
// further job is started; running jobs are allowed to finish.
func (o *Orchestrator) runParallel(ctx context.Context, jobs []Job, workers int, env []string, report func(Job)) error {
	type slot struct {
		pos int
		job Job
	}
	queue := make(chan slot)
	errs := make([]error, len(jobs))
	var failed atomic.Bool
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range queue {
				if failed.Load() {
					continue
				}
				if err := o.runJob(ctx, s.job, env); err != nil {
					errs[s.pos] = err
					failed.Store(true)
					continue
				}
				report(s.job)
			}
		}()
	}

	for pos, job := range jobs {
		if failed.Load() || ctx.Err() != nil {
			break
		}
		queue <- slot{pos: pos, job: job}
	}
	close(queue)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	return ctx.Err()
}

func (o *Orchestrator) runJob(ctx context.Context, job Job, env []string) error {
	start := time.Now()
	o.logger.Info("decoding channel",
		logging.Int(logging.FieldChannel, job.Index+1),
		logging.String("label", job.Label),
	)
	if err := o.exec.Run(ctx, job.Command, env); err != nil {
		return fmt.Errorf("channel %d (%s): %w", job.Index+1, job.Label, err)
	}
	o.logger.Debug("channel decoded",
		logging.Int(logging.FieldChannel, job.Index+1),
		logging.String("output", job.OutputPath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// probe discovers the channel count by decoding indices 0, 1, 2, ... with the
// widest layout until the decoder fails. The failing index is taken to be
// past the last channel and its partial output is removed.
func (o *Orchestrator) probe(ctx context.Context, req Request) (DecodedSet, error) {
	base := req.OutputBase
	if base == "" {
		base = req.Input
	}
	widest := channels.MaxCapacity()
	env := Environment(req.Tools, o.getenv)
	report := serialize(req.Progress)
	opts := JobOptions{NoNumbers: req.NoNumbers}

	var done []Job
	for index := range channels.MaxProbeChannels {
		label := fmt.Sprintf("Ch%02d", index+1)
		job, err := buildJob(req.Input, base, index, label, widest.ID, req.Codec, req.Tools, opts)
		if err != nil {
			discard(done)
			return DecodedSet{}, err
		}
		if err := o.exec.Run(ctx, job.Command, env); err != nil {
			_ = os.Remove(job.OutputPath)
			if ctx.Err() != nil {
				discard(done)
				return DecodedSet{}, ctx.Err()
			}
			o.logger.Info("channel probe stopped",
				logging.String(logging.FieldInput, req.Input),
				logging.Int("detected_channels", index),
				logging.String("reason", err.Error()),
			)
			break
		}
		done = append(done, job)
		report(job)
	}

	if len(done) == 0 {
		return DecodedSet{}, fmt.Errorf("decode %s: %w", req.Input, ErrNoChannels)
	}
	files := make([]string, len(done))
	for i, job := range done {
		files[i] = job.OutputPath
	}
	return DecodedSet{Layout: channels.Detected(len(done)), Files: files}, nil
}

func serialize(fn func(Job)) func(Job) {
	if fn == nil {
		return func(Job) {}
	}
	var mu sync.Mutex
	return func(job Job) {
		mu.Lock()
		defer mu.Unlock()
		fn(job)
	}
}

func discard(jobs []Job) {
	for _, job := range jobs {
		_ = os.Remove(job.OutputPath)
	}
}
