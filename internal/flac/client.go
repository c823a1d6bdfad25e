package flac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mcat/internal/channels"
	"mcat/internal/logging"
	"mcat/internal/wavfile"
)

// MaxChannels is the most channels a FLAC stream can carry.
const MaxChannels = 8

const (
	requiredSampleRate = 48000
	intermediateBits   = 24
	tempSuffix         = ".temp.wav"
	commentTag         = "COMMENT=Converted by mcat"
)

var (
	// ErrTooManyChannels reports a source wider than FLAC supports.
	ErrTooManyChannels = errors.New("too many channels for FLAC")
	// ErrUnsupportedSource reports a WAV that is not 48 kHz 32-bit float.
	ErrUnsupportedSource = errors.New("unsupported FLAC source")
	// ErrEncoderMissing reports that the flac binary could not be found.
	ErrEncoderMissing = errors.New("flac encoder not found")
	// ErrEncodeFailed reports a non-zero exit from the encoder.
	ErrEncodeFailed = errors.New("flac encoding failed")
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger for encode progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps flac CLI interactions.
type Client struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// New constructs a flac client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("flac binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "flac")
	return client, nil
}

// CheckChannels rejects channel counts FLAC cannot carry.
func CheckChannels(n int) error {
	if n > MaxChannels {
		return fmt.Errorf("%w: FLAC 不支持 %d 个声道，最多 %d 个/FLAC does not support %d channels, max %d",
			ErrTooManyChannels, n, MaxChannels, n, MaxChannels)
	}
	return nil
}

// TempPath is the intermediate 24-bit file used while encoding wavPath.
func TempPath(wavPath string) string {
	return strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + tempSuffix
}

// Args renders the encoder arguments. The channel layout tag is omitted for
// probed layouts, whose labels carry no speaker positions.
func Args(flacPath, tempPath string, layout *channels.Layout) []string {
	args := []string{"-8", "--silent"}
	if layout != nil && !layout.IsAuto() && layout.Count() > 0 {
		args = append(args, "--tag", "CHANNEL_LAYOUT="+layout.Flatten()+" (Sourced from Dolby)")
	}
	return append(args, "--tag", commentTag, "-o", flacPath, tempPath)
}

// Transcode encodes wavPath to flacPath. The source must be a 48 kHz, 32-bit
// float WAV with at most eight channels; all checks run before any file is
// written.
func (c *Client) Transcode(ctx context.Context, wavPath, flacPath string, layout *channels.Layout) error {
	info, err := wavfile.Probe(wavPath)
	if err != nil {
		return fmt.Errorf("无法打开 WAV 文件/Cannot open WAV file: %w", err)
	}
	if err := CheckChannels(info.Channels); err != nil {
		return err
	}
	if info.SampleRate != requiredSampleRate {
		return fmt.Errorf("%w: 只支持 48kHz 采样率，但 WAV 是 %d Hz/Only 48kHz supported, but WAV is %d Hz",
			ErrUnsupportedSource, info.SampleRate, info.SampleRate)
	}
	if info.BitDepth != 32 || info.Format != wavfile.Float32 {
		return fmt.Errorf("%w: 只支持 32-bit 浮点，但 WAV 是 %d-bit %s/Only 32-bit float supported, but WAV is %d-bit %s",
			ErrUnsupportedSource, info.BitDepth, info.Format, info.BitDepth, info.Format)
	}
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: 未找到 flac 命令行工具，请安装 FLAC/flac command not found, please install FLAC: %w",
			ErrEncoderMissing, err)
	}

	start := time.Now()
	temp := TempPath(wavPath)
	defer os.Remove(temp)

	if err := writeIntermediate(wavPath, temp); err != nil {
		return err
	}
	if err := c.exec.Run(ctx, c.binary, Args(flacPath, temp, layout)); err != nil {
		return err
	}

	c.logger.Info("flac encoded",
		logging.String("output", flacPath),
		logging.Int("channels", info.Channels),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func writeIntermediate(wavPath, temp string) error {
	info, samples, err := wavfile.ReadFloat32(wavPath)
	if err != nil {
		return fmt.Errorf("读取 WAV 样本失败/Failed to read WAV samples: %w", err)
	}
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = Quantize24(s)
	}
	if err := wavfile.WriteInt(temp, info.SampleRate, info.Channels, intermediateBits, ints); err != nil {
		return fmt.Errorf("无法创建临时 WAV/Cannot create temporary WAV: %w", err)
	}
	return nil
}

// Quantize24 clamps s to [-1, 1], scales by 2^23-1 and truncates toward zero.
func Quantize24(s float32) int {
	v := math.Max(-1, math.Min(1, float64(s)))
	return int(v * 8388607)
}
