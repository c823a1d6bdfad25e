package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mcat/internal/channels"
	"mcat/internal/fileutil"
	"mcat/internal/logging"
	"mcat/internal/wavfile"
)

// ErrMergeValidation reports inputs that cannot be combined.
var ErrMergeValidation = errors.New("merge validation failed")

// MetadataMode selects how channel names are attached to the merged file.
type MetadataMode string

const (
	MetadataSidecar MetadataMode = "sidecar"
	MetadataChunk   MetadataMode = "chunk"
	MetadataNone    MetadataMode = "none"
)

const outputBits = 32

// Options controls metadata and logging for a merge.
type Options struct {
	Metadata MetadataMode
	Logger   *slog.Logger
}

// Result summarizes a finished merge.
type Result struct {
	Output     string
	Channels   int
	Frames     int
	SampleRate int
	// Sidecar is the metadata file path when one was written.
	Sidecar string
}

// Merge combines paths, in order, into output. When layout is non-nil its
// channel count must match len(paths) and its names are recorded according
// to opts.Metadata.
func Merge(paths []string, output string, layout *channels.Layout, opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "merge")

	tracks, err := loadTracks(paths)
	if err != nil {
		return Result{}, err
	}
	if layout != nil && layout.Count() != len(tracks) {
		return Result{}, fmt.Errorf("%w: 声道配置 %s 需要 %d 个声道，实际 %d/Layout %s expects %d channels, got %d",
			ErrMergeValidation, layout.Name, layout.Count(), len(tracks), layout.Name, layout.Count(), len(tracks))
	}

	rate, frames := tracks[0].SampleRate, tracks[0].Frames
	interleaved := Interleave(tracks)

	result := Result{Output: output, Channels: len(tracks), Frames: frames, SampleRate: rate}
	// The sidecar is written before the rename so a failed merge never leaves
	// a finished WAV in place.
	err = fileutil.WriteAtomic(output, func(partial string) error {
		if err := wavfile.WriteFloat32(partial, rate, len(tracks), interleaved); err != nil {
			return fmt.Errorf("无法写入合并文件/Cannot write merged WAV: %w", err)
		}
		if layout == nil {
			return nil
		}
		switch opts.Metadata {
		case MetadataChunk:
			if err := wavfile.AppendInfoComment(partial, ChunkComment(*layout, rate)); err != nil {
				return fmt.Errorf("无法写入元数据块/Cannot write metadata chunk: %w", err)
			}
		case MetadataSidecar:
			sidecar, err := WriteSidecar(output, *layout, rate)
			if err != nil {
				return err
			}
			result.Sidecar = sidecar
		}
		return nil
	})
	if err != nil {
		if result.Sidecar != "" {
			_ = fileutil.RemoveIfExists(result.Sidecar)
		}
		return Result{}, err
	}

	logger.Info("channels merged",
		logging.String("output", output),
		logging.Int("channels", result.Channels),
		logging.Int("frames", frames),
		logging.Int("sample_rate", rate),
		logging.Float64("duration_seconds", float64(frames)/float64(rate)),
		logging.String("metadata", string(opts.Metadata)),
	)
	return result, nil
}

// loadTracks reads and validates every input. Nothing is written until all
// inputs agree on channel count, sample rate and frame count.
func loadTracks(paths []string) ([]wavfile.MonoTrack, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: 没有声道文件可合并/No channel files to merge", ErrMergeValidation)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: 未找到声道文件/Channel file not found: %s", ErrMergeValidation, path)
		}
	}

	tracks := make([]wavfile.MonoTrack, 0, len(paths))
	for _, path := range paths {
		track, err := wavfile.ReadMono(path)
		if err != nil {
			return nil, fmt.Errorf("%w: 无法读取 WAV 文件/Cannot read WAV file: %w", ErrMergeValidation, err)
		}
		if len(tracks) > 0 {
			first := tracks[0]
			if track.SampleRate != first.SampleRate {
				return nil, fmt.Errorf("%w: 采样率不匹配/Sample rate mismatch: %s is %d Hz, %s is %d Hz",
					ErrMergeValidation, filepath.Base(path), track.SampleRate, filepath.Base(first.Path), first.SampleRate)
			}
			if track.Frames != first.Frames {
				return nil, fmt.Errorf("%w: 帧数不匹配/Frame count mismatch: %s has %d frames, %s has %d",
					ErrMergeValidation, filepath.Base(path), track.Frames, filepath.Base(first.Path), first.Frames)
			}
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Interleave lays tracks out frame-major: all channels of frame 0, then
// frame 1, and so on. Tracks must share a frame count.
func Interleave(tracks []wavfile.MonoTrack) []float32 {
	if len(tracks) == 0 {
		return nil
	}
	frames := tracks[0].Frames
	out := make([]float32, frames*len(tracks))
	for ch, track := range tracks {
		for frame, sample := range track.Samples[:frames] {
			out[frame*len(tracks)+ch] = sample
		}
	}
	return out
}

// ChunkComment renders the text stored in the ICMT chunk.
func ChunkComment(layout channels.Layout, sampleRate int) string {
	return fmt.Sprintf("layout=%s; channels=%s; sample_rate=%d; bits=%d",
		layout.Name, strings.Join(layout.Labeled(), ", "), sampleRate, outputBits)
}
