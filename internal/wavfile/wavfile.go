package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// SampleFormat is the numeric representation of stored samples.
type SampleFormat int

const (
	Float32 SampleFormat = iota + 1
	Int
)

// WAVE format tags.
const (
	FormatPCM        = 1
	FormatIEEEFloat  = 3
	FormatExtensible = 0xFFFE
)

var (
	ErrNotWAV            = errors.New("not a WAV file")
	ErrNotMono           = errors.New("expected mono WAV")
	ErrUnsupportedFormat = errors.New("unsupported WAV sample format")
	ErrTruncated         = errors.New("truncated WAV data")
)

func (f SampleFormat) String() string {
	switch f {
	case Float32:
		return "float"
	case Int:
		return "int"
	default:
		return "unknown"
	}
}

// Info describes a WAV container header.
type Info struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Format     SampleFormat
	Frames     int
}

// MonoTrack is one decoded channel held fully in memory.
type MonoTrack struct {
	Path       string
	SampleRate int
	Format     SampleFormat
	BitDepth   int
	Frames     int
	Samples    []float32
}

// Probe reads header fields and the frame count without loading samples.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	info, _, err := openPCM(f, path)
	return info, err
}

// ReadFloat32 returns the header and every sample normalized to float32, interleaved.
func ReadFloat32(path string) (Info, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, nil, err
	}
	defer f.Close()

	info, dec, err := openPCM(f, path)
	if err != nil {
		return Info{}, nil, err
	}
	samples, err := readSamples(dec.PCMChunk, info)
	if err != nil {
		return Info{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, samples, nil
}

// ReadMono loads a single-channel file. Files with any other channel count
// are rejected.
func ReadMono(path string) (MonoTrack, error) {
	info, samples, err := ReadFloat32(path)
	if err != nil {
		return MonoTrack{}, err
	}
	if info.Channels != 1 {
		return MonoTrack{}, fmt.Errorf("%w: %s has %d channels", ErrNotMono, path, info.Channels)
	}
	return MonoTrack{
		Path:       path,
		SampleRate: info.SampleRate,
		Format:     info.Format,
		BitDepth:   info.BitDepth,
		Frames:     info.Frames,
		Samples:    samples,
	}, nil
}

func openPCM(f *os.File, path string) (Info, *wav.Decoder, error) {
	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return Info{}, nil, fmt.Errorf("%w: %s: %w", ErrNotWAV, path, err)
	}
	if dec.NumChans < 1 || dec.SampleRate == 0 {
		return Info{}, nil, fmt.Errorf("%w: %s: missing fmt chunk", ErrNotWAV, path)
	}

	formatTag := dec.WavAudioFormat
	if formatTag == FormatExtensible {
		sub, err := extensibleSubFormat(path)
		if err != nil {
			return Info{}, nil, err
		}
		formatTag = sub
	}

	info := Info{
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
	}
	switch {
	case formatTag == FormatIEEEFloat && info.BitDepth == 32:
		info.Format = Float32
	case formatTag == FormatPCM && (info.BitDepth == 8 || info.BitDepth == 16 || info.BitDepth == 24 || info.BitDepth == 32):
		info.Format = Int
	default:
		return Info{}, nil, fmt.Errorf("%w: %s: format tag %d, %d bits", ErrUnsupportedFormat, path, formatTag, info.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return Info{}, nil, fmt.Errorf("%w: %s: locate data chunk: %w", ErrNotWAV, path, err)
	}
	if dec.PCMChunk == nil {
		return Info{}, nil, fmt.Errorf("%w: %s: missing data chunk", ErrNotWAV, path)
	}
	dataBytes, err := dataChunkSize(path)
	if err != nil {
		return Info{}, nil, err
	}
	frameBytes := info.Channels * info.BitDepth / 8
	info.Frames = dataBytes / frameBytes
	return info, dec, nil
}

// dataChunkSize returns the data chunk length as declared in its header.
// The riff chunk reader rounds odd sizes up to include the pad byte, which
// is not audio.
func dataChunkSize(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	parser := riff.New(f)
	if err := parser.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotWAV, path, err)
	}
	for {
		id, size, err := parser.IDnSize()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: data chunk: %w", ErrNotWAV, path, err)
		}
		if id == riff.DataFormatID {
			return int(size), nil
		}
		if _, err := f.Seek(int64(size)+int64(size&1), io.SeekCurrent); err != nil {
			return 0, fmt.Errorf("%w: %s: skip %s chunk: %w", ErrNotWAV, path, id[:], err)
		}
	}
}

func readSamples(r io.Reader, info Info) ([]float32, error) {
	width := info.BitDepth / 8
	count := info.Frames * info.Channels
	raw := make([]byte, count*width)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	out := make([]float32, count)
	if info.Format == Float32 {
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	}

	scale := float32(FullScale(info.BitDepth))
	for i := range out {
		s := raw[i*width : i*width+width]
		var v int32
		switch info.BitDepth {
		case 8:
			v = int32(s[0]) - 128
		case 16:
			v = int32(int16(binary.LittleEndian.Uint16(s)))
		case 24:
			v = audio.Int24LETo32(s)
		case 32:
			v = int32(binary.LittleEndian.Uint32(s))
		}
		out[i] = float32(v) / scale
	}
	return out, nil
}

// FullScale is the integer magnitude that maps to 1.0 for a given bit depth.
func FullScale(bitDepth int) float64 {
	return math.Ldexp(1, bitDepth-1)
}

// extensibleSubFormat reads the first two bytes of the WAVE_FORMAT_EXTENSIBLE
// sub-format GUID, which carry the effective format tag.
func extensibleSubFormat(path string) (uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	parser := riff.New(f)
	if err := parser.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotWAV, path, err)
	}
	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: fmt chunk: %w", ErrNotWAV, path, err)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}
		payload := make([]byte, chunk.Size)
		if _, err := io.ReadFull(chunk, payload); err != nil {
			return 0, fmt.Errorf("%w: %s: fmt chunk: %w", ErrNotWAV, path, err)
		}
		if len(payload) < 26 {
			return 0, fmt.Errorf("%w: %s: short extensible fmt chunk", ErrUnsupportedFormat, path)
		}
		return binary.LittleEndian.Uint16(payload[24:26]), nil
	}
}
