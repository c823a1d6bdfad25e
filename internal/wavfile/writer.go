package wavfile

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const writeBlockFrames = 4096

// WriteFloat32 writes interleaved IEEE float samples as a format-3 WAV.
func WriteFloat32(path string, sampleRate, channels int, samples []float32) error {
	// The encoder stores 32-bit words as-is, so float samples travel as their
	// IEEE-754 bit patterns.
	return encode(path, sampleRate, channels, 32, FormatIEEEFloat, len(samples), func(dst []int, start int) {
		for i := range dst {
			dst[i] = int(int32(math.Float32bits(samples[start+i])))
		}
	})
}

// WriteInt writes interleaved integer PCM at the given bit depth.
func WriteInt(path string, sampleRate, channels, bitDepth int, samples []int) error {
	return encode(path, sampleRate, channels, bitDepth, FormatPCM, len(samples), func(dst []int, start int) {
		copy(dst, samples[start:start+len(dst)])
	})
}

func encode(path string, sampleRate, channels, bitDepth, formatTag, total int, fill func(dst []int, start int)) error {
	if channels < 1 {
		return fmt.Errorf("write %s: invalid channel count %d", path, channels)
	}
	if total%channels != 0 {
		return fmt.Errorf("write %s: %d samples do not divide into %d channels", path, total, channels)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, formatTag)

	format := &audio.Format{NumChannels: channels, SampleRate: sampleRate}
	block := writeBlockFrames * channels
	buf := &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth, Data: make([]int, 0, block)}

	writeErr := func() error {
		if total == 0 {
			buf.Data = buf.Data[:0]
			return enc.Write(buf)
		}
		for start := 0; start < total; start += block {
			n := min(block, total-start)
			buf.Data = buf.Data[:n]
			fill(buf.Data, start)
			if err := enc.Write(buf); err != nil {
				return err
			}
		}
		return nil
	}()
	closeErr := enc.Close()
	fileErr := f.Close()
	switch {
	case writeErr != nil:
		return fmt.Errorf("write %s: %w", path, writeErr)
	case closeErr != nil:
		return fmt.Errorf("finalize %s: %w", path, closeErr)
	case fileErr != nil:
		return fmt.Errorf("close %s: %w", path, fileErr)
	}
	return nil
}
