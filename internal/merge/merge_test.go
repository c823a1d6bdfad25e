package merge_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mcat/internal/channels"
	"mcat/internal/merge"
	"mcat/internal/wavfile"
)

func writeMono(t *testing.T, dir, name string, rate int, samples []float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, wavfile.WriteFloat32(path, rate, 1, samples))
	return path
}

func ramp(n int, scale float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = scale * float32(i) / float32(n)
	}
	return out
}

func stereo(t *testing.T) *channels.Layout {
	t.Helper()
	layout, err := channels.Lookup("2.0")
	require.NoError(t, err)
	return &layout
}

func TestMergeInterleavesFrameMajor(t *testing.T) {
	dir := t.TempDir()
	left, right := ramp(1000, 0.5), ramp(1000, -0.25)
	paths := []string{
		writeMono(t, dir, "a.01_L.wav", 48000, left),
		writeMono(t, dir, "a.02_R.wav", 48000, right),
	}
	output := filepath.Join(dir, "a.wav")

	res, err := merge.Merge(paths, output, stereo(t), merge.Options{Metadata: merge.MetadataNone})
	require.NoError(t, err)
	require.Equal(t, 2, res.Channels)
	require.Equal(t, 1000, res.Frames)
	require.Empty(t, res.Sidecar)

	info, samples, err := wavfile.ReadFloat32(output)
	require.NoError(t, err)
	require.Equal(t, 2, info.Channels)
	require.Equal(t, 48000, info.SampleRate)
	require.Equal(t, 32, info.BitDepth)
	require.Equal(t, wavfile.Float32, info.Format)
	require.Equal(t, 1000, info.Frames)
	require.Len(t, samples, 2*1000)
	for i, want := range [][]float32{left, right} {
		got := make([]float32, 0, len(want))
		for f := 0; f < info.Frames; f++ {
			got = append(got, samples[f*info.Channels+i])
		}
		require.Equal(t, want, got, "channel %d", i)
	}
	require.NoFileExists(t, output+".partial")
}

func TestMergeFrameMismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeMono(t, dir, "a.01_L.wav", 48000, ramp(1000, 1)),
		writeMono(t, dir, "a.02_R.wav", 48000, ramp(999, 1)),
	}
	output := filepath.Join(dir, "a.wav")

	_, err := merge.Merge(paths, output, stereo(t), merge.Options{Metadata: merge.MetadataSidecar})
	require.ErrorIs(t, err, merge.ErrMergeValidation)
	require.Contains(t, err.Error(), "Frame count mismatch")
	require.NoFileExists(t, output)
	require.NoFileExists(t, output+".partial")
	require.NoFileExists(t, merge.SidecarPath(output))
}

func TestMergeValidationFailures(t *testing.T) {
	dir := t.TempDir()
	mono48 := writeMono(t, dir, "m48.wav", 48000, ramp(10, 1))
	mono44 := writeMono(t, dir, "m44.wav", 44100, ramp(10, 1))
	multi := filepath.Join(dir, "multi.wav")
	require.NoError(t, wavfile.WriteFloat32(multi, 48000, 2, ramp(20, 1)))

	tests := []struct {
		name   string
		paths  []string
		layout *channels.Layout
		want   string
	}{
		{"empty", nil, nil, "No channel files"},
		{"missing", []string{mono48, filepath.Join(dir, "nope.wav")}, nil, "Channel file not found"},
		{"not mono", []string{mono48, multi}, nil, "expected mono"},
		{"rate", []string{mono48, mono44}, nil, "Sample rate mismatch"},
		{"layout count", []string{mono48}, stereo(t), "expects 2 channels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.wav")
			_, err := merge.Merge(tt.paths, output, tt.layout, merge.Options{})
			require.ErrorIs(t, err, merge.ErrMergeValidation)
			require.Contains(t, err.Error(), tt.want)
			require.NoFileExists(t, output)
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeMono(t, dir, "a.01_L.wav", 48000, ramp(300, 0.9)),
		writeMono(t, dir, "a.02_R.wav", 48000, ramp(300, -0.9)),
	}
	output := filepath.Join(dir, "a.wav")
	layout := stereo(t)

	_, err := merge.Merge(paths, output, layout, merge.Options{Metadata: merge.MetadataChunk})
	require.NoError(t, err)
	first, err := os.ReadFile(output)
	require.NoError(t, err)

	_, err = merge.Merge(paths, output, layout, merge.Options{Metadata: merge.MetadataChunk})
	require.NoError(t, err)
	second, err := os.ReadFile(output)
	require.NoError(t, err)
	require.True(t, bytes.Equal(first, second), "repeated merge must be byte-identical")
}

func TestMergeNormalizesIntegerInputs(t *testing.T) {
	dir := t.TempDir()
	ints := []int{0, 16384, -16384, 32767, -32768}
	paths := make([]string, 2)
	for i := range paths {
		paths[i] = filepath.Join(dir, []string{"l.wav", "r.wav"}[i])
		require.NoError(t, wavfile.WriteInt(paths[i], 48000, 1, 16, ints))
	}
	output := filepath.Join(dir, "out.wav")

	_, err := merge.Merge(paths, output, nil, merge.Options{})
	require.NoError(t, err)

	_, samples, err := wavfile.ReadFloat32(output)
	require.NoError(t, err)
	for i, v := range ints {
		want := float64(v) / 32768
		require.InDelta(t, want, samples[i*2], 1.0/32768)
		require.InDelta(t, want, samples[i*2+1], 1.0/32768)
	}
}

func TestMergeWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	layout, err := channels.Lookup("5.1")
	require.NoError(t, err)
	paths := make([]string, layout.Count())
	for i, label := range layout.Names {
		paths[i] = writeMono(t, dir, label+".wav", 48000, ramp(16, float32(i)/10))
	}
	output := filepath.Join(dir, "movie.wav")

	res, err := merge.Merge(paths, output, &layout, merge.Options{Metadata: merge.MetadataSidecar})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "movie.json"), res.Sidecar)

	doc, err := merge.ReadSidecar(res.Sidecar)
	require.NoError(t, err)
	require.Equal(t, merge.Sidecar{
		ChannelConfig: "5.1",
		NumChannels:   6,
		Channels:      []string{"1: L", "2: R", "3: C", "4: LFE", "5: Ls", "6: Rs"},
		SampleRate:    48000,
		BitsPerSample: 32,
		SampleFormat:  "float",
	}, doc)
}

func TestMergeSidecarFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeMono(t, dir, "a.01_L.wav", 48000, ramp(32, 1)),
		writeMono(t, dir, "a.02_R.wav", 48000, ramp(32, -1)),
	}
	output := filepath.Join(dir, "a.wav")
	// A directory where the sidecar belongs makes the sidecar write fail.
	require.NoError(t, os.Mkdir(merge.SidecarPath(output), 0o755))

	res, err := merge.Merge(paths, output, stereo(t), merge.Options{Metadata: merge.MetadataSidecar})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot write metadata file")
	require.Equal(t, merge.Result{}, res)
	require.NoFileExists(t, output)
	require.NoFileExists(t, output+".partial")
	require.DirExists(t, merge.SidecarPath(output))
}

func TestMergeLogsDuration(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeMono(t, dir, "a.01_L.wav", 8000, ramp(4000, 1)),
		writeMono(t, dir, "a.02_R.wav", 8000, ramp(4000, -1)),
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	_, err := merge.Merge(paths, filepath.Join(dir, "a.wav"), stereo(t), merge.Options{Metadata: merge.MetadataNone, Logger: logger})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "channels merged", entry["msg"])
	require.Equal(t, "merge", entry["component"])
	require.InDelta(t, 0.5, entry["duration_seconds"], 1e-9)
}

func TestMergeEmbedsChunkComment(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeMono(t, dir, "l.wav", 48000, ramp(7, 1)),
		writeMono(t, dir, "r.wav", 48000, ramp(7, -1)),
	}
	output := filepath.Join(dir, "out.wav")

	_, err := merge.Merge(paths, output, stereo(t), merge.Options{Metadata: merge.MetadataChunk})
	require.NoError(t, err)
	require.NoFileExists(t, merge.SidecarPath(output))

	chunks, err := wavfile.Chunks(output)
	require.NoError(t, err)
	require.Equal(t, "LIST", chunks[len(chunks)-1].ID)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Contains(t, string(data), "layout=2.0; channels=1: L, 2: R; sample_rate=48000; bits=32")

	info, samples, err := wavfile.ReadFloat32(output)
	require.NoError(t, err)
	require.Equal(t, 7, info.Frames)
	require.Len(t, samples, 14)
}

func TestChunkComment(t *testing.T) {
	layout, err := channels.Lookup("3.1")
	require.NoError(t, err)
	require.Equal(t, "layout=3.1; channels=1: L, 2: R, 3: C, 4: LFE; sample_rate=96000; bits=32",
		merge.ChunkComment(layout, 96000))
}
