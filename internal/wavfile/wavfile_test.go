package wavfile_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mcat/internal/wavfile"
)

func ramp(n int, step float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i%200-100) * step
	}
	return out
}

func TestFloat32RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	samples := ramp(1000, 0.0099)
	require.NoError(t, wavfile.WriteFloat32(path, 48000, 1, samples))

	track, err := wavfile.ReadMono(path)
	require.NoError(t, err)
	require.Equal(t, 48000, track.SampleRate)
	require.Equal(t, wavfile.Float32, track.Format)
	require.Equal(t, 1000, track.Frames)
	require.Equal(t, samples, track.Samples)
}

func TestMultiChannelProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.wav")
	require.NoError(t, wavfile.WriteFloat32(path, 44100, 4, make([]float32, 4*250)))

	info, err := wavfile.Probe(path)
	require.NoError(t, err)
	require.Equal(t, wavfile.Info{Channels: 4, SampleRate: 44100, BitDepth: 32, Format: wavfile.Float32, Frames: 250}, info)

	_, err = wavfile.ReadMono(path)
	require.ErrorIs(t, err, wavfile.ErrNotMono)
}

func TestIntNormalization(t *testing.T) {
	tests := []struct {
		bits int
		in   []int
		want []float32
	}{
		{16, []int{0, 16384, -32768, 32767}, []float32{0, 0.5, -1, 32767.0 / 32768.0}},
		{24, []int{0, 4194304, -8388608}, []float32{0, 0.5, -1}},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "int.wav")
		require.NoError(t, wavfile.WriteInt(path, 48000, 1, tt.bits, tt.in))

		track, err := wavfile.ReadMono(path)
		require.NoError(t, err)
		require.Equal(t, wavfile.Int, track.Format)
		require.Equal(t, tt.bits, track.BitDepth)
		require.InDeltaSlice(t, tt.want, track.Samples, 1e-7)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not a riff file at all"), 0o644))
	_, err := wavfile.Probe(path)
	require.ErrorIs(t, err, wavfile.ErrNotWAV)
}

func TestAppendInfoCommentOnlyAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.wav")
	samples := ramp(300, 0.001)
	require.NoError(t, wavfile.WriteFloat32(path, 48000, 2, samples))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	comment := "layout=2.0; channels=1: L, 2: R"
	require.NoError(t, wavfile.AppendInfoComment(path, comment))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(after), len(before))
	require.Zero(t, len(after)%2)

	// Only the RIFF size field changes inside the original byte range.
	require.Equal(t, before[:4], after[:4])
	require.Equal(t, before[8:], after[8:len(before)])
	require.Equal(t, uint32(len(after)-8), binary.LittleEndian.Uint32(after[4:8]))

	tail := after[len(before):]
	require.Equal(t, "LIST", string(tail[0:4]))
	require.Equal(t, uint32(len(tail)-8), binary.LittleEndian.Uint32(tail[4:8]))
	require.Equal(t, "INFO", string(tail[8:12]))
	require.Equal(t, "ICMT", string(tail[12:16]))
	fieldLen := binary.LittleEndian.Uint32(tail[16:20])
	require.Equal(t, uint32(len(comment)+1), fieldLen)
	require.Equal(t, comment, string(bytes.TrimRight(tail[20:], "\x00")))

	// Audio payload still decodes identically.
	info, got, err := wavfile.ReadFloat32(path)
	require.NoError(t, err)
	require.Equal(t, 150, info.Frames)
	require.Equal(t, samples, got)

	chunks, err := wavfile.Chunks(path)
	require.NoError(t, err)
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	require.Equal(t, "LIST", ids[len(ids)-1])
	require.Contains(t, ids, "data")
	last := chunks[len(chunks)-1]
	require.Equal(t, int64(len(before)), last.Offset)
}

func TestAppendInfoCommentOddLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")
	require.NoError(t, wavfile.WriteFloat32(path, 48000, 1, ramp(10, 0.01)))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// "abc" + NUL is even; "abcd" + NUL needs a pad byte.
	require.NoError(t, wavfile.AppendInfoComment(path, "abcd"))
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	tail := after[len(before):]
	require.Len(t, tail, 8+4+8+6)
	require.Equal(t, uint32(5), binary.LittleEndian.Uint32(tail[16:20]))
	require.Equal(t, []byte{'a', 'b', 'c', 'd', 0, 0}, tail[20:])
}

func TestAppendInfoCommentRejectsNonRIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.bin")
	original := []byte("not a wave container")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	require.ErrorIs(t, wavfile.AppendInfoComment(path, "x"), wavfile.ErrNotWAV)
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, after)
}

func TestOddLength8BitDropsPadByte(t *testing.T) {
	data := []byte{128, 192, 64, 255, 1}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+(8+16)+(8+len(data)+1)))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(wavfile.FormatPCM))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))    // channels
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8000)) // rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8000)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))    // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(8))    // bits
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	buf.WriteByte(0)

	path := filepath.Join(t.TempDir(), "odd.wav")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	info, err := wavfile.Probe(path)
	require.NoError(t, err)
	require.Equal(t, 5, info.Frames)

	track, err := wavfile.ReadMono(path)
	require.NoError(t, err)
	require.Equal(t, 5, track.Frames)
	require.Equal(t, []float32{0, 0.5, -0.5, 0.9921875, -0.9921875}, track.Samples)
}
