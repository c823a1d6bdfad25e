package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mcat/internal/wavfile"
)

// EAC3Header is the smallest prefix that sniffs as an E-AC3 bitstream.
var EAC3Header = []byte{0x0B, 0x77, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// TrueHDHeader carries the TrueHD major sync at offset 4.
var TrueHDHeader = []byte{0x00, 0x00, 0x00, 0x00, 0xF8, 0x72, 0x6F, 0xBA, 0x00, 0x00, 0x00, 0x00}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteBitstream writes header to dir/name and returns the path.
func WriteBitstream(t testing.TB, dir, name string, header []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, header, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteMonoWAV writes a 32-bit float mono WAV.
func WriteMonoWAV(t testing.TB, path string, rate int, samples []float32) {
	t.Helper()

	if err := wavfile.WriteFloat32(path, rate, 1, samples); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
