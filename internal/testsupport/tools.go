package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mcat/internal/deps"
)

// WriteToolsDir lays out a decoder bundle at base with a no-op gst-launch.
func WriteToolsDir(t testing.TB, base string) string {
	t.Helper()

	launch := filepath.Join(base, "gstreamer", "bin", "gst-launch-1.0")
	StubBinaries(t, filepath.Dir(launch), "#!/bin/sh\nexit 0\n", filepath.Base(launch))
	if err := os.MkdirAll(filepath.Join(base, "gst-plugins"), 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	return base
}

// StubBinaries writes executable scripts with the given body into dir.
func StubBinaries(t testing.TB, dir, script string, names ...string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
}

// IsolatedLocate returns locate options that ignore the host environment,
// executable directory and any installed reference player.
func IsolatedLocate(t testing.TB) deps.LocateOptions {
	t.Helper()

	empty := t.TempDir()
	return deps.LocateOptions{
		Getenv:          func(string) string { return "" },
		ExecutableDir:   empty,
		WorkDir:         empty,
		ReferencePlayer: filepath.Join(empty, "player"),
	}
}
