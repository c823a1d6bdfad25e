package decode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"mcat/internal/deps"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-gst")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestCommandExecutorCapturesStderrTail(t *testing.T) {
	script := writeScript(t, "echo 'no element dlbaudiodecbin' >&2\nexit 1\n")

	err := NewCommandExecutor().Run(context.Background(), []string{script}, nil)
	if !errors.Is(err, ErrPipelineFailed) {
		t.Fatalf("expected ErrPipelineFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "no element dlbaudiodecbin") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestCommandExecutorPassesEnvironment(t *testing.T) {
	out := filepath.Join(t.TempDir(), "env.txt")
	script := writeScript(t, "printf '%s' \"$GST_PLUGIN_SCANNER\" > \"$1\"\n")

	if err := NewCommandExecutor().Run(context.Background(), []string{script, out}, []string{"GST_PLUGIN_SCANNER=/opt/scanner"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read env capture: %v", err)
	}
	if string(data) != "/opt/scanner" {
		t.Fatalf("GST_PLUGIN_SCANNER = %q", data)
	}
}

func TestCommandExecutorRejectsEmptyCommand(t *testing.T) {
	if err := NewCommandExecutor().Run(context.Background(), nil, nil); !errors.Is(err, ErrPipelineFailed) {
		t.Fatalf("expected ErrPipelineFailed, got %v", err)
	}
}

func TestEnvironmentPrependsLibraryPath(t *testing.T) {
	key := "LD_LIBRARY_PATH"
	if runtime.GOOS == "darwin" {
		key = "DYLD_LIBRARY_PATH"
	}
	getenv := func(name string) string {
		if name == key {
			return "/usr/lib/existing"
		}
		return ""
	}
	env := Environment(deps.Toolchain{LibraryDir: "/opt/libs", Scanner: "/opt/scan"}, getenv)
	want := []string{
		key + "=/opt/libs" + string(os.PathListSeparator) + "/usr/lib/existing",
		"GST_PLUGIN_SCANNER=/opt/scan",
	}
	if strings.Join(env, "\n") != strings.Join(want, "\n") {
		t.Fatalf("Environment() = %q, want %q", env, want)
	}

	if env := Environment(deps.Toolchain{}, getenv); len(env) != 0 {
		t.Fatalf("expected no overrides without bundled libraries, got %q", env)
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	buf := &tailBuffer{limit: 8}
	_, _ = buf.Write([]byte("0123456789"))
	_, _ = buf.Write([]byte("ab"))
	if got := buf.String(); got != "456789ab" {
		t.Fatalf("tail = %q, want %q", got, "456789ab")
	}
}
