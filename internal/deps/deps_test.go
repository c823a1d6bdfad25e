package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := Resolve(
		Requirement{Name: "Present", Command: present},
		Requirement{Name: "Missing", Command: "clearly-not-present-binary"},
		Requirement{Name: "Blank", Command: "  "},
	)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available() || results[0].Path != present {
		t.Fatalf("expected first requirement to resolve to %s, got %#v", present, results[0])
	}
	if results[1].Available() || !errors.Is(results[1].Err, ErrBinaryMissing) {
		t.Fatalf("expected missing binary error, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" || results[1].Path != "" {
		t.Fatalf("unexpected command recorded: %#v", results[1])
	}
	if !errors.Is(results[2].Err, ErrNotConfigured) {
		t.Fatalf("expected not configured error for blank command, got %v", results[2].Err)
	}
}

func TestFlacRequirement(t *testing.T) {
	if req := FlacRequirement("flac", false); req.Required {
		t.Fatalf("flac must be optional when FLAC output is off: %+v", req)
	}
	req := FlacRequirement("/opt/flac", true)
	if !req.Required || req.Command != "/opt/flac" || req.Name != "FLAC encoder" {
		t.Fatalf("unexpected requirement %+v", req)
	}
}

func TestDecoderRequirement(t *testing.T) {
	req := DecoderRequirement(Toolchain{GstLaunch: "/x/gst-launch-1.0", Source: "environment"})
	if !req.Required || req.Command != "/x/gst-launch-1.0" {
		t.Fatalf("unexpected requirement %+v", req)
	}
	if req.Purpose != "Dolby decode pipeline, from environment" {
		t.Fatalf("unexpected purpose %q", req.Purpose)
	}
}

func writeToolsDir(t *testing.T, base string, withLibs bool) {
	t.Helper()
	launch := filepath.Join(base, "gstreamer", "bin", "gst-launch-1.0")
	if err := os.MkdirAll(filepath.Dir(launch), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(launch, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write launch stub: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(base, "gst-plugins"), 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	if withLibs {
		if err := os.MkdirAll(filepath.Join(base, "gst-plugins-libs"), 0o755); err != nil {
			t.Fatalf("mkdir libs: %v", err)
		}
	}
}

func isolated(t *testing.T, env map[string]string) LocateOptions {
	empty := t.TempDir()
	return LocateOptions{
		Getenv:          func(key string) string { return env[key] },
		ExecutableDir:   empty,
		WorkDir:         empty,
		ReferencePlayer: filepath.Join(empty, "player"),
	}
}

func TestLocateExplicitToolsDir(t *testing.T) {
	base := t.TempDir()
	writeToolsDir(t, base, true)

	opts := isolated(t, nil)
	opts.ToolsDir = base
	tc, err := Locate(opts)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if tc.GstLaunch != filepath.Join(base, "gstreamer", "bin", "gst-launch-1.0") {
		t.Fatalf("unexpected launch path %q", tc.GstLaunch)
	}
	if tc.LibraryDir == "" {
		t.Fatal("expected library dir to be discovered")
	}
}

func TestLocateInvalidExplicitDirDoesNotFallThrough(t *testing.T) {
	good := t.TempDir()
	writeToolsDir(t, good, false)

	opts := isolated(t, map[string]string{envToolsDir: good})
	opts.ToolsDir = t.TempDir()
	if _, err := Locate(opts); !errors.Is(err, ErrToolsNotFound) {
		t.Fatalf("expected ErrToolsNotFound, got %v", err)
	}
}

func TestLocateEnvironmentOrder(t *testing.T) {
	base := t.TempDir()
	writeToolsDir(t, base, false)
	launch := filepath.Join(base, "gstreamer", "bin", "gst-launch-1.0")
	plugins := filepath.Join(base, "gst-plugins")

	opts := isolated(t, map[string]string{envGstLaunch: launch, envGstPlugins: plugins})
	tc, err := Locate(opts)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if tc.Source != "environment" {
		t.Fatalf("expected environment source, got %q", tc.Source)
	}

	opts = isolated(t, map[string]string{envToolsDir: base})
	tc, err = Locate(opts)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if tc.Source != envToolsDir {
		t.Fatalf("expected %s source, got %q", envToolsDir, tc.Source)
	}
}

func TestLocateExecutableDir(t *testing.T) {
	exeDir := t.TempDir()
	writeToolsDir(t, filepath.Join(exeDir, "dolby-tools"), false)

	opts := isolated(t, nil)
	opts.ExecutableDir = exeDir
	tc, err := Locate(opts)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if tc.Source != "executable directory" {
		t.Fatalf("unexpected source %q", tc.Source)
	}
}

func TestLocateNotFound(t *testing.T) {
	if _, err := Locate(isolated(t, nil)); !errors.Is(err, ErrToolsNotFound) {
		t.Fatalf("expected ErrToolsNotFound, got %v", err)
	}
}
