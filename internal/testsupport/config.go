package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Output and log directories exist; tool paths are left unset.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Output.Dir = filepath.Join(base, "out")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	for _, dir := range []string{cfgVal.Output.Dir, cfgVal.Logging.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFLAC enables FLAC output on the test config.
func WithFLAC() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.FLAC = true
	}
}

// WithToolsDir writes a fake decoder bundle under the base directory and
// points the config at it.
func WithToolsDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.DolbyTools = WriteToolsDir(b.t, filepath.Join(b.baseDir, "dolby-tools"))
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the flac encoder is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"flac"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		StubBinaries(b.t, binDir, "#!/bin/sh\nexit 0\n", names...)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
