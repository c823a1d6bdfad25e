package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"mcat/internal/deps"
)

// ErrPipelineFailed reports a decoder subprocess that could not start or exited non-zero.
var ErrPipelineFailed = errors.New("gstreamer pipeline failed")

const stderrTailBytes = 2048

// Executor abstracts subprocess execution for testability.
type Executor interface {
	Run(ctx context.Context, argv []string, env []string) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, argv []string, env []string) error

// Run calls f.
func (f ExecutorFunc) Run(ctx context.Context, argv []string, env []string) error {
	return f(ctx, argv, env)
}

type commandExecutor struct{}

// NewCommandExecutor returns the default subprocess executor. Standard output
// is discarded; the tail of standard error is attached to failures.
func NewCommandExecutor() Executor {
	return commandExecutor{}
}

func (commandExecutor) Run(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("%w: empty command", ErrPipelineFailed)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	tail := &tailBuffer{limit: stderrTailBytes}
	cmd.Stdout = io.Discard
	cmd.Stderr = tail

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(tail.String()); msg != "" {
			return fmt.Errorf("%w: %w: %s", ErrPipelineFailed, err, msg)
		}
		return fmt.Errorf("%w: %w", ErrPipelineFailed, err)
	}
	return nil
}

// Environment returns the variables the decoder needs on top of the process
// environment: the bundled plugin libraries prepended to the loader search
// path and the plugin scanner location.
func Environment(tools deps.Toolchain, getenv func(string) string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}
	var env []string
	if tools.LibraryDir != "" {
		key := "LD_LIBRARY_PATH"
		if runtime.GOOS == "darwin" {
			key = "DYLD_LIBRARY_PATH"
		}
		value := tools.LibraryDir
		if existing := getenv(key); existing != "" {
			value += string(os.PathListSeparator) + existing
		}
		env = append(env, key+"="+value)
	}
	if tools.Scanner != "" {
		env = append(env, "GST_PLUGIN_SCANNER="+tools.Scanner)
	}
	return env
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
