package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mcat/internal/format"
)

// ErrNoInputs reports a lazy scan that found nothing to convert.
var ErrNoInputs = errors.New("no suitable input file found")

// minCandidateBytes is the shortest file worth sniffing.
const minCandidateBytes = 4

// ScanCandidates lists regular files in dir (non-recursive) whose header
// sniffs as E-AC3 or TrueHD, oldest modification time first.
func ScanCandidates(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	type candidate struct {
		path  string
		mtime time.Time
	}
	var found []candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() < minCandidateBytes {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := format.Detect(path, ""); err != nil {
			continue
		}
		found = append(found, candidate{path: path, mtime: info.ModTime()})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].mtime.Equal(found[j].mtime) {
			return found[i].path < found[j].path
		}
		return found[i].mtime.Before(found[j].mtime)
	})
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.path
	}
	return out
}

// LazyInputs scans workDir, falling back to exeDir when workDir has no
// candidates.
func LazyInputs(workDir, exeDir string) ([]string, error) {
	if inputs := ScanCandidates(workDir); len(inputs) > 0 {
		return inputs, nil
	}
	if exeDir != "" && exeDir != workDir {
		if inputs := ScanCandidates(exeDir); len(inputs) > 0 {
			return inputs, nil
		}
	}
	return nil, fmt.Errorf("%w: 未找到可用输入文件/No suitable input file found in %s", ErrNoInputs, workDir)
}

// PrepareBatchDir returns the directory that receives every output of a
// multi-input run, creating it when missing. Single-input runs and runs
// without an output path return "".
func PrepareBatchDir(inputs []string, output string) (string, error) {
	if len(inputs) <= 1 || strings.TrimSpace(output) == "" {
		return "", nil
	}
	info, err := os.Stat(output)
	switch {
	case err == nil && info.IsDir():
		return output, nil
	case err == nil:
		return "", fmt.Errorf("批处理时 --output 必须为目录/--output must be a directory in batch mode: %s", output)
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("stat output directory: %w", err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return output, nil
}

// OutputBase is the path whose extension the decoder replaces with channel
// suffixes. An empty result means "next to the input". Batch bases carry a
// ".wav" extension so dotted stems such as "show.s01" survive intact.
func OutputBase(input, batchDir, output string) string {
	if batchDir != "" {
		return filepath.Join(batchDir, stem(input)+".wav")
	}
	return output
}

// MergedPath is where the interleaved WAV for input is written.
func MergedPath(input, batchDir, output string) string {
	switch {
	case batchDir != "":
		return filepath.Join(batchDir, stem(input)+".wav")
	case output != "":
		return replaceExt(output, ".wav")
	default:
		return replaceExt(input, ".wav")
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	if s := strings.TrimSuffix(base, filepath.Ext(base)); s != "" {
		return s
	}
	return "output"
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
