package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"mcat/internal/config"
	"mcat/internal/deps"
)

// CheckDecoder resolves the Dolby decoder toolchain and confirms its
// launcher is executable.
func CheckDecoder(opts deps.LocateOptions) Result {
	tc, err := deps.Locate(opts)
	if err != nil {
		return Result{Name: deps.DecoderRequirement(tc).Name, Detail: err.Error()}
	}
	result := FromStatus(deps.Resolve(deps.DecoderRequirement(tc))[0])
	if result.Passed && tc.LibraryDir != "" {
		result.Detail += "; libs " + tc.LibraryDir
	}
	return result
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckEncoder resolves the flac encoder, required only when FLAC output is
// enabled in cfg.
func CheckEncoder(cfg *config.Config) []deps.Status {
	return deps.Resolve(deps.FlacRequirement(cfg.FlacBinary(), cfg.Output.FLAC))
}

// FromStatus converts a binary status into a preflight result.
func FromStatus(status deps.Status) Result {
	detail := status.Path
	if !status.Available() {
		detail = status.Err.Error()
	}
	if status.Purpose != "" {
		detail = fmt.Sprintf("%s (%s)", detail, status.Purpose)
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available(),
		Optional: !status.Required,
		Detail:   detail,
	}
}
