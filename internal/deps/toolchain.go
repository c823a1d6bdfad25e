package deps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrToolsNotFound reports that no usable decoder installation was found.
var ErrToolsNotFound = errors.New("dolby tools not found")

const (
	envGstLaunch  = "MCAT_GST_LAUNCH"
	envGstPlugins = "MCAT_GST_PLUGINS"
	envToolsDir   = "MCAT_DOLBY_TOOLS"

	toolsDirName    = "dolby-tools"
	gstLaunchRel    = "gstreamer/bin/gst-launch-1.0"
	pluginsRel      = "gst-plugins"
	pluginLibsRel   = "gst-plugins-libs"
	pluginScanRel   = "gstreamer/libexec/gstreamer-1.0/gst-plugin-scanner"
	referencePlayer = "/Applications/Dolby/Dolby Reference Player.app/Contents"
	playerLaunchRel = "Frameworks/GStreamer.framework/Versions/1_22/Resources/bin/gst-launch-1.0"
	playerPluginRel = "PlugIns/gst-plugins"
)

// Toolchain points at the decoder executable and its bundled plugins.
type Toolchain struct {
	GstLaunch string
	PluginDir string
	// LibraryDir is prepended to the dynamic loader search path when set.
	LibraryDir string
	// Scanner is exported as GST_PLUGIN_SCANNER when set.
	Scanner string
	// Source describes where the toolchain was found, for logging.
	Source string
}

// LocateOptions carries explicit overrides; empty fields fall through to
// environment and well-known locations.
type LocateOptions struct {
	ToolsDir  string
	GstLaunch string
	GstPlugin string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// ExecutableDir defaults to the directory of os.Executable.
	ExecutableDir string
	// WorkDir defaults to the process working directory.
	WorkDir string
	// ReferencePlayer defaults to the macOS Dolby Reference Player bundle.
	ReferencePlayer string
}

// Locate resolves the decoder toolchain. An explicit tools directory that does
// not have the expected layout is an error rather than a fallthrough.
func Locate(opts LocateOptions) (Toolchain, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if dir := strings.TrimSpace(opts.ToolsDir); dir != "" {
		if tc, ok := fromToolsDir(dir, "tools directory"); ok {
			return tc, nil
		}
		return Toolchain{}, fmt.Errorf("%w: --dolby-tools 路径无效，应包含 %s 与 %s/Invalid --dolby-tools path; expected %s and %s under %s",
			ErrToolsNotFound, gstLaunchRel, pluginsRel, gstLaunchRel, pluginsRel, dir)
	}

	if launch, plugins := strings.TrimSpace(opts.GstLaunch), strings.TrimSpace(opts.GstPlugin); launch != "" && plugins != "" {
		if exists(launch) && exists(plugins) {
			return Toolchain{GstLaunch: launch, PluginDir: plugins, Source: "config"}, nil
		}
	}

	if launch, plugins := strings.TrimSpace(getenv(envGstLaunch)), strings.TrimSpace(getenv(envGstPlugins)); launch != "" && plugins != "" {
		if exists(launch) && exists(plugins) {
			return Toolchain{GstLaunch: launch, PluginDir: plugins, Source: "environment"}, nil
		}
	}

	if base := strings.TrimSpace(getenv(envToolsDir)); base != "" {
		if tc, ok := fromToolsDir(base, envToolsDir); ok {
			return tc, nil
		}
	}

	exeDir := opts.ExecutableDir
	if exeDir == "" {
		if exe, err := os.Executable(); err == nil {
			exeDir = filepath.Dir(exe)
		}
	}
	if exeDir != "" {
		if tc, ok := fromToolsDir(filepath.Join(exeDir, toolsDirName), "executable directory"); ok {
			return tc, nil
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if workDir != "" {
		if tc, ok := fromToolsDir(filepath.Join(workDir, toolsDirName), "working directory"); ok {
			return tc, nil
		}
	}

	player := opts.ReferencePlayer
	if player == "" {
		player = referencePlayer
	}
	launch := filepath.Join(player, playerLaunchRel)
	plugins := filepath.Join(player, playerPluginRel)
	if exists(launch) && exists(plugins) {
		return Toolchain{GstLaunch: launch, PluginDir: plugins, Source: "Dolby Reference Player"}, nil
	}

	return Toolchain{}, fmt.Errorf("%w: 请设置 %s 或安装 Dolby Reference Player/set %s or install Dolby Reference Player",
		ErrToolsNotFound, envToolsDir, envToolsDir)
}

func fromToolsDir(base, source string) (Toolchain, bool) {
	launch := filepath.Join(base, filepath.FromSlash(gstLaunchRel))
	if runtime.GOOS == "windows" {
		launch += ".exe"
	}
	plugins := filepath.Join(base, pluginsRel)
	if !exists(launch) || !exists(plugins) {
		return Toolchain{}, false
	}
	tc := Toolchain{GstLaunch: launch, PluginDir: plugins, Source: source}
	if libs := filepath.Join(base, pluginLibsRel); exists(libs) {
		if abs, err := filepath.Abs(libs); err == nil {
			tc.LibraryDir = abs
		}
	}
	if scanner := filepath.Join(base, filepath.FromSlash(pluginScanRel)); exists(scanner) {
		tc.Scanner = scanner
	}
	return tc, true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
