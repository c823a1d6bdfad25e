package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mcat/internal/config"
	"mcat/internal/deps"
	"mcat/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if value := flagValue(c.logLevelFlag); value != "" {
			cfg.Logging.Level = strings.ToLower(value)
		}
		if value := flagValue(c.logFormatFlag); value != "" {
			cfg.Logging.Format = strings.ToLower(value)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(runID string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// locateOptions merges the --dolby-tools flag over the [tools] section.
func (c *commandContext) locateOptions(toolsFlag string) deps.LocateOptions {
	opts := deps.LocateOptions{}
	if cfg, err := c.ensureConfig(); err == nil {
		opts.ToolsDir = cfg.Tools.DolbyTools
		opts.GstLaunch = cfg.Tools.GstLaunch
		opts.GstPlugin = cfg.Tools.GstPlugins
	}
	if dir := strings.TrimSpace(toolsFlag); dir != "" {
		opts.ToolsDir = dir
	}
	return opts
}

func flagValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return strings.TrimSpace(*ptr)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
