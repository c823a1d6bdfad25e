package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	envMaxPar   = "MCAT_MAX_PAR"
	envFlac     = "MCAT_FLAC"
	envLogLevel = "MCAT_LOG_LEVEL"
)

func (c *Config) normalize() error {
	if err := c.normalizeTools(); err != nil {
		return err
	}
	if err := c.normalizeDecode(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeTools() error {
	var err error
	if c.Tools.DolbyTools, err = expandPath(strings.TrimSpace(c.Tools.DolbyTools)); err != nil {
		return fmt.Errorf("tools.dolby_tools: %w", err)
	}
	if c.Tools.GstLaunch, err = expandPath(strings.TrimSpace(c.Tools.GstLaunch)); err != nil {
		return fmt.Errorf("tools.gst_launch: %w", err)
	}
	if c.Tools.GstPlugins, err = expandPath(strings.TrimSpace(c.Tools.GstPlugins)); err != nil {
		return fmt.Errorf("tools.gst_plugins: %w", err)
	}
	c.Tools.FlacBinary = strings.TrimSpace(c.Tools.FlacBinary)
	if value, ok := os.LookupEnv(envFlac); ok && strings.TrimSpace(value) != "" {
		c.Tools.FlacBinary = strings.TrimSpace(value)
	}
	if c.Tools.FlacBinary == "" {
		c.Tools.FlacBinary = defaultFlacBinary
	}
	return nil
}

func (c *Config) normalizeDecode() error {
	c.Decode.Channels = strings.TrimSpace(c.Decode.Channels)
	if c.Decode.Channels == "" {
		c.Decode.Channels = defaultChannels
	}
	c.Decode.Format = strings.ToLower(strings.TrimSpace(c.Decode.Format))
	if c.Decode.Format == "auto" {
		c.Decode.Format = ""
	}
	if c.Decode.Jobs == 0 {
		if value, ok := os.LookupEnv(envMaxPar); ok && strings.TrimSpace(value) != "" {
			jobs, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("%s: %w", envMaxPar, err)
			}
			c.Decode.Jobs = jobs
		}
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	var err error
	if c.Output.Dir, err = expandPath(strings.TrimSpace(c.Output.Dir)); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	c.Output.Metadata = strings.ToLower(strings.TrimSpace(c.Output.Metadata))
	if c.Output.Metadata == "" {
		c.Output.Metadata = defaultMetadata
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
