package config

import (
	"errors"
	"fmt"

	"mcat/internal/channels"
	"mcat/internal/format"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDecode() error {
	if _, err := channels.Lookup(c.Decode.Channels); err != nil {
		return fmt.Errorf("decode.channels: %w", err)
	}
	if c.Decode.Format != "" {
		if _, err := format.ParseCodec(c.Decode.Format); err != nil {
			return fmt.Errorf("decode.format: %w", err)
		}
	}
	if c.Decode.Jobs < 0 {
		return errors.New("decode.jobs must be zero (automatic) or positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Metadata {
	case MetadataSidecar, MetadataChunk, MetadataNone:
	default:
		return fmt.Errorf("output.metadata: unsupported value %q (want sidecar, chunk or none)", c.Output.Metadata)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
