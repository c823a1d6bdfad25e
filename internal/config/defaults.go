package config

const (
	defaultConfigPath = "~/.config/mcat/config.toml"
	projectConfigName = "mcat.toml"
	defaultChannels   = "9.1.6"
	defaultFlacBinary = "flac"
	defaultMetadata   = MetadataSidecar
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Metadata modes for the merged WAV.
const (
	MetadataSidecar = "sidecar"
	MetadataChunk   = "chunk"
	MetadataNone    = "none"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FlacBinary: defaultFlacBinary,
		},
		Decode: Decode{
			Channels: defaultChannels,
		},
		Output: Output{
			Metadata: defaultMetadata,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
