package merge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcat/internal/channels"
)

// Sidecar is the JSON document written next to a merged WAV.
type Sidecar struct {
	ChannelConfig string   `json:"channel_config"`
	NumChannels   int      `json:"num_channels"`
	Channels      []string `json:"channels"`
	SampleRate    int      `json:"sample_rate"`
	BitsPerSample int      `json:"bits_per_sample"`
	SampleFormat  string   `json:"sample_format"`
}

// SidecarPath replaces the output extension with ".json".
func SidecarPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".json"
}

// WriteSidecar records the layout for output and returns the sidecar path.
func WriteSidecar(output string, layout channels.Layout, sampleRate int) (string, error) {
	doc := Sidecar{
		ChannelConfig: layout.Name,
		NumChannels:   layout.Count(),
		Channels:      layout.Labeled(),
		SampleRate:    sampleRate,
		BitsPerSample: outputBits,
		SampleFormat:  "float",
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("无法序列化元数据/Cannot serialize metadata: %w", err)
	}
	path := SidecarPath(output)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("无法写入元数据文件/Cannot write metadata file: %w", err)
	}
	return path, nil
}

// ReadSidecar loads a sidecar written by WriteSidecar.
func ReadSidecar(path string) (Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sidecar{}, err
	}
	var doc Sidecar
	if err := json.Unmarshal(data, &doc); err != nil {
		return Sidecar{}, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return doc, nil
}
