// Package format identifies the bitstream codec of an input file so the
// decoder pipeline can pick the matching parser element.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Codec names a supported input bitstream.
type Codec int

const (
	EAC3 Codec = iota + 1
	TrueHD
)

const headerLen = 10

var (
	// ErrUnknownCodec reports an explicit codec name that is not supported.
	ErrUnknownCodec = errors.New("unknown audio format")
	// ErrUndetectable reports a file whose header matches no known sync word.
	ErrUndetectable = errors.New("audio format detection failed")
)

var (
	eac3Sync   = []byte{0x0B, 0x77}
	truehdSync = []byte{0xF8, 0x72, 0x6F, 0xBA}
)

func (c Codec) String() string {
	switch c {
	case EAC3:
		return "eac3"
	case TrueHD:
		return "truehd"
	default:
		return "unknown"
	}
}

// ParseCodec maps "eac3" or "truehd" (any case) to a Codec.
func ParseCodec(value string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "eac3":
		return EAC3, nil
	case "truehd":
		return TrueHD, nil
	default:
		return 0, fmt.Errorf("%w: 未知格式/Unknown format: %s", ErrUnknownCodec, value)
	}
}

// Detect returns the explicit codec when given, otherwise sniffs the file header.
func Detect(path, explicit string) (Codec, error) {
	if strings.TrimSpace(explicit) != "" {
		return ParseCodec(explicit)
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: 无法打开文件/Cannot open file: %w", ErrUndetectable, err)
	}
	defer file.Close()

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(file, header); err != nil {
		return 0, fmt.Errorf("%w: 无法读取文件头/Cannot read file header: %w", ErrUndetectable, err)
	}
	return Sniff(header)
}

// Sniff classifies a header buffer. E-AC3 must start at offset 0; the TrueHD
// major sync may appear anywhere in the first ten bytes.
func Sniff(header []byte) (Codec, error) {
	if bytes.HasPrefix(header, eac3Sync) {
		return EAC3, nil
	}
	if len(header) > headerLen {
		header = header[:headerLen]
	}
	if bytes.Contains(header, truehdSync) {
		return TrueHD, nil
	}
	return 0, fmt.Errorf("%w: 无法检测音频格式，请用 --format 指定/Could not detect audio format. Specify with --format", ErrUndetectable)
}
