package wavfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/riff"
)

const (
	riffSizeOffset = 4
	riffHeaderLen  = 12
)

// ChunkInfo locates one top-level chunk. Size is the padded payload length.
type ChunkInfo struct {
	ID     string
	Offset int64
	Size   int
}

// Chunks lists the top-level chunks of a RIFF/WAVE file in file order.
func Chunks(path string) ([]ChunkInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parser := riff.New(f)
	if err := parser.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotWAV, path, err)
	}
	if parser.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%w: %s: form type %q", ErrNotWAV, path, parser.Format[:])
	}

	var out []ChunkInfo
	offset := int64(riffHeaderLen)
	for {
		chunk, err := parser.NextChunk()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read chunk at %d: %w", path, offset, err)
		}
		out = append(out, ChunkInfo{ID: string(chunk.ID[:]), Offset: offset, Size: chunk.Size})
		chunk.Drain()
		offset += 8 + int64(chunk.Size)
	}
}

// AppendInfoComment appends a LIST/INFO chunk holding a single ICMT comment
// at the end of the file and rewrites the RIFF size field at offset 4. No
// other existing byte is modified.
func AppendInfoComment(path, comment string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, riffHeaderLen)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotWAV, path, err)
	}
	if !bytes.Equal(header[0:4], riff.RiffID[:]) || !bytes.Equal(header[8:12], riff.WavFormatID[:]) {
		return fmt.Errorf("%w: %s", ErrNotWAV, path)
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}
	end := info.Size()

	var chunk bytes.Buffer
	// RIFF chunks start on even offsets.
	if end%2 == 1 {
		chunk.WriteByte(0)
	}
	chunk.Write(infoListChunk(comment))

	newSize := end + int64(chunk.Len())
	if newSize-8 > math.MaxUint32 {
		return fmt.Errorf("%s: file too large for RIFF size field", path)
	}
	if _, err := f.WriteAt(chunk.Bytes(), end); err != nil {
		return fmt.Errorf("append LIST chunk: %w", err)
	}
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(newSize-8))
	if _, err := f.WriteAt(size, riffSizeOffset); err != nil {
		return fmt.Errorf("rewrite RIFF size: %w", err)
	}
	return f.Close()
}

// infoListChunk encodes LIST{INFO{ICMT}}. The comment is NUL-terminated and
// padded to an even length; the pad byte is not counted in the ICMT size.
func infoListChunk(comment string) []byte {
	text := append([]byte(comment), 0)
	field := uint32(len(text))
	if len(text)%2 == 1 {
		text = append(text, 0)
	}

	var buf bytes.Buffer
	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(text)))
	buf.WriteString("INFO")
	buf.WriteString("ICMT")
	binary.Write(&buf, binary.LittleEndian, field)
	buf.Write(text)
	return buf.Bytes()
}
