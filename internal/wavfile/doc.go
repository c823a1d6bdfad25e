// Package wavfile reads and writes the uncompressed RIFF/WAVE containers that
// flow between the decoder, the channel merger, and the FLAC adapter.
//
// Header parsing and encoding go through go-audio/wav; sample payloads are
// decoded here so IEEE float and integer PCM share one normalized float32
// representation. AppendInfoComment is the only operation that edits an
// existing file, and it is limited to appending a LIST/INFO chunk and
// rewriting the RIFF size field.
package wavfile
