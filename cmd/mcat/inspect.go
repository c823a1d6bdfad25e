package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mcat/internal/merge"
	"mcat/internal/wavfile"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <wav>...",
		Short:       "查看 WAV 文件头与数据块/Show WAV header, chunks and channel metadata",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failures []error
			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := inspectFile(out, path); err != nil {
					failures = append(failures, fmt.Errorf("%s: %w", path, err))
				}
			}
			return errors.Join(failures...)
		},
	}
}

func inspectFile(out io.Writer, path string) error {
	info, err := wavfile.Probe(path)
	if err != nil {
		return err
	}
	chunks, err := wavfile.Chunks(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", path)
	fmt.Fprintf(out, "  Channels:    %d\n", info.Channels)
	fmt.Fprintf(out, "  Sample rate: %d Hz\n", info.SampleRate)
	fmt.Fprintf(out, "  Format:      %d-bit %s\n", info.BitDepth, info.Format)
	fmt.Fprintf(out, "  Frames:      %d\n", info.Frames)
	if info.SampleRate > 0 {
		seconds := float64(info.Frames) / float64(info.SampleRate)
		fmt.Fprintf(out, "  Duration:    %.3fs\n", seconds)
	}

	rows := make([][]string, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, []string{strings.TrimSpace(c.ID), strconv.FormatInt(c.Offset, 10), strconv.Itoa(c.Size)})
	}
	fmt.Fprintln(out, renderTable([]string{"Chunk", "Offset", "Size"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))

	sidecarPath := merge.SidecarPath(path)
	sidecar, err := merge.ReadSidecar(sidecarPath)
	switch {
	case err == nil:
		fmt.Fprintf(out, "  Layout:      %s (%s)\n", sidecar.ChannelConfig, sidecarPath)
		fmt.Fprintf(out, "  Labels:      %s\n", strings.Join(sidecar.Channels, ", "))
	case errors.Is(err, os.ErrNotExist):
	default:
		fmt.Fprintf(out, "  Sidecar:     unreadable (%v)\n", err)
	}
	return nil
}
