package main

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mcat/internal/pipeline"
)

func renderSummary(summary pipeline.Summary) string {
	headers := []string{"Input", "Status", "Codec", "Channels", "Outputs", "Size", "Elapsed"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight}

	rows := make([][]string, 0, len(summary.Files))
	for _, file := range summary.Files {
		rows = append(rows, []string{
			filepath.Base(file.Input),
			statusCell(file),
			dash(file.Codec),
			countCell(file.Channels),
			outputsCell(file.Outputs),
			sizeCell(file.Bytes),
			file.Elapsed.Round(10 * time.Millisecond).String(),
		})
	}
	return renderTable(headers, rows, aligns)
}

func statusCell(file pipeline.FileResult) string {
	status := string(file.Status)
	if len(file.Warnings) > 0 {
		status += " (" + strconv.Itoa(len(file.Warnings)) + " warn)"
	}
	return status
}

// outputsCell lists at most three file names to keep rows readable.
func outputsCell(outputs []string) string {
	const limit = 3
	if len(outputs) == 0 {
		return "-"
	}
	names := make([]string, 0, limit+1)
	for i, path := range outputs {
		if i == limit {
			names = append(names, "+"+strconv.Itoa(len(outputs)-limit)+" more")
			break
		}
		names = append(names, filepath.Base(path))
	}
	return strings.Join(names, ", ")
}

func countCell(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func sizeCell(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
