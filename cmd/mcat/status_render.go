package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mcat/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// statusStyles maps each kind to its bracketed tag and ANSI color.
var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const checkLabelWidth = 18

// renderStatusLine formats one `mcat check` row, e.g.
// "  FLAC encoder:      [WARN] ...".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %-*s [%s]", checkLabelWidth, label+":", style.tag)
	if message != "" {
		b.WriteString(" " + message)
	}
	if !colorize {
		return b.String()
	}
	return style.color + b.String() + ansiReset
}

// resultKind grades a preflight result: optional failures only warn.
func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func renderResults(w io.Writer, results []preflight.Result, colorize bool) {
	for _, r := range results {
		fmt.Fprintln(w, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
