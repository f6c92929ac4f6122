package app

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sha1n/rift/internal/include"
	"github.com/sha1n/rift/internal/rift"
)

// colorScheme defines the colors used in the run summary.
type colorScheme struct {
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	label   *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{s.success, s.warn, s.fail, s.label} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// PrintSummary writes a short report of a run.
func PrintSummary(w io.Writer, report *rift.RunReport, colorize bool) {
	scheme := newColorScheme(colorize)

	written := scheme.success
	if report.FilesWritten < report.FilesRead {
		written = scheme.fail
	}
	_, _ = fmt.Fprintf(w, "%s %d read, %d resolved, %s\n",
		scheme.label.Sprint("files:"),
		report.FilesRead,
		len(report.Files),
		written.Sprintf("%d written", report.FilesWritten))

	if !report.HasWarnings() {
		return
	}

	_, _ = fmt.Fprintf(w, "%s", scheme.label.Sprint("warnings:"))
	sep := " "
	for _, kind := range []include.WarningKind{include.MissingInclude, include.DepthExhausted, include.SourceRead, include.SinkWrite} {
		count := report.CountDistinct(kind)
		if count == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s%s", sep, scheme.warn.Sprintf("%d %s", count, kind))
		sep = ", "
	}
	_, _ = fmt.Fprintln(w)
}
