package firvharden

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Diagnostics is the pass's diagnostic stream (§6 of spec.md: "human-readable
// messages on the host's error and debug streams... not part of the stable
// interface"). Declinef reports why a function was left unchanged; Warnf
// reports everything else (comparator recursion, argument rematerialization),
// the Go-side analog of the original pass's dbgs() tracing.
type Diagnostics interface {
	Declinef(format string, args ...any)
	Warnf(format string, args ...any)
}

// StreamDiagnostics writes to an io.Writer, optionally colorized the way
// vovakirdan-surge colorizes its CLI-facing diagnostics with fatih/color.
type StreamDiagnostics struct {
	W     io.Writer
	Color bool
}

// NewStderrDiagnostics returns a Diagnostics sink writing to os.Stderr.
func NewStderrDiagnostics(colorize bool) Diagnostics {
	return &StreamDiagnostics{W: os.Stderr, Color: colorize}
}

func (d *StreamDiagnostics) Declinef(format string, args ...any) {
	d.emit(color.New(color.FgYellow), "declined: ", format, args...)
}

func (d *StreamDiagnostics) Warnf(format string, args ...any) {
	d.emit(color.New(color.FgCyan), "note: ", format, args...)
}

func (d *StreamDiagnostics) emit(c *color.Color, prefix, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	if d.Color {
		c.Fprintln(d.W, msg)
		return
	}
	fmt.Fprintln(d.W, msg)
}

// noopDiagnostics discards everything; used when a caller doesn't pass one.
type noopDiagnostics struct{}

func (noopDiagnostics) Declinef(string, ...any) {}
func (noopDiagnostics) Warnf(string, ...any)    {}
