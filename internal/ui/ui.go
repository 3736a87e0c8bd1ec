// Package ui renders CLI status and result lines at three verbosity
// levels. All console presentation lives here and in cmd; the library
// packages never print.
package ui

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Level selects how much the CLI says.
type Level int

const (
	Quiet Level = iota
	Normal
	Verbose
)

// LevelFromFlags maps the -v/-q flags to a level. Quiet wins when both
// are set.
func LevelFromFlags(verbose, quiet bool) Level {
	switch {
	case quiet:
		return Quiet
	case verbose:
		return Verbose
	default:
		return Normal
	}
}

// Printer writes leveled status lines.
type Printer struct {
	level Level
	out   io.Writer
}

func NewPrinter(level Level, out io.Writer) *Printer {
	return &Printer{level: level, out: out}
}

func (p *Printer) Level() Level { return p.level }

// Status prints a progress line unless quiet.
func (p *Printer) Status(format string, args ...any) {
	if p.level == Quiet {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Verbosef prints only at the verbose level.
func (p *Printer) Verbosef(format string, args ...any) {
	if p.level != Verbose {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

var (
	okGlyph   = color.New(color.FgGreen, color.Bold).Sprint("✓")
	infoGlyph = color.New(color.FgCyan).Sprint("·")
	pathTint  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Ok returns the success glyph.
func Ok() string { return okGlyph }

// Info returns the detail-line glyph.
func Info() string { return infoGlyph }

// Path tints a filesystem path for display.
func Path(p string) string { return pathTint(p) }

// Bytes renders a byte count in human form.
func Bytes(n uint64) string { return humanize.Bytes(n) }

// Reduction renders how much smaller a patch is than the file it
// reproduces, e.g. "(96.2% smaller)". Growth and a zero original are
// reported plainly instead of with a bogus percentage.
func Reduction(original, patch uint64) string {
	if original == 0 {
		return "(no size change)"
	}
	if patch >= original {
		return fmt.Sprintf("(%s larger than target)", humanize.Bytes(patch-original))
	}
	pct := 100 * float64(original-patch) / float64(original)
	return fmt.Sprintf("(%.1f%% smaller)", pct)
}
