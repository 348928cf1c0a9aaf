// Package ux talks to the operator on the terminal: progress of a dump,
// and prompts for manual steps.
package ux

import (
	"io"

	"github.com/pkg/term"

	"github.com/ezrec/promdump/prom"
	"github.com/ezrec/promdump/stream"
	"github.com/ezrec/promdump/translate"
)

const DEFAULT_TTY = "/dev/tty"

var f = translate.From

// Progress renders a percentage on a single, rewritten, line.
type Progress struct {
	Output io.Writer
	Label  string

	last int
	seen bool
}

var _ stream.ProgressReporter = (*Progress)(nil)

// Progress renders percent, if it changed since the last call. The line
// is terminated once 100% is reached.
func (pg *Progress) Progress(percent int) {
	if pg.seen && percent == pg.last {
		return
	}
	pg.last = percent
	pg.seen = true

	translate.Fprintf(pg.Output, "\r%s %3d%%", pg.Label, percent)
	if percent >= 100 {
		io.WriteString(pg.Output, "\n")
		pg.seen = false
	}
}

// Prompter shows a message, and waits for a key press.
type Prompter struct {
	Output io.Writer
	Input  io.Reader // Key presses; the terminal Device if nil.
	Device string    // Terminal device; DEFAULT_TTY if empty.
}

var _ prom.Prompter = (*Prompter)(nil)

// Prompt shows message, and waits for any key.
func (pt *Prompter) Prompt(message string) (err error) {
	_, err = translate.Fprintf(pt.Output, "%s\n%s ", message, f("Press any key to continue."))
	if err != nil {
		return
	}

	defer io.WriteString(pt.Output, "\n")

	if pt.Input != nil {
		_, err = io.ReadFull(pt.Input, make([]byte, 1))
		return
	}

	device := pt.Device
	if len(device) == 0 {
		device = DEFAULT_TTY
	}

	tty, err := term.Open(device, term.CBreakMode)
	if err != nil {
		return
	}
	defer tty.Close()
	defer tty.Restore()

	_, err = tty.Read(make([]byte, 1))

	return
}
