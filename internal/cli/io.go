package cli

import (
	"fmt"
	"io"
)

// IO is a command's view of stdout and stderr.
//
// Record output (one "<idx>\t<value>" or "key=value" line per Println) goes
// to stdout. Warnings such as a dump offset past the last record are
// collected and go to stderr: once before the first stdout line, and again
// from [IO.Finish], so a warning is still seen when a long dump is cut by
// head or tail.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	flushed  bool
}

// NewIO returns an IO writing records to out and diagnostics to errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a non-fatal problem and what to do about it. Output already
// written stays valid; the command exits with code 1.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, issue+": "+action)
}

// Println writes one line to stdout.
func (o *IO) Println(a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes one line to stderr, bypassing warning collection.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish repeats collected warnings on stderr and returns the exit code:
// 1 if anything was warned about, 0 otherwise.
func (o *IO) Finish() int {
	o.flushWarnings()

	if len(o.warnings) == 0 {
		return 0
	}

	o.printWarnings()

	return 1
}

// flushWarnings prints warnings ahead of the first stdout line.
func (o *IO) flushWarnings() {
	if o.flushed || len(o.warnings) == 0 {
		return
	}

	o.flushed = true
	o.printWarnings()
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}
