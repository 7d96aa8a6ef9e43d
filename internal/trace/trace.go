// Package trace defines the diagnostic-tracing boundary: a Sink the
// interpreter reports every executed instruction to. Where that trace
// output goes (a terminal, a file, nowhere) is the CLI's decision, not
// the core's, hence the interface.
package trace

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rasp-lang/rasp/internal/source"
)

// Sink receives one notification per executed instruction plus one
// per completed top-level compilation unit.
type Sink interface {
	Instruction(loc source.Location, text string)
	UnitComplete(name string, elapsed time.Duration)
}

// NopSink discards everything; it is the Interpreter's default so
// tracing has zero cost unless --trace is given.
type NopSink struct{}

func (NopSink) Instruction(source.Location, string) {}
func (NopSink) UnitComplete(string, time.Duration)  {}

// WriterSink writes one line per instruction to w, and a humanized
// elapsed-time summary line per completed unit — the reference
// implementation the CLI wires up for --trace.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Instruction(loc source.Location, text string) {
	fmt.Fprintf(s.W, "DEBUG: %s %s\n", loc, text)
}

func (s WriterSink) UnitComplete(name string, elapsed time.Duration) {
	fmt.Fprintf(s.W, "DEBUG: %s finished in %s\n", name, humanize.SIWithDigits(elapsed.Seconds(), 3, "s"))
}
