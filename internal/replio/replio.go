// Package replio implements the interactive read-eval-print loop on
// top of pkg/rasp. A Session keeps one Machine alive across lines, so
// later lines see the globals, functions, and types defined by earlier
// ones.
package replio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rasp-lang/rasp/pkg/rasp"
)

// Session wraps one pkg/rasp.Machine, reused across Eval calls so a
// REPL accumulates `var`/`defun`/`type` definitions from line to line.
type Session struct {
	machine  *rasp.Machine
	filename string
}

// NewSession builds a Session whose programs' print/println output goes
// to out.
func NewSession(out io.Writer) *Session {
	return &Session{
		machine:  rasp.New(rasp.WithStdout(out)),
		filename: "<repl>",
	}
}

// Eval compiles and runs one line (or multi-line paste) against the
// session's accumulated globals, returning the resulting value.
func (s *Session) Eval(line string) (rasp.Value, error) {
	result, err := s.machine.Run(s.filename, line)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Prompt is printed before each line of input; IsInteractive decides
// whether to print it at all (no prompt when stdin is piped or
// redirected).
const Prompt = "rasp> "

// IsInteractive reports whether stdin is an attached terminal.
func IsInteractive(stdin *os.File) bool {
	fd := stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Loop drives a minimal read-eval-print cycle over stdin/stdout: one
// line in, one value (or formatted error) out. It stops at EOF. This
// is what the `--repl` flag runs; a host embedding pkg/rasp is free to
// build a richer REPL against Session directly instead.
func Loop(stdin io.Reader, stdout io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	session := NewSession(stdout)
	interactive := false
	if f, ok := stdin.(*os.File); ok {
		interactive = IsInteractive(f)
	}

	for {
		if interactive {
			fmt.Fprint(stdout, Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		value, err := session.Eval(line)
		if err != nil {
			fmt.Fprintln(stdout, err.Error())
			continue
		}
		fmt.Fprintln(stdout, value.Display())
	}
}
