// Command rasp runs Rasp source files, or an interactive REPL when
// --repl is given or no files are named. Flags are parsed by hand from
// os.Args; a recovered top-level panic prints "Internal error" rather
// than a Go stack trace.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rasp-lang/rasp/internal/replio"
	"github.com/rasp-lang/rasp/internal/scenario"
	"github.com/rasp-lang/rasp/internal/settings"
	"github.com/rasp-lang/rasp/internal/token"
	"github.com/rasp-lang/rasp/internal/trace"
	"github.com/rasp-lang/rasp/internal/vm"
	"github.com/rasp-lang/rasp/pkg/rasp"
)

const usage = `rasp - a small S-expression language

Usage:
  rasp [flags] file...

Flags:
  --repl                start an interactive read-eval-print loop
  --trace               log each executed instruction
  --print-ast           run each file, then dump its token tree
  --print-instructions  run each file, then dump its compiled instruction list
  --unit-tests          run the bundled scenario suite (testdata/scenarios)
  --help                print this message and exit
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		wantRepl     bool
		wantTrace    bool
		wantAST      bool
		wantInstr    bool
		wantUnitTest bool
		wantHelp     bool
		files        []string
	)

	for _, arg := range args {
		switch {
		case arg == "--help":
			wantHelp = true
		case arg == "--repl":
			wantRepl = true
		case arg == "--trace":
			wantTrace = true
		case arg == "--print-ast":
			wantAST = true
		case arg == "--print-instructions":
			wantInstr = true
		case arg == "--unit-tests":
			wantUnitTest = true
		case strings.HasPrefix(arg, "--"):
			// Unknown flags are ignored rather than treated as filenames.
		default:
			files = append(files, arg)
		}
	}

	if wantHelp {
		fmt.Print(usage)
		return 0
	}

	projectSettings, err := settings.Load("rasp.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rasp.toml: %v\n", err)
		return 1
	}
	effective := projectSettings.Merge(settings.Settings{
		Trace:             wantTrace,
		PrintAST:          wantAST,
		PrintInstructions: wantInstr,
	})

	if wantUnitTest {
		return runUnitTests()
	}

	if wantRepl || len(files) == 0 {
		if err := replio.Loop(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	var sink trace.Sink = trace.NopSink{}
	if effective.Trace {
		sink = trace.WriterSink{W: os.Stderr}
	}
	machine := rasp.New(rasp.WithTraceSink(sink))

	for _, path := range files {
		if status := runFile(machine, path, effective); status != 0 {
			return status
		}
	}
	return 0
}

func runFile(machine *rasp.Machine, path string, effective settings.Settings) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	filename := filepath.Base(path)
	result, err := machine.Run(filename, string(source))

	if effective.PrintAST {
		fmt.Println(dumpAST(result.AST, 0))
	}
	if effective.PrintInstructions {
		fmt.Print(vm.Dump(result.Instructions))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func dumpAST(t token.Token, depth int) string {
	indent := strings.Repeat("  ", depth)
	if t.IsLeaf() {
		return fmt.Sprintf("%s%s %q", indent, t.Kind, t.Text)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s", indent, t.Kind)
	for i := 0; i < t.Len(); i++ {
		sb.WriteString("\n")
		sb.WriteString(dumpAST(t.At(i), depth+1))
	}
	return sb.String()
}

func runUnitTests() int {
	scenarios, err := scenario.Load("testdata/scenarios")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenarios: %v\n", err)
		return 1
	}
	failures := 0
	for _, s := range scenarios {
		outcome := scenario.Run(s)
		if err := scenario.Check(s, outcome); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			failures++
			continue
		}
		fmt.Printf("ok   %s\n", s.Name)
	}
	fmt.Printf("%d scenarios, %d failed\n", len(scenarios), failures)
	if failures > 0 {
		return 1
	}
	return 0
}
