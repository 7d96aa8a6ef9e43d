// Package rasp is the small facade a host program imports to run Rasp
// source without reaching into internal/* directly. The CLI and the
// REPL both sit on top of this facade rather than wiring the pipeline
// themselves.
package rasp

import (
	"io"
	"os"
	"time"

	"github.com/rasp-lang/rasp/internal/compiler"
	"github.com/rasp-lang/rasp/internal/lexer"
	"github.com/rasp-lang/rasp/internal/stdlib"
	"github.com/rasp-lang/rasp/internal/token"
	"github.com/rasp-lang/rasp/internal/trace"
	"github.com/rasp-lang/rasp/internal/vm"
)

// Machine bundles one Interpreter with the host-function registration
// done once at construction, so repeated Run calls share the same
// global mapping — the shape internal/replio's Session needs to
// accumulate definitions across lines.
type Machine struct {
	interp *vm.Interpreter
	trace  trace.Sink
}

// Option configures a Machine at construction.
type Option func(*machineConfig)

type machineConfig struct {
	stdout io.Writer
	stdin  io.Reader
	trace  trace.Sink
}

// WithStdout redirects the `print`/`println` stream (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(c *machineConfig) { c.stdout = w }
}

// WithStdin redirects the `read_line` stream (default os.Stdin).
func WithStdin(r io.Reader) Option {
	return func(c *machineConfig) { c.stdin = r }
}

// WithTraceSink installs a diagnostic trace sink, wired to the CLI's
// --trace flag.
func WithTraceSink(sink trace.Sink) Option {
	return func(c *machineConfig) { c.trace = sink }
}

// New builds a Machine with a freshly registered global environment
// (internal/stdlib.Register).
func New(opts ...Option) *Machine {
	cfg := machineConfig{stdout: os.Stdout, stdin: os.Stdin, trace: trace.NopSink{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	globals := vm.NewGlobals()
	stdlib.Register(globals, cfg.stdout, cfg.stdin)
	return &Machine{interp: vm.New(globals, vm.WithTrace(cfg.trace)), trace: cfg.trace}
}

// Value is Rasp's runtime value, re-exported so a host program can
// hold and inspect a Result without importing internal/vm itself.
type Value = vm.Value

// Result bundles everything a caller wanting --print-ast/
// --print-instructions needs alongside the final value.
type Result struct {
	Value        Value
	AST          token.Token
	Instructions vm.List
}

// Run lexes, compiles, and executes source as one top-level unit
// against the Machine's globals. filename labels every
// error and trace line this run produces.
func (m *Machine) Run(filename, source string) (Result, error) {
	root, err := lexer.Lex(filename, source)
	if err != nil {
		return Result{AST: root}, err
	}

	c := compiler.New(m.interp.Globals().Names())
	instructions, err := c.Compile(root)
	if err != nil {
		return Result{AST: root}, err
	}

	started := time.Now()
	value, err := m.interp.Run(instructions)
	m.trace.UnitComplete(filename, time.Since(started))
	return Result{Value: value, AST: root, Instructions: instructions}, err
}

// Run is a convenience one-shot entry point for a host that doesn't
// need a reusable Machine: it builds one with default stdio, runs
// source once, and returns just the final value.
func Run(filename, source string) (Value, error) {
	result, err := New().Run(filename, source)
	return result.Value, err
}
