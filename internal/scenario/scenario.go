// Package scenario is the bundled test scaffold: a YAML-driven runner
// that drives literal source text through the full lex -> compile ->
// execute pipeline and checks the result against an expected value or
// error. The fixtures live in testdata/scenarios; both `go test` and
// `rasp --unit-tests` run them.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rasp-lang/rasp/internal/compiler"
	"github.com/rasp-lang/rasp/internal/lexer"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/stdlib"
	"github.com/rasp-lang/rasp/internal/vm"
)

// Expect describes what a Scenario's Source should produce. Exactly
// one of Result or ErrorKind should be set; a blank ErrorKind means
// "expect success".
type Expect struct {
	// Result is the expected value's diagnostic (Inspect) form, e.g.
	// "92" or `"People: Alice, Bob"`.
	Result string `yaml:"result"`
	// ErrorKind is one of "lex", "parse", "execution", "internal" when
	// the scenario is expected to fail.
	ErrorKind string `yaml:"error_kind"`
	// ErrorContains is a substring the raised error's message must
	// contain; error scenarios check substrings, not exact text.
	ErrorContains string `yaml:"error_contains"`
}

// Scenario is one seed or boundary case: a name, the Rasp source
// text, and what running it should produce.
type Scenario struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Expect Expect `yaml:"expect"`
}

// file is the top-level shape of one testdata/scenarios/*.yaml file.
type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads every *.yaml file in dir and returns their concatenated
// Scenarios.
func Load(dir string) ([]Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var all []Scenario
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, f.Scenarios...)
	}
	return all, nil
}

// Outcome is what actually happened running a Scenario, reported back
// for the test harness to assert on.
type Outcome struct {
	Value vm.Value
	Err   error
}

// Run lexes, compiles, and executes s.Source against a fresh
// interpreter (fresh globals, fresh stdlib registration every time, so
// one scenario's global mutations never leak into the next).
func Run(s Scenario) Outcome {
	globals := vm.NewGlobals()
	stdlib.Register(globals, discard{}, discard{})
	interp := vm.New(globals)

	root, err := lexer.Lex(s.Name, s.Source)
	if err != nil {
		return Outcome{Err: err}
	}
	c := compiler.New(interp.Globals().Names())
	list, err := c.Compile(root)
	if err != nil {
		return Outcome{Err: err}
	}
	value, err := interp.Run(list)
	return Outcome{Value: value, Err: err}
}

// Check reports whether o matches s.Expect, returning a descriptive
// error when it doesn't.
func Check(s Scenario, o Outcome) error {
	if s.Expect.ErrorKind == "" {
		if o.Err != nil {
			return fmt.Errorf("%s: expected success, got error: %v", s.Name, o.Err)
		}
		got := o.Value.Inspect()
		if got != s.Expect.Result {
			return fmt.Errorf("%s: expected result %q, got %q", s.Name, s.Expect.Result, got)
		}
		return nil
	}

	if o.Err == nil {
		return fmt.Errorf("%s: expected %s error, got success with value %q",
			s.Name, s.Expect.ErrorKind, o.Value.Inspect())
	}
	if !matchesKind(o.Err, s.Expect.ErrorKind) {
		return fmt.Errorf("%s: expected a %s error, got %T: %v", s.Name, s.Expect.ErrorKind, o.Err, o.Err)
	}
	if s.Expect.ErrorContains != "" && !strings.Contains(o.Err.Error(), s.Expect.ErrorContains) {
		return fmt.Errorf("%s: error message %q does not contain %q", s.Name, o.Err.Error(), s.Expect.ErrorContains)
	}
	return nil
}

func matchesKind(err error, kind string) bool {
	switch kind {
	case "lex":
		_, ok := err.(*rasperrors.LexError)
		return ok
	case "parse":
		_, ok := err.(*rasperrors.ParseError)
		return ok
	case "execution":
		_, ok := err.(*rasperrors.ExecutionError)
		return ok
	case "internal":
		_, ok := err.(*rasperrors.InternalError)
		return ok
	default:
		return false
	}
}

// discard implements io.Writer as a no-op sink and io.Reader as a
// source whose every Read fails, since scenario runs never exercise
// print/read_line interactively.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Read([]byte) (int, error)    { return 0, fmt.Errorf("scenario: read_line has no input") }
