package rasp

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunEvaluatesSource(t *testing.T) {
	v, err := Run("test.rasp", "(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Display() != "3" {
		t.Fatalf("got %q", v.Display())
	}
}

func TestRunPropagatesCompileErrors(t *testing.T) {
	if _, err := Run("test.rasp", "undefinedName"); err == nil {
		t.Fatal("expected an undefined identifier to fail")
	}
}

func TestMachineSharesGlobalsAcrossRuns(t *testing.T) {
	m := New()
	if _, err := m.Run("test.rasp", "(var count 1)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := m.Run("test.rasp", "(set count (+ count 1)) count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value.Display() != "2" {
		t.Fatalf("got %q, want 2", result.Value.Display())
	}
}

func TestMachineWithStdoutRedirectsPrint(t *testing.T) {
	var out bytes.Buffer
	m := New(WithStdout(&out))
	if _, err := m.Run("test.rasp", `(print "hello")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hello" {
		t.Fatalf("got %q", out.String())
	}
}

func TestMachineWithStdinFeedsReadLine(t *testing.T) {
	m := New(WithStdin(strings.NewReader("input line\n")))
	result, err := m.Run("test.rasp", "(read_line)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value.Display() != "input line" {
		t.Fatalf("got %q", result.Value.Display())
	}
}

// TestRunIsDeterministic checks the property that the same source text
// run twice against the same standard library yields identical final
// values (no host I/O involved).
func TestRunIsDeterministic(t *testing.T) {
	src := `
		(defun fib (n) (if (< n 2) n else (+ (fib (- n 1)) (fib (- n 2)))))
		(fib 15)
	`
	first, err := Run("test.rasp", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Run("test.rasp", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Inspect() != second.Inspect() {
		t.Fatalf("two runs disagree: %q vs %q", first.Inspect(), second.Inspect())
	}
	if first.Display() != "610" {
		t.Fatalf("got %q, want 610", first.Display())
	}
}

func TestResultCarriesASTAndInstructions(t *testing.T) {
	m := New()
	result, err := m.Run("test.rasp", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AST.Len() != 1 {
		t.Fatalf("expected 1 top-level form in the AST, got %d", result.AST.Len())
	}
	if len(result.Instructions) != 1 {
		t.Fatalf("expected 1 compiled instruction, got %d", len(result.Instructions))
	}
}
