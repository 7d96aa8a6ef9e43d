package rasperrors

import (
	"strings"
	"testing"

	"github.com/rasp-lang/rasp/internal/source"
)

func TestLexErrorMessageAndLocation(t *testing.T) {
	loc := source.At("prog.rasp", 3)
	err := NewLexError(loc, "Stray ) in program")
	if !strings.Contains(err.Error(), "prog.rasp") || !strings.Contains(err.Error(), "Stray )") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestEachErrorKindHasAStableID(t *testing.T) {
	a := NewParseError(source.At("test", 1), "boom")
	b := NewParseError(source.At("test", 1), "boom")
	if a.ID() == b.ID() {
		t.Fatal("expected two distinct errors to get distinct correlation IDs")
	}
	if a.ID() != a.ID() {
		t.Fatal("expected the same error's ID to be stable")
	}
}

func TestWithFrameAppendsTraceInLeafToRootOrder(t *testing.T) {
	err := NewExecutionError(source.At("test", 1), "division by zero")
	var re RaspError = err
	re = re.WithFrame(source.At("test", 2), " at function: inner")
	re = re.WithFrame(source.At("test", 3), " at function: outer")

	frames := re.Frames()
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Label != " at function: inner" || frames[1].Label != " at function: outer" {
		t.Fatalf("expected frames in call order (innermost first), got %+v", frames)
	}

	msg := re.Error()
	innerIdx := strings.Index(msg, "inner")
	outerIdx := strings.Index(msg, "outer")
	if innerIdx == -1 || outerIdx == -1 || innerIdx > outerIdx {
		t.Fatalf("expected the trace to print innermost frame first: %q", msg)
	}
}

func TestInternalErrorCarriesNoSourceLocation(t *testing.T) {
	err := NewInternalError("empty stack when value required")
	if !strings.HasPrefix(err.Error(), "Internal error (compiler bug):") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestAsRaspErrorRecognizesAllFourKinds(t *testing.T) {
	errs := []error{
		NewLexError(source.At("t", 1), "x"),
		NewParseError(source.At("t", 1), "x"),
		NewExecutionError(source.At("t", 1), "x"),
		NewInternalError("x"),
	}
	for _, err := range errs {
		if _, ok := AsRaspError(err); !ok {
			t.Errorf("expected %T to satisfy RaspError", err)
		}
	}
}

func TestAsRaspErrorRejectsPlainErrors(t *testing.T) {
	if _, ok := AsRaspError(plainError{}); ok {
		t.Fatal("expected a plain error to not satisfy RaspError")
	}
}

type plainError struct{}

func (plainError) Error() string { return "plain" }
