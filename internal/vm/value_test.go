package vm

import (
	"testing"

	"github.com/rasp-lang/rasp/internal/source"
)

func TestNumberDisplayAndInspect(t *testing.T) {
	n := Number(42)
	if n.Display() != "42" {
		t.Fatalf("Display() = %q", n.Display())
	}
	if n.Inspect() != "42" {
		t.Fatalf("Inspect() = %q", n.Inspect())
	}
	if !Number(1).Truthy() || Number(0).Truthy() {
		t.Fatal("Number truthiness should follow nonzero")
	}
}

func TestStringInspectEscapes(t *testing.T) {
	s := String("a\nb\"c")
	got := s.Inspect()
	want := `"a\nb\"c"`
	if got != want {
		t.Fatalf("Inspect() = %q, want %q", got, want)
	}
	if s.Display() != "a\nb\"c" {
		t.Fatalf("Display() = %q", s.Display())
	}
}

func TestArrayCloneIsDeep(t *testing.T) {
	inner := NewArray([]Value{Number(1), Number(2)})
	outer := NewArray([]Value{inner})
	clone := outer.Clone().(*Array)
	clone.Elements[0].(*Array).Elements[0] = Number(99)

	if inner.Elements[0].(Number) != Number(1) {
		t.Fatal("cloning outer mutated the original inner array")
	}
}

func TestObjectGetAndClone(t *testing.T) {
	obj := NewObject([]string{"x", "y"}, []Value{Number(1), Number(2)})
	v, ok := obj.Get("x")
	if !ok || v != Number(1) {
		t.Fatalf("Get(x) = %v, %v", v, ok)
	}
	if _, ok := obj.Get("z"); ok {
		t.Fatal("expected z to be absent")
	}
	clone := obj.Clone().(*Object)
	clone.Members["x"] = Number(100)
	if obj.Members["x"] != Number(1) {
		t.Fatal("cloning mutated the original object")
	}
}

func TestEqualDifferentKindsNeverEqualOrError(t *testing.T) {
	loc := source.At("test", 1)
	eq, err := Equal(Number(1), String("1"), loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eq {
		t.Fatal("values of different kinds should never be equal")
	}
}

func TestEqualFunctionsAlwaysErrors(t *testing.T) {
	loc := source.At("test", 1)
	f := FunctionValue{Fn: &ClosureFn{Inner: nil, Captured: nil}}
	_, err := Equal(f, f, loc)
	if err == nil {
		t.Fatal("expected comparing functions to raise an error")
	}
}

func TestEqualNestedArrays(t *testing.T) {
	loc := source.At("test", 1)
	a := NewArray([]Value{Number(1), NewArray([]Value{String("x")})})
	b := NewArray([]Value{Number(1), NewArray([]Value{String("x")})})
	eq, err := Equal(a, b, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatal("expected structurally equal nested arrays to compare equal")
	}
}
