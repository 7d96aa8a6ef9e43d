package vm

import (
	"testing"

	"github.com/rasp-lang/rasp/internal/ident"
)

func TestGlobalsBindAndNames(t *testing.T) {
	g := NewGlobals()
	x := ident.MustNew("x")
	g.Bind(x, Number(1))
	names := g.Names()
	if len(names) != 1 || !names[0].Equal(x) {
		t.Fatalf("got names %v", names)
	}
}

func TestBindingsInitGetSet(t *testing.T) {
	g := NewGlobals()
	b := NewBindings(g)
	x := ident.MustNew("x")

	if err := b.Init(Local, x, Number(1)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	v, err := b.Get(Local, x)
	if err != nil || v != Number(1) {
		t.Fatalf("Get = %v, %v", v, err)
	}
	if err := b.Set(Local, x, Number(2)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err = b.Get(Local, x)
	if err != nil || v != Number(2) {
		t.Fatalf("Get after Set = %v, %v", v, err)
	}
}

func TestBindingsInitTwiceFails(t *testing.T) {
	b := NewBindings(NewGlobals())
	x := ident.MustNew("x")
	if err := b.Init(Local, x, Number(1)); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	if err := b.Init(Local, x, Number(2)); err == nil {
		t.Fatal("expected the second Init of the same identifier to fail")
	}
}

func TestBindingsSetUnboundFails(t *testing.T) {
	b := NewBindings(NewGlobals())
	x := ident.MustNew("x")
	if err := b.Set(Local, x, Number(1)); err == nil {
		t.Fatal("expected Set of an unbound identifier to fail")
	}
}

func TestBindingsGetUnboundFails(t *testing.T) {
	b := NewBindings(NewGlobals())
	x := ident.MustNew("x")
	if _, err := b.Get(Local, x); err == nil {
		t.Fatal("expected Get of an unbound identifier to fail")
	}
}

func TestBindingsClosureScopeRequiresActivation(t *testing.T) {
	b := NewBindings(NewGlobals())
	x := ident.MustNew("x")
	if _, err := b.Get(Closure, x); err == nil {
		t.Fatal("expected Get(Closure, ...) to fail with no closure scope active")
	}
}

func TestBindingsCellSearchesLocalThenClosure(t *testing.T) {
	g := NewGlobals()
	b := NewBindings(g)
	x := ident.MustNew("x")
	b.Init(Local, x, Number(1))

	cell, ok := b.Cell(x)
	if !ok || cell.Value != Number(1) {
		t.Fatalf("Cell(x) = %v, %v", cell, ok)
	}

	y := ident.MustNew("y")
	closureCell := NewCell(Number(7))
	b2 := &Bindings{locals: map[ident.Identifier]*Cell{}, globals: g, closure: map[ident.Identifier]*Cell{y: closureCell}}
	cell, ok = b2.Cell(y)
	if !ok || cell != closureCell {
		t.Fatalf("expected to find y's cell via the closure scope")
	}

	g.Bind(ident.MustNew("z"), Number(9))
	if _, ok := b2.Cell(ident.MustNew("z")); ok {
		t.Fatal("Cell must not search globals")
	}
}

func TestSharedCellObservedThroughClosure(t *testing.T) {
	cell := NewCell(Number(1))
	b := &Bindings{locals: map[ident.Identifier]*Cell{}, globals: NewGlobals(), closure: nil}
	x := ident.MustNew("x")
	b.locals[x] = cell

	cell.Value = Number(2)
	v, err := b.Get(Local, x)
	if err != nil || v != Number(2) {
		t.Fatalf("expected the shared cell's mutation to be visible, got %v, %v", v, err)
	}
}
