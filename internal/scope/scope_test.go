package scope

import (
	"testing"

	"github.com/rasp-lang/rasp/internal/ident"
)

func TestClassifyGlobalLocalClosure(t *testing.T) {
	plus := ident.MustNew("+")
	d := NewGlobal([]ident.Identifier{plus})

	if got := d.Classify(plus); got != Global {
		t.Fatalf("expected %q to classify Global, got %s", plus, got)
	}

	undefined := ident.MustNew("nope")
	if got := d.Classify(undefined); got != Undefined {
		t.Fatalf("expected undefined identifier to classify Undefined, got %s", got)
	}

	outer := d.Nested()
	c := ident.MustNew("c")
	outer.Add(c)
	if got := outer.Classify(c); got != Local {
		t.Fatalf("expected newly added identifier to classify Local, got %s", got)
	}
	if got := outer.Classify(plus); got != Global {
		t.Fatalf("expected outer global to still classify Global, got %s", got)
	}

	inner := outer.Nested()
	if got := inner.Classify(c); got != Closure {
		t.Fatalf("expected enclosing local to classify Closure from inner scope, got %s", got)
	}
	if got := inner.Classify(plus); got != Global {
		t.Fatalf("expected global to classify Global from any depth, got %s", got)
	}
}

func TestIsDefined(t *testing.T) {
	d := NewGlobal(nil)
	x := ident.MustNew("x")
	if d.IsDefined(x) {
		t.Fatal("expected x to be undefined")
	}
	d.Add(x)
	if !d.IsDefined(x) {
		t.Fatal("expected x to be defined after Add")
	}
}

func TestNestedLeavesParentUntouched(t *testing.T) {
	d := NewGlobal(nil)
	nested := d.Nested()
	y := ident.MustNew("y")
	nested.Add(y)
	if d.IsDefined(y) {
		t.Fatal("expected adding to a nested scope to not affect the parent")
	}
}
