package vm

import (
	"strings"
	"testing"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
)

func loc() source.Location { return source.At("test", 1) }

func TestExecEmptyListReturnsNil(t *testing.T) {
	in := New(NewGlobals())
	v, err := in.Run(List{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != KindNil {
		t.Fatalf("got %v, want Nil", v)
	}
}

func TestExecPushReturnsTopOfStack(t *testing.T) {
	in := New(NewGlobals())
	v, err := in.Run(List{Push(loc(), Number(5))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(5) {
		t.Fatalf("got %v, want 5", v)
	}
}

func TestExecUnconditionalJumpSkipsInstructions(t *testing.T) {
	in := New(NewGlobals())
	list := List{
		Push(loc(), Number(1)),
		Jump(loc(), 1),
		Push(loc(), Number(99)), // skipped
		Push(loc(), Number(2)),
	}
	v, err := in.Run(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(2) {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestExecCondJumpFalseTakesTheJump(t *testing.T) {
	in := New(NewGlobals())
	list := List{
		Push(loc(), Boolean(false)),
		CondJump(loc(), 1),
		Push(loc(), Number(99)), // skipped
		Push(loc(), Number(2)),
	}
	v, err := in.Run(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(2) {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestExecCondJumpTrueFallsThrough(t *testing.T) {
	in := New(NewGlobals())
	list := List{
		Push(loc(), Boolean(true)),
		CondJump(loc(), 1),
		Push(loc(), Number(99)),
	}
	v, err := in.Run(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(99) {
		t.Fatalf("got %v, want 99", v)
	}
}

// TestExecCallDispatchesNativeFunction builds the exact instruction
// shape the compiler emits for a call `(+ a b)`: arguments pushed
// right-to-left, then the callee, then Call argc.
func TestExecCallDispatchesNativeFunction(t *testing.T) {
	globals := NewGlobals()
	add := &NativePureFunction{
		FnName: "+",
		Loc:    loc(),
		Impl: func(args []Value) (Value, error) {
			return args[0].(Number) + args[1].(Number), nil
		},
	}
	globals.Bind(ident.MustNew("+"), FunctionValue{Fn: add})

	list := List{
		Push(loc(), Number(20)), // second argument, pushed first
		Push(loc(), Number(1)),  // first argument, pushed last
		RefGlobal(loc(), ident.MustNew("+")),
		Call(loc(), 2),
	}
	in := New(globals)
	v, err := in.Run(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(21) {
		t.Fatalf("got %v, want 21", v)
	}
}

func TestExecCallOnNonFunctionIsInternalError(t *testing.T) {
	in := New(NewGlobals())
	list := List{
		Push(loc(), Number(1)),
		Call(loc(), 0),
	}
	if _, err := in.Run(list); err == nil {
		t.Fatal("expected calling a non-function to fail")
	}
}

func TestExecMemberAccessOnNonObjectIsExecutionError(t *testing.T) {
	in := New(NewGlobals())
	list := List{
		Push(loc(), Number(1)),
		MemberAccess(loc(), "field"),
	}
	if _, err := in.Run(list); err == nil {
		t.Fatal("expected member access on a non-object to fail")
	}
}

func TestExecMemberAccessReadsObjectField(t *testing.T) {
	in := New(NewGlobals())
	obj := NewObject([]string{"x"}, []Value{Number(7)})
	list := List{
		Push(loc(), obj),
		MemberAccess(loc(), "x"),
	}
	v, err := in.Run(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(7) {
		t.Fatalf("got %v, want 7", v)
	}
}

// TestClosureCaptureSharesBindingCells builds the instruction shape
// compileDefun emits for a capturing function and checks that a
// mutation made through the closure is visible in the defining frame's
// cell — the reference-cell capture model.
func TestClosureCaptureSharesBindingCells(t *testing.T) {
	globals := NewGlobals()
	in := New(globals)
	c := ident.MustNew("c")

	// The closure body: (set c 99) compiled against a closure-classified c.
	setter := &InternalFunction{
		FnName: "setter",
		Loc:    loc(),
		Body: List{
			Push(loc(), Number(99)),
			AssignClosure(loc(), c),
		},
	}

	// The defining frame: var c 1, then init_closure c / push / close 1,
	// then call the closure and read c back.
	list := List{
		Push(loc(), Number(1)),
		InitLocal(loc(), c),
		InitClosure(loc(), c),
		Push(loc(), FunctionValue{Fn: setter}),
		Close(loc(), 1),
		Call(loc(), 0),
		RefLocal(loc(), c),
	}

	v, err := in.Exec(list, NewBindings(globals))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(99) {
		t.Fatalf("expected the closure's assignment to be visible in the defining frame, got %v", v)
	}
}

func TestCloseZeroCapturesBehavesLikePlainFunction(t *testing.T) {
	globals := NewGlobals()
	in := New(globals)
	fn := &InternalFunction{FnName: "f", Loc: loc(), Body: List{Push(loc(), Number(7))}}

	plain := List{
		Push(loc(), FunctionValue{Fn: fn}),
		Call(loc(), 0),
	}
	closed := List{
		Push(loc(), FunctionValue{Fn: fn}),
		Close(loc(), 0),
		Call(loc(), 0),
	}

	vPlain, err := in.Run(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vClosed, err := in.Run(closed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vPlain != vClosed {
		t.Fatalf("expected a Close 0 closure to behave like the bare function: %v vs %v", vPlain, vClosed)
	}
}

func TestErrorsGainCallFrames(t *testing.T) {
	globals := NewGlobals()
	in := New(globals)
	failing := &NativePureFunction{
		FnName: "boom",
		Loc:    loc(),
		Impl: func([]Value) (Value, error) {
			return nil, rasperrors.NewExecutionError(loc(), "host failure")
		},
	}
	list := List{
		Push(loc(), FunctionValue{Fn: failing}),
		Call(loc(), 0),
	}
	_, err := in.Run(list)
	if err == nil {
		t.Fatal("expected the native failure to propagate")
	}
	if got := err.Error(); !strings.Contains(got, " at function: boom") {
		t.Fatalf("expected the error to carry a ' at function: boom' frame, got %q", got)
	}
}

// TestWhileLoopShape builds the exact instruction layout compileWhile
// emits and checks the backward Loop offset actually lands on the
// condition's first instruction.
func TestWhileLoopShape(t *testing.T) {
	globals := NewGlobals()
	lt := &NativePureFunction{FnName: "<", Loc: loc(), Impl: func(args []Value) (Value, error) {
		return Boolean(args[0].(Number) < args[1].(Number)), nil
	}}
	plus := &NativePureFunction{FnName: "+", Loc: loc(), Impl: func(args []Value) (Value, error) {
		return args[0].(Number) + args[1].(Number), nil
	}}
	globals.Bind(ident.MustNew("<"), FunctionValue{Fn: lt})
	globals.Bind(ident.MustNew("+"), FunctionValue{Fn: plus})
	counter := ident.MustNew("counter")

	// cond: (< counter 3)
	cond := List{
		Push(loc(), Number(3)),
		RefGlobal(loc(), counter),
		RefGlobal(loc(), ident.MustNew("<")),
		Call(loc(), 2),
	}
	// body: (set counter (+ counter 1))
	body := List{
		Push(loc(), Number(1)),
		RefGlobal(loc(), counter),
		RefGlobal(loc(), ident.MustNew("+")),
		Call(loc(), 2),
		AssignGlobal(loc(), counter),
	}
	bodyN, condN := len(body), len(cond)

	var list List
	list = append(list, cond...)
	list = append(list, CondJump(loc(), bodyN+1))
	list = append(list, body...)
	list = append(list, Loop(loc(), bodyN+1+condN+1))

	bindings := NewBindings(globals)
	if err := bindings.Init(Global, counter, Number(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := New(globals)
	if _, err := in.Exec(list, bindings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := bindings.Get(Global, counter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(3) {
		t.Fatalf("counter = %v, want 3", v)
	}
}
