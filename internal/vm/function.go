package vm

import (
	"fmt"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
)

// Function is Rasp's polymorphic callable. Every flavor
// exposes a name, a source location, a clone operation, and Call.
type Function interface {
	Name() string
	Location() source.Location
	// CloneFn is the clone hook that lets a Function Value be copied
	// cheaply without deep-copying an instruction list.
	CloneFn() Function
	Call(ctx *CallContext) (Value, error)
}

// CallContext bundles everything a Function needs to run a single
// invocation: its arguments, the process-wide globals, a handle back
// to the interpreter (for InternalFunction bodies and context-aware
// natives), the call-site location, and — only when dispatching
// through a Closure — the captured-cell mapping the callee's own
// Bindings should expose as its closure scope.
type CallContext struct {
	Args         []Value
	Globals      *Globals
	Interp       *Interpreter
	Site         source.Location
	ClosureCells map[ident.Identifier]*Cell
}

// NativeFunction is a context-aware host-provided routine: it sees the
// full call context (arguments, globals, interpreter handle).
type NativeFunction struct {
	FnName string
	Loc    source.Location
	Impl   func(ctx *CallContext) (Value, error)
}

func (f *NativeFunction) Name() string              { return f.FnName }
func (f *NativeFunction) Location() source.Location { return f.Loc }
func (f *NativeFunction) CloneFn() Function         { return f }
func (f *NativeFunction) Call(ctx *CallContext) (Value, error) {
	return f.Impl(ctx)
}

// NativePureFunction is a host-provided routine taking just the
// argument list.
type NativePureFunction struct {
	FnName string
	Loc    source.Location
	Impl   func(args []Value) (Value, error)
}

func (f *NativePureFunction) Name() string              { return f.FnName }
func (f *NativePureFunction) Location() source.Location { return f.Loc }
func (f *NativePureFunction) CloneFn() Function         { return f }
func (f *NativePureFunction) Call(ctx *CallContext) (Value, error) {
	return f.Impl(ctx.Args)
}

// InternalFunction is a user-defined function: a name, an ordered
// parameter list, and an owned instruction list compiled from source.
type InternalFunction struct {
	FnName string
	Loc    source.Location
	Params []ident.Identifier
	Body   List
}

func (f *InternalFunction) Name() string              { return f.FnName }
func (f *InternalFunction) Location() source.Location { return f.Loc }
func (f *InternalFunction) CloneFn() Function         { return f }

func (f *InternalFunction) Call(ctx *CallContext) (Value, error) {
	if len(ctx.Args) != len(f.Params) {
		return nil, rasperrors.NewExecutionError(f.Loc, fmt.Sprintf(
			"Function '%s' passed %d arguments but expected %d", f.FnName, len(ctx.Args), len(f.Params)))
	}
	bindings := NewBindings(ctx.Globals)
	bindings.closure = ctx.ClosureCells
	for i, p := range f.Params {
		if err := bindings.InitLocal(p, ctx.Args[i]); err != nil {
			return nil, err
		}
	}
	if ctx.Interp == nil {
		return nil, rasperrors.NewInternalError("InternalFunction called without an interpreter handle")
	}
	return ctx.Interp.Exec(f.Body, bindings)
}

// ClosureFn wraps another Function together with a mapping of captured
// bindings by identifier. On call it installs that mapping as the
// closure scope before delegating to the inner function.
type ClosureFn struct {
	Inner    Function
	Captured map[ident.Identifier]*Cell
}

func (c *ClosureFn) Name() string              { return c.Inner.Name() }
func (c *ClosureFn) Location() source.Location { return c.Inner.Location() }
func (c *ClosureFn) CloneFn() Function {
	return &ClosureFn{Inner: c.Inner.CloneFn(), Captured: c.Captured}
}

func (c *ClosureFn) Call(ctx *CallContext) (Value, error) {
	nested := &CallContext{
		Args:         ctx.Args,
		Globals:      ctx.Globals,
		Interp:       ctx.Interp,
		Site:         ctx.Site,
		ClosureCells: c.Captured,
	}
	return c.Inner.Call(nested)
}
