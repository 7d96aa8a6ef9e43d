package vm

import (
	"fmt"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
	"github.com/rasp-lang/rasp/internal/trace"
)

// Interpreter executes instruction Lists over a stack and a Bindings
// environment. It owns exactly one Globals mapping for its lifetime
// and is not re-entrant across goroutines; nested calls within a
// single goroutine work to arbitrary depth via recursion.
type Interpreter struct {
	globals *Globals
	trace   trace.Sink
}

// Option configures an Interpreter at construction.
type Option func(*Interpreter)

// WithTrace installs a diagnostic trace sink.
func WithTrace(sink trace.Sink) Option {
	return func(in *Interpreter) { in.trace = sink }
}

// New builds an Interpreter over globals, applying any Options.
func New(globals *Globals, opts ...Option) *Interpreter {
	in := &Interpreter{globals: globals, trace: trace.NopSink{}}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Globals exposes the interpreter's single global mapping, e.g. to
// seed the compiler's scope stack before compiling a unit.
func (in *Interpreter) Globals() *Globals {
	return in.globals
}

// Run executes list as a fresh top-level unit: a new Bindings over the
// interpreter's globals, no locals, no closure scope.
func (in *Interpreter) Run(list List) (Value, error) {
	return in.Exec(list, NewBindings(in.globals))
}

// captureRef is an internal-only Value that never escapes a single
// defun compilation's instruction stream: InitClosure pushes one per
// captured identifier, and the immediately following Close consumes
// exactly that many, building a Closure's captured-cell mapping. It is
// never visible to user code.
type captureRef struct {
	id   ident.Identifier
	cell *Cell
}

func (captureRef) Kind() Kind      { return KindNil } // never inspected as user-visible
func (captureRef) Truthy() bool    { return false }
func (c captureRef) Clone() Value  { return c }
func (captureRef) Display() string { return "<capture>" }
func (captureRef) Inspect() string { return "<capture>" }

// Exec runs list against bindings and returns the final stack top, or
// Nil if the stack ends empty. It is used both for top-level units
// (via Run) and for each InternalFunction invocation.
func (in *Interpreter) Exec(list List, bindings *Bindings) (Value, error) {
	stack := make([]Value, 0, 8)

	pop := func() (Value, error) {
		if len(stack) == 0 {
			return nil, rasperrors.NewInternalError("empty stack when value required")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	peek := func() (Value, error) {
		if len(stack) == 0 {
			return nil, rasperrors.NewInternalError("empty stack when value required")
		}
		return stack[len(stack)-1], nil
	}
	asNumber := func(v Value, context string) (int, error) {
		n, ok := v.(Number)
		if !ok {
			return 0, rasperrors.NewInternalError(context + " expects a numeric immediate")
		}
		return int(n), nil
	}
	asName := func(v Value, context string) (ident.Identifier, error) {
		s, ok := v.(String)
		if !ok {
			return ident.Identifier{}, rasperrors.NewInternalError(context + " expects a name immediate")
		}
		id, err := ident.New(string(s))
		if err != nil {
			return ident.Identifier{}, rasperrors.NewInternalError(context + ": " + err.Error())
		}
		return id, nil
	}

	for i := 0; i < len(list); i++ {
		instr := list[i]
		in.trace.Instruction(instr.Loc, in.traceText(instr, stack))

		switch instr.Op {
		case OpPush:
			stack = append(stack, instr.Immediate)

		case OpRefLocal, OpRefGlobal, OpRefClosure:
			refType, _ := refTypeFor(instr.Op)
			id, err := asName(instr.Immediate, instr.Op.String())
			if err != nil {
				return nil, err
			}
			v, err := bindings.Get(refType, id)
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)

		case OpInitLocal, OpInitGlobal:
			refType, _ := refTypeFor(instr.Op)
			id, err := asName(instr.Immediate, instr.Op.String())
			if err != nil {
				return nil, err
			}
			top, err := peek()
			if err != nil {
				return nil, err
			}
			if err := bindings.Init(refType, id, top); err != nil {
				return nil, err
			}

		case OpAssignLocal, OpAssignGlobal, OpAssignClosure:
			refType, _ := refTypeFor(instr.Op)
			id, err := asName(instr.Immediate, instr.Op.String())
			if err != nil {
				return nil, err
			}
			top, err := peek()
			if err != nil {
				return nil, err
			}
			if err := bindings.Set(refType, id, top); err != nil {
				return nil, err
			}

		case OpInitClosure:
			id, err := asName(instr.Immediate, "init_closure")
			if err != nil {
				return nil, err
			}
			cell, ok := bindings.Cell(id)
			if !ok {
				return nil, rasperrors.NewInternalError(
					"init_closure: no live binding cell for '" + id.Name() + "'")
			}
			stack = append(stack, captureRef{id: id, cell: cell})

		case OpCall:
			argc, err := asNumber(instr.Immediate, "call")
			if err != nil {
				return nil, err
			}
			result, err := in.handleCall(bindings, argc, instr.Loc, &stack, pop)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)

		case OpClose:
			argc, err := asNumber(instr.Immediate, "close")
			if err != nil {
				return nil, err
			}
			result, err := handleClose(argc, &stack, pop)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)

		case OpMemberAccess:
			name, ok := instr.Immediate.(String)
			if !ok {
				return nil, rasperrors.NewInternalError("member_access expects a name immediate")
			}
			obj, err := pop()
			if err != nil {
				return nil, err
			}
			record, ok := obj.(*Object)
			if !ok {
				return nil, rasperrors.NewExecutionError(instr.Loc, fmt.Sprintf(
					"Member access instruction requires an object but got %s", obj.Inspect()))
			}
			v, ok := record.Get(string(name))
			if !ok {
				return nil, rasperrors.NewExecutionError(instr.Loc, fmt.Sprintf(
					"Unknown member name %s for %s", name, record.Inspect()))
			}
			stack = append(stack, v)

		case OpJump:
			k, err := asNumber(instr.Immediate, "jump")
			if err != nil {
				return nil, err
			}
			if err := checkForwardBound(i, k, len(list)); err != nil {
				return nil, err
			}
			i += k

		case OpCondJump:
			k, err := asNumber(instr.Immediate, "cond_jump")
			if err != nil {
				return nil, err
			}
			top, err := pop()
			if err != nil {
				return nil, err
			}
			if top.Truthy() {
				continue
			}
			if err := checkForwardBound(i, k, len(list)); err != nil {
				return nil, err
			}
			i += k

		case OpLoop:
			k, err := asNumber(instr.Immediate, "loop")
			if err != nil {
				return nil, err
			}
			if i-k < -1 {
				return nil, rasperrors.NewInternalError("insufficient instructions available to loop")
			}
			i -= k

		default:
			return nil, rasperrors.NewInternalError(fmt.Sprintf("unhandled instruction type: %s", instr.Op))
		}
	}

	if len(stack) == 0 {
		return Nil{}, nil
	}
	return stack[len(stack)-1], nil
}

func checkForwardBound(i, k, total int) error {
	if i+1+k > total {
		return rasperrors.NewInternalError("insufficient instructions available to skip")
	}
	return nil
}

// handleCall implements the Call instruction: pop the
// function, pop argc arguments (first-popped becomes the first
// positional argument), dispatch by Function flavor, and augment any
// propagating RaspError with a call-trace frame.
func (in *Interpreter) handleCall(bindings *Bindings, argc int, loc source.Location, stack *[]Value, pop func() (Value, error)) (Value, error) {
	top, err := pop()
	if err != nil {
		return nil, err
	}
	fnVal, ok := top.(FunctionValue)
	if !ok {
		return nil, rasperrors.NewInternalError(
			"Call instruction expects top of the stack to be a function value")
	}

	args := make([]Value, argc)
	for j := 0; j < argc; j++ {
		v, err := pop()
		if err != nil {
			return nil, err
		}
		args[j] = v
	}

	ctx := &CallContext{
		Args:    args,
		Globals: bindings.globals,
		Interp:  in,
		Site:    loc,
	}

	result, err := fnVal.Fn.Call(ctx)
	if err != nil {
		if re, ok := rasperrors.AsRaspError(err); ok {
			return nil, re.WithFrame(fnVal.Fn.Location(), " at function: "+fnVal.Fn.Name())
		}
		return nil, err
	}
	return result, nil
}

// handleClose implements the Close instruction: pop the function, pop
// argc capture references, and build a Closure pairing the function
// with those captured cells.
func handleClose(argc int, stack *[]Value, pop func() (Value, error)) (Value, error) {
	top, err := pop()
	if err != nil {
		return nil, err
	}
	fnVal, ok := top.(FunctionValue)
	if !ok {
		return nil, rasperrors.NewInternalError(
			"Close instruction expects top of the stack to be a function value")
	}

	captured := make(map[ident.Identifier]*Cell, argc)
	for j := 0; j < argc; j++ {
		v, err := pop()
		if err != nil {
			return nil, err
		}
		ref, ok := v.(captureRef)
		if !ok {
			return nil, rasperrors.NewInternalError("Close instruction expects a capture reference on the stack")
		}
		captured[ref.id] = ref.cell
	}

	return FunctionValue{Fn: &ClosureFn{Inner: fnVal.Fn, Captured: captured}}, nil
}

func (in *Interpreter) traceText(instr Instruction, stack []Value) string {
	return fmt.Sprintf("%s (stack depth %d)", instr.Op, len(stack))
}
