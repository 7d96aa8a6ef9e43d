// Package stdlib implements the host-function library the interpreter
// expects to find in globals at start-up: arithmetic and comparison
// operators, boolean folds, object construction via `new`, array
// helpers, and the print/format/read_line I/O surface. Register is the
// single entry point; everything else in the package is the table it
// installs.
package stdlib

import (
	"fmt"
	"io"
	"time"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
	"github.com/rasp-lang/rasp/internal/vm"
)

var stdlibLoc = source.At("<stdlib>", 0)

// entry pairs a registered name with its implementation, either
// context-aware (ctx) or pure.
type entry struct {
	name string
	pure func(args []vm.Value) (vm.Value, error)
	ctx  func(ctx *vm.CallContext) (vm.Value, error)
}

// Register populates globals with the full host-function library.
// Called once at interpreter construction. stdout
// and stdin back print/println/read_line; the CLI wires these to the
// process's real streams, while tests and the scenario runner can
// substitute buffers.
func Register(globals *vm.Globals, stdout io.Writer, stdin io.Reader) {
	for _, e := range registry(stdout, stdin) {
		id := ident.MustNew(e.name)
		if e.ctx != nil {
			globals.Bind(id, vm.FunctionValue{Fn: &vm.NativeFunction{FnName: e.name, Loc: stdlibLoc, Impl: e.ctx}})
		} else {
			globals.Bind(id, vm.FunctionValue{Fn: &vm.NativePureFunction{FnName: e.name, Loc: stdlibLoc, Impl: e.pure}})
		}
	}
}

func registry(stdout io.Writer, stdin io.Reader) []entry {
	var all []entry
	all = append(all, arithmeticEntries()...)
	all = append(all, booleanEntries()...)
	all = append(all, objectEntries()...)
	all = append(all, ioEntries(stdout, stdin)...)
	return all
}

func externalFunctionError(name, message string) error {
	return rasperrors.NewExecutionError(stdlibLoc, fmt.Sprintf("%s in external function '%s'", message, name))
}

func asNumber(name string, v vm.Value) (int64, error) {
	n, ok := v.(vm.Number)
	if !ok {
		return 0, externalFunctionError(name, "Expected numeric argument")
	}
	return int64(n), nil
}

func asBoolean(name string, v vm.Value) (bool, error) {
	b, ok := v.(vm.Boolean)
	if !ok {
		return false, externalFunctionError(name, "Expected boolean argument")
	}
	return bool(b), nil
}

func asString(name string, v vm.Value) (string, error) {
	s, ok := v.(vm.String)
	if !ok {
		return "", externalFunctionError(name, "Expected string argument")
	}
	return string(s), nil
}

func asArray(name string, v vm.Value) (*vm.Array, error) {
	a, ok := v.(*vm.Array)
	if !ok {
		return nil, externalFunctionError(name, "Expected array argument")
	}
	return a, nil
}

// time returns process wall-clock seconds, so it must stay
// context-free and cheap to call from both pure and ctx entries.
func wallClockSeconds() int64 {
	return time.Now().Unix()
}
