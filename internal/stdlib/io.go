package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/vm"
)

// ioEntries builds the printing, input, and assertion helpers. print
// and println render every argument in human form and return nil;
// concat and format do the same but return the string instead of
// writing it.
func ioEntries(stdout io.Writer, stdin io.Reader) []entry {
	reader := bufio.NewReader(stdin)
	return []entry{
		{name: "print", pure: func(args []vm.Value) (vm.Value, error) {
			fmt.Fprint(stdout, displayAll(args))
			return vm.Nil{}, nil
		}},
		{name: "println", pure: func(args []vm.Value) (vm.Value, error) {
			fmt.Fprintln(stdout, displayAll(args))
			return vm.Nil{}, nil
		}},
		{name: "concat", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) == 0 {
				return nil, externalFunctionError("concat", "Expected at least 1 argument")
			}
			return vm.String(displayAll(args)), nil
		}},
		{name: "format", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) == 0 {
				return nil, externalFunctionError("format", "Expected at least 1 argument")
			}
			return vm.String(displayAll(args)), nil
		}},
		{name: "time", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 0 {
				return nil, externalFunctionError("time", "Expect no arguments")
			}
			return vm.Number(wallClockSeconds()), nil
		}},
		{name: "read_line", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 0 {
				return nil, externalFunctionError("read_line", "Expect no arguments")
			}
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return nil, externalFunctionError("read_line", "I/O error reading line")
			}
			return vm.String(strings.TrimRight(line, "\r\n")), nil
		}},
		{name: "assert", ctx: assertFn},
	}
}

func displayAll(args []vm.Value) string {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.Display())
	}
	return sb.String()
}

// assertFn implements `assert`: a falsey first argument raises,
// carrying an optional message.
func assertFn(ctx *vm.CallContext) (vm.Value, error) {
	if len(ctx.Args) < 1 || len(ctx.Args) > 2 {
		return nil, externalFunctionError("assert", "Expected 1 or 2 arguments")
	}
	if ctx.Args[0].Truthy() {
		return vm.Nil{}, nil
	}
	message := "assertion failed"
	if len(ctx.Args) == 2 {
		message = ctx.Args[1].Display()
	}
	return nil, rasperrors.NewExecutionError(ctx.Site, message)
}
