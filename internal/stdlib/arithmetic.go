package stdlib

import "github.com/rasp-lang/rasp/internal/vm"

// arithmeticEntries builds the numeric operator table: `+` and `*` are
// N-ary folds over at least two numeric arguments; `-`, `/`, `%` and
// the comparisons are strictly binary; `==` and `!=` compare any two
// Values.
func arithmeticEntries() []entry {
	return []entry{
		{name: "+", pure: numericFold("+", 0, func(acc, v int64) int64 { return acc + v })},
		{name: "*", pure: numericFold("*", 1, func(acc, v int64) int64 { return acc * v })},
		{name: "-", pure: binaryNumeric("-", func(x, y int64) (vm.Value, error) { return vm.Number(x - y), nil })},
		{name: "/", pure: binaryNumeric("/", func(x, y int64) (vm.Value, error) {
			if y == 0 {
				return nil, externalFunctionError("/", "attempted to divide by zero")
			}
			return vm.Number(x / y), nil
		})},
		{name: "%", pure: binaryNumeric("%", func(x, y int64) (vm.Value, error) {
			if y == 0 {
				return nil, externalFunctionError("%", "attempted to divide by zero")
			}
			return vm.Number(x % y), nil
		})},
		{name: "<", pure: binaryNumeric("<", func(x, y int64) (vm.Value, error) { return vm.Boolean(x < y), nil })},
		{name: ">", pure: binaryNumeric(">", func(x, y int64) (vm.Value, error) { return vm.Boolean(x > y), nil })},
		{name: "<=", pure: binaryNumeric("<=", func(x, y int64) (vm.Value, error) { return vm.Boolean(x <= y), nil })},
		{name: ">=", pure: binaryNumeric(">=", func(x, y int64) (vm.Value, error) { return vm.Boolean(x >= y), nil })},
		{name: "==", ctx: equalityFn("==", false)},
		{name: "!=", ctx: equalityFn("!=", true)},
	}
}

func numericFold(name string, seed int64, step func(acc, v int64) int64) func([]vm.Value) (vm.Value, error) {
	return func(args []vm.Value) (vm.Value, error) {
		if len(args) < 2 {
			return nil, externalFunctionError(name, "Expected at least 2 arguments")
		}
		acc := seed
		for _, a := range args {
			n, err := asNumber(name, a)
			if err != nil {
				return nil, err
			}
			acc = step(acc, n)
		}
		return vm.Number(acc), nil
	}
}

func binaryNumeric(name string, op func(x, y int64) (vm.Value, error)) func([]vm.Value) (vm.Value, error) {
	return func(args []vm.Value) (vm.Value, error) {
		if len(args) != 2 {
			return nil, externalFunctionError(name, "Expected 2 numeric arguments")
		}
		x, err := asNumber(name, args[0])
		if err != nil {
			return nil, err
		}
		y, err := asNumber(name, args[1])
		if err != nil {
			return nil, err
		}
		return op(x, y)
	}
}

// equalityFn needs call-site context because vm.Equal can raise an
// ExecutionError carrying a source.Location: comparing Function or
// TypeDefinition values always raises.
func equalityFn(name string, negate bool) func(ctx *vm.CallContext) (vm.Value, error) {
	return func(ctx *vm.CallContext) (vm.Value, error) {
		if len(ctx.Args) != 2 {
			return nil, externalFunctionError(name, "Expected 2 arguments")
		}
		eq, err := vm.Equal(ctx.Args[0], ctx.Args[1], ctx.Site)
		if err != nil {
			return nil, err
		}
		if negate {
			eq = !eq
		}
		return vm.Boolean(eq), nil
	}
}
