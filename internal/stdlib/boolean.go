package stdlib

import "github.com/rasp-lang/rasp/internal/vm"

// booleanEntries builds the boolean operator table: `!` takes exactly
// one boolean; `&&` and `||` are N-ary folds over at least two.
func booleanEntries() []entry {
	return []entry{
		{name: "!", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return nil, externalFunctionError("!", "Expected 1 boolean argument")
			}
			b, err := asBoolean("!", args[0])
			if err != nil {
				return nil, err
			}
			return vm.Boolean(!b), nil
		}},
		{name: "&&", pure: booleanFold("&&", true, func(acc, v bool) bool { return acc && v })},
		{name: "||", pure: booleanFold("||", false, func(acc, v bool) bool { return acc || v })},
	}
}

func booleanFold(name string, seed bool, step func(acc, v bool) bool) func([]vm.Value) (vm.Value, error) {
	return func(args []vm.Value) (vm.Value, error) {
		if len(args) < 2 {
			return nil, externalFunctionError(name, "Expected at least 2 arguments")
		}
		acc := seed
		for _, a := range args {
			b, err := asBoolean(name, a)
			if err != nil {
				return nil, err
			}
			acc = step(acc, b)
		}
		return vm.Boolean(acc), nil
	}
}
