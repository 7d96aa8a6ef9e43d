package stdlib

import (
	"strconv"

	"github.com/rasp-lang/rasp/internal/vm"
)

// objectEntries builds `new`, the array helpers, and the small
// type-probing utilities (`is_nil`, `try_convert_string_to_int`).
func objectEntries() []entry {
	return []entry{
		{name: "new", pure: newObject},
		{name: "is_nil", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return nil, externalFunctionError("is_nil", "Expected 1 argument")
			}
			_, ok := args[0].(vm.Nil)
			return vm.Boolean(ok), nil
		}},
		{name: "try_convert_string_to_int", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return nil, externalFunctionError("try_convert_string_to_int", "Expected 1 string argument")
			}
			s, err := asString("try_convert_string_to_int", args[0])
			if err != nil {
				return nil, err
			}
			n, convErr := strconv.ParseInt(s, 10, 64)
			if convErr != nil {
				return vm.Nil{}, nil
			}
			return vm.Number(n), nil
		}},
		{name: "array_new", pure: func(args []vm.Value) (vm.Value, error) {
			elements := make([]vm.Value, len(args))
			copy(elements, args)
			return vm.NewArray(elements), nil
		}},
		{name: "array_length", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return nil, externalFunctionError("array_length", "Expected 1 array argument")
			}
			a, err := asArray("array_length", args[0])
			if err != nil {
				return nil, err
			}
			return vm.Number(len(a.Elements)), nil
		}},
		{name: "array_element", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 2 {
				return nil, externalFunctionError("array_element", "Expected 2 arguments")
			}
			a, err := asArray("array_element", args[0])
			if err != nil {
				return nil, err
			}
			i, err := asNumber("array_element", args[1])
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(a.Elements) {
				return nil, externalFunctionError("array_element", arrayBoundsMessage(len(a.Elements), i))
			}
			return a.Elements[i], nil
		}},
		{name: "array_set_element", pure: func(args []vm.Value) (vm.Value, error) {
			if len(args) != 3 {
				return nil, externalFunctionError("array_set_element", "Expected 3 arguments")
			}
			a, err := asArray("array_set_element", args[0])
			if err != nil {
				return nil, err
			}
			i, err := asNumber("array_set_element", args[1])
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(a.Elements) {
				return nil, externalFunctionError("array_set_element", arrayBoundsMessage(len(a.Elements), i))
			}
			updated := a.Clone().(*vm.Array)
			updated.Elements[i] = args[2]
			return updated, nil
		}},
	}
}

func arrayBoundsMessage(length int, index int64) string {
	return "Array has " + strconv.Itoa(length) + " elements, cannot get index " + strconv.FormatInt(index, 10)
}

// newObject implements `new TypeDef args…`: args[0] must
// be a TypeDefinition; the remaining args must match its member count
// exactly and become the Object's values in member order.
func newObject(args []vm.Value) (vm.Value, error) {
	if len(args) == 0 {
		return nil, externalFunctionError("new", "Expected a type definition argument")
	}
	def, ok := args[0].(*vm.TypeDefinition)
	if !ok {
		return nil, externalFunctionError("new", "Expected a type definition as the first argument")
	}
	values := args[1:]
	if len(values) != len(def.Members) {
		return nil, externalFunctionError("new", "Type '"+def.TypeName+"' has "+
			strconv.Itoa(len(def.Members))+" members but "+strconv.Itoa(len(values))+" arguments were given")
	}
	return vm.NewObject(def.Members, values), nil
}
