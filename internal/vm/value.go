package vm

import (
	"fmt"
	"strings"

	"github.com/rasp-lang/rasp/internal/escape"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/source"
)

// Kind identifies which of the eight Value variants a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindTypeDefinition
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindFunction:
		return "Function"
	case KindTypeDefinition:
		return "TypeDefinition"
	default:
		return "Unknown"
	}
}

// Value is Rasp's runtime sum type. Container variants own their
// payload directly; Clone deep-copies containers and shallow-copies
// functions via the Function's own clone hook.
type Value interface {
	Kind() Kind
	Truthy() bool
	Clone() Value
	// Display is the "human" print form (used by print/concat).
	Display() string
	// Inspect is the diagnostic form (used in error messages, instruction
	// dumps, and scenario result checks), with strings re-quoted/escaped.
	Inspect() string
}

// Nil is the sole Nil value; it compares equal only to itself and is
// always falsey.
type Nil struct{}

func (Nil) Kind() Kind      { return KindNil }
func (Nil) Truthy() bool    { return false }
func (Nil) Clone() Value    { return Nil{} }
func (Nil) Display() string { return "nil" }
func (Nil) Inspect() string { return "nil" }

// Boolean wraps a bool.
type Boolean bool

func (b Boolean) Kind() Kind   { return KindBoolean }
func (b Boolean) Truthy() bool { return bool(b) }
func (b Boolean) Clone() Value { return b }
func (b Boolean) Display() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Boolean) Inspect() string { return b.Display() }

// Number wraps a signed integer; Rasp has no float type.
type Number int64

func (n Number) Kind() Kind      { return KindNumber }
func (n Number) Truthy() bool    { return n != 0 }
func (n Number) Clone() Value    { return n }
func (n Number) Display() string { return fmt.Sprintf("%d", int64(n)) }
func (n Number) Inspect() string { return n.Display() }

// String wraps text. Display returns the raw contents; Inspect
// re-escapes it for diagnostic printing.
type String string

func (s String) Kind() Kind      { return KindString }
func (s String) Truthy() bool    { return len(s) > 0 }
func (s String) Clone() Value    { return s }
func (s String) Display() string { return string(s) }
func (s String) Inspect() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc, ok := escape.Escape(c); ok {
			sb.WriteByte('\\')
			sb.WriteByte(esc)
		} else {
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Array is an ordered, homogeneous-or-not sequence of Values.
type Array struct {
	Elements []Value
}

// NewArray builds an Array value from elements (not copied further by
// this call; callers that need isolation should Clone the result).
func NewArray(elements []Value) *Array {
	return &Array{Elements: elements}
}

func (a *Array) Kind() Kind   { return KindArray }
func (a *Array) Truthy() bool { return len(a.Elements) > 0 }
func (a *Array) Clone() Value {
	cloned := make([]Value, len(a.Elements))
	for i, v := range a.Elements {
		cloned[i] = v.Clone()
	}
	return &Array{Elements: cloned}
}
func (a *Array) Display() string { return a.render(Value.Display) }
func (a *Array) Inspect() string { return a.render(Value.Inspect) }

func (a *Array) render(stringer func(Value) string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(stringer(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Object is an insertion-order-irrelevant mapping from member name to
// Value. Keys are kept alongside the map so printing can
// produce a stable order.
type Object struct {
	Members map[string]Value
	order   []string
}

// NewObject builds an Object from an ordered list of (name, value)
// pairs. names and values must be the same length.
func NewObject(names []string, values []Value) *Object {
	members := make(map[string]Value, len(names))
	order := make([]string, len(names))
	copy(order, names)
	for i, n := range names {
		members[n] = values[i]
	}
	return &Object{Members: members, order: order}
}

func (o *Object) Kind() Kind   { return KindObject }
func (o *Object) Truthy() bool { return true }
func (o *Object) Clone() Value {
	members := make(map[string]Value, len(o.Members))
	for k, v := range o.Members {
		members[k] = v.Clone()
	}
	order := make([]string, len(o.order))
	copy(order, o.order)
	return &Object{Members: members, order: order}
}
func (o *Object) Display() string { return o.render(Value.Display) }
func (o *Object) Inspect() string { return o.render(Value.Inspect) }

func (o *Object) render(stringer func(Value) string) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range o.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(" = ")
		sb.WriteString(stringer(o.Members[name]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// Get looks up a member by name.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.Members[name]
	return v, ok
}

// FunctionValue wraps a callable Function as a Value.
type FunctionValue struct {
	Fn Function
}

func (f FunctionValue) Kind() Kind      { return KindFunction }
func (f FunctionValue) Truthy() bool    { return true }
func (f FunctionValue) Clone() Value    { return FunctionValue{Fn: f.Fn.CloneFn()} }
func (f FunctionValue) Display() string { return "<function: " + f.Fn.Name() + ">" }
func (f FunctionValue) Inspect() string { return f.Display() }

// TypeDefinition is a first-class value naming a record shape: a type
// name plus an ordered member-name list, used by the `new` host
// function to construct Objects.
type TypeDefinition struct {
	TypeName string
	Members  []string
}

func (t *TypeDefinition) Kind() Kind      { return KindTypeDefinition }
func (t *TypeDefinition) Truthy() bool    { return true }
func (t *TypeDefinition) Clone() Value    { return t } // immutable, cheap to share
func (t *TypeDefinition) Display() string { return "<type: " + t.TypeName + ">" }
func (t *TypeDefinition) Inspect() string { return t.Display() }

// Equal compares two Values. Values of different Kind are never equal
// and never raise. Comparing two Function or two TypeDefinition values
// always raises ExecutionError, regardless of identity, at loc.
func Equal(a, b Value, loc source.Location) (bool, error) {
	if a.Kind() != b.Kind() {
		return false, nil
	}
	switch av := a.(type) {
	case Nil:
		return true, nil
	case Boolean:
		return av == b.(Boolean), nil
	case Number:
		return av == b.(Number), nil
	case String:
		return av == b.(String), nil
	case *Array:
		bv := b.(*Array)
		if len(av.Elements) != len(bv.Elements) {
			return false, nil
		}
		for i := range av.Elements {
			eq, err := Equal(av.Elements[i], bv.Elements[i], loc)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *Object:
		bv := b.(*Object)
		if len(av.Members) != len(bv.Members) {
			return false, nil
		}
		for k, v := range av.Members {
			ov, ok := bv.Members[k]
			if !ok {
				return false, nil
			}
			eq, err := Equal(v, ov, loc)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case FunctionValue:
		return false, rasperrors.NewExecutionError(loc, "Comparing functions is not supported")
	case *TypeDefinition:
		return false, rasperrors.NewExecutionError(loc, "Comparing types is not supported")
	default:
		return false, rasperrors.NewInternalError(fmt.Sprintf("unhandled value kind in Equal: %T", a))
	}
}
