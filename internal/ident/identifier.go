// Package ident implements Rasp's validated identifier type: either
// one of the reserved operator names or a name matching
// [A-Za-z][A-Za-z0-9_]*.
package ident

import "fmt"

// operatorWhitelist is the fixed set of operator "names" that are
// valid identifiers despite not matching the alphanumeric grammar.
var operatorWhitelist = map[string]bool{
	"+": true, "-": true, "/": true, "*": true, "%": true,
	"<": true, ">": true, "==": true, "!=": true, "<=": true, ">=": true,
	"&&": true, "||": true, "!": true,
}

// Identifier is an immutable, validated name. The zero value is not a
// valid Identifier; construct one with New.
type Identifier struct {
	name string
}

// New validates name and returns an Identifier wrapping it, or an
// error if name is not a legal identifier. Building an invalid
// Identifier is a programmer error in core code; callers that validate
// user input (the lexer, the compiler) should surface this as a
// LexError/ParseError rather than calling New blindly.
func New(name string) (Identifier, error) {
	if !IsValid(name) {
		return Identifier{}, fmt.Errorf("invalid identifier %q", name)
	}
	return Identifier{name: name}, nil
}

// MustNew is New, panicking on an invalid name. Reserved for call
// sites where the name has already been validated (e.g. re-wrapping a
// name pulled out of a Token known to be an identifier token).
func MustNew(name string) Identifier {
	id, err := New(name)
	if err != nil {
		panic(err)
	}
	return id
}

// IsValid reports whether name is a legal Rasp identifier: one of the
// whitelisted operator names, or a string matching
// [A-Za-z][A-Za-z0-9_]*.
func IsValid(name string) bool {
	if operatorWhitelist[name] {
		return true
	}
	if name == "" {
		return false
	}
	first := name[0]
	if !isAlpha(first) {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isAlpha(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Name returns the underlying text.
func (id Identifier) Name() string {
	return id.name
}

func (id Identifier) String() string {
	return id.name
}

// Equal compares two identifiers by their underlying text.
func (id Identifier) Equal(other Identifier) bool {
	return id.name == other.name
}

// Less orders identifiers by their underlying text.
func (id Identifier) Less(other Identifier) bool {
	return id.name < other.name
}
