// Package scope implements the compiler's compile-time Declarations
// scope stack: an innermost-first list of frames that classifies each
// identifier reference as Local, Closure, Global, or Undefined.
package scope

import "github.com/rasp-lang/rasp/internal/ident"

// Classification is the result of resolving an identifier against a
// Declarations stack.
type Classification int

const (
	Undefined Classification = iota
	Local
	Closure
	Global
)

func (c Classification) String() string {
	switch c {
	case Local:
		return "local"
	case Closure:
		return "closure"
	case Global:
		return "global"
	default:
		return "undefined"
	}
}

// frame holds the identifiers declared directly in one lexical scope.
type frame struct {
	declared []ident.Identifier
}

func (f frame) isDefined(id ident.Identifier) bool {
	for _, d := range f.declared {
		if d.Equal(id) {
			return true
		}
	}
	return false
}

// Declarations is an innermost-first stack of frames. The
// zero value is not usable; construct one with New or NewGlobal.
type Declarations struct {
	innerToOuter []frame
}

// New returns a Declarations with a single, empty scope. The compiler
// itself builds function-body scopes with Nested instead.
func New() *Declarations {
	return &Declarations{innerToOuter: []frame{{}}}
}

// NewGlobal returns a Declarations whose single (and therefore
// outermost) scope is pre-populated with names, the way the compiler
// seeds its top-level scope stack from the interpreter's global
// mapping before compiling a unit.
func NewGlobal(names []ident.Identifier) *Declarations {
	return &Declarations{innerToOuter: []frame{{declared: append([]ident.Identifier(nil), names...)}}}
}

// Nested returns a new Declarations with an additional, empty
// innermost scope pushed in front of d's frames, used when entering a
// defun body. d itself is left untouched.
func (d *Declarations) Nested() *Declarations {
	frames := make([]frame, 0, len(d.innerToOuter)+1)
	frames = append(frames, frame{})
	frames = append(frames, d.innerToOuter...)
	return &Declarations{innerToOuter: frames}
}

// Add declares id in the innermost scope. Callers must check IsDefined
// first; a duplicate declaration is a ParseError the compiler raises
// itself, not a panic here.
func (d *Declarations) Add(id ident.Identifier) {
	d.innerToOuter[0].declared = append(d.innerToOuter[0].declared, id)
}

// IsDefined reports whether id is declared anywhere on the stack.
func (d *Declarations) IsDefined(id ident.Identifier) bool {
	return d.Classify(id) != Undefined
}

// Classify resolves id against the stack: Local if found
// in the innermost frame, Global if found only in the outermost frame,
// Closure if found at any intermediate frame, Undefined otherwise.
func (d *Declarations) Classify(id ident.Identifier) Classification {
	last := len(d.innerToOuter) - 1
	for i, f := range d.innerToOuter {
		if !f.isDefined(id) {
			continue
		}
		switch {
		case i == last:
			return Global
		case i == 0:
			return Local
		default:
			return Closure
		}
	}
	return Undefined
}
