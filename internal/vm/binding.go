package vm

import (
	"fmt"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
)

// Cell is a shared, mutable box around a Value. Backing every local
// and global slot with a Cell (rather than storing Values directly in
// the map) is what lets InitClosure hand a closure a stable handle
// that survives the defining call's return.
type Cell struct {
	Value Value
}

// NewCell boxes v.
func NewCell(v Value) *Cell {
	return &Cell{Value: v}
}

// Globals is the process-wide global mapping. An
// Interpreter owns exactly one for its lifetime; it is populated once
// by the host-function registrar and thereafter mutated only by
// InitGlobal/AssignGlobal instructions.
type Globals struct {
	cells map[ident.Identifier]*Cell
}

// NewGlobals returns an empty global mapping.
func NewGlobals() *Globals {
	return &Globals{cells: make(map[ident.Identifier]*Cell)}
}

// Names returns every identifier currently bound in globals, in no
// particular order. Used to seed the compiler's initial scope stack.
func (g *Globals) Names() []ident.Identifier {
	names := make([]ident.Identifier, 0, len(g.cells))
	for id := range g.cells {
		names = append(names, id)
	}
	return names
}

func (g *Globals) get(id ident.Identifier) (*Cell, bool) {
	c, ok := g.cells[id]
	return c, ok
}

// Bind installs value under id in the global mapping, overwriting any
// existing binding. This is how the host-function registrar populates
// globals at interpreter construction; core code never calls it after
// start-up.
func (g *Globals) Bind(id ident.Identifier, value Value) {
	g.cells[id] = NewCell(value)
}

// RefType identifies which of the three binding mappings an
// instruction addresses.
type RefType int

const (
	Local RefType = iota
	Global
	Closure
)

func (r RefType) String() string {
	switch r {
	case Local:
		return "local"
	case Global:
		return "global"
	case Closure:
		return "closure"
	default:
		return "unknown"
	}
}

// Bindings is a per-function-activation environment: a local mapping
// it owns, a non-owning pointer to the shared global mapping, and
// (inside a closure call) a non-owning pointer to the closure's
// captured-cell mapping.
type Bindings struct {
	locals  map[ident.Identifier]*Cell
	globals *Globals
	closure map[ident.Identifier]*Cell
}

// NewBindings creates a fresh, empty Bindings sharing globals.
func NewBindings(globals *Globals) *Bindings {
	return &Bindings{locals: make(map[ident.Identifier]*Cell), globals: globals}
}

// Globals exposes the shared global mapping, e.g. to build a
// CallContext for a nested call.
func (b *Bindings) Globals() *Globals {
	return b.globals
}

func (b *Bindings) mapping(refType RefType) (map[ident.Identifier]*Cell, error) {
	switch refType {
	case Local:
		return b.locals, nil
	case Global:
		return b.globals.cells, nil
	case Closure:
		if b.closure == nil {
			return nil, rasperrors.NewInternalError("no closure scope is active on this Bindings")
		}
		return b.closure, nil
	default:
		return nil, rasperrors.NewInternalError(fmt.Sprintf("unhandled RefType %d", refType))
	}
}

// Get looks up id in the mapping refType addresses. Absence is an
// InternalError: the compiler should never emit a Ref instruction for
// an unbound identifier.
func (b *Bindings) Get(refType RefType, id ident.Identifier) (Value, error) {
	mapping, err := b.mapping(refType)
	if err != nil {
		return nil, err
	}
	cell, ok := mapping[id]
	if !ok {
		return nil, rasperrors.NewInternalError(fmt.Sprintf(
			"Cannot get an unbound %s identifier: '%s'", refType, id.Name()))
	}
	return cell.Value, nil
}

// Set updates an existing binding's cell in place, so any closure that
// has captured the same cell observes the new value. It is an
// InternalError to Set an identifier that was never Init'd.
func (b *Bindings) Set(refType RefType, id ident.Identifier, value Value) error {
	mapping, err := b.mapping(refType)
	if err != nil {
		return err
	}
	cell, ok := mapping[id]
	if !ok {
		return rasperrors.NewInternalError(fmt.Sprintf(
			"Cannot assign an unbound %s identifier: '%s'", refType, id.Name()))
	}
	cell.Value = value
	return nil
}

// Init binds a brand new cell for id in the mapping refType
// addresses. It is an InternalError to Init an identifier that is
// already bound there.
func (b *Bindings) Init(refType RefType, id ident.Identifier, value Value) error {
	mapping, err := b.mapping(refType)
	if err != nil {
		return err
	}
	if _, ok := mapping[id]; ok {
		return rasperrors.NewInternalError(fmt.Sprintf(
			"Cannot initialize an already bound %s identifier: '%s'", refType, id.Name()))
	}
	mapping[id] = NewCell(value)
	return nil
}

// InitLocal binds a parameter or declared local. Equivalent to
// Init(Local, id, value); kept as a named method because it is the one
// every InternalFunction invocation uses to install its parameters.
func (b *Bindings) InitLocal(id ident.Identifier, value Value) error {
	return b.Init(Local, id, value)
}

// Cell returns the live binding cell for id, searching the local scope
// first and then (if one is active) the closure scope. This is used
// exclusively by the InitClosure instruction to obtain a stable handle
// a Close instruction can fold into a new Closure's captured mapping;
// it deliberately does not search globals, since global bindings are
// never captured by a closure.
func (b *Bindings) Cell(id ident.Identifier) (*Cell, bool) {
	if cell, ok := b.locals[id]; ok {
		return cell, true
	}
	if b.closure != nil {
		if cell, ok := b.closure[id]; ok {
			return cell, true
		}
	}
	return nil, false
}
