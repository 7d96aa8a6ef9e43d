// Package rasperrors implements Rasp's four-kind error taxonomy:
// LexError, ParseError, ExecutionError and InternalError, each
// building an ordered leaf-to-root call trace as it propagates out
// through function boundaries.
package rasperrors

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rasp-lang/rasp/internal/source"
)

// Frame is one entry in a call trace, added at every function boundary
// an error passes through on its way out.
type Frame struct {
	Location source.Location
	Label    string
}

// RaspError is satisfied by all four error kinds. Each carries a
// stable ID so a host embedding Rasp can correlate one failure across
// its own logs and Rasp's printed stack trace.
type RaspError interface {
	error
	ID() uuid.UUID
	Frames() []Frame
	WithFrame(loc source.Location, label string) RaspError
}

type base struct {
	id      uuid.UUID
	message string
	frames  []Frame
}

func newBase(message string) base {
	return base{id: uuid.New(), message: message}
}

func (b base) ID() uuid.UUID    { return b.id }
func (b base) Frames() []Frame  { return b.frames }
func (b *base) addFrame(loc source.Location, label string) {
	b.frames = append(b.frames, Frame{Location: loc, Label: label})
}

func (b base) traceSuffix() string {
	if len(b.frames) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range b.frames {
		sb.WriteString("\n")
		sb.WriteString(f.Location.String())
		sb.WriteString(f.Label)
	}
	return sb.String()
}

// LexError reports malformed source text.
type LexError struct {
	base
	Loc source.Location
}

// NewLexError builds a LexError at loc with the given message.
func NewLexError(loc source.Location, message string) *LexError {
	return &LexError{base: newBase(message), Loc: loc}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Lex error at %s: %s%s", e.Loc, e.message, e.traceSuffix())
}

func (e *LexError) WithFrame(loc source.Location, label string) RaspError {
	e.addFrame(loc, label)
	return e
}

// ParseError reports a compile-time well-formedness failure.
type ParseError struct {
	base
	Loc source.Location
}

// NewParseError builds a ParseError at loc with the given message.
func NewParseError(loc source.Location, message string) *ParseError {
	return &ParseError{base: newBase(message), Loc: loc}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s%s", e.Loc, e.message, e.traceSuffix())
}

func (e *ParseError) WithFrame(loc source.Location, label string) RaspError {
	e.addFrame(loc, label)
	return e
}

// ExecutionError reports a runtime condition only detectable during
// execution.
type ExecutionError struct {
	base
	Loc source.Location
}

// NewExecutionError builds an ExecutionError at loc with the given
// message.
func NewExecutionError(loc source.Location, message string) *ExecutionError {
	return &ExecutionError{base: newBase(message), Loc: loc}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("Execution error at %s: %s%s", e.Loc, e.message, e.traceSuffix())
}

func (e *ExecutionError) WithFrame(loc source.Location, label string) RaspError {
	e.addFrame(loc, label)
	return e
}

// InternalError reports a violated invariant the compiler should have
// enforced — a bug in the implementation itself, not in the Rasp
// program being run. It carries no meaningful
// source location since it is not attributable to program text.
type InternalError struct {
	base
}

// NewInternalError builds an InternalError with the given message.
func NewInternalError(message string) *InternalError {
	return &InternalError{base: newBase(message)}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("Internal error (compiler bug): %s%s", e.message, e.traceSuffix())
}

func (e *InternalError) WithFrame(loc source.Location, label string) RaspError {
	e.addFrame(loc, label)
	return e
}

// AsRaspError unwraps err to a RaspError if it is one.
func AsRaspError(err error) (RaspError, bool) {
	re, ok := err.(RaspError)
	return re, ok
}
