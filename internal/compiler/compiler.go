// Package compiler walks a token.Token tree and emits a vm.List: a
// single recursive pass that resolves every identifier against a
// layered scope stack, dispatches keyword-headed lists to their
// syntactic forms, and compiles a fresh instruction list for each
// function body it encounters along the way.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/scope"
	"github.com/rasp-lang/rasp/internal/token"
	"github.com/rasp-lang/rasp/internal/vm"
)

var primitiveTypes = map[string]bool{
	"number": true, "string": true, "boolean": true,
}

// Compiler holds the single piece of mutable state the recursive walk
// needs beyond its own call stack: the compile-time scope.
// Declarations it resolves identifiers against.
type Compiler struct {
	declarations *scope.Declarations
}

// New builds a Compiler whose scope stack is seeded with names, the
// identifiers already bound in the interpreter's global mapping.
func New(names []ident.Identifier) *Compiler {
	return &Compiler{declarations: scope.NewGlobal(names)}
}

// Compile walks root — expected to be the lexer's root list token —
// and returns the flat instruction list for that unit, or the first
// ParseError encountered.
func (c *Compiler) Compile(root token.Token) (vm.List, error) {
	list := vm.List{}
	for i := 0; i < root.Len(); i++ {
		if err := c.compileInto(root.At(i), &list); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (c *Compiler) compileInto(t token.Token, list *vm.List) error {
	switch t.Kind {
	case token.KindNil:
		*list = append(*list, vm.Push(t.Loc, vm.Nil{}))
		return nil

	case token.KindNumber:
		n, err := parseNumber(t)
		if err != nil {
			return err
		}
		*list = append(*list, vm.Push(t.Loc, n))
		return nil

	case token.KindString:
		*list = append(*list, vm.Push(t.Loc, vm.String(t.Text)))
		return nil

	case token.KindBoolean:
		*list = append(*list, vm.Push(t.Loc, vm.Boolean(t.Text == "true")))
		return nil

	case token.KindKeyword:
		return c.compileBareKeyword(t, list)

	case token.KindDeclaration:
		// A bare declaration token outside `var`/`type` context behaves
		// like its name identifier: the type half is only ever consulted
		// by the var/type forms themselves.
		return c.compileIdentifier(t.DeclarationName(), list)

	case token.KindIdentifier:
		return c.compileIdentifier(t, list)

	case token.KindList:
		return c.compileList(t, list)

	default:
		return rasperrors.NewInternalError(fmt.Sprintf("unhandled token kind %s", t.Kind))
	}
}

func (c *Compiler) compileBareKeyword(t token.Token, list *vm.List) error {
	switch t.Text {
	case "true":
		*list = append(*list, vm.Push(t.Loc, vm.Boolean(true)))
	case "false":
		*list = append(*list, vm.Push(t.Loc, vm.Boolean(false)))
	case "nil":
		*list = append(*list, vm.Push(t.Loc, vm.Nil{}))
	default:
		return rasperrors.NewParseError(t.Loc, fmt.Sprintf("Keyword '%s' must be first element of a list", t.Text))
	}
	return nil
}

func (c *Compiler) compileIdentifier(t token.Token, list *vm.List) error {
	id, err := ident.New(t.Text)
	if err != nil {
		return rasperrors.NewParseError(t.Loc, err.Error())
	}
	switch c.declarations.Classify(id) {
	case scope.Undefined:
		return rasperrors.NewParseError(t.Loc, fmt.Sprintf("Identifier '%s' not defined", id.Name()))
	case scope.Local:
		*list = append(*list, vm.RefLocal(t.Loc, id))
	case scope.Closure:
		*list = append(*list, vm.RefClosure(t.Loc, id))
	case scope.Global:
		*list = append(*list, vm.RefGlobal(t.Loc, id))
	}
	for _, member := range t.Children {
		*list = append(*list, vm.MemberAccess(member.Loc, member.Text))
	}
	return nil
}

func (c *Compiler) compileList(t token.Token, list *vm.List) error {
	if t.Len() == 0 {
		return rasperrors.NewParseError(t.Loc, "Empty list is not allowed")
	}

	head := t.At(0)
	if head.Kind == token.KindKeyword {
		form, ok := syntacticForms[head.Text]
		if !ok {
			// Only a literal keyword (true/false/nil) may head a list
			// without being one of the registered forms above, and even
			// then it can't take operands; any other keyword gets its
			// ParseError from compileBareKeyword.
			if t.Len() > 1 && (head.Text == "true" || head.Text == "false" || head.Text == "nil") {
				return rasperrors.NewParseError(head.Loc, fmt.Sprintf("Keyword '%s' cannot take operands", head.Text))
			}
			return c.compileBareKeyword(head, list)
		}
		return form(c, t, list)
	}

	return c.compileCall(t, list)
}

// compileCall compiles an ordinary call `(f a b c)`: arguments
// right-to-left, then the function expression, then Call n.
func (c *Compiler) compileCall(t token.Token, list *vm.List) error {
	argc := t.Len() - 1
	for i := argc; i >= 1; i-- {
		if err := c.compileInto(t.At(i), list); err != nil {
			return err
		}
	}
	if err := c.compileInto(t.At(0), list); err != nil {
		return err
	}
	*list = append(*list, vm.Call(t.Loc, argc))
	return nil
}

func parseNumber(t token.Token) (vm.Number, error) {
	n, err := strconv.ParseInt(t.Text, 10, 64)
	if err != nil {
		return 0, rasperrors.NewInternalError("lexer produced a malformed number literal '" + t.Text + "'")
	}
	return vm.Number(n), nil
}

// validatePrimitiveType checks a declaration token's type half, if
// present; a bare name token carries no type constraint.
func validatePrimitiveType(t token.Token) error {
	if t.Kind != token.KindDeclaration {
		return nil
	}
	typeName := t.DeclarationType().Text
	if !primitiveTypes[typeName] {
		return rasperrors.NewParseError(t.Loc, fmt.Sprintf("Unknown type '%s'", typeName))
	}
	return nil
}

// declarationIdentifier extracts the bound name from either a bare
// identifier token or a name:type declaration token.
func declarationIdentifier(t token.Token) (ident.Identifier, error) {
	name := t
	if t.Kind == token.KindDeclaration {
		name = t.DeclarationName()
	}
	if name.Kind != token.KindIdentifier {
		return ident.Identifier{}, rasperrors.NewParseError(t.Loc, "Expected a name")
	}
	return ident.New(name.Text)
}
