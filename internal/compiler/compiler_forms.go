package compiler

import (
	"fmt"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/rasperrors"
	"github.com/rasp-lang/rasp/internal/scope"
	"github.com/rasp-lang/rasp/internal/source"
	"github.com/rasp-lang/rasp/internal/token"
	"github.com/rasp-lang/rasp/internal/vm"
)

// formFunc compiles one syntactic form: t is the whole list token
// (head included), list is the instruction stream to append to.
type formFunc func(c *Compiler, t token.Token, list *vm.List) error

var syntacticForms map[string]formFunc

func init() {
	syntacticForms = map[string]formFunc{
		"while": compileWhile,
		"if":    compileIf,
		"var":   compileVar,
		"set":   compileSet,
		"inc":   compileInc,
		"type":  compileType,
		"defun": compileDefun,
	}
}

// compileWhile implements `while cond body…`.
func compileWhile(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() < 2 {
		return rasperrors.NewParseError(t.Loc, "'while' expression is missing condition")
	}
	if t.Len() < 3 {
		return rasperrors.NewParseError(t.Loc, "'while' expression is missing code to execute")
	}

	var cond vm.List
	if err := c.compileInto(t.At(1), &cond); err != nil {
		return err
	}
	var body vm.List
	for i := 2; i < t.Len(); i++ {
		if err := c.compileInto(t.At(i), &body); err != nil {
			return err
		}
	}

	bodyN := len(body)
	condN := len(cond)

	*list = append(*list, cond...)
	*list = append(*list, vm.CondJump(t.Loc, bodyN+1))
	*list = append(*list, body...)
	*list = append(*list, vm.Loop(t.Loc, bodyN+1+condN+1))
	return nil
}

// compileIf implements `if cond then… [else else…]`.
func compileIf(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() < 2 {
		return rasperrors.NewParseError(t.Loc, "Conditional expression is missing condition")
	}
	if t.Len() < 3 {
		return rasperrors.NewParseError(t.Loc, "Conditional expression is missing code to execute")
	}

	var cond vm.List
	if err := c.compileInto(t.At(1), &cond); err != nil {
		return err
	}

	elseIdx := -1
	for i := 2; i < t.Len(); i++ {
		child := t.At(i)
		if child.Kind == token.KindKeyword && child.Text == "else" {
			if i == 2 {
				return rasperrors.NewParseError(child.Loc, "'else' cannot appear first in an 'if'")
			}
			if i == t.Len()-1 {
				return rasperrors.NewParseError(child.Loc, "'else' cannot appear last in an 'if'")
			}
			if elseIdx != -1 {
				return rasperrors.NewParseError(child.Loc, "'else' cannot appear a second time in an 'if'")
			}
			elseIdx = i
		}
	}

	thenEnd := t.Len()
	if elseIdx != -1 {
		thenEnd = elseIdx
	}

	var thenList vm.List
	for i := 2; i < thenEnd; i++ {
		if err := c.compileInto(t.At(i), &thenList); err != nil {
			return err
		}
	}

	var elseList vm.List
	if elseIdx != -1 {
		for i := elseIdx + 1; i < t.Len(); i++ {
			if err := c.compileInto(t.At(i), &elseList); err != nil {
				return err
			}
		}
	}

	thenN := len(thenList)
	elseN := len(elseList)

	skip := thenN
	if elseN > 0 {
		skip++
	}

	*list = append(*list, cond...)
	*list = append(*list, vm.CondJump(t.Loc, skip))
	*list = append(*list, thenList...)
	if elseN > 0 {
		*list = append(*list, vm.Jump(t.Loc, elseN))
		*list = append(*list, elseList...)
	}
	return nil
}

// compileVar implements `var declaration init`.
func compileVar(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() != 3 {
		return rasperrors.NewParseError(t.Loc, "'var' requires a name and an initializer")
	}
	decl := t.At(1)
	if decl.Kind != token.KindIdentifier && decl.Kind != token.KindDeclaration {
		return rasperrors.NewParseError(decl.Loc, "'var' requires a name")
	}
	if err := validatePrimitiveType(decl); err != nil {
		return err
	}
	id, err := declarationIdentifier(decl)
	if err != nil {
		return err
	}
	if c.declarations.IsDefined(id) {
		return rasperrors.NewParseError(decl.Loc, fmt.Sprintf("identifier '%s' already defined", id.Name()))
	}

	if err := c.compileInto(t.At(2), list); err != nil {
		return err
	}
	c.declarations.Add(id)

	switch c.declarations.Classify(id) {
	case scope.Local:
		*list = append(*list, vm.InitLocal(t.Loc, id))
	case scope.Global:
		*list = append(*list, vm.InitGlobal(t.Loc, id))
	default:
		return rasperrors.NewInternalError("newly declared identifier classified as closure")
	}
	return nil
}

// compileSet implements `set name value`.
func compileSet(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() != 3 {
		return rasperrors.NewParseError(t.Loc, "'set' requires a name and a value")
	}
	name := t.At(1)
	if name.Kind != token.KindIdentifier {
		return rasperrors.NewParseError(name.Loc, "'set' requires a name")
	}
	id, err := ident.New(name.Text)
	if err != nil {
		return rasperrors.NewParseError(name.Loc, err.Error())
	}
	classification := c.declarations.Classify(id)
	if classification == scope.Undefined {
		return rasperrors.NewParseError(name.Loc, fmt.Sprintf("Identifier '%s' not defined", id.Name()))
	}

	if err := c.compileInto(t.At(2), list); err != nil {
		return err
	}
	return emitAssign(list, t.Loc, classification, id)
}

func emitAssign(list *vm.List, loc source.Location, classification scope.Classification, id ident.Identifier) error {
	switch classification {
	case scope.Local:
		*list = append(*list, vm.AssignLocal(loc, id))
	case scope.Closure:
		*list = append(*list, vm.AssignClosure(loc, id))
	case scope.Global:
		*list = append(*list, vm.AssignGlobal(loc, id))
	default:
		return rasperrors.NewInternalError("cannot assign an undefined identifier")
	}
	return nil
}

// compileInc implements `inc name`, desugaring to `(set name (+ 1
// name))`.
func compileInc(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() != 2 {
		return rasperrors.NewParseError(t.Loc, "'inc' requires exactly one name")
	}
	name := t.At(1)
	if name.Kind != token.KindIdentifier || len(name.Children) > 0 {
		return rasperrors.NewParseError(name.Loc, "'inc' target must be a plain identifier without member access")
	}
	id, err := ident.New(name.Text)
	if err != nil {
		return rasperrors.NewParseError(name.Loc, err.Error())
	}
	classification := c.declarations.Classify(id)
	if classification == scope.Undefined {
		return rasperrors.NewParseError(name.Loc, fmt.Sprintf("Identifier '%s' not defined", id.Name()))
	}
	plus, err := ident.New("+")
	if err != nil {
		return rasperrors.NewInternalError(err.Error())
	}
	plusClass := c.declarations.Classify(plus)
	if plusClass == scope.Undefined {
		return rasperrors.NewParseError(t.Loc, "Identifier '+' not defined")
	}

	*list = append(*list, vm.Push(t.Loc, vm.Number(1)))
	switch classification {
	case scope.Local:
		*list = append(*list, vm.RefLocal(name.Loc, id))
	case scope.Closure:
		*list = append(*list, vm.RefClosure(name.Loc, id))
	case scope.Global:
		*list = append(*list, vm.RefGlobal(name.Loc, id))
	}
	*list = append(*list, vm.RefGlobal(t.Loc, plus))
	*list = append(*list, vm.Call(t.Loc, 2))
	return emitAssign(list, t.Loc, classification, id)
}

// compileType implements `type Name member…`.
func compileType(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() < 2 {
		return rasperrors.NewParseError(t.Loc, "'type' requires a name")
	}
	nameTok := t.At(1)
	if nameTok.Kind != token.KindIdentifier {
		return rasperrors.NewParseError(nameTok.Loc, "'type' requires a name")
	}
	id, err := ident.New(nameTok.Text)
	if err != nil {
		return rasperrors.NewParseError(nameTok.Loc, err.Error())
	}
	if c.declarations.IsDefined(id) {
		return rasperrors.NewParseError(nameTok.Loc, fmt.Sprintf("identifier '%s' already defined", id.Name()))
	}

	members := make([]string, 0, t.Len()-2)
	for i := 2; i < t.Len(); i++ {
		memberTok := t.At(i)
		if err := validatePrimitiveType(memberTok); err != nil {
			return err
		}
		memberID, err := declarationIdentifier(memberTok)
		if err != nil {
			return err
		}
		members = append(members, memberID.Name())
	}

	*list = append(*list, vm.Push(t.Loc, &vm.TypeDefinition{TypeName: id.Name(), Members: members}))
	c.declarations.Add(id)
	switch c.declarations.Classify(id) {
	case scope.Local:
		*list = append(*list, vm.InitLocal(t.Loc, id))
	case scope.Global:
		*list = append(*list, vm.InitGlobal(t.Loc, id))
	default:
		return rasperrors.NewInternalError("newly declared type classified as closure")
	}
	return nil
}

// compileDefun implements `defun name (params) body…`: it allows
// recursion by declaring the name before compiling the body, then
// scans the compiled body for closure references to decide whether the
// result needs capturing.
func compileDefun(c *Compiler, t token.Token, list *vm.List) error {
	if t.Len() < 3 {
		return rasperrors.NewParseError(t.Loc, "'defun' requires a name, a parameter list, and a body")
	}
	nameTok := t.At(1)
	if nameTok.Kind != token.KindIdentifier {
		return rasperrors.NewParseError(nameTok.Loc, "'defun' requires a name")
	}
	id, err := ident.New(nameTok.Text)
	if err != nil {
		return rasperrors.NewParseError(nameTok.Loc, err.Error())
	}
	if c.declarations.IsDefined(id) {
		return rasperrors.NewParseError(nameTok.Loc, fmt.Sprintf("identifier '%s' already defined", id.Name()))
	}
	c.declarations.Add(id)

	paramsTok := t.At(2)
	if paramsTok.Kind != token.KindList {
		return rasperrors.NewParseError(paramsTok.Loc, "'defun' parameter list must be a list")
	}
	params := make([]ident.Identifier, 0, paramsTok.Len())
	for i := 0; i < paramsTok.Len(); i++ {
		pTok := paramsTok.At(i)
		if err := validatePrimitiveType(pTok); err != nil {
			return err
		}
		pid, err := declarationIdentifier(pTok)
		if err != nil {
			return err
		}
		params = append(params, pid)
	}

	inner := &Compiler{declarations: c.declarations.Nested()}
	for _, p := range params {
		inner.declarations.Add(p)
	}

	var body vm.List
	for i := 3; i < t.Len(); i++ {
		if err := inner.compileInto(t.At(i), &body); err != nil {
			return err
		}
	}

	captured := capturedIdentifiers(body)

	fn := &vm.InternalFunction{FnName: id.Name(), Loc: t.Loc, Params: params, Body: body}

	if len(captured) == 0 {
		*list = append(*list, vm.Push(t.Loc, vm.FunctionValue{Fn: fn}))
	} else {
		for _, capturedID := range captured {
			*list = append(*list, vm.InitClosure(t.Loc, capturedID))
		}
		*list = append(*list, vm.Push(t.Loc, vm.FunctionValue{Fn: fn}))
		*list = append(*list, vm.Close(t.Loc, len(captured)))
	}

	switch c.declarations.Classify(id) {
	case scope.Local:
		*list = append(*list, vm.InitLocal(t.Loc, id))
	case scope.Global:
		*list = append(*list, vm.InitGlobal(t.Loc, id))
	default:
		return rasperrors.NewInternalError("newly declared function classified as closure")
	}
	return nil
}

// capturedIdentifiers scans body for RefClosure/AssignClosure targets
// and returns the de-duplicated, first-seen-order set of names.
func capturedIdentifiers(body vm.List) []ident.Identifier {
	seen := map[string]bool{}
	var out []ident.Identifier
	for _, instr := range body {
		if instr.Op != vm.OpRefClosure && instr.Op != vm.OpAssignClosure {
			continue
		}
		name, ok := instr.Immediate.(vm.String)
		if !ok {
			continue
		}
		if seen[string(name)] {
			continue
		}
		seen[string(name)] = true
		out = append(out, ident.MustNew(string(name)))
	}
	return out
}
