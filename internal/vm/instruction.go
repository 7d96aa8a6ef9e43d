package vm

import (
	"fmt"

	"github.com/rasp-lang/rasp/internal/ident"
	"github.com/rasp-lang/rasp/internal/source"
)

// Opcode identifies what an Instruction does.
type Opcode uint8

const (
	OpPush Opcode = iota
	OpCall
	OpLoop
	OpJump
	OpCondJump
	OpClose
	OpRefLocal
	OpRefGlobal
	OpRefClosure
	OpInitLocal
	OpInitGlobal
	OpAssignLocal
	OpAssignGlobal
	OpAssignClosure
	OpInitClosure
	OpMemberAccess
)

// OpcodeNames gives each Opcode a debug name, used by Dump and trace
// output.
var OpcodeNames = map[Opcode]string{
	OpPush:          "push",
	OpCall:          "call",
	OpLoop:          "loop",
	OpJump:          "jump",
	OpCondJump:      "cond_jump",
	OpClose:         "close",
	OpRefLocal:      "ref_local",
	OpRefGlobal:     "ref_global",
	OpRefClosure:    "ref_closure",
	OpInitLocal:     "init_local",
	OpInitGlobal:    "init_global",
	OpAssignLocal:   "assign_local",
	OpAssignGlobal:  "assign_global",
	OpAssignClosure: "assign_closure",
	OpInitClosure:   "init_closure",
	OpMemberAccess:  "member_access",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", op)
}

// Instruction is a single (opcode, immediate, source location)
// triple. The immediate is itself a Value: literal Values for Push, a
// Number for the jump/call/close operand counts, and a String holding
// an identifier name for every Ref/Init/Assign/MemberAccess
// instruction.
type Instruction struct {
	Op        Opcode
	Immediate Value
	Loc       source.Location
}

// List is a flat, owned instruction stream, one per compilation unit:
// the top-level program or a single InternalFunction body.
type List []Instruction

// --- constructors ---

func Push(loc source.Location, v Value) Instruction {
	return Instruction{Op: OpPush, Immediate: v, Loc: loc}
}

func Call(loc source.Location, argc int) Instruction {
	return Instruction{Op: OpCall, Immediate: Number(argc), Loc: loc}
}

func Loop(loc source.Location, instructions int) Instruction {
	return Instruction{Op: OpLoop, Immediate: Number(instructions), Loc: loc}
}

func Jump(loc source.Location, instructions int) Instruction {
	return Instruction{Op: OpJump, Immediate: Number(instructions), Loc: loc}
}

func CondJump(loc source.Location, instructions int) Instruction {
	return Instruction{Op: OpCondJump, Immediate: Number(instructions), Loc: loc}
}

func Close(loc source.Location, captureCount int) Instruction {
	return Instruction{Op: OpClose, Immediate: Number(captureCount), Loc: loc}
}

func RefLocal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpRefLocal, Immediate: String(id.Name()), Loc: loc}
}

func RefGlobal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpRefGlobal, Immediate: String(id.Name()), Loc: loc}
}

func RefClosure(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpRefClosure, Immediate: String(id.Name()), Loc: loc}
}

func InitLocal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpInitLocal, Immediate: String(id.Name()), Loc: loc}
}

func InitGlobal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpInitGlobal, Immediate: String(id.Name()), Loc: loc}
}

func AssignLocal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpAssignLocal, Immediate: String(id.Name()), Loc: loc}
}

func AssignGlobal(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpAssignGlobal, Immediate: String(id.Name()), Loc: loc}
}

func AssignClosure(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpAssignClosure, Immediate: String(id.Name()), Loc: loc}
}

func InitClosure(loc source.Location, id ident.Identifier) Instruction {
	return Instruction{Op: OpInitClosure, Immediate: String(id.Name()), Loc: loc}
}

func MemberAccess(loc source.Location, name string) Instruction {
	return Instruction{Op: OpMemberAccess, Immediate: String(name), Loc: loc}
}

// refTypeFor maps a Ref/Init/Assign opcode to the RefType it targets.
func refTypeFor(op Opcode) (RefType, bool) {
	switch op {
	case OpRefLocal, OpInitLocal, OpAssignLocal:
		return Local, true
	case OpRefGlobal, OpInitGlobal, OpAssignGlobal:
		return Global, true
	case OpRefClosure, OpAssignClosure:
		return Closure, true
	default:
		return 0, false
	}
}

// Dump renders a human-readable disassembly, one instruction per line,
// for the --print-instructions CLI flag.
func Dump(list List) string {
	out := ""
	for i, instr := range list {
		out += fmt.Sprintf("%4d: %-14s %s\t; %s\n", i, instr.Op, immediateText(instr), instr.Loc)
	}
	return out
}

func immediateText(instr Instruction) string {
	switch imm := instr.Immediate.(type) {
	case String:
		return string(imm)
	case Number:
		return imm.Display()
	default:
		return imm.Inspect()
	}
}
