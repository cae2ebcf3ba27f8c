package opcode

import "fmt"

// Opcode is satisfied by both stream dialects
type Opcode interface {
	~byte
	fmt.Stringer
	Valid() bool
}

// Command is one instruction of a stream: an opcode and its operand.
// Opcodes without a meaningful operand carry 0.
type Command[O Opcode] struct {
	Opcode  O
	Operand uint32
}

type (
	UnifyCommand = Command[Unify]
	ProofCommand = Command[Proof]
)

func (c Command[O]) String() string {
	return fmt.Sprintf("%s %d", c.Opcode, c.Operand)
}

// U builds a unify command
func U(op Unify, operand uint32) UnifyCommand {
	return UnifyCommand{Opcode: op, Operand: operand}
}

// P builds a proof command
func P(op Proof, operand uint32) ProofCommand {
	return ProofCommand{Opcode: op, Operand: operand}
}
