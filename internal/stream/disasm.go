package stream

import (
	"fmt"
	"strings"

	"github.com/funvibe/mmbconv/internal/opcode"
)

// Names resolves a term id to a display name. *arity.Table implements it.
type Names interface {
	Name(id uint32) string
}

const (
	ansiReset   = "\033[0m"
	ansiDim     = "\033[2m"
	ansiCyan    = "\033[36m"
	ansiYellow  = "\033[33m"
	ansiGreen   = "\033[32m"
	ansiMagenta = "\033[35m"
)

// Disassembler renders streams in a human-readable table
type Disassembler struct {
	Names Names // optional
	Color bool
}

// Unify disassembles a unify stream
func (d *Disassembler) Unify(title string, cmds []opcode.UnifyCommand) string {
	return disassemble(d, title, cmds, func(op opcode.Unify) (string, bool) {
		switch op {
		case opcode.UNIFY_TERM, opcode.UNIFY_TERM_SAVE:
			return ansiYellow, true
		case opcode.UNIFY_REF:
			return ansiCyan, false
		case opcode.UNIFY_DUMMY:
			return ansiGreen, false
		}
		return ansiMagenta, false
	})
}

// Proof disassembles a proof stream
func (d *Disassembler) Proof(title string, cmds []opcode.ProofCommand) string {
	return disassemble(d, title, cmds, func(op opcode.Proof) (string, bool) {
		switch op {
		case opcode.PROOF_TERM, opcode.PROOF_TERM_SAVE:
			return ansiYellow, true
		case opcode.PROOF_REF:
			return ansiCyan, false
		case opcode.PROOF_DUMMY:
			return ansiGreen, false
		}
		return ansiMagenta, false
	})
}

// style gives an opcode's color and whether its operand is a term id
func disassemble[O opcode.Opcode](d *Disassembler, title string, cmds []opcode.Command[O], style func(O) (string, bool)) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", title))

	for i, c := range cmds {
		color, isTerm := style(c.Opcode)
		sb.WriteString(fmt.Sprintf("%04d ", i))
		sb.WriteString(d.paint(color, fmt.Sprintf("%-10s", c.Opcode.String())))
		sb.WriteString(fmt.Sprintf(" %6d", c.Operand))
		if isTerm && d.Names != nil {
			if name := d.Names.Name(c.Operand); name != "" {
				sb.WriteString(d.paint(ansiDim, "  ; "+name))
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (d *Disassembler) paint(color, s string) string {
	if !d.Color {
		return s
	}
	return color + s + ansiReset
}
