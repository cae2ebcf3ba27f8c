package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/mmbconv/internal/opcode"
)

var errParse = errors.New("parse error")

// ParseUnify assembles unify commands from text. Commands are separated by
// newlines or ';', written as a mnemonic and an optional operand:
//
//	term 2      # imp
//	ref 0; ref 1
//
// Mnemonics are case-insensitive, operands may be decimal or 0x-prefixed hex,
// and '#' starts a comment. An "end" command stops assembly.
func ParseUnify(src string) ([]opcode.UnifyCommand, error) {
	return parse(src, opcode.LookupUnify)
}

// ParseProof is ParseUnify for proof commands.
func ParseProof(src string) ([]opcode.ProofCommand, error) {
	return parse(src, opcode.LookupProof)
}

func parse[O opcode.Opcode](src string, lookup func(string) (O, bool)) ([]opcode.Command[O], error) {
	var cmds []opcode.Command[O]
	for l, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			fields := strings.Fields(stmt)
			if len(fields) == 0 {
				continue
			}
			if len(fields) > 2 {
				return nil, fmt.Errorf("line %d: %w: too many fields in %q", l+1, errParse, strings.TrimSpace(stmt))
			}
			op, ok := lookup(fields[0])
			if !ok {
				return nil, fmt.Errorf("line %d: %w: unknown mnemonic %q", l+1, errParse, fields[0])
			}
			if op == 0 {
				return cmds, nil
			}
			var operand uint64
			if len(fields) == 2 {
				var err error
				operand, err = strconv.ParseUint(fields[1], 0, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w: bad operand %q", l+1, errParse, fields[1])
				}
			}
			cmds = append(cmds, opcode.Command[O]{Opcode: op, Operand: uint32(operand)})
		}
	}
	return cmds, nil
}

// Format is the inverse of ParseUnify/ParseProof: one command per line.
func Format[O opcode.Opcode](cmds []opcode.Command[O]) string {
	var sb strings.Builder
	for _, c := range cmds {
		name := strings.ToLower(c.Opcode.String())
		if c.Operand == 0 {
			sb.WriteString(name)
		} else {
			fmt.Fprintf(&sb, "%s %d", name, c.Operand)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
