package convert

import "github.com/funvibe/mmbconv/internal/opcode"

var proofOps = [...]opcode.Proof{
	instrRef:      opcode.PROOF_REF,
	instrTerm:     opcode.PROOF_TERM,
	instrTermSave: opcode.PROOF_TERM_SAVE,
	instrDummy:    opcode.PROOF_DUMMY,
	instrHyp:      opcode.PROOF_HYP,
}

// project maps internal instructions onto proof commands. HYP carries 0.
func project(buf []instr) []opcode.ProofCommand {
	out := make([]opcode.ProofCommand, len(buf))
	for i, in := range buf {
		out[i] = opcode.ProofCommand{Opcode: proofOps[in.kind], Operand: in.arg}
	}
	return out
}
