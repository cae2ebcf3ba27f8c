// Package opcode defines the MMB command vocabulary shared by the unify and proof streams
package opcode

import (
	"fmt"
	"strings"
)

// Unify is an opcode of the unify stream (how a checker matches a term against a pattern)
type Unify byte

// Proof is an opcode of the proof stream (how a term is rebuilt on a stack machine)
type Proof byte

// Unify opcodes
const (
	UNIFY_END       Unify = 0x00 // End of stream
	UNIFY_TERM      Unify = 0x30 // Match a term node, descend into its arguments
	UNIFY_TERM_SAVE Unify = 0x31 // Same as TERM, then save the matched term to the heap
	UNIFY_REF       Unify = 0x32 // Match against heap slot
	UNIFY_DUMMY     Unify = 0x33 // Bind a fresh dummy variable of the given sort
	UNIFY_HYP       Unify = 0x36 // Start matching the next hypothesis
)

// Proof opcodes
const (
	PROOF_END       Proof = 0x00 // End of stream
	PROOF_TERM      Proof = 0x10 // Pop args, push term
	PROOF_TERM_SAVE Proof = 0x11 // Pop args, push term, save to heap
	PROOF_REF       Proof = 0x12 // Push heap slot
	PROOF_DUMMY     Proof = 0x13 // Push and save a fresh dummy of the given sort
	PROOF_THM       Proof = 0x14 // Pop hyps and args, push theorem conclusion
	PROOF_THM_SAVE  Proof = 0x15 // Same as THM, save to heap
	PROOF_HYP       Proof = 0x16 // Pop hypothesis expression, push proof of it
	PROOF_CONV      Proof = 0x17 // Conversion proof
	PROOF_REFL      Proof = 0x18 // Reflexivity
	PROOF_SYMM      Proof = 0x19 // Symmetry
	PROOF_CONG      Proof = 0x1A // Congruence
	PROOF_UNFOLD    Proof = 0x1B // Definition unfolding
	PROOF_CONV_CUT  Proof = 0x1C // Conversion cut
	PROOF_CONV_REF  Proof = 0x1D // Reference to a saved conversion
	PROOF_CONV_SAVE Proof = 0x1E // Save conversion to heap
	PROOF_SAVE      Proof = 0x1F // Save top of stack to heap
	PROOF_SORRY     Proof = 0x20 // Unproven step
)

// UnifyNames maps unify opcodes to their string names (for debugging)
var UnifyNames = map[Unify]string{
	UNIFY_END:       "END",
	UNIFY_TERM:      "TERM",
	UNIFY_TERM_SAVE: "TERM_SAVE",
	UNIFY_REF:       "REF",
	UNIFY_DUMMY:     "DUMMY",
	UNIFY_HYP:       "HYP",
}

// ProofNames maps proof opcodes to their string names (for debugging)
var ProofNames = map[Proof]string{
	PROOF_END:       "END",
	PROOF_TERM:      "TERM",
	PROOF_TERM_SAVE: "TERM_SAVE",
	PROOF_REF:       "REF",
	PROOF_DUMMY:     "DUMMY",
	PROOF_THM:       "THM",
	PROOF_THM_SAVE:  "THM_SAVE",
	PROOF_HYP:       "HYP",
	PROOF_CONV:      "CONV",
	PROOF_REFL:      "REFL",
	PROOF_SYMM:      "SYMM",
	PROOF_CONG:      "CONG",
	PROOF_UNFOLD:    "UNFOLD",
	PROOF_CONV_CUT:  "CONV_CUT",
	PROOF_CONV_REF:  "CONV_REF",
	PROOF_CONV_SAVE: "CONV_SAVE",
	PROOF_SAVE:      "SAVE",
	PROOF_SORRY:     "SORRY",
}

var (
	unifyByName = invert(UnifyNames)
	proofByName = invert(ProofNames)
)

func invert[O ~byte](names map[O]string) map[string]O {
	out := make(map[string]O, len(names))
	for op, name := range names {
		out[name] = op
	}
	return out
}

func (op Unify) String() string {
	if name, ok := UnifyNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNIFY_%#02x", byte(op))
}

func (op Proof) String() string {
	if name, ok := ProofNames[op]; ok {
		return name
	}
	return fmt.Sprintf("PROOF_%#02x", byte(op))
}

// Valid reports whether op is a known unify opcode
func (op Unify) Valid() bool {
	_, ok := UnifyNames[op]
	return ok
}

// Valid reports whether op is a known proof opcode
func (op Proof) Valid() bool {
	_, ok := ProofNames[op]
	return ok
}

// LookupUnify resolves a mnemonic such as "term_save" to its unify opcode.
func LookupUnify(name string) (Unify, bool) {
	op, ok := unifyByName[normalize(name)]
	return op, ok
}

// LookupProof resolves a mnemonic such as "conv_ref" to its proof opcode.
func LookupProof(name string) (Proof, bool) {
	op, ok := proofByName[normalize(name)]
	return op, ok
}

func normalize(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "-", "_")
}
