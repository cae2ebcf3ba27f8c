package convert

type instrKind uint8

const (
	instrRef instrKind = iota
	instrTerm
	instrTermSave
	instrDummy
	instrHyp
)

// instr is a proof command before projection onto opcode.Proof.
type instr struct {
	kind instrKind
	arg  uint32
}

// flatten appends each pointer's subtree in the given order: a heap slot
// becomes a single ref, a term emits its arguments right to left and then itself.
func (a *arena) flatten(out []instr, ptrs ...pointer) []instr {
	for _, p := range ptrs {
		out = a.flattenOne(out, p)
	}
	return out
}

func (a *arena) flattenOne(out []instr, p pointer) []instr {
	if !p.term {
		return append(out, instr{kind: instrRef, arg: p.id})
	}
	out = a.flattenArgs(out, a.node(p))
	return append(out, instr{kind: instrTerm, arg: a.node(p).id})
}

func (a *arena) flattenArgs(out []instr, n termNode) []instr {
	args := a.argsOf(n)
	for i := len(args) - 1; i >= 0; i-- {
		out = a.flattenOne(out, args[i])
	}
	return out
}
