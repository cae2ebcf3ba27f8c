package convert

// pointer is either a heap slot reference or an index into the term arena.
type pointer struct {
	term bool
	id   uint32
}

func heapRef(slot uint32) pointer { return pointer{id: slot} }
func termRef(node uint32) pointer { return pointer{term: true, id: node} }

// termNode owns args[off:off+nargs] of the arena's argument storage.
type termNode struct {
	id    uint32
	nargs uint32
	off   int
}

// arena is append-only: nodes and their argument runs are never resized or shared.
type arena struct {
	nodes []termNode
	args  []pointer
}

// build pops nargs pointers off the top of stack, keeping their order, and
// stores them as the argument run of a new node.
func (a *arena) build(id, nargs uint32, stack *evalStack) pointer {
	node := termNode{id: id, nargs: nargs, off: len(a.args)}
	a.args = append(a.args, stack.popN(int(nargs))...)
	a.nodes = append(a.nodes, node)
	return termRef(uint32(len(a.nodes) - 1))
}

func (a *arena) node(p pointer) termNode {
	return a.nodes[p.id]
}

func (a *arena) argsOf(n termNode) []pointer {
	return a.args[n.off : n.off+int(n.nargs)]
}
