package convert

// substitute replaces the first ref to each allocated heap slot with the
// commands that build it. Allocations are consumed last-allocated first: a
// ref only matches the allocation on top of the stack.
//
// With strict set, a ref to a still-pending slot that is not on top, or an
// allocation never consumed, is reported as HeapOrderMismatch instead of being
// passed through.
func substitute(r *replayed, strict bool) ([]instr, error) {
	allocs := r.allocs
	out := make([]instr, 0, len(r.buf)+len(r.allocs))

	var pending map[uint32]struct{}
	if strict {
		pending = make(map[uint32]struct{}, len(allocs))
		for _, a := range allocs {
			pending[a.slot] = struct{}{}
		}
	}

	for _, in := range r.buf {
		if in.kind != instrRef {
			out = append(out, in)
			continue
		}
		if n := len(allocs); n > 0 && allocs[n-1].slot == in.arg {
			top := allocs[n-1]
			allocs = allocs[:n-1]
			delete(pending, top.slot)
			out = r.expand(out, top)
			continue
		}
		if _, ok := pending[in.arg]; ok {
			return nil, &ConversionError{Errno: HeapOrderMismatch, Pos: -1, Operand: in.arg}
		}
		out = append(out, in)
	}

	if strict && len(allocs) > 0 {
		return nil, &ConversionError{Errno: HeapOrderMismatch, Pos: -1, Operand: allocs[len(allocs)-1].slot}
	}
	return out, nil
}

// expand emits the commands that build and save one heap allocation.
func (r *replayed) expand(out []instr, a heapAlloc) []instr {
	if !a.value.term {
		return append(out, instr{kind: instrDummy, arg: a.value.id})
	}
	n := r.arena.node(a.value)
	out = r.arena.flattenOne(out, a.value)
	return append(out, instr{kind: instrTermSave, arg: n.id})
}
