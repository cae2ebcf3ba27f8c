package convert

import (
	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/opcode"
)

// heapAlloc pairs a heap slot with the value it stands for: a term, or for a
// dummy variable the heap ref of its sort.
type heapAlloc struct {
	slot  uint32
	value pointer
}

// replayed is everything the back-substitution pass needs from the replay.
type replayed struct {
	buf    []instr
	arena  arena
	allocs []heapAlloc // decreasing slot order; the last one is consumed first
}

// scan returns the commands before the first END and the heap size after
// them: initVars plus one slot per TERM_SAVE and DUMMY.
func scan(unify []opcode.UnifyCommand, initVars uint32) ([]opcode.UnifyCommand, uint32) {
	counter := initVars
	for i, cmd := range unify {
		switch cmd.Opcode {
		case opcode.UNIFY_END:
			return unify[:i], counter
		case opcode.UNIFY_TERM_SAVE, opcode.UNIFY_DUMMY:
			counter++
		}
	}
	return unify, counter
}

// replay runs held backwards on an evaluation stack. Heap slots are handed out
// from counter downwards. The returned buffer is in forward order and holds
// only REF, TERM and HYP entries.
func replay(held []opcode.UnifyCommand, counter uint32, arities arity.Lookup) (*replayed, error) {
	r := &replayed{}
	var stack evalStack

	build := func(pos int, cmd opcode.UnifyCommand) (pointer, error) {
		nargs, ok := arities.Arity(cmd.Operand)
		if !ok {
			return pointer{}, &ConversionError{Errno: InvalidTermIndex, Pos: pos, Opcode: cmd.Opcode, Operand: cmd.Operand}
		}
		if int(nargs) > stack.depth() {
			return pointer{}, &ConversionError{Errno: StackUnderflow, Pos: pos, Opcode: cmd.Opcode, Operand: cmd.Operand}
		}
		return r.arena.build(cmd.Operand, nargs, &stack), nil
	}
	alloc := func(value pointer) {
		slot := counter
		counter--
		stack.push(heapRef(slot))
		r.allocs = append(r.allocs, heapAlloc{slot: slot, value: value})
	}

	for pos := len(held) - 1; pos >= 0; pos-- {
		cmd := held[pos]
		switch cmd.Opcode {
		case opcode.UNIFY_END:
			// scan already cut the stream here
		case opcode.UNIFY_REF:
			stack.push(heapRef(cmd.Operand))
		case opcode.UNIFY_TERM:
			p, err := build(pos, cmd)
			if err != nil {
				return nil, err
			}
			stack.push(p)
		case opcode.UNIFY_TERM_SAVE:
			p, err := build(pos, cmd)
			if err != nil {
				return nil, err
			}
			alloc(p)
		case opcode.UNIFY_DUMMY:
			alloc(heapRef(cmd.Operand))
		case opcode.UNIFY_HYP:
			r.buf = r.arena.flatten(r.buf, stack...)
			stack.clear()
			r.buf = append(r.buf, instr{kind: instrHyp})
		}
	}

	r.buf = r.arena.flatten(r.buf, stack...)
	stack.clear()
	return r, nil
}
