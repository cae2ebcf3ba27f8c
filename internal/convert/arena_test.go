package convert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaBuild(t *testing.T) {
	var a arena
	stack := evalStack{heapRef(0), heapRef(1), heapRef(2)}

	p := a.build(9, 2, &stack)
	require.True(t, p.term)
	require.Equal(t, 1, stack.depth())
	require.Equal(t, []pointer{heapRef(1), heapRef(2)}, a.argsOf(a.node(p)))

	// later pushes must not disturb a built node's argument run
	stack.push(heapRef(7))
	stack.push(p)
	q := a.build(4, 2, &stack)
	require.Equal(t, []pointer{heapRef(7), p}, a.argsOf(a.node(q)))
	require.Equal(t, []pointer{heapRef(1), heapRef(2)}, a.argsOf(a.node(p)))
	require.Equal(t, []pointer{heapRef(0)}, []pointer(stack))
}

func TestFlatten(t *testing.T) {
	var a arena
	stack := evalStack{heapRef(5), heapRef(6)}
	inner := a.build(1, 2, &stack) // 1(5, 6)
	stack.push(heapRef(3))
	stack.push(inner)
	outer := a.build(2, 2, &stack) // 2(3, 1(5, 6))

	got := a.flatten(nil, heapRef(8), outer)
	require.Equal(t, []instr{
		{instrRef, 8},
		{instrRef, 6},
		{instrRef, 5},
		{instrTerm, 1},
		{instrRef, 3},
		{instrTerm, 2},
	}, got)
}

func TestProject(t *testing.T) {
	got := project([]instr{{instrHyp, 0}, {instrDummy, 4}, {instrTermSave, 2}})
	require.Equal(t, pHyp, got[0])
	require.Equal(t, pDummy(4), got[1])
	require.Equal(t, pTermSave(2), got[2])
}
