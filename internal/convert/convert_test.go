package convert

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/opcode"
)

const (
	tWff = 0 // 0 args
	tNeg = 1 // 1 arg
	tImp = 2 // 2 args
	tTop = 3 // 0 args
)

func testArities(t *testing.T) *arity.Table {
	t.Helper()
	table, err := arity.NewTable(
		arity.Term{ID: tWff, Name: "wff", Args: 0},
		arity.Term{ID: tNeg, Name: "neg", Args: 1},
		arity.Term{ID: tImp, Name: "imp", Args: 2},
		arity.Term{ID: tTop, Name: "top", Args: 0},
	)
	require.NoError(t, err)
	return table
}

var (
	uRef      = func(n uint32) opcode.UnifyCommand { return opcode.U(opcode.UNIFY_REF, n) }
	uTerm     = func(n uint32) opcode.UnifyCommand { return opcode.U(opcode.UNIFY_TERM, n) }
	uTermSave = func(n uint32) opcode.UnifyCommand { return opcode.U(opcode.UNIFY_TERM_SAVE, n) }
	uDummy    = func(n uint32) opcode.UnifyCommand { return opcode.U(opcode.UNIFY_DUMMY, n) }
	uHyp      = opcode.U(opcode.UNIFY_HYP, 0)
	uEnd      = opcode.U(opcode.UNIFY_END, 0)

	pRef      = func(n uint32) opcode.ProofCommand { return opcode.P(opcode.PROOF_REF, n) }
	pTerm     = func(n uint32) opcode.ProofCommand { return opcode.P(opcode.PROOF_TERM, n) }
	pTermSave = func(n uint32) opcode.ProofCommand { return opcode.P(opcode.PROOF_TERM_SAVE, n) }
	pDummy    = func(n uint32) opcode.ProofCommand { return opcode.P(opcode.PROOF_DUMMY, n) }
	pHyp      = opcode.P(opcode.PROOF_HYP, 0)
)

func TestUnifyToProof(t *testing.T) {
	tests := []struct {
		name     string
		initVars uint32
		in       []opcode.UnifyCommand
		want     []opcode.ProofCommand
	}{
		{
			name: "empty",
			in:   nil,
			want: []opcode.ProofCommand{},
		},
		{
			name: "single ref",
			in:   []opcode.UnifyCommand{uRef(4), uEnd},
			want: []opcode.ProofCommand{pRef(4)},
		},
		{
			name: "nullary term",
			in:   []opcode.UnifyCommand{uTerm(tTop), uEnd},
			want: []opcode.ProofCommand{pTerm(tTop)},
		},
		{
			name: "siblings reversed",
			in:   []opcode.UnifyCommand{uTerm(tImp), uRef(1), uRef(0), uEnd},
			want: []opcode.ProofCommand{pRef(1), pRef(0), pTerm(tImp)},
		},
		{
			name: "preorder becomes postorder",
			in:   []opcode.UnifyCommand{uTerm(tImp), uTerm(tNeg), uRef(0), uRef(1)},
			want: []opcode.ProofCommand{pRef(0), pTerm(tNeg), pRef(1), pTerm(tImp)},
		},
		{
			name: "no end marker",
			in:   []opcode.UnifyCommand{uTerm(tNeg), uRef(2)},
			want: []opcode.ProofCommand{pRef(2), pTerm(tNeg)},
		},
		{
			name: "stream cut at end",
			in:   []opcode.UnifyCommand{uRef(1), uEnd, uTerm(99), uHyp},
			want: []opcode.ProofCommand{pRef(1)},
		},
		{
			name: "term save expanded at its ref",
			in:   []opcode.UnifyCommand{uTermSave(tTop), uRef(1), uEnd},
			want: []opcode.ProofCommand{pTerm(tTop), pTermSave(tTop), pRef(1)},
		},
		{
			name:     "term save slot counts from init vars",
			initVars: 3,
			in:       []opcode.UnifyCommand{uTermSave(tTop), uRef(4)},
			want:     []opcode.ProofCommand{pTerm(tTop), pTermSave(tTop), pRef(4)},
		},
		{
			name:     "saved term with arguments",
			initVars: 2,
			in:       []opcode.UnifyCommand{uTerm(tImp), uTermSave(tNeg), uRef(0), uRef(3)},
			want: []opcode.ProofCommand{
				pRef(0), pTerm(tNeg), pTermSave(tNeg),
				pRef(3),
				pTerm(tImp),
			},
		},
		{
			name: "dummy",
			in:   []opcode.UnifyCommand{uDummy(2), uRef(1), uEnd},
			want: []opcode.ProofCommand{pDummy(2), pRef(1)},
		},
		{
			name: "hyp separates segments",
			in:   []opcode.UnifyCommand{uTerm(tImp), uRef(0), uRef(1), uHyp, uRef(2), uEnd},
			want: []opcode.ProofCommand{pRef(2), pHyp, pRef(0), pRef(1), pTerm(tImp)},
		},
	}

	arities := testArities(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnifyToProof(tt.initVars, tt.in, arities)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("UnifyToProof mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnifyToProof_InvalidTermIndex(t *testing.T) {
	arities := testArities(t)

	tests := []struct {
		name string
		in   []opcode.UnifyCommand
		pos  int
	}{
		{"term", []opcode.UnifyCommand{uRef(0), uTerm(42)}, 1},
		{"term save", []opcode.UnifyCommand{uTermSave(42), uEnd}, 0},
		{"nested", []opcode.UnifyCommand{uTerm(tImp), uTerm(77), uRef(0), uEnd}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnifyToProof(0, tt.in, arities)
			require.Nil(t, got)
			require.ErrorIs(t, err, ErrInvalidTermIndex)

			var cerr *ConversionError
			require.True(t, errors.As(err, &cerr))
			require.Equal(t, InvalidTermIndex, cerr.Errno)
			require.Equal(t, tt.pos, cerr.Pos)
			require.Equal(t, tt.in[tt.pos].Operand, cerr.Operand)
		})
	}
}

func TestUnifyToProof_OnlyTermsNeedArity(t *testing.T) {
	none := arity.Func(func(uint32) (uint32, bool) { return 0, false })

	// dummy sorts and refs are never looked up
	got, err := UnifyToProof(0, []opcode.UnifyCommand{uDummy(42), uRef(1), uHyp, uRef(42)}, none)
	require.NoError(t, err)
	require.Len(t, got, 4)

	_, err = UnifyToProof(0, []opcode.UnifyCommand{uTerm(0)}, none)
	require.ErrorIs(t, err, ErrInvalidTermIndex)
}

func TestUnifyToProof_StackUnderflow(t *testing.T) {
	_, err := UnifyToProof(0, []opcode.UnifyCommand{uTerm(tImp), uRef(0)}, testArities(t))
	require.ErrorIs(t, err, StackUnderflow)
	require.NotErrorIs(t, err, ErrInvalidTermIndex)
	require.EqualError(t, err, "convert: evaluation stack underflow at command 0 (TERM 2)")
}

func TestUnifyToProof_Deterministic(t *testing.T) {
	arities := testArities(t)
	in := []opcode.UnifyCommand{
		uTerm(tImp), uTermSave(tNeg), uDummy(0), uRef(0), uHyp,
		uTerm(tImp), uRef(2), uRef(3), uEnd,
	}
	first, err := UnifyToProof(1, in, arities)
	require.NoError(t, err)
	second, err := UnifyToProof(1, in, arities)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUnifyToProof_HypSegmentsIndependent(t *testing.T) {
	arities := testArities(t)
	left := []opcode.UnifyCommand{uTerm(tNeg), uTerm(tImp), uRef(4), uRef(5)}
	right := []opcode.UnifyCommand{uTerm(tImp), uRef(1), uTerm(tNeg), uRef(0)}

	joined := append(append(append([]opcode.UnifyCommand{}, left...), uHyp), right...)
	got, err := UnifyToProof(0, joined, arities)
	require.NoError(t, err)

	l, err := UnifyToProof(0, left, arities)
	require.NoError(t, err)
	r, err := UnifyToProof(0, right, arities)
	require.NoError(t, err)

	// replay runs backwards, so the segment after HYP is emitted first
	want := append(append(append([]opcode.ProofCommand{}, r...), pHyp), l...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestUnifyToProof_HeapOrder(t *testing.T) {
	arities := testArities(t)

	tests := []struct {
		name string
		in   []opcode.UnifyCommand
		want []opcode.ProofCommand
		slot uint32
	}{
		{
			// the ref to slot 2 is seen while slot 1 is still on top
			name: "skewed refs",
			in:   []opcode.UnifyCommand{uDummy(7), uDummy(8), uRef(1), uRef(2)},
			want: []opcode.ProofCommand{pRef(2), pDummy(7), pDummy(8), pRef(1)},
			slot: 2,
		},
		{
			// slot 2 only occurs inside the expansion of slot 1
			name: "nested save never consumed",
			in:   []opcode.UnifyCommand{uTermSave(tNeg), uTermSave(tTop), uRef(1)},
			want: []opcode.ProofCommand{pRef(2), pTerm(tNeg), pTermSave(tNeg), pRef(1)},
			slot: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnifyToProof(0, tt.in, arities)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lenient mismatch (-want +got):\n%s", diff)
			}

			_, err = UnifyToProof(0, tt.in, arities, WithStrictHeap())
			require.ErrorIs(t, err, HeapOrderMismatch)
			var cerr *ConversionError
			require.True(t, errors.As(err, &cerr))
			require.Equal(t, tt.slot, cerr.Operand)
			require.Equal(t, -1, cerr.Pos)
		})
	}
}

func TestUnifyToProof_StrictAcceptsOrderedHeap(t *testing.T) {
	in := []opcode.UnifyCommand{uTerm(tImp), uTermSave(tNeg), uRef(0), uRef(3)}
	got, err := UnifyToProof(2, in, testArities(t), WithStrictHeap())
	require.NoError(t, err)
	require.Equal(t, pTermSave(tNeg), got[2])
}
