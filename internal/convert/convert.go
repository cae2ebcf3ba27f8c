// Package convert rewrites a unify stream, which tells a checker how to match
// a term against a pattern, into the proof stream that rebuilds the same term
// from scratch.
//
// The conversion runs in four stages:
//
//   - scan truncates the input at END and counts heap allocations
//   - replay runs the stream backwards, rebuilding the terms in an arena
//     and flattening them forwards into a buffer of refs, terms and hyps
//   - substitute replaces the first ref to every saved slot with the
//     commands that build it (TERM_SAVE or DUMMY)
//   - project maps the result onto proof opcodes
//
// Nothing is shared between calls: UnifyToProof is safe to call concurrently
// on independent inputs.
package convert

import (
	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/opcode"
)

type options struct {
	strictHeap bool
}

// Option tunes a single conversion.
type Option func(*options)

// WithStrictHeap makes heap slots consumed out of allocation order an error
// (HeapOrderMismatch) rather than passing the offending ref through.
func WithStrictHeap() Option {
	return func(o *options) { o.strictHeap = true }
}

// UnifyToProof converts a unify stream into a proof stream. initVars is the
// heap size before the stream runs. Term ids are resolved through arities; the
// first unknown one aborts the conversion with ErrInvalidTermIndex.
func UnifyToProof(initVars uint32, unify []opcode.UnifyCommand, arities arity.Lookup, opts ...Option) ([]opcode.ProofCommand, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	held, counter := scan(unify, initVars)
	r, err := replay(held, counter, arities)
	if err != nil {
		return nil, err
	}
	buf, err := substitute(r, o.strictHeap)
	if err != nil {
		return nil, err
	}
	return project(buf), nil
}
