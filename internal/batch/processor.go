// Package batch converts many unify streams concurrently, each one through a
// decode → convert → encode pipeline.
package batch

import (
	"fmt"

	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/convert"
	"github.com/funvibe/mmbconv/internal/pipeline"
	"github.com/funvibe/mmbconv/internal/stream"
)

// DecodeProcessor fills ctx.Unify from ctx.Source or ctx.Raw.
type DecodeProcessor struct{}

func (DecodeProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() {
		return ctx
	}
	switch {
	case ctx.Raw != nil:
		cmds, _, err := stream.DecodeUnify(ctx.Raw)
		if err != nil {
			ctx.Errors = append(ctx.Errors, fmt.Errorf("decoding unify stream: %w", err))
			return ctx
		}
		ctx.Unify = cmds
	default:
		cmds, err := stream.ParseUnify(ctx.Source)
		if err != nil {
			ctx.Errors = append(ctx.Errors, fmt.Errorf("assembling unify stream: %w", err))
			return ctx
		}
		ctx.Unify = cmds
	}
	return ctx
}

// ConvertProcessor fills ctx.Proof from ctx.Unify.
type ConvertProcessor struct {
	Arities arity.Lookup
	Options []convert.Option
}

// NewConvertProcessor creates the conversion stage
func NewConvertProcessor(arities arity.Lookup, opts ...convert.Option) *ConvertProcessor {
	return &ConvertProcessor{Arities: arities, Options: opts}
}

func (p *ConvertProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() {
		return ctx
	}
	proof, err := convert.UnifyToProof(ctx.InitVars, ctx.Unify, p.Arities, p.Options...)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Proof = proof
	return ctx
}

// EncodeProcessor fills ctx.Encoded from ctx.Proof.
type EncodeProcessor struct{}

func (EncodeProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() {
		return ctx
	}
	data, err := stream.Encode(ctx.Proof)
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("encoding proof stream: %w", err))
		return ctx
	}
	ctx.Encoded = data
	return ctx
}

// NewPipeline wires the three stages for one conversion setup.
func NewPipeline(arities arity.Lookup, opts ...convert.Option) *pipeline.Pipeline {
	return pipeline.New(DecodeProcessor{}, NewConvertProcessor(arities, opts...), EncodeProcessor{})
}
