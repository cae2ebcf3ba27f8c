package pipeline

import (
	"errors"

	"github.com/funvibe/mmbconv/internal/opcode"
)

// Context carries one job through the stages. Each stage fills in the
// fields the next one reads.
type Context struct {
	JobName  string
	InitVars uint32

	// Source is the unify stream in assembly form; Raw is its binary form.
	// Exactly one is set on entry.
	Source string
	Raw    []byte

	Unify   []opcode.UnifyCommand
	Proof   []opcode.ProofCommand
	Encoded []byte

	Errors []error
}

// Failed reports whether any stage recorded an error
func (c *Context) Failed() bool {
	return len(c.Errors) > 0
}

// Err joins the recorded errors, or returns nil.
func (c *Context) Err() error {
	return errors.Join(c.Errors...)
}

// Processor is one stage of a Pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx *Context) *Context

func (f ProcessorFunc) Process(ctx *Context) *Context {
	return f(ctx)
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Stages see earlier errors and decide themselves whether to run.
	}
	return ctx
}
