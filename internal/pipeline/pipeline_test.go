package pipeline

import (
	"errors"
	"testing"
)

func TestPipeline_RunsEveryStage(t *testing.T) {
	var order []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *Context) *Context {
			order = append(order, name)
			if fail {
				ctx.Errors = append(ctx.Errors, errors.New(name+" failed"))
			}
			return ctx
		})
	}

	ctx := New(stage("a", false), stage("b", true), stage("c", false)).Run(&Context{JobName: "j"})

	if len(order) != 3 || order[0] != "a" || order[2] != "c" {
		t.Errorf("stages ran as %v", order)
	}
	if !ctx.Failed() {
		t.Fatal("expected context to be failed")
	}
	if ctx.Err() == nil || ctx.Err().Error() != "b failed" {
		t.Errorf("Err() = %v", ctx.Err())
	}
}

func TestContext_NoErrors(t *testing.T) {
	ctx := New().Run(&Context{})
	if ctx.Failed() || ctx.Err() != nil {
		t.Errorf("empty pipeline should not fail: %v", ctx.Err())
	}
}
