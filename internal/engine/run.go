package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildprop/internal/ctxlog"
)

// Run executes every task in topological order. The first failing task
// aborts the run.
func (e *Engine) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("invocation", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("Starting pipeline run.", "tasks", len(e.order))
	for _, name := range e.order {
		if err := e.runTask(ctx, name); err != nil {
			return fmt.Errorf("task %q failed: %w", name, err)
		}
	}
	logger.Info("Pipeline run finished.")

	return nil
}

// runTask finalizes and reads the task's inputs, evaluates its output
// expressions against them, and records the results in the output
// store.
func (e *Engine) runTask(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx).With("task", name)
	ts := e.tasks[name]
	logger.Info("Running task.")

	// Inputs are frozen before execution, so nothing upstream can
	// interfere with the value the task observes.
	inputVals := make(map[string]cty.Value, len(ts.def.Inputs))
	for _, in := range ts.def.Inputs {
		prop := ts.inputs[in.Name]
		prop.FinalizeValue()
		v, err := prop.Get()
		if err != nil {
			return fmt.Errorf("input %q: %w", in.Name, err)
		}
		inputVals[in.Name] = v
		logger.Debug("Resolved input.", "input", in.Name)
	}

	evalCtx := &hcl.EvalContext{Variables: make(map[string]cty.Value)}
	if len(inputVals) > 0 {
		evalCtx.Variables["input"] = cty.ObjectVal(inputVals)
	}

	outputs := make(map[string]cty.Value, len(ts.def.Outputs))
	for _, out := range ts.def.Outputs {
		v, diags := out.Value.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("output %q: %w", out.Name, diags)
		}
		outputs[out.Name] = v
	}
	e.store.put(name, outputs)

	logger.Info("Task completed.", "outputs", len(outputs))
	return nil
}
