package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildprop/internal/ctxlog"
	"github.com/vk/buildprop/internal/dag"
	"github.com/vk/buildprop/internal/pipeline"
	"github.com/vk/buildprop/internal/provider"
	"github.com/vk/buildprop/internal/tracking"
)

// Engine holds the compiled value chains and ordering graph for one
// pipeline run.
type Engine struct {
	model   *pipeline.Model
	tracker *tracking.Tracker
	store   *outputStore
	tasks   map[string]*taskState
	graph   *dag.Graph
	order   []string
}

// taskState is the compiled form of one task: its input properties and
// producer-marked output providers.
type taskState struct {
	def      *pipeline.Task
	producer tracking.ProducerID
	inputs   map[string]*provider.Property[cty.Value]
	outputs  map[string]provider.Provider[cty.Value]
}

// New compiles a pipeline model into an engine: properties and
// providers are created for every task, implicit dependencies are
// inferred from the provider chains, and the resulting graph is
// validated and ordered.
func New(ctx context.Context, model *pipeline.Model) (*Engine, error) {
	logger := ctxlog.FromContext(ctx)

	e := &Engine{
		model:   model,
		tracker: tracking.NewTracker(),
		store:   newOutputStore(),
		tasks:   make(map[string]*taskState, len(model.Tasks)),
		graph:   dag.New(),
	}

	// First pass: create every task's output providers, so input
	// expressions can reference them regardless of declaration order.
	for _, t := range model.Tasks {
		e.tasks[t.Name] = e.newTaskState(t)
		e.graph.AddNode(t.Name)
	}
	logger.Debug("Created task states.", "count", len(e.tasks))

	// Second pass: compile input expressions into provider chains and
	// install them on the input properties.
	for _, t := range model.Tasks {
		if err := e.wireInputs(t); err != nil {
			return nil, err
		}
	}
	logger.Debug("Wired task inputs.")

	// Third pass: derive graph edges from explicit depends_on entries
	// and from the producers discovered on each input chain.
	for _, t := range model.Tasks {
		if err := e.linkTask(ctx, t); err != nil {
			return nil, err
		}
	}

	order, err := e.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("validating task graph: %w", err)
	}
	e.order = order
	logger.Debug("Task graph validated.", "order", order)

	return e, nil
}

// newTaskState creates the producer-marked output providers for a task.
// Each output reads the run-time store and is absent until the task has
// run.
func (e *Engine) newTaskState(t *pipeline.Task) *taskState {
	producer := tracking.ProducerID("task." + t.Name)
	ts := &taskState{
		def:      t,
		producer: producer,
		inputs:   make(map[string]*provider.Property[cty.Value], len(t.Inputs)),
		outputs:  make(map[string]provider.Provider[cty.Value], len(t.Outputs)),
	}

	taskName := t.Name
	for _, out := range t.Outputs {
		outName := out.Name
		ts.outputs[outName] = provider.TaskOutput[cty.Value](producer, provider.SupplierFunc[cty.Value](func() (cty.Value, bool, error) {
			v, ok := e.store.get(taskName, outName)
			return v, ok, nil
		}))
	}

	return ts
}

// wireInputs creates one property per declared input, installing the
// default as its convention and the compiled value expression as its
// explicit provider.
func (e *Engine) wireInputs(t *pipeline.Task) error {
	ts := e.tasks[t.Name]
	for _, in := range t.Inputs {
		prop := provider.New[cty.Value]("task." + t.Name + ".inputs." + in.Name)
		if in.Default != nil {
			if err := prop.SetConvention(*in.Default); err != nil {
				return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
			}
		}
		if in.Value != nil {
			compiled, err := e.compileExpression(in.Value)
			if err != nil {
				return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
			}
			if err := prop.SetProvider(compiled); err != nil {
				return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
			}
		}
		ts.inputs[in.Name] = prop
	}
	return nil
}

// compileExpression turns an HCL expression into a lazy provider over
// the task outputs it references. The chain is absent until every
// referenced output has been produced, and it carries the referenced
// producers for dependency inference.
func (e *Engine) compileExpression(expr hcl.Expression) (provider.Provider[cty.Value], error) {
	refs, err := referencedOutputs(expr)
	if err != nil {
		return nil, err
	}

	deps := make([]provider.Provider[cty.Value], 0, len(refs))
	for _, ref := range refs {
		ts, ok := e.tasks[ref.Task]
		if !ok {
			return nil, fmt.Errorf("expression references unknown task %q", ref.Task)
		}
		out, ok := ts.outputs[ref.Output]
		if !ok {
			return nil, fmt.Errorf("expression references unknown output %q of task %q", ref.Output, ref.Task)
		}
		deps = append(deps, out)
	}

	return provider.MapErr(provider.All(deps...), func(vals []cty.Value) (cty.Value, error) {
		v, diags := expr.Value(refsEvalContext(refs, vals))
		if diags.HasErrors() {
			return cty.NilVal, diags
		}
		return v, nil
	}), nil
}

// refsEvalContext builds the `task.<name>.outputs.<output>` variable
// tree for an expression from the resolved reference values.
func refsEvalContext(refs []outputRef, vals []cty.Value) *hcl.EvalContext {
	byTask := make(map[string]map[string]cty.Value)
	for i, ref := range refs {
		outs, ok := byTask[ref.Task]
		if !ok {
			outs = make(map[string]cty.Value)
			byTask[ref.Task] = outs
		}
		outs[ref.Output] = vals[i]
	}

	taskVals := make(map[string]cty.Value, len(byTask))
	for name, outs := range byTask {
		taskVals[name] = cty.ObjectVal(map[string]cty.Value{
			"outputs": cty.ObjectVal(outs),
		})
	}

	variables := make(map[string]cty.Value)
	if len(taskVals) > 0 {
		variables["task"] = cty.ObjectVal(taskVals)
	}
	return &hcl.EvalContext{Variables: variables}
}

// linkTask adds the task's graph edges: explicit depends_on entries
// first, then the producers the tracker finds on each input chain.
func (e *Engine) linkTask(ctx context.Context, t *pipeline.Task) error {
	logger := ctxlog.FromContext(ctx)
	ts := e.tasks[t.Name]

	for _, dep := range t.DependsOn {
		if _, ok := e.tasks[dep]; !ok {
			return fmt.Errorf("task %q depends on unknown task %q", t.Name, dep)
		}
		if err := e.graph.AddEdge(dep, t.Name); err != nil {
			return fmt.Errorf("task %q: %w", t.Name, err)
		}
		logger.Debug("Linked explicit dependency.", "from", t.Name, "to", dep)
	}

	for _, in := range t.Inputs {
		prop := ts.inputs[in.Name]
		producers, err := e.tracker.DependenciesOf(prop.Node())
		if err != nil {
			return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
		}
		for _, producer := range producers {
			depTask, err := taskNameFromProducer(producer)
			if err != nil {
				return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
			}
			if err := e.graph.AddEdge(depTask, t.Name); err != nil {
				return fmt.Errorf("task %q input %q: %w", t.Name, in.Name, err)
			}
			logger.Debug("Linked implicit dependency.", "from", t.Name, "to", depTask, "input", in.Name)
		}
	}

	return nil
}

// taskNameFromProducer extracts the task name from a `task.<name>`
// producer id.
func taskNameFromProducer(id tracking.ProducerID) (string, error) {
	addr, err := tracking.ParseAddress(string(id))
	if err != nil {
		return "", fmt.Errorf("invalid producer id %q: %w", id, err)
	}
	if len(addr.Path) != 2 || addr.Path[0].Name != "task" {
		return "", fmt.Errorf("producer id %q is not a task", id)
	}
	return addr.Path[1].Name, nil
}

// InputProperty returns the property behind a task input, for
// inspection.
func (e *Engine) InputProperty(task, input string) (*provider.Property[cty.Value], bool) {
	ts, ok := e.tasks[task]
	if !ok {
		return nil, false
	}
	prop, ok := ts.inputs[input]
	return prop, ok
}

// OutputProvider returns the producer-marked provider behind a task
// output, for inspection.
func (e *Engine) OutputProvider(task, output string) (provider.Provider[cty.Value], bool) {
	ts, ok := e.tasks[task]
	if !ok {
		return nil, false
	}
	out, ok := ts.outputs[output]
	return out, ok
}

// Tracker returns the dependency tracker scoped to this engine.
func (e *Engine) Tracker() *tracking.Tracker {
	return e.tracker
}

// Order returns the validated execution order.
func (e *Engine) Order() []string {
	return e.order
}

// TaskDependencies returns the sorted task names the given task depends
// on, explicit and inferred.
func (e *Engine) TaskDependencies(name string) ([]string, error) {
	return e.graph.Dependencies(name)
}
