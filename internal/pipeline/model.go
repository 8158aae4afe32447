package pipeline

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of an entire pipeline, merged
// from all loaded files.
type Model struct {
	// Tasks in file/declaration order.
	Tasks []*Task
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name      string
	DependsOn []string
	Inputs    []*Input
	Outputs   []*Output
}

// Input is the format-agnostic representation of an `input` block. A
// nil Value expression means no explicit value was declared; a nil
// Default means the input has no convention.
type Input struct {
	Name    string
	Value   hcl.Expression
	Default *cty.Value
}

// Output is the format-agnostic representation of an `output` block.
type Output struct {
	Name  string
	Value hcl.Expression
}

// Task returns the task with the given name, or nil.
func (m *Model) Task(name string) *Task {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}
