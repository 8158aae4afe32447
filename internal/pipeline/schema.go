package pipeline

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// inputSchema represents an `input` block within a task. The value
// expression is captured unevaluated; the default must be a literal and
// becomes the input property's convention.
type inputSchema struct {
	Name    string         `hcl:"name,label"`
	Value   hcl.Expression `hcl:"value,optional"`
	Default *cty.Value     `hcl:"default,optional"`
}

// outputSchema represents an `output` block within a task.
type outputSchema struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// taskSchema represents a `task` block from a pipeline file.
type taskSchema struct {
	Name      string          `hcl:"name,label"`
	DependsOn []string        `hcl:"depends_on,optional"`
	Inputs    []*inputSchema  `hcl:"input,block"`
	Outputs   []*outputSchema `hcl:"output,block"`
}

// fileSchema represents the top-level structure of a pipeline file.
type fileSchema struct {
	Tasks []*taskSchema `hcl:"task,block"`
	Body  hcl.Body      `hcl:",remain"`
}
