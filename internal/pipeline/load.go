package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/buildprop/internal/ctxlog"
	"github.com/vk/buildprop/internal/fsutil"
)

// Loader reads pipeline definition files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new pipeline loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load discovers all .hcl files under the given paths, parses them, and
// merges their task definitions into a single model. Task names must be
// unique across all files, as must input and output names within a
// task.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("discovering pipeline files under %s: %w", path, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	model := &Model{}
	seen := make(map[string]string)

	for _, filename := range files {
		file, diags := l.parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", filename, diags)
		}

		var parsed fileSchema
		if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", filename, diags)
		}

		for _, t := range parsed.Tasks {
			if prev, dup := seen[t.Name]; dup {
				return nil, fmt.Errorf("duplicate task %q in %s (already defined in %s)", t.Name, filename, prev)
			}
			seen[t.Name] = filename

			task, err := translateTask(t)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", filename, err)
			}
			model.Tasks = append(model.Tasks, task)
		}
		logger.Debug("Loaded pipeline file.", "file", filename, "tasks", len(parsed.Tasks))
	}

	return model, nil
}

// translateTask converts the HCL-specific task schema into the agnostic
// model, validating name uniqueness within the task.
func translateTask(s *taskSchema) (*Task, error) {
	task := &Task{
		Name:      s.Name,
		DependsOn: s.DependsOn,
	}

	inputNames := make(map[string]bool)
	for _, in := range s.Inputs {
		if inputNames[in.Name] {
			return nil, fmt.Errorf("task %q declares input %q twice", s.Name, in.Name)
		}
		inputNames[in.Name] = true
		task.Inputs = append(task.Inputs, &Input{
			Name:    in.Name,
			Value:   in.Value,
			Default: in.Default,
		})
	}

	outputNames := make(map[string]bool)
	for _, out := range s.Outputs {
		if outputNames[out.Name] {
			return nil, fmt.Errorf("task %q declares output %q twice", s.Name, out.Name)
		}
		outputNames[out.Name] = true
		task.Outputs = append(task.Outputs, &Output{
			Name:  out.Name,
			Value: out.Value,
		})
	}

	return task, nil
}
