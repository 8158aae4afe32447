package engine

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// outputRef is a reference to another task's output, extracted from an
// HCL traversal of the form `task.<name>.outputs.<output>`.
type outputRef struct {
	Task   string
	Output string
}

// parseOutputRef analyzes an HCL traversal and extracts a task output
// reference, if the traversal is one.
func parseOutputRef(traversal hcl.Traversal) (*outputRef, bool) {
	if len(traversal) < 4 || traversal.RootName() != "task" {
		return nil, false
	}

	taskAttr, taskOk := traversal[1].(hcl.TraverseAttr)
	kindAttr, kindOk := traversal[2].(hcl.TraverseAttr)
	outAttr, outOk := traversal[3].(hcl.TraverseAttr)
	if !taskOk || !kindOk || !outOk || kindAttr.Name != "outputs" {
		return nil, false
	}

	return &outputRef{Task: taskAttr.Name, Output: outAttr.Name}, true
}

// referencedOutputs collects every distinct task output reference in an
// expression, in traversal order. A traversal rooted at `task` that does
// not follow the reference form is an error rather than a silent
// run-time lookup failure.
func referencedOutputs(expr hcl.Expression) ([]outputRef, error) {
	var refs []outputRef
	seen := make(map[outputRef]bool)
	for _, traversal := range expr.Variables() {
		ref, ok := parseOutputRef(traversal)
		if !ok {
			if traversal.RootName() == "task" {
				return nil, fmt.Errorf("malformed task output reference %q; expected task.<name>.outputs.<output>", formatTraversal(traversal))
			}
			continue
		}
		if !seen[*ref] {
			seen[*ref] = true
			refs = append(refs, *ref)
		}
	}
	return refs, nil
}

// formatTraversal renders an hcl.Traversal for log and error messages.
func formatTraversal(t hcl.Traversal) string {
	var sb strings.Builder
	for i, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(p.Name)
		case hcl.TraverseAttr:
			sb.WriteRune('.')
			sb.WriteString(p.Name)
		case hcl.TraverseIndex:
			sb.WriteRune('[')
			if p.Key.Type() == cty.String {
				sb.WriteString(fmt.Sprintf("%q", p.Key.AsString()))
			} else if p.Key.Type() == cty.Number {
				sb.WriteString(p.Key.AsBigFloat().Text('f', -1))
			} else {
				sb.WriteString("...")
			}
			sb.WriteRune(']')
		default:
			if i > 0 {
				sb.WriteRune('.')
			}
			sb.WriteString("?")
		}
	}
	return sb.String()
}
