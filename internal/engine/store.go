package engine

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// outputStore holds the values produced by completed tasks. Output
// providers read it through suppliers, so an output is absent until its
// task has run.
type outputStore struct {
	mu     sync.RWMutex
	values map[string]map[string]cty.Value
}

func newOutputStore() *outputStore {
	return &outputStore{values: make(map[string]map[string]cty.Value)}
}

// get returns the named output of a task and whether it has been
// produced yet.
func (s *outputStore) get(task, output string) (cty.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outputs, ok := s.values[task]
	if !ok {
		return cty.NilVal, false
	}
	v, ok := outputs[output]
	return v, ok
}

// put records all outputs of a completed task.
func (s *outputStore) put(task string, outputs map[string]cty.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[task] = outputs
}
