package tracking

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Node is the view of a provider chain node exposed to the tracker. Each
// node has a stable, process-unique numeric identity, so traversal state
// can be kept in plain maps instead of relying on pointer comparison.
type Node interface {
	// TrackingID returns the stable identity of the node.
	TrackingID() uint64

	// Label returns a human-readable name for the node, used in error
	// messages. May be empty.
	Label() string

	// OwnProducers returns the producers recorded directly against this
	// node, not including anything contributed by upstream nodes.
	OwnProducers() []ProducerID

	// Upstream returns the nodes this node currently draws its value
	// from. The result may change between calls while the owning value
	// is still mutable.
	Upstream() []Node

	// Frozen reports whether the node's producers and upstream edges can
	// no longer change, making the traversal result cacheable.
	Frozen() bool
}

// CyclicDependencyError is reported when a provider chain transitively
// refers back to itself, either during a tracker walk or during value
// evaluation.
type CyclicDependencyError struct {
	// Chain holds the labels (or ids, for unlabeled nodes) along the
	// path that closed the cycle.
	Chain []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return "cyclic provider dependency detected"
	}
	return "cyclic provider dependency detected: " + strings.Join(e.Chain, " -> ")
}

// Tracker maps provider identity to the set of upstream producer ids.
// It is scoped to a single build invocation: populated as chains are
// constructed, consulted when a consuming task needs its input
// dependencies, and discarded with the owning scope.
type Tracker struct {
	mu sync.RWMutex
	// extra holds producers registered via RecordProducer, keyed by node
	// id. These are union-merged with node-attached producers on walk.
	extra map[uint64]map[ProducerID]struct{}
	// cache holds walk results for frozen nodes.
	cache map[uint64][]ProducerID
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		extra: make(map[uint64]map[ProducerID]struct{}),
		cache: make(map[uint64][]ProducerID),
	}
}

// RecordProducer associates an additional producer with the given node.
// Producers recorded here are unioned with the node's own producers and
// with everything discovered upstream when DependenciesOf walks the chain.
func (t *Tracker) RecordProducer(n Node, id ProducerID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.extra[n.TrackingID()]
	if !ok {
		set = make(map[ProducerID]struct{})
		t.extra[n.TrackingID()] = set
	}
	set[id] = struct{}{}
	// Any cached result for this node is stale now.
	delete(t.cache, n.TrackingID())
}

// DependenciesOf walks the chain rooted at the given node and returns the
// sorted union of all producer ids found along it. Results for frozen
// nodes are cached. A chain that transitively refers back to itself is
// reported as a *CyclicDependencyError rather than walked forever.
func (t *Tracker) DependenciesOf(n Node) ([]ProducerID, error) {
	t.mu.RLock()
	if cached, ok := t.cache[n.TrackingID()]; ok {
		t.mu.RUnlock()
		return cached, nil
	}
	t.mu.RUnlock()

	producers := make(map[ProducerID]struct{})

	// Classic depth-first search with two sets: `permanent` for nodes
	// fully visited, `temporary` for nodes on the current path. Hitting a
	// temporary node again means the chain loops back on itself. A
	// diamond (two paths converging on one upstream node) is legal and
	// handled by the permanent set.
	permanent := make(map[uint64]bool)
	temporary := make(map[uint64]bool)

	var visit func(n Node, path []string) error
	visit = func(n Node, path []string) error {
		id := n.TrackingID()
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return &CyclicDependencyError{Chain: append(path, nodeLabel(n))}
		}

		temporary[id] = true
		path = append(path, nodeLabel(n))

		for _, p := range n.OwnProducers() {
			producers[p] = struct{}{}
		}
		t.mu.RLock()
		for p := range t.extra[id] {
			producers[p] = struct{}{}
		}
		t.mu.RUnlock()

		for _, up := range n.Upstream() {
			if err := visit(up, path); err != nil {
				return err
			}
		}

		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	if err := visit(n, nil); err != nil {
		return nil, err
	}

	result := make([]ProducerID, 0, len(producers))
	for p := range producers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	if n.Frozen() {
		t.mu.Lock()
		t.cache[n.TrackingID()] = result
		t.mu.Unlock()
	}

	return result, nil
}

// nodeLabel picks a readable name for cycle reporting.
func nodeLabel(n Node) string {
	if l := n.Label(); l != "" {
		return l
	}
	return "#" + strconv.FormatUint(n.TrackingID(), 10)
}
