package provider

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/vk/buildprop/internal/tracking"
)

// nodeIDCounter hands out stable, process-unique chain node identities.
var nodeIDCounter atomic.Uint64

// chainNode is the tracking-facing identity of a provider. It records
// the producers attached directly to the provider and the upstream
// nodes the provider currently draws its value from.
type chainNode struct {
	id    uint64
	label string

	mu        sync.Mutex
	producers []tracking.ProducerID
	// upstream reports the current upstream edges. nil once frozen or
	// for source nodes with no upstream.
	upstream func() []tracking.Node
	frozen   bool
}

var _ tracking.Node = (*chainNode)(nil)

// newChainNode creates a node with the given label, directly attached
// producers, and dynamic upstream edge function (may be nil).
func newChainNode(label string, producers []tracking.ProducerID, upstream func() []tracking.Node) *chainNode {
	return &chainNode{
		id:        nodeIDCounter.Add(1),
		label:     label,
		producers: producers,
		upstream:  upstream,
	}
}

// TrackingID implements tracking.Node.
func (n *chainNode) TrackingID() uint64 {
	return n.id
}

// Label implements tracking.Node.
func (n *chainNode) Label() string {
	return n.label
}

// OwnProducers implements tracking.Node.
func (n *chainNode) OwnProducers() []tracking.ProducerID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]tracking.ProducerID, len(n.producers))
	copy(out, n.producers)
	return out
}

// Upstream implements tracking.Node.
func (n *chainNode) Upstream() []tracking.Node {
	n.mu.Lock()
	up := n.upstream
	n.mu.Unlock()
	if up == nil {
		return nil
	}
	return up()
}

// Frozen implements tracking.Node.
func (n *chainNode) Frozen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frozen
}

// freeze fixes the node's producer set to the given transitive union and
// severs its upstream edges. Called when the owning property finalizes.
func (n *chainNode) freeze(producers []tracking.ProducerID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.producers = producers
	n.upstream = nil
	n.frozen = true
}

// evalScope tracks the chain nodes active on the current evaluation
// path so that a chain referring back to itself is reported as a cycle
// instead of recursing without bound. A scope lives for one top-level
// Get/TryGet call and is threaded through the chain. Re-evaluating the
// same node twice sequentially (a diamond) is legal.
type evalScope struct {
	active map[uint64]bool
	path   []string
}

func newEvalScope() *evalScope {
	return &evalScope{active: make(map[uint64]bool)}
}

// enter marks the node active, or reports the cycle that re-entering it
// would close.
func (s *evalScope) enter(n *chainNode) error {
	if s.active[n.id] {
		return &tracking.CyclicDependencyError{Chain: append(append([]string{}, s.path...), scopeLabel(n))}
	}
	s.active[n.id] = true
	s.path = append(s.path, scopeLabel(n))
	return nil
}

// exit removes the node from the active path again.
func (s *evalScope) exit(n *chainNode) {
	delete(s.active, n.id)
	s.path = s.path[:len(s.path)-1]
}

func scopeLabel(n *chainNode) string {
	if n.label != "" {
		return n.label
	}
	return "#" + strconv.FormatUint(n.id, 10)
}
