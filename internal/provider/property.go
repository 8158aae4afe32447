package provider

import (
	"sync"
	"sync/atomic"

	"github.com/vk/buildprop/internal/tracking"
)

// slotKind tags the state of a property value slot. An unset slot is
// distinct from a slot holding a zero value; "no value" is never
// conflated with "zero value".
type slotKind uint8

const (
	slotUnset slotKind = iota
	slotFixed
	slotProvider
)

// slot is one configurable value position of a property: either unset,
// a fixed value, or a live link to another provider.
type slot[T any] struct {
	kind     slotKind
	fixed    T
	provider Provider[T]
}

// eval resolves the slot within the given scope. An unset slot is
// absent; a provider slot delegates entirely.
func (s slot[T]) eval(sc *evalScope) (T, bool, error) {
	switch s.kind {
	case slotFixed:
		return s.fixed, true, nil
	case slotProvider:
		return s.provider.eval(sc)
	default:
		var zero T
		return zero, false, nil
	}
}

// Property is a mutable, convention-aware Provider. A fresh property is
// unset and not finalized; its value is configured via Set/SetProvider
// (or the fluent Value/Convention forms) and frozen one-way via
// FinalizeValue.
type Property[T any] struct {
	node  *chainNode
	label string

	// mu guards the slots until the property is finalized.
	mu         sync.Mutex
	explicit   slot[T]
	convention slot[T]

	// mutating is set for the duration of each mutation so overlapping
	// reads fail loudly instead of observing torn state.
	mutating atomic.Bool

	// finalized flips one way. Once set, the final* fields below are
	// immutable and reads bypass the lock entirely.
	finalized    atomic.Bool
	finalValue   T
	finalPresent bool
	finalErr     error
}

var _ Provider[int] = (*Property[int])(nil)

// New returns a fresh, unset, not finalized property. The name labels
// the property in error messages and cycle reports.
func New[T any](name string) *Property[T] {
	p := &Property[T]{label: name}
	p.node = newChainNode(name, nil, p.upstreamNodes)
	return p
}

// upstreamNodes reports the chain nodes behind whichever slot currently
// governs the property's value: the explicit provider when one is
// attached, else the convention provider. Fixed and unset slots
// contribute no upstream edges.
func (p *Property[T]) upstreamNodes() []tracking.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.explicit.kind == slotProvider {
		return []tracking.Node{p.explicit.provider.Node()}
	}
	if p.explicit.kind == slotUnset && p.convention.kind == slotProvider {
		return []tracking.Node{p.convention.provider.Node()}
	}
	return nil
}

// --- Provider implementation ---

// Get returns the property's current value, resolving the explicit
// value if set, the convention otherwise, and failing with
// *NoValueError when neither yields one.
func (p *Property[T]) Get() (T, error) {
	return getValue[T](p)
}

// TryGet returns the current value and a presence flag.
func (p *Property[T]) TryGet() (T, bool, error) {
	return p.eval(newEvalScope())
}

// GetOrElse returns the current value when present and the fallback
// otherwise.
func (p *Property[T]) GetOrElse(fallback T) (T, error) {
	return getOrElse[T](p, fallback)
}

// OrElse returns a provider yielding this property's value when
// present, and the fallback provider's value otherwise.
func (p *Property[T]) OrElse(fallback Provider[T]) Provider[T] {
	return orElseProviders[T](p, fallback)
}

// OrElseValue is OrElse with a fixed fallback value.
func (p *Property[T]) OrElseValue(fallback T) Provider[T] {
	return orElseProviders[T](p, Value(fallback))
}

// Node exposes the property's identity to the dependency tracker.
func (p *Property[T]) Node() tracking.Node {
	return p.node
}

func (p *Property[T]) eval(sc *evalScope) (T, bool, error) {
	if p.finalized.Load() {
		return p.finalValue, p.finalPresent, p.finalErr
	}
	if p.mutating.Load() {
		var zero T
		return zero, false, &IllegalStateError{Op: "get", Reason: "property " + p.label + " is being mutated concurrently"}
	}
	if err := sc.enter(p.node); err != nil {
		var zero T
		return zero, false, err
	}
	defer sc.exit(p.node)
	return p.evalSlots(sc)
}

// evalSlots resolves the slots with the receiver already on the scope's
// active path. Slot contents are snapshotted under the lock and
// evaluated outside it, so upstream chains looping back to this
// property surface as a cycle instead of a deadlock.
func (p *Property[T]) evalSlots(sc *evalScope) (T, bool, error) {
	p.mu.Lock()
	explicit := p.explicit
	convention := p.convention
	p.mu.Unlock()

	// An attached explicit provider owns the presence decision; the
	// convention is not consulted while one is set, even when the
	// provider is presently absent.
	if explicit.kind != slotUnset {
		return explicit.eval(sc)
	}
	return convention.eval(sc)
}

// --- Mutation ---

// beginMutation rejects mutation of a finalized property and flags the
// mutation window for loud read detection.
func (p *Property[T]) beginMutation(op string) error {
	if p.finalized.Load() {
		return &IllegalStateError{Op: op, Reason: "the value of property " + p.label + " is final"}
	}
	p.mutating.Store(true)
	return nil
}

func (p *Property[T]) endMutation() {
	p.mutating.Store(false)
}

// Set replaces the property's explicit value with a fixed value,
// detaching any previously tracked provider along with its dependency
// set. It fails with *IllegalStateError once the property is finalized.
func (p *Property[T]) Set(v T) error {
	if err := p.beginMutation("set"); err != nil {
		return err
	}
	defer p.endMutation()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.explicit = slot[T]{kind: slotFixed, fixed: v}
	return nil
}

// SetProvider attaches a provider as the property's explicit value. The
// provider's value and presence are re-read on every subsequent Get
// until overwritten, and its dependency set is adopted dynamically. A
// nil provider reference fails with *IllegalArgumentError; a provider
// that is merely absent-valued is legal.
func (p *Property[T]) SetProvider(src Provider[T]) error {
	if err := p.beginMutation("set"); err != nil {
		return err
	}
	defer p.endMutation()
	if src == nil {
		return &IllegalArgumentError{Op: "set", Reason: "provider reference must not be nil; use Unset to discard the value of property " + p.label}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.explicit = slot[T]{kind: slotProvider, provider: src}
	return nil
}

// Unset discards the explicit value, so the property falls back to its
// convention, if any.
func (p *Property[T]) Unset() error {
	if err := p.beginMutation("unset"); err != nil {
		return err
	}
	defer p.endMutation()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.explicit = slot[T]{}
	return nil
}

// SetConvention replaces the property's convention (default value),
// consulted only while no explicit value is set.
func (p *Property[T]) SetConvention(v T) error {
	if err := p.beginMutation("convention"); err != nil {
		return err
	}
	defer p.endMutation()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.convention = slot[T]{kind: slotFixed, fixed: v}
	return nil
}

// SetConventionProvider attaches a provider as the property's
// convention. The convention tracks the provider: it is queried anew
// whenever the convention's value is needed. A nil provider reference
// fails with *IllegalArgumentError.
func (p *Property[T]) SetConventionProvider(src Provider[T]) error {
	if err := p.beginMutation("convention"); err != nil {
		return err
	}
	defer p.endMutation()
	if src == nil {
		return &IllegalArgumentError{Op: "convention", Reason: "provider reference must not be nil; use UnsetConvention to discard the convention of property " + p.label}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.convention = slot[T]{kind: slotProvider, provider: src}
	return nil
}

// UnsetConvention discards the convention, leaving the property without
// a default value.
func (p *Property[T]) UnsetConvention() error {
	if err := p.beginMutation("convention"); err != nil {
		return err
	}
	defer p.endMutation()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.convention = slot[T]{}
	return nil
}

// --- Fluent configuration forms ---
//
// The fluent forms mirror Set/SetProvider/SetConvention but return the
// property for chaining. They panic with the same typed errors the
// plain forms return; they are meant for configuration-time wiring
// where such a failure is a programming error.

// Value sets a fixed explicit value and returns the property.
func (p *Property[T]) Value(v T) *Property[T] {
	mustConfigure(p.Set(v))
	return p
}

// ValueProvider attaches an explicit provider and returns the property.
func (p *Property[T]) ValueProvider(src Provider[T]) *Property[T] {
	mustConfigure(p.SetProvider(src))
	return p
}

// Convention sets a fixed convention and returns the property.
func (p *Property[T]) Convention(v T) *Property[T] {
	mustConfigure(p.SetConvention(v))
	return p
}

// ConventionProvider attaches a convention provider and returns the
// property.
func (p *Property[T]) ConventionProvider(src Provider[T]) *Property[T] {
	mustConfigure(p.SetConventionProvider(src))
	return p
}

func mustConfigure(err error) {
	if err != nil {
		panic(err)
	}
}

// --- Update ---

// Update applies an eager transformation to the property's current
// value in place. The current value is captured as a provider first:
// the explicit provider when one is attached, the explicit fixed value
// as a constant, else the convention, else an absent provider. Then
// transform runs immediately and its result becomes the new explicit
// value. Returning nil from transform unsets the property. Because the
// snapshot is taken before the result is installed, the new value never
// re-reads the property's own state at Get time.
func (p *Property[T]) Update(transform func(Provider[T]) Provider[T]) error {
	if p.finalized.Load() {
		return &IllegalStateError{Op: "update", Reason: "the value of property " + p.label + " is final"}
	}

	p.mu.Lock()
	current := p.currentProviderLocked()
	p.mu.Unlock()

	next := transform(current)
	if next == nil {
		return p.Unset()
	}
	return p.SetProvider(next)
}

// currentProviderLocked snapshots the current value as a provider.
// Provider slots are captured as live links, so upstream changes stay
// visible; fixed slots become constants. Changes to this property's own
// slots after the snapshot are deliberately not reflected.
func (p *Property[T]) currentProviderLocked() Provider[T] {
	switch p.explicit.kind {
	case slotFixed:
		return Value(p.explicit.fixed)
	case slotProvider:
		return p.explicit.provider
	}
	switch p.convention.kind {
	case slotFixed:
		return Value(p.convention.fixed)
	case slotProvider:
		return p.convention.provider
	}
	return Absent[T]()
}

// --- Finalization ---

// FinalizeValue freezes the property. The current value is evaluated
// once and captured, value, absence or failure alike, together with the
// dependency information in effect at this moment, and all live
// upstream links are discarded. Mutations after this call fail with
// *IllegalStateError, while reads remain legal, lock-free and stable.
// Repeated calls are no-ops.
func (p *Property[T]) FinalizeValue() {
	if p.finalized.Load() {
		return
	}

	sc := newEvalScope()
	// Entering a fresh scope cannot fail.
	_ = sc.enter(p.node)
	v, ok, err := p.evalSlots(sc)
	sc.exit(p.node)

	// Capture the producer union before the live links are dropped. A
	// cyclic chain has already surfaced through the evaluation above.
	producers, perr := collectProducers(p.node)
	if perr != nil {
		producers = nil
		if err == nil {
			err = perr
		}
	}

	p.mu.Lock()
	p.finalValue, p.finalPresent, p.finalErr = v, ok, err
	p.explicit = slot[T]{}
	p.convention = slot[T]{}
	p.mu.Unlock()

	p.node.freeze(producers)
	p.finalized.Store(true)
}

// Finalized reports whether FinalizeValue has been called.
func (p *Property[T]) Finalized() bool {
	return p.finalized.Load()
}
