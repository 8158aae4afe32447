package provider

import (
	"github.com/vk/buildprop/internal/tracking"
)

// Provider is a read-only, lazily evaluated handle on a value of type
// T. Evaluating a provider never mutates it; two Get calls without an
// intervening upstream mutation yield equal values.
//
// The interface carries an unexported evaluation method, so all
// implementations live in this package. Consumers compose providers via
// the package-level sources and combinators instead of implementing the
// interface themselves.
type Provider[T any] interface {
	// Get returns the value, failing with *NoValueError when none is
	// available and with *EvaluationError when an upstream computation
	// fails.
	Get() (T, error)

	// TryGet returns the value and a presence flag. Absence is not an
	// error; the error return carries upstream computation failures
	// only.
	TryGet() (T, bool, error)

	// GetOrElse returns the value when present and the fallback when
	// absent. Upstream computation failures are still reported.
	GetOrElse(fallback T) (T, error)

	// OrElse returns a provider whose value is this provider's value
	// when present, and the fallback provider's value otherwise.
	OrElse(fallback Provider[T]) Provider[T]

	// OrElseValue is OrElse with a fixed fallback value.
	OrElseValue(fallback T) Provider[T]

	// Node exposes the provider's identity to the dependency tracker.
	Node() tracking.Node

	// eval evaluates the provider within the given scope. All chain
	// traversal goes through eval so that cycles are detected.
	eval(sc *evalScope) (T, bool, error)
}

// baseProvider is the single concrete Provider implementation behind
// all sources and combinators. The eval function closes over whatever
// upstream state the particular chain link needs.
type baseProvider[T any] struct {
	n  *chainNode
	fn func(sc *evalScope) (T, bool, error)
}

func (p *baseProvider[T]) Get() (T, error) {
	return getValue[T](p)
}

func (p *baseProvider[T]) TryGet() (T, bool, error) {
	return p.eval(newEvalScope())
}

func (p *baseProvider[T]) GetOrElse(fallback T) (T, error) {
	return getOrElse(p, fallback)
}

func (p *baseProvider[T]) OrElse(fallback Provider[T]) Provider[T] {
	return orElseProviders[T](p, fallback)
}

func (p *baseProvider[T]) OrElseValue(fallback T) Provider[T] {
	return orElseProviders[T](p, Value(fallback))
}

func (p *baseProvider[T]) Node() tracking.Node {
	return p.n
}

func (p *baseProvider[T]) eval(sc *evalScope) (T, bool, error) {
	if err := sc.enter(p.n); err != nil {
		var zero T
		return zero, false, err
	}
	defer sc.exit(p.n)
	return p.fn(sc)
}

// getValue implements Get on top of eval, shared by all Provider
// implementations in this package.
func getValue[T any](p Provider[T]) (T, error) {
	v, ok, err := p.eval(newEvalScope())
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, &NoValueError{Subject: p.Node().Label()}
	}
	return v, nil
}

// getOrElse implements GetOrElse on top of eval.
func getOrElse[T any](p Provider[T], fallback T) (T, error) {
	v, ok, err := p.eval(newEvalScope())
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return fallback, nil
	}
	return v, nil
}

// collectProducers resolves the transitive producer union of a chain
// node via a throwaway tracker, used when a property freezes its
// dependency information.
func collectProducers(n tracking.Node) ([]tracking.ProducerID, error) {
	return tracking.NewTracker().DependenciesOf(n)
}
