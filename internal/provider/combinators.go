package provider

import (
	"sync"

	"github.com/vk/buildprop/internal/tracking"
)

// Map returns a provider whose value is f applied to p's value. Its
// presence mirrors p's: f is never invoked on an absent value. The
// dependency set is inherited from p.
func Map[T, U any](p Provider[T], f func(T) U) Provider[U] {
	return MapErr(p, func(v T) (U, error) {
		return f(v), nil
	})
}

// MapErr is Map for transforms that can fail. A transform failure is
// surfaced as *EvaluationError.
func MapErr[T, U any](p Provider[T], f func(T) (U, error)) Provider[U] {
	upstream := singleUpstream(p)
	return &baseProvider[U]{
		n: newChainNode("", nil, upstream),
		fn: func(sc *evalScope) (U, bool, error) {
			var zero U
			v, ok, err := p.eval(sc)
			if err != nil || !ok {
				return zero, false, err
			}
			u, ferr := f(v)
			if ferr != nil {
				return zero, false, wrapEvalError("", ferr)
			}
			return u, true, nil
		},
	}
}

// FlatMap returns a provider that applies f to p's value and yields the
// value of the provider f returns. The transform re-runs on every
// evaluation, so the result tracks upstream changes. A nil provider
// returned by f yields absence. The dependency set is the union of p's
// and, once evaluated, the returned provider's.
func FlatMap[T, U any](p Provider[T], f func(T) Provider[U]) Provider[U] {
	// inner remembers the provider produced by the most recent
	// evaluation, so its dependencies are visible to chain walks.
	var mu sync.Mutex
	var inner Provider[U]

	upstream := func() []tracking.Node {
		nodes := []tracking.Node{p.Node()}
		mu.Lock()
		if inner != nil {
			nodes = append(nodes, inner.Node())
		}
		mu.Unlock()
		return nodes
	}

	return &baseProvider[U]{
		n: newChainNode("", nil, upstream),
		fn: func(sc *evalScope) (U, bool, error) {
			var zero U
			v, ok, err := p.eval(sc)
			if err != nil || !ok {
				return zero, false, err
			}
			next := f(v)
			mu.Lock()
			inner = next
			mu.Unlock()
			if next == nil {
				return zero, false, nil
			}
			return next.eval(sc)
		},
	}
}

// Zip combines two providers with f. The result is present only when
// both inputs are present; its dependency set is the union of both.
func Zip[A, B, C any](a Provider[A], b Provider[B], f func(A, B) C) Provider[C] {
	upstream := func() []tracking.Node {
		return []tracking.Node{a.Node(), b.Node()}
	}
	return &baseProvider[C]{
		n: newChainNode("", nil, upstream),
		fn: func(sc *evalScope) (C, bool, error) {
			var zero C
			av, aok, err := a.eval(sc)
			if err != nil || !aok {
				return zero, false, err
			}
			bv, bok, err := b.eval(sc)
			if err != nil || !bok {
				return zero, false, err
			}
			return f(av, bv), true, nil
		},
	}
}

// All collects the values of several providers of the same type into
// one slice-valued provider, present only when every input is present.
func All[T any](ps ...Provider[T]) Provider[[]T] {
	upstream := func() []tracking.Node {
		nodes := make([]tracking.Node, len(ps))
		for i, p := range ps {
			nodes[i] = p.Node()
		}
		return nodes
	}
	return &baseProvider[[]T]{
		n: newChainNode("", nil, upstream),
		fn: func(sc *evalScope) ([]T, bool, error) {
			out := make([]T, len(ps))
			for i, p := range ps {
				v, ok, err := p.eval(sc)
				if err != nil || !ok {
					return nil, false, err
				}
				out[i] = v
			}
			return out, true, nil
		},
	}
}

// orElseProviders implements the OrElse combinator shared by all
// Provider implementations: presence becomes the union of both sides,
// with the primary side winning when present.
func orElseProviders[T any](primary, fallback Provider[T]) Provider[T] {
	upstream := func() []tracking.Node {
		return []tracking.Node{primary.Node(), fallback.Node()}
	}
	return &baseProvider[T]{
		n: newChainNode("", nil, upstream),
		fn: func(sc *evalScope) (T, bool, error) {
			v, ok, err := primary.eval(sc)
			if err != nil || ok {
				return v, ok, err
			}
			return fallback.eval(sc)
		},
	}
}

func singleUpstream[T any](p Provider[T]) func() []tracking.Node {
	return func() []tracking.Node {
		return []tracking.Node{p.Node()}
	}
}
