package provider

import (
	"github.com/vk/buildprop/internal/tracking"
)

// Value returns a provider that always yields the given fixed value.
func Value[T any](v T) Provider[T] {
	return &baseProvider[T]{
		n: newChainNode("", nil, nil),
		fn: func(*evalScope) (T, bool, error) {
			return v, true, nil
		},
	}
}

// Absent returns a provider that never yields a value.
func Absent[T any]() Provider[T] {
	return &baseProvider[T]{
		n: newChainNode("", nil, nil),
		fn: func(*evalScope) (T, bool, error) {
			var zero T
			return zero, false, nil
		},
	}
}

// Call returns a provider that invokes f on every evaluation. The value
// is always present unless f fails; failures are surfaced as
// *EvaluationError.
func Call[T any](f func() (T, error)) Provider[T] {
	return &baseProvider[T]{
		n: newChainNode("", nil, nil),
		fn: func(*evalScope) (T, bool, error) {
			v, err := f()
			if err != nil {
				var zero T
				return zero, false, &EvaluationError{Err: err}
			}
			return v, true, nil
		},
	}
}

// Of adapts a Supplier into a provider. Supplier failures are wrapped
// in *EvaluationError unless they already carry one of this package's
// error types.
func Of[T any](s Supplier[T]) Provider[T] {
	return of("", nil, s)
}

// TaskOutput adapts a Supplier into a provider marked as originating
// from the given external producer. Attaching the result (directly or
// through further combinators) to a task input property lets the
// dependency tracker infer the task ordering automatically.
func TaskOutput[T any](producer tracking.ProducerID, s Supplier[T]) Provider[T] {
	return of(string(producer), []tracking.ProducerID{producer}, s)
}

func of[T any](label string, producers []tracking.ProducerID, s Supplier[T]) Provider[T] {
	return &baseProvider[T]{
		n: newChainNode(label, producers, nil),
		fn: func(*evalScope) (T, bool, error) {
			v, ok, err := s.TryGet()
			if err != nil {
				var zero T
				return zero, false, wrapEvalError(label, err)
			}
			return v, ok, nil
		},
	}
}

// wrapEvalError normalizes supplier failures to the package taxonomy
// without double-wrapping errors that are already classified.
func wrapEvalError(subject string, err error) error {
	switch err.(type) {
	case *EvaluationError, *NoValueError, *IllegalStateError, *tracking.CyclicDependencyError:
		return err
	}
	return &EvaluationError{Subject: subject, Err: err}
}
