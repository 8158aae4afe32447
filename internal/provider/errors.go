package provider

// NoValueError is returned by Get when neither an explicit value, an
// attached provider, nor a convention yields a value. It is recoverable
// via TryGet or GetOrElse.
type NoValueError struct {
	// Subject names the provider or property that was queried. May be
	// empty for unlabeled chain nodes.
	Subject string
}

// Error implements the error interface.
func (e *NoValueError) Error() string {
	if e.Subject == "" {
		return "provider: no value available"
	}
	return "provider: no value available for " + e.Subject
}

// IllegalStateError is returned when an operation is attempted in a
// state that forbids it, such as mutating a finalized property or
// reading a property while a mutation is in flight.
type IllegalStateError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *IllegalStateError) Error() string {
	return "provider: cannot " + e.Op + ": " + e.Reason
}

// IllegalArgumentError is returned when a nil provider reference is
// passed where a provider is required. A provider that is merely
// absent-valued is legal; a nil reference is not.
type IllegalArgumentError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *IllegalArgumentError) Error() string {
	return "provider: invalid argument to " + e.Op + ": " + e.Reason
}

// EvaluationError wraps a failure raised by an upstream computation,
// such as a producing task's action returning an error. It is
// propagated to the caller, never swallowed.
type EvaluationError struct {
	// Subject names the computation that failed. May be empty.
	Subject string
	Err     error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Subject == "" {
		return "provider: evaluation failed: " + e.Err.Error()
	}
	return "provider: evaluation of " + e.Subject + " failed: " + e.Err.Error()
}

// Unwrap returns the underlying computation failure.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
