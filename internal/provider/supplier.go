package provider

// Supplier produces a value of type T, or signals that none is
// available. Absence is not an error; the error return is reserved for
// failures of the underlying computation. Implementations must be free
// of side effects from the caller's perspective beyond memoization.
type Supplier[T any] interface {
	// TryGet returns the value, a presence flag, and any evaluation
	// error. When the presence flag is false the value is meaningless.
	TryGet() (T, bool, error)
}

// SupplierFunc adapts a plain function to the Supplier interface.
type SupplierFunc[T any] func() (T, bool, error)

// TryGet implements Supplier.
func (f SupplierFunc[T]) TryGet() (T, bool, error) {
	return f()
}
