/*
Package provider implements the lazy, convention-aware value containers
used to wire task configuration: read-only Provider chains and mutable
Property containers.

# Providers

A Provider[T] is a read-only handle on a deferred value. Evaluation is
pull-based: nothing upstream runs until Get, TryGet or GetOrElse is
called, and every call re-evaluates the chain unless the value has been
frozen upstream. A provider either yields a value or has no value; the
two outcomes are kept distinct from evaluation failure.

Chains are built from sources (Value, Absent, Call, Of, TaskOutput) and
combinators (Map, MapErr, FlatMap, Zip, All, OrElse). Combinators
preserve absence: a transform is never invoked on an absent value.

# Properties

A Property[T] is a Provider[T] whose value can be configured. It holds
an explicit value slot and a convention (default) slot, each of which is
either unset, a fixed value, or a live link to another provider. The
explicit slot wins whenever it is set; the convention is consulted only
while the explicit slot is unset. Attaching an explicit provider
delegates the presence decision to it entirely: a presently absent
explicit provider makes the property absent even when a convention is
set.

FinalizeValue freezes a property: the current value (or absence, or
failure) is captured as a snapshot, live upstream links are dropped, and
every later mutation fails with *IllegalStateError. Reads of a finalized
property are lock-free and safe from any number of goroutines.

# Dependency tracking

Every provider carries a chain node with a stable identity, its own
producer ids and its current upstream edges. The tracking package walks
these nodes to infer which external producers (tasks) a value depends
on. Self-referential chains are detected during evaluation and reported
as *tracking.CyclicDependencyError instead of recursing forever.

# Concurrency

Mutation of a property is not safe for concurrent use; callers serialize
configuration externally. Where a read overlaps an in-flight mutation
before finalization, the read fails loudly with *IllegalStateError
rather than observing torn state.
*/
package provider
