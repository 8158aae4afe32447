// Package dag provides the directed acyclic graph used to order task
// execution. The engine adds one node per task, wires edges from the
// producer dependencies inferred by the tracking package (plus any
// explicit depends_on entries), validates the graph for cycles, and
// runs tasks in deterministic topological order.
package dag
