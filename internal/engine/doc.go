// Package engine wires a pipeline model into lazy value chains and
// executes the tasks in dependency order.
//
// During the build phase every task input becomes a Property[cty.Value]
// (the HCL `default` is installed as its convention, the `value`
// expression as its explicit provider) and every task output becomes a
// producer-marked provider that reads the run-time output store.
// Expressions referencing `task.<name>.outputs.<output>` compile into
// provider chains over the referenced output providers, so task
// ordering falls out of the dependency tracker rather than being
// declared by hand; explicit `depends_on` entries add edges directly.
//
// During the run phase tasks execute in deterministic topological
// order. Each task's input properties are finalized before the task
// runs, then read; output expressions evaluate against the finalized
// inputs and land in the output store, where downstream providers pick
// them up.
package engine
