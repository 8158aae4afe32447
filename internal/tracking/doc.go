/*
Package tracking records which external producers (typically tasks)
originate the values flowing through provider chains, so that a consumer
of a value can discover its task dependencies automatically.

The package defines three things:

  - ProducerID and Address: the canonical identity of an external
    producer, in the dot-separated `name` / `name[index]` path format,
    e.g. `task.compile` or `task.shard[3]`.
  - Node: the minimal view of a provider chain node that the tracker
    needs in order to walk a value's upstream chain.
  - Tracker: a build-scope registry that unions producers recorded
    directly against nodes with producers discovered by walking the
    chain, detects reference cycles during the walk, and caches the
    result for frozen nodes.

A Tracker lives for one build invocation and is discarded with it.
*/
package tracking
