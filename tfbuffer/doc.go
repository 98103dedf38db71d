/*Package tfbuffer implements the time-indexed coordinate transform graph:
  a directed, single-parent, acyclic tree of frames, each edge backed by a
  tfchain.Chain, queried by resolving the path between two frames through
  their lowest common ancestor (spec.md 3, 4.3, 4.4).

  Buffer is safe for concurrent use: one coarse sync.RWMutex serializes
  topology mutation against path resolution (many concurrent lookups, one
  writer at a time), while the edge histories themselves additionally live
  behind a sharded edgeStore modeled on bamprovider's concurrentMap, so
  that a future finer-grained locking scheme (spec.md 5, 9) has somewhere
  to grow without touching the topology maps.
*/
package tfbuffer
