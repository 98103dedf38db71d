/*Package tfchain implements the per-edge transform history: a bounded,
  time-ordered sequence of TransformStamped values for one directed
  (parent, child) edge, plus the static-edge specialization that collapses
  history to a single timeless value (spec.md 3, 4.2).

  Storage is a sorted slice searched the way interval.EndpointIndex
  searches a sorted position list: sort.Search for the insertion point,
  rather than a tree, since chains are short-lived (cache_duration bounds
  them) and append-mostly.
*/
package tfchain
