/*Package tflisten multiplexes a dynamic and a static message source into a
  tfbuffer.Buffer. A Listener drains each Source with a non-blocking
  try-receive loop, batching whatever arrived since the last pass into a
  single AddTransforms call so the buffer's write lock is taken once per
  batch rather than once per message (spec.md 4.5, 5), the same
  drain-a-channel-until-empty discipline bamprovider.PairIterator.Scan
  uses to pull records off its shard channel.
*/
package tflisten
