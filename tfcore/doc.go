/*Package tfcore defines the wire-level and in-memory shapes the transform
  buffer ingests and returns: wall-clock stamps, TransformStamped records,
  and the TFMessage batch they travel in. Nothing here owns history or
  topology; that's tfchain and tfbuffer.
*/
package tfcore
