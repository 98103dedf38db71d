/*Package tferrors defines the tagged error variant returned by tfbuffer
  lookups and ingest (spec.md 4.6, 7). Errors are always structured values:
  the buffer never panics on malformed input.
*/
package tferrors
