/*Package tfcapture implements the capture/replay file format supplementing
  the core: a gzip-compressed (github.com/klauspost/compress/gzip, the
  same drop-in compress/gzip replacement encoding/bgzf and
  encoding/converter build on) stream of length-prefixed, checksummed
  records: a 4-byte big-endian length, a JSON payload holding the
  record's stamp, static flag and TFMessage, and an 8-byte highwayhash64
  (github.com/minio/highwayhash, as biopb uses for block checksums)
  checksum of that payload. Writer appends observed messages as they
  arrive; Reader decodes them back one at a time or all at once, and
  PlaybackSource streams a Reader's records through a channel at the
  recorded (or accelerated) playback rate, implementing tflisten.Source
  for replay-driven testing and tooling.
*/
package tfcapture
