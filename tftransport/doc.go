/*Package tftransport is the one concrete websocket transport for the
  dynamic/static subscription streams spec.md treats as an external
  collaborator. Source subscribes to a peer's /tf or /tf_static endpoint
  (github.com/gorilla/websocket) and implements tflisten.Source; Publisher
  is the symmetric broadcast side. Messages are framed as JSON
  (github.com/goccy/go-json, for decode speed on a hot receive path) —
  neither library appears in the teacher's own dependency surface, which
  talks BAM/PAM/S3 rather than pub/sub wire traffic, so both are drawn
  from the wider retrieval pack specifically to serve this concern.
*/
package tftransport
