/*Package tfconfig decodes the TOML configuration document spec.md §6
  names: `[[tf]]`, `[[joint]]`, and `[[tf2tf]]` array-of-tables. It is a
  consumer of tfcore/tfmath/tfjoint, never imported back by
  tfbuffer/tfchain/tflisten — config decoding is an external collaborator
  per spec.md §1.
*/
package tfconfig
