/*Package tfmath implements the rigid-transform primitives used throughout
  the tf tree: 3-vectors, unit quaternions, composition, inversion, and
  spherical-linear interpolation of a parent/child rigid transform.

  Quaternions are stored in (x, y, z, w) order throughout this package and
  every package that imports it.
*/
package tfmath
