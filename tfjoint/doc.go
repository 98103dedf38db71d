// Package tfjoint translates a single revolute joint's position into the
// TransformStamped its motion produces, the "joint-state translator"
// spec.md 1 calls out as needing no special coupling to the buffer.
package tfjoint
