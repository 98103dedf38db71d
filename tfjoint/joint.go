package tfjoint

import (
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tfmath"
)

// Joint describes a single revolute joint: a fixed translation from parent
// to child's rest pose, followed by a rotation about Axis proportional to
// the joint's current position in radians.
type Joint struct {
	Name        string
	Parent      string
	Child       string
	Translation tfmath.Vector3
	Axis        tfmath.Vector3
}

// Transform returns the TransformStamped produced by evaluating j at the
// given position (radians) and stamp. The joint's fixed translation is
// applied first, then the rotation about Axis by position.
func (j Joint) Transform(position float64, stamp tfcore.Stamp) tfcore.TransformStamped {
	rotation := tfmath.AxisAngle(j.Axis, position)
	return tfcore.TransformStamped{
		Header:       tfcore.Header{FrameID: j.Parent, Stamp: stamp},
		ChildFrameID: j.Child,
		Transform: tfmath.Transform{
			Translation: j.Translation,
			Rotation:    rotation,
		},
	}
}
