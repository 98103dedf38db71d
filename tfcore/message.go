package tfcore

import "github.com/grailbio/tf/tfmath"

// Header mirrors the ROS-style std_msgs/Header: a stamp, the parent frame
// this transform is expressed in, and a monotonically assigned sequence
// number (informative only; the buffer never reads it). Field tags match
// spec.md 6's wire schema.
type Header struct {
	Stamp   Stamp  `json:"stamp"`
	FrameID string `json:"frame_id"`
	Seq     uint32 `json:"seq"`
}

// TransformStamped is a parent->child rigid transform observed at a time.
// Field tags match spec.md 6's wire schema.
type TransformStamped struct {
	Header       Header           `json:"header"`
	ChildFrameID string           `json:"child_frame_id"`
	Transform    tfmath.Transform `json:"transform"`
}

// ParentFrame returns the frame this transform is expressed in (the
// "from" side of the edge).
func (t TransformStamped) ParentFrame() string { return t.Header.FrameID }

// Inverse returns the TransformStamped for the reverse edge
// (ChildFrameID -> ParentFrame), carrying the same stamp.
func (t TransformStamped) Inverse() TransformStamped {
	return TransformStamped{
		Header: Header{
			Stamp:   t.Header.Stamp,
			FrameID: t.ChildFrameID,
			Seq:     t.Header.Seq,
		},
		ChildFrameID: t.Header.FrameID,
		Transform:    tfmath.Inverse(t.Transform),
	}
}

// TFMessage is a batch of transforms as delivered on either the dynamic or
// static topic (spec.md 6).
type TFMessage struct {
	Transforms []TransformStamped `json:"transforms"`
}

// EdgeKey identifies a directed parent->child edge.
type EdgeKey struct {
	Parent string
	Child  string
}
