package tfconfig

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tfjoint"
	"github.com/grailbio/tf/tfmath"
)

// tfEntry is one [[tf]] table: a static or replayable transform, given as
// a translation and optional roll/pitch/yaw.
type tfEntry struct {
	Frame      string  `toml:"frame"`
	ChildFrame string  `toml:"child_frame"`
	X          float64 `toml:"x"`
	Y          float64 `toml:"y"`
	Z          float64 `toml:"z"`
	Roll       float64 `toml:"roll"`
	Pitch      float64 `toml:"pitch"`
	Yaw        float64 `toml:"yaw"`
}

// jointEntry is one [[joint]] table.
type jointEntry struct {
	Name          string  `toml:"name"`
	Parent        string  `toml:"parent"`
	Child         string  `toml:"child"`
	TranslationX  float64 `toml:"translation_x"`
	TranslationY  float64 `toml:"translation_y"`
	TranslationZ  float64 `toml:"translation_z"`
	AxisX         float64 `toml:"axis_x"`
	AxisY         float64 `toml:"axis_y"`
	AxisZ         float64 `toml:"axis_z"`
}

// tf2tfEntry is one [[tf2tf]] table: a lookup-and-rebroadcast pipeline.
type tf2tfEntry struct {
	LookupParent    string  `toml:"lookup_parent"`
	LookupChild     string  `toml:"lookup_child"`
	BroadcastParent string  `toml:"broadcast_parent"`
	BroadcastChild  string  `toml:"broadcast_child"`
	FixedX          float64 `toml:"fixed_x"`
	FixedY          float64 `toml:"fixed_y"`
	FixedZ          float64 `toml:"fixed_z"`
	FixedRoll       float64 `toml:"fixed_roll"`
	FixedPitch      float64 `toml:"fixed_pitch"`
	FixedYaw        float64 `toml:"fixed_yaw"`
}

type document struct {
	TF    []tfEntry    `toml:"tf"`
	Joint []jointEntry `toml:"joint"`
	TF2TF []tf2tfEntry `toml:"tf2tf"`
}

// LookupRebroadcast describes a [[tf2tf]] pipeline: look up LookupChild
// relative to LookupParent, apply FixedOffset, and republish the result
// as BroadcastParent -> BroadcastChild.
type LookupRebroadcast struct {
	LookupParent    string
	LookupChild     string
	BroadcastParent string
	BroadcastChild  string
	FixedOffset     tfmath.Transform
}

// Config is the decoded contents of a [[tf]]/[[joint]]/[[tf2tf]] document.
type Config struct {
	Transforms   []tfcore.TransformStamped
	Joints       []tfjoint.Joint
	Rebroadcasts []LookupRebroadcast
}

// Decode parses a TOML document per spec.md §6 into a Config. [[tf]]
// entries are converted with roll/pitch/yaw defaulting to zero
// (tfmath.FromRPY(0,0,0) is the identity rotation); [[joint]] axes are
// normalized by tfmath.AxisAngle at evaluation time, not here.
func Decode(data []byte) (Config, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, errors.Wrap(err, "tfconfig: decode")
	}

	cfg := Config{
		Transforms:   make([]tfcore.TransformStamped, 0, len(doc.TF)),
		Joints:       make([]tfjoint.Joint, 0, len(doc.Joint)),
		Rebroadcasts: make([]LookupRebroadcast, 0, len(doc.TF2TF)),
	}

	for _, e := range doc.TF {
		cfg.Transforms = append(cfg.Transforms, tfcore.TransformStamped{
			Header:       tfcore.Header{FrameID: e.Frame, Stamp: tfcore.ZeroStamp},
			ChildFrameID: e.ChildFrame,
			Transform: tfmath.Transform{
				Translation: tfmath.Vector3{X: e.X, Y: e.Y, Z: e.Z},
				Rotation:    tfmath.FromRPY(e.Roll, e.Pitch, e.Yaw),
			},
		})
	}

	for _, e := range doc.Joint {
		cfg.Joints = append(cfg.Joints, tfjoint.Joint{
			Name:        e.Name,
			Parent:      e.Parent,
			Child:       e.Child,
			Translation: tfmath.Vector3{X: e.TranslationX, Y: e.TranslationY, Z: e.TranslationZ},
			Axis:        tfmath.Vector3{X: e.AxisX, Y: e.AxisY, Z: e.AxisZ},
		})
	}

	for _, e := range doc.TF2TF {
		cfg.Rebroadcasts = append(cfg.Rebroadcasts, LookupRebroadcast{
			LookupParent:    e.LookupParent,
			LookupChild:     e.LookupChild,
			BroadcastParent: e.BroadcastParent,
			BroadcastChild:  e.BroadcastChild,
			FixedOffset: tfmath.Transform{
				Translation: tfmath.Vector3{X: e.FixedX, Y: e.FixedY, Z: e.FixedZ},
				Rotation:    tfmath.FromRPY(e.FixedRoll, e.FixedPitch, e.FixedYaw),
			},
		})
	}

	return cfg, nil
}
