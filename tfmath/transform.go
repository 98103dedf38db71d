package tfmath

// Transform is a rigid-body transform: rotate then translate. Field tags
// match spec.md 6's wire schema (transform{translation, rotation}).
type Transform struct {
	Translation Vector3    `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

// Identity is the no-op rigid transform.
var Identity = Transform{Translation: Vector3{}, Rotation: IdentityQuaternion}

// Compose returns a∘b: applying b first, then a. Rotations are normalized
// before composition.
func Compose(a, b Transform) Transform {
	ra := a.Rotation.Normalized()
	rb := b.Rotation.Normalized()
	return Transform{
		Translation: a.Translation.Add(ra.Rotate(b.Translation)),
		Rotation:    ra.Mul(rb).Normalized(),
	}
}

// Inverse returns t's unique inverse.
func Inverse(t Transform) Transform {
	rInv := t.Rotation.Normalized().Conjugate()
	return Transform{
		Translation: rInv.Rotate(Vector3{-t.Translation.X, -t.Translation.Y, -t.Translation.Z}),
		Rotation:    rInv,
	}
}

// Interpolate returns the transform w of the way from b to a: w=1 returns a,
// w=0 returns b. Translation is affine; rotation is shortest-arc slerp with
// Quaternion.Slerp's near-antipodal fallback.
func Interpolate(a, b Transform, w float64) Transform {
	return Transform{
		Translation: a.Translation.Lerp(b.Translation, w),
		Rotation:    a.Rotation.Slerp(b.Rotation, w),
	}
}

// Chain left-folds Compose over list starting from Identity. An empty list
// returns Identity.
func Chain(list []Transform) Transform {
	result := Identity
	for _, t := range list {
		result = Compose(result, t)
	}
	return result
}
