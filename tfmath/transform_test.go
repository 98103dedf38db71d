package tfmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func approxVec(t *testing.T, want, got Vector3, eps float64) {
	t.Helper()
	require.InDelta(t, want.X, got.X, eps)
	require.InDelta(t, want.Y, got.Y, eps)
	require.InDelta(t, want.Z, got.Z, eps)
}

func approxQuat(t *testing.T, want, got Quaternion, eps float64) {
	t.Helper()
	// Unit quaternions q and -q represent the same rotation.
	d := want.Dot(got)
	if d < 0 {
		got = got.Negated()
	}
	require.InDelta(t, want.X, got.X, eps)
	require.InDelta(t, want.Y, got.Y, eps)
	require.InDelta(t, want.Z, got.Z, eps)
	require.InDelta(t, want.W, got.W, eps)
}

func TestComposeIdentity(t *testing.T) {
	tr := Transform{Translation: Vector3{1, 2, 3}, Rotation: FromRPY(0.1, 0.2, 0.3)}
	approxVec(t, tr.Translation, Compose(Identity, tr).Translation, 1e-9)
	approxQuat(t, tr.Rotation, Compose(Identity, tr).Rotation, 1e-9)
	approxVec(t, tr.Translation, Compose(tr, Identity).Translation, 1e-9)
	approxQuat(t, tr.Rotation, Compose(tr, Identity).Rotation, 1e-9)
}

func TestComposeInverseIsIdentity(t *testing.T) {
	tests := []Transform{
		{Translation: Vector3{1, 0, 0}, Rotation: IdentityQuaternion},
		{Translation: Vector3{0.5, -2, 3.25}, Rotation: FromRPY(0.3, -0.4, 1.2)},
		{Translation: Vector3{-1, -1, -1}, Rotation: FromRPY(math.Pi/2, 0, 0)},
	}
	for _, tr := range tests {
		inv := Inverse(tr)
		approxVec(t, Identity.Translation, Compose(tr, inv).Translation, 1e-9)
		approxQuat(t, Identity.Rotation, Compose(tr, inv).Rotation, 1e-9)
		approxVec(t, Identity.Translation, Compose(inv, tr).Translation, 1e-9)
		approxQuat(t, Identity.Rotation, Compose(inv, tr).Rotation, 1e-9)
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	a := Transform{Translation: Vector3{1, 1, 1}, Rotation: FromRPY(0, 0, math.Pi/2)}
	b := Transform{Translation: Vector3{0, 0, 0}, Rotation: IdentityQuaternion}
	approxVec(t, a.Translation, Interpolate(a, b, 1).Translation, 1e-9)
	approxQuat(t, a.Rotation, Interpolate(a, b, 1).Rotation, 1e-9)
	approxVec(t, b.Translation, Interpolate(a, b, 0).Translation, 1e-9)
	approxQuat(t, b.Rotation, Interpolate(a, b, 0).Rotation, 1e-9)
}

func TestInterpolateIdempotence(t *testing.T) {
	a := Transform{Translation: Vector3{3, -4, 5}, Rotation: FromRPY(0.4, 0.1, -0.9)}
	for _, w := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := Interpolate(a, a, w)
		approxVec(t, a.Translation, got.Translation, 1e-9)
		approxQuat(t, a.Rotation, got.Rotation, 1e-9)
	}
}

func TestInterpolateIntermediateTranslation(t *testing.T) {
	a := Transform{Translation: Vector3{0, 1, 0}, Rotation: IdentityQuaternion}
	b := Transform{Translation: Vector3{0, 0, 0}, Rotation: IdentityQuaternion}
	got := Interpolate(a, b, 0.3)
	approxVec(t, Vector3{0, 0.3, 0}, got.Translation, 1e-9)
}

func TestSlerpNearAntipodalFallback(t *testing.T) {
	a := Quaternion{X: 1, Y: 0, Z: 0, W: 0}
	b := Quaternion{X: 0, Y: 1, Z: 0, W: 0}
	// a.Dot(b) == 0: exactly the near-antipodal fallback boundary.
	got := a.Slerp(b, 0.8)
	approxQuat(t, a, got, 1e-9)
	got = a.Slerp(b, 0.2)
	approxQuat(t, b, got, 1e-9)
}

func TestChainEmpty(t *testing.T) {
	got := Chain(nil)
	approxVec(t, Identity.Translation, got.Translation, 1e-9)
	approxQuat(t, Identity.Rotation, got.Rotation, 1e-9)
}

func TestChainAssociativity(t *testing.T) {
	a := Transform{Translation: Vector3{1, 0, 0}, Rotation: FromRPY(0, 0, math.Pi/4)}
	b := Transform{Translation: Vector3{0, 1, 0}, Rotation: FromRPY(0, math.Pi/6, 0)}
	c := Transform{Translation: Vector3{0, 0, 1}, Rotation: FromRPY(math.Pi/8, 0, 0)}

	chained := Chain([]Transform{a, b, c})
	manual := Compose(Compose(a, b), c)
	approxVec(t, manual.Translation, chained.Translation, 1e-9)
	approxQuat(t, manual.Rotation, chained.Rotation, 1e-9)
}

func TestRPYRoundTrip(t *testing.T) {
	roll, pitch, yaw := 0.3, -0.2, 1.1
	q := FromRPY(roll, pitch, yaw)
	r2, p2, y2 := q.ToRPY()
	require.InDelta(t, roll, r2, 1e-9)
	require.InDelta(t, pitch, p2, 1e-9)
	require.InDelta(t, yaw, y2, 1e-9)
}

func TestAxisAngleZeroAxis(t *testing.T) {
	q := AxisAngle(Vector3{}, 1.5)
	approxQuat(t, IdentityQuaternion, q, 1e-9)
}
