package tfchain

import (
	"testing"
	"time"

	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tferrors"
	"github.com/grailbio/tf/tfmath"
	"github.com/stretchr/testify/require"
)

func sec(n float64) tfcore.Stamp { return tfcore.StampFromSeconds(n) }

func tsAt(parent, child string, stamp tfcore.Stamp, y float64) tfcore.TransformStamped {
	return tfcore.TransformStamped{
		Header:       tfcore.Header{FrameID: parent, Stamp: stamp},
		ChildFrameID: child,
		Transform:    tfmath.Transform{Translation: tfmath.Vector3{Y: y}, Rotation: tfmath.IdentityQuaternion},
	}
}

func TestStaticCollapsesToOneEntry(t *testing.T) {
	c := New("world", "item", true, 0)
	c.Add(tsAt("world", "item", sec(5), 1))
	c.Add(tsAt("world", "item", sec(9), 2))
	require.Equal(t, 1, c.Len())
	got, err := c.Get(nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, got.Transform.Translation.Y)
	require.Equal(t, tfcore.ZeroStamp, got.Header.Stamp)
}

func TestStaticGetStampsAtQueryTime(t *testing.T) {
	c := New("world", "item", true, 0)
	c.Add(tsAt("world", "item", sec(0), 1))
	q := sec(42)
	got, err := c.Get(&q)
	require.NoError(t, err)
	require.Equal(t, q, got.Header.Stamp)
}

func TestDynamicEmptyIsUninitialized(t *testing.T) {
	c := New("world", "base", false, time.Second)
	q := sec(1)
	_, err := c.Get(&q)
	require.Error(t, err)
	tfErr, ok := err.(*tferrors.Error)
	require.True(t, ok)
	require.Equal(t, tferrors.EmptyTree, tfErr.Kind)
}

func TestDynamicInPastAndFuture(t *testing.T) {
	c := New("world", "base", false, 10*time.Second)
	c.Add(tsAt("world", "base", sec(1), 0))
	c.Add(tsAt("world", "base", sec(2), 0))
	c.Add(tsAt("world", "base", sec(3), 0))

	q := sec(0.5)
	_, err := c.Get(&q)
	tfErr := err.(*tferrors.Error)
	require.Equal(t, tferrors.AttemptedLookupInPast, tfErr.Kind)
	require.Equal(t, sec(1), tfErr.BoundStamp)
	require.Equal(t, sec(0.5), tfErr.QueryStamp)

	q = sec(3.5)
	_, err = c.Get(&q)
	tfErr = err.(*tferrors.Error)
	require.Equal(t, tferrors.AttemptedLookupInFuture, tfErr.Kind)
	require.Equal(t, sec(3), tfErr.BoundStamp)
}

func TestDynamicExactStampReturnsExactly(t *testing.T) {
	c := New("world", "base", false, 10*time.Second)
	c.Add(tsAt("world", "base", sec(1), 5))
	c.Add(tsAt("world", "base", sec(2), 9))
	q := sec(2)
	got, err := c.Get(&q)
	require.NoError(t, err)
	require.Equal(t, 9.0, got.Transform.Translation.Y)
}

func TestDynamicInterpolatesBetweenNeighbors(t *testing.T) {
	c := New("world", "base_link", false, 10*time.Second)
	c.Add(tsAt("world", "base_link", sec(0), 0))
	c.Add(tsAt("world", "base_link", sec(1), 1))
	q := sec(0.7)
	got, err := c.Get(&q)
	require.NoError(t, err)
	require.InDelta(t, 0.7, got.Transform.Translation.Y, 1e-9)
	require.Equal(t, q, got.Header.Stamp)
	require.Equal(t, "world", got.Header.FrameID)
	require.Equal(t, "base_link", got.ChildFrameID)
}

func TestDynamicDuplicateStampLastWriterWins(t *testing.T) {
	c := New("world", "base", false, 10*time.Second)
	c.Add(tsAt("world", "base", sec(1), 1))
	c.Add(tsAt("world", "base", sec(1), 99))
	require.Equal(t, 1, c.Len())
	q := sec(1)
	got, _ := c.Get(&q)
	require.Equal(t, 99.0, got.Transform.Translation.Y)
}

func TestRetentionEvictsOldEntries(t *testing.T) {
	c := New("world", "base", false, time.Second)
	c.Add(tsAt("world", "base", sec(1), 1))
	c.Add(tsAt("world", "base", sec(2), 2))
	c.Add(tsAt("world", "base", sec(3), 3))
	require.Equal(t, 2, c.Len())
	oldest, ok := c.Oldest()
	require.True(t, ok)
	require.Equal(t, sec(2), oldest)
	latest, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, sec(3), latest)
}

func TestChainOrderingStrictlyIncreasing(t *testing.T) {
	c := New("world", "base", false, time.Minute)
	stamps := []float64{5, 1, 3, 2, 4}
	for _, s := range stamps {
		c.Add(tsAt("world", "base", sec(s), s))
	}
	require.Equal(t, 5, c.Len())
	for i := 1; i < len(c.entries); i++ {
		require.Less(t, c.entries[i-1].Header.Stamp, c.entries[i].Header.Stamp)
	}
}

func TestAddPanicsOnMismatchedEdge(t *testing.T) {
	c := New("world", "base", false, time.Minute)
	defer func() {
		require.NotNil(t, recover())
	}()
	c.Add(tsAt("world", "other", sec(1), 0))
}
