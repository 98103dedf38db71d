package tfchain

import (
	"sort"
	"time"

	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tferrors"
	"github.com/grailbio/tf/tfmath"
)

// Chain is the time-ordered history of one directed (parent, child) edge.
// A static chain collapses to a single entry; a dynamic chain retains
// entries within cacheDuration of the latest insert (spec.md 3, 4.2).
//
// Chain is not safe for concurrent use without an external lock; tfbuffer
// owns that discipline (spec.md 5).
type Chain struct {
	key      tfcore.EdgeKey
	isStatic bool
	cacheDur time.Duration

	// entries is kept sorted by Header.Stamp ascending. For a static
	// chain it holds at most one entry, whose stamp is meaningless.
	entries []tfcore.TransformStamped
}

// New constructs an empty Chain for the given edge.
func New(parent, child string, isStatic bool, cacheDuration time.Duration) *Chain {
	return &Chain{
		key:      tfcore.EdgeKey{Parent: parent, Child: child},
		isStatic: isStatic,
		cacheDur: cacheDuration,
	}
}

// Key returns the edge this chain belongs to.
func (c *Chain) Key() tfcore.EdgeKey { return c.key }

// IsStatic reports whether this chain was created as a static edge.
func (c *Chain) IsStatic() bool { return c.isStatic }

// Len returns the number of retained entries.
func (c *Chain) Len() int { return len(c.entries) }

// Add inserts transform into the chain. The caller must have already
// checked that transform's (parent, child) matches c.Key(); Add panics on
// mismatch since that would be a bug in the caller (tfbuffer), not a
// reportable runtime condition.
func (c *Chain) Add(transform tfcore.TransformStamped) {
	if transform.Header.FrameID != c.key.Parent || transform.ChildFrameID != c.key.Child {
		panic("tfchain: Add called with transform for a different edge")
	}

	if c.isStatic {
		transform.Header.Stamp = tfcore.ZeroStamp
		c.entries = []tfcore.TransformStamped{transform}
		return
	}

	stamp := transform.Header.Stamp
	idx := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Header.Stamp >= stamp
	})
	switch {
	case idx < len(c.entries) && c.entries[idx].Header.Stamp == stamp:
		// Duplicate stamp: last writer wins (spec.md 9, Open Question (b)).
		c.entries[idx] = transform
	default:
		c.entries = append(c.entries, tfcore.TransformStamped{})
		copy(c.entries[idx+1:], c.entries[idx:])
		c.entries[idx] = transform
	}

	c.evict()
}

// evict drops entries older than (latest - cacheDur) from the front.
func (c *Chain) evict() {
	if c.cacheDur <= 0 || len(c.entries) == 0 {
		return
	}
	latest := c.entries[len(c.entries)-1].Header.Stamp
	cutoff := tfcore.Stamp(time.Duration(latest) - c.cacheDur)
	i := 0
	for i < len(c.entries)-1 && c.entries[i].Header.Stamp < cutoff {
		i++
	}
	if i > 0 {
		c.entries = append(c.entries[:0], c.entries[i:]...)
	}
}

// Get resolves the chain's value at stamp. If stamp is nil, or the chain
// is static, the latest (or only) entry is returned; its header stamp is
// set to *stamp if provided, else left as stored (spec.md 4.2).
func (c *Chain) Get(stamp *tfcore.Stamp) (tfcore.TransformStamped, error) {
	if c.isStatic || stamp == nil {
		if len(c.entries) == 0 {
			return tfcore.TransformStamped{}, tferrors.Empty()
		}
		latest := c.entries[len(c.entries)-1]
		if stamp != nil {
			latest.Header.Stamp = *stamp
		}
		return latest, nil
	}

	if len(c.entries) == 0 {
		return tfcore.TransformStamped{}, tferrors.Empty()
	}

	t := *stamp
	first := c.entries[0]
	last := c.entries[len(c.entries)-1]

	if t < first.Header.Stamp {
		return tfcore.TransformStamped{}, tferrors.InPast(c.key, first.Header.Stamp, t)
	}
	if t > last.Header.Stamp {
		return tfcore.TransformStamped{}, tferrors.InFuture(c.key, last.Header.Stamp, t)
	}
	if t == last.Header.Stamp {
		return last, nil
	}

	// idx is the first entry with Header.Stamp >= t (t is known to lie in
	// [first, last), so 0 <= idx <= len-1; idx is 0 only when t equals the
	// first stamp, which the exact-match check below returns directly).
	idx := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Header.Stamp >= t
	})
	e2 := c.entries[idx]
	if e2.Header.Stamp == t {
		return stampedAt(e2, t), nil
	}
	e1 := c.entries[idx-1]

	span := e2.Header.Stamp.Sub(e1.Header.Stamp)
	w := float64(e2.Header.Stamp.Sub(t)) / float64(span)
	interp := tfmath.Interpolate(e1.Transform, e2.Transform, w)

	return tfcore.TransformStamped{
		Header:       tfcore.Header{Stamp: t, FrameID: c.key.Parent},
		ChildFrameID: c.key.Child,
		Transform:    interp,
	}, nil
}

func stampedAt(ts tfcore.TransformStamped, stamp tfcore.Stamp) tfcore.TransformStamped {
	ts.Header.Stamp = stamp
	return ts
}

// Latest returns the chain's latest stamp, or false if the chain is empty.
// Used by tfbuffer to compute the "most recent" effective stamp across a
// resolved path (spec.md 4.4).
func (c *Chain) Latest() (tfcore.Stamp, bool) {
	if len(c.entries) == 0 {
		return 0, false
	}
	return c.entries[len(c.entries)-1].Header.Stamp, true
}

// Oldest returns the chain's earliest retained stamp, or false if empty.
func (c *Chain) Oldest() (tfcore.Stamp, bool) {
	if len(c.entries) == 0 {
		return 0, false
	}
	return c.entries[0].Header.Stamp, true
}
