package tfbuffer

import (
	"sort"
	"sync"
	"time"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tferrors"
	"github.com/grailbio/tf/tfmath"
)

// DefaultCacheDuration is the retention window the cmd/ tools pass to New
// for every dynamic edge (spec.md 3, "Retention").
const DefaultCacheDuration = 10 * time.Second

// Buffer is the time-indexed coordinate transform graph (spec.md 3-4). The
// zero value is not usable; construct with New.
type Buffer struct {
	mu sync.RWMutex

	// childParent and parentChildren are the topology indices of spec.md
	// 4.3: at most one parent per child, and the reverse adjacency used
	// for path-to-root and LCA resolution.
	childParent    map[string]string
	parentChildren map[string]map[string]struct{}

	edges *edgeStore
}

// New constructs an empty Buffer whose dynamic edges retain cacheDuration
// of history each.
func New(cacheDuration time.Duration) *Buffer {
	return &Buffer{
		childParent:    make(map[string]string),
		parentChildren: make(map[string]map[string]struct{}),
		edges:          newEdgeStore(cacheDuration),
	}
}

// AddTransform registers transform as the current (parent, child) edge
// value. It enforces the single-parent invariant (spec.md 3.1) and the
// static/dynamic consistency invariant (spec.md 3.3); ingest is otherwise
// O(1), deferring cycle detection to traversal time (spec.md 3.2).
func (b *Buffer) AddTransform(transform tfcore.TransformStamped, isStatic bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addTransformLocked(transform, isStatic)
}

func (b *Buffer) addTransformLocked(transform tfcore.TransformStamped, isStatic bool) error {
	parent := transform.Header.FrameID
	child := transform.ChildFrameID

	if existing, ok := b.childParent[child]; ok && existing != parent {
		return tferrors.Reparent(child, parent, existing)
	}

	key := tfcore.EdgeKey{Parent: parent, Child: child}
	chain, existingIsStatic, created := b.edges.getOrCreate(key, isStatic)
	if !created && existingIsStatic != isStatic {
		return tferrors.InconsistentEdgeType(key, existingIsStatic, isStatic)
	}

	b.childParent[child] = parent
	if b.parentChildren[parent] == nil {
		b.parentChildren[parent] = make(map[string]struct{})
	}
	b.parentChildren[parent][child] = struct{}{}

	chain.Add(transform)
	return nil
}

// AddTransforms applies every transform in msg under a single write-lock
// acquisition, matching the listener's batching discipline (spec.md 4.5,
// 5). Per-message errors (ChangingParent, type mismatch) are collected and
// returned together; processing continues past a failed message so one
// bad sample doesn't block the rest of the batch.
func (b *Buffer) AddTransforms(msg tfcore.TFMessage, isStatic bool) []error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, t := range msg.Transforms {
		if err := b.addTransformLocked(t, isStatic); err != nil {
			log.Error.Printf("tfbuffer: dropping transform %s->%s: %v", t.Header.FrameID, t.ChildFrameID, err)
			errs = append(errs, err)
		}
	}
	return errs
}

// pathToRoot walks the child->parent chain from frame to its root,
// returning the visited frames in order (frame first, root last) and the
// set of visited frames. It fails with LoopDetected if a frame would be
// visited twice (spec.md 4.3).
func (b *Buffer) pathToRoot(frame string) ([]string, map[string]bool, error) {
	path := []string{frame}
	visited := map[string]bool{frame: true}
	parentsWalked := map[string]string{}

	current := frame
	for {
		parent, ok := b.childParent[current]
		if !ok {
			return path, visited, nil
		}
		parentsWalked[current] = parent
		if visited[parent] {
			return nil, nil, tferrors.Loop(parent, parentsWalked)
		}
		visited[parent] = true
		path = append(path, parent)
		current = parent
	}
}

// resolvePath returns the ordered list of frames from "from" to "to"
// inclusive, routed through their lowest common ancestor (spec.md 4.3).
func (b *Buffer) resolvePath(from, to string) ([]string, error) {
	fromPath, fromVisited, err := b.pathToRoot(from)
	if err != nil {
		return nil, err
	}
	toPath, _, err := b.pathToRoot(to)
	if err != nil {
		return nil, err
	}

	lcaIdx := -1
	for i, frame := range toPath {
		if fromVisited[frame] {
			lcaIdx = i
			break
		}
	}
	if lcaIdx == -1 {
		return nil, tferrors.NotFound(from, to, "frames belong to disconnected trees")
	}
	lca := toPath[lcaIdx]

	fromIdx := -1
	for i, frame := range fromPath {
		if frame == lca {
			fromIdx = i
			break
		}
	}

	result := append([]string{}, fromPath[:fromIdx+1]...)
	for i := lcaIdx - 1; i >= 0; i-- {
		result = append(result, toPath[i])
	}
	return result, nil
}

// hopTransform resolves the single-hop edge between adjacent frames f1,f2
// in a resolved path, inverting the stored transform if the edge was
// registered in the opposite direction (spec.md 4.4).
func (b *Buffer) hopTransform(f1, f2 string, stamp *tfcore.Stamp) (tfmath.Transform, error) {
	var key tfcore.EdgeKey
	invert := false
	if b.childParent[f2] == f1 {
		key = tfcore.EdgeKey{Parent: f1, Child: f2}
	} else {
		key = tfcore.EdgeKey{Parent: f2, Child: f1}
		invert = true
	}

	chain, ok := b.edges.get(key)
	if !ok {
		return tfmath.Identity, tferrors.Empty()
	}
	ts, err := chain.Get(stamp)
	if err != nil {
		return tfmath.Identity, err
	}
	if invert {
		return tfmath.Inverse(ts.Transform), nil
	}
	return ts.Transform, nil
}

// effectiveStamp implements spec.md 4.4's "most recent" coherency policy:
// the minimum of each dynamic hop's latest available stamp, or ZeroStamp
// if every hop on the path is static.
func (b *Buffer) effectiveStamp(path []string) tfcore.Stamp {
	var (
		min tfcore.Stamp
		set bool
	)
	for i := 0; i < len(path)-1; i++ {
		f1, f2 := path[i], path[i+1]
		key := tfcore.EdgeKey{Parent: f1, Child: f2}
		if b.childParent[f2] != f1 {
			key = tfcore.EdgeKey{Parent: f2, Child: f1}
		}
		chain, ok := b.edges.get(key)
		if !ok || chain.IsStatic() {
			continue
		}
		latest, ok := chain.Latest()
		if !ok {
			continue
		}
		if !set || latest < min {
			min = latest
			set = true
		}
	}
	if !set {
		return tfcore.ZeroStamp
	}
	return min
}

// Lookup returns the rigid transform from frame "from" to frame "to". If
// stamp is nil, the "most recent" coherency policy picks the effective
// query time (spec.md 4.4).
func (b *Buffer) Lookup(from, to string, stamp *tfcore.Stamp) (tfcore.TransformStamped, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lookupLocked(from, to, stamp)
}

func (b *Buffer) lookupLocked(from, to string, stamp *tfcore.Stamp) (tfcore.TransformStamped, error) {
	if from == to {
		s := tfcore.ZeroStamp
		if stamp != nil {
			s = *stamp
		}
		return identityAt(from, to, s), nil
	}

	path, err := b.resolvePath(from, to)
	if err != nil {
		return tfcore.TransformStamped{}, err
	}

	effective := tfcore.ZeroStamp
	if stamp != nil {
		effective = *stamp
	} else {
		effective = b.effectiveStamp(path)
	}

	transforms := make([]tfmath.Transform, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		t, err := b.hopTransform(path[i], path[i+1], &effective)
		if err != nil {
			return tfcore.TransformStamped{}, err
		}
		transforms = append(transforms, t)
	}

	return tfcore.TransformStamped{
		Header:       tfcore.Header{FrameID: from, Stamp: effective},
		ChildFrameID: to,
		Transform:    tfmath.Chain(transforms),
	}, nil
}

// LookupWithTimeTravel composes two lookups taken at different times
// through a fixed frame assumed rigid across the interval (spec.md 4.4).
func (b *Buffer) LookupWithTimeTravel(to string, t2 tfcore.Stamp, from string, t1 tfcore.Stamp, fixed string) (tfcore.TransformStamped, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	a, err := b.lookupLocked(from, fixed, &t1)
	if err != nil {
		return tfcore.TransformStamped{}, err
	}
	bb, err := b.lookupLocked(to, fixed, &t2)
	if err != nil {
		return tfcore.TransformStamped{}, err
	}

	composed := tfmath.Compose(bb.Transform, tfmath.Inverse(a.Transform))
	return tfcore.TransformStamped{
		Header:       tfcore.Header{FrameID: from, Stamp: t1},
		ChildFrameID: to,
		Transform:    composed,
	}, nil
}

func identityAt(from, to string, stamp tfcore.Stamp) tfcore.TransformStamped {
	return tfcore.TransformStamped{
		Header:       tfcore.Header{FrameID: from, Stamp: stamp},
		ChildFrameID: to,
		Transform:    tfmath.Identity,
	}
}

// FrameRoots returns every frame with no registered parent, i.e. every
// root of the forest currently held by the buffer. Used by cmd/tf-tree.
func (b *Buffer) FrameRoots() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	roots := map[string]bool{}
	for parent := range b.parentChildren {
		if _, hasParent := b.childParent[parent]; !hasParent {
			roots[parent] = true
		}
	}
	for child := range b.childParent {
		if _, hasParent := b.childParent[child]; !hasParent {
			roots[child] = true
		}
	}
	out := make([]string, 0, len(roots))
	for r := range roots {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Children returns frame's direct children, sorted for deterministic
// display.
func (b *Buffer) Children(frame string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	children := b.parentChildren[frame]
	out := make([]string, 0, len(children))
	for c := range children {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
