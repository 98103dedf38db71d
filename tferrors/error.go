package tferrors

import (
	"fmt"

	"github.com/grailbio/tf/tfcore"
)

// Kind tags the flavor of failure a tfbuffer operation can report.
type Kind int

const (
	// AttemptedLookupInPast means a query stamp precedes a chain's
	// earliest entry.
	AttemptedLookupInPast Kind = iota
	// AttemptedLookupInFuture means a query stamp follows a chain's
	// latest entry.
	AttemptedLookupInFuture
	// LoopDetected means a parent chain revisited a frame.
	LoopDetected
	// CouldNotFindTransform means the two frames' root paths never
	// intersect.
	CouldNotFindTransform
	// CouldNotAcquireLock means a concurrent-access failure prevented the
	// operation from completing.
	CouldNotAcquireLock
	// EmptyTree means a lookup needed an edge that holds no entries (an
	// empty chain, or no chain stored for the edge). A lookup between two
	// different frames of an empty buffer reports CouldNotFindTransform.
	EmptyTree
	// ChangingParent means an insert tried to give an existing child a
	// different parent.
	ChangingParent
	// TransportError wraps a fatal error surfaced from a listener or
	// broadcaster.
	TransportError
	// InconsistentEdgeType means an edge already registered as static was
	// reinserted as dynamic, or vice versa (spec.md 3.3). spec.md's
	// taxonomy table doesn't name a kind for this invariant; this one was
	// added to cover it (see DESIGN.md).
	InconsistentEdgeType
)

func (k Kind) String() string {
	switch k {
	case AttemptedLookupInPast:
		return "AttemptedLookupInPast"
	case AttemptedLookupInFuture:
		return "AttemptedLookupInFuture"
	case LoopDetected:
		return "LoopDetected"
	case CouldNotFindTransform:
		return "CouldNotFindTransform"
	case CouldNotAcquireLock:
		return "CouldNotAcquireLock"
	case EmptyTree:
		return "EmptyTree"
	case ChangingParent:
		return "ChangingParent"
	case TransportError:
		return "TransportError"
	case InconsistentEdgeType:
		return "InconsistentEdgeType"
	default:
		return "Unknown"
	}
}

// Error is the single tagged-variant error type returned by tfbuffer and
// tflisten. Callers match on Kind; the per-kind fields carry the detail
// spec.md 4.6/7 lists (boundary stamps, the offending edge key, etc).
type Error struct {
	Kind Kind

	// AttemptedLookupInPast / AttemptedLookupInFuture.
	Edge        tfcore.EdgeKey
	BoundStamp  tfcore.Stamp
	QueryStamp  tfcore.Stamp

	// LoopDetected.
	Frame     string
	ParentMap map[string]string

	// CouldNotFindTransform.
	From, To, Detail string

	// ChangingParent.
	Child, NewParent, OldParent string

	// TransportError.
	Cause error

	// InconsistentEdgeType.
	WasStatic, WantStatic bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case AttemptedLookupInPast:
		return fmt.Sprintf("tf: lookup on edge %s/%s at %.9fs is before first stamp %.9fs",
			e.Edge.Parent, e.Edge.Child, e.QueryStamp.Seconds(), e.BoundStamp.Seconds())
	case AttemptedLookupInFuture:
		return fmt.Sprintf("tf: lookup on edge %s/%s at %.9fs is after last stamp %.9fs",
			e.Edge.Parent, e.Edge.Child, e.QueryStamp.Seconds(), e.BoundStamp.Seconds())
	case LoopDetected:
		return fmt.Sprintf("tf: loop detected: frame %q revisited walking parent chain %v", e.Frame, e.ParentMap)
	case CouldNotFindTransform:
		return fmt.Sprintf("tf: could not find transform from %q to %q: %s", e.From, e.To, e.Detail)
	case CouldNotAcquireLock:
		return "tf: could not acquire buffer lock"
	case EmptyTree:
		return "tf: no transform stored for the requested edge"
	case ChangingParent:
		return fmt.Sprintf("tf: %q already has parent %q, refusing new parent %q", e.Child, e.OldParent, e.NewParent)
	case TransportError:
		return fmt.Sprintf("tf: transport error: %v", e.Cause)
	case InconsistentEdgeType:
		return fmt.Sprintf("tf: edge %s/%s registered static=%v, got static=%v",
			e.Edge.Parent, e.Edge.Child, e.WasStatic, e.WantStatic)
	default:
		return "tf: unknown error"
	}
}

// Unwrap exposes Cause for TransportError so errors.Is/As reach the
// transport-layer cause itself. The github.com/pkg/errors version in
// go.mod defines no Unwrap, so they do not see past a pkg/errors wrapper
// inside Cause; errors.Cause does.
func (e *Error) Unwrap() error { return e.Cause }

// InPast builds an AttemptedLookupInPast error.
func InPast(edge tfcore.EdgeKey, first, query tfcore.Stamp) *Error {
	return &Error{Kind: AttemptedLookupInPast, Edge: edge, BoundStamp: first, QueryStamp: query}
}

// InFuture builds an AttemptedLookupInFuture error.
func InFuture(edge tfcore.EdgeKey, last, query tfcore.Stamp) *Error {
	return &Error{Kind: AttemptedLookupInFuture, Edge: edge, BoundStamp: last, QueryStamp: query}
}

// Loop builds a LoopDetected error.
func Loop(frame string, parents map[string]string) *Error {
	return &Error{Kind: LoopDetected, Frame: frame, ParentMap: parents}
}

// NotFound builds a CouldNotFindTransform error.
func NotFound(from, to, detail string) *Error {
	return &Error{Kind: CouldNotFindTransform, From: from, To: to, Detail: detail}
}

// LockFailure builds a CouldNotAcquireLock error.
func LockFailure() *Error {
	return &Error{Kind: CouldNotAcquireLock}
}

// Empty builds an EmptyTree error.
func Empty() *Error {
	return &Error{Kind: EmptyTree}
}

// Reparent builds a ChangingParent error.
func Reparent(child, newParent, oldParent string) *Error {
	return &Error{Kind: ChangingParent, Child: child, NewParent: newParent, OldParent: oldParent}
}

// Transport builds a TransportError wrapping cause.
func Transport(cause error) *Error {
	return &Error{Kind: TransportError, Cause: cause}
}

// InconsistentEdgeType builds an InconsistentEdgeType error.
func InconsistentEdgeType(edge tfcore.EdgeKey, wasStatic, wantStatic bool) *Error {
	return &Error{Kind: InconsistentEdgeType, Edge: edge, WasStatic: wasStatic, WantStatic: wantStatic}
}
