package tfcore

import (
	"time"

	"github.com/goccy/go-json"
)

// WireStamp is the (secs, nsecs) pair carried on the wire, matching
// spec.md's TransformStamped.header.stamp. Nsecs is normalized into
// [0, 1e9) on construction; it is never rejected for nsecs>=1e9 the way
// some upstream constructors do (spec.md 9, Design Notes: "Be wary of
// constructors that reject nsecs>=10^9").
type WireStamp struct {
	Secs  uint32
	Nsecs uint32
}

// NewWireStamp builds a WireStamp, carrying any nsecs overflow into secs.
func NewWireStamp(secs, nsecs uint32) WireStamp {
	extraSecs := nsecs / 1e9
	return WireStamp{Secs: secs + extraSecs, Nsecs: nsecs % 1e9}
}

// Stamp is a signed duration since the Unix epoch at 1ns resolution, used
// internally for all ordering and arithmetic. Stamp(0) is a legitimate
// time value (spec.md 9, Open Question (a)) — it carries no special
// "no time" meaning; static-vs-dynamic is tracked separately by tfchain.
type Stamp time.Duration

// ZeroStamp is the stamp used internally for static edges, and the stamp a
// lookup with no explicit time reports when from == to or every hop on its
// path is static.
const ZeroStamp Stamp = 0

// ToStamp converts a wire (secs, nsecs) pair to the internal Stamp.
func (w WireStamp) ToStamp() Stamp {
	return Stamp(time.Duration(w.Secs)*time.Second + time.Duration(w.Nsecs))
}

// ToWire converts s back to a normalized (secs, nsecs) pair. Stamps before
// the epoch are not expected by any caller in this package and are
// reported with Secs=0; internal callers never construct negative stamps.
func (s Stamp) ToWire() WireStamp {
	if s < 0 {
		return WireStamp{}
	}
	d := time.Duration(s)
	return WireStamp{
		Secs:  uint32(d / time.Second),
		Nsecs: uint32(d % time.Second),
	}
}

// Seconds returns s as a floating point number of seconds, for display and
// for config-file round trips.
func (s Stamp) Seconds() float64 {
	return time.Duration(s).Seconds()
}

// StampFromSeconds builds a Stamp from a floating point number of seconds.
func StampFromSeconds(sec float64) Stamp {
	return Stamp(sec * float64(time.Second))
}

// Sub returns the signed difference s-other.
func (s Stamp) Sub(other Stamp) time.Duration {
	return time.Duration(s - other)
}

// MarshalJSON encodes s at the wire boundary as spec.md 6's
// {"secs":u32,"nsecs":u32} pair rather than a bare internal duration.
func (s Stamp) MarshalJSON() ([]byte, error) {
	w := s.ToWire()
	return json.Marshal(struct {
		Secs  uint32 `json:"secs"`
		Nsecs uint32 `json:"nsecs"`
	}{w.Secs, w.Nsecs})
}

// UnmarshalJSON decodes a spec.md 6 {"secs","nsecs"} pair into s, routing
// through NewWireStamp so nsecs>=1e9 is normalized rather than rejected.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	var w struct {
		Secs  uint32 `json:"secs"`
		Nsecs uint32 `json:"nsecs"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = NewWireStamp(w.Secs, w.Nsecs).ToStamp()
	return nil
}
