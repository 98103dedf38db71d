package tfcapture

import (
	"context"
	"io"
	"time"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tflisten"
	"github.com/grailbio/tf/tfcore"
)

// PlaybackSource replays a captured stream as a tflisten.Source, pacing
// messages according to their recorded stamps (speed=1) or faster/slower
// (speed scales the inter-message delay; speed<=0 replays as fast as
// possible). It implements tflisten.Source so a capture file can feed a
// Listener exactly like a live tftransport subscription.
type PlaybackSource struct {
	msgs chan tfcore.TFMessage
	done chan struct{}
}

// NewPlaybackSource starts replaying r in a background goroutine,
// filtering to records matching wantStatic. It returns immediately; the
// returned PlaybackSource satisfies tflisten.Source right away.
func NewPlaybackSource(ctx context.Context, r *Reader, wantStatic bool, speed float64) *PlaybackSource {
	s := &PlaybackSource{
		msgs: make(chan tfcore.TFMessage, 256),
		done: make(chan struct{}),
	}
	go s.run(ctx, r, wantStatic, speed)
	return s
}

func (s *PlaybackSource) run(ctx context.Context, r *Reader, wantStatic bool, speed float64) {
	defer close(s.done)

	var last tfcore.Stamp
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			if log.At(log.Debug) {
				log.Debug.Printf("tfcapture: playback stopped: %v", err)
			}
			return
		}
		if rec.IsStatic != wantStatic {
			continue
		}

		if !first && speed > 0 {
			wait := rec.Stamp.Sub(last)
			if wait > 0 {
				select {
				case <-time.After(time.Duration(float64(wait) / speed)):
				case <-ctx.Done():
					return
				}
			}
		}
		last, first = rec.Stamp, false

		select {
		case s.msgs <- rec.Message:
		case <-ctx.Done():
			return
		}
	}
}

// Recv implements tflisten.Source.
func (s *PlaybackSource) Recv(ctx context.Context) (tfcore.TFMessage, error) {
	select {
	case m, ok := <-s.msgs:
		if ok {
			return m, nil
		}
	default:
	}
	return tfcore.TFMessage{}, tflisten.ErrNoMessage
}

// Done implements tflisten.Source.
func (s *PlaybackSource) Done() <-chan struct{} { return s.done }
