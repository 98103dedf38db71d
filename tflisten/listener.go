package tflisten

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfbuffer"
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tferrors"
)

// ErrNoMessage is returned by Source.Recv when no message is currently
// queued. It is not a failure; callers poll again after a short backoff.
var ErrNoMessage = errors.New("tflisten: no message queued")

// Source is the inbound half of a transport, specified as an interface so
// tflisten stays decoupled from how messages actually arrive (spec.md 1,
// 4.5). tftransport supplies the concrete websocket implementation;
// tfcapture's PlaybackSource implements it too, for replay.
type Source interface {
	// Recv returns the next queued message without blocking. If none is
	// queued yet, it returns ErrNoMessage. Any other non-nil error is
	// fatal and stops the listener.
	Recv(ctx context.Context) (tfcore.TFMessage, error)
	// Done is closed once the source will never produce another message.
	Done() <-chan struct{}
}

const (
	// defaultBatchSize is spec.md 4.5's N≈50: how many messages the
	// listener tries to pull off a source before taking the write lock.
	defaultBatchSize = 50
	// defaultBackoff is spec.md 4.5's ≈10ms idle sleep.
	defaultBackoff = 10 * time.Millisecond
)

// Listener multiplexes a dynamic and a static Source into a Buffer,
// batching inserts under one write-lock acquisition per drain (spec.md
// 4.5, 5). The zero value is not usable; construct with New.
type Listener struct {
	Dynamic Source
	Static  Source
	Buffer  *tfbuffer.Buffer

	// BatchSize and Backoff override the spec.md defaults; zero means use
	// the default.
	BatchSize int
	Backoff   time.Duration

	finishOnce  sync.Once
	finished    chan struct{}
	forceFinish chan struct{}
}

// New constructs a Listener over the given sources and buffer, using
// spec.md 4.5's default batch size and backoff.
func New(dynamic, static Source, buf *tfbuffer.Buffer) *Listener {
	return &Listener{
		Dynamic:     dynamic,
		Static:      static,
		Buffer:      buf,
		finished:    make(chan struct{}),
		forceFinish: make(chan struct{}),
	}
}

func (l *Listener) batchSize() int {
	if l.BatchSize > 0 {
		return l.BatchSize
	}
	return defaultBatchSize
}

func (l *Listener) backoff() time.Duration {
	if l.Backoff > 0 {
		return l.Backoff
	}
	return defaultBackoff
}

// Finished is closed once both sources are exhausted and every queued
// message has been applied to the buffer. It is never closed by
// ForceFinish, whose abortive shutdown may leave messages unapplied.
func (l *Listener) Finished() <-chan struct{} { return l.finished }

// ForceFinish aborts the listener's run loop at the next suspension point
// without waiting for its sources to drain (spec.md 4.5, "Cancellation
// and timeouts"). It is safe to call more than once or concurrently with
// Run.
func (l *Listener) ForceFinish() {
	l.finishOnce.Do(func() { close(l.forceFinish) })
}

// Run drains both sources until they close or ForceFinish is called,
// applying each batch to Buffer under one write-lock acquisition (spec.md
// 4.5). It returns nil on a clean (sources-closed or force-finished) stop,
// or the first fatal Source error wrapped in a tferrors TransportError.
func (l *Listener) Run(ctx context.Context) error {
	batch := l.batchSize()
	backoff := l.backoff()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.forceFinish:
			return nil
		default:
		}

		dynMsgs, dynClosed, err := l.drain(ctx, l.Dynamic, batch)
		if err != nil {
			log.Error.Printf("tflisten: dynamic source failed, shutting down: %v", err)
			return tferrors.Transport(errors.Wrap(err, "tflisten: dynamic source"))
		}
		statMsgs, statClosed, err := l.drain(ctx, l.Static, batch)
		if err != nil {
			log.Error.Printf("tflisten: static source failed, shutting down: %v", err)
			return tferrors.Transport(errors.Wrap(err, "tflisten: static source"))
		}

		dynApplied := l.apply(dynMsgs, false)
		statApplied := l.apply(statMsgs, true)
		applied := dynApplied || statApplied

		if dynClosed && statClosed {
			l.finishOnce.Do(func() { close(l.finished) })
			return nil
		}

		if !applied {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.forceFinish:
				return nil
			case <-time.After(backoff):
			}
		}
	}
}

// drain pulls up to max messages from src without blocking, stopping
// early once the source reports no message queued. Done is only checked
// after a failed Recv, so a source that closes with buffered messages
// still waiting is fully drained before it is reported closed.
func (l *Listener) drain(ctx context.Context, src Source, max int) (msgs []tfcore.TFMessage, closed bool, err error) {
	for i := 0; i < max; i++ {
		msg, recvErr := src.Recv(ctx)
		if recvErr == nil {
			msgs = append(msgs, msg)
			continue
		}
		if recvErr != ErrNoMessage {
			return msgs, false, recvErr
		}
		select {
		case <-src.Done():
			return msgs, true, nil
		default:
			return msgs, false, nil
		}
	}
	return msgs, false, nil
}

// apply flattens msgs into a single AddTransforms call, taking the
// buffer's write lock once regardless of how many messages were batched.
// It reports whether any message was applied. Per-transform errors are
// already logged by Buffer.AddTransforms; apply only needs to know
// whether the batch was non-empty.
func (l *Listener) apply(msgs []tfcore.TFMessage, isStatic bool) bool {
	if len(msgs) == 0 {
		return false
	}
	var flat tfcore.TFMessage
	for _, m := range msgs {
		flat.Transforms = append(flat.Transforms, m.Transforms...)
	}
	l.Buffer.AddTransforms(flat, isStatic)
	return true
}
