package tflisten

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/tf/tfbuffer"
	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tfmath"
)

// fakeSource is an in-memory Source fed by a slice of prequeued messages;
// it closes once they're all delivered.
type fakeSource struct {
	msgs []tfcore.TFMessage
	pos  int
	done chan struct{}
}

func newFakeSource(msgs ...tfcore.TFMessage) *fakeSource {
	return &fakeSource{msgs: msgs, done: make(chan struct{})}
}

func (s *fakeSource) Recv(ctx context.Context) (tfcore.TFMessage, error) {
	if s.pos >= len(s.msgs) {
		close(s.done)
		return tfcore.TFMessage{}, ErrNoMessage
	}
	m := s.msgs[s.pos]
	s.pos++
	return m, nil
}

func (s *fakeSource) Done() <-chan struct{} { return s.done }

func msgFor(parent, child string) tfcore.TFMessage {
	return tfcore.TFMessage{Transforms: []tfcore.TransformStamped{{
		Header:       tfcore.Header{FrameID: parent, Stamp: tfcore.ZeroStamp},
		ChildFrameID: child,
		Transform:    tfmath.Identity,
	}}}
}

func TestListenerAppliesBothSourcesAndFinishes(t *testing.T) {
	buf := tfbuffer.New(tfbuffer.DefaultCacheDuration)
	dyn := newFakeSource(msgFor("world", "robot"))
	stat := newFakeSource(msgFor("world", "map"))

	l := New(dyn, stat, buf)
	l.Backoff = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := l.Run(ctx)
	require.NoError(t, err)

	select {
	case <-l.Finished():
	default:
		t.Fatal("expected Finished to be closed after both sources drain")
	}

	stamp := tfcore.ZeroStamp
	_, err = buf.Lookup("world", "robot", &stamp)
	require.NoError(t, err)
	_, err = buf.Lookup("world", "map", &stamp)
	require.NoError(t, err)
}

// blockingSource never closes and never has a message ready, modeling a
// live stream with nothing queued yet.
type blockingSource struct {
	done chan struct{}
}

func (s *blockingSource) Recv(ctx context.Context) (tfcore.TFMessage, error) {
	return tfcore.TFMessage{}, ErrNoMessage
}

func (s *blockingSource) Done() <-chan struct{} { return s.done }

func TestForceFinishStopsRunWithoutDraining(t *testing.T) {
	buf := tfbuffer.New(tfbuffer.DefaultCacheDuration)
	dyn := &blockingSource{done: make(chan struct{})}
	stat := &blockingSource{done: make(chan struct{})}

	l := New(dyn, stat, buf)
	l.Backoff = time.Millisecond

	runErr := make(chan error, 1)
	go func() { runErr <- l.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	l.ForceFinish()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after ForceFinish")
	}

	select {
	case <-l.Finished():
		t.Fatal("Finished should not close on a forced abort")
	default:
	}
}
