package tfcapture

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/tf/tflisten"
)

func TestPlaybackSourceFiltersByStaticAndCloses(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(record(0, true, "world", "map")))
	require.NoError(t, w.Write(record(0, false, "world", "robot")))
	require.NoError(t, w.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := NewPlaybackSource(ctx, r, false, 0)

	var got []string
	deadline := time.After(time.Second)
loop:
	for {
		msg, err := src.Recv(ctx)
		if err == nil {
			got = append(got, msg.Transforms[0].ChildFrameID)
			continue
		}
		require.Equal(t, tflisten.ErrNoMessage, err)
		select {
		case <-src.Done():
			break loop
		case <-deadline:
			t.Fatal("playback source never closed")
		case <-time.After(time.Millisecond):
		}
	}

	require.Equal(t, []string{"robot"}, got)
}
