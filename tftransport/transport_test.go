package tftransport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/tf/tfcore"
	"github.com/grailbio/tf/tflisten"
	"github.com/grailbio/tf/tfmath"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func TestPublisherAndSourceRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewServer())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	src, err := DialSource(ctx, wsURL(srv.URL, "/tf"))
	require.NoError(t, err)
	defer src.Close()

	pub, err := DialPublisher(ctx, wsURL(srv.URL, "/tf"))
	require.NoError(t, err)
	defer pub.Close()

	want := tfcore.TFMessage{Transforms: []tfcore.TransformStamped{{
		Header:       tfcore.Header{FrameID: "world", Stamp: tfcore.ZeroStamp},
		ChildFrameID: "robot",
		Transform:    tfmath.Identity,
	}}}

	require.NoError(t, pub.Publish(want))

	deadline := time.After(2 * time.Second)
	for {
		msg, err := src.Recv(ctx)
		if err == nil {
			require.Equal(t, want, msg)
			return
		}
		require.Equal(t, tflisten.ErrNoMessage, err)
		select {
		case <-deadline:
			t.Fatal("never received published message")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSourceDoneClosesOnServerShutdown(t *testing.T) {
	srv := httptest.NewServer(NewServer())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	src, err := DialSource(ctx, wsURL(srv.URL, "/tf_static"))
	require.NoError(t, err)
	defer src.Close()

	srv.Close()

	select {
	case <-src.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done never closed after server shutdown")
	}
}
