package tftransport

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tflisten"
	"github.com/grailbio/tf/tfcore"
)

// Source subscribes to a peer's /tf or /tf_static websocket endpoint and
// implements tflisten.Source: a background goroutine reads frames and
// feeds a buffered channel, so Recv never blocks.
type Source struct {
	conn *websocket.Conn
	msgs chan tfcore.TFMessage
	done chan struct{}
}

// DialSource dials url (e.g. "ws://host:port/tf") and begins reading
// TFMessage frames in the background.
func DialSource(ctx context.Context, url string) (*Source, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "tftransport: dial %s", url)
	}
	s := &Source{conn: conn, msgs: make(chan tfcore.TFMessage, 256), done: make(chan struct{})}
	go s.readLoop()
	return s, nil
}

func (s *Source) readLoop() {
	defer close(s.done)
	defer s.conn.Close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if log.At(log.Debug) {
				log.Debug.Printf("tftransport: source read loop stopped: %v", err)
			}
			return
		}
		var msg tfcore.TFMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error.Printf("tftransport: discarding malformed frame: %v", err)
			continue
		}
		select {
		case s.msgs <- msg:
		case <-s.done:
			return
		}
	}
}

// Recv implements tflisten.Source.
func (s *Source) Recv(ctx context.Context) (tfcore.TFMessage, error) {
	select {
	case m := <-s.msgs:
		return m, nil
	default:
		return tfcore.TFMessage{}, tflisten.ErrNoMessage
	}
}

// Done implements tflisten.Source.
func (s *Source) Done() <-chan struct{} { return s.done }

// Close closes the underlying connection.
func (s *Source) Close() error {
	return s.conn.Close()
}
