package tftransport

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tf/tfcore"
)

// Publisher is the symmetric broadcast side of Source: it dials a topic
// endpoint and writes TFMessage frames to it. A background goroutine
// discards inbound control frames so the connection's read deadline
// machinery stays serviced (gorilla/websocket requires a reader even on a
// write-only peer).
type Publisher struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialPublisher dials url (e.g. "ws://host:port/tf_static") for publishing.
func DialPublisher(ctx context.Context, url string) (*Publisher, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "tftransport: dial %s", url)
	}
	p := &Publisher{conn: conn}
	go p.discardInbound()
	return p, nil
}

func (p *Publisher) discardInbound() {
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			if log.At(log.Debug) {
				log.Debug.Printf("tftransport: publisher connection closed: %v", err)
			}
			return
		}
	}
}

// Publish encodes msg as JSON and sends it as a single text frame.
func (p *Publisher) Publish(msg tfcore.TFMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "tftransport: marshal")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "tftransport: write")
	}
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
