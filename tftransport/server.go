package tftransport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"v.io/x/lib/vlog"

	"github.com/grailbio/base/log"
)

// Server exposes the two topics spec.md §6 names, /tf (dynamic) and
// /tf_static (static): any frame a client publishes to a topic is relayed
// to every other client currently subscribed to that same topic. Neither
// topic is latched: the Server keeps no frames, so a client that
// subscribes after a frame was published never receives it.
type Server struct {
	upgrader websocket.Upgrader
	dynamic  *hub
	static   *hub
}

// NewServer constructs a Server ready to be mounted as an http.Handler.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		dynamic: newHub(),
		static:  newHub(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h *hub
	switch r.URL.Path {
	case "/tf":
		h = s.dynamic
	case "/tf_static":
		h = s.static
	default:
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error.Printf("tftransport: upgrade %s: %v", r.URL.Path, err)
		return
	}
	h.add(conn)
	defer h.remove(conn)
	defer conn.Close()
	vlog.VI(1).Infof("tftransport: client subscribed to %s", r.URL.Path)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.broadcastExcept(conn, msgType, data)
	}
}

type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// broadcastExcept relays data to every subscriber other than the one that
// sent it; publishers and subscribers share the same endpoint, so this
// keeps a publisher from receiving its own frames back.
func (h *hub) broadcastExcept(sender *websocket.Conn, msgType int, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c == sender {
			continue
		}
		if err := c.WriteMessage(msgType, data); err != nil {
			log.Error.Printf("tftransport: relay write failed: %v", err)
		}
	}
}
