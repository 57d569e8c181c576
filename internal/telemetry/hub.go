// Package telemetry streams world frames to websocket clients as JSON. A
// client may pass ?source=<name> to receive only that character's outputs.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/locomotion/internal/core/locomotion"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/system"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 64
)

var _ system.Sink = (*Hub)(nil)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn   *websocket.Conn
	source string
	send   chan []byte
	done   chan struct{}
}

// Hub fans frames out to connected clients. Slow clients drop frames rather
// than stall the tick.
type Hub struct {
	log  log.Log
	path string

	mu      sync.Mutex
	clients map[*client]struct{}
	dropped uint64

	srv *http.Server
}

// NewHub builds a hub serving websocket upgrades at path.
func NewHub(path string, l log.Log) *Hub {
	if path == "" {
		path = "/ws"
	}
	return &Hub{
		log:     log.OrNop(l).Named("telemetry"),
		path:    path,
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the http handler for the hub's path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(h.path, h.handleWebSocket)
	return mux
}

// Start listens on addr in the background.
func (h *Hub) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	h.srv = &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("telemetry server stopped", log.Error(err))
		}
	}()
	h.log.Info("telemetry listening", log.String("addr", ln.Addr().String()), log.String("path", h.path))
	return ln.Addr(), nil
}

// Stop shuts the server down and disconnects every client.
func (h *Hub) Stop(ctx context.Context) error {
	var err error
	if h.srv != nil {
		err = h.srv.Shutdown(ctx)
	}
	h.mu.Lock()
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()
	return err
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts frames skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Consume broadcasts f. It never blocks on a client.
func (h *Hub) Consume(_ context.Context, f system.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return nil
	}

	all, err := json.Marshal(f)
	if err != nil {
		return err
	}
	for c := range h.clients {
		msg := all
		if c.source != "" {
			if msg, err = json.Marshal(filter(f, c.source)); err != nil {
				return err
			}
		}
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
	return nil
}

func filter(f system.Frame, source string) system.Frame {
	out := make([]locomotion.Output, 0, 1)
	for _, o := range f.Outputs {
		if o.Source == source {
			out = append(out, o)
		}
	}
	f.Outputs = out
	return f
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{
		conn:   conn,
		source: r.URL.Query().Get("source"),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("client connected", log.String("remote", conn.RemoteAddr().String()), log.String("source", c.source))

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop only watches for the close; clients never send anything useful.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
	_ = c.conn.Close()
}
