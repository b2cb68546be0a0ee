package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/ayusman/wavecam/internal/gesture"
)

const (
	writeWait = 2 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// Wire formats for /api/events, chosen with ?format=.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// eventBuffer is how many gestures may wait for the broadcaster before
// Emit starts dropping them.
const eventBuffer = 64

type eventClient struct {
	format  string
	writeMu sync.Mutex
}

// EventHub pushes every recognized gesture to connected websocket clients.
// It is a gesture.Sink. Emit only queues the event; a broadcast goroutine
// does the writes, so a slow client never holds up the caller.
type EventHub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]*eventClient
	mu        sync.Mutex
	now       func() time.Time
	messages  chan gesture.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventHub creates an EventHub with no clients and starts its broadcaster.
// Close stops it.
func NewEventHub() *EventHub {
	h := newEventHub(eventBuffer)
	go h.broadcast()
	return h
}

func newEventHub(buffer int) *EventHub {
	return &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*eventClient),
		now:      time.Now,
		messages: make(chan gesture.Message, buffer),
		done:     make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCBOR {
		http.Error(w, "format must be json or cbor", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &eventClient{format: format}
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		conn.Close()
		return
	default:
	}
	h.clients[conn] = c
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := writeFrame(conn, c, websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()
	defer close(done)
	defer h.removeClient(conn)

	// Clients only listen; reading keeps pongs and close frames flowing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Emit stamps ev and queues it for the broadcaster. When the queue is full
// the event is dropped and logged.
func (h *EventHub) Emit(ev gesture.Event) {
	msg := gesture.NewMessage(ev, h.now())

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.messages <- msg:
	default:
		log.Printf("event hub queue full, dropping %s", ev.Direction)
	}
}

func (h *EventHub) broadcast() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.messages:
			h.send(msg)
		}
	}
}

// send writes msg to every client in its chosen format. Clients that cannot
// be written to are dropped.
func (h *EventHub) send(msg gesture.Message) {
	payloads := make(map[string][]byte, 2)
	encode := func(format string) ([]byte, error) {
		if p, ok := payloads[format]; ok {
			return p, nil
		}
		var p []byte
		var err error
		if format == FormatCBOR {
			p, err = cbor.Marshal(msg)
		} else {
			p, err = json.Marshal(msg)
		}
		if err != nil {
			return nil, err
		}
		payloads[format] = p
		return p, nil
	}

	h.mu.Lock()
	clients := make(map[*websocket.Conn]*eventClient, len(h.clients))
	for conn, c := range h.clients {
		clients[conn] = c
	}
	h.mu.Unlock()

	var stale []*websocket.Conn
	for conn, c := range clients {
		payload, err := encode(c.format)
		if err != nil {
			log.Printf("encode %s event: %v", c.format, err)
			continue
		}
		messageType := websocket.TextMessage
		if c.format == FormatCBOR {
			messageType = websocket.BinaryMessage
		}
		if err := writeFrame(conn, c, messageType, payload); err != nil {
			stale = append(stale, conn)
		}
	}

	for _, conn := range stale {
		h.removeClient(conn)
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops the broadcaster and disconnects every client. Later events
// are discarded.
func (h *EventHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.removeClient(conn)
	}
}

func (h *EventHub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func writeFrame(conn *websocket.Conn, c *eventClient, messageType int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
