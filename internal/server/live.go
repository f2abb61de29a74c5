package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"

	"github.com/azimonti/quantum-entanglement-simulation/internal/events"
)

const liveWriteTimeout = 10 * time.Second

// liveFrame is the wire form of one event pushed to display clients.
type liveFrame struct {
	Type      string           `json:"type" msgpack:"type"`
	Timestamp time.Time        `json:"timestamp" msgpack:"timestamp"`
	Data      events.EventData `json:"data" msgpack:"data"`
}

// liveClient is one connected display.
type liveClient struct {
	ch     chan *events.Event
	binary bool // msgpack frames instead of JSON
}

// LiveHub fans simulation events out to websocket clients. It subscribes to
// the bus once; clients come and go with their connections.
type LiveHub struct {
	mu      sync.Mutex
	clients map[*liveClient]struct{}
	closed  bool
	log     zerolog.Logger
}

// NewLiveHub creates the hub and wires it to the bus.
func NewLiveHub(bus *events.Bus, log zerolog.Logger) *LiveHub {
	h := &LiveHub{
		clients: make(map[*liveClient]struct{}),
		log:     log.With().Str("component", "live_hub").Logger(),
	}
	if bus != nil {
		bus.SubscribeAll(h.broadcast)
	}
	return h
}

// broadcast delivers an event to every client, dropping it for clients whose
// buffer is full rather than blocking the publisher.
func (h *LiveHub) broadcast(event *events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- event:
		default:
		}
	}
}

// Close disconnects all clients.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.ch)
		delete(h.clients, c)
	}
}

func (h *LiveHub) add(c *liveClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *LiveHub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.ch)
		delete(h.clients, c)
	}
}

// ServeHTTP handles GET /api/events/live websocket upgrades. The optional
// format query parameter selects json (default) or msgpack frames.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS is enforced by the router middleware
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	client := &liveClient{
		ch:     make(chan *events.Event, 64),
		binary: r.URL.Query().Get("format") == "msgpack",
	}
	if !h.add(client) {
		return
	}
	defer h.remove(client)

	h.log.Info().Bool("msgpack", client.binary).Msg("Live client connected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-client.ch:
			if !ok {
				return
			}
			if err := h.write(ctx, conn, client, event); err != nil {
				h.log.Debug().Err(err).Msg("Live client write failed, disconnecting")
				return
			}
		}
	}
}

func (h *LiveHub) write(ctx context.Context, conn *websocket.Conn, client *liveClient, event *events.Event) error {
	frame := liveFrame{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	}

	var payload []byte
	var err error
	msgType := websocket.MessageText
	if client.binary {
		payload, err = msgpack.Marshal(frame)
		msgType = websocket.MessageBinary
	} else {
		payload, err = json.Marshal(frame)
	}
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, msgType, payload)
}
