// Package api streams dashboard events to browsers over Server-Sent Events.
package api

import (
	"encoding/json"
	"io"
	"log"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// DashboardEvent is one server-sent event
type DashboardEvent struct {
	Seq       uint64         `json:"seq"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// sseClient is a connected SSE client; an empty filter accepts every event type
type sseClient struct {
	channel chan DashboardEvent
	types   []string
}

func (c sseClient) wants(eventType string) bool {
	return len(c.types) == 0 || slices.Contains(c.types, eventType)
}

// SSEHub fans dashboard events out to every connected client
type SSEHub struct {
	clients    map[chan DashboardEvent]sseClient
	clientsMu  sync.RWMutex
	register   chan sseClient
	unregister chan chan DashboardEvent
	broadcast  chan DashboardEvent
	done       chan struct{}
	closeOnce  sync.Once
	seq        atomic.Uint64

	// KeepAlive is the idle interval between ping events
	KeepAlive time.Duration
}

// NewSSEHub creates a new SSE hub and starts its loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[chan DashboardEvent]sseClient),
		register:   make(chan sseClient, 10),
		unregister: make(chan chan DashboardEvent, 10),
		broadcast:  make(chan DashboardEvent, 100),
		done:       make(chan struct{}),
		KeepAlive:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.channel] = client
			log.Printf("[SSE] Client registered (total clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case ch := <-h.unregister:
			h.clientsMu.Lock()
			if _, exists := h.clients[ch]; exists {
				delete(h.clients, ch)
				close(ch)
				log.Printf("[SSE] Client unregistered (remaining clients: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch, client := range h.clients {
				if !client.wants(event.EventType) {
					continue
				}
				select {
				case ch <- event:
				default:
					log.Printf("[SSE] Client channel full, skipping event %s", event.EventType)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for ch := range h.clients {
				close(ch)
			}
			h.clients = make(map[chan DashboardEvent]sseClient)
			h.clientsMu.Unlock()
			return
		}
	}
}

// Publish queues an event for every interested client
func (h *SSEHub) Publish(eventType string, data map[string]any) {
	event := DashboardEvent{
		Seq:       h.seq.Add(1),
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", eventType)
	}
}

// Subscribe registers a client for the given event types (all when empty).
// The returned function unregisters it.
func (h *SSEHub) Subscribe(types ...string) (<-chan DashboardEvent, func()) {
	ch := make(chan DashboardEvent, 10)
	select {
	case h.register <- sseClient{channel: ch, types: types}:
	case <-h.done:
		close(ch)
		return ch, func() {}
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			select {
			case h.unregister <- ch:
			case <-h.done:
			}
		})
	}
}

// Close stops the hub and closes every client channel
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams events; ?types=a,b limits the event types
func (h *SSEHub) HandleSSE(c *gin.Context) {
	var types []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, unsubscribe := h.Subscribe(types...)
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-time.After(h.KeepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
