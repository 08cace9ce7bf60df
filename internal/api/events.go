package api

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"talentmetrics/internal"
)

// Event types streamed on /api/events
const (
	EventReportBuilt = "report_built"
	EventBuildFailed = "build_failed"
	EventInputChange = "input_changed"
)

// keepAlive is the idle interval between ping frames
const keepAlive = 30 * time.Second

// BuildEvent is one pipeline notification
type BuildEvent struct {
	Type      string                 `json:"event_type"`
	RunID     string                 `json:"run_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHub fans build events out to Server-Sent Events clients. Slow
// clients miss events rather than blocking the pipeline.
type EventHub struct {
	clients    map[chan BuildEvent]bool
	clientsMu  sync.RWMutex
	register   chan chan BuildEvent
	unregister chan chan BuildEvent
	broadcast  chan BuildEvent
	logger     *internal.Logger
}

// NewEventHub creates a hub; call Run to start dispatching
func NewEventHub(logger *internal.Logger) *EventHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EventHub{
		clients:    make(map[chan BuildEvent]bool),
		register:   make(chan chan BuildEvent, 10),
		unregister: make(chan chan BuildEvent, 10),
		broadcast:  make(chan BuildEvent, 100),
		logger:     logger.Named("events"),
	}
}

// Run dispatches hub operations until ctx is done, then closes every
// client channel
func (h *EventHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for ch := range h.clients {
				close(ch)
				delete(h.clients, ch)
			}
			h.clientsMu.Unlock()
			return

		case ch := <-h.register:
			h.clientsMu.Lock()
			h.clients[ch] = true
			h.logger.Debug("client registered (total clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case ch := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[ch] {
				delete(h.clients, ch)
				close(ch)
				h.logger.Debug("client unregistered (remaining clients: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch := range h.clients {
				select {
				case ch <- event:
				default:
					h.logger.Warn("client channel full, skipping %s event", event.Type)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast queues an event for every connected client
func (h *EventHub) Broadcast(event BuildEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping %s event", event.Type)
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams events until the client disconnects
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan BuildEvent, 10)
	select {
	case h.register <- ch:
	default:
		c.JSON(500, gin.H{"error": "event hub registration failed"})
		return
	}
	defer func() {
		select {
		case h.unregister <- ch:
		default:
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.Type, string(payload))
			return true
		case <-ticker.C:
			c.SSEvent("ping", `{"status":"alive"}`)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
