package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

const (
	clientBuffer      = 64
	keepAliveInterval = 25 * time.Second
)

type SSEClient struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	closed bool // guarded by the hub's mu
}

// SSEHub fans messages out to the clients subscribed to their channel.
// A slow client drops messages instead of blocking the broadcaster.
type SSEHub struct {
	log *logger.Logger

	mu       sync.RWMutex
	channels map[string]map[*SSEClient]struct{}
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	if log == nil {
		log = logger.Nop()
	}
	return &SSEHub{
		log:      log.With("service", "SSEHub"),
		channels: make(map[string]map[*SSEClient]struct{}),
	}
}

func (h *SSEHub) NewSSEClient() *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:       id,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, clientBuffer),
		Logger:   h.log.With("sse_client_id", id.String()),
	}
}

func (h *SSEHub) AddChannel(c *SSEClient, channel string) {
	if c == nil || channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*SSEClient]struct{})
		h.channels[channel] = subs
	}
	subs[c] = struct{}{}
	c.Channels[channel] = true
}

func (h *SSEHub) RemoveChannel(c *SSEClient, channel string) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, channel)
}

func (h *SSEHub) removeLocked(c *SSEClient, channel string) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(c.Channels, channel)
}

// Broadcast delivers msg to every subscriber of msg.Channel.
func (h *SSEHub) Broadcast(msg SSEMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			c.Logger.Warn("SSE client buffer full; dropping message", "channel", msg.Channel, "event", msg.Event)
		}
	}
}

// CloseClient unsubscribes c everywhere and closes its Outbound channel.
// Safe to call more than once.
func (h *SSEHub) CloseClient(c *SSEClient) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for ch := range c.Channels {
		h.removeLocked(c, ch)
	}
	c.closed = true
	close(c.Outbound)
}

// ServeHTTP streams c's messages until the request ends or c is closed.
func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, c *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-c.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg.Data)
			if err != nil {
				c.Logger.Warn("SSE payload not encodable", "event", msg.Event, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
