package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

const maxStreamChannels = 8

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/realtime/stream?channel=usage&channel=<job channel>
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	channels := streamChannels(c.QueryArray("channel"))

	client := h.hub.NewSSEClient()
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Debug("SSEStream open", "client_id", client.ID.String(), "channels", channels)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSEStream closed", "client_id", client.ID.String())
}

// streamChannels dedupes the requested channels, defaulting to usage.
func streamChannels(raw []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, ch := range strings.Split(r, ",") {
			ch = strings.TrimSpace(ch)
			if ch == "" || seen[ch] || len(out) == maxStreamChannels {
				continue
			}
			seen[ch] = true
			out = append(out, ch)
		}
	}
	if len(out) == 0 {
		out = append(out, realtime.UsageChannel)
	}
	return out
}
